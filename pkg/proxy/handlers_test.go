package proxy

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"monad-swap/config"
)

func testConfig(upstreamURL string) *config.Config {
	return &config.Config{
		APIKey:       "test-key",
		APIURL:       upstreamURL,
		PriceTimeout: 10 * time.Second,
		QuoteTimeout: 15 * time.Second,
	}
}

func newTestServer(cfg *config.Config) *Server {
	return NewServer(cfg, zerolog.Nop())
}

func doRequest(s *Server, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)
	return rec
}

func TestMissingParamsSkipUpstream(t *testing.T) {
	var upstreamCalls atomic.Int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upstreamCalls.Add(1)
	}))
	defer upstream.Close()

	server := newTestServer(testConfig(upstream.URL))

	tests := []struct {
		name   string
		target string
	}{
		{"price without sellToken", "/api/price?buyToken=0xdef"},
		{"price without buyToken", "/api/price?sellToken=0xabc"},
		{"price without anything", "/api/price"},
		{"quote without sellAmount", "/api/quote?sellToken=0xabc&buyToken=0xdef"},
		{"quote without buyToken", "/api/quote?sellToken=0xabc&sellAmount=100"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := doRequest(server, tc.target)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), "Missing required parameters")
		})
	}

	assert.Equal(t, int32(0), upstreamCalls.Load(), "no upstream call may be made for invalid input")
}

func TestMissingCredential(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:0")
	cfg.APIKey = ""
	server := newTestServer(cfg)

	rec := doRequest(server, "/api/price?sellToken=0xabc&buyToken=0xdef")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error": "API key not configured"}`, rec.Body.String())
}

func TestSuccessBodyPassesThroughVerbatim(t *testing.T) {
	// Field order and whitespace must survive the proxy untouched.
	const upstreamBody = `{"buyAmount":"2500000","sellAmount":"1000000000000000000",  "issues":{"allowance":null}}`

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/swap/permit2/price", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("0x-api-key"))
		assert.Equal(t, "v2", r.Header.Get("0x-version"))

		// All caller parameters must be forwarded verbatim.
		query := r.URL.Query()
		assert.Equal(t, "0xabc", query.Get("sellToken"))
		assert.Equal(t, "0xdef", query.Get("buyToken"))
		assert.Equal(t, "42", query.Get("swapFeeBps"))

		_, _ = w.Write([]byte(upstreamBody))
	}))
	defer upstream.Close()

	server := newTestServer(testConfig(upstream.URL))
	rec := doRequest(server, "/api/price?sellToken=0xabc&buyToken=0xdef&swapFeeBps=42")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, upstreamBody, rec.Body.String())
}

func TestUpstreamErrorSurfacesStatusAndBody(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"reason":"INSUFFICIENT_LIQUIDITY"}`))
	}))
	defer upstream.Close()

	server := newTestServer(testConfig(upstream.URL))
	rec := doRequest(server, "/api/quote?sellToken=0xabc&buyToken=0xdef&sellAmount=100")

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "0x API Error: 422")
	assert.Contains(t, rec.Body.String(), "INSUFFICIENT_LIQUIDITY")
}

func TestUpstreamTimeout(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer upstream.Close()

	cfg := testConfig(upstream.URL)
	cfg.PriceTimeout = 50 * time.Millisecond
	server := newTestServer(cfg)

	rec := doRequest(server, "/api/price?sellToken=0xabc&buyToken=0xdef")

	assert.Equal(t, http.StatusRequestTimeout, rec.Code)
	assert.Contains(t, rec.Body.String(), "timeout")
}

func TestTransportFailure(t *testing.T) {
	// Point at a closed listener to force a connection error.
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	upstream.Close()

	server := newTestServer(testConfig(upstream.URL))
	rec := doRequest(server, "/api/price?sellToken=0xabc&buyToken=0xdef")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "failed to reach upstream")
}

func TestQuoteUsesQuotePath(t *testing.T) {
	var gotPath string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{}`))
	}))
	defer upstream.Close()

	server := newTestServer(testConfig(upstream.URL))
	rec := doRequest(server, "/api/quote?sellToken=0xabc&buyToken=0xdef&sellAmount=100")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/swap/permit2/quote", gotPath)
}
