package zeroex

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testParams() SwapParams {
	return SwapParams{
		ChainID:               "10143",
		SellToken:             "0xEeeeeEeeeEeEeeEeEeEeeEEEeeeeEeeeeeeeEEeE",
		BuyToken:              "0xf817257fed379853cDe0fa4F97AB987181B1E5Ea",
		SellAmount:            "1000000000000000000",
		Taker:                 "0x1111111111111111111111111111111111111111",
		SwapFeeRecipient:      "0x2222222222222222222222222222222222222222",
		SwapFeeBps:            "100",
		SwapFeeToken:          "0xf817257fed379853cDe0fa4F97AB987181B1E5Ea",
		TradeSurplusRecipient: "0x2222222222222222222222222222222222222222",
	}
}

func TestGetPrice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/price", r.URL.Path)
		query := r.URL.Query()
		assert.Equal(t, "10143", query.Get("chainId"))
		assert.Equal(t, "1000000000000000000", query.Get("sellAmount"))
		assert.Equal(t, "100", query.Get("swapFeeBps"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"sellToken": "0xEeeeeEeeeEeEeeEeEeEeeEEEeeeeEeeeeeeeEEeE",
			"buyToken": "0xf817257fed379853cDe0fa4F97AB987181B1E5Ea",
			"sellAmount": "1000000000000000000",
			"buyAmount": "2500000",
			"issues": {"allowance": null, "balance": null},
			"tokenMetadata": {
				"buyToken": {"buyTaxBps": "0", "sellTaxBps": "0"},
				"sellToken": {"buyTaxBps": "0", "sellTaxBps": "0"}
			}
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	price, err := client.GetPrice(context.Background(), testParams())
	require.NoError(t, err)

	assert.Equal(t, "2500000", price.BuyAmount)
	assert.Nil(t, price.Issues.Allowance)
	assert.Empty(t, price.ValidationErrors)
}

func TestGetQuoteCarriesTransactionAndPermit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/quote", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"sellAmount": "1000000000000000000",
			"buyAmount": "2500000",
			"issues": {"allowance": null, "balance": null},
			"transaction": {"to": "0x3333333333333333333333333333333333333333", "data": "0xdeadbeef", "gas": "210000", "gasPrice": "1", "value": "0"},
			"permit2": {"type": "Permit2", "hash": "0xabc", "eip712": {"primaryType": "PermitTransferFrom"}}
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	quote, err := client.GetQuote(context.Background(), testParams())
	require.NoError(t, err)

	assert.Equal(t, "0xdeadbeef", quote.Transaction.Data)
	require.NotNil(t, quote.Permit2)
	assert.JSONEq(t, `{"primaryType": "PermitTransferFrom"}`, string(quote.Permit2.EIP712))
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantKind ErrorKind
		wantMsg  string
	}{
		{"missing params", http.StatusBadRequest, `{"error": "Missing required parameters: sellToken and buyToken"}`, KindInput, "Missing required parameters: sellToken and buyToken"},
		{"missing credential", http.StatusInternalServerError, `{"error": "API key not configured"}`, KindConfig, "API key not configured"},
		{"timeout", http.StatusRequestTimeout, `{"error": "Request timeout - please try again"}`, KindTimeout, "Request timeout - please try again"},
		{"upstream failure", http.StatusBadGateway, `{"error": "0x API Error: 502 - bad gateway"}`, KindUpstream, "0x API Error: 502 - bad gateway"},
		{"non-json body", http.StatusServiceUnavailable, `upstream unavailable`, KindUpstream, "upstream unavailable"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer server.Close()

			client := NewClient(server.URL)
			_, err := client.GetPrice(context.Background(), testParams())
			require.Error(t, err)

			var swapErr *Error
			require.ErrorAs(t, err, &swapErr)
			assert.Equal(t, tc.wantKind, swapErr.Kind)
			assert.Equal(t, tc.status, swapErr.Status)
			assert.Equal(t, tc.wantMsg, swapErr.Message)
		})
	}
}

func TestCancellationIsNotAnError(t *testing.T) {
	started := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	client := NewClient(server.URL)
	_, err := client.GetPrice(ctx, testParams())
	require.Error(t, err)

	// The caller must be able to recognize its own cancellation.
	assert.True(t, errors.Is(err, context.Canceled))
	var swapErr *Error
	assert.False(t, errors.As(err, &swapErr))
}

func TestValuesOmitsEmptyFields(t *testing.T) {
	params := SwapParams{SellToken: "0xabc", BuyToken: "0xdef"}
	values := params.Values()

	assert.Equal(t, "0xabc", values.Get("sellToken"))
	_, hasAmount := values["sellAmount"]
	assert.False(t, hasAmount)
	_, hasTaker := values["taker"]
	assert.False(t, hasTaker)
}

func TestRetryable(t *testing.T) {
	assert.True(t, NewError(KindTimeout, "t").Retryable())
	assert.True(t, NewError(KindTransport, "t").Retryable())
	assert.False(t, NewError(KindInput, "t").Retryable())
	assert.False(t, NewError(KindUpstream, "t").Retryable())
}
