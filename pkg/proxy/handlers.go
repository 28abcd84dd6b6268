package proxy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"monad-swap/config"
)

// ErrorResponse is the client-visible error payload
type ErrorResponse struct {
	Error string `json:"error"`
}

// SwapHandler forwards price and quote requests to the upstream swap API
// with the server-held credential attached. Callers own retry policy; the
// proxy never retries.
type SwapHandler struct {
	cfg    *config.Config
	client *http.Client
	logger zerolog.Logger
}

// NewSwapHandler creates the handler for both proxy endpoints
func NewSwapHandler(cfg *config.Config, logger zerolog.Logger) *SwapHandler {
	return &SwapHandler{
		cfg: cfg,
		// Per-call deadlines come from the request context; the client
		// itself stays unbounded.
		client: &http.Client{Timeout: 0},
		logger: logger,
	}
}

// GetPrice proxies GET /api/price to the upstream indicative-price endpoint
func (h *SwapHandler) GetPrice(c echo.Context) error {
	query := c.QueryParams()
	if query.Get("sellToken") == "" || query.Get("buyToken") == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Missing required parameters: sellToken and buyToken",
		})
	}

	return h.forward(c, "/swap/permit2/price", h.cfg.PriceTimeout,
		"Request timeout - please try again")
}

// GetQuote proxies GET /api/quote to the upstream firm-quote endpoint
func (h *SwapHandler) GetQuote(c echo.Context) error {
	query := c.QueryParams()
	if query.Get("sellToken") == "" || query.Get("buyToken") == "" || query.Get("sellAmount") == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Missing required parameters: sellToken, buyToken, and sellAmount",
		})
	}

	return h.forward(c, "/swap/permit2/quote", h.cfg.QuoteTimeout,
		"Quote request timeout - please try again")
}

// forward sends the request upstream verbatim and maps the outcome onto the
// proxy's error contract. All query parameters pass through untouched.
func (h *SwapHandler) forward(c echo.Context, upstreamPath string, timeout time.Duration, timeoutMsg string) error {
	if h.cfg.APIKey == "" {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "API key not configured",
		})
	}

	upstreamURL := h.cfg.APIURL + upstreamPath + "?" + c.QueryParams().Encode()

	ctx, cancel := context.WithTimeout(c.Request().Context(), timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, upstreamURL, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: fmt.Sprintf("failed to build upstream request: %v", err),
		})
	}
	req.Header.Set("0x-api-key", h.cfg.APIKey)
	req.Header.Set("0x-version", "v2")

	resp, err := h.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			h.logger.Warn().Str("path", upstreamPath).Msg("upstream request timed out")
			return c.JSON(http.StatusRequestTimeout, ErrorResponse{Error: timeoutMsg})
		}
		h.logger.Error().Err(err).Str("path", upstreamPath).Msg("upstream request failed")
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: fmt.Sprintf("failed to reach upstream: %v", err),
		})
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(err) {
			return c.JSON(http.StatusRequestTimeout, ErrorResponse{Error: timeoutMsg})
		}
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: fmt.Sprintf("failed to read upstream response: %v", err),
		})
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		h.logger.Warn().
			Int("status", resp.StatusCode).
			Str("path", upstreamPath).
			Msg("upstream returned an error")
		return c.JSON(resp.StatusCode, ErrorResponse{
			Error: fmt.Sprintf("0x API Error: %d - %s", resp.StatusCode, string(body)),
		})
	}

	// Success bodies pass through byte-for-byte.
	return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, body)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
