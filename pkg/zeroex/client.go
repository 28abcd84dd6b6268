package zeroex

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/tidwall/gjson"
)

// Client fetches prices and quotes through the local proxy. It never talks
// to the upstream swap API directly; the proxy owns the credential.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a price/quote client against the given proxy base URL
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		// No client-side timeout: the proxy enforces the bounded wait per
		// call and the caller controls cancellation through the context.
		httpClient: &http.Client{Timeout: 0},
	}
}

// GetPrice fetches an indicative price for the given parameters
func (c *Client) GetPrice(ctx context.Context, params SwapParams) (*PriceResponse, error) {
	var price PriceResponse
	if err := c.get(ctx, "/api/price", params, &price); err != nil {
		return nil, err
	}
	return &price, nil
}

// GetQuote fetches a firm, executable quote for the given parameters
func (c *Client) GetQuote(ctx context.Context, params SwapParams) (*QuoteResponse, error) {
	var quote QuoteResponse
	if err := c.get(ctx, "/api/quote", params, &quote); err != nil {
		return nil, err
	}
	return &quote, nil
}

func (c *Client) get(ctx context.Context, path string, params SwapParams, out interface{}) error {
	reqURL := c.baseURL + path + "?" + params.Values().Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return NewError(KindTransport, "failed to build request: %v", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Cancellation must pass through untouched so callers can tell an
		// aborted fetch apart from a real failure.
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return NewError(KindTransport, "request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return NewError(KindTransport, "failed to read response: %v", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return classifyStatus(resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return NewError(KindTransport, "failed to decode response: %v", err)
	}
	return nil
}

// classifyStatus turns a non-success proxy response into a closed-kind error.
// Error payloads are `{"error": "..."}` but the body is probed defensively
// since upstream failures are forwarded as-is.
func classifyStatus(status int, body []byte) *Error {
	message := gjson.GetBytes(body, "error").String()
	if message == "" {
		message = string(body)
	}
	if message == "" {
		message = fmt.Sprintf("request failed with status %d", status)
	}

	kind := KindUpstream
	switch status {
	case http.StatusBadRequest:
		kind = KindInput
	case http.StatusRequestTimeout:
		kind = KindTimeout
	case http.StatusInternalServerError:
		// The proxy uses 500 both for a missing credential and for transport
		// failures; the credential case carries a fixed message.
		if message == "API key not configured" {
			kind = KindConfig
		} else {
			kind = KindTransport
		}
	}

	return &Error{Kind: kind, Message: message, Status: status}
}

// Values encodes the parameter set as URL query values. Empty fields are
// omitted so the proxy's required-parameter checks see true absence.
func (p SwapParams) Values() url.Values {
	values := url.Values{}
	set := func(key, value string) {
		if value != "" {
			values.Set(key, value)
		}
	}
	set("chainId", p.ChainID)
	set("sellToken", p.SellToken)
	set("buyToken", p.BuyToken)
	set("sellAmount", p.SellAmount)
	set("taker", p.Taker)
	set("swapFeeRecipient", p.SwapFeeRecipient)
	set("swapFeeBps", p.SwapFeeBps)
	set("swapFeeToken", p.SwapFeeToken)
	set("tradeSurplusRecipient", p.TradeSurplusRecipient)
	return values
}
