package sentiment

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// doGET executes one authenticated GET against the given operation URL. The
// token and key are attached as query parameters on every call. No retries:
// every failure propagates to the caller.
func (c *Client) doGET(ctx context.Context, endpoint, urlStr string, params url.Values) ([]byte, error) {
	if params == nil {
		params = url.Values{}
	}
	params.Set("token", c.cfg.Token)
	params.Set("key", c.cfg.Key)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTransport, endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: read body: %v", ErrTransport, endpoint, err)
	}

	// Credential and parameter rejections arrive as plain-text bodies,
	// regardless of status code.
	switch classifyBody(body) {
	case errIncorrectKey:
		c.log.Warn().Str("endpoint", endpoint).Msg("credentials rejected")
		return nil, fmt.Errorf("%w: incorrect token or key", ErrAuthentication)
	case errBadParameter:
		return nil, fmt.Errorf("%w: %s: rejected parameter", ErrInvalidArgument, endpoint)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: %s HTTP %d", ErrAuthentication, endpoint, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		c.log.Warn().Str("endpoint", endpoint).Int("status", resp.StatusCode).
			Str("body", truncateBytes(body, 200)).Msg("non-200 response")
		if msg := apiMessage(body); msg != "" {
			return nil, fmt.Errorf("%w: %s HTTP %d: %s", ErrTransport, endpoint, resp.StatusCode, msg)
		}
		return nil, fmt.Errorf("%w: %s HTTP %d: %s", ErrTransport, endpoint, resp.StatusCode, truncateBytes(body, 200))
	}

	c.log.Debug().Str("endpoint", endpoint).Int("bytes", len(body)).Msg("request ok")
	return body, nil
}

func truncateBytes(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
