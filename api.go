package sentiment

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// endpointFor resolves an operation's URL from the catalogue and, for
// single-stock operations, validates the symbol before any network I/O.
func (c *Client) endpointFor(operation, symbol string) (string, error) {
	u, err := EndpointURL(c.cfg.BaseURL, operation)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	if Endpoints[operation].PerSymbol {
		if err := checkRequest(symbolRequest{Symbol: symbol}); err != nil {
			return "", err
		}
	}
	return u, nil
}

// Parsed fetches the four core metrics for a stock: sentiment, AHI, RHI and SGP.
func (c *Client) Parsed(ctx context.Context, symbol string) (*TickerData, error) {
	u, err := c.endpointFor("parsed", symbol)
	if err != nil {
		return nil, err
	}

	body, err := c.doGET(ctx, "parsed", u, url.Values{"symbol": {symbol}})
	if err != nil {
		return nil, fmt.Errorf("parsed: %w", err)
	}

	env, err := parseEnvelope(body)
	if err != nil {
		return nil, fmt.Errorf("parsed: %w", err)
	}
	return parseTicker(env)
}

// Raw fetches the raw per-platform metrics for a stock.
func (c *Client) Raw(ctx context.Context, symbol string) (*QuoteData, error) {
	return c.fetchQuote(ctx, "raw", symbol, false)
}

// Quote fetches all realtime data for a stock. With enrich set, the response
// additionally carries the per-subreddit breakdown.
func (c *Client) Quote(ctx context.Context, symbol string, enrich bool) (*QuoteData, error) {
	return c.fetchQuote(ctx, "quote", symbol, enrich)
}

// fetchQuote is the shared single-symbol quote fetcher behind Raw and Quote.
func (c *Client) fetchQuote(ctx context.Context, operation, symbol string, enrich bool) (*QuoteData, error) {
	u, err := c.endpointFor(operation, symbol)
	if err != nil {
		return nil, err
	}

	params := url.Values{"symbol": {symbol}}
	if operation == "quote" {
		params.Set("enrich", strconv.FormatBool(enrich))
	}
	body, err := c.doGET(ctx, operation, u, params)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}

	env, err := parseEnvelope(body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}
	return parseQuote(env)
}

// Sort fetches up to limit stocks ranked by the given core metric.
func (c *Client) Sort(ctx context.Context, metric string, limit int) ([]TickerData, error) {
	if err := checkRequest(sortRequest{Metric: metric, Limit: limit}); err != nil {
		return nil, err
	}
	u, err := c.endpointFor("sort", "")
	if err != nil {
		return nil, err
	}

	params := url.Values{
		"metric": {metric},
		"limit":  {strconv.Itoa(limit)},
	}
	body, err := c.doGET(ctx, "sort", u, params)
	if err != nil {
		return nil, fmt.Errorf("sort: %w", err)
	}

	env, err := parseEnvelope(body)
	if err != nil {
		return nil, fmt.Errorf("sort: %w", err)
	}
	return parseTickerList(env)
}

// Historical fetches the time series of one metric for a stock. Start and end
// are Unix timestamps in seconds; points come back in server order.
func (c *Client) Historical(ctx context.Context, symbol, metric string, start, end int64) ([]HistoricalPoint, error) {
	u, err := c.endpointFor("historical", symbol)
	if err != nil {
		return nil, err
	}
	req := historicalRequest{Metric: metric, Start: start, End: end}
	if err := checkRequest(req); err != nil {
		return nil, err
	}

	params := url.Values{
		"symbol": {symbol},
		"metric": {metric},
		"start":  {strconv.FormatInt(start, 10)},
		"end":    {strconv.FormatInt(end, 10)},
	}
	body, err := c.doGET(ctx, "historical", u, params)
	if err != nil {
		return nil, fmt.Errorf("historical: %w", err)
	}

	env, err := parseEnvelope(body)
	if err != nil {
		return nil, fmt.Errorf("historical: %w", err)
	}
	return parseHistorical(env)
}

// Bulk fetches quote data for several stocks in one request.
func (c *Client) Bulk(ctx context.Context, symbols []string, enrich bool) ([]QuoteData, error) {
	if err := checkRequest(bulkRequest{Symbols: symbols}); err != nil {
		return nil, err
	}
	u, err := c.endpointFor("bulk", "")
	if err != nil {
		return nil, err
	}

	params := url.Values{
		"symbols": {strings.Join(symbols, ",")},
		"enrich":  {strconv.FormatBool(enrich)},
	}
	body, err := c.doGET(ctx, "bulk", u, params)
	if err != nil {
		return nil, fmt.Errorf("bulk: %w", err)
	}

	env, err := parseEnvelope(body)
	if err != nil {
		return nil, fmt.Errorf("bulk: %w", err)
	}
	return parseQuoteList(env)
}

// All fetches quote data for every covered stock. This is a slow call.
func (c *Client) All(ctx context.Context, enrich bool) ([]QuoteData, error) {
	u, err := c.endpointFor("all", "")
	if err != nil {
		return nil, err
	}

	params := url.Values{"enrich": {strconv.FormatBool(enrich)}}
	body, err := c.doGET(ctx, "all", u, params)
	if err != nil {
		return nil, fmt.Errorf("all: %w", err)
	}

	env, err := parseEnvelope(body)
	if err != nil {
		return nil, fmt.Errorf("all: %w", err)
	}
	return parseQuoteList(env)
}

// Supported reports whether the API gathers data for a symbol.
func (c *Client) Supported(ctx context.Context, symbol string) (bool, error) {
	u, err := c.endpointFor("supported", symbol)
	if err != nil {
		return false, err
	}

	body, err := c.doGET(ctx, "supported", u, url.Values{"symbol": {symbol}})
	if err != nil {
		return false, fmt.Errorf("supported: %w", err)
	}

	env, err := parseEnvelope(body)
	if err != nil {
		return false, fmt.Errorf("supported: %w", err)
	}
	return parseSupported(env)
}

// AllStocks fetches every symbol the API gathers data for.
func (c *Client) AllStocks(ctx context.Context) ([]string, error) {
	u, err := c.endpointFor("all-stocks", "")
	if err != nil {
		return nil, err
	}

	body, err := c.doGET(ctx, "all-stocks", u, nil)
	if err != nil {
		return nil, fmt.Errorf("all-stocks: %w", err)
	}

	env, err := parseEnvelope(body)
	if err != nil {
		return nil, fmt.Errorf("all-stocks: %w", err)
	}
	return parseSymbolList(env)
}

// Call issues a generic metric request against an arbitrary endpoint fragment
// and returns the single sentiment measurement it carries. Params must not
// include credentials; the token and key are attached automatically.
func (c *Client) Call(ctx context.Context, endpoint string, params map[string]string) (*SentimentRecord, error) {
	if err := checkRequest(callRequest{Endpoint: endpoint}); err != nil {
		return nil, err
	}
	if symbol, ok := params["symbol"]; ok {
		if err := checkRequest(symbolRequest{Symbol: symbol}); err != nil {
			return nil, err
		}
	}

	values := url.Values{}
	for k, v := range params {
		values.Set(k, v)
	}
	body, err := c.doGET(ctx, endpoint, joinURL(c.cfg.BaseURL, endpoint), values)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", endpoint, err)
	}
	return parseSentimentRecord(endpoint, body)
}
