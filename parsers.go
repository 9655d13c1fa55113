package sentiment

import (
	"encoding/json"
	"fmt"
)

// envelope is the JSON wrapper the v4 API puts around every REST response.
type envelope struct {
	Success bool            `json:"success"`
	Symbol  string          `json:"symbol"`
	Results json.RawMessage `json:"results"`
	Result  json.RawMessage `json:"result"`
	Message string          `json:"message"`
}

// parseEnvelope decodes the response wrapper and turns a declined request
// into an error carrying the server message.
func parseEnvelope(body []byte) (*envelope, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: unmarshal envelope: %v", ErrResponseFormat, err)
	}
	if !env.Success {
		if env.Message != "" {
			return nil, fmt.Errorf("%w: api declined request: %s", ErrInvalidArgument, env.Message)
		}
		return nil, fmt.Errorf("%w: api declined request", ErrInvalidArgument)
	}
	return &env, nil
}

// apiMessage extracts the server "message" field from a body, if any.
func apiMessage(body []byte) string {
	var probe struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &probe) != nil {
		return ""
	}
	return probe.Message
}

// parseTicker parses a single-symbol core-metrics response.
func parseTicker(env *envelope) (*TickerData, error) {
	var td TickerData
	if err := json.Unmarshal(env.Results, &td); err != nil {
		return nil, fmt.Errorf("%w: unmarshal ticker results: %v", ErrResponseFormat, err)
	}
	if td.Symbol == "" {
		td.Symbol = env.Symbol
	}
	return &td, nil
}

// parseTickerList parses ranked multi-stock responses (sort).
func parseTickerList(env *envelope) ([]TickerData, error) {
	var list []TickerData
	if err := json.Unmarshal(env.Results, &list); err != nil {
		return nil, fmt.Errorf("%w: unmarshal ticker list: %v", ErrResponseFormat, err)
	}
	return list, nil
}

// --- Quote parsing ---

// quoteResult mirrors the flat platform-prefixed key layout of raw, quote,
// bulk, and all responses.
type quoteResult struct {
	Symbol    string  `json:"symbol"`
	Sentiment float64 `json:"sentiment"`
	AHI       float64 `json:"AHI"`
	RHI       float64 `json:"RHI"`
	SGP       float64 `json:"SGP"`
	Rank      int     `json:"rank"`

	TweetMentions     int     `json:"tweet_mentions"`
	TweetSentiment    float64 `json:"tweet_sentiment"`
	TweetRelativeHype float64 `json:"tweet_relative_hype"`

	StocktwitsPostMentions     int     `json:"stocktwits_post_mentions"`
	StocktwitsPostSentiment    float64 `json:"stocktwits_post_sentiment"`
	StocktwitsPostRelativeHype float64 `json:"stocktwits_post_relative_hype"`

	YahooFinanceCommentMentions     int     `json:"yahoo_finance_comment_mentions"`
	YahooFinanceCommentSentiment    float64 `json:"yahoo_finance_comment_sentiment"`
	YahooFinanceCommentRelativeHype float64 `json:"yahoo_finance_comment_relative_hype"`

	RedditPostMentions     int     `json:"reddit_post_mentions"`
	RedditPostSentiment    float64 `json:"reddit_post_sentiment"`
	RedditPostRelativeHype float64 `json:"reddit_post_relative_hype"`

	RedditCommentMentions     int     `json:"reddit_comment_mentions"`
	RedditCommentSentiment    float64 `json:"reddit_comment_sentiment"`
	RedditCommentRelativeHype float64 `json:"reddit_comment_relative_hype"`

	Subreddits *subredditResult `json:"subreddits"`
}

// subredditResult carries the enriched per-subreddit breakdown.
type subredditResult struct {
	Mentions  map[string]int     `json:"reddit_subreddit_mentions"`
	Sentiment map[string]float64 `json:"reddit_subreddit_sentiment"`
}

func buildQuote(r quoteResult, fallbackSymbol string) QuoteData {
	symbol := r.Symbol
	if symbol == "" {
		symbol = fallbackSymbol
	}
	return QuoteData{
		TickerData: TickerData{
			Symbol:    symbol,
			Sentiment: r.Sentiment,
			AHI:       r.AHI,
			RHI:       r.RHI,
			SGP:       r.SGP,
			Rank:      r.Rank,
		},
		Tweets: SocialData{
			Mentions:     r.TweetMentions,
			Sentiment:    r.TweetSentiment,
			RelativeHype: r.TweetRelativeHype,
		},
		StocktwitsPosts: SocialData{
			Mentions:     r.StocktwitsPostMentions,
			Sentiment:    r.StocktwitsPostSentiment,
			RelativeHype: r.StocktwitsPostRelativeHype,
		},
		YahooFinanceComments: SocialData{
			Mentions:     r.YahooFinanceCommentMentions,
			Sentiment:    r.YahooFinanceCommentSentiment,
			RelativeHype: r.YahooFinanceCommentRelativeHype,
		},
		Reddit: Reddit{
			Posts: SocialData{
				Mentions:     r.RedditPostMentions,
				Sentiment:    r.RedditPostSentiment,
				RelativeHype: r.RedditPostRelativeHype,
			},
			Comments: SocialData{
				Mentions:     r.RedditCommentMentions,
				Sentiment:    r.RedditCommentSentiment,
				RelativeHype: r.RedditCommentRelativeHype,
			},
			Subreddits: buildSubreddits(r.Subreddits),
		},
	}
}

// buildSubreddits keeps only subreddits present in both the mentions and
// sentiment maps, matching the feed's paired layout.
func buildSubreddits(r *subredditResult) map[string]Subreddit {
	if r == nil || len(r.Mentions) == 0 {
		return nil
	}
	out := make(map[string]Subreddit)
	for name, mentions := range r.Mentions {
		score, ok := r.Sentiment[name]
		if !ok {
			continue
		}
		out[name] = Subreddit{Mentions: mentions, Sentiment: score}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// parseQuote parses a single-symbol quote or raw response.
func parseQuote(env *envelope) (*QuoteData, error) {
	var r quoteResult
	if err := json.Unmarshal(env.Results, &r); err != nil {
		return nil, fmt.Errorf("%w: unmarshal quote results: %v", ErrResponseFormat, err)
	}
	q := buildQuote(r, env.Symbol)
	return &q, nil
}

// parseQuoteList parses multi-symbol quote responses (bulk, all).
func parseQuoteList(env *envelope) ([]QuoteData, error) {
	var raw []quoteResult
	if err := json.Unmarshal(env.Results, &raw); err != nil {
		return nil, fmt.Errorf("%w: unmarshal quote list: %v", ErrResponseFormat, err)
	}
	quotes := make([]QuoteData, 0, len(raw))
	for _, r := range raw {
		quotes = append(quotes, buildQuote(r, ""))
	}
	return quotes, nil
}

// parseHistorical parses a historical metric series, preserving server order.
func parseHistorical(env *envelope) ([]HistoricalPoint, error) {
	var points []HistoricalPoint
	if err := json.Unmarshal(env.Results, &points); err != nil {
		return nil, fmt.Errorf("%w: unmarshal historical results: %v", ErrResponseFormat, err)
	}
	return points, nil
}

// parseSupported parses the boolean coverage response.
func parseSupported(env *envelope) (bool, error) {
	var supported bool
	if err := json.Unmarshal(env.Result, &supported); err != nil {
		return false, fmt.Errorf("%w: unmarshal supported result: %v", ErrResponseFormat, err)
	}
	return supported, nil
}

// parseSymbolList parses the all-stocks symbol list.
func parseSymbolList(env *envelope) ([]string, error) {
	var symbols []string
	if err := json.Unmarshal(env.Results, &symbols); err != nil {
		return nil, fmt.Errorf("%w: unmarshal symbol list: %v", ErrResponseFormat, err)
	}
	return symbols, nil
}

// parseSentimentRecord parses a generic metric response into a
// SentimentRecord. The metric value lives either under "sentiment" or under
// a field named after the endpoint itself (e.g. "AQS"). Accepts both bare
// objects and envelope-wrapped results.
func parseSentimentRecord(endpoint string, body []byte) (*SentimentRecord, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: unmarshal %s response: %v", ErrResponseFormat, endpoint, err)
	}

	if _, wrapped := raw["success"]; wrapped {
		env, err := parseEnvelope(body)
		if err != nil {
			return nil, err
		}
		inner := map[string]json.RawMessage{}
		if len(env.Results) > 0 {
			if err := json.Unmarshal(env.Results, &inner); err != nil {
				return nil, fmt.Errorf("%w: unmarshal %s results: %v", ErrResponseFormat, endpoint, err)
			}
		}
		if _, ok := inner["symbol"]; !ok && env.Symbol != "" {
			sym, _ := json.Marshal(env.Symbol)
			inner["symbol"] = sym
		}
		raw = inner
	}

	rec := &SentimentRecord{}
	if v, ok := raw["symbol"]; ok {
		if err := json.Unmarshal(v, &rec.Symbol); err != nil {
			return nil, fmt.Errorf("%w: %s: symbol is not a string", ErrResponseFormat, endpoint)
		}
	}

	metric, ok := raw["sentiment"]
	if !ok {
		metric, ok = raw[endpoint]
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s: missing metric field", ErrResponseFormat, endpoint)
	}
	if err := json.Unmarshal(metric, &rec.Sentiment); err != nil {
		return nil, fmt.Errorf("%w: %s: metric is not a number", ErrResponseFormat, endpoint)
	}

	ts, ok := raw["ts"]
	if !ok {
		ts = raw["timestamp"]
	}
	if len(ts) > 0 {
		if err := json.Unmarshal(ts, &rec.Timestamp); err != nil {
			return nil, fmt.Errorf("%w: %s: timestamp is not an integer", ErrResponseFormat, endpoint)
		}
	}
	return rec, nil
}
