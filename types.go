package sentiment

// SentimentRecord is the generic result of a metric call: one measurement of
// social sentiment for a single instrument.
type SentimentRecord struct {
	Symbol    string  `json:"symbol"`
	Sentiment float64 `json:"sentiment"`
	Timestamp int64   `json:"ts"`
}

// TickerData carries the four core metrics for a stock.
type TickerData struct {
	// Symbol is the ticker symbol.
	Symbol string `json:"symbol"`

	// Sentiment is the positive sentiment share, 0..1.
	Sentiment float64 `json:"sentiment"`

	// AHI is the Average Hype Index.
	AHI float64 `json:"AHI"`

	// RHI is the Relative Hype Index.
	RHI float64 `json:"RHI"`

	// SGP is the Standard General Perception.
	SGP float64 `json:"SGP"`

	// Rank is the position in a Sort result, zero-based. Only populated by Sort.
	Rank int `json:"rank,omitempty"`
}

// SocialData is the analysis of one social platform's activity around a stock.
type SocialData struct {
	// Mentions is how many times the stock was mentioned on the platform.
	Mentions int

	// Sentiment is the average sentiment of remarks mentioning the stock.
	Sentiment float64

	// RelativeHype is how many times more frequently the stock was mentioned
	// than other stocks. Zero when the API omits it.
	RelativeHype float64
}

// Subreddit is per-subreddit mention and sentiment data, present only on
// enriched quotes.
type Subreddit struct {
	Mentions  int
	Sentiment float64
}

// Reddit groups the Reddit-specific analysis of a quote.
type Reddit struct {
	Posts      SocialData
	Comments   SocialData
	Subreddits map[string]Subreddit
}

// QuoteData is the full realtime picture for a stock: the core metrics plus
// per-platform raw data.
type QuoteData struct {
	TickerData

	Tweets               SocialData
	StocktwitsPosts      SocialData
	YahooFinanceComments SocialData
	Reddit               Reddit
}

// HistoricalPoint is one entry of a historical metric series. Timestamp is
// Unix seconds with a fractional part, exactly as served.
type HistoricalPoint struct {
	Timestamp float64 `json:"timestamp"`
	Value     float64 `json:"data"`
}
