package kalshi

// Market is a snapshot from GET /markets/{ticker}. Prices are in cents
// (0..100); pointers distinguish a missing quote from a zero one.
type Market struct {
	Ticker      string `json:"ticker"`
	EventTicker string `json:"event_ticker"`
	Title       string `json:"title"`
	Status      string `json:"status"`

	YesBid    *int `json:"yes_bid"`
	YesAsk    *int `json:"yes_ask"`
	NoBid     *int `json:"no_bid"`
	NoAsk     *int `json:"no_ask"`
	LastPrice *int `json:"last_price"`

	// Cents-notional resting order value.
	Liquidity *int64 `json:"liquidity"`

	Volume       int64 `json:"volume"`
	OpenInterest int64 `json:"open_interest"`
}

type marketResponse struct {
	Market Market `json:"market"`
}
