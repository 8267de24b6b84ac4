package dto

// YahooChartResponse mirrors the chart endpoint payload. Quote arrays are
// parallel to Timestamp; entries may be null on halted days.
type YahooChartResponse struct {
	Chart YahooChart `json:"chart"`
}

type YahooChart struct {
	Result []YahooChartResult `json:"result"`
	Error  *YahooChartError   `json:"error"`
}

type YahooChartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type YahooChartResult struct {
	Meta       YahooChartMeta  `json:"meta"`
	Timestamp  []int64         `json:"timestamp"`
	Indicators YahooIndicators `json:"indicators"`
}

type YahooChartMeta struct {
	Currency string `json:"currency"`
	Symbol   string `json:"symbol"`
}

type YahooIndicators struct {
	Quote []YahooQuote `json:"quote"`
}

type YahooQuote struct {
	Open   []*float64 `json:"open"`
	Close  []*float64 `json:"close"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Volume []*float64 `json:"volume"`
}
