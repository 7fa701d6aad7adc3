package domain

import (
	"encoding/json"
	"errors"
	"time"
)

// ErrNoData indicates an upstream source returned an empty series or omitted
// a requested instrument from its payload.
var ErrNoData = errors.New("no data")

// AssetClass identifies the bucket an instrument belongs to.
type AssetClass string

const (
	ClassStock  AssetClass = "stock"
	ClassCrypto AssetClass = "crypto"
	ClassBond   AssetClass = "bond"
	ClassGold   AssetClass = "gold"
)

// AssetClasses lists every supported class in a stable order.
var AssetClasses = []AssetClass{ClassStock, ClassCrypto, ClassBond, ClassGold}

func (c AssetClass) IsValid() bool {
	switch c {
	case ClassStock, ClassCrypto, ClassBond, ClassGold:
		return true
	}
	return false
}

// Instrument is one tradable asset from the portfolio universe.
// Immutable; loaded once from configuration.
type Instrument struct {
	Symbol string `json:"symbol" yaml:"symbol"`
	Name   string `json:"name" yaml:"name"`
}

// PricePoint is one daily observation of an instrument's price or rate.
type PricePoint struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

// PriceSeries is an ordered sequence of observations, oldest first.
// Fetched fresh per call and never cached or persisted.
type PriceSeries []PricePoint

// Values returns the raw value sequence in series order.
func (s PriceSeries) Values() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Value
	}
	return out
}

// ReturnMetrics holds the current value and trailing percentage changes of a
// series, rounded to two decimals.
type ReturnMetrics struct {
	Current     float64 `json:"current"`
	Change1dPct float64 `json:"change_1d_pct"`
	Change1wPct float64 `json:"change_1w_pct"`
	Change1mPct float64 `json:"change_1m_pct"`
}

// Quote is the populated payload of a successful instrument lookup.
type Quote struct {
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Change1dPct float64 `json:"change_1d_pct"`
	Change1wPct float64 `json:"change_1w_pct"`
	Change1mPct float64 `json:"change_1m_pct"`
}

// InstrumentResult is the per-instrument outcome of a batch operation: either
// a populated quote or an error message, never both and never neither.
type InstrumentResult struct {
	Symbol string
	Quote  *Quote
	Err    string
}

// OK reports whether the result carries a quote.
func (r InstrumentResult) OK() bool {
	return r.Quote != nil
}

// Succeed builds a populated result.
func Succeed(symbol string, q Quote) InstrumentResult {
	return InstrumentResult{Symbol: symbol, Quote: &q}
}

// Fail builds an error-shaped result from the failure that terminated this
// instrument's lookup.
func Fail(symbol string, err error) InstrumentResult {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return InstrumentResult{Symbol: symbol, Err: msg}
}

type quoteJSON struct {
	Symbol      string  `json:"symbol"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Change1dPct float64 `json:"change_1d_pct"`
	Change1wPct float64 `json:"change_1w_pct"`
	Change1mPct float64 `json:"change_1m_pct"`
}

type errorJSON struct {
	Symbol string `json:"symbol"`
	Error  string `json:"error"`
}

// MarshalJSON renders exactly one of the two wire shapes.
func (r InstrumentResult) MarshalJSON() ([]byte, error) {
	if r.Quote != nil {
		return json.Marshal(quoteJSON{
			Symbol:      r.Symbol,
			Name:        r.Quote.Name,
			Price:       r.Quote.Price,
			Change1dPct: r.Quote.Change1dPct,
			Change1wPct: r.Quote.Change1wPct,
			Change1mPct: r.Quote.Change1mPct,
		})
	}
	return json.Marshal(errorJSON{Symbol: r.Symbol, Error: r.Err})
}

// UnmarshalJSON restores either wire shape.
func (r *InstrumentResult) UnmarshalJSON(data []byte) error {
	var e errorJSON
	if err := json.Unmarshal(data, &e); err != nil {
		return err
	}
	if e.Error != "" {
		*r = InstrumentResult{Symbol: e.Symbol, Err: e.Error}
		return nil
	}
	var q quoteJSON
	if err := json.Unmarshal(data, &q); err != nil {
		return err
	}
	*r = InstrumentResult{
		Symbol: q.Symbol,
		Quote: &Quote{
			Name:        q.Name,
			Price:       q.Price,
			Change1dPct: q.Change1dPct,
			Change1wPct: q.Change1wPct,
			Change1mPct: q.Change1mPct,
		},
	}
	return nil
}

// FXSnapshot is the exchange-rate record for the configured currency pair.
type FXSnapshot struct {
	Pair        string  `json:"pair"`
	Rate        float64 `json:"rate"`
	Change1dPct float64 `json:"change_1d_pct"`
	Change1wPct float64 `json:"change_1w_pct"`
	Change1mPct float64 `json:"change_1m_pct"`
}

// SentimentSnapshot is the fear & greed index reading with trailing context.
type SentimentSnapshot struct {
	Score          int    `json:"score"`
	Rating         string `json:"rating"`
	Yesterday      int    `json:"yesterday"`
	OneWeekAgo     int    `json:"one_week_ago"`
	Interpretation string `json:"interpretation"`
}
