package model

// DemandForecast is the AI demand forecast shown on the club dashboard.
// The backend may omit any sub-field; renderers must treat absent values
// as empty rather than failing.
type DemandForecast struct {
	Club           string         `json:"club,omitempty"`
	SuggestedPrice float64        `json:"suggested_price,omitempty"`
	GeneratedAt    string         `json:"generated_at,omitempty"`
	Demand         *DemandDetails `json:"demand_forecast,omitempty"`
}

// DemandDetails carries the week-over-week demand numbers.
type DemandDetails struct {
	ThisWeek float64        `json:"this_week,omitempty"`
	NextWeek float64        `json:"next_week,omitempty"`
	Trend    string         `json:"trend,omitempty"`
	History  []HistoryPoint `json:"history,omitempty"`
}

// HistoryPoint is one point of the booking-history series.
type HistoryPoint struct {
	Week     string  `json:"week,omitempty"`
	Bookings float64 `json:"bookings,omitempty"`
}

// HistoryOrEmpty returns the history series, never nil.
func (f *DemandForecast) HistoryOrEmpty() []HistoryPoint {
	if f == nil || f.Demand == nil || f.Demand.History == nil {
		return []HistoryPoint{}
	}
	return f.Demand.History
}
