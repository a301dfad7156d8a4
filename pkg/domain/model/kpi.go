package model

// ChannelRevenue is revenue attributed to one sales channel
type ChannelRevenue struct {
	Platform string  `json:"platform"`
	Revenue  float64 `json:"revenue"`
}

// KPISnapshot is a read-only snapshot of recent business metrics from
// the analytics collaborator. Best effort: a missing snapshot must not
// abort a chat turn.
type KPISnapshot struct {
	Revenue           float64          `json:"revenue"`
	Profit            float64          `json:"profit"`
	AverageOrderValue float64          `json:"average_order_value"`
	NewCustomers      int              `json:"new_customers"`
	Channels          []ChannelRevenue `json:"channels,omitempty"`
}

// TopChannel returns the highest revenue channel name, or empty when
// no channel data is present.
func (k *KPISnapshot) TopChannel() string {
	var name string
	var best float64
	for _, ch := range k.Channels {
		if ch.Platform != "" && ch.Revenue > best {
			name = ch.Platform
			best = ch.Revenue
		}
	}
	return name
}

// KPIDay is one day bucket of the KPI series
type KPIDay struct {
	Day          string  `json:"day"`
	Revenue      float64 `json:"revenue"`
	Profit       float64 `json:"profit"`
	NewCustomers int     `json:"new_customers"`

	// Deltas are percent changes vs the previous day, filled in by the
	// timeline builder.
	RevenueDelta float64 `json:"rev_delta"`
	ProfitDelta  float64 `json:"profit_delta"`
}
