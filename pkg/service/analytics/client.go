package analytics

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/m-mizutani/goerr/v2"
	"github.com/upsight-lab/copilot/pkg/domain/interfaces"
	"github.com/upsight-lab/copilot/pkg/domain/model"
	"github.com/upsight-lab/copilot/pkg/domain/types"
)

const defaultTimeout = 5 * time.Second

// Client reads live business KPIs from the analytics collaborator.
// Read-only and best effort: one attempt per call with a short timeout.
type Client struct {
	http *resty.Client
}

var _ interfaces.AnalyticsClient = &Client{}

type Option func(*Client)

// WithTimeout overrides the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.SetTimeout(d)
	}
}

func New(baseURL string, opts ...Option) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(defaultTimeout)

	c := &Client{http: httpClient}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type summaryResponse struct {
	RevenueMonth float64 `json:"revenueMonth"`
	ProfitMonth  float64 `json:"profitMonth"`
	AOV          float64 `json:"aov"`
	NewCustomers int     `json:"newCustomers"`
	Channels     []struct {
		Platform string  `json:"platform"`
		Value    float64 `json:"value"`
	} `json:"channels"`
}

// RecentKPIs returns aggregate KPIs over the trailing window
func (c *Client) RecentKPIs(ctx context.Context, ownerID types.OwnerID, windowDays int) (*model.KPISnapshot, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("owner", ownerID.String()).
		SetQueryParam("days", strconv.Itoa(windowDays)).
		Get("/analytics/summary")
	if err != nil {
		return nil, goerr.Wrap(err, "analytics summary request failed")
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, goerr.New("analytics summary returned non-OK status",
			goerr.V("status", resp.StatusCode()),
		)
	}

	var body summaryResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, goerr.Wrap(err, "failed to decode analytics summary")
	}

	snapshot := &model.KPISnapshot{
		Revenue:           body.RevenueMonth,
		Profit:            body.ProfitMonth,
		AverageOrderValue: body.AOV,
		NewCustomers:      body.NewCustomers,
	}
	for _, ch := range body.Channels {
		snapshot.Channels = append(snapshot.Channels, model.ChannelRevenue{
			Platform: ch.Platform,
			Revenue:  ch.Value,
		})
	}

	return snapshot, nil
}

type dailyResponse struct {
	Days []struct {
		Day          string  `json:"day"`
		Revenue      float64 `json:"revenue"`
		Profit       float64 `json:"profit"`
		NewCustomers int     `json:"newCustomers"`
	} `json:"days"`
}

// DailyKPIs returns per-day KPI buckets, oldest first
func (c *Client) DailyKPIs(ctx context.Context, ownerID types.OwnerID, days int) ([]*model.KPIDay, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("owner", ownerID.String()).
		SetQueryParam("days", strconv.Itoa(days)).
		Get("/analytics/daily")
	if err != nil {
		return nil, goerr.Wrap(err, "analytics daily request failed")
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, goerr.New("analytics daily returned non-OK status",
			goerr.V("status", resp.StatusCode()),
		)
	}

	var body dailyResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, goerr.Wrap(err, "failed to decode analytics daily response")
	}

	result := make([]*model.KPIDay, len(body.Days))
	for i, day := range body.Days {
		result[i] = &model.KPIDay{
			Day:          day.Day,
			Revenue:      day.Revenue,
			Profit:       day.Profit,
			NewCustomers: day.NewCustomers,
		}
	}

	return result, nil
}
