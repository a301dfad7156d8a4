package analytics_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/upsight-lab/copilot/pkg/service/analytics"
)

func TestRecentKPIs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.Equal(t, r.Method, http.MethodGet)
		gt.Equal(t, r.URL.Path, "/analytics/summary")
		gt.Equal(t, r.URL.Query().Get("owner"), "owner-1")
		gt.Equal(t, r.URL.Query().Get("days"), "30")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"revenueMonth": 182450,
			"profitMonth": 54100.5,
			"aov": 86.2,
			"newCustomers": 412,
			"channels": [
				{"platform": "web", "value": 120000},
				{"platform": "marketplace", "value": 62450}
			]
		}`))
	}))
	defer srv.Close()

	client := analytics.New(srv.URL)
	snapshot, err := client.RecentKPIs(context.Background(), "owner-1", 30)
	gt.NoError(t, err).Required()

	gt.Equal(t, snapshot.Revenue, 182450)
	gt.Equal(t, snapshot.Profit, 54100.5)
	gt.Equal(t, snapshot.AverageOrderValue, 86.2)
	gt.Equal(t, snapshot.NewCustomers, 412)
	gt.Equal(t, len(snapshot.Channels), 2)
	gt.Equal(t, snapshot.TopChannel(), "web")
}

func TestDailyKPIs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.Equal(t, r.URL.Path, "/analytics/daily")
		gt.Equal(t, r.URL.Query().Get("days"), "7")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"days": [
				{"day": "2026-08-24", "revenue": 5000, "profit": 1200, "newCustomers": 10},
				{"day": "2026-08-25", "revenue": 6000, "profit": 1500, "newCustomers": 14}
			]
		}`))
	}))
	defer srv.Close()

	client := analytics.New(srv.URL)
	days, err := client.DailyKPIs(context.Background(), "owner-1", 7)
	gt.NoError(t, err).Required()

	gt.Equal(t, len(days), 2)
	gt.Equal(t, days[0].Day, "2026-08-24")
	gt.Equal(t, days[1].Revenue, 6000)
}

func TestRecentKPIsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := analytics.New(srv.URL)
	_, err := client.RecentKPIs(context.Background(), "owner-1", 30)
	gt.Error(t, err)
}
