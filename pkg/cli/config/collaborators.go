package config

import (
	"time"

	"github.com/urfave/cli/v3"

	"github.com/upsight-lab/copilot/pkg/domain/interfaces"
	"github.com/upsight-lab/copilot/pkg/service/analytics"
	"github.com/upsight-lab/copilot/pkg/service/retrieval"
	"github.com/upsight-lab/copilot/pkg/utils/logging"
)

// Retrieval holds CLI flags for the document retrieval collaborator
type Retrieval struct {
	baseURL string
	timeout time.Duration
}

// Flags returns CLI flags for retrieval configuration
func (r *Retrieval) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "retrieval-url",
			Usage:       "Base URL of the document retrieval service (disabled when empty)",
			Sources:     cli.EnvVars("COPILOT_RETRIEVAL_URL"),
			Destination: &r.baseURL,
		},
		&cli.DurationFlag{
			Name:        "retrieval-timeout",
			Usage:       "Per-request timeout for retrieval calls",
			Value:       5 * time.Second,
			Sources:     cli.EnvVars("COPILOT_RETRIEVAL_TIMEOUT"),
			Destination: &r.timeout,
		},
	}
}

// Configure returns the retrieval client, or nil when no URL is set.
// A nil client degrades chat turns instead of failing them.
func (r *Retrieval) Configure() interfaces.RetrievalClient {
	if r.baseURL == "" {
		logging.Default().Info("Retrieval service not configured, document grounding disabled")
		return nil
	}
	logging.Default().Info("Retrieval service enabled", "url", r.baseURL)
	return retrieval.New(r.baseURL, retrieval.WithTimeout(r.timeout))
}

// Analytics holds CLI flags for the analytics collaborator
type Analytics struct {
	baseURL string
	timeout time.Duration
}

// Flags returns CLI flags for analytics configuration
func (a *Analytics) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "analytics-url",
			Usage:       "Base URL of the analytics service (disabled when empty)",
			Sources:     cli.EnvVars("COPILOT_ANALYTICS_URL"),
			Destination: &a.baseURL,
		},
		&cli.DurationFlag{
			Name:        "analytics-timeout",
			Usage:       "Per-request timeout for analytics calls",
			Value:       5 * time.Second,
			Sources:     cli.EnvVars("COPILOT_ANALYTICS_TIMEOUT"),
			Destination: &a.timeout,
		},
	}
}

// Configure returns the analytics client, or nil when no URL is set
func (a *Analytics) Configure() interfaces.AnalyticsClient {
	if a.baseURL == "" {
		logging.Default().Info("Analytics service not configured, live metrics disabled")
		return nil
	}
	logging.Default().Info("Analytics service enabled", "url", a.baseURL)
	return analytics.New(a.baseURL, analytics.WithTimeout(a.timeout))
}
