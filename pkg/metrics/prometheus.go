package metrics

import (
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
)

// Metrics tracks process-wide experiment run statistics, aggregated across
// every experiment the Control API has started.
type Metrics struct {
	EpisodesTotal      int64
	EpisodesResolved   int64
	EpisodesUnresolved int64
	ViolationsTotal    int64
	ReviewsTotal       int64
	ReviewsBlocked     int64
	RewardSumMilli     int64 // total reward * 1000, kept integer for atomic ops
}

// PrometheusExporter exports Metrics in Prometheus text format.
type PrometheusExporter struct {
	metrics *Metrics
}

// NewPrometheusExporter creates a new Prometheus exporter.
func NewPrometheusExporter(m *Metrics) *PrometheusExporter {
	return &PrometheusExporter{
		metrics: m,
	}
}

// Export returns metrics in Prometheus text format.
func (e *PrometheusExporter) Export() string {
	var b strings.Builder

	episodesTotal := atomic.LoadInt64(&e.metrics.EpisodesTotal)
	episodesResolved := atomic.LoadInt64(&e.metrics.EpisodesResolved)
	episodesUnresolved := atomic.LoadInt64(&e.metrics.EpisodesUnresolved)
	violationsTotal := atomic.LoadInt64(&e.metrics.ViolationsTotal)
	reviewsTotal := atomic.LoadInt64(&e.metrics.ReviewsTotal)
	reviewsBlocked := atomic.LoadInt64(&e.metrics.ReviewsBlocked)
	rewardSumMilli := atomic.LoadInt64(&e.metrics.RewardSumMilli)

	fmt.Fprintf(&b, "sentryloop_episodes_total{outcome=\"resolved\"} %d\n", episodesResolved)
	fmt.Fprintf(&b, "sentryloop_episodes_total{outcome=\"unresolved\"} %d\n", episodesUnresolved)
	fmt.Fprintf(&b, "sentryloop_episodes_total %d\n", episodesTotal)

	fmt.Fprintf(&b, "sentryloop_violations_total %d\n", violationsTotal)

	var violationRate float64
	if episodesTotal > 0 {
		violationRate = float64(violationsTotal) / float64(episodesTotal)
	}
	fmt.Fprintf(&b, "sentryloop_violation_rate %s\n", formatFloat(violationRate))

	fmt.Fprintf(&b, "sentryloop_reviews_total %d\n", reviewsTotal)
	fmt.Fprintf(&b, "sentryloop_reviews_blocked_total %d\n", reviewsBlocked)

	var blockRate float64
	if reviewsTotal > 0 {
		blockRate = float64(reviewsBlocked) / float64(reviewsTotal)
	}
	fmt.Fprintf(&b, "sentryloop_review_block_rate %s\n", formatFloat(blockRate))

	fmt.Fprintf(&b, "sentryloop_reward_sum %s\n", formatFloat(float64(rewardSumMilli)/1000))

	return b.String()
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (e *PrometheusExporter) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, e.Export())
	})
}

// formatFloat formats a float64 for Prometheus, trimming trailing zeros.
func formatFloat(f float64) string {
	if f == 0.0 {
		return "0"
	}
	s := fmt.Sprintf("%.3f", f)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	return s
}
