package api

import (
	"github.com/shieldloop/sentryloop/pkg/domain"
	"github.com/shieldloop/sentryloop/pkg/types"
)

// StartResponse is returned by POST /experiments.
type StartResponse struct {
	UUID   string                  `json:"uuid"`
	Status domain.ExperimentStatus `json:"status"`
}

// StatisticsResponse mirrors domain.Statistics with stable JSON field names.
type StatisticsResponse struct {
	SuccessCount         int                        `json:"success_count"`
	ViolationCount       int                        `json:"violation_count"`
	BlockedCount         int                        `json:"blocked_count"`
	TotalReward          float64                    `json:"total_reward"`
	AverageResponseTime  float64                    `json:"average_response_time"`
	StrategyDistribution map[domain.StrategyTag]int `json:"strategy_distribution"`
	GatewayFallbackCount int                        `json:"gateway_fallback_count"`
}

func statisticsResponse(s domain.Statistics) StatisticsResponse {
	return StatisticsResponse{
		SuccessCount:         s.SuccessCount,
		ViolationCount:       s.ViolationCount,
		BlockedCount:         s.BlockedCount,
		TotalReward:          s.TotalReward,
		AverageResponseTime:  s.AverageResponseTime,
		StrategyDistribution: s.StrategyDistribution,
		GatewayFallbackCount: s.GatewayFallbackCount,
	}
}

// StatusResponse is returned by GET /experiments/:uuid.
type StatusResponse struct {
	UUID           string                  `json:"uuid"`
	Name           string                  `json:"name"`
	Status         domain.ExperimentStatus `json:"status"`
	CurrentEpisode int                     `json:"current_episode"`
	TotalEpisodes  int                     `json:"total_episodes"`
	Statistics     StatisticsResponse      `json:"statistics"`
	FailureReason  string                  `json:"failure_reason,omitempty"`
}

func statusResponse(exp domain.Experiment) StatusResponse {
	return StatusResponse{
		UUID:           exp.UUID,
		Name:           exp.Name,
		Status:         exp.Status,
		CurrentEpisode: exp.CurrentEpisode,
		TotalEpisodes:  exp.TotalEpisodes,
		Statistics:     statisticsResponse(exp.Stats),
		FailureReason:  exp.FailureReason,
	}
}

// SummaryResponse is one entry of GET /experiments.
type SummaryResponse struct {
	UUID           string                  `json:"uuid"`
	Name           string                  `json:"name"`
	Status         domain.ExperimentStatus `json:"status"`
	CurrentEpisode int                     `json:"current_episode"`
	TotalEpisodes  int                     `json:"total_episodes"`
}

func summaryResponse(exp domain.Experiment) SummaryResponse {
	return SummaryResponse{
		UUID:           exp.UUID,
		Name:           exp.Name,
		Status:         exp.Status,
		CurrentEpisode: exp.CurrentEpisode,
		TotalEpisodes:  exp.TotalEpisodes,
	}
}

// DefenseStatisticsResponse is returned by GET /defense/statistics.
type DefenseStatisticsResponse struct {
	TotalReviews int64   `json:"total_reviews"`
	Blocked      int64   `json:"blocked"`
	Warned       int64   `json:"warned"`
	Rewritten    int64   `json:"rewritten"`
	Escalated    int64   `json:"escalated"`
	Accepted     int64   `json:"accepted"`
	BlockRate    float64 `json:"block_rate"`
	RewriteRate  float64 `json:"rewrite_rate"`
	WarnRate     float64 `json:"warn_rate"`
}

func defenseStatisticsResponse(s types.ReviewerStats) DefenseStatisticsResponse {
	total := float64(s.TotalReviews)
	rate := func(n int64) float64 {
		if total == 0 {
			return 0
		}
		return float64(n) / total
	}
	return DefenseStatisticsResponse{
		TotalReviews: s.TotalReviews,
		Blocked:      s.Blocked,
		Warned:       s.Warned,
		Rewritten:    s.Rewritten,
		Escalated:    s.Escalated,
		Accepted:     s.Accepted,
		BlockRate:    rate(s.Blocked),
		RewriteRate:  rate(s.Rewritten),
		WarnRate:     rate(s.Warned),
	}
}

// okResponse is the body of a plain success acknowledgement.
type okResponse struct {
	OK bool `json:"ok"`
}
