package dto

import "github.com/google/uuid"

// StatusSummary aggregates inspection records by status
type StatusSummary struct {
	Total          int64   `json:"total"`
	Passed         int64   `json:"passed"`
	Failed         int64   `json:"failed"`
	Pending        int64   `json:"pending"`
	PassRate       float64 `json:"pass_rate"`
	AvgConfidence  float64 `json:"avg_confidence"`
	AvgInferenceMs float64 `json:"avg_inference_ms"`
}

type OverviewResponse struct {
	Team    string        `json:"team"`
	Days    int           `json:"days"`
	Summary StatusSummary `json:"summary"`
}

type DailyStats struct {
	Date    string `json:"date"`
	Total   int64  `json:"total"`
	Passed  int64  `json:"passed"`
	Failed  int64  `json:"failed"`
	Pending int64  `json:"pending"`
}

type TeamStatsResponse struct {
	Team  string       `json:"team"`
	Daily []DailyStats `json:"daily"`
}

type UserPerformance struct {
	UserID        uuid.UUID `json:"user_id"`
	Username      string    `json:"username"`
	Total         int64     `json:"total"`
	Passed        int64     `json:"passed"`
	PassRate      float64   `json:"pass_rate"`
	AvgConfidence float64   `json:"avg_confidence"`
}

type UserPerformanceResponse struct {
	Team  string            `json:"team"`
	Users []UserPerformance `json:"users"`
}
