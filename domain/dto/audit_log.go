package dto

import (
	"time"

	"github.com/google/uuid"
)

type AuditLogResponse struct {
	ID            uuid.UUID  `json:"id"`
	ActorID       *uuid.UUID `json:"actor_id,omitempty"`
	Action        string     `json:"action"`
	AffectedTable string     `json:"affected_table"`
	RecordID      string     `json:"record_id"`
	Description   string     `json:"description"`
	Before        any        `json:"before,omitempty"`
	After         any        `json:"after,omitempty"`
	IPAddress     string     `json:"ip_address,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

type AuditLogListRequest struct {
	AffectedTable string `query:"table"`
	Action        string `query:"action"`
	ActorID       string `query:"actor_id" validate:"omitempty,uuid"`
	Page          int    `query:"page"`
	Limit         int    `query:"limit"`
}

type AuditLogListResponse struct {
	Logs []AuditLogResponse `json:"logs"`
	Meta PaginationMeta     `json:"meta"`
}
