package dto

import (
	"time"

	"clinic-scheduler/internal/domain/entity"
)

type AuditLogResponse struct {
	ID        int64                `json:"id"`
	User      *UserResponse        `json:"user,omitempty"`
	Action    string               `json:"action"`
	Metadata  entity.AuditMetadata `json:"metadata"`
	CreatedAt time.Time            `json:"created_at"`
}

type AuditLogListResponse struct {
	Logs  []AuditLogResponse `json:"logs"`
	Total int64              `json:"total"`
}
