package models

import "time"

// AnnouncementPriority defines ordering for announcements.
type AnnouncementPriority string

const (
	AnnouncementPriorityLow    AnnouncementPriority = "LOW"
	AnnouncementPriorityMedium AnnouncementPriority = "MEDIUM"
	AnnouncementPriorityHigh   AnnouncementPriority = "HIGH"
)

// Announcement represents a persisted announcement row.
type Announcement struct {
	ID        string               `db:"id" json:"id"`
	Title     string               `db:"title" json:"title"`
	Content   string               `db:"content" json:"content"`
	Priority  AnnouncementPriority `db:"priority" json:"priority"`
	Category  string               `db:"category" json:"category"`
	ExpiresAt *time.Time           `db:"expires_at" json:"expires_at,omitempty"`
	Active    bool                 `db:"active" json:"active"`
	CreatedBy string               `db:"created_by" json:"created_by"`
	CreatedAt time.Time            `db:"created_at" json:"created_at"`
}

// AnnouncementFilter allows listing announcements.
type AnnouncementFilter struct {
	Category      string
	ActiveOnly    bool
	UnexpiredOnly bool
	Page          int
	PageSize      int
}
