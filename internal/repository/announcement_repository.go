package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/srisai/college-api/internal/models"
)

// AnnouncementRepository manages persistence for announcements.
type AnnouncementRepository struct {
	db *sqlx.DB
}

// NewAnnouncementRepository constructs an AnnouncementRepository.
func NewAnnouncementRepository(db *sqlx.DB) *AnnouncementRepository {
	return &AnnouncementRepository{db: db}
}

// List returns announcements matching the filter, newest first.
func (r *AnnouncementRepository) List(ctx context.Context, filter models.AnnouncementFilter) ([]models.Announcement, int, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	idx := 1

	if filter.Category != "" {
		where = append(where, fmt.Sprintf("category = $%d", idx))
		args = append(args, filter.Category)
		idx++
	}
	if filter.ActiveOnly {
		where = append(where, "active = TRUE")
	}
	if filter.UnexpiredOnly {
		where = append(where, fmt.Sprintf("(expires_at IS NULL OR expires_at > $%d)", idx))
		args = append(args, time.Now().UTC())
		idx++
	}
	whereClause := strings.Join(where, " AND ")

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM announcements WHERE %s`, whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count announcements: %w", err)
	}

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}

	query := fmt.Sprintf(`SELECT id, title, content, priority, category, expires_at, active, created_by, created_at
        FROM announcements WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, whereClause, idx, idx+1)
	args = append(args, size, (page-1)*size)

	var announcements []models.Announcement
	if err := r.db.SelectContext(ctx, &announcements, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list announcements: %w", err)
	}
	return announcements, total, nil
}

// FindByID fetches one announcement.
func (r *AnnouncementRepository) FindByID(ctx context.Context, id string) (*models.Announcement, error) {
	const query = `SELECT id, title, content, priority, category, expires_at, active, created_by, created_at
        FROM announcements WHERE id = $1`
	var ann models.Announcement
	if err := r.db.GetContext(ctx, &ann, query, id); err != nil {
		return nil, err
	}
	return &ann, nil
}

// ListRecentActive returns the newest active, unexpired announcements,
// capped at limit.
func (r *AnnouncementRepository) ListRecentActive(ctx context.Context, limit int) ([]models.Announcement, error) {
	const query = `SELECT id, title, content, priority, category, expires_at, active, created_by, created_at
        FROM announcements
        WHERE active = TRUE AND (expires_at IS NULL OR expires_at > $1)
        ORDER BY created_at DESC LIMIT $2`
	var announcements []models.Announcement
	if err := r.db.SelectContext(ctx, &announcements, query, time.Now().UTC(), limit); err != nil {
		return nil, fmt.Errorf("list recent announcements: %w", err)
	}
	return announcements, nil
}

// Create inserts a new announcement record.
func (r *AnnouncementRepository) Create(ctx context.Context, ann *models.Announcement) error {
	if ann.ID == "" {
		ann.ID = uuid.NewString()
	}
	if ann.CreatedAt.IsZero() {
		ann.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO announcements (id, title, content, priority, category, expires_at, active, created_by, created_at)
        VALUES (:id, :title, :content, :priority, :category, :expires_at, :active, :created_by, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, ann); err != nil {
		return fmt.Errorf("create announcement: %w", err)
	}
	return nil
}

// Update rewrites the mutable fields of an announcement.
func (r *AnnouncementRepository) Update(ctx context.Context, ann *models.Announcement) error {
	const query = `UPDATE announcements SET title = :title, content = :content, priority = :priority,
        category = :category, expires_at = :expires_at, active = :active WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, ann); err != nil {
		return fmt.Errorf("update announcement: %w", err)
	}
	return nil
}

// SetActive toggles the soft-delete flag.
func (r *AnnouncementRepository) SetActive(ctx context.Context, id string, active bool) error {
	const query = `UPDATE announcements SET active = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, active); err != nil {
		return fmt.Errorf("set announcement active: %w", err)
	}
	return nil
}
