package service

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/srisai/college-api/internal/models"
	appErrors "github.com/srisai/college-api/pkg/errors"
)

type announcementRepository interface {
	List(ctx context.Context, filter models.AnnouncementFilter) ([]models.Announcement, int, error)
	FindByID(ctx context.Context, id string) (*models.Announcement, error)
	Create(ctx context.Context, ann *models.Announcement) error
	Update(ctx context.Context, ann *models.Announcement) error
	SetActive(ctx context.Context, id string, active bool) error
}

// CreateAnnouncementRequest represents payload for publishing announcements.
type CreateAnnouncementRequest struct {
	Title     string     `json:"title" validate:"required,max=200"`
	Content   string     `json:"content" validate:"required,max=5000"`
	Priority  string     `json:"priority" validate:"required,oneof=LOW MEDIUM HIGH"`
	Category  string     `json:"category" validate:"required,max=100"`
	ExpiresAt *time.Time `json:"expires_at"`
}

// UpdateAnnouncementRequest represents payload for editing announcements.
type UpdateAnnouncementRequest struct {
	Title     string     `json:"title" validate:"required,max=200"`
	Content   string     `json:"content" validate:"required,max=5000"`
	Priority  string     `json:"priority" validate:"required,oneof=LOW MEDIUM HIGH"`
	Category  string     `json:"category" validate:"required,max=100"`
	ExpiresAt *time.Time `json:"expires_at"`
	Active    *bool      `json:"active"`
}

// AnnouncementService orchestrates announcement publishing.
type AnnouncementService struct {
	repo      announcementRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAnnouncementService constructs an AnnouncementService.
func NewAnnouncementService(repo announcementRepository, validate *validator.Validate, logger *zap.Logger) *AnnouncementService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnnouncementService{repo: repo, validator: validate, logger: logger}
}

// List returns announcements plus pagination data.
func (s *AnnouncementService) List(ctx context.Context, filter models.AnnouncementFilter) ([]models.Announcement, *models.Pagination, error) {
	announcements, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list announcements")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return announcements, pagination, nil
}

// Get returns an announcement by id.
func (s *AnnouncementService) Get(ctx context.Context, id string) (*models.Announcement, error) {
	ann, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "announcement not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load announcement")
	}
	return ann, nil
}

// Create publishes a new announcement attributed to the acting user.
func (s *AnnouncementService) Create(ctx context.Context, createdBy string, req CreateAnnouncementRequest) (*models.Announcement, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid announcement payload")
	}
	if req.ExpiresAt != nil && req.ExpiresAt.Before(time.Now().UTC()) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "expiry must be in the future")
	}

	ann := &models.Announcement{
		Title:     strings.TrimSpace(req.Title),
		Content:   strings.TrimSpace(req.Content),
		Priority:  models.AnnouncementPriority(req.Priority),
		Category:  strings.TrimSpace(req.Category),
		ExpiresAt: req.ExpiresAt,
		Active:    true,
		CreatedBy: createdBy,
	}
	if err := s.repo.Create(ctx, ann); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create announcement")
	}
	return ann, nil
}

// Update edits an existing announcement.
func (s *AnnouncementService) Update(ctx context.Context, id string, req UpdateAnnouncementRequest) (*models.Announcement, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid announcement payload")
	}
	if req.ExpiresAt != nil && req.ExpiresAt.Before(time.Now().UTC()) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "expiry must be in the future")
	}

	ann, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "announcement not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load announcement")
	}

	ann.Title = strings.TrimSpace(req.Title)
	ann.Content = strings.TrimSpace(req.Content)
	ann.Priority = models.AnnouncementPriority(req.Priority)
	ann.Category = strings.TrimSpace(req.Category)
	ann.ExpiresAt = req.ExpiresAt
	if req.Active != nil {
		ann.Active = *req.Active
	}

	if err := s.repo.Update(ctx, ann); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update announcement")
	}
	return ann, nil
}

// Deactivate retracts an announcement.
func (s *AnnouncementService) Deactivate(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "announcement not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load announcement")
	}
	if err := s.repo.SetActive(ctx, id, false); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate announcement")
	}
	return nil
}
