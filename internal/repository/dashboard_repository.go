package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// DashboardRepository serves the aggregate counts behind the admin dashboard.
type DashboardRepository struct {
	db *sqlx.DB
}

// NewDashboardRepository constructs a DashboardRepository.
func NewDashboardRepository(db *sqlx.DB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

// ActiveCounts holds the headline numbers for the admin dashboard.
type ActiveCounts struct {
	Students      int `db:"students"`
	Teachers      int `db:"teachers"`
	Courses       int `db:"courses"`
	Subjects      int `db:"subjects"`
	Exams         int `db:"exams"`
	Announcements int `db:"announcements"`
}

// CountActive gathers the active-entity counts in one round trip.
func (r *DashboardRepository) CountActive(ctx context.Context) (*ActiveCounts, error) {
	const query = `SELECT
        (SELECT COUNT(*) FROM students WHERE active = TRUE) AS students,
        (SELECT COUNT(*) FROM teachers WHERE active = TRUE) AS teachers,
        (SELECT COUNT(*) FROM courses WHERE active = TRUE) AS courses,
        (SELECT COUNT(*) FROM subjects WHERE active = TRUE) AS subjects,
        (SELECT COUNT(*) FROM exams WHERE active = TRUE) AS exams,
        (SELECT COUNT(*) FROM announcements WHERE active = TRUE) AS announcements`
	var counts ActiveCounts
	if err := r.db.GetContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("count active entities: %w", err)
	}
	return &counts, nil
}
