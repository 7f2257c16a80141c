package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/dtu-portal/timetable-api/internal/models"
)

// AssignedClassRepository reads the teacher-subject assignments maintained by
// the admin application.
type AssignedClassRepository struct {
	db *sqlx.DB
}

// NewAssignedClassRepository constructs the repository.
func NewAssignedClassRepository(db *sqlx.DB) *AssignedClassRepository {
	return &AssignedClassRepository{db: db}
}

// ListDetails returns every assignment joined with its subject and teacher,
// in a stable order.
func (r *AssignedClassRepository) ListDetails(ctx context.Context) ([]models.AssignedClassDetail, error) {
	const query = `
SELECT ac.id, ac.teacher_id, u.name AS teacher_name,
       ac.subject_id, s.name AS subject_name, s.code AS subject_code,
       s.semester, s.branch
FROM assigned_classes ac
JOIN subjects s ON s.id = ac.subject_id
JOIN users u ON u.id = ac.teacher_id
ORDER BY s.branch ASC, s.semester ASC, s.code ASC, ac.id ASC`
	var assignments []models.AssignedClassDetail
	if err := r.db.SelectContext(ctx, &assignments, query); err != nil {
		return nil, fmt.Errorf("list assigned classes: %w", err)
	}
	return assignments, nil
}
