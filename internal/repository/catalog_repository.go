package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

type queryObserver interface {
	ObserveDBQuery(label string, duration time.Duration)
}

// CatalogRepository reads timetable generation input from the school catalog.
// It never writes; generated timetables are not stored.
type CatalogRepository struct {
	db      *sqlx.DB
	metrics queryObserver
}

// NewCatalogRepository constructs the repository. metrics may be nil.
func NewCatalogRepository(db *sqlx.DB, metrics queryObserver) *CatalogRepository {
	return &CatalogRepository{db: db, metrics: metrics}
}

// ListClassSubjects returns subject list entries ordered by class position then
// subject position. A non-empty classIDs restricts the result to those classes.
func (r *CatalogRepository) ListClassSubjects(ctx context.Context, classIDs []string) ([]models.ClassSubjectRow, error) {
	base := `SELECT cs.class_id, cs.subject, cs.position
		FROM class_subjects cs
		JOIN classes c ON c.id = cs.class_id`
	order := ` ORDER BY c.position, c.id, cs.position`

	query := base + order
	var args []interface{}
	if len(classIDs) > 0 {
		inQuery, inArgs, err := sqlx.In(base+` WHERE cs.class_id IN (?)`+order, classIDs)
		if err != nil {
			return nil, fmt.Errorf("build class subject query: %w", err)
		}
		query = r.db.Rebind(inQuery)
		args = inArgs
	}

	var rows []models.ClassSubjectRow
	if err := r.selectTimed(ctx, "catalog_class_subjects", &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list class subjects: %w", err)
	}
	return rows, nil
}

// ListSubjectTeachers returns the global subject to teacher mapping.
func (r *CatalogRepository) ListSubjectTeachers(ctx context.Context) ([]models.SubjectTeacherRow, error) {
	const query = `SELECT subject, teacher_id FROM subject_teachers ORDER BY subject`
	var rows []models.SubjectTeacherRow
	if err := r.selectTimed(ctx, "catalog_subject_teachers", &rows, query); err != nil {
		return nil, fmt.Errorf("list subject teachers: %w", err)
	}
	return rows, nil
}

// ListRooms returns active rooms in pool order.
func (r *CatalogRepository) ListRooms(ctx context.Context) ([]models.RoomRow, error) {
	const query = `SELECT id, position FROM rooms WHERE active = TRUE ORDER BY position, id`
	var rows []models.RoomRow
	if err := r.selectTimed(ctx, "catalog_rooms", &rows, query); err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return rows, nil
}

// ListAvailability returns every declared teacher availability slot.
func (r *CatalogRepository) ListAvailability(ctx context.Context) ([]models.TeacherAvailabilityRow, error) {
	const query = `SELECT teacher_id, day_of_week, period FROM teacher_availability ORDER BY teacher_id, day_of_week, period`
	var rows []models.TeacherAvailabilityRow
	if err := r.selectTimed(ctx, "catalog_availability", &rows, query); err != nil {
		return nil, fmt.Errorf("list teacher availability: %w", err)
	}
	return rows, nil
}

func (r *CatalogRepository) selectTimed(ctx context.Context, label string, dest interface{}, query string, args ...interface{}) error {
	start := time.Now()
	err := r.db.SelectContext(ctx, dest, query, args...)
	if r.metrics != nil {
		r.metrics.ObserveDBQuery(label, time.Since(start))
	}
	return err
}
