package coursestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"massa_gateway/internal/domain/entity"

	_ "github.com/lib/pq"
)

const selectCourseGoal = `SELECT goals, authorization_header FROM courses WHERE id = $1`

// PostgresRepository reads course goal settings from the courses table.
type PostgresRepository struct {
	db *sql.DB
}

// Open connects to Postgres. The connection is established lazily.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open course store: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)
	return db, nil
}

// NewPostgresRepository wraps an open database handle.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetCourseGoal returns nil, nil when no course has the given id.
func (r *PostgresRepository) GetCourseGoal(ctx context.Context, courseID string) (*entity.CourseGoal, error) {
	var goals, authorization sql.NullString
	err := r.db.QueryRowContext(ctx, selectCourseGoal, courseID).Scan(&goals, &authorization)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entity.CourseGoal{
		CourseID:            courseID,
		GoalsURL:            goals.String,
		AuthorizationHeader: authorization.String,
	}, nil
}

// Close closes the database connection.
func (r *PostgresRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Unconfigured stands in when no course store DSN is set; every lookup fails.
type Unconfigured struct{}

func (Unconfigured) GetCourseGoal(context.Context, string) (*entity.CourseGoal, error) {
	return nil, errors.New("course store is not configured")
}
