package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/abhinav/feedback-service/internal/domain"
)

// FeedbackRepository defines persistence access for feedback records.
type FeedbackRepository interface {
	Create(ctx context.Context, feedback *domain.Feedback) error
	GetByID(ctx context.Context, id string) (*domain.Feedback, error)
	List(ctx context.Context) ([]*domain.Feedback, error)
}

type feedbackRepository struct {
	pool *pgxpool.Pool
}

// NewFeedbackRepository returns a Postgres-backed implementation.
func NewFeedbackRepository(pool *pgxpool.Pool) FeedbackRepository {
	return &feedbackRepository{pool: pool}
}

func (r *feedbackRepository) Create(ctx context.Context, feedback *domain.Feedback) error {
	const query = `
        INSERT INTO feedbacks (id, name, email, message, rating, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.pool.Exec(ctx, query,
		feedback.ID,
		feedback.Name,
		feedback.Email,
		feedback.Message,
		feedback.Rating,
		feedback.CreatedAt,
	)
	return err
}

func (r *feedbackRepository) GetByID(ctx context.Context, id string) (*domain.Feedback, error) {
	const query = `
        SELECT id, name, email, message, rating, created_at
        FROM feedbacks WHERE id=$1`

	var feedback domain.Feedback
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&feedback.ID,
		&feedback.Name,
		&feedback.Email,
		&feedback.Message,
		&feedback.Rating,
		&feedback.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &feedback, nil
}

func (r *feedbackRepository) List(ctx context.Context) ([]*domain.Feedback, error) {
	const query = `
        SELECT id, name, email, message, rating, created_at
        FROM feedbacks ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var feedbacks []*domain.Feedback
	for rows.Next() {
		var feedback domain.Feedback
		if err := rows.Scan(
			&feedback.ID,
			&feedback.Name,
			&feedback.Email,
			&feedback.Message,
			&feedback.Rating,
			&feedback.CreatedAt,
		); err != nil {
			return nil, err
		}
		feedbacks = append(feedbacks, &feedback)
	}
	return feedbacks, rows.Err()
}
