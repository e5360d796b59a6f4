package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/abhinav/feedback-service/internal/domain"
	"github.com/abhinav/feedback-service/internal/events"
	"github.com/abhinav/feedback-service/internal/persistence"
	"github.com/abhinav/feedback-service/internal/repository"
	apperrors "github.com/abhinav/feedback-service/pkg/util"
)

const (
	feedbackListCacheKey = "feedback:list"
	feedbackListCacheTTL = 30 * time.Second
	messagePreviewLen    = 80
)

// FeedbackService manages feedback records. The Redis cache is best-effort:
// a nil or unreachable cache degrades to plain repository reads.
type FeedbackService struct {
	repo       repository.FeedbackRepository
	cache      *persistence.Redis
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewFeedbackService builds the service.
func NewFeedbackService(repo repository.FeedbackRepository, cache *persistence.Redis, dispatcher events.Dispatcher, logger *zap.Logger) *FeedbackService {
	return &FeedbackService{
		repo:       repo,
		cache:      cache,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Create persists a new feedback record and invalidates the list cache.
func (s *FeedbackService) Create(ctx context.Context, feedback *domain.Feedback) error {
	feedback.ID = uuid.NewString()
	feedback.CreatedAt = time.Now().UTC()

	if err := s.repo.Create(ctx, feedback); err != nil {
		return err
	}

	s.invalidateListCache(ctx)

	if s.dispatcher != nil {
		preview := feedback.Message
		if len(preview) > messagePreviewLen {
			// Cut on a rune boundary so the payload stays valid UTF-8.
			cut := messagePreviewLen
			for cut > 0 && !utf8.RuneStart(preview[cut]) {
				cut--
			}
			preview = preview[:cut]
		}
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventFeedbackCreated,
			Timestamp: time.Now().UTC(),
			Payload: events.FeedbackCreatedPayload{
				FeedbackID:     feedback.ID,
				Rating:         feedback.Rating,
				MessagePreview: preview,
			},
		})
	}
	return nil
}

// List returns all feedback records, newest first, served from cache when warm.
func (s *FeedbackService) List(ctx context.Context) ([]*domain.Feedback, error) {
	if cached, ok := s.readListCache(ctx); ok {
		return cached, nil
	}

	feedbacks, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	s.writeListCache(ctx, feedbacks)
	return feedbacks, nil
}

// GetByID returns a single feedback record or a not-found error.
func (s *FeedbackService) GetByID(ctx context.Context, id string) (*domain.Feedback, error) {
	feedback, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("feedback", map[string]any{"id": id})
		}
		return nil, err
	}
	return feedback, nil
}

func (s *FeedbackService) readListCache(ctx context.Context) ([]*domain.Feedback, bool) {
	if s.cache == nil || s.cache.Client == nil {
		return nil, false
	}
	raw, err := s.cache.Client.Get(ctx, feedbackListCacheKey).Bytes()
	if err != nil {
		return nil, false
	}
	var feedbacks []*domain.Feedback
	if err := json.Unmarshal(raw, &feedbacks); err != nil {
		return nil, false
	}
	return feedbacks, true
}

func (s *FeedbackService) writeListCache(ctx context.Context, feedbacks []*domain.Feedback) {
	if s.cache == nil || s.cache.Client == nil {
		return
	}
	raw, err := json.Marshal(feedbacks)
	if err != nil {
		return
	}
	if err := s.cache.Client.Set(ctx, feedbackListCacheKey, raw, feedbackListCacheTTL).Err(); err != nil {
		s.logger.Debug("feedback list cache write failed", zap.Error(err))
	}
}

func (s *FeedbackService) invalidateListCache(ctx context.Context) {
	if s.cache == nil || s.cache.Client == nil {
		return
	}
	if err := s.cache.Client.Del(ctx, feedbackListCacheKey).Err(); err != nil {
		s.logger.Debug("feedback list cache invalidation failed", zap.Error(err))
	}
}
