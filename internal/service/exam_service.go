package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/bimbelhub/bimbel-backend/internal/config"
	"github.com/bimbelhub/bimbel-backend/internal/model"
	"github.com/bimbelhub/bimbel-backend/internal/repository"
	"github.com/bimbelhub/bimbel-backend/internal/response"
	"github.com/bimbelhub/bimbel-backend/internal/session"
)

// Domain Errors
var (
	ErrExamNotFound = errors.New("exam not found")
	ErrExamActive   = errors.New("active exam cannot be modified")
	ErrNoQuestions  = errors.New("exam has no questions, cannot activate")
)

// ExamService handles tryout catalog business logic and Redis caching.
// It also implements session.DefinitionLoader: live sessions resolve their
// definition through the cache so a hot exam never hits Postgres per open.
type ExamService struct {
	examRepo *repository.ExamRepository
	rdb      *redis.Client
	cfg      *config.Config
	log      zerolog.Logger
}

// NewExamService creates a new ExamService.
func NewExamService(
	examRepo *repository.ExamRepository,
	rdb *redis.Client,
	cfg *config.Config,
	log zerolog.Logger,
) *ExamService {
	return &ExamService{
		examRepo: examRepo,
		rdb:      rdb,
		cfg:      cfg,
		log:      log.With().Str("component", "exam_service").Logger(),
	}
}

// GetByID retrieves an exam by its UUID, bypassing the cache. Admin reads
// must always see the stored row.
func (s *ExamService) GetByID(ctx context.Context, id uuid.UUID) (*model.ExamDefinition, error) {
	exam, err := s.examRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrExamNotFound
		}
		return nil, err
	}
	return exam, nil
}

// List retrieves exams with pagination metadata.
func (s *ExamService) List(ctx context.Context, activeOnly bool, page, perPage int) ([]model.ExamDefinition, *response.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	exams, total, err := s.examRepo.ListPaginated(ctx, activeOnly, perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, err
	}

	totalPages := (total + perPage - 1) / perPage
	return exams, &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: totalPages,
	}, nil
}

// Create validates and inserts a new draft exam.
func (s *ExamService) Create(ctx context.Context, exam *model.ExamDefinition) error {
	exam.Normalize()
	exam.Active = false
	if err := exam.Validate(); err != nil {
		return err
	}
	return s.examRepo.Create(ctx, exam)
}

// Update replaces an exam's definition. Active exams are frozen so a learner
// mid-attempt can never see the paper change under them.
func (s *ExamService) Update(ctx context.Context, exam *model.ExamDefinition) error {
	current, err := s.GetByID(ctx, exam.ID)
	if err != nil {
		return err
	}
	if current.Active {
		return ErrExamActive
	}

	exam.Normalize()
	if err := exam.Validate(); err != nil {
		return err
	}
	if err := s.examRepo.Update(ctx, exam); err != nil {
		return err
	}

	// Drop any stale cached copy.
	s.rdb.Del(ctx, config.CacheKey.ExamDefinitionKey(exam.ID.String()))
	return nil
}

// Activate makes an exam visible to learners and warms its cache.
func (s *ExamService) Activate(ctx context.Context, examID uuid.UUID) error {
	exam, err := s.GetByID(ctx, examID)
	if err != nil {
		return err
	}
	if len(exam.Questions) == 0 {
		return ErrNoQuestions
	}

	if err := s.examRepo.SetActive(ctx, examID, true); err != nil {
		return err
	}
	exam.Active = true

	if err := s.WarmExamCache(ctx, exam); err != nil {
		// Cache warming is best-effort; the loader falls back to Postgres.
		s.log.Warn().Err(err).Str("exam_id", examID.String()).Msg("Cache warm failed")
	}

	s.log.Info().Str("exam_id", examID.String()).Msg("Exam activated")
	return nil
}

// Deactivate hides an exam from learners and evicts its cache entry.
// Sessions already running keep their loaded definition.
func (s *ExamService) Deactivate(ctx context.Context, examID uuid.UUID) error {
	if err := s.examRepo.SetActive(ctx, examID, false); err != nil {
		return err
	}
	s.rdb.Del(ctx, config.CacheKey.ExamDefinitionKey(examID.String()))
	s.log.Info().Str("exam_id", examID.String()).Msg("Exam deactivated")
	return nil
}

// Delete removes an inactive exam permanently.
func (s *ExamService) Delete(ctx context.Context, examID uuid.UUID) error {
	exam, err := s.GetByID(ctx, examID)
	if err != nil {
		return err
	}
	if exam.Active {
		return ErrExamActive
	}
	return s.examRepo.Delete(ctx, examID)
}

// WarmExamCache serializes a definition into Redis.
// This is the core cache-warming logic used by Activate and PrewarmAllCaches.
func (s *ExamService) WarmExamCache(ctx context.Context, exam *model.ExamDefinition) error {
	raw, err := json.Marshal(exam)
	if err != nil {
		return fmt.Errorf("encode exam: %w", err)
	}

	key := config.CacheKey.ExamDefinitionKey(exam.ID.String())
	if err := s.rdb.Set(ctx, key, raw, s.cfg.ExamCacheTTL).Err(); err != nil {
		return fmt.Errorf("cache exam: %w", err)
	}
	return nil
}

// PrewarmAllCaches loads all active exams into Redis on application startup.
func (s *ExamService) PrewarmAllCaches(ctx context.Context) error {
	exams, err := s.examRepo.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("list active exams: %w", err)
	}

	s.log.Info().Int("count", len(exams)).Msg("Prewarming active exams...")
	for i := range exams {
		if err := s.WarmExamCache(ctx, &exams[i]); err != nil {
			s.log.Warn().Err(err).Str("exam_id", exams[i].ID.String()).Msg("Prewarm failed")
		}
	}

	s.log.Info().Int("count", len(exams)).Msg("Prewarming complete")
	return nil
}

// Load implements session.DefinitionLoader: cache first, Postgres on miss
// with a self-healing write-back. Inactive exams are unavailable to new
// sessions even when a stale cached copy exists.
func (s *ExamService) Load(ctx context.Context, examID uuid.UUID) (*model.ExamDefinition, error) {
	key := config.CacheKey.ExamDefinitionKey(examID.String())

	data, err := s.rdb.Get(ctx, key).Bytes()
	if err == nil {
		exam := &model.ExamDefinition{}
		if err := json.Unmarshal(data, exam); err == nil && exam.Active {
			return exam, nil
		}
		// Corrupt or stale entry; fall through to Postgres.
		s.rdb.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		s.log.Warn().Err(err).Msg("Cache read failed, falling back to database")
	}

	exam, err := s.examRepo.GetByID(ctx, examID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, session.ErrExamUnavailable
		}
		return nil, err
	}
	if !exam.Active {
		return nil, session.ErrExamUnavailable
	}

	if err := s.WarmExamCache(ctx, exam); err != nil {
		s.log.Warn().Err(err).Str("exam_id", examID.String()).Msg("Cache write-back failed")
	}
	return exam, nil
}
