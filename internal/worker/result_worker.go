package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/bimbelhub/bimbel-backend/internal/config"
	"github.com/bimbelhub/bimbel-backend/internal/model"
	"github.com/bimbelhub/bimbel-backend/internal/repository"
	"github.com/bimbelhub/bimbel-backend/internal/service"
)

const (
	ResultBatchSize    = 50
	ResultBatchTimeout = 2 * time.Second
	ResultPollTimeout  = 1 * time.Second
)

// ResultWorker drains the result queue and persists graded results to
// Postgres in batches.
type ResultWorker struct {
	resultRepo *repository.ResultRepository
	rdb        *redis.Client
	log        zerolog.Logger
}

func NewResultWorker(resultRepo *repository.ResultRepository, rdb *redis.Client, log zerolog.Logger) *ResultWorker {
	return &ResultWorker{
		resultRepo: resultRepo,
		rdb:        rdb,
		log:        log.With().Str("component", "result_worker").Logger(),
	}
}

// ----------------------------------------------------------------
// Worker loop with batching
// ----------------------------------------------------------------

func (w *ResultWorker) Start(ctx context.Context) {
	w.log.Info().Msg("ResultWorker started")

	batch := make([]*service.ResultPayload, 0, ResultBatchSize)
	lastFlush := time.Now()

	for {
		// Should flush?
		if len(batch) > 0 &&
			(len(batch) >= ResultBatchSize || time.Since(lastFlush) >= ResultBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, ResultPollTimeout, config.WorkerKey.PersistResultsQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var p service.ResultPayload
			if err := json.Unmarshal([]byte(item[1]), &p); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, &p)
		}
	}
}

// ----------------------------------------------------------------
// Batch insert wrapper with single-row fallback
// ----------------------------------------------------------------

func (w *ResultWorker) flushSafe(ctx context.Context, batch []*service.ResultPayload) {
	if len(batch) == 0 {
		return
	}

	rows := make([]*model.ExamResult, 0, len(batch))
	payloads := make([]*service.ResultPayload, 0, len(batch))
	for _, p := range batch {
		row, err := p.ToExamResult()
		if err != nil {
			w.log.Error().Err(err).Str("exam_id", p.ExamID).Msg("Dropping malformed result payload")
			continue
		}
		rows = append(rows, row)
		payloads = append(payloads, p)
	}

	if err := w.resultRepo.BulkInsert(ctx, rows); err != nil {
		w.log.Warn().Err(err).Msg("bulk result insert failed, using fallback")

		for i, row := range rows {
			if err := w.resultRepo.Insert(ctx, row); err != nil {
				w.log.Error().Err(err).Msg("single insert failed — requeueing")
				raw, _ := json.Marshal(payloads[i])
				w.rdb.RPush(ctx, config.WorkerKey.PersistResultsQueue, raw)
			}
		}
		return
	}

	w.log.Debug().Int("count", len(rows)).Msg("Results persisted")
}
