package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/avancea/ritmo/internal/config"
	"github.com/avancea/ritmo/internal/database"
	"github.com/avancea/ritmo/internal/gen"
	"github.com/avancea/ritmo/internal/logger"
	"github.com/avancea/ritmo/internal/models"
	"github.com/avancea/ritmo/internal/progress"
	"github.com/avancea/ritmo/internal/queue"
	"github.com/avancea/ritmo/internal/storage"
	"github.com/avancea/ritmo/internal/workers"
)

const (
	cronGenInterval  = 1 * time.Hour
	dlqSweepInterval = 1 * time.Hour
	dlqRetention     = 24 * time.Hour

	rabbitMaxRetries  = 10
	rabbitBaseBackoff = 1 * time.Second
	rabbitMaxBackoff  = 30 * time.Second
)

func main() {
	debugFlag := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	if err := run(*debugFlag); err != nil {
		fmt.Fprintf(os.Stderr, "worker: %v\n", err)
		os.Exit(1)
	}
}

func run(debugMode bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.NewProductionLogger(debugMode || cfg.WorkerDebugMode)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	store := database.NewStore(db)

	jobQueue, err := connectQueue(ctx, cfg.RabbitMQURL, log)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	defer jobQueue.Close()

	genEngine := gen.New(store, progress.NewZapReporter(log), log)
	processor := workers.NewProcessor(store, genEngine, jobQueue, log)

	if dlqPurger, ok := jobQueue.(queue.DLQPurger); ok {
		gc := queue.NewGarbageCollector(dlqPurger, dlqSweepInterval, dlqRetention, log)
		go func() {
			if err := gc.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Warn("dead letter garbage collector stopped", zap.Error(err))
			}
		}()
	}

	go runCronGen(ctx, store, jobQueue, log)

	messages, consumeErrs, err := jobQueue.Consume(ctx, cfg.RabbitMQPrefetch)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	log.Info("worker started", zap.Int("prefetch", cfg.RabbitMQPrefetch))

	for {
		select {
		case <-ctx.Done():
			log.Info("worker stopping")
			return nil
		case err, ok := <-consumeErrs:
			if !ok {
				return nil
			}
			return fmt.Errorf("consume channel failed: %w", err)
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			handleMessage(ctx, processor, jobQueue, msg, log)
		}
	}
}

// handleMessage runs one job through the processor, acking on success
// and re-enqueueing retryable failures so delivery order never blocks
// on a poisoned message.
func handleMessage(ctx context.Context, processor *workers.Processor, jobQueue queue.JobQueue, msg *queue.Message, log *zap.Logger) {
	job := msg.GetJob()
	if job == nil {
		log.Warn("discarding message without job payload")
		if err := msg.Nack(false); err != nil {
			log.Warn("nack failed", zap.Error(err))
		}
		return
	}

	jobLog := log.With(
		zap.String("job_id", job.ID.String()),
		zap.String("job_type", string(job.Type)))

	if job.IsExpired() {
		jobLog.Info("dropping expired job")
		if err := msg.Ack(); err != nil {
			jobLog.Warn("ack failed", zap.Error(err))
		}
		return
	}
	if !job.ShouldProcess() {
		// Not ripe yet; push back for redelivery.
		if err := msg.Nack(true); err != nil {
			jobLog.Warn("nack failed", zap.Error(err))
		}
		return
	}

	if err := processor.ProcessJob(ctx, job); err != nil {
		if job.CanRetry() {
			job.IncrementRetry()
			jobLog.Warn("job failed, re-enqueueing",
				zap.Int("retry_count", job.RetryCount),
				zap.Error(err))
			if enqErr := jobQueue.Enqueue(ctx, job); enqErr != nil {
				jobLog.Error("re-enqueue failed", zap.Error(enqErr))
				if nackErr := msg.Nack(true); nackErr != nil {
					jobLog.Warn("nack failed", zap.Error(nackErr))
				}
				return
			}
			if ackErr := msg.Ack(); ackErr != nil {
				jobLog.Warn("ack failed", zap.Error(ackErr))
			}
			return
		}
		jobLog.Error("job failed permanently, dead-lettering", zap.Error(err))
		if nackErr := msg.Nack(false); nackErr != nil {
			jobLog.Warn("nack failed", zap.Error(nackErr))
		}
		return
	}

	if err := msg.Ack(); err != nil {
		jobLog.Warn("ack failed", zap.Error(err))
	}
}

// runCronGen periodically enqueues a full generation pass for the
// default workspace so recurring tasks appear without anyone hitting
// the API.
func runCronGen(ctx context.Context, store storage.Store, jobQueue queue.JobQueue, log *zap.Logger) {
	ticker := time.NewTicker(cronGenInterval)
	defer ticker.Stop()

	enqueue := func() {
		var workspace *models.Workspace
		err := store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
			var err error
			workspace, err = uow.Workspaces().LoadDefault(ctx)
			return err
		})
		if err != nil {
			log.Warn("cron gen skipped, no workspace", zap.Error(err))
			return
		}
		job := queue.NewGenJob(workspace.RefID, queue.GenPayload{
			Source: models.EventSourceCron,
		})
		if err := jobQueue.Enqueue(ctx, job); err != nil {
			log.Warn("cron gen enqueue failed", zap.Error(err))
			return
		}
		log.Info("cron gen enqueued", zap.String("workspace", workspace.RefID.String()))
	}

	enqueue()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			enqueue()
		}
	}
}

func connectQueue(ctx context.Context, amqpURL string, log *zap.Logger) (queue.JobQueue, error) {
	backoff := rabbitBaseBackoff
	var lastErr error
	for attempt := 1; attempt <= rabbitMaxRetries; attempt++ {
		jobQueue, err := queue.NewRabbitMQQueue(amqpURL)
		if err == nil {
			return jobQueue, nil
		}
		lastErr = err
		log.Warn("RabbitMQ connection failed, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("backoff", backoff),
			zap.Error(err))
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > rabbitMaxBackoff {
			backoff = rabbitMaxBackoff
		}
	}
	return nil, fmt.Errorf("giving up after %d attempts: %w", rabbitMaxRetries, lastErr)
}
