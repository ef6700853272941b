package workers

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/avancea/ritmo/internal/gen"
	"github.com/avancea/ritmo/internal/models"
	"github.com/avancea/ritmo/internal/queue"
	"github.com/avancea/ritmo/internal/storage"
)

// Processor dispatches queue jobs: generation runs and inbound push
// messages from the Slack and email bridges.
type Processor struct {
	store     storage.Store
	genEngine *gen.Engine
	jobQueue  queue.JobQueue
	log       *zap.Logger
}

// NewProcessor creates a job processor.
func NewProcessor(store storage.Store, genEngine *gen.Engine, jobQueue queue.JobQueue, log *zap.Logger) *Processor {
	return &Processor{
		store:     store,
		genEngine: genEngine,
		jobQueue:  jobQueue,
		log:       log,
	}
}

// ProcessJob runs a single job to completion.
func (p *Processor) ProcessJob(ctx context.Context, job *queue.Job) error {
	switch job.Type {
	case queue.JobTypeGenerate:
		return p.processGenJob(ctx, job)
	case queue.JobTypePushSlack:
		return p.processSlackPushJob(ctx, job)
	case queue.JobTypePushEmail:
		return p.processEmailPushJob(ctx, job)
	default:
		return fmt.Errorf("unknown job type %q", job.Type)
	}
}

func (p *Processor) processGenJob(ctx context.Context, job *queue.Job) error {
	if job.Gen == nil {
		return fmt.Errorf("gen payload is required for generate job")
	}

	source := job.Gen.Source
	if source == "" {
		source = models.EventSourceCron
	}

	args := gen.Args{
		WorkspaceRefID:        job.WorkspaceRefID,
		Targets:               job.Gen.Targets,
		FilterHabitRefIDs:     job.Gen.FilterHabitRefIDs,
		FilterChoreRefIDs:     job.Gen.FilterChoreRefIDs,
		FilterMetricRefIDs:    job.Gen.FilterMetricRefIDs,
		FilterPersonRefIDs:    job.Gen.FilterPersonRefIDs,
		FilterSlackTaskRefIDs: job.Gen.FilterSlackTaskRefIDs,
		FilterEmailTaskRefIDs: job.Gen.FilterEmailTaskRefIDs,
		GenEvenIfNotModified:  job.Gen.GenEvenIfNotModified,
		Source:                source,
	}

	if err := p.genEngine.Run(ctx, args); err != nil {
		return fmt.Errorf("generation job failed: %w", err)
	}

	p.log.Info("generation job done",
		zap.String("job_id", job.ID.String()),
		zap.String("workspace_ref_id", job.WorkspaceRefID.String()))
	return nil
}

func (p *Processor) processSlackPushJob(ctx context.Context, job *queue.Job) error {
	if job.Slack == nil {
		return fmt.Errorf("slack payload is required for push_slack job")
	}

	var channel *string
	if job.Slack.Channel != "" {
		channel = &job.Slack.Channel
	}

	var taskRefID uuid.UUID
	err := p.store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
		workspace, err := uow.Workspaces().Load(ctx, job.WorkspaceRefID)
		if err != nil {
			return err
		}
		if !workspace.IsFeatureAvailable(models.FeatureSlackTasks) {
			return &models.FeatureUnavailableError{Feature: string(models.FeatureSlackTasks)}
		}

		task, err := models.NewSlackTask(workspace.RefID, job.Slack.User, channel,
			job.Slack.Message, job.Slack.GenerationExtraInfo, job.CreatedAt)
		if err != nil {
			return err
		}
		if err := uow.SlackTasks().Create(ctx, task); err != nil {
			return err
		}
		taskRefID = task.RefID
		return uow.EntityEvents().Append(ctx, &models.EntityEvent{
			EntityKind: "slack-task",
			EntityID:   task.RefID,
			EventName:  "created",
			Source:     models.EventSourceSlack,
			Version:    task.Version,
			Timestamp:  task.CreatedTime,
		})
	})
	if err != nil {
		return fmt.Errorf("failed to materialize slack task: %w", err)
	}

	return p.enqueueTargetedGen(ctx, job.WorkspaceRefID, queue.GenPayload{
		Targets:               []models.SyncTarget{models.SyncTargetSlackTasks},
		FilterSlackTaskRefIDs: []uuid.UUID{taskRefID},
		Source:                models.EventSourceSlack,
	})
}

func (p *Processor) processEmailPushJob(ctx context.Context, job *queue.Job) error {
	if job.Email == nil {
		return fmt.Errorf("email payload is required for push_email job")
	}

	var taskRefID uuid.UUID
	err := p.store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
		workspace, err := uow.Workspaces().Load(ctx, job.WorkspaceRefID)
		if err != nil {
			return err
		}
		if !workspace.IsFeatureAvailable(models.FeatureEmailTasks) {
			return &models.FeatureUnavailableError{Feature: string(models.FeatureEmailTasks)}
		}

		task, err := models.NewEmailTask(workspace.RefID, job.Email.FromAddress, job.Email.FromName,
			job.Email.ToAddress, job.Email.Subject, job.Email.Body, job.Email.GenerationExtraInfo, job.CreatedAt)
		if err != nil {
			return err
		}
		if err := uow.EmailTasks().Create(ctx, task); err != nil {
			return err
		}
		taskRefID = task.RefID
		return uow.EntityEvents().Append(ctx, &models.EntityEvent{
			EntityKind: "email-task",
			EntityID:   task.RefID,
			EventName:  "created",
			Source:     models.EventSourceEmail,
			Version:    task.Version,
			Timestamp:  task.CreatedTime,
		})
	})
	if err != nil {
		return fmt.Errorf("failed to materialize email task: %w", err)
	}

	return p.enqueueTargetedGen(ctx, job.WorkspaceRefID, queue.GenPayload{
		Targets:               []models.SyncTarget{models.SyncTargetEmailTasks},
		FilterEmailTaskRefIDs: []uuid.UUID{taskRefID},
		Source:                models.EventSourceEmail,
	})
}

func (p *Processor) enqueueTargetedGen(ctx context.Context, workspaceRefID uuid.UUID, payload queue.GenPayload) error {
	genJob := queue.NewGenJob(workspaceRefID, payload)
	if err := p.jobQueue.Enqueue(ctx, genJob); err != nil {
		return fmt.Errorf("failed to enqueue follow-up gen job: %w", err)
	}
	return nil
}
