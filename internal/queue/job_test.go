package queue

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/avancea/ritmo/internal/models"
)

func TestNewGenJob(t *testing.T) {
	t.Parallel()

	workspaceRefID := uuid.New()
	habitRefID := uuid.New()

	job := NewGenJob(workspaceRefID, GenPayload{
		Targets:           []models.SyncTarget{models.SyncTargetHabits},
		FilterHabitRefIDs: []uuid.UUID{habitRefID},
		Source:            models.EventSourceCron,
	})

	if job.ID == uuid.Nil {
		t.Error("Expected job ID to be set")
	}
	if job.Type != JobTypeGenerate {
		t.Errorf("Expected job type to be %s, got %s", JobTypeGenerate, job.Type)
	}
	if job.WorkspaceRefID != workspaceRefID {
		t.Errorf("Expected workspace ref ID to be %s, got %s", workspaceRefID, job.WorkspaceRefID)
	}
	if job.Gen == nil {
		t.Fatal("Expected gen payload to be set")
	}
	if len(job.Gen.Targets) != 1 || job.Gen.Targets[0] != models.SyncTargetHabits {
		t.Errorf("Expected targets to be [habits], got %v", job.Gen.Targets)
	}
	if len(job.Gen.FilterHabitRefIDs) != 1 || job.Gen.FilterHabitRefIDs[0] != habitRefID {
		t.Errorf("Expected habit filter to carry %s, got %v", habitRefID, job.Gen.FilterHabitRefIDs)
	}
	if job.RetryCount != 0 {
		t.Errorf("Expected retry count to be 0, got %d", job.RetryCount)
	}
	if job.MaxRetries != 3 {
		t.Errorf("Expected max retries to be 3, got %d", job.MaxRetries)
	}
}

func TestNewSlackPushJob(t *testing.T) {
	t.Parallel()

	workspaceRefID := uuid.New()
	job := NewSlackPushJob(workspaceRefID, SlackPushPayload{
		User:    "jane",
		Channel: "#general",
		Message: "Look at the deploy",
	})

	if job.Type != JobTypePushSlack {
		t.Errorf("Expected job type to be %s, got %s", JobTypePushSlack, job.Type)
	}
	if job.Slack == nil || job.Slack.User != "jane" {
		t.Errorf("Expected slack payload with user jane, got %+v", job.Slack)
	}
	if job.Gen != nil || job.Email != nil {
		t.Error("Expected only the slack payload to be set")
	}
}

func TestNewEmailPushJob(t *testing.T) {
	t.Parallel()

	workspaceRefID := uuid.New()
	job := NewEmailPushJob(workspaceRefID, EmailPushPayload{
		FromAddress: "carol@example.com",
		FromName:    "Carol",
		ToAddress:   "me@example.com",
		Subject:     "Hi",
		Body:        "Hello",
	})

	if job.Type != JobTypePushEmail {
		t.Errorf("Expected job type to be %s, got %s", JobTypePushEmail, job.Type)
	}
	if job.Email == nil || job.Email.FromAddress != "carol@example.com" {
		t.Errorf("Expected email payload from carol@example.com, got %+v", job.Email)
	}
}

func TestJob_ShouldProcess(t *testing.T) {
	t.Parallel()

	workspaceRefID := uuid.New()
	now := time.Now()

	tests := []struct {
		name string
		job  *Job
		want bool
	}{
		{
			name: "no time constraints",
			job: &Job{
				ID:             uuid.New(),
				Type:           JobTypeGenerate,
				WorkspaceRefID: workspaceRefID,
				NotBefore:      nil,
				NotAfter:       nil,
			},
			want: true,
		},
		{
			name: "not before in past",
			job: &Job{
				ID:             uuid.New(),
				Type:           JobTypeGenerate,
				WorkspaceRefID: workspaceRefID,
				NotBefore:      timePtr(now.Add(-1 * time.Hour)),
				NotAfter:       nil,
			},
			want: true,
		},
		{
			name: "not before in future",
			job: &Job{
				ID:             uuid.New(),
				Type:           JobTypeGenerate,
				WorkspaceRefID: workspaceRefID,
				NotBefore:      timePtr(now.Add(1 * time.Hour)),
				NotAfter:       nil,
			},
			want: false,
		},
		{
			name: "not after in past",
			job: &Job{
				ID:             uuid.New(),
				Type:           JobTypeGenerate,
				WorkspaceRefID: workspaceRefID,
				NotBefore:      nil,
				NotAfter:       timePtr(now.Add(-1 * time.Hour)),
			},
			want: false,
		},
		{
			name: "not after in future",
			job: &Job{
				ID:             uuid.New(),
				Type:           JobTypeGenerate,
				WorkspaceRefID: workspaceRefID,
				NotBefore:      nil,
				NotAfter:       timePtr(now.Add(1 * time.Hour)),
			},
			want: true,
		},
		{
			name: "within time window",
			job: &Job{
				ID:             uuid.New(),
				Type:           JobTypeGenerate,
				WorkspaceRefID: workspaceRefID,
				NotBefore:      timePtr(now.Add(-1 * time.Hour)),
				NotAfter:       timePtr(now.Add(1 * time.Hour)),
			},
			want: true,
		},
		{
			name: "outside time window - before",
			job: &Job{
				ID:             uuid.New(),
				Type:           JobTypeGenerate,
				WorkspaceRefID: workspaceRefID,
				NotBefore:      timePtr(now.Add(1 * time.Hour)),
				NotAfter:       timePtr(now.Add(2 * time.Hour)),
			},
			want: false,
		},
		{
			name: "outside time window - after",
			job: &Job{
				ID:             uuid.New(),
				Type:           JobTypeGenerate,
				WorkspaceRefID: workspaceRefID,
				NotBefore:      timePtr(now.Add(-2 * time.Hour)),
				NotAfter:       timePtr(now.Add(-1 * time.Hour)),
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := tt.job.ShouldProcess()
			if got != tt.want {
				t.Errorf("ShouldProcess() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestJob_IsExpired(t *testing.T) {
	t.Parallel()

	workspaceRefID := uuid.New()
	now := time.Now()

	tests := []struct {
		name string
		job  *Job
		want bool
	}{
		{
			name: "no expiration",
			job: &Job{
				ID:             uuid.New(),
				Type:           JobTypeGenerate,
				WorkspaceRefID: workspaceRefID,
				NotAfter:       nil,
			},
			want: false,
		},
		{
			name: "expired",
			job: &Job{
				ID:             uuid.New(),
				Type:           JobTypeGenerate,
				WorkspaceRefID: workspaceRefID,
				NotAfter:       timePtr(now.Add(-1 * time.Hour)),
			},
			want: true,
		},
		{
			name: "not expired",
			job: &Job{
				ID:             uuid.New(),
				Type:           JobTypeGenerate,
				WorkspaceRefID: workspaceRefID,
				NotAfter:       timePtr(now.Add(1 * time.Hour)),
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := tt.job.IsExpired()
			if got != tt.want {
				t.Errorf("IsExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestJob_CanRetry(t *testing.T) {
	t.Parallel()

	workspaceRefID := uuid.New()

	tests := []struct {
		name       string
		retryCount int
		maxRetries int
		want       bool
	}{
		{
			name:       "can retry - no retries yet",
			retryCount: 0,
			maxRetries: 3,
			want:       true,
		},
		{
			name:       "can retry - one retry",
			retryCount: 1,
			maxRetries: 3,
			want:       true,
		},
		{
			name:       "can retry - max retries minus one",
			retryCount: 2,
			maxRetries: 3,
			want:       true,
		},
		{
			name:       "cannot retry - at max retries",
			retryCount: 3,
			maxRetries: 3,
			want:       false,
		},
		{
			name:       "cannot retry - exceeded max retries",
			retryCount: 4,
			maxRetries: 3,
			want:       false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			job := &Job{
				ID:             uuid.New(),
				Type:           JobTypeGenerate,
				WorkspaceRefID: workspaceRefID,
				RetryCount:     tt.retryCount,
				MaxRetries:     tt.maxRetries,
			}
			got := job.CanRetry()
			if got != tt.want {
				t.Errorf("CanRetry() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestJob_IncrementRetry(t *testing.T) {
	t.Parallel()

	job := &Job{
		ID:             uuid.New(),
		Type:           JobTypeGenerate,
		WorkspaceRefID: uuid.New(),
		RetryCount:     0,
		MaxRetries:     3,
	}

	job.IncrementRetry()
	if job.RetryCount != 1 {
		t.Errorf("Expected retry count to be 1 after increment, got %d", job.RetryCount)
	}

	job.IncrementRetry()
	if job.RetryCount != 2 {
		t.Errorf("Expected retry count to be 2 after second increment, got %d", job.RetryCount)
	}

	job.IncrementRetry()
	if job.RetryCount != 3 {
		t.Errorf("Expected retry count to be 3 after third increment, got %d", job.RetryCount)
	}
}

// Helper function to create time pointers
func timePtr(t time.Time) *time.Time {
	return &t
}
