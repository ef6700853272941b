package genextra

import (
	"testing"

	"github.com/avancea/ritmo/internal/models"
)

func TestParse(t *testing.T) {
	t.Parallel()

	t.Run("empty string is empty info", func(t *testing.T) {
		t.Parallel()
		info, err := Parse("")
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		if info.Name != nil || info.Status != nil || info.DueDate != nil {
			t.Errorf("Expected empty info")
		}
	})

	t.Run("name and due date", func(t *testing.T) {
		t.Parallel()
		info, err := Parse(`--name="Reply" --due-date=2023-05-01`)
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		if info.Name == nil || *info.Name != "Reply" {
			t.Errorf("Expected name Reply, got %v", info.Name)
		}
		if info.DueDate == nil || info.DueDate.Format("2006-01-02") != "2023-05-01" {
			t.Errorf("Expected due date 2023-05-01, got %v", info.DueDate)
		}
	})

	t.Run("all enum fields", func(t *testing.T) {
		t.Parallel()
		info, err := Parse(`--status=in-progress --eisen=urgent --difficulty=hard`)
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		if info.Status == nil || *info.Status != models.InboxTaskStatusInProgress {
			t.Errorf("Expected in-progress status, got %v", info.Status)
		}
		if info.Eisen == nil || *info.Eisen != models.EisenUrgent {
			t.Errorf("Expected urgent eisen, got %v", info.Eisen)
		}
		if info.Difficulty == nil || *info.Difficulty != models.DifficultyHard {
			t.Errorf("Expected hard difficulty, got %v", info.Difficulty)
		}
	})

	t.Run("quoted name with spaces", func(t *testing.T) {
		t.Parallel()
		info, err := Parse(`--name="Reply to Bob about the offsite"`)
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		if info.Name == nil || *info.Name != "Reply to Bob about the offsite" {
			t.Errorf("Expected quoted name preserved, got %v", info.Name)
		}
	})

	tests := []struct {
		name string
		in   string
	}{
		{"unknown flag", "--frobnicate=yes"},
		{"bad status", "--status=wishful"},
		{"bad date", "--due-date=someday"},
		{"unterminated quote", `--name="oops`},
		{"actionable after due", "--actionable-date=2023-05-02 --due-date=2023-05-01"},
		{"positional garbage", "--name=x leftover"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse(tt.in)
			if err == nil {
				t.Fatalf("Expected error for %q", tt.in)
			}
			if !models.IsInputValidationError(err) {
				t.Errorf("Expected InputValidationError, got %v", err)
			}
		})
	}
}
