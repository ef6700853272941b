package validation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/avancea/ritmo/internal/models"
	"github.com/avancea/ritmo/internal/timeline"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	// Register custom validators for enums
	register("period", validatePeriod)
	register("eisen", validateEisen)
	register("difficulty", validateDifficulty)
	register("inbox_task_status", validateInboxTaskStatus)
	register("big_plan_status", validateBigPlanStatus)
	register("inbox_task_source", validateInboxTaskSource)
	register("sync_target", validateSyncTarget)
	register("relationship", validateRelationship)
}

func register(tag string, fn validator.Func) {
	if err := Validate.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("failed to register %s validator: %v", tag, err))
	}
}

func validatePeriod(fl validator.FieldLevel) bool {
	return timeline.Period(fl.Field().String()).Valid()
}

func validateEisen(fl validator.FieldLevel) bool {
	return models.Eisen(fl.Field().String()).Valid()
}

func validateDifficulty(fl validator.FieldLevel) bool {
	return models.Difficulty(fl.Field().String()).Valid()
}

func validateInboxTaskStatus(fl validator.FieldLevel) bool {
	return models.InboxTaskStatus(fl.Field().String()).Valid()
}

func validateBigPlanStatus(fl validator.FieldLevel) bool {
	return models.BigPlanStatus(fl.Field().String()).Valid()
}

func validateInboxTaskSource(fl validator.FieldLevel) bool {
	return models.InboxTaskSource(fl.Field().String()).Valid()
}

func validateSyncTarget(fl validator.FieldLevel) bool {
	return models.SyncTarget(fl.Field().String()).Valid()
}

func validateRelationship(fl validator.FieldLevel) bool {
	return models.PersonRelationship(fl.Field().String()).Valid()
}

// SanitizeText sanitizes text input by trimming whitespace and removing control characters
func SanitizeText(text string) string {
	// Trim whitespace
	text = strings.TrimSpace(text)

	// Remove control characters except newline and tab
	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}

// ValidatePeriod validates a Period string value
func ValidatePeriod(value string) error {
	if !timeline.Period(value).Valid() {
		return fmt.Errorf("invalid period: %s (must be 'daily', 'weekly', 'monthly', 'quarterly', or 'yearly')", value)
	}
	return nil
}

// ValidateSyncTarget validates a SyncTarget string value
func ValidateSyncTarget(value string) error {
	if !models.SyncTarget(value).Valid() {
		return fmt.Errorf("invalid sync target: %s", value)
	}
	return nil
}
