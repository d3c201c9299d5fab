package validation

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/tomorrow-architect/planner-api/internal/clock"
	"github.com/tomorrow-architect/planner-api/internal/models"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	// Register custom validators for enums and day keys. Registration only
	// fails on an empty tag, so a failure here is a programming error.
	if err := Validate.RegisterValidation("priority", validatePriority); err != nil {
		panic(fmt.Sprintf("failed to register priority validator: %v", err))
	}
	if err := Validate.RegisterValidation("category", validateCategory); err != nil {
		panic(fmt.Sprintf("failed to register category validator: %v", err))
	}
	if err := Validate.RegisterValidation("day_key", validateDayKey); err != nil {
		panic(fmt.Sprintf("failed to register day_key validator: %v", err))
	}
}

func validatePriority(fl validator.FieldLevel) bool {
	return models.ValidPriority(models.Priority(fl.Field().String()))
}

func validateCategory(fl validator.FieldLevel) bool {
	return models.ValidCategory(models.Category(fl.Field().String()))
}

func validateDayKey(fl validator.FieldLevel) bool {
	return ValidateDayKey(fl.Field().String()) == nil
}

// SanitizeText trims whitespace and removes control characters except
// newline and tab.
func SanitizeText(text string) string {
	text = strings.TrimSpace(text)

	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}

// ValidatePriority validates a Priority string value
func ValidatePriority(value string) error {
	if !models.ValidPriority(models.Priority(value)) {
		return fmt.Errorf("invalid priority: %s (must be 'low', 'medium', or 'high')", value)
	}
	return nil
}

// ValidateCategory validates a Category string value
func ValidateCategory(value string) error {
	if !models.ValidCategory(models.Category(value)) {
		return fmt.Errorf("invalid category: %s (must be 'work', 'personal', 'research', or 'entertainment')", value)
	}
	return nil
}

// ValidateDayKey validates a YYYY-MM-DD day key
func ValidateDayKey(value string) error {
	if _, err := time.Parse(clock.DayKeyFormat, value); err != nil {
		return fmt.Errorf("invalid day key: %s (must be YYYY-MM-DD)", value)
	}
	return nil
}
