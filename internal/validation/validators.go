package validation

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/benvon/interview-tracker/internal/filter"
)

const (
	// MaxQuestionTextLength bounds question text after sanitization
	MaxQuestionTextLength = 4000
	// MaxCategoryLength bounds a category label after sanitization
	MaxCategoryLength = 64
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	if err := Validate.RegisterValidation("not_blank", validateNotBlank); err != nil {
		panic(fmt.Sprintf("failed to register not_blank validator: %v", err))
	}
	if err := Validate.RegisterValidation("category_label", validateCategoryLabel); err != nil {
		panic(fmt.Sprintf("failed to register category_label validator: %v", err))
	}
	if err := Validate.RegisterValidation("date_filter", validateDateFilter); err != nil {
		panic(fmt.Sprintf("failed to register date_filter validator: %v", err))
	}
}

// validateNotBlank rejects strings made only of whitespace
func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// validateCategoryLabel accepts empty labels (the store coerces them) and bounded printable text
func validateCategoryLabel(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return ValidateCategoryLabel(value) == nil
}

func validateDateFilter(fl validator.FieldLevel) bool {
	_, err := filter.ParseDateFilter(fl.Field().String())
	return err == nil
}

// SanitizeText sanitizes text input by trimming whitespace and removing control characters
func SanitizeText(text string) string {
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

// SanitizeLabel trims a label and strips every control character
func SanitizeLabel(label string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, label))
}

// ValidateCategoryLabel validates a category label after sanitization
func ValidateCategoryLabel(label string) error {
	clean := SanitizeLabel(label)
	if clean == "" {
		return errors.New("category must not be empty")
	}
	if clean != strings.TrimSpace(label) {
		return errors.New("category must not contain control characters")
	}
	if utf8.RuneCountInString(clean) > MaxCategoryLength {
		return fmt.Errorf("category exceeds maximum length of %d characters", MaxCategoryLength)
	}
	return nil
}

// ValidateQuestionText validates question text after sanitization
func ValidateQuestionText(text string) error {
	if text == "" {
		return errors.New("text is required and cannot be empty after sanitization")
	}
	if utf8.RuneCountInString(text) > MaxQuestionTextLength {
		return fmt.Errorf("text exceeds maximum length of %d characters", MaxQuestionTextLength)
	}
	return nil
}

// Describe turns a validator error into a message naming the first failing field
func Describe(err error) string {
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) || len(fieldErrors) == 0 {
		return "Validation failed"
	}
	fe := fieldErrors[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required", "not_blank":
		return fmt.Sprintf("%s is required", field)
	case "max":
		return fmt.Sprintf("%s exceeds maximum length of %s", field, fe.Param())
	case "category_label":
		return fmt.Sprintf("%s is not a valid category label", field)
	case "date_filter":
		return filter.ErrInvalidDateFilter.Error()
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("Validation failed: %s", fe.Error())
	}
}
