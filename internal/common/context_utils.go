package common

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type contextKey string

const (
	UserIDKey     contextKey = "user_id"
	BusinessIDKey contextKey = "business_id"
)

// GetUserIDFromContext extracts the authenticated user ID from the request context.
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return userID, ok
}

// GetBusinessIDFromContext extracts the owning business ID from the request context.
func GetBusinessIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	businessID, ok := ctx.Value(BusinessIDKey).(uuid.UUID)
	return businessID, ok
}

// ValidateUUID parses and validates a UUID path or body parameter.
func ValidateUUID(idStr string, fieldName string) (uuid.UUID, error) {
	idStr = strings.TrimSpace(idStr)
	if idStr == "" {
		return uuid.Nil, NewValidationError(fieldName, fmt.Sprintf("%s is required", fieldName))
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, NewValidationError(fieldName, fmt.Sprintf("%s is not a valid UUID", fieldName))
	}
	return id, nil
}

// ValidateRequiredString validates required string fields.
func ValidateRequiredString(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return NewValidationError(fieldName, fmt.Sprintf("%s is required", fieldName))
	}
	return nil
}

// ValidateOptionalString trims and bounds optional string fields.
func ValidateOptionalString(value *string, fieldName string, maxLength int) error {
	if value != nil {
		if len(*value) > maxLength {
			return NewValidationError(fieldName, fmt.Sprintf("%s cannot exceed %d characters", fieldName, maxLength))
		}
		*value = strings.TrimSpace(*value)
	}
	return nil
}

// ValidatePositiveAmount validates a monetary amount is strictly positive.
func ValidatePositiveAmount(value decimal.Decimal, fieldName string) error {
	if value.Sign() <= 0 {
		return NewValidationError(fieldName, fmt.Sprintf("%s must be positive", fieldName))
	}
	return nil
}

// ValidateTaxPercent validates a tax rate is within 0-100.
func ValidateTaxPercent(value decimal.Decimal, fieldName string) error {
	if value.Sign() < 0 || value.GreaterThan(decimal.NewFromInt(100)) {
		return NewValidationError(fieldName, fmt.Sprintf("%s must be between 0 and 100", fieldName))
	}
	return nil
}

// ParseDate parses a YYYY-MM-DD date parameter.
func ParseDate(dateStr, fieldName string) (time.Time, error) {
	date, err := time.Parse("2006-01-02", strings.TrimSpace(dateStr))
	if err != nil {
		return time.Time{}, NewValidationError(fieldName, fmt.Sprintf("%s must be in YYYY-MM-DD format", fieldName))
	}
	return date, nil
}

// SafeString safely dereferences string pointers.
func SafeString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ValidatePaginationParams normalizes limit/offset query parameters.
func ValidatePaginationParams(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 1000 {
		limit = 1000
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
