package logger

import (
	"strings"

	"go.uber.org/zap"
)

// Keys of the structured fields shared across packages.
const (
	// FieldProvider carries the AI provider name.
	FieldProvider = "ai_provider"
	// FieldModel carries the AI model identifier.
	FieldModel = "ai_model"
	// FieldRun carries the search run identifier.
	FieldRun = "run_id"
)

// StringField is a string key/value pair destined for a zap field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the pairs into zap fields. Keys and values are
// trimmed; pairs with an empty side are dropped so callers can pass optional
// values without checking them first.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		value := strings.TrimSpace(field.Value)
		if key == "" || value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields attaches the fields to the logger. A nil logger falls back to a
// no-op one, so the result is always safe to log through.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// CommonFields describes the AI provider and model behind a logger. Empty
// values are omitted.
func CommonFields(provider, model string) []zap.Field {
	return StringFields(
		StringField{Key: FieldProvider, Value: provider},
		StringField{Key: FieldModel, Value: model},
	)
}

// WithCommonFields attaches the common AI fields to the provided logger.
func WithCommonFields(logger *zap.Logger, provider, model string) *zap.Logger {
	return WithFields(logger, CommonFields(provider, model)...)
}

// WithRun attaches the run identifier so every entry produced during a search
// run can be correlated.
func WithRun(logger *zap.Logger, runID string) *zap.Logger {
	return WithFields(logger, StringFields(StringField{Key: FieldRun, Value: runID})...)
}
