package errors

import (
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeValidation     ErrorType = "validation"
	ErrorTypeIO             ErrorType = "io"
	ErrorTypeAI             ErrorType = "ai"
	ErrorTypeNetwork        ErrorType = "network"
	ErrorTypeConfig         ErrorType = "config"
	ErrorTypeInternal       ErrorType = "internal"
	ErrorTypeFileGeneration ErrorType = "file_generation"
)

// AppError represents a structured application error
type AppError struct {
	Type    ErrorType      `json:"type"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Field   string         `json:"field,omitempty"`
	Cause   error          `json:"cause,omitempty"`
	Context map[string]any `json:"context,omitempty"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func newAppError(typ ErrorType, code, message string, cause error) *AppError {
	return &AppError{
		Type:    typ,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Error constructors for different types
func NewValidationError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeValidation, code, message, cause)
}

// NewFieldValidationError creates a validation error that names the offending input field.
func NewFieldValidationError(field, code, message string) *AppError {
	err := newAppError(ErrorTypeValidation, code, message, nil)
	err.Field = field
	return err
}

func NewIOError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeIO, code, message, cause)
}

func NewAIError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeAI, code, message, cause)
}

func NewNetworkError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeNetwork, code, message, cause)
}

func NewConfigError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeConfig, code, message, cause)
}

func NewInternalError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeInternal, code, message, cause)
}

// NewFileGenerationError wraps a render or write failure during artifact export.
func NewFileGenerationError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeFileGeneration, code, message, cause)
}

// WithContext adds context to an error
func (e *AppError) WithContext(key string, value any) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// AsAppError unwraps err to the first *AppError in its chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsType reports whether err carries an AppError of the given type.
func IsType(err error, typ ErrorType) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Type == typ
}

func IsValidationError(err error) bool {
	return IsType(err, ErrorTypeValidation)
}

func IsFileGenerationError(err error) bool {
	return IsType(err, ErrorTypeFileGeneration)
}

// FieldOf returns the input field named by a validation error, if any.
func FieldOf(err error) string {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Field
	}
	return ""
}

// CodeOf returns the error code of an AppError, or "" for other errors.
func CodeOf(err error) string {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return ""
}

// Logger wraps slog with application-specific methods.
// A nil *Logger discards everything.
type Logger struct {
	logger *slog.Logger
}

// NewLogger creates a new structured logger writing JSON to stderr
func NewLogger(level slog.Level) *Logger {
	return NewLoggerWithWriter(os.Stderr, level)
}

// NewLoggerWithWriter creates a JSON logger on an arbitrary writer.
func NewLoggerWithWriter(w io.Writer, level slog.Level) *Logger {
	opts := &slog.HandlerOptions{
		Level: level,
	}

	handler := slog.NewJSONHandler(w, opts)
	return &Logger{logger: slog.New(handler)}
}

// LogError logs an application error with appropriate level and context
func (l *Logger) LogError(err error, message string, args ...any) {
	if l == nil {
		return
	}
	if appErr, ok := AsAppError(err); ok {
		logArgs := []any{
			"error_type", appErr.Type,
			"error_code", appErr.Code,
			"error_message", appErr.Message,
		}
		if appErr.Field != "" {
			logArgs = append(logArgs, "field", appErr.Field)
		}
		if appErr.Cause != nil {
			logArgs = append(logArgs, "cause", appErr.Cause.Error())
		}

		for key, value := range appErr.Context {
			logArgs = append(logArgs, key, value)
		}

		logArgs = append(logArgs, args...)

		l.logger.Error(message, logArgs...)
		return
	}

	var errText string
	if err != nil {
		errText = err.Error()
	}
	logArgs := append([]any{"error", errText}, args...)
	l.logger.Error(message, logArgs...)
}

func (l *Logger) Info(message string, args ...any) {
	if l == nil {
		return
	}
	l.logger.Info(message, args...)
}

func (l *Logger) Debug(message string, args ...any) {
	if l == nil {
		return
	}
	l.logger.Debug(message, args...)
}

func (l *Logger) Warn(message string, args ...any) {
	if l == nil {
		return
	}
	l.logger.Warn(message, args...)
}

// With returns a logger that adds args to every record.
func (l *Logger) With(args ...any) *Logger {
	if l == nil {
		return nil
	}
	return &Logger{logger: l.logger.With(args...)}
}

// New creates a new logger instance
func New(level string) (*Logger, error) {
	slogLevel, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return NewLogger(slogLevel), nil
}

// ParseLevel maps a configured level name onto slog levels.
func ParseLevel(level string) (slog.Level, error) {
	switch level {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level: %s", level)
	}
}

// Common error codes
const (
	ErrCodeFileNotFound    = "FILE_NOT_FOUND"
	ErrCodeFileNotReadable = "FILE_NOT_READABLE"
	ErrCodeInvalidFormat   = "INVALID_FORMAT"
	ErrCodeAIServiceFailed = "AI_SERVICE_FAILED"
	ErrCodeAIEmptyResponse = "AI_EMPTY_RESPONSE"
	ErrCodeAITimeout       = "AI_TIMEOUT"
	ErrCodeInvalidRequest  = "INVALID_REQUEST"
	ErrCodeMissingAPIKey   = "MISSING_API_KEY"
	ErrCodeNetworkTimeout  = "NETWORK_TIMEOUT"
	ErrCodeInvalidConfig   = "INVALID_CONFIG"
)

// Input validation codes
const (
	ErrCodeMissingField     = "MISSING_FIELD"
	ErrCodeInvalidEmail     = "INVALID_EMAIL"
	ErrCodeInvalidPhone     = "INVALID_PHONE"
	ErrCodeFieldTooLong     = "FIELD_TOO_LONG"
	ErrCodeExperienceLength = "EXPERIENCE_LENGTH"
	ErrCodeTooManySkills    = "TOO_MANY_SKILLS"
	ErrCodeNoSkills         = "NO_SKILLS"
)

// Export and download codes
const (
	ErrCodeRenderFailed      = "RENDER_FAILED"
	ErrCodeWriteFailed       = "WRITE_FAILED"
	ErrCodeTimestampExhaust  = "TIMESTAMP_UNAVAILABLE"
	ErrCodeSchemaViolation   = "SCHEMA_VIOLATION"
	ErrCodeInvalidTimestamp  = "INVALID_TIMESTAMP"
	ErrCodeInvalidFileType   = "INVALID_FILE_TYPE"
	ErrCodePathEscape        = "PATH_ESCAPE"
	ErrCodeArtifactNotFound  = "ARTIFACT_NOT_FOUND"
	ErrCodeTemplateInvalid   = "TEMPLATE_INVALID"
	ErrCodeStorageFailed     = "STORAGE_FAILED"
	ErrCodeHistoryDisabled   = "HISTORY_DISABLED"
	ErrCodeUnsupportedSource = "UNSUPPORTED_SOURCE"
)
