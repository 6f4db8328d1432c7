package main

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/NullMeDev/trendwire/pkg/store"
	"github.com/NullMeDev/trendwire/pkg/topics"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeStore     ErrorType = "store"
	ErrorTypeTopics    ErrorType = "topics"
	ErrorTypeConfig    ErrorType = "config"
	ErrorTypeScheduler ErrorType = "scheduler"
	ErrorTypeNotify    ErrorType = "notify"
	ErrorTypeAPI       ErrorType = "api"
	ErrorTypeInternal  ErrorType = "internal"
)

// Error codes
const (
	ErrStoreConnection = "STORE_001"
	ErrStoreQuery      = "STORE_002"
	ErrStoreWrite      = "STORE_003"

	ErrTopicsInsufficient = topics.ErrCodeInsufficientTopics
	ErrTopicsNoRelated    = topics.ErrCodeNoDistinctRelatedTerm

	ErrConfigLoad       = "CONFIG_001"
	ErrConfigValidation = "CONFIG_002"
	ErrSourcesLoad      = "CONFIG_003"

	ErrSchedulerTask    = "SCHED_001"
	ErrSchedulerTimeout = "SCHED_002"

	ErrNotifyDiscord = "NOTIFY_001"
	ErrNotifyOpenAI  = "NOTIFY_002"

	ErrInternal = "INTERNAL_001"
)

// Error severity levels
const (
	ErrorSeverityLow = iota
	ErrorSeverityMedium
	ErrorSeverityHigh
	ErrorSeverityFatal
)

// ErrBatchRunning is returned when a batch is requested while one is in progress
var ErrBatchRunning = errors.New("batch already running")

// AppError is the typed error used across the service
type AppError struct {
	Type      ErrorType `json:"type"`
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Component string    `json:"component,omitempty"`
	Inner     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Inner != nil {
		return fmt.Sprintf("[%s-%s] %s: %v", e.Type, e.Code, e.Message, e.Inner)
	}
	return fmt.Sprintf("[%s-%s] %s", e.Type, e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Inner
}

// NewError creates a new AppError
func NewError(errType ErrorType, code, message string, inner error) *AppError {
	return &AppError{
		Type:    errType,
		Code:    code,
		Message: message,
		Inner:   inner,
	}
}

func NewStoreError(code, message string, inner error) *AppError {
	return NewError(ErrorTypeStore, code, message, inner)
}

func NewConfigError(code, message string, inner error) *AppError {
	return NewError(ErrorTypeConfig, code, message, inner)
}

func NewSchedulerError(code, message string, inner error) *AppError {
	return NewError(ErrorTypeScheduler, code, message, inner)
}

func NewNotifyError(code, message string, inner error) *AppError {
	return NewError(ErrorTypeNotify, code, message, inner)
}

// NewTopicsError keeps the code carried by a topic selection failure
func NewTopicsError(message string, inner error) *AppError {
	code := ErrInternal
	var te *topics.TopicError
	if errors.As(inner, &te) {
		code = te.Code
	}
	return NewError(ErrorTypeTopics, code, message, inner)
}

// IsTransient determines if an error is likely temporary
func IsTransient(err error) bool {
	var ae *AppError
	if !errors.As(err, &ae) {
		return false
	}
	switch ae.Code {
	case ErrStoreConnection, ErrSchedulerTimeout, ErrTopicsInsufficient:
		return true
	}
	return false
}

// ErrorRecord represents a single recorded error
type ErrorRecord struct {
	Time      time.Time `json:"time"`
	Message   string    `json:"message"`
	Error     string    `json:"error"`
	Code      string    `json:"code,omitempty"`
	Component string    `json:"component"`
	Severity  string    `json:"severity"`
}

// ErrorSystem keeps the most recent errors for the health endpoint
type ErrorSystem struct {
	records []ErrorRecord
	mutex   sync.Mutex
	max     int
	total   int
	exit    func(int)
}

// NewErrorSystem creates an error system holding up to maxErrors records
func NewErrorSystem(maxErrors int) *ErrorSystem {
	if maxErrors <= 0 {
		maxErrors = 100
	}
	return &ErrorSystem{
		records: make([]ErrorRecord, 0, maxErrors),
		max:     maxErrors,
		exit:    exitProcess,
	}
}

// HandleError logs and records an error. Fatal errors stop the process.
func (es *ErrorSystem) HandleError(message string, err error, component string, severity int) {
	if err == nil {
		return
	}
	Logger().Error("[%s] [%s] %s: %v", severityString(severity), component, message, err)

	record := ErrorRecord{
		Time:      time.Now(),
		Message:   message,
		Error:     err.Error(),
		Component: component,
		Severity:  severityString(severity),
	}
	var ae *AppError
	if errors.As(err, &ae) {
		record.Code = ae.Code
	}

	es.mutex.Lock()
	if len(es.records) >= es.max {
		es.records = es.records[1:]
	}
	es.records = append(es.records, record)
	es.total++
	es.mutex.Unlock()

	if severity == ErrorSeverityFatal {
		es.exit(1)
	}
}

// Recent returns up to count of the newest records, newest last
func (es *ErrorSystem) Recent(count int) []ErrorRecord {
	es.mutex.Lock()
	defer es.mutex.Unlock()

	start := 0
	if count > 0 && len(es.records) > count {
		start = len(es.records) - count
	}
	out := make([]ErrorRecord, len(es.records)-start)
	copy(out, es.records[start:])
	return out
}

// Total returns how many errors were handled since startup
func (es *ErrorSystem) Total() int {
	es.mutex.Lock()
	defer es.mutex.Unlock()
	return es.total
}

func severityString(severity int) string {
	switch severity {
	case ErrorSeverityLow:
		return "LOW"
	case ErrorSeverityMedium:
		return "MEDIUM"
	case ErrorSeverityHigh:
		return "HIGH"
	case ErrorSeverityFatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// severityFor picks how loud a batch failure should be
func severityFor(err error) int {
	switch {
	case errors.Is(err, topics.ErrInsufficientTopics):
		return ErrorSeverityLow
	case errors.Is(err, store.ErrNotFound):
		return ErrorSeverityLow
	case IsTransient(err):
		return ErrorSeverityMedium
	default:
		return ErrorSeverityHigh
	}
}

// RecoverFromPanic must be deferred directly
func RecoverFromPanic(component string) {
	if r := recover(); r != nil {
		stack := make([]byte, 4096)
		stack = stack[:runtime.Stack(stack, false)]
		Logger().Error("Panic in %s: %v\n%s", component, r, stack)
	}
}
