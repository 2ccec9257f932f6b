// file: internal/server/logger.go
// version: 2.0.0
// guid: 1d2e3f4a-5b6c-7d8e-9f0a-1b2c3d4e5f6a

package server

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"time"
)

// OperationLogger tracks the lifecycle of a handler operation
type OperationLogger struct {
	handler   string
	method    string
	path      string
	startTime time.Time
	requestID string
	details   map[string]any
}

// NewOperationLogger creates a new operation logger
func NewOperationLogger(handler, method, path, requestID string) *OperationLogger {
	return &OperationLogger{
		handler:   handler,
		method:    method,
		path:      path,
		startTime: time.Now(),
		requestID: requestID,
		details:   make(map[string]any),
	}
}

// AddDetail adds a contextual detail to the operation log
func (ol *OperationLogger) AddDetail(key string, value any) {
	ol.details[key] = value
}

// formatDetails renders details sorted by key so log lines are stable.
func formatDetails(details map[string]any) string {
	if len(details) == 0 {
		return ""
	}
	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, details[k])
	}
	return " {" + strings.Join(parts, " ") + "}"
}

// LogStart logs the start of the operation
func (ol *OperationLogger) LogStart() {
	log.Printf("[INFO] [START] %s %s [request-id: %s]", ol.method, ol.path, ol.requestID)
}

// LogSuccess logs the successful completion of the operation
func (ol *OperationLogger) LogSuccess(statusCode int) {
	duration := time.Since(ol.startTime)
	log.Printf("[INFO] [SUCCESS] %s %s (%d) in %v%s [request-id: %s]",
		ol.method, ol.path, statusCode, duration, formatDetails(ol.details), ol.requestID)
}

// LogError logs an error that occurred during the operation
func (ol *OperationLogger) LogError(statusCode int, err error) {
	duration := time.Since(ol.startTime)
	log.Printf("[ERROR] [FAILED] %s %s (%d) in %v: %v%s [request-id: %s]",
		ol.method, ol.path, statusCode, duration, err, formatDetails(ol.details), ol.requestID)
}

// LogDebug logs a debug message
func (ol *OperationLogger) LogDebug(message string) {
	log.Printf("[DEBUG] %s: %s [request-id: %s]", ol.handler, message, ol.requestID)
}

// ServiceLogger provides logging for service layer operations
type ServiceLogger struct {
	serviceName string
	requestID   string
}

// NewServiceLogger creates a new service logger
func NewServiceLogger(serviceName, requestID string) *ServiceLogger {
	return &ServiceLogger{
		serviceName: serviceName,
		requestID:   requestID,
	}
}

// LogOperation logs the execution of a service operation
func (sl *ServiceLogger) LogOperation(operation string, details map[string]any) {
	log.Printf("[SERVICE] %s.%s%s [request-id: %s]",
		sl.serviceName, operation, formatDetails(details), sl.requestID)
}

// LogError logs an error from the service
func (sl *ServiceLogger) LogError(operation string, err error) {
	log.Printf("[SERVICE-ERROR] %s.%s: %v [request-id: %s]",
		sl.serviceName, operation, err, sl.requestID)
}

// LogDebug logs a debug message from the service
func (sl *ServiceLogger) LogDebug(operation string, message string) {
	log.Printf("[SERVICE-DEBUG] %s.%s: %s [request-id: %s]",
		sl.serviceName, operation, message, sl.requestID)
}
