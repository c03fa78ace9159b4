package core

import (
	"context"
	"sort"
	"strings"
	"time"
)

// ObserveOperation records one structured log line and the counter/duration
// metrics for a finished operation.
func ObserveOperation(
	ctx context.Context,
	logger Logger,
	metrics MetricsRecorder,
	startedAt time.Time,
	operation string,
	err error,
	fields map[string]any,
) {
	operation = strings.TrimSpace(strings.ToLower(operation))
	if operation == "" {
		operation = "unknown"
	}
	status := "success"
	if err != nil {
		status = "failure"
	}

	contextFields := cloneFields(fields)
	contextFields["event_type"] = operation
	contextFields["status"] = status
	contextFields["duration_ms"] = time.Since(startedAt).Milliseconds()
	if err != nil {
		contextFields["error"] = err.Error()
	}

	if metrics != nil {
		tags := map[string]string{
			"operation": operation,
			"status":    status,
		}
		metrics.IncCounter(ctx, "finsnap."+operation+".total", 1, cloneTags(tags))
		metrics.ObserveHistogram(ctx, "finsnap."+operation+".duration_ms",
			float64(time.Since(startedAt).Milliseconds()), cloneTags(tags))
	}

	if logger == nil {
		return
	}
	log := logger
	if ctx != nil {
		log = log.WithContext(ctx)
	}
	if fieldsLogger, ok := log.(FieldsLogger); ok {
		log = fieldsLogger.WithFields(cloneFields(contextFields))
	}
	args := flattenFields(contextFields)
	if err != nil {
		log.Error(operation+" failed", args...)
		return
	}
	log.Info(operation+" succeeded", args...)
}

func cloneFields(fields map[string]any) map[string]any {
	if len(fields) == 0 {
		return map[string]any{}
	}
	copied := make(map[string]any, len(fields))
	for key, value := range fields {
		copied[key] = value
	}
	return copied
}

func flattenFields(fields map[string]any) []any {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	args := make([]any, 0, len(keys)*2)
	for _, key := range keys {
		args = append(args, key, fields[key])
	}
	return args
}
