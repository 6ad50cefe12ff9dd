package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// logEntry is one client-side log line submitted by the frontend.
type logEntry struct {
	Level      string                 `json:"level"`
	Message    string                 `json:"message"`
	Timestamp  *time.Time             `json:"timestamp"`
	Context    map[string]interface{} `json:"context"`
	Source     string                 `json:"source"`
	URL        string                 `json:"url"`
	ErrorStack string                 `json:"errorStack"`
}

type logBatch struct {
	Logs []logEntry `json:"logs"`
}

// submitLogs re-emits frontend log entries through the server logger so
// they reach the same sink as backend logs.
func (rt *Router) submitLogs(w http.ResponseWriter, req *http.Request) {
	var batch logBatch
	if err := decodeBody(req, &batch); err != nil {
		rt.respondError(w, err)
		return
	}

	for _, entry := range batch.Logs {
		fields := []zap.Field{
			zap.String("source", defaultString(entry.Source, "frontend")),
			zap.String("url", entry.URL),
			zap.String("userAgent", req.UserAgent()),
		}
		if entry.Timestamp != nil {
			fields = append(fields, zap.Time("clientTimestamp", *entry.Timestamp))
		}
		if entry.Context != nil {
			fields = append(fields, zap.Any("context", entry.Context))
		}
		if entry.ErrorStack != "" {
			fields = append(fields, zap.String("errorStack", entry.ErrorStack))
		}

		switch strings.ToLower(entry.Level) {
		case "debug":
			rt.logger.Debug(entry.Message, fields...)
		case "warn", "warning":
			rt.logger.Warn(entry.Message, fields...)
		case "error":
			rt.logger.Error(entry.Message, fields...)
		default:
			rt.logger.Info(entry.Message, fields...)
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": fmt.Sprintf("Successfully processed %d log entries", len(batch.Logs)),
		"count":   len(batch.Logs),
	})
}

// loggingHealth reports whether an external log sink is configured.
func (rt *Router) loggingHealth(w http.ResponseWriter, req *http.Request) {
	sinkConfigured := rt.cfg.Log.SinkURL != ""
	body := map[string]interface{}{
		"status":         "healthy",
		"sinkConfigured": sinkConfigured,
	}
	if sinkConfigured {
		body["sinkUrl"] = rt.cfg.Log.SinkURL
	}
	respondJSON(w, http.StatusOK, body)
}

func defaultString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
