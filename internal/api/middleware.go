package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// quietPrefixes are polled or asset paths, logged at debug level.
var quietPrefixes = []string{"/health", "/static/", "/charts/", "/favicon.ico"}

// streamPaths stay open for a whole viewing session.
var streamPaths = map[string]string{
	"/ws":     "websocket",
	"/events": "sse",
}

func requestLevel(path string) slog.Level {
	for _, p := range quietPrefixes {
		if strings.HasPrefix(path, p) {
			return slog.LevelDebug
		}
	}
	return slog.LevelInfo
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID := middleware.GetReqID(r.Context())
		stream, isStream := streamPaths[r.URL.Path]
		if isStream {
			slog.Info("stream opened", "stream", stream, "remote", r.RemoteAddr, "request_id", reqID)
		}

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		msg := "http request"
		if isStream {
			msg = "stream closed"
		}
		slog.Log(context.Background(), requestLevel(r.URL.Path), msg,
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
			"remote", r.RemoteAddr,
			"request_id", reqID,
		)
	})
}
