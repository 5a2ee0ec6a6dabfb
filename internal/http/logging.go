package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

func newRequestLogger(log zerolog.Logger, ignoredPaths ...string) func(next http.Handler) http.Handler {
	ignored := make(map[string]struct{}, len(ignoredPaths))
	for _, p := range ignoredPaths {
		ignored[p] = struct{}{}
	}

	return middleware.RequestLogger(&selectiveLogFormatter{
		ignoredPaths: ignored,
		log:          log,
	})
}

type selectiveLogFormatter struct {
	ignoredPaths map[string]struct{}
	log          zerolog.Logger
}

func (f *selectiveLogFormatter) NewLogEntry(r *http.Request) middleware.LogEntry {
	if _, ok := f.ignoredPaths[r.URL.Path]; ok {
		return noopLogEntry{}
	}
	return &zerologEntry{
		log: f.log.With().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote", r.RemoteAddr).
			Str("request_id", middleware.GetReqID(r.Context())).
			Logger(),
	}
}

type zerologEntry struct {
	log zerolog.Logger
}

func (e *zerologEntry) Write(status, bytes int, header http.Header, elapsed time.Duration, extra interface{}) {
	ev := e.log.Info()
	switch {
	case status >= 500:
		ev = e.log.Error()
	case status >= 400:
		ev = e.log.Warn()
	}
	ev.Int("status", status).Int("bytes", bytes).Dur("elapsed", elapsed).Msg("request")
}

func (e *zerologEntry) Panic(v interface{}, stack []byte) {
	e.log.Error().Interface("panic", v).Bytes("stack", stack).Msg("request panicked")
}

type noopLogEntry struct{}

func (noopLogEntry) Write(status, bytes int, header http.Header, elapsed time.Duration, extra interface{}) {
}

func (noopLogEntry) Panic(v interface{}, stack []byte) {}
