package observability

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"

	"github.com/geocoder89/carvalue/internal/actorctx"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func TestObserveDB(t *testing.T) {
	p := NewProm(prometheus.NewRegistry())

	require.NoError(t, p.ObserveDB("users.create", func() error { return nil }))
	assert.ErrorIs(t, p.ObserveDB("users.find_by_id", func() error { return sql.ErrNoRows }), sql.ErrNoRows)

	boom := errors.New("dial tcp: connection refused")
	assert.ErrorIs(t, p.ObserveDB("reports.estimate", func() error { return boom }), boom)

	assert.Equal(t, 0.0, testutil.ToFloat64(p.DbErrorsTotal.WithLabelValues("users.find_by_id", "unknown")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.DbErrorsTotal.WithLabelValues("reports.estimate", "connection")))
}

func TestClassifyDBErr(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "pg unique", err: &pgconn.PgError{Code: "23505"}, want: "unique_violation"},
		{name: "pg other", err: &pgconn.PgError{Code: "42P01"}, want: "pg_42P01"},
		{name: "sqlite busy", err: sqlite3.Error{Code: sqlite3.ErrBusy}, want: "busy"},
		{name: "sqlite constraint", err: sqlite3.Error{Code: sqlite3.ErrConstraint}, want: "constraint"},
		{name: "deadline", err: context.DeadlineExceeded, want: "timeout"},
		{name: "other", err: errors.New("weird"), want: "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyDBErr(tt.err))
		})
	}
}

func TestDomainCounters(t *testing.T) {
	p := NewProm(prometheus.NewRegistry())
	price := 1000.0

	p.Estimate(&price)
	p.Estimate(nil)
	p.Estimate(nil)
	p.AuthAttempt("signin", errors.New("bad password"))
	p.RateLimited("/auth/signin")

	assert.Equal(t, 1.0, testutil.ToFloat64(p.EstimatesTotal.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(p.EstimatesTotal.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.AuthAttempts.WithLabelValues("signin", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.RateLimitedTotal.WithLabelValues("/auth/signin")))

	var nilProm *Prom
	assert.NotPanics(t, func() { nilProm.Estimate(nil) })
}

func TestLogger_AddsTraceIDs(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "prod")

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID,
		SpanID:  spanID,
	}))
	ctx = actorctx.WithRequestID(actorctx.WithUserID(ctx, 9), "req-9")

	log.InfoContext(ctx, "hello")
	log.DebugContext(ctx, "hidden outside dev")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))

	assert.Equal(t, "hello", line["msg"])
	assert.Equal(t, ServiceName, line["service"])
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", line["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", line["span_id"])
	assert.Equal(t, "req-9", line["request_id"])
	assert.Equal(t, 9.0, line["user_id"])
}
