package database

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/kennywood-api/internal/config"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{
		Host:     "::1",
		Port:     5432,
		User:     "park",
		Password: "p@ss word",
		Name:     "kennywood",
		SSLMode:  "disable",
	})
	assert.Equal(t, "postgres://park:p%40ss+word@[::1]:5432/kennywood?sslmode=disable", dsn)

	_, err := pgx.ParseConfig(dsn)
	assert.NoError(t, err)
}

// runQuery drives tracer through one query that takes elapsed.
func runQuery(tracer *slowQueryTracer, sql string, elapsed time.Duration) {
	clock := time.Date(2023, 6, 1, 10, 0, 0, 0, time.UTC)
	tracer.now = func() time.Time { return clock }

	ctx := tracer.TraceQueryStart(context.Background(), nil, pgx.TraceQueryStartData{SQL: sql})
	clock = clock.Add(elapsed)
	tracer.TraceQueryEnd(ctx, nil, pgx.TraceQueryEndData{CommandTag: pgconn.NewCommandTag("SELECT 1")})
}

func TestSlowQueryTracer(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)
	tracer := newSlowQueryTracer(100*time.Millisecond, &log)

	runQuery(tracer, "SELECT 1", 20*time.Millisecond)
	assert.Zero(t, buf.Len())

	runQuery(tracer, "SELECT id\n\t\tFROM itinerary\n\t\tWHERE id = $1", 250*time.Millisecond)
	require.NotZero(t, buf.Len())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "slow query", entry["message"])
	assert.Equal(t, "SELECT id FROM itinerary WHERE id = $1", entry["sql"])
	assert.Equal(t, "SELECT 1", entry["command_tag"])
}

func TestSlowQueryTracer_IgnoresUntracedContext(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)
	tracer := newSlowQueryTracer(time.Nanosecond, &log)

	tracer.TraceQueryEnd(context.Background(), nil, pgx.TraceQueryEndData{})
	assert.Zero(t, buf.Len())
}
