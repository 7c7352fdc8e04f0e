//go:build integration

package repository

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/nur12play/Analiticpplatform/internal/domain/model"
)

func startPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "analytics",
				"POSTGRES_PASSWORD": "analytics",
				"POSTGRES_DB":       "analytics",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(ctx) })

	host, err := c.Host(ctx)
	require.NoError(t, err)
	port, err := c.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	return fmt.Sprintf("postgres://analytics:analytics@%s:%s/analytics?sslmode=disable", host, port.Port())
}

func TestPostgresIntegration(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, DriverPostgres, startPostgres(t), WithAutoMigrate(true), WithMaxOpenConns(4))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Insert(ctx, scenario()))
	require.NoError(t, s.Insert(ctx, []model.Measurement{
		rec(at(3), map[model.Field]float64{model.Field2: 71}),
	}))

	w := dayWindow(day)
	sum, err := s.Summarize(ctx, model.Field1, &w)
	require.NoError(t, err)
	assert.Equal(t, int64(3), sum.Count)
	assert.InDelta(t, 20.0, sum.Avg, 1e-9)
	assert.InDelta(t, math.Sqrt(200.0/3.0), sum.StdDev, 1e-9)

	points, err := s.Series(ctx, model.Field2, w)
	require.NoError(t, err)
	require.Len(t, points, 4)
	assert.Equal(t, 70.0, points[2].Value)
	assert.Equal(t, 71.0, points[3].Value)

	points, err = s.Series(ctx, model.Field1, w)
	require.NoError(t, err)
	assert.Len(t, points, 3)

	require.NoError(t, s.Reset(ctx))
	empty, err := s.Summarize(ctx, model.Field1, nil)
	require.NoError(t, err)
	assert.Zero(t, empty.Count)
}
