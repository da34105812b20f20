//go:build database

package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/huangsam/pmpulse/internal/testutil"
	"github.com/huangsam/pmpulse/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestPmpulseWithMySQL tests the pmpulse CLI with a MySQL backend.
func TestPmpulseWithMySQL(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "pmpulse",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(60 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = mysqlC.Terminate(ctx) }()

	host, err := mysqlC.Host(ctx)
	require.NoError(t, err)
	port, err := mysqlC.MappedPort(ctx, "3306")
	require.NoError(t, err)

	connStr := fmt.Sprintf("root:secret123@tcp(%s:%s)/pmpulse?parseTime=true", host, port.Port())
	exerciseBackend(t, "mysql", connStr)
}

// TestPmpulseWithPostgres tests the pmpulse CLI with a PostgreSQL backend.
func TestPmpulseWithPostgres(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = pgC.Terminate(ctx) }()

	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres sslmode=disable", host, port.Port())
	exerciseBackend(t, "postgresql", connStr)
}

// exerciseBackend imports the sample portfolio, runs reports with auditing on
// the same server and checks the stored results.
func exerciseBackend(t *testing.T, backend, connStr string) {
	isolateHome(t)
	yamlPath := writePortfolio(t)

	t.Setenv("PMPULSE_STORE_BACKEND", backend)
	t.Setenv("PMPULSE_STORE_DB_CONNECT", connStr)
	t.Setenv("PMPULSE_AUDIT_BACKEND", backend)
	t.Setenv("PMPULSE_AUDIT_DB_CONNECT", connStr)

	mustRunPmpulse(t, "db", "clear")
	mustRunPmpulse(t, "audit", "clear")
	mustRunPmpulse(t, "db", "migrate")
	mustRunPmpulse(t, "audit", "migrate")
	mustRunPmpulse(t, "db", "import", yamlPath)

	out := mustRunPmpulse(t, "db", "status", "--output", "json")
	var storeStatus schema.StoreStatus
	require.NoError(t, json.Unmarshal([]byte(out), &storeStatus))
	assert.True(t, storeStatus.Connected)
	assert.NotEmpty(t, storeStatus.TableRows)

	out = mustRunPmpulse(t, "pnl", "--user", testutil.OwnerID, "--output", "json")
	var pnl schema.ProfitLossReport
	require.NoError(t, json.Unmarshal([]byte(out), &pnl))
	assert.Len(t, pnl.Rows, 2)

	mustRunPmpulse(t, "dashboard", "--user", testutil.ManagerID)

	out = mustRunPmpulse(t, "audit", "status", "--output", "json")
	var auditStatus schema.AuditStatus
	require.NoError(t, json.Unmarshal([]byte(out), &auditStatus))
	assert.Equal(t, 2, auditStatus.TotalRuns)
}
