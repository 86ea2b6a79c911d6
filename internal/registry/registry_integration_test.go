package registry

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mysql"
)

type testMySQLContainer struct {
	container *mysql.MySQLContainer
	dsn       string
}

func setupRegistryMySQL(t *testing.T) *testMySQLContainer {
	t.Helper()
	ctx := context.Background()

	mysqlContainer, err := mysql.Run(ctx, "mysql:8.0",
		mysql.WithDatabase("testdb"),
		mysql.WithUsername("root"),
		mysql.WithPassword("testpass"),
	)
	require.NoError(t, err, "failed to start MySQL container")

	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(mysqlContainer); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	dsn, err := mysqlContainer.ConnectionString(ctx, "parseTime=true")
	require.NoError(t, err, "failed to get connection string")

	db, err := sql.Open("mysql", dsn)
	require.NoError(t, err, "failed to open direct DB connection")
	require.NoError(t, db.PingContext(ctx))
	_, err = db.ExecContext(ctx, "CREATE TABLE registry (name VARCHAR(255) PRIMARY KEY)")
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, "INSERT INTO registry (name) VALUES ('manufacturer:acme'), ('manufacturer:beta'), ('other:ignored')")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	return &testMySQLContainer{container: mysqlContainer, dsn: dsn}
}

func TestRegistryManufacturersIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tc := setupRegistryMySQL(t)
	ctx := context.Background()

	reg, err := Connect(ctx, tc.dsn)
	require.NoError(t, err)
	defer reg.Close()

	names, err := reg.Manufacturers(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"acme", "beta"}, names)
}

func TestConnectInvalidDSNFails(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	_, err := Connect(context.Background(), "invalid:user@tcp(127.0.0.1:1)/nope")
	assert.Error(t, err)
}
