package database

import (
	"testing"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect(t *testing.T) {
	t.Run("Invalid Connection", func(t *testing.T) {
		cfg := Config{
			Driver:         DriverMySQL,
			Host:           "localhost",
			Port:           9999, // Unused port
			User:           "root",
			Password:       "wrongpassword",
			Name:           "commerce_sync",
			TimeoutSeconds: 1,
		}

		db, err := Connect(cfg)
		assert.Error(t, err)
		assert.Nil(t, db)
	})

	t.Run("Unsupported Driver", func(t *testing.T) {
		db, err := Connect(Config{Driver: "oracle"})
		assert.ErrorContains(t, err, "unsupported database driver")
		assert.Nil(t, db)
	})

	t.Run("SQLite In Memory", func(t *testing.T) {
		db, err := Connect(Config{Driver: DriverSQLite, Name: ":memory:"})
		require.NoError(t, err)

		sqlDB, err := db.DB()
		require.NoError(t, err)
		assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
	})
}

func TestMySQLDSN_SpecialPassword(t *testing.T) {
	cfg := Config{
		Host:     "db.internal",
		Port:     3307,
		User:     "sync",
		Password: "p@ss:w/rd?#",
		Name:     "commerce_sync",
	}

	parsed, err := gomysql.ParseDSN(mysqlDSN(cfg, 5))
	require.NoError(t, err)

	assert.Equal(t, "sync", parsed.User)
	assert.Equal(t, "p@ss:w/rd?#", parsed.Passwd)
	assert.Equal(t, "db.internal:3307", parsed.Addr)
	assert.Equal(t, "commerce_sync", parsed.DBName)
	assert.True(t, parsed.ParseTime)
	assert.Equal(t, time.UTC, parsed.Loc)
	assert.Equal(t, 5*time.Second, parsed.Timeout)
}

func TestConfig_IsValidDriver(t *testing.T) {
	tests := []struct {
		driver string
		want   bool
	}{
		{DriverMySQL, true},
		{DriverPostgres, true},
		{DriverSQLite, true},
		{"mssql", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			assert.Equal(t, tt.want, Config{Driver: tt.driver}.IsValidDriver())
		})
	}
}
