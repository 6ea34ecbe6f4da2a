package db

import (
	"testing"

	"irma-verse/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSN(t *testing.T) {
	base := config.DatabaseConfig{
		Host:     "db",
		Port:     3306,
		Username: "irma",
		Password: "secret",
		Database: "irma_verse",
		Charset:  "utf8mb4",
		SSLMode:  "disable",
	}

	tests := []struct {
		name   string
		driver string
		host   string
		port   int
		want   string
	}{
		{
			name:   "mysql primary",
			driver: "mysql",
			want:   "irma:secret@tcp(db:3306)/irma_verse?charset=utf8mb4&parseTime=True&loc=Local",
		},
		{
			name:   "mysql replica",
			driver: "mysql",
			host:   "replica-1",
			port:   3307,
			want:   "irma:secret@tcp(replica-1:3307)/irma_verse?charset=utf8mb4&parseTime=True&loc=Local",
		},
		{
			name:   "postgres",
			driver: "postgres",
			want:   "host=db port=3306 user=irma password=secret dbname=irma_verse sslmode=disable",
		},
		{
			name:   "sqlite",
			driver: "sqlite",
			want:   "irma_verse",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			cfg.Driver = tt.driver
			got, err := DSN(cfg, tt.host, tt.port)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDSNUnknownDriver(t *testing.T) {
	_, err := DSN(config.DatabaseConfig{Driver: "oracle"}, "", 0)
	assert.Error(t, err)
}

func TestOpenSQLiteMemory(t *testing.T) {
	gdb, err := Open(config.DatabaseConfig{Driver: "sqlite", Database: ":memory:"}, "info")
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	defer sqlDB.Close()

	assert.NoError(t, sqlDB.Ping())
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
}
