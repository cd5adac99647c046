package database

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable-api/pkg/config"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "catalog", SSLMode: "disable"})
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=catalog sslmode=disable", dsn)
}

func TestApplyCatalogSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS classes").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, ApplyCatalogSchema(context.Background(), sqlx.NewDb(db, "postgres")))
	assert.NoError(t, mock.ExpectationsWereMet())
}
