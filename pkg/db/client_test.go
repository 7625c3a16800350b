package db

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/maldonadorepuestos/storefront/pkg/config"
	"github.com/maldonadorepuestos/storefront/pkg/logger"
)

type row struct {
	ID   int
	Name string
}

func openClient(t *testing.T) *Client {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger:                 queryLogger(logger.Nop()),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&row{}))
	return Wrap(conn)
}

func countRows(t *testing.T, c *Client) int64 {
	t.Helper()
	var n int64
	require.NoError(t, c.DB().Model(&row{}).Count(&n).Error)
	return n
}

func TestWithTxCommitsOnSuccess(t *testing.T) {
	client := openClient(t)
	err := client.WithTx(context.Background(), func(tx *gorm.DB) error {
		return tx.Create(&row{Name: "kept"}).Error
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), countRows(t, client))
}

func TestWithTxRollsBackOnError(t *testing.T) {
	client := openClient(t)
	boom := errors.New("boom")
	err := client.WithTx(context.Background(), func(tx *gorm.DB) error {
		require.NoError(t, tx.Create(&row{Name: "dropped"}).Error)
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Zero(t, countRows(t, client))
}

func TestWithTxRollsBackOnPanic(t *testing.T) {
	client := openClient(t)
	assert.Panics(t, func() {
		_ = client.WithTx(context.Background(), func(tx *gorm.DB) error {
			tx.Create(&row{Name: "dropped"})
			panic("bad state")
		})
	})
	assert.Zero(t, countRows(t, client))
}

func TestPing(t *testing.T) {
	require.NoError(t, openClient(t).Ping(context.Background()))
}

func TestDialectorFor(t *testing.T) {
	_, err := dialectorFor(config.DBConfig{Driver: DriverPostgres})
	assert.EqualError(t, err, "database DSN is required")

	_, err = dialectorFor(config.DBConfig{Driver: "oracle"})
	assert.EqualError(t, err, `unsupported database driver "oracle"`)

	d, err := dialectorFor(config.DBConfig{Driver: DriverSQLite})
	require.NoError(t, err)
	assert.Equal(t, "sqlite", d.Name())

	assert.Equal(t, DriverPostgres, driverName(config.DBConfig{}))
}

func TestIsUniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "users_email_key"}

	assert.True(t, IsUniqueViolation(pgErr, ""))
	assert.True(t, IsUniqueViolation(pgErr, "users_email_key"))
	assert.False(t, IsUniqueViolation(pgErr, "products_code_key"))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}, ""))
	assert.True(t, IsUniqueViolation(errors.New("UNIQUE constraint failed: users.email"), ""))
	assert.False(t, IsUniqueViolation(nil, ""))
	assert.True(t, IsNotFound(gorm.ErrRecordNotFound))
}
