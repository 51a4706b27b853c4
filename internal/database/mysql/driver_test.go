package mysql

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	gomysql "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/mysqlts/internal/database"
	"github.com/koustreak/mysqlts/internal/errs"
)

func TestNew_InvalidDSN(t *testing.T) {
	tests := []struct {
		name string
		dsn  string
	}{
		{"malformed", "user:pass@tcp(localhost:3306"},
		{"no database", "user:pass@tcp(localhost:3306)/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(context.Background(), database.DefaultConfig(tt.dsn))
			require.Error(t, err)
			assert.True(t, errs.IsInvalidInput(err))
		})
	}
}

func TestDriver_QueryRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	d := Open(db, "app")
	d.queryTimeout = time.Second
	assert.Equal(t, "app", d.Schema())

	mock.ExpectQuery("SELECT VERSION").WillReturnRows(sqlmock.NewRows([]string{"v"}).AddRow("8.0.36"))
	var version string
	require.NoError(t, d.QueryRow(context.Background(), "SELECT VERSION()").Scan(&version))
	assert.Equal(t, "8.0.36", version)

	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"1"}))
	err = d.QueryRow(context.Background(), "SELECT 1").Scan(&version)
	assert.True(t, errs.IsNotFound(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDriver_BindSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	d := Open(db, "app")
	mock.ExpectQuery(`SELECT DATABASE\(\)`).
		WillReturnRows(sqlmock.NewRows([]string{"DATABASE()"}).AddRow("App"))

	require.NoError(t, d.bindSchema(context.Background()))
	assert.Equal(t, "App", d.Schema(), "server-reported name wins over the DSN")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDriver_BindSchema_Unbound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	d := Open(db, "app")
	mock.ExpectQuery(`SELECT DATABASE\(\)`).
		WillReturnRows(sqlmock.NewRows([]string{"DATABASE()"}).AddRow(nil))

	err = d.bindSchema(context.Background())
	require.Error(t, err)
	assert.True(t, errs.IsInvalidInput(err))
	assert.Equal(t, "app", d.Schema())
}

func TestDriver_BindSchema_Denied(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT DATABASE\(\)`).
		WillReturnError(&gomysql.MySQLError{Number: 1044, Message: "Access denied for user"})

	err = Open(db, "app").bindSchema(context.Background())
	assert.True(t, errs.IsPermissionDenied(err))
}

func TestDriver_Ping(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectPing().WillReturnError(errors.New("dial tcp 127.0.0.1:3306: connect: connection refused"))
	err = Open(db, "app").Ping(context.Background())
	assert.True(t, errs.IsConnectionFailed(err))
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want errs.ErrKind
	}{
		{"deadline", context.DeadlineExceeded, errs.ErrKindTimeout},
		{"canceled", context.Canceled, errs.ErrKindTimeout},
		{"no rows", sql.ErrNoRows, errs.ErrKindNotFound},
		{"access denied", &gomysql.MySQLError{Number: 1045}, errs.ErrKindPermissionDenied},
		{"unknown database", &gomysql.MySQLError{Number: 1049}, errs.ErrKindNotFound},
		{"too many connections", &gomysql.MySQLError{Number: 1040}, errs.ErrKindConnectionFailed},
		{"syntax", &gomysql.MySQLError{Number: 1064}, errs.ErrKindQueryFailed},
		{"other server error", &gomysql.MySQLError{Number: 1205}, errs.ErrKindQueryFailed},
		{"bad connection", gomysql.ErrInvalidConn, errs.ErrKindConnectionFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapError(tt.err, "op")
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Kind)
			assert.ErrorIs(t, got, tt.err)
		})
	}

	assert.Nil(t, mapError(nil, "op"))
}
