package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/koustreak/mysqlts/internal/database"
	"github.com/koustreak/mysqlts/internal/errs"
)

// Driver is a MySQL implementation of database.DB backed by database/sql.
// It is safe for concurrent use by multiple goroutines.
type Driver struct {
	db           *sql.DB
	schema       string
	queryTimeout time.Duration
}

// New opens a MySQL connection pool using the provided Config and returns a Driver.
// The DSN must name a database. New pings, then asks the server which
// database the session is bound to; that name is what Schema reports.
func New(ctx context.Context, cfg *database.Config) (*Driver, error) {
	mcfg, err := mysql.ParseDSN(cfg.DSN)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "invalid DSN", err)
	}
	if mcfg.DBName == "" {
		return nil, errs.New(errs.ErrKindInvalidInput, "DSN does not name a database")
	}

	db, err := sql.Open("mysql", mcfg.FormatDSN())
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConnectionFailed, "invalid DSN", err)
	}
	configurePool(db, cfg)

	d := Open(db, mcfg.DBName)
	d.queryTimeout = cfg.QueryTimeout

	pingCtx := ctx
	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}

	if err := d.Ping(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := d.bindSchema(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return d, nil
}

// bindSchema replaces the DSN's database name with the one the server
// reports, which is the value information_schema is filtered by.
func (d *Driver) bindSchema(ctx context.Context) error {
	var name sql.NullString
	if err := d.QueryRow(ctx, "SELECT DATABASE()").Scan(&name); err != nil {
		return err
	}
	if !name.Valid || name.String == "" {
		return errs.New(errs.ErrKindInvalidInput, "connection is not bound to a database")
	}
	d.schema = name.String
	return nil
}

// Open wraps an already opened *sql.DB bound to the given database name.
func Open(db *sql.DB, schema string) *Driver {
	return &Driver{db: db, schema: schema}
}

// --- database.DB implementation ---

func (d *Driver) Ping(ctx context.Context) error {
	if err := d.db.PingContext(ctx); err != nil {
		return mapError(err, "ping failed")
	}
	return nil
}

func (d *Driver) Close() {
	_ = d.db.Close()
}

func (d *Driver) Schema() string {
	return d.schema
}

func (d *Driver) Query(ctx context.Context, query string, args ...any) (database.Rows, error) {
	ctx, cancel := d.withTimeout(ctx)
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		cancel()
		return nil, mapError(err, "query failed")
	}
	return &mysqlRows{rows: rows, cancel: cancel}, nil
}

func (d *Driver) QueryRow(ctx context.Context, query string, args ...any) database.Row {
	ctx, cancel := d.withTimeout(ctx)
	return &mysqlRow{row: d.db.QueryRowContext(ctx, query, args...), cancel: cancel}
}

func (d *Driver) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.queryTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d.queryTimeout)
}

// --- sql.DB type wrappers ---

type mysqlRows struct {
	rows   *sql.Rows
	cancel context.CancelFunc
}

func (r *mysqlRows) Next() bool { return r.rows.Next() }

func (r *mysqlRows) Scan(dest ...any) error {
	if err := r.rows.Scan(dest...); err != nil {
		return errs.Wrap(errs.ErrKindQueryFailed, "scan failed", err)
	}
	return nil
}

func (r *mysqlRows) Close() {
	_ = r.rows.Close()
	r.cancel()
}

func (r *mysqlRows) Err() error {
	if err := r.rows.Err(); err != nil {
		return mapError(err, "row iteration failed")
	}
	return nil
}

type mysqlRow struct {
	row    *sql.Row
	cancel context.CancelFunc
}

func (r *mysqlRow) Scan(dest ...any) error {
	defer r.cancel()
	if err := r.row.Scan(dest...); err != nil {
		return mapError(err, "scan failed")
	}
	return nil
}

// --- error mapping ---

// mapError translates go-sql-driver/mysql errors into *errs.Error.
func mapError(err error, msg string) *errs.Error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.ErrKindTimeout, msg, err)
	}

	if errors.Is(err, sql.ErrNoRows) {
		return errs.Wrap(errs.ErrKindNotFound, msg, err)
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return errs.Wrap(
			classifyMySQLCode(mysqlErr.Number),
			fmt.Sprintf("%s: %s", msg, mysqlErr.Message),
			err,
		)
	}

	// bad connections, refused dials, TLS failures
	return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
}

// classifyMySQLCode maps MySQL error numbers to ErrKind.
// Full list: https://dev.mysql.com/doc/mysql-errors/8.0/en/server-error-reference.html
func classifyMySQLCode(code uint16) errs.ErrKind {
	switch code {
	case 1044, 1045, 1142, 1143:
		return errs.ErrKindPermissionDenied
	case 1049, 1146:
		return errs.ErrKindNotFound
	case 1040, 1203, 2002, 2003, 2006, 2013:
		return errs.ErrKindConnectionFailed
	case 1054, 1064:
		return errs.ErrKindQueryFailed
	default:
		return errs.ErrKindQueryFailed
	}
}
