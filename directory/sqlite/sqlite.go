// Package sqlite implements the directory on top of a sqlite database.
// The schema is managed externally; this package only performs the two
// lookups the server needs.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	// register sqlite3 for database/sql
	_ "github.com/mattn/go-sqlite3"

	"github.com/lastseenhq/lastseen/directory"
)

const (
	userByEmailQuery = `SELECT username FROM web_users WHERE email IS ? AND expiration > ?`
	clientByKeyQuery = `SELECT id, username FROM api_keys WHERE key_base64 IS ? AND expiration > ?`
)

type Directory struct {
	db  *sql.DB
	now func() time.Time
}

var _ directory.Directory = (*Directory)(nil)

// Open opens the database at path and verifies it is reachable, so a
// misconfigured path fails at startup rather than on the first login.
func Open(path string) (*Directory, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening directory database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging directory database: %w", err)
	}
	return &Directory{db: db, now: time.Now}, nil
}

func (d *Directory) Close() error {
	return d.db.Close()
}

func (d *Directory) LookupUserByEmail(ctx context.Context, email string) (string, error) {
	var username string
	err := d.db.QueryRowContext(ctx, userByEmailQuery, email, d.now().Unix()).Scan(&username)
	if errors.Is(err, sql.ErrNoRows) {
		return "", directory.ErrNotAuthorized
	}
	if err != nil {
		return "", fmt.Errorf("%w: %s", directory.ErrUnavailable, err)
	}
	return username, nil
}

func (d *Directory) LookupClientByKey(ctx context.Context, key string) (directory.ClientInfo, error) {
	var info directory.ClientInfo
	err := d.db.QueryRowContext(ctx, clientByKeyQuery, key, d.now().Unix()).Scan(&info.ID, &info.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return directory.ClientInfo{}, directory.ErrNotAuthorized
	}
	if err != nil {
		return directory.ClientInfo{}, fmt.Errorf("%w: %s", directory.ErrUnavailable, err)
	}
	return info, nil
}
