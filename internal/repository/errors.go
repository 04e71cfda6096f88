// Package repository holds the SQL access for users, tastings and sessions.
// Queries use `?` placeholders only, so the same statements run on MySQL and
// SQLite. Missing rows surface as ErrNotFound; callers acting on a row they
// do not own get ErrForbidden and should answer with a 403-style refusal.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own.
var ErrForbidden = errors.New("forbidden")

// ErrNotFound is returned when the requested row does not exist, or for
// sessions, is no longer valid.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned by UserRepo.Create when the address is taken.
var ErrEmailExists = errors.New("email already exists")

const mysqlDuplicateEntry = 1062

// isDuplicateKey reports whether err is a unique or primary key violation
// from either supported driver.
func isDuplicateKey(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDuplicateEntry
	}
	var liteErr *msqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return false
}
