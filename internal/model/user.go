package model

// User represents an account as stored in the `users` table. The password
// is never kept in clear; only its bcrypt hash.
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	FirstName    – given name shown in the navigation bar.
//	LastName     – family name.
//	Email        – unique, lower-cased login address.
//	PasswordHash – bcrypt hash of the password.
type User struct {
	ID           uint64 // users.id
	FirstName    string // users.first_name
	LastName     string // users.last_name
	Email        string // users.email
	PasswordHash string // users.password_hash
}

// Session models a row of the `sessions` table. The ID doubles as the jti
// claim of the signed cookie issued at login, so revoking the row ends the
// cookie's validity before its expiry.
//
// Fields:
//
//	ID        – random UUID.
//	UserID    – owner of the session.
//	ExpiresAt – unix seconds after which the session is dead.
//	RevokedAt – unix seconds of logout, zero while live.
type Session struct {
	ID        string // sessions.id
	UserID    uint64 // sessions.user_id
	ExpiresAt int64  // sessions.expires_at
	RevokedAt int64  // sessions.revoked_at (nullable)
}
