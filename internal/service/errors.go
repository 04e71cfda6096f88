// Package service implements the account and tasting use cases on top of the
// repositories. Handlers translate its sentinel errors into flashes and
// redirects.
package service

import "errors"

var (
	// ErrInvalidCredentials covers both an unknown email and a wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidCode is returned when the signup code does not match.
	ErrInvalidCode = errors.New("invalid signup code")
	// ErrInvalidSignup is returned when the email or password is blank.
	ErrInvalidSignup = errors.New("email and password are required")
	// ErrPasswordTooLong is returned for passwords bcrypt cannot hash.
	ErrPasswordTooLong = errors.New("password exceeds 72 bytes")
	// ErrInvalidTasting is returned when a tasting has no store name.
	ErrInvalidTasting = errors.New("store name is required")
)

// Recorder receives outcome counters. *metrics.Metrics satisfies it.
type Recorder interface {
	Login(outcome string)
	Signup(outcome string)
	TastingWrite(action string)
}

type nopRecorder struct{}

func (nopRecorder) Login(string)        {}
func (nopRecorder) Signup(string)       {}
func (nopRecorder) TastingWrite(string) {}
