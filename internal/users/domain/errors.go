package domain

import "errors"

var (
	// ErrStoreNotFound is returned when the store file does not exist.
	ErrStoreNotFound = errors.New("user store not found")
	// ErrStoreCorrupt is returned when the store file is not a JSON object of records.
	ErrStoreCorrupt = errors.New("user store is corrupt")
	// ErrUserNotFound is returned when no record exists for a user ID.
	ErrUserNotFound = errors.New("user not found")
	// ErrRecordInvalid is returned for a user whose entry is not a JSON object.
	ErrRecordInvalid = errors.New("user record is not a JSON object")
	// ErrProfileNotReady is returned for users who have not completed setup.
	ErrProfileNotReady = errors.New("user profile not completed")
)
