package authcore

import "errors"

var (
	// ErrKeychainRequired is returned by Build when no keychain was supplied.
	ErrKeychainRequired = errors.New("keychain required")
	// ErrBuilderReused is returned when Build is called twice on one builder.
	ErrBuilderReused = errors.New("builder already used")
	// ErrStorageKeyEmpty is returned when the configured storage key is blank.
	ErrStorageKeyEmpty = errors.New("storage key must not be empty")
)
