package domain

import "errors"

// ErrLanguageNotRegistered is returned when an export or accessor operation
// names a language that was never registered in this session.
var ErrLanguageNotRegistered = errors.New("language not registered")
