package config

import "errors"

// ErrInvalidImport indicates an import payload that could not be parsed or
// lacked a config field. The live settings are left unchanged when it is
// returned.
var ErrInvalidImport = errors.New("invalid settings import payload")
