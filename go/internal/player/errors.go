package player

import "errors"

// ErrEmptyPool is returned when an import produced no players
var ErrEmptyPool = errors.New("no players found in import")

// ErrUnsupportedFormat is returned for files that are neither CSV nor XLSX
var ErrUnsupportedFormat = errors.New("unsupported import format")

// ErrMissingHeader is returned when an import has no header row
var ErrMissingHeader = errors.New("import has no header row")
