package cli

import "errors"

// Flag validation errors.
var (
	ErrInvalidPage     = errors.New("page must be >= 1")
	ErrInvalidPageSize = errors.New("page-size cannot be negative")
	ErrKeywordTooShort = errors.New("search keyword too short")
	ErrUnknownFormat   = errors.New("unknown output format")
	ErrNotTerminal     = errors.New("browse needs an interactive terminal")
	ErrConfigExists    = errors.New("configuration file already exists, use --force to overwrite")
	ErrNoItemData      = errors.New("item data required, use --data or --file")
)
