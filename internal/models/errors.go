package models

import "errors"

var (
	ErrUnknownTarget    = errors.New("unknown hardware target")
	ErrInvalidTheme     = errors.New("invalid theme")
	ErrInvalidGraphSize = errors.New("invalid graph size")
	ErrInvalidColor     = errors.New("invalid color format")
	ErrInvalidStateKey  = errors.New("invalid state key")
	ErrDuplicateTarget  = errors.New("duplicate display target")
	ErrInvalidLanguage  = errors.New("invalid language tag")
)
