package go4mesh

import "errors"

// Errors
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrOutOfMemory     = errors.New("allocation limit exceeded")
	ErrIOFailure       = errors.New("file i/o failure")
	ErrFormatMismatch  = errors.New("on-disk format mismatch")
	ErrIntegrity       = errors.New("connectivity failed validity check")
	ErrBadMeshExpr     = errors.New("bad mesh expression")
	ErrBadTreeRef      = errors.New("bad tree or face reference")
	ErrBadCatalogParam = errors.New("bad catalog param")
	ErrTopoNotFound    = errors.New("topology not found")
)
