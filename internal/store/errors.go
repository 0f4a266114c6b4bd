package store

import "errors"

var (
	ErrCatalogNotFound = errors.New("annotation catalog not found")
	ErrHeaderMismatch  = errors.New("row does not match table header")
)
