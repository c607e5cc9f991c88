package utils

import "errors"

var (
	ErrUnauthenticated      = errors.New("unauthenticated")
	ErrMissingConfiguration = errors.New("ingestion configuration missing")
	ErrMissingFile          = errors.New("file missing")
	ErrUpstream             = errors.New("upstream ingestion failure")
	ErrPersistence          = errors.New("persistence failure")
)
