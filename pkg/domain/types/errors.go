package types

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors shared by all repository backends. Callers match them
// with errors.Is.
var (
	// ErrGuidelineNotFound indicates no guideline version exists for the user
	ErrGuidelineNotFound = goerr.New("guideline not found")

	// ErrVersionConflict indicates an optimistic-concurrency failure:
	// another writer committed a guideline version after the caller read
	// its base version. The caller should re-read and retry.
	ErrVersionConflict = goerr.New("guideline version conflict")

	// ErrFactNotFound indicates the referenced fact does not exist
	ErrFactNotFound = goerr.New("fact not found")

	// ErrInvalidEmbedding indicates an embedding with the wrong dimension
	ErrInvalidEmbedding = goerr.New("invalid embedding dimension")
)
