package openapi

import "errors"

var (
	// ErrOperationNotFound is returned when a document has no operation with
	// the requested id.
	ErrOperationNotFound = errors.New("openapi: operation not found")
	// ErrNoRequestBody is returned for operations without an object request
	// body.
	ErrNoRequestBody = errors.New("openapi: operation has no object request body")
	// ErrUnsupportedSource is returned for source kinds the loader cannot read.
	ErrUnsupportedSource = errors.New("openapi: unsupported source kind")
)
