package catalog

import "errors"

var (
	ErrRemoteUnavailable = errors.New("catalog server unavailable")
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("item not found")
	ErrPersistence       = errors.New("review storage failed")
	ErrNotReady          = errors.New("catalog not ready")
	ErrLoadInProgress    = errors.New("catalog load in progress")
)

// RemoteUnavailableMessage is what the render layer shows while the store
// is Failed.
const RemoteUnavailableMessage = "Catalog server is not running. Start the JSON data server and reload."
