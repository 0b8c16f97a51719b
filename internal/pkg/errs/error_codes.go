/*
Package errs provides the application error type and its code table.

Codes identify a failure both inside the server and in responses sent to UI collaborators.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request or operation parameters failed validation.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request header Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body is not valid JSON for the target.
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates that the request body contained data after the JSON value.
	ErrExtraContentInBody = 1004

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1007

	// ErrRequestTimeout indicates that the caller's context was cancelled or expired before the work finished.
	ErrRequestTimeout = 1008
)

// 3xxx: User Directory and Session Errors
const (
	// ErrUserAlreadyExists is returned when registering an email that is already taken.
	ErrUserAlreadyExists = 3101

	// ErrInvalidCredentials is returned when no user matches both email and password.
	ErrInvalidCredentials = 3102

	// ErrUserNotFound is returned when no user record has the requested id.
	ErrUserNotFound = 3103

	// ErrUnauthorized indicates that the route needs a signed-in session.
	ErrUnauthorized = 3104
)

// 4xxx: Collaborator Errors
const (
	// ErrSearchUnavailable indicates that the book search provider failed or answered unexpectedly.
	ErrSearchUnavailable = 4001
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000

	// ErrStorageRead indicates that a persisted value could not be read or decoded.
	ErrStorageRead = 5001

	// ErrStorageWrite indicates that a value could not be encoded or written.
	ErrStorageWrite = 5002
)
