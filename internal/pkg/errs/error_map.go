package errs

import "net/http"

// errorMap holds the message and HTTP status template for every code.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:        {Code: ErrInvalidParams, Message: "Invalid request parameters.", Status: http.StatusBadRequest},
	ErrUnsupportedMediaType: {Code: ErrUnsupportedMediaType, Message: "Unsupported request format.", Status: http.StatusUnsupportedMediaType},
	ErrInvalidJSONFormat:    {Code: ErrInvalidJSONFormat, Message: "Unsupported request format.", Status: http.StatusBadRequest},
	ErrExtraContentInBody:   {Code: ErrExtraContentInBody, Message: "Request contains unexpected data.", Status: http.StatusBadRequest},
	ErrRateLimitExceeded:    {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},
	ErrRequestTimeout:       {Code: ErrRequestTimeout, Message: "The request was cancelled or timed out.", Status: http.StatusRequestTimeout},

	// 3xxx: User Directory and Session Errors
	ErrUserAlreadyExists:  {Code: ErrUserAlreadyExists, Message: "User with this email already exists.", Status: http.StatusConflict},
	ErrInvalidCredentials: {Code: ErrInvalidCredentials, Message: "Invalid email or password.", Status: http.StatusUnauthorized},
	ErrUserNotFound:       {Code: ErrUserNotFound, Message: "User not found.", Status: http.StatusNotFound},
	ErrUnauthorized:       {Code: ErrUnauthorized, Message: "Please sign in to continue.", Status: http.StatusUnauthorized},

	// 4xxx: Collaborator Errors
	ErrSearchUnavailable: {Code: ErrSearchUnavailable, Message: "Book search is unavailable. Please try again later.", Status: http.StatusBadGateway},

	// 5xxx: Internal System Errors
	ErrUnknown:      {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
	ErrStorageRead:  {Code: ErrStorageRead, Message: "Failed to read stored data.", Status: http.StatusInternalServerError},
	ErrStorageWrite: {Code: ErrStorageWrite, Message: "Failed to save data.", Status: http.StatusInternalServerError},
}
