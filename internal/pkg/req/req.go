/*
Package req provides helper functions for HTTP request parsing and data binding.

It encapsulates JSON body decoding with size limits and maps malformed input to
the matching errs codes so handlers can respond without further inspection.
*/
package req

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"bookfinder/internal/pkg/errs"
)

// MaxBodySize limits every JSON request body (1 MB).
const MaxBodySize int64 = 1 << 20

// BindJSON attempts to bind the JSON data from the HTTP request body to the destination struct dst.
func BindJSON(w http.ResponseWriter, r *http.Request, dst any) *errs.CustomError {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "application/json") {
		return errs.NewError(errs.ErrUnsupportedMediaType)
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return errs.NewError(errs.ErrInvalidParams)
		}
		return errs.NewError(errs.ErrInvalidJSONFormat)
	}

	if decoder.More() {
		return errs.NewError(errs.ErrExtraContentInBody)
	}

	return nil
}

// BindOptionalJSON behaves like BindJSON but accepts an empty body.
func BindOptionalJSON(w http.ResponseWriter, r *http.Request, dst any) *errs.CustomError {
	if r.ContentLength == 0 {
		return nil
	}
	return BindJSON(w, r, dst)
}
