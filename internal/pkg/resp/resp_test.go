package resp

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookfinder/internal/pkg/errs"
)

func decode(t *testing.T, w *httptest.ResponseRecorder) JSONResponse {
	t.Helper()
	var body JSONResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestRespondSuccess(t *testing.T) {
	w := httptest.NewRecorder()
	RespondSuccess(w, httptest.NewRequest("GET", "/", nil), map[string]int{"n": 1})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	body := decode(t, w)
	assert.Equal(t, 0, body.Code)
	assert.Equal(t, map[string]any{"n": float64(1)}, body.Data)
}

func TestRespondError(t *testing.T) {
	w := httptest.NewRecorder()
	RespondError(w, httptest.NewRequest("GET", "/", nil), errs.NewError(errs.ErrUserAlreadyExists))

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, errs.ErrUserAlreadyExists, decode(t, w).Code)
}

func TestRespondErrorHidesForeignCause(t *testing.T) {
	w := httptest.NewRecorder()
	RespondError(w, httptest.NewRequest("GET", "/", nil), errors.New("dial tcp: refused"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode(t, w)
	assert.Equal(t, errs.ErrUnknown, body.Code)
	assert.NotContains(t, w.Body.String(), "refused")
}
