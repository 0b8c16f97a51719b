package req

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookfinder/internal/pkg/errs"
)

type payload struct {
	Email string `json:"email"`
}

func TestBindJSON(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		wantCode    int
	}{
		{"ok", "application/json", `{"email":"a@b.c"}`, 0},
		{"wrong media type", "text/plain", `{"email":"a@b.c"}`, errs.ErrUnsupportedMediaType},
		{"broken json", "application/json", `{"email":`, errs.ErrInvalidJSONFormat},
		{"unknown field", "application/json", `{"mail":"a@b.c"}`, errs.ErrInvalidJSONFormat},
		{"trailing data", "application/json", `{"email":"a"} {"email":"b"}`, errs.ErrExtraContentInBody},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/", strings.NewReader(tt.body))
			r.Header.Set("Content-Type", tt.contentType)
			w := httptest.NewRecorder()

			var dst payload
			err := BindJSON(w, r, &dst)
			if tt.wantCode == 0 {
				require.Nil(t, err)
				assert.Equal(t, "a@b.c", dst.Email)
				return
			}
			require.NotNil(t, err)
			assert.Equal(t, tt.wantCode, err.Code)
		})
	}
}

func TestBindOptionalJSONEmptyBody(t *testing.T) {
	r := httptest.NewRequest("POST", "/", nil)
	w := httptest.NewRecorder()

	var dst payload
	assert.Nil(t, BindOptionalJSON(w, r, &dst))
}
