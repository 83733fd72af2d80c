package common

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/runlens/pkg/core"
)

func TestViewerID(t *testing.T) {
	store := sessions.NewCookieStore([]byte("test-secret-key-32-bytes-long!!"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := ViewerID(store, httptest.NewRecorder(), req, false)
	assert.ErrorIs(t, err, ErrNoViewer)

	rec := httptest.NewRecorder()
	id, err := ViewerID(store, rec, req, true)
	require.NoError(t, err)
	assert.Len(t, id, 26)

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range cookies {
		next.AddCookie(c)
	}
	again, err := ViewerID(store, httptest.NewRecorder(), next, false)
	require.NoError(t, err)
	assert.Equal(t, id, again)
}

func TestRunHref(t *testing.T) {
	tests := []struct {
		key  core.RunKey
		want string
	}{
		{core.RunKey{"alpha"}, "/view/alpha"},
		{core.RunKey{"exp", "seed 3"}, "/view/exp/seed%203"},
		{core.RunKey{"a/b"}, "/view/a%2Fb"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, RunHref(tt.key))
		})
	}
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusCreated, map[string]int{"added": 2})
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"added": 2}`, rec.Body.String())
}
