package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/sessions"
	"github.com/oklog/ulid/v2"

	"github.com/leapstack-labs/runlens/pkg/core"
)

// SessionName is the name of the viewer session cookie.
const SessionName = "runlens"

const viewerKey = "viewer"

// ErrNoViewer is returned when a request carries no viewer session.
var ErrNoViewer = errors.New("no viewer session")

// ViewerID returns the viewer ID stored in the request's session. When create
// is set a missing ID is generated and saved, which writes a cookie to w and
// must happen before the response body is started.
func ViewerID(store sessions.Store, w http.ResponseWriter, r *http.Request, create bool) (string, error) {
	session, err := store.Get(r, SessionName)
	if session == nil {
		return "", fmt.Errorf("failed to read session: %w", err)
	}
	// A cookie that fails to decode yields a fresh session alongside err.
	if id, ok := session.Values[viewerKey].(string); ok && id != "" && err == nil {
		return id, nil
	}
	if !create {
		return "", ErrNoViewer
	}

	id := ulid.Make().String()
	session.Values[viewerKey] = id
	if err := session.Save(r, w); err != nil {
		return "", fmt.Errorf("failed to save session: %w", err)
	}
	return id, nil
}

// RunHref returns the report page URL of a run.
func RunHref(key core.RunKey) string {
	parts := make([]string, len(key))
	for i, p := range key {
		parts[i] = url.PathEscape(p)
	}
	return "/view/" + strings.Join(parts, "/")
}

// WriteJSON writes v as a JSON response.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
