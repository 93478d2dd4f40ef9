package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/xavierca1/dealer-leads/internal/entity"
)

// ViewerHeader carries the acting user id. Authentication happens upstream.
const ViewerHeader = "X-User-ID"

type viewerKey struct{}

// Viewer resolves the acting user from the X-User-ID header, or from the
// viewer query parameter for browsers that cannot set headers on websockets.
// Anything but the supervisor or a roster advisor is rejected.
func Viewer(roster entity.Roster) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(ViewerHeader)
			if id == "" {
				id = r.URL.Query().Get("viewer")
			}
			if !roster.IsViewer(id) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(map[string]string{
					"code":    "VALIDATION_ERROR",
					"message": "unknown viewer: set " + ViewerHeader + " to supervisor or an advisor id",
				})
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), viewerKey{}, id)))
		})
	}
}

// ViewerID returns the id stored by Viewer, or "" outside of it.
func ViewerID(ctx context.Context) string {
	id, _ := ctx.Value(viewerKey{}).(string)
	return id
}
