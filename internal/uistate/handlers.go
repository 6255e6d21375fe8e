package uistate

import (
	"net/http"

	"github.com/soyeahso/suite/internal/route"
)

// Handler serves GET /api/ui/state and POST /api/ui/search-modal/{op}.
// Both expect Sessions.Middleware upstream.
type Handler struct{}

func storeOrFail(w http.ResponseWriter, r *http.Request) (*Store, bool) {
	st, ok := FromContext(r.Context())
	if !ok {
		route.WriteJSON(w, http.StatusInternalServerError, route.ErrorBody{Error: "internal", Message: "no ui session"})
	}
	return st, ok
}

// State writes the current snapshot.
func (Handler) State(w http.ResponseWriter, r *http.Request) {
	st, ok := storeOrFail(w, r)
	if !ok {
		return
	}
	route.WriteJSON(w, http.StatusOK, st.State())
}

// SearchModal applies the transition named by the {op} path value.
func (Handler) SearchModal(w http.ResponseWriter, r *http.Request) {
	st, ok := storeOrFail(w, r)
	if !ok {
		return
	}

	var next State
	switch op := r.PathValue("op"); op {
	case "open":
		next = st.OpenSearchModal()
	case "close":
		next = st.CloseSearchModal()
	case "toggle":
		next = st.ToggleSearchModal()
	default:
		route.WriteJSON(w, http.StatusNotFound, route.ErrorBody{Error: "not_found", Message: "unknown transition " + op})
		return
	}
	route.WriteJSON(w, http.StatusOK, next)
}
