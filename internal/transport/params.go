package transport

import (
	"net/http"

	"himachal-market/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// idParam parses the {id} URL parameter, answering 400 when it is not a UUID
func idParam(w http.ResponseWriter, r *http.Request, resource string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid "+resource+" ID")
		return uuid.Nil, false
	}
	return id, true
}
