package handler

import (
	"net/http"

	"mythoughts/internal/auth"
)

type MeHandler struct{}

func (h *MeHandler) Me(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.PrincipalFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"uid":   p.UID,
		"email": p.Email,
	})
}
