package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"mythoughts/internal/auth"
	"mythoughts/internal/profile"
)

type UserHandler struct {
	Svc Profiles
	Log *zap.Logger
}

type mergeProfileReq struct {
	DisplayName  *string         `json:"displayName"`
	Bio          *string         `json:"bio"`
	ProfileImage *string         `json:"profileImage"`
	DarkMode     *bool           `json:"darkMode"`
	Email        *string         `json:"email"`
	UpdatedAt    json.RawMessage `json:"updatedAt"`
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.Svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		h.Log.Error("profile read failed", zap.Error(err))
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, p.Doc())
}

// Merge writes the caller's own profile. Email is taken from the
// token, never the body.
func (h *UserHandler) Merge(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.PrincipalFromContext(r.Context())
	id := chi.URLParam(r, "id")
	if id != caller.UID {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	var req mergeProfileReq
	if err := decodeStrict(r, &req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	err := h.Svc.UpsertMerge(r.Context(), id, caller.Email, profile.Merge{
		DisplayName:  req.DisplayName,
		Bio:          req.Bio,
		ProfileImage: req.ProfileImage,
		DarkMode:     req.DarkMode,
	})
	if err != nil {
		h.Log.Error("profile merge failed", zap.Error(err))
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) Range(w http.ResponseWriter, r *http.Request) {
	v := r.URL.Query()
	if v.Get("field") != "email" {
		http.Error(w, "only email ranges are supported", http.StatusBadRequest)
		return
	}
	ps, err := h.Svc.EmailRange(r.Context(), v.Get("gte"), v.Get("lt"))
	if err != nil {
		h.Log.Error("profile range failed", zap.Error(err))
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	docs := make([]profile.Doc, 0, len(ps))
	for _, p := range ps {
		docs = append(docs, p.Doc())
	}
	writeJSON(w, http.StatusOK, map[string]any{"docs": docs})
}
