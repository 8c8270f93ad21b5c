package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"mythoughts/internal/auth"
	"mythoughts/internal/backend"
	"mythoughts/internal/thought"
)

type ThoughtHandler struct {
	Svc      Thoughts
	Validate *validator.Validate
	Log      *zap.Logger

	// Changed is called after every committed write. Optional.
	Changed func()
}

type createThoughtReq struct {
	Description string          `json:"description" validate:"required"`
	Epiphany    bool            `json:"epiphany"`
	Title       *string         `json:"title"`
	Tag         *string         `json:"tag"`
	CreatedBy   *thought.Author `json:"createdBy"`
	CreatedAt   json.RawMessage `json:"createdAt"`
}

// createdBy and createdAt are immutable, so a patch naming them is
// rejected by the strict decoder.
type patchThoughtReq struct {
	Description *string `json:"description"`
	Epiphany    *bool   `json:"epiphany"`
	Title       *string `json:"title"`
	Tag         *string `json:"tag"`
}

func (h *ThoughtHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.PrincipalFromContext(r.Context())

	var req createThoughtReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		http.Error(w, "description required", http.StatusBadRequest)
		return
	}
	if req.CreatedBy != nil && req.CreatedBy.UID != p.UID {
		http.Error(w, "createdBy must be the caller", http.StatusForbidden)
		return
	}
	if len(req.CreatedAt) > 0 && !backend.IsServerTimestamp(req.CreatedAt) {
		http.Error(w, "createdAt must be the server timestamp", http.StatusBadRequest)
		return
	}

	var idem *string
	if k := strings.TrimSpace(r.Header.Get("Idempotency-Key")); k != "" {
		idem = &k
	}

	t, err := h.Svc.Create(r.Context(), thought.CreateInput{
		Description: req.Description,
		Epiphany:    req.Epiphany,
		Title:       req.Title,
		Tag:         req.Tag,
		AuthorUID:   p.UID,
		AuthorEmail: p.Email,
		IdemKey:     idem,
	})
	if err != nil {
		h.fail(w, err)
		return
	}
	h.changed()
	writeJSON(w, http.StatusCreated, map[string]any{"id": t.ID})
}

func (h *ThoughtHandler) Update(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.PrincipalFromContext(r.Context())

	var req patchThoughtReq
	if err := decodeStrict(r, &req); err != nil {
		http.Error(w, "bad patch", http.StatusBadRequest)
		return
	}

	err := h.Svc.Update(r.Context(), chi.URLParam(r, "id"), p.UID, thought.Patch{
		Description: req.Description,
		Epiphany:    req.Epiphany,
		Title:       req.Title,
		Tag:         req.Tag,
	})
	if err != nil {
		h.fail(w, err)
		return
	}
	h.changed()
	w.WriteHeader(http.StatusNoContent)
}

func (h *ThoughtHandler) Delete(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.PrincipalFromContext(r.Context())

	if err := h.Svc.Delete(r.Context(), chi.URLParam(r, "id"), p.UID); err != nil {
		h.fail(w, err)
		return
	}
	h.changed()
	w.WriteHeader(http.StatusNoContent)
}

func (h *ThoughtHandler) changed() {
	if h.Changed != nil {
		h.Changed()
	}
}

func (h *ThoughtHandler) Get(w http.ResponseWriter, r *http.Request) {
	t, err := h.Svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t.Doc())
}

func (h *ThoughtHandler) List(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		h.fail(w, err)
		return
	}
	ts, err := h.Svc.List(r.Context(), q)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"docs": thought.Docs(ts)})
}

func parseQuery(r *http.Request) (thought.Query, error) {
	v := r.URL.Query()
	q := thought.Query{
		Where:   v.Get("where"),
		Equals:  v.Get("eq"),
		OrderBy: v.Get("orderBy"),
		Desc:    strings.EqualFold(v.Get("dir"), "desc"),
	}
	if _, ok := thought.OrderColumn(q.OrderBy); !ok {
		return q, thought.ErrInvalidQuery
	}
	if q.Where != "" {
		if _, ok := thought.FilterColumn(q.Where); !ok {
			return q, thought.ErrInvalidQuery
		}
	}
	return q, nil
}

func (h *ThoughtHandler) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, thought.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, thought.ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, thought.ErrInvalidPatch):
		http.Error(w, "invalid thought", http.StatusBadRequest)
	case errors.Is(err, thought.ErrInvalidQuery):
		http.Error(w, "invalid query", http.StatusBadRequest)
	default:
		h.Log.Error("thought request failed", zap.Error(err))
		http.Error(w, "server error", http.StatusInternalServerError)
	}
}
