package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"mythoughts/internal/auth"
	"mythoughts/internal/profile"
	"mythoughts/internal/thought"
)

type Accounts interface {
	Register(ctx context.Context, email, password string) (auth.Principal, string, error)
	Login(ctx context.Context, email, password string) (auth.Principal, string, error)
}

type Thoughts interface {
	Create(ctx context.Context, in thought.CreateInput) (thought.Thought, error)
	Update(ctx context.Context, id, uid string, p thought.Patch) error
	Delete(ctx context.Context, id, uid string) error
	Get(ctx context.Context, id string) (thought.Thought, error)
	List(ctx context.Context, q thought.Query) ([]thought.Thought, error)
}

type Profiles interface {
	Get(ctx context.Context, id string) (profile.Profile, error)
	UpsertMerge(ctx context.Context, id, email string, m profile.Merge) error
	EmailRange(ctx context.Context, lower, upper string) ([]profile.Profile, error)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeStrict(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
