package thought

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidPatch = errors.New("invalid patch")
	ErrInvalidQuery = errors.New("invalid query")
)

// NotifyChannel is the Postgres channel committed writes are announced on.
const NotifyChannel = "thoughts_changed"

type Service struct {
	DB *gorm.DB
}

type CreateInput struct {
	Description string
	Epiphany    bool
	Title       *string
	Tag         *string
	AuthorUID   string
	AuthorEmail string
	IdemKey     *string
}

// Patch holds the mutable fields; nil means unchanged. An empty Title
// or Tag clears it.
type Patch struct {
	Description *string
	Epiphany    *bool
	Title       *string
	Tag         *string
}

func (p Patch) updates() (map[string]any, error) {
	u := map[string]any{}
	if p.Description != nil {
		d := strings.TrimSpace(*p.Description)
		if d == "" {
			return nil, ErrInvalidPatch
		}
		u["description"] = d
	}
	if p.Epiphany != nil {
		u["epiphany"] = *p.Epiphany
	}
	if p.Title != nil {
		u["title"] = optional(p.Title, nil)
	}
	if p.Tag != nil {
		u["tag"] = optional(p.Tag, NormalizeTag)
	}
	if len(u) == 0 {
		return nil, ErrInvalidPatch
	}
	return u, nil
}

// Create stores a thought. A repeated idempotency key from the same
// author returns the thought the first request created.
func (s *Service) Create(ctx context.Context, in CreateInput) (Thought, error) {
	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		return Thought{}, ErrInvalidPatch
	}

	var out Thought
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if in.IdemKey != nil {
			err := tx.Where("created_by_uid = ? AND idempotency_key = ?", in.AuthorUID, *in.IdemKey).First(&out).Error
			if err == nil {
				return nil
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}

		out = Thought{
			ID:             ulid.Make().String(),
			Description:    desc,
			Epiphany:       in.Epiphany,
			Title:          optional(in.Title, nil),
			Tag:            optional(in.Tag, NormalizeTag),
			AuthorUID:      in.AuthorUID,
			AuthorEmail:    in.AuthorEmail,
			IdempotencyKey: in.IdemKey,
		}
		if err := tx.Clauses(clause.Returning{}).Create(&out).Error; err != nil {
			return err
		}
		return notify(tx, out.ID)
	})
	return out, err
}

func (s *Service) Update(ctx context.Context, id, uid string, p Patch) error {
	u, err := p.updates()
	if err != nil {
		return err
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockOwned(tx, id, uid); err != nil {
			return err
		}
		u["updated_at"] = gorm.Expr("now()")
		if err := tx.Model(&Thought{}).Where("id = ?", id).Updates(u).Error; err != nil {
			return err
		}
		return notify(tx, id)
	})
}

func (s *Service) Delete(ctx context.Context, id, uid string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockOwned(tx, id, uid); err != nil {
			return err
		}
		if err := tx.Where("id = ?", id).Delete(&Thought{}).Error; err != nil {
			return err
		}
		return notify(tx, id)
	})
}

func (s *Service) Get(ctx context.Context, id string) (Thought, error) {
	var t Thought
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Thought{}, ErrNotFound
		}
		return Thought{}, err
	}
	return t, nil
}

func (s *Service) List(ctx context.Context, q Query) ([]Thought, error) {
	if _, ok := OrderColumn(q.OrderBy); !ok {
		return nil, fmt.Errorf("%w: order by %q", ErrInvalidQuery, q.OrderBy)
	}
	db := s.DB.WithContext(ctx).Model(&Thought{})
	if q.Where != "" {
		col, ok := FilterColumn(q.Where)
		if !ok {
			return nil, fmt.Errorf("%w: filter on %q", ErrInvalidQuery, q.Where)
		}
		var v any = q.Equals
		if col == "epiphany" {
			v = q.Equals == "true"
		}
		db = db.Where(col+" = ?", v)
	}

	var out []Thought
	if err := db.Order(q.order()).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func lockOwned(tx *gorm.DB, id, uid string) error {
	var t Thought
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id", "created_by_uid").
		Where("id = ?", id).
		First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if t.AuthorUID != uid {
		return ErrForbidden
	}
	return nil
}

// notify is delivered by Postgres only when tx commits.
func notify(tx *gorm.DB, id string) error {
	return tx.Exec("select pg_notify(?, ?)", NotifyChannel, id).Error
}
