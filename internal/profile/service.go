package profile

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrNotFound = errors.New("not found")

type Service struct {
	DB *gorm.DB
}

// Merge names the fields to write; nil fields keep their stored value.
type Merge struct {
	DisplayName  *string
	Bio          *string
	ProfileImage *string
	DarkMode     *bool
}

func (m Merge) columns() []string {
	var cols []string
	if m.DisplayName != nil {
		cols = append(cols, "display_name")
	}
	if m.Bio != nil {
		cols = append(cols, "bio")
	}
	if m.ProfileImage != nil {
		cols = append(cols, "profile_image")
	}
	if m.DarkMode != nil {
		cols = append(cols, "dark_mode")
	}
	return cols
}

func (s *Service) Get(ctx context.Context, id string) (Profile, error) {
	var p Profile
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Profile{}, ErrNotFound
		}
		return Profile{}, err
	}
	return p, nil
}

// UpsertMerge creates the profile or overwrites only the fields m
// names. Email always comes from the account.
func (s *Service) UpsertMerge(ctx context.Context, id, email string, m Merge) error {
	p := Profile{
		ID:           id,
		Email:        email,
		DisplayName:  m.DisplayName,
		Bio:          m.Bio,
		ProfileImage: m.ProfileImage,
		DarkMode:     m.DarkMode,
	}
	cols := append(m.columns(), "email")
	return s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: append(clause.AssignmentColumns(cols),
			clause.Assignment{Column: clause.Column{Name: "updated_at"}, Value: gorm.Expr("now()")}),
	}).Create(&p).Error
}

// EmailRange returns profiles with lower <= email < upper in byte order.
func (s *Service) EmailRange(ctx context.Context, lower, upper string) ([]Profile, error) {
	var out []Profile
	err := s.DB.WithContext(ctx).
		Where(`email COLLATE "C" >= ? AND email COLLATE "C" < ?`, lower, upper).
		Order(`email COLLATE "C" asc`).
		Find(&out).Error
	return out, err
}
