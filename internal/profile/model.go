package profile

import "time"

// Profile is keyed by the account uid.
type Profile struct {
	ID           string  `gorm:"primaryKey;type:text"`
	Email        string  `gorm:"type:text;not null;default:''"`
	DisplayName  *string `gorm:"type:text"`
	Bio          *string `gorm:"type:text"`
	ProfileImage *string `gorm:"type:text"`
	DarkMode     *bool
	UpdatedAt    time.Time `gorm:"not null;default:now()"`
}

type Data struct {
	Email        string    `json:"email,omitempty"`
	DisplayName  *string   `json:"displayName,omitempty"`
	Bio          *string   `json:"bio,omitempty"`
	ProfileImage *string   `json:"profileImage,omitempty"`
	DarkMode     *bool     `json:"darkMode,omitempty"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type Doc struct {
	ID   string `json:"id"`
	Data Data   `json:"data"`
}

func (p Profile) Doc() Doc {
	return Doc{
		ID: p.ID,
		Data: Data{
			Email:        p.Email,
			DisplayName:  p.DisplayName,
			Bio:          p.Bio,
			ProfileImage: p.ProfileImage,
			DarkMode:     p.DarkMode,
			UpdatedAt:    p.UpdatedAt.UTC(),
		},
	}
}
