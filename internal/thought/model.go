package thought

import "time"

// Thought is one persisted note. Title and Tag are NULL for notes
// written without them.
type Thought struct {
	ID             string    `gorm:"primaryKey;type:text"`
	Description    string    `gorm:"type:text;not null"`
	Epiphany       bool      `gorm:"not null;default:false"`
	Title          *string   `gorm:"type:text"`
	Tag            *string   `gorm:"type:text;index"`
	AuthorUID      string    `gorm:"column:created_by_uid;type:text;not null;index"`
	AuthorEmail    string    `gorm:"column:created_by_email;type:text;not null;default:''"`
	IdempotencyKey *string   `gorm:"type:text"`
	CreatedAt      time.Time `gorm:"not null;default:now()"`
	UpdatedAt      time.Time `gorm:"not null;default:now()"`
}

type Author struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
}

// Data is the document body clients see.
type Data struct {
	Description string    `json:"description"`
	Epiphany    bool      `json:"epiphany"`
	Title       *string   `json:"title,omitempty"`
	Tag         *string   `json:"tag,omitempty"`
	CreatedBy   Author    `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Doc struct {
	ID   string `json:"id"`
	Data Data   `json:"data"`
}

func (t Thought) Doc() Doc {
	return Doc{
		ID: t.ID,
		Data: Data{
			Description: t.Description,
			Epiphany:    t.Epiphany,
			Title:       t.Title,
			Tag:         t.Tag,
			CreatedBy:   Author{UID: t.AuthorUID, Email: t.AuthorEmail},
			CreatedAt:   t.CreatedAt.UTC(),
		},
	}
}

func Docs(ts []Thought) []Doc {
	out := make([]Doc, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.Doc())
	}
	return out
}
