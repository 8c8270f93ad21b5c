package thought

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestPatchUpdates(t *testing.T) {
	u, err := Patch{Epiphany: ptr(true), Title: ptr("  "), Tag: ptr("#Home")}.updates()
	require.NoError(t, err)

	assert.Equal(t, true, u["epiphany"])
	assert.Nil(t, u["title"], "blank title clears it")
	assert.Equal(t, ptr("home"), u["tag"])
	assert.NotContains(t, u, "description")
}

func TestPatchUpdates_Invalid(t *testing.T) {
	_, err := Patch{}.updates()
	assert.ErrorIs(t, err, ErrInvalidPatch)

	_, err = Patch{Description: ptr("   ")}.updates()
	assert.ErrorIs(t, err, ErrInvalidPatch)
}

func TestQueryColumns(t *testing.T) {
	col, ok := FilterColumn("createdBy.uid")
	assert.True(t, ok)
	assert.Equal(t, "created_by_uid", col)

	_, ok = FilterColumn("createdBy.email")
	assert.False(t, ok)

	_, ok = OrderColumn("password")
	assert.False(t, ok)

	assert.Equal(t, "created_at desc, id desc", Query{Desc: true}.order())
	assert.Equal(t, "title asc, id asc", Query{OrderBy: "title"}.order())
}

func TestDoc(t *testing.T) {
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.FixedZone("x", 3600))
	th := Thought{ID: "01H", Description: "d", AuthorUID: "u", AuthorEmail: "a@x.com", CreatedAt: at}

	d := th.Doc()

	assert.Equal(t, "01H", d.ID)
	assert.Equal(t, Author{UID: "u", Email: "a@x.com"}, d.Data.CreatedBy)
	assert.Equal(t, time.UTC, d.Data.CreatedAt.Location())
	assert.Nil(t, d.Data.Title)
}
