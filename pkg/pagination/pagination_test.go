package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaginationParams_Validate(t *testing.T) {
	p := &PaginationParams{Page: 0, PerPage: 500}
	p.Validate()

	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 100, p.PerPage)
	assert.Equal(t, 0, p.Offset())

	p = &PaginationParams{Page: 3, PerPage: 10}
	p.Validate()
	assert.Equal(t, 20, p.Offset())
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(2, 10, 25)

	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.HasNext)
	assert.True(t, p.HasPrev)

	last := NewPagination(3, 10, 25)
	assert.False(t, last.HasNext)

	empty := NewPagination(1, 10, 0)
	assert.Equal(t, 0, empty.TotalPages)
	assert.False(t, empty.HasNext)
}

func TestCursorRoundTrip(t *testing.T) {
	encoded := EncodeCursor(Cursor{Seq: 42})

	params := &CursorParams{Cursor: encoded}
	decoded, err := params.DecodeCursor()
	require.NoError(t, err)
	assert.Equal(t, int64(42), decoded.Seq)

	empty, err := (&CursorParams{}).DecodeCursor()
	assert.NoError(t, err)
	assert.Nil(t, empty)

	_, err = (&CursorParams{Cursor: "%%%"}).DecodeCursor()
	assert.Error(t, err)
}

func TestNewCursorPagination(t *testing.T) {
	items := []int64{5, 4, 3, 2}
	toCursor := func(n int64) Cursor { return Cursor{Seq: n} }

	meta, page := NewCursorPagination(items, 3, toCursor)

	assert.Equal(t, []int64{5, 4, 3}, page)
	assert.True(t, meta.HasNext)
	require.NotNil(t, meta.NextCursor)

	next, err := (&CursorParams{Cursor: *meta.NextCursor}).DecodeCursor()
	require.NoError(t, err)
	assert.Equal(t, int64(3), next.Seq)

	meta, page = NewCursorPagination(items[:2], 3, toCursor)
	assert.Len(t, page, 2)
	assert.False(t, meta.HasNext)
}

func TestCursorParams_Validate(t *testing.T) {
	c := &CursorParams{Limit: 0}
	c.Validate()
	assert.Equal(t, 15, c.Limit)
	assert.Equal(t, CursorDirectionNext, c.Direction)

	c = &CursorParams{Limit: 500, Direction: "sideways"}
	c.Validate()
	assert.Equal(t, 100, c.Limit)
	assert.Equal(t, CursorDirectionNext, c.Direction)

	c = &CursorParams{Direction: CursorDirectionPrev}
	c.Validate()
	assert.Equal(t, CursorDirectionPrev, c.Direction)
}
