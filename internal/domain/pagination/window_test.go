package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func page(p int) Button    { return Button{Kind: KindPage, Page: p} }
func current(p int) Button { return Button{Kind: KindCurrent, Page: p} }
func first() Button        { return Button{Kind: KindFirst, Page: MinPage} }
func last(p int) Button    { return Button{Kind: KindLast, Page: p} }

func TestNewWindower(t *testing.T) {
	for _, size := range []int{-1, 0, 1, 2, 4, 6} {
		_, err := NewWindower(size)
		assert.ErrorIs(t, err, ErrInvalidWindowSize, "size %d", size)
	}
	w, err := NewWindower(7)
	require.NoError(t, err)
	assert.Equal(t, 7, w.Size())
}

func TestWindow(t *testing.T) {
	w, err := NewWindower(DefaultWindowSize)
	require.NoError(t, err)

	tests := []struct {
		name    string
		current int
		maxPage int
		want    []Button
	}{
		{"first page", 1, 20, []Button{current(1), page(2), page(3), page(4), last(20)}},
		{"last page", 20, 20, []Button{first(), page(17), page(18), page(19), current(20)}},
		{"middle", 10, 20, []Button{first(), page(9), current(10), page(11), last(20)}},
		{"near start", 3, 20, []Button{page(1), page(2), current(3), page(4), last(20)}},
		{"near end", 19, 20, []Button{first(), page(17), page(18), current(19), page(20)}},
		{"exactly window size", 4, 5, []Button{page(1), page(2), page(3), current(4), page(5)}},
		{"fewer pages than window", 2, 3, []Button{page(1), current(2), page(3)}},
		{"single page", 1, 1, []Button{current(1)}},
		{"no pages", 1, 0, []Button{current(1)}},
		{"current beyond max is clamped", 40, 20, []Button{first(), page(17), page(18), page(19), current(20)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, w.Window(tt.current, tt.maxPage))
		})
	}
}

func TestWindow_Properties(t *testing.T) {
	w, err := NewWindower(DefaultWindowSize)
	require.NoError(t, err)

	for maxPage := DefaultWindowSize; maxPage <= 30; maxPage++ {
		for cur := 1; cur <= maxPage; cur++ {
			got := w.Window(cur, maxPage)
			require.Len(t, got, DefaultWindowSize)
			assert.Equal(t, got, w.Window(cur, maxPage), "stable output")

			seen := map[int]bool{}
			currentCount := 0
			for _, b := range got {
				assert.False(t, seen[b.Page], "duplicate page %d (cur=%d max=%d)", b.Page, cur, maxPage)
				seen[b.Page] = true
				if b.Kind == KindCurrent {
					currentCount++
					assert.Equal(t, cur, b.Page)
				}
			}
			assert.Equal(t, 1, currentCount, "cur=%d max=%d", cur, maxPage)
			assert.True(t, seen[MinPage], "first page reachable")
			assert.True(t, seen[maxPage], "last page reachable")
		}
	}
}

func TestPaginate(t *testing.T) {
	maxPage, offset := Paginate(23, 5, 3)
	assert.Equal(t, 5, maxPage)
	assert.Equal(t, 10, offset)

	maxPage, offset = Paginate(0, 5, 1)
	assert.Equal(t, 1, maxPage)
	assert.Equal(t, 0, offset)

	maxPage, offset = Paginate(10, 5, 9)
	assert.Equal(t, 2, maxPage)
	assert.Equal(t, 5, offset)
}
