// Package pagination computes the page buttons shown under long lists.
package pagination

import (
	"errors"
	"fmt"
)

// DefaultWindowSize is the number of page buttons shown at once.
const DefaultWindowSize = 5

// MinPage is the first page number.
const MinPage = 1

var ErrInvalidWindowSize = errors.New("window size must be an odd number >= 3")

// Kind tells how a button is rendered.
type Kind int

const (
	KindPage    Kind = iota // plain page number
	KindCurrent             // the page being viewed
	KindFirst               // jump to the first page
	KindLast                // jump to the last page
)

// Button is one slot of the window. Page is the page the button leads to.
type Button struct {
	Kind Kind
	Page int
}

// Windower produces a fixed-size window of page buttons centred on the
// current page.
type Windower struct {
	size int
}

func NewWindower(size int) (*Windower, error) {
	if size < 3 || size%2 == 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWindowSize, size)
	}
	return &Windower{size: size}, nil
}

func (w *Windower) Size() int {
	return w.size
}

// Window returns the buttons for current out of maxPage pages. current is
// clamped into range.
func (w *Windower) Window(current, maxPage int) []Button {
	if maxPage < MinPage {
		maxPage = MinPage
	}
	if current < MinPage {
		current = MinPage
	}
	if current > maxPage {
		current = maxPage
	}

	from, to := w.bounds(current, maxPage)

	buttons := make([]Button, 0, to-from+1)
	for page := from; page <= to; page++ {
		slot := page - from
		switch {
		case slot == 0 && page != MinPage:
			buttons = append(buttons, Button{Kind: KindFirst, Page: MinPage})
		case slot == w.size-1 && page != maxPage:
			buttons = append(buttons, Button{Kind: KindLast, Page: maxPage})
		case page == current:
			buttons = append(buttons, Button{Kind: KindCurrent, Page: page})
		default:
			buttons = append(buttons, Button{Kind: KindPage, Page: page})
		}
	}
	return buttons
}

func (w *Windower) bounds(current, maxPage int) (int, int) {
	if maxPage < w.size {
		return MinPage, maxPage
	}
	margin := (w.size - 1) / 2
	from, to := current-margin, current+margin
	if from < MinPage {
		from, to = MinPage, MinPage+w.size-1
	}
	if to > maxPage {
		from, to = maxPage-w.size+1, maxPage
	}
	return from, to
}

// Paginate returns the number of pages needed for total items and the row
// offset of page.
func Paginate(total, pageSize, page int) (maxPage, offset int) {
	if pageSize <= 0 {
		pageSize = 1
	}
	maxPage = (total + pageSize - 1) / pageSize
	if maxPage < MinPage {
		maxPage = MinPage
	}
	if page < MinPage {
		page = MinPage
	}
	if page > maxPage {
		page = maxPage
	}
	return maxPage, (page - MinPage) * pageSize
}
