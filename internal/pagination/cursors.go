// Package pagination tracks the opaque page cursors handed out by a
// forward-only, cursor-paginated API so that previously visited pages can be
// revisited without walking the sequence again.
package pagination

// slot is one entry of the cursor sequence. A written slot with a nil token
// means the API reported that no page follows.
type slot struct {
	token *string
}

// Cursors holds the cursor sequence for a single filter set.
// cursors[i] is the token that requests page i; cursors[0] is always nil.
// Cursors is not safe for concurrent use.
type Cursors struct {
	cursors []slot
	page    int
}

// New returns a Cursors positioned on the first page.
func New() *Cursors {
	c := &Cursors{}
	c.Reset()

	return c
}

// Reset discards every recorded cursor and returns to the first page.
func (c *Cursors) Reset() {
	c.cursors = []slot{{token: nil}}
	c.page = 0
}

// CurrentPage returns the zero-based index of the current page.
func (c *Cursors) CurrentPage() int {
	return c.page
}

// CursorForCurrentPage returns the token that requests the current page, or nil for the first page.
func (c *Cursors) CursorForCurrentPage() *string {
	return copyToken(c.cursors[c.page].token)
}

// RecordResponse stores the cursor returned by the response for the given page.
// It only applies to the current page and only once per slot; repeated or late
// responses are ignored. An empty next cursor is recorded as "no further pages".
// It reports whether the cursor was recorded.
func (c *Cursors) RecordResponse(page int, next *string) bool {
	if page != c.page || len(c.cursors) > page+1 {
		return false
	}

	if next != nil && *next == "" {
		next = nil
	}

	c.cursors = append(c.cursors, slot{token: copyToken(next)})

	return true
}

// HasNextPage reports whether the response for the current page carried a cursor.
func (c *Cursors) HasNextPage() bool {
	return len(c.cursors) > c.page+1 && c.cursors[c.page+1].token != nil
}

// HasPreviousPage reports whether there is a page before the current one.
func (c *Cursors) HasPreviousPage() bool {
	return c.page > 0
}

// Advance moves to the next page if one is known to exist. It reports whether the page changed.
func (c *Cursors) Advance() bool {
	if !c.HasNextPage() {
		return false
	}

	c.page++

	return true
}

// Retreat moves to the previous page, stopping at the first page. It reports whether the page changed.
func (c *Cursors) Retreat() bool {
	if c.page == 0 {
		return false
	}

	c.page--

	return true
}

// Known returns the number of slots recorded so far, including the first page's nil cursor.
func (c *Cursors) Known() int {
	return len(c.cursors)
}

func copyToken(token *string) *string {
	if token == nil {
		return nil
	}

	copied := *token

	return &copied
}
