package domain

import (
	"context"
	"fmt"
)

// Navigator serves read-only category browsing with a per-user page cursor.
// All reads go against the catalog; the cursor is the only state it keeps.
type Navigator struct {
	catalog  CatalogRepository
	sessions *SessionStore
	pageSize int
}

// NewNavigator creates a Navigator with the given page size.
func NewNavigator(catalog CatalogRepository, sessions *SessionStore, pageSize int) *Navigator {
	return &Navigator{
		catalog:  catalog,
		sessions: sessions,
		pageSize: pageSize,
	}
}

// CategoryPage is one page of catalog entries in a category.
type CategoryPage struct {
	Category   string
	Page       int
	TotalPages int
	TotalCount int
	Entries    []CatalogEntry
}

// Categories lists the available categories with entry counts.
func (n *Navigator) Categories(ctx context.Context) ([]CategoryCount, error) {
	return n.catalog.ListCategories(ctx)
}

// ListCategory returns one page of a category without touching any cursor.
// Pages are 1-based; entries are ordered by code ascending.
func (n *Navigator) ListCategory(ctx context.Context, category string, page int) (*CategoryPage, error) {
	if page < 1 {
		return nil, fmt.Errorf("page must be positive, got %d", page)
	}

	entries, total, err := n.catalog.ListCategory(ctx, category, (page-1)*n.pageSize, n.pageSize)
	if err != nil {
		return nil, fmt.Errorf("list category %q page %d: %w", category, page, err)
	}

	return &CategoryPage{
		Category:   category,
		Page:       page,
		TotalPages: (total + n.pageSize - 1) / n.pageSize,
		TotalCount: total,
		Entries:    entries,
	}, nil
}

// OpenCategory starts browsing a category at page 1 and records the user's
// cursor there.
func (n *Navigator) OpenCategory(ctx context.Context, userID int64, category string) (*CategoryPage, error) {
	page, err := n.ListCategory(ctx, category, 1)
	if err != nil {
		return nil, err
	}
	n.sessions.SetCursor(userID, BrowseCursor{Category: category, Page: 1})
	return page, nil
}

// NextPage advances the user's cursor. Moving past the last page is rejected
// with ErrLastPage and leaves the cursor unchanged.
func (n *Navigator) NextPage(ctx context.Context, userID int64) (*CategoryPage, error) {
	cur, ok := n.sessions.Cursor(userID)
	if !ok {
		return nil, ErrNoCursor
	}

	page, err := n.ListCategory(ctx, cur.Category, cur.Page+1)
	if err != nil {
		return nil, err
	}
	if cur.Page+1 > page.TotalPages {
		return nil, ErrLastPage
	}

	n.sessions.SetCursor(userID, BrowseCursor{Category: cur.Category, Page: cur.Page + 1})
	return page, nil
}

// PrevPage moves the user's cursor back. Moving before page 1 is rejected
// with ErrFirstPage and leaves the cursor unchanged.
func (n *Navigator) PrevPage(ctx context.Context, userID int64) (*CategoryPage, error) {
	cur, ok := n.sessions.Cursor(userID)
	if !ok {
		return nil, ErrNoCursor
	}
	if cur.Page <= 1 {
		return nil, ErrFirstPage
	}

	page, err := n.ListCategory(ctx, cur.Category, cur.Page-1)
	if err != nil {
		return nil, err
	}

	n.sessions.SetCursor(userID, BrowseCursor{Category: cur.Category, Page: cur.Page - 1})
	return page, nil
}
