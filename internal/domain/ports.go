package domain

import "context"

// ContentRepository defines persistence operations for raw ingested items.
type ContentRepository interface {
	// SaveItem upserts an item keyed by (ChannelID, MessageID). A second
	// save with the same identity overwrites the prior row, including its
	// code set.
	SaveItem(ctx context.Context, item *ContentItem) error

	// GetItem retrieves an item by identity. Returns (nil, nil) when absent.
	GetItem(ctx context.Context, channelID, messageID int64) (*ContentItem, error)

	// SearchByCode returns items whose stored code set contains the
	// marker-prefixed code, newest first. Matching is case-insensitive.
	SearchByCode(ctx context.Context, markerCode string) ([]ContentItem, error)
}

// CatalogRepository defines persistence operations for curated entries.
type CatalogRepository interface {
	// PutEntry upserts an entry keyed by code (last write wins).
	PutEntry(ctx context.Context, entry *CatalogEntry) error

	// GetEntry retrieves an entry by code, compared case-insensitively.
	// Returns (nil, nil) when absent.
	GetEntry(ctx context.Context, code string) (*CatalogEntry, error)

	// ListCategory returns entries in a category ordered by code ascending,
	// bounded by offset/limit, along with the category's total entry count.
	ListCategory(ctx context.Context, category string, offset, limit int) ([]CatalogEntry, int, error)

	// ListCategories returns the distinct categories with entry counts,
	// ordered by name ascending.
	ListCategories(ctx context.Context) ([]CategoryCount, error)
}

// DraftRepository defines persistence operations for pending drafts.
type DraftRepository interface {
	// PutDraft upserts a draft keyed by code.
	PutDraft(ctx context.Context, draft *PendingDraft) error

	// GetDraft retrieves a draft by code, compared case-insensitively.
	// Returns (nil, nil) when absent.
	GetDraft(ctx context.Context, code string) (*PendingDraft, error)

	// DeleteDraft removes a draft by code. Deleting an absent draft is not
	// an error.
	DeleteDraft(ctx context.Context, code string) error

	// ListDrafts returns up to limit drafts, newest first.
	ListDrafts(ctx context.Context, limit int) ([]PendingDraft, error)
}

// CursorRepository defines persistence operations for feed cursors.
type CursorRepository interface {
	// GetCursor retrieves the last-processed feed cursor for the given
	// service name. Returns 0 if no cursor has been saved.
	GetCursor(ctx context.Context, service string) (int64, error)

	// UpdateCursor persists the feed cursor so ingestion can resume after
	// a restart.
	UpdateCursor(ctx context.Context, service string, cursor int64) error
}

// Notifier delivers operator-visible warnings. Implementations must not
// fail the operation that raised the warning; delivery is best effort.
type Notifier interface {
	Notify(ctx context.Context, subject, body string)
}
