package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"kinokod/internal/domain"
)

// Repository implements the domain repository ports (content, catalog,
// drafts, cursors) using SQLite.
type Repository struct {
	db *sql.DB
}

// Open initializes or connects to the database at path, applies the
// connection pragmas, and verifies the schema. The caller should call Close
// when the repository is no longer needed.
func Open(path string) (*Repository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	repo := &Repository{db: db}
	if err := repo.initSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return repo, nil
}

// Close closes the underlying database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// SaveItem upserts a content item by (channel_id, message_id). The stored
// code list is re-derived from the incoming item, so a re-save replaces any
// prior codes.
func (r *Repository) SaveItem(ctx context.Context, item *domain.ContentItem) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO content_items (channel_id, message_id, media_ref, caption, codes, received_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (channel_id, message_id) DO UPDATE SET
			media_ref = excluded.media_ref,
			caption = excluded.caption,
			codes = excluded.codes,
			received_at = excluded.received_at`,
		item.ChannelID,
		item.MessageID,
		item.MediaRef,
		item.Caption,
		strings.Join(item.Codes, " "),
		item.ReceivedAt.UTC().Format(time.RFC3339Nano),
	)
	return err
}

// GetItem retrieves a content item by identity.
func (r *Repository) GetItem(ctx context.Context, channelID, messageID int64) (*domain.ContentItem, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT channel_id, message_id, media_ref, caption, codes, received_at
		FROM content_items
		WHERE channel_id = ? AND message_id = ?`,
		channelID, messageID,
	)

	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return item, err
}

// SearchByCode scans content items whose code list contains markerCode,
// newest first. SQLite's default LIKE is case-insensitive for ASCII, which
// gives the case-insensitive code comparison the callers expect.
func (r *Repository) SearchByCode(ctx context.Context, markerCode string) ([]domain.ContentItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT channel_id, message_id, media_ref, caption, codes, received_at
		FROM content_items
		WHERE codes LIKE ?
		ORDER BY received_at DESC, message_id DESC`,
		"%"+markerCode+"%",
	)
	if err != nil {
		return nil, fmt.Errorf("query items by code %s: %w", markerCode, err)
	}
	defer rows.Close()

	var items []domain.ContentItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return items, nil
}

// PutEntry upserts a catalog entry by code (last write wins).
func (r *Repository) PutEntry(ctx context.Context, entry *domain.CatalogEntry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO catalog_entries (code, title, category, channel_id, message_id, media_ref)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (code) DO UPDATE SET
			title = excluded.title,
			category = excluded.category,
			channel_id = excluded.channel_id,
			message_id = excluded.message_id,
			media_ref = excluded.media_ref`,
		entry.Code,
		entry.Title,
		entry.Category,
		entry.ChannelID,
		entry.MessageID,
		entry.MediaRef,
	)
	return err
}

// GetEntry retrieves a catalog entry by code. The code column collates
// NOCASE, so lookup is case-insensitive.
func (r *Repository) GetEntry(ctx context.Context, code string) (*domain.CatalogEntry, error) {
	var e domain.CatalogEntry
	err := r.db.QueryRowContext(ctx, `
		SELECT code, title, category, channel_id, message_id, media_ref
		FROM catalog_entries
		WHERE code = ?`,
		code,
	).Scan(&e.Code, &e.Title, &e.Category, &e.ChannelID, &e.MessageID, &e.MediaRef)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// ListCategory returns one offset/limit window of a category ordered by code
// ascending, along with the category's total entry count.
func (r *Repository) ListCategory(ctx context.Context, category string, offset, limit int) ([]domain.CatalogEntry, int, error) {
	var total int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM catalog_entries WHERE category = ?`, category,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count category %q: %w", category, err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT code, title, category, channel_id, message_id, media_ref
		FROM catalog_entries
		WHERE category = ?
		ORDER BY code ASC
		LIMIT ? OFFSET ?`,
		category, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("query category %q: %w", category, err)
	}
	defer rows.Close()

	var entries []domain.CatalogEntry
	for rows.Next() {
		var e domain.CatalogEntry
		if err := rows.Scan(&e.Code, &e.Title, &e.Category, &e.ChannelID, &e.MessageID, &e.MediaRef); err != nil {
			return nil, 0, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate entries: %w", err)
	}
	return entries, total, nil
}

// ListCategories returns the distinct categories with entry counts.
func (r *Repository) ListCategories(ctx context.Context) ([]domain.CategoryCount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT category, COUNT(*)
		FROM catalog_entries
		GROUP BY category
		ORDER BY category ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var categories []domain.CategoryCount
	for rows.Next() {
		var c domain.CategoryCount
		if err := rows.Scan(&c.Name, &c.Count); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return categories, nil
}

// PutDraft upserts a pending draft by code.
func (r *Repository) PutDraft(ctx context.Context, draft *domain.PendingDraft) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pending_drafts (code, channel_id, message_id, media_ref, caption, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (code) DO UPDATE SET
			channel_id = excluded.channel_id,
			message_id = excluded.message_id,
			media_ref = excluded.media_ref,
			caption = excluded.caption,
			created_at = excluded.created_at`,
		draft.Code,
		draft.ChannelID,
		draft.MessageID,
		draft.MediaRef,
		draft.Caption,
		draft.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	return err
}

// GetDraft retrieves a pending draft by code.
func (r *Repository) GetDraft(ctx context.Context, code string) (*domain.PendingDraft, error) {
	var (
		d         domain.PendingDraft
		createdAt string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT code, channel_id, message_id, media_ref, caption, created_at
		FROM pending_drafts
		WHERE code = ?`,
		code,
	).Scan(&d.Code, &d.ChannelID, &d.MessageID, &d.MediaRef, &d.Caption, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	d.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse draft created_at: %w", err)
	}
	return &d, nil
}

// DeleteDraft removes a pending draft by code.
func (r *Repository) DeleteDraft(ctx context.Context, code string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM pending_drafts WHERE code = ?`, code)
	return err
}

// ListDrafts returns up to limit pending drafts, newest first.
func (r *Repository) ListDrafts(ctx context.Context, limit int) ([]domain.PendingDraft, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT code, channel_id, message_id, media_ref, caption, created_at
		FROM pending_drafts
		ORDER BY created_at DESC
		LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query drafts: %w", err)
	}
	defer rows.Close()

	var drafts []domain.PendingDraft
	for rows.Next() {
		var (
			d         domain.PendingDraft
			createdAt string
		)
		if err := rows.Scan(&d.Code, &d.ChannelID, &d.MessageID, &d.MediaRef, &d.Caption, &createdAt); err != nil {
			return nil, fmt.Errorf("scan draft: %w", err)
		}
		d.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse draft created_at: %w", err)
		}
		drafts = append(drafts, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate drafts: %w", err)
	}
	return drafts, nil
}

// GetCursor retrieves the saved feed cursor for a service.
func (r *Repository) GetCursor(ctx context.Context, service string) (int64, error) {
	var cursor int64
	err := r.db.QueryRowContext(ctx,
		`SELECT cursor_value FROM feed_cursors WHERE service = ?`, service,
	).Scan(&cursor)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return cursor, err
}

// UpdateCursor upserts the feed cursor for a service.
func (r *Repository) UpdateCursor(ctx context.Context, service string, cursor int64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO feed_cursors (service, cursor_value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (service) DO UPDATE SET cursor_value = excluded.cursor_value, updated_at = excluded.updated_at`,
		service, cursor, time.Now().UTC().Format(time.RFC3339Nano),
	)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*domain.ContentItem, error) {
	var (
		item       domain.ContentItem
		codes      string
		receivedAt string
	)
	if err := row.Scan(&item.ChannelID, &item.MessageID, &item.MediaRef, &item.Caption, &codes, &receivedAt); err != nil {
		return nil, err
	}

	item.Codes = strings.Fields(codes)

	parsed, err := time.Parse(time.RFC3339Nano, receivedAt)
	if err != nil {
		return nil, fmt.Errorf("parse received_at: %w", err)
	}
	item.ReceivedAt = parsed
	return &item, nil
}
