package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// CurationService drives the per-user workflow that promotes a pending draft
// into a catalog entry: select a draft, collect a title, pick or create a
// category, commit.
//
// Concurrent commits for the same code are not mutually excluded: curation
// is assumed single-writer per code, and when two curators race the last
// catalog write wins.
type CurationService struct {
	drafts    DraftRepository
	catalog   CatalogRepository
	sessions  *SessionStore
	seed      []string
	listLimit int
	logger    *slog.Logger
}

// NewCurationService creates a CurationService. seedCategories are offered
// during category selection before any catalog entries exist; listLimit caps
// draft listings.
func NewCurationService(drafts DraftRepository, catalog CatalogRepository, sessions *SessionStore, seedCategories []string, listLimit int, logger *slog.Logger) *CurationService {
	return &CurationService{
		drafts:    drafts,
		catalog:   catalog,
		sessions:  sessions,
		seed:      seedCategories,
		listLimit: listLimit,
		logger:    logger,
	}
}

// ListDrafts returns pending drafts awaiting classification, newest first,
// flagging codes that already have a catalog entry.
func (c *CurationService) ListDrafts(ctx context.Context) ([]DraftSummary, error) {
	drafts, err := c.drafts.ListDrafts(ctx, c.listLimit)
	if err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}

	summaries := make([]DraftSummary, 0, len(drafts))
	for _, d := range drafts {
		entry, err := c.catalog.GetEntry(ctx, d.Code)
		if err != nil {
			return nil, fmt.Errorf("check catalog for %s: %w", d.Code, err)
		}
		summaries = append(summaries, DraftSummary{
			PendingDraft:     d,
			AlreadyCataloged: entry != nil,
		})
	}
	return summaries, nil
}

// Select begins a curation session for the given draft code, implicitly
// abandoning any session the user already has. Returns the draft so the
// caller can show its original caption. Selecting a code that is already
// cataloged is permitted; the commit will re-classify it.
func (c *CurationService) Select(ctx context.Context, userID int64, code string) (*PendingDraft, error) {
	code = NormalizeCode(code)
	draft, err := c.drafts.GetDraft(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("load draft %s: %w", code, err)
	}
	if draft == nil {
		return nil, ErrDraftMissing
	}

	c.sessions.SetCuration(userID, CurationSession{Code: draft.Code, Step: StepTitle})
	c.logger.Info("curation started", "user_id", userID, "code", draft.Code)
	return draft, nil
}

// SubmitTitle stores the collected title verbatim and advances the session
// to category selection. Returns the category options to offer.
func (c *CurationService) SubmitTitle(ctx context.Context, userID int64, title string) ([]string, error) {
	sess, ok := c.sessions.Curation(userID)
	if !ok || sess.Step != StepTitle {
		return nil, ErrNoSession
	}
	if strings.TrimSpace(title) == "" {
		return nil, ErrEmptyInput
	}

	sess.Title = title
	sess.Step = StepCategory
	c.sessions.SetCuration(userID, sess)

	return c.CategoryOptions(ctx)
}

// CategoryOptions returns the categories offered during curation: the seed
// list followed by categories already present in the catalog, deduplicated.
func (c *CurationService) CategoryOptions(ctx context.Context) ([]string, error) {
	existing, err := c.catalog.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	seen := make(map[string]struct{}, len(c.seed)+len(existing))
	options := make([]string, 0, len(c.seed)+len(existing))
	for _, name := range c.seed {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		options = append(options, name)
	}
	for _, cat := range existing {
		if _, ok := seen[cat.Name]; ok {
			continue
		}
		seen[cat.Name] = struct{}{}
		options = append(options, cat.Name)
	}
	return options, nil
}

// ChooseCategory commits the promotion with an existing category.
func (c *CurationService) ChooseCategory(ctx context.Context, userID int64, category string) (*CatalogEntry, error) {
	sess, ok := c.sessions.Curation(userID)
	if !ok || sess.Step != StepCategory {
		return nil, ErrNoSession
	}
	if strings.TrimSpace(category) == "" {
		return nil, ErrEmptyInput
	}
	return c.commitSession(ctx, userID, sess, category)
}

// RequestNewCategory moves the session to the new-category step; the next
// non-empty free text becomes the category name.
func (c *CurationService) RequestNewCategory(userID int64) error {
	sess, ok := c.sessions.Curation(userID)
	if !ok || sess.Step != StepCategory {
		return ErrNoSession
	}
	sess.Step = StepNewCategory
	c.sessions.SetCuration(userID, sess)
	return nil
}

// SubmitNewCategoryName commits the promotion under a newly named category.
func (c *CurationService) SubmitNewCategoryName(ctx context.Context, userID int64, name string) (*CatalogEntry, error) {
	sess, ok := c.sessions.Curation(userID)
	if !ok || sess.Step != StepNewCategory {
		return nil, ErrNoSession
	}
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyInput
	}
	return c.commitSession(ctx, userID, sess, name)
}

// Abandon discards the user's curation session without mutating any draft.
func (c *CurationService) Abandon(userID int64) {
	c.sessions.ClearCuration(userID)
}

func (c *CurationService) commitSession(ctx context.Context, userID int64, sess CurationSession, category string) (*CatalogEntry, error) {
	entry, err := c.Promote(ctx, sess.Code, sess.Title, category)
	if err != nil {
		if errors.Is(err, ErrDraftMissing) {
			// nothing left to promote; the session is useless now
			c.sessions.ClearCuration(userID)
		}
		// on store failures the session is preserved so the user can retry
		return nil, err
	}

	c.sessions.ClearCuration(userID)
	c.logger.Info("draft promoted",
		"user_id", userID,
		"code", entry.Code,
		"title", entry.Title,
		"category", entry.Category,
	)
	return entry, nil
}

// Promote turns the pending draft for code into a catalog entry. The draft
// is re-read first: if it vanished, ErrDraftMissing is returned and the
// catalog is untouched. The draft is deleted only after the catalog write
// succeeds, so a code is never lost between draft and catalog; a failure
// after the write leaves a state where re-running the same promotion
// converges (the catalog upsert and draft delete are both idempotent).
func (c *CurationService) Promote(ctx context.Context, code, title, category string) (*CatalogEntry, error) {
	draft, err := c.drafts.GetDraft(ctx, NormalizeCode(code))
	if err != nil {
		return nil, fmt.Errorf("load draft %s: %w", code, err)
	}
	if draft == nil {
		return nil, ErrDraftMissing
	}

	entry := &CatalogEntry{
		Code:      draft.Code,
		Title:     title,
		Category:  category,
		ChannelID: draft.ChannelID,
		MessageID: draft.MessageID,
		MediaRef:  draft.MediaRef,
	}
	if err := c.catalog.PutEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("write catalog entry %s: %w", draft.Code, err)
	}
	if err := c.drafts.DeleteDraft(ctx, draft.Code); err != nil {
		return nil, fmt.Errorf("remove promoted draft %s: %w", draft.Code, err)
	}
	return entry, nil
}
