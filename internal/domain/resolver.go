package domain

import (
	"context"
	"fmt"
	"log/slog"
)

// Resolver answers code lookups against the catalog and the raw index.
//
// Lookup order, stopping at the first hit:
//  1. exact catalog match on the normalized code, re-validated by a second
//     read before returning;
//  2. exact raw-index match, newest item first, identity re-validated;
//  3. for short numeric codes only, the same two steps repeated with each
//     configured single-letter prefix in order.
type Resolver struct {
	catalog  CatalogRepository
	content  ContentRepository
	prefixes []string
	logger   *slog.Logger
}

// NewResolver creates a Resolver. prefixes is the ordered prefix-guess list
// tried for short numeric codes.
func NewResolver(catalog CatalogRepository, content ContentRepository, prefixes []string, logger *slog.Logger) *Resolver {
	return &Resolver{
		catalog:  catalog,
		content:  content,
		prefixes: prefixes,
		logger:   logger,
	}
}

// Resolve looks up a code and returns the matching content, or ErrNotFound
// when every strategy comes up empty. Given identical store contents the
// result is deterministic.
func (r *Resolver) Resolve(ctx context.Context, code string) (*ResolvedContent, error) {
	code = NormalizeCode(code)
	if code == "" {
		return nil, ErrNotFound
	}

	res, err := r.lookup(ctx, code)
	if err != nil {
		return nil, err
	}
	if res != nil {
		return res, nil
	}

	if isShortNumeric(code) {
		for _, prefix := range r.prefixes {
			guess := prefix + code
			res, err := r.lookup(ctx, guess)
			if err != nil {
				return nil, err
			}
			if res != nil {
				r.logger.Info("resolved via prefix fallback", "code", code, "guess", guess)
				return res, nil
			}
		}
	}

	return nil, ErrNotFound
}

// lookup runs the catalog and raw-index strategies for one candidate code.
// It returns (nil, nil) on a clean miss.
func (r *Resolver) lookup(ctx context.Context, code string) (*ResolvedContent, error) {
	entry, err := r.catalog.GetEntry(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("catalog lookup %s: %w", code, err)
	}
	if entry != nil {
		if r.validateEntry(ctx, entry) {
			return &ResolvedContent{Kind: KindCatalog, Entry: entry}, nil
		}
		// validation mismatch counts as not-found for this call
	}

	items, err := r.content.SearchByCode(ctx, "#"+code)
	if err != nil {
		return nil, fmt.Errorf("raw index lookup %s: %w", code, err)
	}
	for i := range items {
		item := &items[i]
		if !item.HasCode("#" + code) {
			// substring scan can over-match (#A1 inside #A12)
			continue
		}
		if r.validateItem(ctx, item) {
			return &ResolvedContent{Kind: KindRaw, Item: item}, nil
		}
	}

	return nil, nil
}

// validateEntry re-reads the entry and structurally compares it against the
// first read. A mismatch means curation mutated the entry between retrieval
// and response; the entry is treated as missing for this call, log only.
func (r *Resolver) validateEntry(ctx context.Context, entry *CatalogEntry) bool {
	current, err := r.catalog.GetEntry(ctx, entry.Code)
	if err != nil {
		r.logger.Error("catalog re-read failed", "code", entry.Code, "error", err)
		return false
	}
	if current == nil {
		r.logger.Warn("catalog entry vanished between reads", "code", entry.Code)
		return false
	}
	if current.Title != entry.Title || current.Category != entry.Category || !equalFoldASCII(current.Code, entry.Code) {
		r.logger.Warn("catalog entry changed between reads",
			"code", entry.Code,
			"error", ErrValidationMismatch,
		)
		return false
	}
	return true
}

// validateItem re-reads the raw item by identity and confirms it still
// exists with the same source channel and message.
func (r *Resolver) validateItem(ctx context.Context, item *ContentItem) bool {
	current, err := r.content.GetItem(ctx, item.ChannelID, item.MessageID)
	if err != nil {
		r.logger.Error("raw item re-read failed",
			"channel_id", item.ChannelID,
			"message_id", item.MessageID,
			"error", err,
		)
		return false
	}
	if current == nil {
		r.logger.Warn("raw item vanished between reads",
			"channel_id", item.ChannelID,
			"message_id", item.MessageID,
		)
		return false
	}
	return current.ChannelID == item.ChannelID && current.MessageID == item.MessageID
}
