package domain

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Indexer ingests new channel posts: it persists the raw item, extracts its
// codes, and creates a pending draft per code for later curation.
type Indexer struct {
	content ContentRepository
	catalog CatalogRepository
	drafts  DraftRepository
	notify  Notifier
	logger  *slog.Logger
}

// NewIndexer creates an Indexer. notify may be nil when operator
// notifications are disabled.
func NewIndexer(content ContentRepository, catalog CatalogRepository, drafts DraftRepository, notify Notifier, logger *slog.Logger) *Indexer {
	return &Indexer{
		content: content,
		catalog: catalog,
		drafts:  drafts,
		notify:  notify,
		logger:  logger,
	}
}

// Ingest stores a raw post and creates or overwrites a pending draft for
// every code extracted from its caption. A post without playable media is
// rejected with ErrNotMedia before any persistence. A captionless or
// hashtag-less post is stored with an empty code set and produces no draft.
//
// If a code already has a catalog entry, the draft is still written: the
// newest channel content is treated as a re-classification candidate, and
// the collision is surfaced as an operator warning rather than rejected.
func (ix *Indexer) Ingest(ctx context.Context, post *RawMediaPost) (*IngestResult, error) {
	if post.MediaRef == "" {
		return nil, ErrNotMedia
	}

	item := &ContentItem{
		ChannelID:  post.ChannelID,
		MessageID:  post.MessageID,
		MediaRef:   post.MediaRef,
		Caption:    post.Caption,
		Codes:      ExtractCodes(post.Caption),
		ReceivedAt: time.Now().UTC(),
	}
	if err := ix.content.SaveItem(ctx, item); err != nil {
		return nil, fmt.Errorf("save content item %d/%d: %w", post.ChannelID, post.MessageID, err)
	}

	result := &IngestResult{}
	for _, raw := range item.Codes {
		code := NormalizeCode(raw)

		existing, err := ix.catalog.GetEntry(ctx, code)
		if err != nil {
			return result, fmt.Errorf("check catalog for %s: %w", code, err)
		}
		if existing != nil {
			result.Collisions = append(result.Collisions, code)
			ix.logger.Warn("ingested code already cataloged, overwriting draft",
				"code", code,
				"existing_title", existing.Title,
				"existing_category", existing.Category,
			)
			if ix.notify != nil {
				ix.notify.Notify(ctx, "code collision on ingest",
					fmt.Sprintf("code %s already cataloged as %q (%s); new channel post %d/%d overwrites its pending draft",
						code, existing.Title, existing.Category, post.ChannelID, post.MessageID))
			}
		}

		draft := &PendingDraft{
			Code:      code,
			ChannelID: post.ChannelID,
			MessageID: post.MessageID,
			MediaRef:  post.MediaRef,
			Caption:   post.Caption,
			CreatedAt: item.ReceivedAt,
		}
		if err := ix.drafts.PutDraft(ctx, draft); err != nil {
			return result, fmt.Errorf("save draft %s: %w", code, err)
		}
		result.Codes = append(result.Codes, code)
	}

	ix.logger.Info("post indexed",
		"channel_id", post.ChannelID,
		"message_id", post.MessageID,
		"codes", result.Codes,
	)
	return result, nil
}
