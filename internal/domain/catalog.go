package domain

import "time"

// RawMediaPost is an inbound channel post delivered by the feed. Delivery is
// at-least-once, so ingesting the same (ChannelID, MessageID) twice must be
// safe.
type RawMediaPost struct {
	// ChannelID identifies the source channel.
	ChannelID int64

	// MessageID identifies the post within the channel.
	MessageID int64

	// MediaRef is an opaque reference to the post's playable media. Empty
	// when the post carries none.
	MediaRef string

	// Caption is the post's caption text, possibly empty.
	Caption string
}

// ContentItem is a raw ingested post, searchable by its embedded codes
// regardless of classification state.
type ContentItem struct {
	ChannelID int64
	MessageID int64
	MediaRef  string
	Caption   string

	// Codes are the marker-prefixed hashtag codes extracted from the
	// caption, in order of appearance. Re-derived on every save.
	Codes []string

	ReceivedAt time.Time
}

// HasCode reports whether the item's code set contains the given
// marker-prefixed code, compared case-insensitively.
func (i *ContentItem) HasCode(markerCode string) bool {
	for _, c := range i.Codes {
		if equalFoldASCII(c, markerCode) {
			return true
		}
	}
	return false
}

// CatalogEntry is a curated, user-visible entry. Code is the natural key;
// writing a second entry with an existing code replaces it.
type CatalogEntry struct {
	Code      string
	Title     string
	Category  string
	ChannelID int64
	MessageID int64
	MediaRef  string
}

// PendingDraft is an ingested code awaiting classification. At most one
// draft exists per code; re-ingesting the code overwrites it. Drafts have no
// TTL and persist until promoted.
type PendingDraft struct {
	Code      string
	ChannelID int64
	MessageID int64
	MediaRef  string
	Caption   string
	CreatedAt time.Time
}

// IngestResult reports what an ingest stored.
type IngestResult struct {
	// Codes are the marker-stripped codes indexed as pending drafts.
	Codes []string

	// Collisions are the subset of Codes that already had a catalog entry
	// when the draft was written.
	Collisions []string
}

// ResultKind tells a caller whether resolved content is a curated catalog
// entry or a raw indexed item, so it knows whether to present curated
// metadata or forward the original post as-is.
type ResultKind string

const (
	KindCatalog ResultKind = "catalog"
	KindRaw     ResultKind = "raw"
)

// ResolvedContent is the outcome of a successful code lookup. Exactly one of
// Entry or Item is set, matching Kind.
type ResolvedContent struct {
	Kind  ResultKind
	Entry *CatalogEntry
	Item  *ContentItem
}

// CategoryCount is one row of a category listing.
type CategoryCount struct {
	Name  string
	Count int
}

// DraftSummary is one row of a curation listing. AlreadyCataloged marks
// codes that collide with an existing catalog entry; selection is still
// permitted (re-classification is allowed).
type DraftSummary struct {
	PendingDraft
	AlreadyCataloged bool
}
