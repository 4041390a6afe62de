package domain_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"kinokod/internal/domain"
	"kinokod/internal/testsupport"
)

type recordingNotifier struct {
	mu       sync.Mutex
	subjects []string
	bodies   []string
}

func (n *recordingNotifier) Notify(_ context.Context, subject, body string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.subjects = append(n.subjects, subject)
	n.bodies = append(n.bodies, body)
}

func TestIngestRejectsPostsWithoutMedia(t *testing.T) {
	repo := testsupport.MustOpenRepository(t)
	ix := domain.NewIndexer(repo, repo, repo, nil, testsupport.DiscardLogger())
	ctx := context.Background()

	_, err := ix.Ingest(ctx, &domain.RawMediaPost{ChannelID: 1, MessageID: 10, Caption: "#A12"})
	if !errors.Is(err, domain.ErrNotMedia) {
		t.Fatalf("Ingest without media: err = %v, want ErrNotMedia", err)
	}

	// nothing was persisted
	if item, _ := repo.GetItem(ctx, 1, 10); item != nil {
		t.Error("item persisted despite missing media")
	}
	if draft, _ := repo.GetDraft(ctx, "A12"); draft != nil {
		t.Error("draft persisted despite missing media")
	}
}

func TestIngestWithoutHashtagsStoresItemOnly(t *testing.T) {
	repo := testsupport.MustOpenRepository(t)
	ix := domain.NewIndexer(repo, repo, repo, nil, testsupport.DiscardLogger())
	ctx := context.Background()

	res, err := ix.Ingest(ctx, &domain.RawMediaPost{ChannelID: 1, MessageID: 10, MediaRef: "file-1", Caption: "no codes here"})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if len(res.Codes) != 0 {
		t.Errorf("codes = %v, want none", res.Codes)
	}

	item, err := repo.GetItem(ctx, 1, 10)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if item == nil {
		t.Fatal("item not stored")
	}
	if len(item.Codes) != 0 {
		t.Errorf("stored codes = %v, want none", item.Codes)
	}

	drafts, err := repo.ListDrafts(ctx, 10)
	if err != nil {
		t.Fatalf("ListDrafts: %v", err)
	}
	if len(drafts) != 0 {
		t.Errorf("drafts = %d, want 0", len(drafts))
	}
}

func TestIngestCreatesDraftsPerCode(t *testing.T) {
	repo := testsupport.MustOpenRepository(t)
	ix := domain.NewIndexer(repo, repo, repo, nil, testsupport.DiscardLogger())
	ctx := context.Background()

	res, err := ix.Ingest(ctx, &domain.RawMediaPost{ChannelID: 5, MessageID: 42, MediaRef: "file-42", Caption: "Big Movie #A12 #M1"})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	want := []string{"A12", "M1"}
	if len(res.Codes) != len(want) || res.Codes[0] != "A12" || res.Codes[1] != "M1" {
		t.Errorf("codes = %v, want %v", res.Codes, want)
	}

	for _, code := range want {
		draft, err := repo.GetDraft(ctx, code)
		if err != nil {
			t.Fatalf("GetDraft(%s): %v", code, err)
		}
		if draft == nil {
			t.Fatalf("draft %s not created", code)
		}
		if draft.ChannelID != 5 || draft.MessageID != 42 || draft.MediaRef != "file-42" {
			t.Errorf("draft %s = %+v, wrong source fields", code, draft)
		}
	}
}

func TestIngestOverwritesByIdentity(t *testing.T) {
	repo := testsupport.MustOpenRepository(t)
	ix := domain.NewIndexer(repo, repo, repo, nil, testsupport.DiscardLogger())
	ctx := context.Background()

	if _, err := ix.Ingest(ctx, &domain.RawMediaPost{ChannelID: 1, MessageID: 7, MediaRef: "v1", Caption: "#OLD1"}); err != nil {
		t.Fatalf("first Ingest: %v", err)
	}
	if _, err := ix.Ingest(ctx, &domain.RawMediaPost{ChannelID: 1, MessageID: 7, MediaRef: "v2", Caption: "#NEW1"}); err != nil {
		t.Fatalf("second Ingest: %v", err)
	}

	item, err := repo.GetItem(ctx, 1, 7)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if item.MediaRef != "v2" || item.Caption != "#NEW1" {
		t.Errorf("item = %+v, want latest save to win", item)
	}
	if len(item.Codes) != 1 || item.Codes[0] != "#NEW1" {
		t.Errorf("codes = %v, want re-derived [#NEW1]", item.Codes)
	}

	// the old code no longer resolves against this item
	hits, err := repo.SearchByCode(ctx, "#OLD1")
	if err != nil {
		t.Fatalf("SearchByCode: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("stale code still searchable: %v", hits)
	}
}

func TestIngestCollisionWithCatalogWarnsAndOverwritesDraft(t *testing.T) {
	repo := testsupport.MustOpenRepository(t)
	notifier := &recordingNotifier{}
	ix := domain.NewIndexer(repo, repo, repo, notifier, testsupport.DiscardLogger())
	ctx := context.Background()

	entry := &domain.CatalogEntry{Code: "A12", Title: "Old Title", Category: "Drama", ChannelID: 1, MessageID: 1, MediaRef: "old"}
	if err := repo.PutEntry(ctx, entry); err != nil {
		t.Fatalf("PutEntry: %v", err)
	}

	res, err := ix.Ingest(ctx, &domain.RawMediaPost{ChannelID: 2, MessageID: 20, MediaRef: "new", Caption: "#A12"})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if len(res.Collisions) != 1 || res.Collisions[0] != "A12" {
		t.Errorf("collisions = %v, want [A12]", res.Collisions)
	}

	// draft is still created, pointing at the new post
	draft, err := repo.GetDraft(ctx, "A12")
	if err != nil {
		t.Fatalf("GetDraft: %v", err)
	}
	if draft == nil || draft.ChannelID != 2 || draft.MessageID != 20 {
		t.Errorf("draft = %+v, want new post's source", draft)
	}

	if len(notifier.subjects) != 1 {
		t.Fatalf("notifications = %d, want 1", len(notifier.subjects))
	}
	if !strings.Contains(notifier.bodies[0], "A12") || !strings.Contains(notifier.bodies[0], "Old Title") {
		t.Errorf("notification body %q missing collision details", notifier.bodies[0])
	}
}
