package domain_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"kinokod/internal/domain"
	"kinokod/internal/sqlite"
	"kinokod/internal/testsupport"
)

// flakyCatalog fails the next failPuts catalog writes.
type flakyCatalog struct {
	domain.CatalogRepository
	failPuts int
}

func (f *flakyCatalog) PutEntry(ctx context.Context, entry *domain.CatalogEntry) error {
	if f.failPuts > 0 {
		f.failPuts--
		return errors.New("catalog write failed")
	}
	return f.CatalogRepository.PutEntry(ctx, entry)
}

// flakyDrafts fails the next failDeletes draft deletions.
type flakyDrafts struct {
	domain.DraftRepository
	failDeletes int
}

func (f *flakyDrafts) DeleteDraft(ctx context.Context, code string) error {
	if f.failDeletes > 0 {
		f.failDeletes--
		return errors.New("draft delete failed")
	}
	return f.DraftRepository.DeleteDraft(ctx, code)
}

func putDraft(t *testing.T, repo *sqlite.Repository, code string) {
	t.Helper()
	err := repo.PutDraft(context.Background(), &domain.PendingDraft{
		Code: code, ChannelID: 5, MessageID: 50,
		MediaRef: "file-" + code, Caption: "Big Movie #" + code,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("PutDraft(%s): %v", code, err)
	}
}

func newCuration(t *testing.T) (*domain.CurationService, *sqlite.Repository, *domain.SessionStore) {
	t.Helper()
	repo := testsupport.MustOpenRepository(t)
	sessions := domain.NewSessionStore()
	svc := domain.NewCurationService(repo, repo, sessions, []string{"Hind kinolar"}, 10, testsupport.DiscardLogger())
	return svc, repo, sessions
}

const userID = int64(77)

func TestCurationFullWorkflow(t *testing.T) {
	svc, repo, sessions := newCuration(t)
	ctx := context.Background()
	putDraft(t, repo, "A12")

	draft, err := svc.Select(ctx, userID, "A12")
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if draft.Code != "A12" {
		t.Errorf("selected draft = %+v", draft)
	}

	options, err := svc.SubmitTitle(ctx, userID, "Big Movie")
	if err != nil {
		t.Fatalf("SubmitTitle: %v", err)
	}
	if len(options) == 0 || options[0] != "Hind kinolar" {
		t.Errorf("options = %v, want seed category first", options)
	}

	entry, err := svc.ChooseCategory(ctx, userID, "Drama")
	if err != nil {
		t.Fatalf("ChooseCategory: %v", err)
	}
	if entry.Title != "Big Movie" || entry.Category != "Drama" || entry.Code != "A12" {
		t.Errorf("entry = %+v", entry)
	}
	if entry.ChannelID != 5 || entry.MessageID != 50 || entry.MediaRef != "file-A12" {
		t.Errorf("entry media fields = %+v, want copied from draft", entry)
	}

	// draft consumed, session cleared
	if d, _ := repo.GetDraft(ctx, "A12"); d != nil {
		t.Error("draft still present after promotion")
	}
	if _, ok := sessions.Curation(userID); ok {
		t.Error("session not cleared after promotion")
	}
}

func TestCurationNewCategoryStep(t *testing.T) {
	svc, repo, _ := newCuration(t)
	ctx := context.Background()
	putDraft(t, repo, "A12")

	if _, err := svc.Select(ctx, userID, "A12"); err != nil {
		t.Fatalf("Select: %v", err)
	}
	if _, err := svc.SubmitTitle(ctx, userID, "Big Movie"); err != nil {
		t.Fatalf("SubmitTitle: %v", err)
	}
	if err := svc.RequestNewCategory(userID); err != nil {
		t.Fatalf("RequestNewCategory: %v", err)
	}

	entry, err := svc.SubmitNewCategoryName(ctx, userID, "Fantasy")
	if err != nil {
		t.Fatalf("SubmitNewCategoryName: %v", err)
	}
	if entry.Category != "Fantasy" {
		t.Errorf("category = %q, want Fantasy", entry.Category)
	}
}

func TestCurationEmptyTitleRejected(t *testing.T) {
	svc, repo, sessions := newCuration(t)
	ctx := context.Background()
	putDraft(t, repo, "A12")

	if _, err := svc.Select(ctx, userID, "A12"); err != nil {
		t.Fatalf("Select: %v", err)
	}
	if _, err := svc.SubmitTitle(ctx, userID, "   "); !errors.Is(err, domain.ErrEmptyInput) {
		t.Fatalf("err = %v, want ErrEmptyInput", err)
	}

	// session stays at the title step
	sess, ok := sessions.Curation(userID)
	if !ok || sess.Step != domain.StepTitle {
		t.Errorf("session = %+v, want StepTitle preserved", sess)
	}
}

func TestCurationSelectMissingDraft(t *testing.T) {
	svc, _, _ := newCuration(t)

	_, err := svc.Select(context.Background(), userID, "ZZ9")
	if !errors.Is(err, domain.ErrDraftMissing) {
		t.Fatalf("err = %v, want ErrDraftMissing", err)
	}
}

func TestCurationStepOrderEnforced(t *testing.T) {
	svc, repo, _ := newCuration(t)
	ctx := context.Background()
	putDraft(t, repo, "A12")

	// no session at all
	if _, err := svc.SubmitTitle(ctx, userID, "Big Movie"); !errors.Is(err, domain.ErrNoSession) {
		t.Fatalf("SubmitTitle without session: err = %v, want ErrNoSession", err)
	}

	if _, err := svc.Select(ctx, userID, "A12"); err != nil {
		t.Fatalf("Select: %v", err)
	}
	// category before title
	if _, err := svc.ChooseCategory(ctx, userID, "Drama"); !errors.Is(err, domain.ErrNoSession) {
		t.Fatalf("ChooseCategory at title step: err = %v, want ErrNoSession", err)
	}
	if _, err := svc.SubmitNewCategoryName(ctx, userID, "Drama"); !errors.Is(err, domain.ErrNoSession) {
		t.Fatalf("SubmitNewCategoryName at title step: err = %v, want ErrNoSession", err)
	}
}

func TestCurationNewSelectionAbandonsOldSession(t *testing.T) {
	svc, repo, sessions := newCuration(t)
	ctx := context.Background()
	putDraft(t, repo, "A12")
	putDraft(t, repo, "B34")

	if _, err := svc.Select(ctx, userID, "A12"); err != nil {
		t.Fatalf("Select A12: %v", err)
	}
	if _, err := svc.SubmitTitle(ctx, userID, "Halfway"); err != nil {
		t.Fatalf("SubmitTitle: %v", err)
	}

	// starting over discards the partial progress without touching drafts
	if _, err := svc.Select(ctx, userID, "B34"); err != nil {
		t.Fatalf("Select B34: %v", err)
	}
	sess, _ := sessions.Curation(userID)
	if sess.Code != "B34" || sess.Step != domain.StepTitle || sess.Title != "" {
		t.Errorf("session = %+v, want fresh session for B34", sess)
	}
	if d, _ := repo.GetDraft(ctx, "A12"); d == nil {
		t.Error("abandoned session must not mutate its draft")
	}
}

func TestCommitAbortsWhenDraftVanished(t *testing.T) {
	svc, repo, sessions := newCuration(t)
	ctx := context.Background()
	putDraft(t, repo, "A12")

	if _, err := svc.Select(ctx, userID, "A12"); err != nil {
		t.Fatalf("Select: %v", err)
	}
	if _, err := svc.SubmitTitle(ctx, userID, "Big Movie"); err != nil {
		t.Fatalf("SubmitTitle: %v", err)
	}

	// draft vanishes mid-workflow
	if err := repo.DeleteDraft(ctx, "A12"); err != nil {
		t.Fatalf("DeleteDraft: %v", err)
	}

	_, err := svc.ChooseCategory(ctx, userID, "Drama")
	if !errors.Is(err, domain.ErrDraftMissing) {
		t.Fatalf("err = %v, want ErrDraftMissing", err)
	}

	// catalog untouched, session cleared
	if e, _ := repo.GetEntry(ctx, "A12"); e != nil {
		t.Error("catalog mutated despite missing draft")
	}
	if _, ok := sessions.Curation(userID); ok {
		t.Error("session not cleared after aborted workflow")
	}
}

func TestCommitFailurePreservesSessionAndDraft(t *testing.T) {
	repo := testsupport.MustOpenRepository(t)
	sessions := domain.NewSessionStore()
	catalog := &flakyCatalog{CatalogRepository: repo, failPuts: 1}
	svc := domain.NewCurationService(repo, catalog, sessions, nil, 10, testsupport.DiscardLogger())
	ctx := context.Background()
	putDraft(t, repo, "A12")

	if _, err := svc.Select(ctx, userID, "A12"); err != nil {
		t.Fatalf("Select: %v", err)
	}
	if _, err := svc.SubmitTitle(ctx, userID, "Big Movie"); err != nil {
		t.Fatalf("SubmitTitle: %v", err)
	}

	if _, err := svc.ChooseCategory(ctx, userID, "Drama"); err == nil {
		t.Fatal("expected catalog write failure")
	}

	// session and draft survive so the user can retry the same step
	sess, ok := sessions.Curation(userID)
	if !ok || sess.Step != domain.StepCategory || sess.Title != "Big Movie" {
		t.Errorf("session = %+v, want preserved at category step", sess)
	}
	if d, _ := repo.GetDraft(ctx, "A12"); d == nil {
		t.Fatal("draft deleted despite failed catalog write")
	}

	// retrying the same choice now succeeds
	entry, err := svc.ChooseCategory(ctx, userID, "Drama")
	if err != nil {
		t.Fatalf("retry ChooseCategory: %v", err)
	}
	if entry.Code != "A12" {
		t.Errorf("entry = %+v", entry)
	}
	if d, _ := repo.GetDraft(ctx, "A12"); d != nil {
		t.Error("draft still present after successful retry")
	}
}

func TestPromotionIdempotentAfterDeleteFailure(t *testing.T) {
	repo := testsupport.MustOpenRepository(t)
	drafts := &flakyDrafts{DraftRepository: repo, failDeletes: 1}
	svc := domain.NewCurationService(drafts, repo, domain.NewSessionStore(), nil, 10, testsupport.DiscardLogger())
	ctx := context.Background()
	putDraft(t, repo, "A12")

	// first attempt: catalog write lands, draft delete fails
	if _, err := svc.Promote(ctx, "A12", "Big Movie", "Drama"); err == nil {
		t.Fatal("expected delete failure")
	}
	if e, _ := repo.GetEntry(ctx, "A12"); e == nil {
		t.Fatal("catalog entry missing after partial promotion")
	}
	if d, _ := repo.GetDraft(ctx, "A12"); d == nil {
		t.Fatal("draft missing after failed delete")
	}

	// re-running the same promotion converges: one entry, zero drafts
	entry, err := svc.Promote(ctx, "A12", "Big Movie", "Drama")
	if err != nil {
		t.Fatalf("retry Promote: %v", err)
	}
	if entry.Title != "Big Movie" || entry.Category != "Drama" {
		t.Errorf("entry = %+v", entry)
	}
	if d, _ := repo.GetDraft(ctx, "A12"); d != nil {
		t.Error("draft still present after retried promotion")
	}

	remaining, _, err := repo.ListCategory(ctx, "Drama", 0, 10)
	if err != nil {
		t.Fatalf("ListCategory: %v", err)
	}
	if len(remaining) != 1 {
		t.Errorf("catalog rows = %d, want exactly 1", len(remaining))
	}
}

func TestListDraftsFlagsCatalogedCodes(t *testing.T) {
	svc, repo, _ := newCuration(t)
	ctx := context.Background()
	putDraft(t, repo, "A12")
	putDraft(t, repo, "B34")
	putEntry(t, repo, "A12", "Already There", "Drama")

	drafts, err := svc.ListDrafts(ctx)
	if err != nil {
		t.Fatalf("ListDrafts: %v", err)
	}
	if len(drafts) != 2 {
		t.Fatalf("drafts = %d, want 2", len(drafts))
	}

	byCode := map[string]bool{}
	for _, d := range drafts {
		byCode[d.Code] = d.AlreadyCataloged
	}
	if !byCode["A12"] {
		t.Error("A12 should be flagged as already cataloged")
	}
	if byCode["B34"] {
		t.Error("B34 should not be flagged")
	}
}

func TestCategoryOptionsMergeSeedAndExisting(t *testing.T) {
	svc, repo, _ := newCuration(t)
	ctx := context.Background()
	putEntry(t, repo, "A1", "One", "Drama")
	putEntry(t, repo, "A2", "Two", "Hind kinolar")

	options, err := svc.CategoryOptions(ctx)
	if err != nil {
		t.Fatalf("CategoryOptions: %v", err)
	}
	// seed first, then existing categories, deduplicated
	want := []string{"Hind kinolar", "Drama"}
	if len(options) != len(want) {
		t.Fatalf("options = %v, want %v", options, want)
	}
	for i := range want {
		if options[i] != want[i] {
			t.Errorf("options[%d] = %q, want %q", i, options[i], want[i])
		}
	}
}
