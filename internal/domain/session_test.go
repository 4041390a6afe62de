package domain_test

import (
	"sync"
	"testing"

	"kinokod/internal/domain"
)

func TestSessionStoreIsolatesUsers(t *testing.T) {
	store := domain.NewSessionStore()

	store.SetCuration(1, domain.CurationSession{Code: "A1", Step: domain.StepTitle})
	store.SetCursor(1, domain.BrowseCursor{Category: "Drama", Page: 2})

	if _, ok := store.Curation(2); ok {
		t.Error("user 2 sees user 1's curation session")
	}
	if _, ok := store.Cursor(2); ok {
		t.Error("user 2 sees user 1's cursor")
	}

	sess, ok := store.Curation(1)
	if !ok || sess.Code != "A1" {
		t.Errorf("session = %+v", sess)
	}
}

func TestSessionStoreResetClearsBothKinds(t *testing.T) {
	store := domain.NewSessionStore()
	store.SetCuration(1, domain.CurationSession{Code: "A1", Step: domain.StepTitle})
	store.SetCursor(1, domain.BrowseCursor{Category: "Drama", Page: 2})
	store.SetCursor(2, domain.BrowseCursor{Category: "Komedia", Page: 1})

	store.Reset(1)

	if _, ok := store.Curation(1); ok {
		t.Error("curation session survived reset")
	}
	if _, ok := store.Cursor(1); ok {
		t.Error("cursor survived reset")
	}
	if _, ok := store.Cursor(2); !ok {
		t.Error("reset leaked into another user")
	}
}

func TestSessionStoreConcurrentAccess(t *testing.T) {
	store := domain.NewSessionStore()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				store.SetCuration(userID, domain.CurationSession{Code: "A1", Step: domain.StepTitle})
				store.Curation(userID)
				store.SetCursor(userID, domain.BrowseCursor{Category: "Drama", Page: j})
				store.Cursor(userID)
				store.Reset(userID)
			}
		}(int64(i % 4))
	}
	wg.Wait()
}
