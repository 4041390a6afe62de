package domain

import "errors"

var (
	// ErrNotMedia indicates an inbound post carries no playable media and
	// was rejected before any persistence.
	ErrNotMedia = errors.New("post has no playable media")

	// ErrNotFound indicates a lookup exhausted every resolution strategy.
	ErrNotFound = errors.New("code not found")

	// ErrDraftMissing indicates the pending draft targeted by a promotion
	// vanished mid-workflow. The workflow aborts without touching the catalog.
	ErrDraftMissing = errors.New("pending draft no longer exists")

	// ErrValidationMismatch indicates a re-read disagreed with the first
	// read during resolution. Treated as not-found for that call, logged,
	// never escalated.
	ErrValidationMismatch = errors.New("stored record changed between reads")

	// ErrNoSession indicates a workflow input arrived for a user with no
	// curation session in progress, or at the wrong step.
	ErrNoSession = errors.New("no curation session in progress")

	// ErrEmptyInput indicates free text that must be non-empty was blank.
	ErrEmptyInput = errors.New("input must not be empty")

	// ErrNoCursor indicates a page move for a user who has not opened a
	// category yet.
	ErrNoCursor = errors.New("no browse cursor for user")

	// ErrFirstPage rejects a previous-page move already at page 1.
	ErrFirstPage = errors.New("already on the first page")

	// ErrLastPage rejects a next-page move already at the last page.
	ErrLastPage = errors.New("already on the last page")
)
