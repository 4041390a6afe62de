package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"kinokod/internal/domain"
)

// OptionNewCategory is the selectable option that switches the curation
// workflow to naming a brand-new category.
const OptionNewCategory = "+ New category"

// maxCodeSearchLen caps how long an all-digit free-text message may be to
// still count as a code search.
const maxCodeSearchLen = 10

const welcomeText = "Welcome to the video catalog. Browse by category or search by code."

const helpText = `Commands:
/start - welcome message and main menu
/search <code> - look up a video by its code
/categories - browse videos by category
/drafts - list ingested videos awaiting classification
/help - this message
/about - about this service

You can also just send a numeric code as a message.`

const aboutText = "This service catalogs short-form videos received from an upstream channel feed. Videos are tagged with codes and organized into categories; look one up by code or browse by category."

// Reply is a structured response for the front-end to render. Text is always
// set; the remaining fields are populated per interaction.
type Reply struct {
	RequestID  string                  `json:"request_id"`
	Text       string                  `json:"text"`
	Options    []string                `json:"options,omitempty"`
	Resolved   *domain.ResolvedContent `json:"resolved,omitempty"`
	Drafts     []domain.DraftSummary   `json:"drafts,omitempty"`
	Categories []domain.CategoryCount  `json:"categories,omitempty"`
	Page       *domain.CategoryPage    `json:"page,omitempty"`
	Entry      *domain.CatalogEntry    `json:"entry,omitempty"`
}

// Gateway is the user-interaction surface of the catalog. It translates
// commands, free text, and category selections from the messaging front-end
// into core operations and returns structured replies for it to render.
type Gateway struct {
	resolver *domain.Resolver
	curation *domain.CurationService
	nav      *domain.Navigator
	sessions *domain.SessionStore
	logger   *slog.Logger
}

// New creates a Gateway.
func New(resolver *domain.Resolver, curation *domain.CurationService, nav *domain.Navigator, sessions *domain.SessionStore, logger *slog.Logger) *Gateway {
	return &Gateway{
		resolver: resolver,
		curation: curation,
		nav:      nav,
		sessions: sessions,
		logger:   logger,
	}
}

// OnCommand handles a named command from a user.
func (g *Gateway) OnCommand(ctx context.Context, name string, args []string, userID int64) (*Reply, error) {
	reply := g.newReply()
	g.logger.Info("command received", "request_id", reply.RequestID, "command", name, "user_id", userID)

	switch name {
	case "start":
		// explicit navigation reset clears all per-user state
		g.sessions.Reset(userID)
		reply.Text = welcomeText
		reply.Options = []string{"Browse categories", "Search by code", "Help", "About"}
		return reply, nil

	case "help":
		reply.Text = helpText
		return reply, nil

	case "about":
		reply.Text = aboutText
		return reply, nil

	case "search":
		if len(args) == 0 {
			reply.Text = "Send the code of the video you are looking for."
			return reply, nil
		}
		return g.resolve(ctx, reply, args[0])

	case "categories":
		categories, err := g.nav.Categories(ctx)
		if err != nil {
			return nil, err
		}
		if len(categories) == 0 {
			reply.Text = "No categories yet."
			return reply, nil
		}
		reply.Text = "Pick a category to browse."
		reply.Categories = categories
		return reply, nil

	case "drafts":
		drafts, err := g.curation.ListDrafts(ctx)
		if err != nil {
			return nil, err
		}
		if len(drafts) == 0 {
			reply.Text = "No pending drafts. Post videos with hashtag codes to the channel and they will show up here."
			return reply, nil
		}
		reply.Text = "Pending drafts awaiting a title and category. Select one by code."
		reply.Drafts = drafts
		return reply, nil

	case "select":
		if len(args) == 0 {
			reply.Text = "Usage: select <code>."
			return reply, nil
		}
		return g.selectDraft(ctx, reply, userID, args[0])

	case "next":
		return g.movePage(ctx, reply, userID, g.nav.NextPage)

	case "prev":
		return g.movePage(ctx, reply, userID, g.nav.PrevPage)

	default:
		reply.Text = "Unknown command. Send /help to see what I can do."
		return reply, nil
	}
}

// OnFreeText handles a non-command message. Routing depends on the user's
// curation session: mid-workflow text is consumed as the title or the new
// category name; otherwise short all-digit text is treated as a code search.
func (g *Gateway) OnFreeText(ctx context.Context, text string, userID int64) (*Reply, error) {
	reply := g.newReply()
	g.logger.Info("free text received", "request_id", reply.RequestID, "user_id", userID)

	trimmed := strings.TrimSpace(text)

	if sess, ok := g.sessions.Curation(userID); ok {
		switch sess.Step {
		case domain.StepTitle:
			options, err := g.curation.SubmitTitle(ctx, userID, text)
			switch {
			case errors.Is(err, domain.ErrEmptyInput):
				reply.Text = "Please send a non-empty title."
				return reply, nil
			case err != nil:
				return nil, err
			}
			reply.Text = fmt.Sprintf("Title saved: %s. Now pick a category or add a new one.", strings.TrimSpace(text))
			reply.Options = append(options, OptionNewCategory)
			return reply, nil

		case domain.StepNewCategory:
			entry, err := g.curation.SubmitNewCategoryName(ctx, userID, trimmed)
			return g.promotionReply(reply, entry, err)

		case domain.StepCategory:
			reply.Text = "Pick a category from the options, or choose " + OptionNewCategory + "."
			return reply, nil
		}
	}

	if domain.AllDigits(trimmed) && len(trimmed) <= maxCodeSearchLen {
		return g.resolve(ctx, reply, trimmed)
	}

	reply.Text = "Send /help to see the available commands."
	return reply, nil
}

// OnCategorySelect handles a category chosen from the offered options. Mid
// curation it commits the promotion; otherwise it opens the category at
// page 1.
func (g *Gateway) OnCategorySelect(ctx context.Context, category string, userID int64) (*Reply, error) {
	reply := g.newReply()
	g.logger.Info("category selected", "request_id", reply.RequestID, "category", category, "user_id", userID)

	if sess, ok := g.sessions.Curation(userID); ok && sess.Step == domain.StepCategory {
		if category == OptionNewCategory {
			if err := g.curation.RequestNewCategory(userID); err != nil {
				return nil, err
			}
			reply.Text = "Send the name of the new category."
			return reply, nil
		}
		entry, err := g.curation.ChooseCategory(ctx, userID, category)
		return g.promotionReply(reply, entry, err)
	}

	page, err := g.nav.OpenCategory(ctx, userID, category)
	if err != nil {
		return nil, err
	}
	if page.TotalCount == 0 {
		reply.Text = fmt.Sprintf("No videos found in %q.", category)
		return reply, nil
	}
	reply.Text = fmt.Sprintf("%s: page %d of %d (%d videos).", category, page.Page, page.TotalPages, page.TotalCount)
	reply.Page = page
	return reply, nil
}

func (g *Gateway) resolve(ctx context.Context, reply *Reply, code string) (*Reply, error) {
	resolved, err := g.resolver.Resolve(ctx, code)
	if errors.Is(err, domain.ErrNotFound) {
		reply.Text = "No video found for that code."
		return reply, nil
	}
	if err != nil {
		return nil, err
	}

	reply.Resolved = resolved
	switch resolved.Kind {
	case domain.KindCatalog:
		reply.Text = fmt.Sprintf("%s (%s), code %s.", resolved.Entry.Title, resolved.Entry.Category, resolved.Entry.Code)
	case domain.KindRaw:
		reply.Text = fmt.Sprintf("Found an unclassified video for code %s.", code)
	}
	return reply, nil
}

func (g *Gateway) selectDraft(ctx context.Context, reply *Reply, userID int64, code string) (*Reply, error) {
	draft, err := g.curation.Select(ctx, userID, code)
	if errors.Is(err, domain.ErrDraftMissing) {
		reply.Text = "That code is not in the pending draft list."
		return reply, nil
	}
	if err != nil {
		return nil, err
	}

	reply.Text = fmt.Sprintf("Classifying %s. Original caption: %q. Step 1 of 2: send the title.", draft.Code, draft.Caption)
	return reply, nil
}

func (g *Gateway) promotionReply(reply *Reply, entry *domain.CatalogEntry, err error) (*Reply, error) {
	switch {
	case errors.Is(err, domain.ErrDraftMissing):
		reply.Text = "The pending draft disappeared before it could be promoted. Start over from the draft list."
		return reply, nil
	case errors.Is(err, domain.ErrEmptyInput):
		reply.Text = "Please send a non-empty category name."
		return reply, nil
	case err != nil:
		// session and draft are preserved; the user can retry the same step
		reply.Text = "Saving failed. Send the category again to retry."
		g.logger.Error("promotion failed", "request_id", reply.RequestID, "error", err)
		return reply, nil
	}

	reply.Entry = entry
	reply.Text = fmt.Sprintf("Added %q to %s with code %s. It is now available via search and categories.", entry.Title, entry.Category, entry.Code)
	return reply, nil
}

func (g *Gateway) movePage(ctx context.Context, reply *Reply, userID int64, move func(context.Context, int64) (*domain.CategoryPage, error)) (*Reply, error) {
	page, err := move(ctx, userID)
	switch {
	case errors.Is(err, domain.ErrNoCursor):
		reply.Text = "Open a category first."
		return reply, nil
	case errors.Is(err, domain.ErrFirstPage):
		reply.Text = "You are already on the first page."
		return reply, nil
	case errors.Is(err, domain.ErrLastPage):
		reply.Text = "You are already on the last page."
		return reply, nil
	case err != nil:
		return nil, err
	}

	reply.Text = fmt.Sprintf("%s: page %d of %d (%d videos).", page.Category, page.Page, page.TotalPages, page.TotalCount)
	reply.Page = page
	return reply, nil
}

func (g *Gateway) newReply() *Reply {
	return &Reply{RequestID: uuid.NewString()}
}
