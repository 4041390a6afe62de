package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"kinokod/internal/domain"
)

func newResolveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <code>",
		Short: "Look up a code the way the search engine does",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, closeEnv, err := openEnv()
			if err != nil {
				return err
			}
			defer closeEnv()

			resolved, err := e.resolver.Resolve(cmd.Context(), args[0])
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("no content found for code %q", args[0])
			}
			if err != nil {
				return err
			}

			switch resolved.Kind {
			case domain.KindCatalog:
				entry := resolved.Entry
				cmd.Printf("catalog entry %s\n  title:    %s\n  category: %s\n  source:   channel %d message %d\n  media:    %s\n",
					entry.Code, entry.Title, entry.Category, entry.ChannelID, entry.MessageID, entry.MediaRef)
			case domain.KindRaw:
				item := resolved.Item
				cmd.Printf("raw item (unclassified)\n  source:  channel %d message %d\n  codes:   %v\n  caption: %s\n",
					item.ChannelID, item.MessageID, item.Codes, item.Caption)
			}
			return nil
		},
	}
}

func newDraftsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "drafts",
		Short: "List pending drafts awaiting classification",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, closeEnv, err := openEnv()
			if err != nil {
				return err
			}
			defer closeEnv()

			drafts, err := e.curation.ListDrafts(cmd.Context())
			if err != nil {
				return err
			}
			if len(drafts) == 0 {
				cmd.Println("no pending drafts")
				return nil
			}

			for _, d := range drafts {
				marker := " "
				if d.AlreadyCataloged {
					marker = "!"
				}
				cmd.Printf("%s %-10s channel %d message %d  %s\n", marker, d.Code, d.ChannelID, d.MessageID, d.Caption)
			}
			if anyCataloged(drafts) {
				cmd.Println("\n! = code already has a catalog entry; promoting it re-classifies the entry")
			}
			return nil
		},
	}
}

func newPromoteCommand() *cobra.Command {
	var title, category string

	cmd := &cobra.Command{
		Use:   "promote <code>",
		Short: "Promote a pending draft into a catalog entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, closeEnv, err := openEnv()
			if err != nil {
				return err
			}
			defer closeEnv()

			entry, err := e.curation.Promote(cmd.Context(), args[0], title, category)
			if errors.Is(err, domain.ErrDraftMissing) {
				return fmt.Errorf("no pending draft for code %q", args[0])
			}
			if err != nil {
				return err
			}

			cmd.Printf("promoted %s: %q in %s\n", entry.Code, entry.Title, entry.Category)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "title for the catalog entry")
	cmd.Flags().StringVar(&category, "category", "", "category for the catalog entry")
	cmd.MarkFlagRequired("title")
	cmd.MarkFlagRequired("category")
	return cmd
}

func newCategoriesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List catalog categories with entry counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, closeEnv, err := openEnv()
			if err != nil {
				return err
			}
			defer closeEnv()

			categories, err := e.repo.ListCategories(cmd.Context())
			if err != nil {
				return err
			}
			if len(categories) == 0 {
				cmd.Println("no categories")
				return nil
			}

			for _, c := range categories {
				cmd.Printf("%-30s %d\n", c.Name, c.Count)
			}
			return nil
		},
	}
}

func anyCataloged(drafts []domain.DraftSummary) bool {
	for _, d := range drafts {
		if d.AlreadyCataloged {
			return true
		}
	}
	return false
}
