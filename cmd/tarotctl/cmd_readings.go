package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/yanqian/ai-tarot/internal/domain/reading"
)

var (
	listLimit  int
	listOffset int
)

var readingsCmd = &cobra.Command{
	Use:   "readings",
	Short: "Browse saved readings",
	RunE:  runReadingsList,
}

var readingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved readings, AI generated first",
	RunE:  runReadingsList,
}

var readingsShowCmd = &cobra.Command{
	Use:   "show <reading-id>",
	Short: "Render one saved reading",
	Args:  cobra.ExactArgs(1),
	RunE:  runReadingsShow,
}

var readingsDeleteCmd = &cobra.Command{
	Use:   "delete <reading-id>",
	Short: "Delete a saved reading",
	Args:  cobra.ExactArgs(1),
	RunE:  runReadingsDelete,
}

var cardsCmd = &cobra.Command{
	Use:   "cards [query]",
	Short: "Search the card catalog",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCards,
}

func runReadingsList(cmd *cobra.Command, args []string) error {
	d, err := newDeps()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	page, err := d.history.List(ctx, listLimit, listOffset)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderReadingList(page))
	return nil
}

func runReadingsShow(cmd *cobra.Command, args []string) error {
	id, err := parseReadingID(args[0])
	if err != nil {
		return err
	}
	d, err := newDeps()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	rec, err := d.history.Get(ctx, id)
	if err != nil {
		return err
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return err
	}
	out, err := renderer.Render(readingMarkdown(rec))
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}

func runReadingsDelete(cmd *cobra.Command, args []string) error {
	id, err := parseReadingID(args[0])
	if err != nil {
		return err
	}
	d, err := newDeps()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	if err := d.history.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("Deleted reading %d", id)))
	return nil
}

func runCards(cmd *cobra.Command, args []string) error {
	d, err := newDeps()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	cards, err := d.client.Cards(ctx)
	if err != nil {
		return err
	}
	query := ""
	if len(args) == 1 {
		query = args[0]
	}
	matches := reading.FilterCards(reading.EnsureCardIDs(cards), query)
	fmt.Fprintln(cmd.OutOrStdout(), renderCards(matches))
	return nil
}

func parseReadingID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("reading id must be a positive number, got %q", raw)
	}
	return id, nil
}
