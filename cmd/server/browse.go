package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/liamwears/lbmovies/internal/browse"
	"github.com/liamwears/lbmovies/internal/catalog"
)

const browseHelp = `Type a search and press enter; it runs once input settles. Commands:
  :s all|movies|series   switch section
  :p N                   go to page N
  :n / :b                next / previous page
  :q                     quit`

func newBrowseCmd() *cobra.Command {
	var (
		section string
		query   string
	)

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse the catalog from the terminal",
		Long:  "Runs an interactive browse session against the catalog proxy.\n\n" + browseHelp,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runBrowse(os.Stdin, os.Stdout, section, query)
		},
	}

	cmd.Flags().StringVarP(&section, "section", "s", "all", "initial section: all, movies or series")
	cmd.Flags().StringVarP(&query, "query", "q", "", "initial search")
	return cmd
}

func runBrowse(in io.Reader, out io.Writer, section, query string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	initial := browse.DefaultQueryState()
	if initial.ActiveSection, err = browse.ParseSection(section); err != nil {
		return err
	}
	initial.RawSearchTerm = query
	initial.DebouncedSearchTerm = query

	// logs go to stderr so they don't interleave with the listing
	logger := newLogger(cfg, os.Stderr)
	defer logger.Close()

	client := newCatalogClient(cfg, logger)
	defer client.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var mu sync.Mutex
	session := browse.NewSession(ctx, client, initial, browse.Options{
		DebounceDelay: cfg.Catalog.DebounceDelay,
		Logger:        logger,
		OnChange: func(v browse.View) {
			if v.Loading {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			renderView(out, v)
		},
		OnScrollTop: func() {
			mu.Lock()
			defer mu.Unlock()
			fmt.Fprintln(out, styleDim.Render(strings.Repeat("─", 60)))
		},
	})
	defer session.Close()

	fmt.Fprintln(out, styleDim.Render(browseHelp))

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		cmd := parseCommand(scanner.Text())
		if cmd.quit {
			return nil
		}
		if err := cmd.apply(session); err != nil {
			mu.Lock()
			fmt.Fprintln(out, styleError.Render(err.Error()))
			mu.Unlock()
		}
		if ctx.Err() != nil {
			return nil
		}
	}
	return scanner.Err()
}

// browseCommand is one parsed input line
type browseCommand struct {
	quit    bool
	search  *string
	section browse.Section
	page    int
	// step moves relative to the current page
	step int
	err  error
}

func parseCommand(line string) browseCommand {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, ":") {
		return browseCommand{search: &line}
	}

	name, arg, _ := strings.Cut(strings.TrimPrefix(line, ":"), " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "q", "quit":
		return browseCommand{quit: true}
	case "s", "section":
		s, err := browse.ParseSection(arg)
		if err != nil || arg == "" {
			return browseCommand{err: fmt.Errorf("unknown section %q", arg)}
		}
		return browseCommand{section: s}
	case "p", "page":
		n, err := strconv.Atoi(arg)
		if err != nil {
			return browseCommand{err: fmt.Errorf("invalid page %q", arg)}
		}
		return browseCommand{page: n}
	case "n", "next":
		return browseCommand{step: 1}
	case "b", "back":
		return browseCommand{step: -1}
	}
	return browseCommand{err: fmt.Errorf("unknown command %q", line)}
}

func (c browseCommand) apply(s *browse.Session) error {
	switch {
	case c.err != nil:
		return c.err
	case c.search != nil:
		s.Type(*c.search)
	case c.section != "":
		return s.SetSection(c.section)
	case c.page != 0:
		return s.SetPage(c.page)
	case c.step != 0:
		v := s.View()
		return s.SetPage(v.CurrentPage + c.step)
	}
	return nil
}

// renderView prints one settled view as a numbered listing
func renderView(w io.Writer, v browse.View) {
	heading := "Popular now"
	if term := strings.TrimSpace(v.Query.DebouncedSearchTerm); term != "" {
		heading = fmt.Sprintf("Results for %q", term)
	}
	fmt.Fprintln(w, styleHeader.Render(fmt.Sprintf("%s [%s]", heading, v.Query.ActiveSection)))

	if v.MoviesErr != nil {
		fmt.Fprintln(w, styleError.Render("Movies could not be loaded: "+v.MoviesErr.Error()))
	}
	if v.SeriesErr != nil {
		fmt.Fprintln(w, styleError.Render("Series could not be loaded: "+v.SeriesErr.Error()))
	}

	if len(v.Items) == 0 {
		if !v.HasError() {
			fmt.Fprintln(w, styleDim.Render("No results."))
		}
		return
	}

	for i, item := range v.Items {
		kind := "Movie"
		if item.Kind == catalog.KindSeries {
			kind = "Series"
		}
		year := item.Year()
		if year == "" {
			year = "----"
		}
		fmt.Fprintf(w, "%3d. %-40s %-6s %s %s\n", i+1, truncate(item.Title, 40), kind, year, voteStyle(item.VoteAverage).Render(fmt.Sprintf("%.1f", item.VoteAverage)))
	}

	fmt.Fprintln(w, styleDim.Render(fmt.Sprintf("Page %d of %d, %d results", v.CurrentPage, v.TotalPages, v.TotalResults)))
}

func voteStyle(v float64) lipgloss.Style {
	switch {
	case v >= 8:
		return styleSuccess
	case v >= 6:
		return styleWarn
	}
	return styleDim
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
