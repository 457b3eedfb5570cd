package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"vsr/internal/transcript"
)

var (
	readMarkdown bool
	readItems    bool
	readParallel int
)

var readCmd = &cobra.Command{
	Use:   "read [file-or-url...]",
	Short: "Read documents from start to finish",
	Long: `Starts the virtual cursor at the top of each document and moves forward until
"end of document" is spoken, printing every announcement.

Several documents are read concurrently; output keeps argument order.

Example:
  vsr read fixtures/form.html https://example.com`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRead,
}

func init() {
	readCmd.Flags().BoolVar(&readMarkdown, "markdown", false, "Render transcripts as markdown")
	readCmd.Flags().BoolVar(&readItems, "items", false, "Print item text instead of spoken phrases")
	readCmd.Flags().IntVar(&readParallel, "parallel", 4, "Documents read at once")
}

func runRead(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	runs, err := readAll(ctx, args, readParallel)
	if err != nil {
		return err
	}
	for _, run := range runs {
		if err := printRun(cmd.OutOrStdout(), run, len(runs) > 1); err != nil {
			return err
		}
	}
	return nil
}

// readAll reads every source with at most parallel reads in flight.
func readAll(ctx context.Context, sources []string, parallel int) ([]*transcript.Run, error) {
	runs := make([]*transcript.Run, len(sources))
	eg, egCtx := errgroup.WithContext(ctx)
	if parallel > 0 {
		eg.SetLimit(parallel)
	}
	for i, src := range sources {
		i, src := i, src
		eg.Go(func() error {
			logger.Debug("Reading document", zap.String("source", src))
			run, err := readSource(egCtx, src)
			if err != nil {
				return err
			}
			runs[i] = run
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return runs, nil
}

func printRun(w io.Writer, run *transcript.Run, header bool) error {
	if readMarkdown {
		out, err := renderMarkdown(transcript.Markdown(run))
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(w, out)
		return err
	}
	if header {
		fmt.Fprintf(w, "== %s\n", run.Name)
	}
	lines := run.Phrases
	if readItems {
		lines = run.ItemTexts
	}
	_, err := fmt.Fprintln(w, strings.Join(lines, "\n"))
	return err
}

func renderMarkdown(md string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	return r.Render(md)
}
