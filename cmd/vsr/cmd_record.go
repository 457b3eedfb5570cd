package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"vsr/internal/diff"
	"vsr/internal/transcript"
)

var recordName string

// errTranscriptChanged is returned by verify when a reading differs from
// its golden transcript.
var errTranscriptChanged = errors.New("transcript changed")

var recordCmd = &cobra.Command{
	Use:   "record [file-or-url]",
	Short: "Record a golden transcript",
	Long: `Reads the document and stores its spoken phrases in the transcript database
under --name (default: the file name or URL).`,
	Args: cobra.ExactArgs(1),
	RunE: runRecord,
}

var verifyCmd = &cobra.Command{
	Use:   "verify [file-or-url]",
	Short: "Compare a reading with its golden transcript",
	Long: `Reads the document again and diffs the spoken phrases against the latest
transcript recorded under --name. Exits non-zero when they differ.`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

var historyCmd = &cobra.Command{
	Use:   "history [name]",
	Short: "List recorded transcripts",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHistory,
}

func init() {
	recordCmd.Flags().StringVar(&recordName, "name", "", "Transcript name")
	verifyCmd.Flags().StringVar(&recordName, "name", "", "Transcript name")
}

func runRecord(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	run, err := readSource(ctx, args[0])
	if err != nil {
		return err
	}
	if recordName != "" {
		run.Name = recordName
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Save(ctx, run); err != nil {
		return err
	}
	logger.Info("Recorded transcript", zap.String("name", run.Name), zap.String("id", run.ID))
	fmt.Fprintf(cmd.OutOrStdout(), "recorded %s (%d phrases) as %s\n", run.Name, len(run.Phrases), run.ID)
	return nil
}

func runVerify(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	run, err := readSource(ctx, args[0])
	if err != nil {
		return err
	}
	if recordName != "" {
		run.Name = recordName
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	res, err := verifyRun(ctx, store, run)
	if err != nil {
		return err
	}
	if res.Equal() {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d phrases)\n", run.Name, len(run.Phrases))
		return nil
	}
	printDiff(cmd.OutOrStdout(), res)
	return fmt.Errorf("%s: %w (+%d -%d)", run.Name, errTranscriptChanged, res.Added, res.Removed)
}

// verifyRun diffs run against the latest golden transcript of the same name.
func verifyRun(ctx context.Context, store *transcript.Store, run *transcript.Run) (*diff.Result, error) {
	golden, err := store.Latest(ctx, run.Name)
	if errors.Is(err, transcript.ErrNotFound) {
		return nil, fmt.Errorf("no golden transcript named %q; run vsr record first", run.Name)
	}
	if err != nil {
		return nil, err
	}
	return comparer().Compare("golden/"+golden.ID, "current", golden.Phrases, run.Phrases), nil
}

func comparer() *diff.Comparer {
	return diff.NewComparer(cfg.GetDiffContext())
}

// printDiff writes the unified diff followed by word-level highlights of
// the phrases that changed in place.
func printDiff(w io.Writer, res *diff.Result) {
	fmt.Fprint(w, res.Unified())
	for _, h := range comparer().Highlights(res) {
		fmt.Fprintf(w, "~ %s\n", h)
	}
}

func runHistory(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	name := ""
	if len(args) == 1 {
		name = args[0]
	}
	runs, err := store.List(cmd.Context(), name, 50)
	if err != nil {
		return err
	}
	for _, r := range runs {
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %-30s %d phrases\n",
			r.CreatedAt.Format("2006-01-02 15:04:05"), r.ID, r.Name, len(r.Phrases))
	}
	return nil
}
