package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"vsr/internal/transcript"
	"vsr/internal/watch"
)

var watchVerify bool

var watchCmd = &cobra.Command{
	Use:   "watch [file-or-dir...]",
	Short: "Re-read fixtures whenever they change",
	Long: `Watches HTML fixtures and reads each one again after it is saved.
With --verify the reading is diffed against its golden transcript instead of
printed in full.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchVerify, "verify", false, "Diff against golden transcripts")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var store *transcript.Store
	if watchVerify {
		var err error
		if store, err = openStore(); err != nil {
			return err
		}
		defer store.Close()
	}

	out := cmd.OutOrStdout()
	handler := func(ctx context.Context, path string) {
		run, err := readSource(ctx, path)
		if err != nil {
			logger.Warn("Read failed", zap.String("path", path), zap.Error(err))
			fmt.Fprintf(out, "%s: %v\n", path, err)
			return
		}
		if store == nil {
			_ = printRun(out, run, true)
			return
		}
		res, err := verifyRun(ctx, store, run)
		switch {
		case err != nil:
			fmt.Fprintf(out, "%s: %v\n", path, err)
		case res.Equal():
			fmt.Fprintf(out, "%s: ok\n", run.Name)
		default:
			printDiff(out, res)
		}
	}

	w, err := watch.New(args, handler, watch.WithDebounce(cfg.GetDebounce()))
	if err != nil {
		return err
	}
	if err := w.Start(ctx); err != nil {
		return err
	}
	defer w.Stop()

	logger.Info("Watching", zap.Strings("dirs", w.Dirs()))
	<-ctx.Done()
	if err := ctx.Err(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
