package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"vsr/internal/browser"
	"vsr/internal/transcript"
)

var (
	browseShow  bool
	browseKeep  bool
	browseList  bool
	browseClose string
)

var browseCmd = &cobra.Command{
	Use:   "browse [url]",
	Short: "Load a page in Chrome and read it",
	Long: `Opens the URL in a browser session, snapshots the rendered DOM with computed
visibility, and reads it from start to finish. The session is closed after
reading unless --keep is given.

Sessions are recorded in browser.session_store. --list prints them and
--close forgets one, both without starting a browser.

Set browser.debugger_url (or VSR_DEBUGGER_URL) to attach to a running Chrome.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBrowse,
}

func init() {
	browseCmd.Flags().BoolVar(&browseShow, "show", false, "Launch a visible browser window")
	browseCmd.Flags().BoolVar(&browseKeep, "keep", false, "Keep the session recorded after reading")
	browseCmd.Flags().BoolVar(&browseList, "list", false, "List recorded sessions")
	browseCmd.Flags().StringVar(&browseClose, "close", "", "Forget a recorded session by ID")
}

func runBrowse(cmd *cobra.Command, args []string) error {
	switch {
	case browseList:
		return listSessions(cmd.OutOrStdout())
	case browseClose != "":
		return closeSession(cmd.OutOrStdout(), browseClose)
	case len(args) == 0:
		return errors.New("browse needs a URL, --list or --close")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	bc := cfg.Browser
	if browseShow {
		bc.Headless = false
	}
	sm := browser.NewSessionManager(bc)
	if err := sm.Start(ctx); err != nil {
		return fmt.Errorf("failed to start browser: %w", err)
	}
	defer func() {
		if err := sm.Shutdown(context.Background()); err != nil {
			logger.Warn("Browser shutdown failed", zap.Error(err))
		}
	}()
	logger.Debug("Browser connected", zap.String("control_url", sm.ControlURL()), zap.Bool("connected", sm.IsConnected()))

	doc, session, err := sm.Load(ctx, args[0])
	if err != nil {
		return err
	}
	logger.Info("Page loaded", zap.String("session", session.ID), zap.String("title", session.Title))
	if !browseKeep {
		defer func() {
			if err := sm.CloseSession(session.ID); err != nil {
				logger.Warn("Close session failed", zap.String("session", session.ID), zap.Error(err))
			}
		}()
	}

	e, err := startReader(ctx, doc)
	if err != nil {
		return err
	}
	defer e.Stop(ctx)

	phrases, _, err := transcript.Capture(ctx, e, transcript.CaptureOptions{
		MaxSteps:   cfg.Reader.MaxSteps,
		StopPhrase: cfg.Reader.StopPhrase,
	})
	if err != nil {
		return err
	}
	return printRun(cmd.OutOrStdout(), &transcript.Run{Name: session.Title, Source: session.URL, Phrases: phrases}, true)
}

// offlineSessions returns a manager holding the recorded sessions only.
func offlineSessions() (*browser.SessionManager, error) {
	if cfg.Browser.SessionStore == "" {
		return nil, errors.New("browser.session_store is not set")
	}
	sm := browser.NewSessionManager(cfg.Browser)
	if err := sm.LoadSessions(); err != nil {
		return nil, fmt.Errorf("load sessions: %w", err)
	}
	return sm, nil
}

func listSessions(w io.Writer) error {
	sm, err := offlineSessions()
	if err != nil {
		return err
	}
	for _, s := range sm.List() {
		fmt.Fprintf(w, "%s  %s  %-9s %s\n", s.CreatedAt.Format("2006-01-02 15:04:05"), s.ID, s.Status, s.URL)
	}
	return nil
}

func closeSession(w io.Writer, id string) error {
	sm, err := offlineSessions()
	if err != nil {
		return err
	}
	if err := sm.CloseSession(id); err != nil {
		return err
	}
	fmt.Fprintf(w, "closed %s\n", id)
	return nil
}
