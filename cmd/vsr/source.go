package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"vsr/internal/browser"
	"vsr/internal/dom"
	"vsr/internal/transcript"
	"vsr/internal/virtual"
)

// document is a loaded page ready to be read.
type document struct {
	doc    *dom.Document
	source string
	name   string
	close  func()
}

func isURL(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

// loadDocument reads an HTML file, or loads a URL in Chrome and snapshots it.
func loadDocument(ctx context.Context, src string) (*document, error) {
	if !isURL(src) {
		f, err := os.Open(src)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", src, err)
		}
		defer f.Close()
		doc, err := dom.Parse(f)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", src, err)
		}
		return &document{doc: doc, source: src, name: filepath.Base(src), close: func() {}}, nil
	}

	sm := browser.NewSessionManager(cfg.Browser)
	if err := sm.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}
	doc, session, err := sm.Load(ctx, src)
	if err != nil {
		_ = sm.Shutdown(context.Background())
		return nil, err
	}
	logger.Debug("Loaded page", zap.String("url", src), zap.String("title", session.Title))
	return &document{
		doc:    doc,
		source: src,
		name:   src,
		close: func() {
			if err := sm.Shutdown(context.Background()); err != nil {
				logger.Warn("Browser shutdown failed", zap.Error(err))
			}
		},
	}, nil
}

// startReader starts a navigation engine on the configured container.
func startReader(ctx context.Context, doc *dom.Document) (*virtual.Engine, error) {
	container := doc.Body()
	if id := cfg.Reader.ContainerID; id != "" {
		if container = doc.ElementByID(id); container == nil {
			return nil, fmt.Errorf("container #%s not found", id)
		}
	}
	e := virtual.New(doc)
	if err := e.Start(ctx, virtual.StartOptions{Container: container}); err != nil {
		return nil, err
	}
	return e, nil
}

// readSource loads src and reads it from start to finish.
func readSource(ctx context.Context, src string) (*transcript.Run, error) {
	d, err := loadDocument(ctx, src)
	if err != nil {
		return nil, err
	}
	defer d.close()

	e, err := startReader(ctx, d.doc)
	if err != nil {
		return nil, err
	}
	defer e.Stop(ctx)

	phrases, items, err := transcript.Capture(ctx, e, transcript.CaptureOptions{
		MaxSteps:   cfg.Reader.MaxSteps,
		StopPhrase: cfg.Reader.StopPhrase,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src, err)
	}
	return &transcript.Run{Name: d.name, Source: src, Phrases: phrases, ItemTexts: items}, nil
}

func openStore() (*transcript.Store, error) {
	return transcript.NewStore(cfg.Transcript.DatabasePath)
}
