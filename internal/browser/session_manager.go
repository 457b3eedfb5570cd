// Package browser loads pages in Chrome through go-rod and snapshots them into
// host documents the virtual screen reader can walk.
package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/google/uuid"

	"vsr/internal/dom"
	"vsr/internal/logging"
)

// ErrUnknownSession is returned for session IDs the manager does not track.
var ErrUnknownSession = errors.New("unknown session")

// Session describes the public metadata for a tracked page.
type Session struct {
	ID         string    `json:"id"`
	TargetID   string    `json:"target_id,omitempty"`
	URL        string    `json:"url,omitempty"`
	Title      string    `json:"title,omitempty"`
	Status     string    `json:"status,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	LastActive time.Time `json:"last_active"`
}

type sessionRecord struct {
	meta Session
	page *rod.Page
}

// Config holds browser configuration.
type Config struct {
	DebuggerURL         string   `yaml:"debugger_url" json:"debugger_url"`
	Launch              []string `yaml:"launch,omitempty" json:"launch,omitempty"`
	Headless            bool     `yaml:"headless" json:"headless"`
	ViewportWidth       int      `yaml:"viewport_width" json:"viewport_width"`
	ViewportHeight      int      `yaml:"viewport_height" json:"viewport_height"`
	NavigationTimeoutMs int      `yaml:"navigation_timeout_ms" json:"navigation_timeout_ms"`
	SessionStore        string   `yaml:"session_store" json:"session_store"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Headless:            true,
		ViewportWidth:       1280,
		ViewportHeight:      800,
		NavigationTimeoutMs: 30000,
	}
}

// GetViewportWidth returns viewport width.
func (c Config) GetViewportWidth() int {
	if c.ViewportWidth == 0 {
		return 1280
	}
	return c.ViewportWidth
}

// GetViewportHeight returns viewport height.
func (c Config) GetViewportHeight() int {
	if c.ViewportHeight == 0 {
		return 800
	}
	return c.ViewportHeight
}

// NavigationTimeout returns the navigation timeout.
func (c Config) NavigationTimeout() time.Duration {
	if c.NavigationTimeoutMs == 0 {
		return 30 * time.Second
	}
	return time.Duration(c.NavigationTimeoutMs) * time.Millisecond
}

// SessionManager owns the Chrome connection and tracks open pages.
type SessionManager struct {
	cfg        Config
	mu         sync.RWMutex
	browser    *rod.Browser
	sessions   map[string]*sessionRecord
	controlURL string
}

// NewSessionManager creates a new session manager.
func NewSessionManager(cfg Config) *SessionManager {
	return &SessionManager{
		cfg:      cfg,
		sessions: make(map[string]*sessionRecord),
	}
}

// Start connects to an existing Chrome or launches a new one.
func (m *SessionManager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.browser != nil {
		if _, err := m.browser.Version(); err == nil {
			return nil
		}
		logging.BrowserWarn("stale browser connection detected, reconnecting")
		_ = m.browser.Close()
		m.browser = nil
		m.controlURL = ""
		m.sessions = make(map[string]*sessionRecord)
	}

	if err := m.loadSessionsLocked(); err != nil {
		return fmt.Errorf("load sessions: %w", err)
	}

	controlURL, err := m.resolveControlURL()
	if err != nil {
		return err
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("connect to chrome: %w", err)
	}

	m.browser = browser
	m.controlURL = controlURL
	logging.Browser("connected to %s", controlURL)
	return nil
}

func (m *SessionManager) resolveControlURL() (string, error) {
	if m.cfg.DebuggerURL != "" {
		return m.cfg.DebuggerURL, nil
	}
	if len(m.cfg.Launch) > 0 {
		bin := m.cfg.Launch[0]
		launch := launcher.New().Bin(bin).Headless(m.cfg.Headless)
		for _, rawFlag := range m.cfg.Launch[1:] {
			name, val, hasVal := strings.Cut(strings.TrimLeft(rawFlag, "-"), "=")
			if hasVal {
				launch = launch.Set(flags.Flag(name), val)
			} else {
				launch = launch.Set(flags.Flag(name))
			}
		}
		url, err := launch.Launch()
		if err == nil {
			return url, nil
		}
		// Retry without the extra flags.
		alt, altErr := launcher.New().Bin(bin).Headless(m.cfg.Headless).Launch()
		if altErr != nil {
			return "", fmt.Errorf("launch chrome: %w (fallback: %v)", err, altErr)
		}
		return alt, nil
	}
	url, err := launcher.New().Headless(m.cfg.Headless).Launch()
	if err != nil {
		return "", fmt.Errorf("no debugger_url and failed to launch: %w", err)
	}
	return url, nil
}

func (m *SessionManager) ensureStarted(ctx context.Context) error {
	m.mu.RLock()
	if m.browser != nil {
		m.mu.RUnlock()
		return nil
	}
	m.mu.RUnlock()
	return m.Start(ctx)
}

// ControlURL returns the WebSocket debugger URL.
func (m *SessionManager) ControlURL() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.controlURL
}

// IsConnected returns whether the browser is connected.
func (m *SessionManager) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.browser != nil
}

// Shutdown closes tracked pages and the browser.
func (m *SessionManager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, record := range m.sessions {
		if record.page != nil {
			_ = record.page.Close()
		}
		delete(m.sessions, id)
	}

	var err error
	if m.browser != nil {
		err = m.browser.Close()
		m.browser = nil
	}
	m.controlURL = ""
	logging.Browser("browser shut down")
	return err
}

// List returns metadata for all known sessions, oldest first.
func (m *SessionManager) List() []Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	results := make([]Session, 0, len(m.sessions))
	for _, record := range m.sessions {
		results = append(results, record.meta)
	}
	sort.Slice(results, func(i, j int) bool {
		if !results[i].CreatedAt.Equal(results[j].CreatedAt) {
			return results[i].CreatedAt.Before(results[j].CreatedAt)
		}
		return results[i].ID < results[j].ID
	})
	return results
}

// LoadSessions reads persisted session metadata without connecting to a
// browser. Sessions already tracked are kept.
func (m *SessionManager) LoadSessions() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadSessionsLocked()
}

// CreateSession opens url in a fresh incognito page and tracks it.
func (m *SessionManager) CreateSession(ctx context.Context, url string) (*Session, error) {
	if err := m.ensureStarted(ctx); err != nil {
		return nil, err
	}
	m.mu.RLock()
	browser := m.browser
	m.mu.RUnlock()
	if browser == nil {
		return nil, errors.New("browser not connected")
	}

	incognito, err := browser.Incognito()
	if err != nil {
		return nil, fmt.Errorf("incognito context: %w", err)
	}
	page, err := incognito.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}

	if err := (proto.EmulationSetDeviceMetricsOverride{
		Width:             m.cfg.GetViewportWidth(),
		Height:            m.cfg.GetViewportHeight(),
		DeviceScaleFactor: 1.0,
	}).Call(page); err != nil {
		logging.BrowserWarn("failed to set viewport: %v", err)
	}

	meta := Session{
		ID:         uuid.NewString(),
		TargetID:   string(page.TargetID),
		URL:        url,
		Status:     "active",
		CreatedAt:  time.Now(),
		LastActive: time.Now(),
	}
	m.mu.Lock()
	m.sessions[meta.ID] = &sessionRecord{meta: meta, page: page}
	m.mu.Unlock()

	if err := m.Navigate(ctx, meta.ID, url); err != nil {
		return nil, err
	}
	if err := m.persistSessions(); err != nil {
		logging.BrowserWarn("persist sessions: %v", err)
	}
	meta, _ = m.GetSession(meta.ID)
	return &meta, nil
}

// Page returns the underlying Rod page for a session.
func (m *SessionManager) Page(sessionID string) (*rod.Page, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.sessions[sessionID]
	if !ok {
		return nil, false
	}
	return rec.page, true
}

// GetSession returns session metadata.
func (m *SessionManager) GetSession(sessionID string) (Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.sessions[sessionID]
	if !ok {
		return Session{}, false
	}
	return rec.meta, true
}

// UpdateMetadata updates session metadata.
func (m *SessionManager) UpdateMetadata(sessionID string, updater func(Session) Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec, ok := m.sessions[sessionID]; ok {
		rec.meta = updater(rec.meta)
	}
}

// Navigate loads url in the session's page and waits for the load event.
func (m *SessionManager) Navigate(ctx context.Context, sessionID, url string) error {
	page, ok := m.Page(sessionID)
	if !ok || page == nil {
		return fmt.Errorf("%w: %s", ErrUnknownSession, sessionID)
	}
	p := page.Context(ctx).Timeout(m.cfg.NavigationTimeout())
	if err := p.Navigate(url); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("wait load %s: %w", url, err)
	}
	title := ""
	if info, err := page.Info(); err == nil {
		title = info.Title
	}
	m.UpdateMetadata(sessionID, func(s Session) Session {
		s.URL = url
		s.Title = coalesceNonEmpty(title, s.Title)
		s.LastActive = time.Now()
		return s
	})
	logging.BrowserDebug("session %s navigated to %s", sessionID, url)
	return nil
}

// snapshotJS serialises the page with the computed display and visibility of
// every element written inline, so the snapshot hides what the page hides.
const snapshotJS = `() => {
	const clone = document.documentElement.cloneNode(true);
	const live = document.documentElement.querySelectorAll('*');
	const copies = clone.querySelectorAll('*');
	for (let i = 0; i < live.length && i < copies.length; i++) {
		const cs = window.getComputedStyle(live[i]);
		const parts = [];
		if (cs.display === 'none') parts.push('display:none');
		if (cs.visibility === 'hidden' || cs.visibility === 'collapse') parts.push('visibility:hidden');
		else if (live[i].style && live[i].style.visibility === 'visible') parts.push('visibility:visible');
		if (parts.length) copies[i].setAttribute('style', parts.join(';'));
		else copies[i].removeAttribute('style');
		if ('value' in live[i] && typeof live[i].value === 'string' && live[i].tagName === 'INPUT') {
			copies[i].setAttribute('value', live[i].value);
		}
		if (live[i].checked === true) copies[i].setAttribute('checked', '');
	}
	clone.querySelectorAll('script,style,noscript').forEach(n => n.remove());
	return '<!DOCTYPE html>' + clone.outerHTML;
}`

// Snapshot captures the session's current page as a host document.
func (m *SessionManager) Snapshot(ctx context.Context, sessionID string) (*dom.Document, error) {
	page, ok := m.Page(sessionID)
	if !ok || page == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSession, sessionID)
	}
	timer := logging.StartTimer(logging.CategoryBrowser, "Snapshot")
	defer timer.Stop()

	res, err := page.Context(ctx).Evaluate(&rod.EvalOptions{JS: snapshotJS, ByValue: true})
	if err != nil || res == nil {
		logging.BrowserError("snapshot of session %s failed: %v", sessionID, err)
		return nil, fmt.Errorf("snapshot failed: %w", err)
	}
	doc, err := dom.ParseString(res.Value.Str())
	if err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	m.UpdateMetadata(sessionID, func(s Session) Session {
		s.LastActive = time.Now()
		return s
	})
	return doc, nil
}

// Load opens url in a new session and returns its snapshot.
func (m *SessionManager) Load(ctx context.Context, url string) (*dom.Document, *Session, error) {
	sess, err := m.CreateSession(ctx, url)
	if err != nil {
		return nil, nil, err
	}
	doc, err := m.Snapshot(ctx, sess.ID)
	if err != nil {
		return nil, sess, err
	}
	return doc, sess, nil
}

// CloseSession closes the session's page and forgets it.
func (m *SessionManager) CloseSession(sessionID string) error {
	m.mu.Lock()
	rec, ok := m.sessions[sessionID]
	delete(m.sessions, sessionID)
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSession, sessionID)
	}
	if rec.page != nil {
		_ = rec.page.Close()
	}
	return m.persistSessions()
}

// persistSessions writes session metadata to disk.
func (m *SessionManager) persistSessions() error {
	if m.cfg.SessionStore == "" {
		return nil
	}
	sessions := m.List()
	data, err := json.MarshalIndent(sessions, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(m.cfg.SessionStore), 0755); err != nil {
		return err
	}
	if err := os.WriteFile(m.cfg.SessionStore, data, 0644); err != nil {
		return err
	}
	logging.BrowserDebug("persisted %d sessions to %s", len(sessions), m.cfg.SessionStore)
	return nil
}

// loadSessionsLocked loads persisted metadata. Caller must hold lock.
// Restored sessions have no page until they are navigated again.
func (m *SessionManager) loadSessionsLocked() error {
	if m.cfg.SessionStore == "" {
		return nil
	}
	data, err := os.ReadFile(m.cfg.SessionStore)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	var sessions []Session
	if err := json.Unmarshal(data, &sessions); err != nil {
		return err
	}
	for _, s := range sessions {
		if _, exists := m.sessions[s.ID]; exists {
			continue
		}
		s.Status = "detached"
		m.sessions[s.ID] = &sessionRecord{meta: s}
	}
	return nil
}

func coalesceNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
