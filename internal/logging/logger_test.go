package logging

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

// TestAllCategoriesLog tests that all categories create log files when debug mode is on
func TestAllCategoriesLog(t *testing.T) {
	tempDir := t.TempDir()
	t.Cleanup(func() { _ = Initialize(Config{}) })

	if err := Initialize(Config{DebugMode: true, Level: "debug", Dir: tempDir}); err != nil {
		t.Fatalf("Failed to initialize logging: %v", err)
	}
	if !IsDebugMode() {
		t.Error("Expected debug mode to be enabled")
	}

	categories := []Category{
		CategoryBoot, CategoryEngine, CategoryTree, CategoryLive, CategoryInput,
		CategoryBrowser, CategoryStore, CategoryWatch, CategoryCLI,
	}
	for _, cat := range categories {
		Get(cat).Info("test message for %s", cat)
		Get(cat).Debug("debug message for %s", cat)
	}
	CloseAll()

	date := time.Now().Format("2006-01-02")
	for _, cat := range categories {
		path := filepath.Join(tempDir, date+"_"+string(cat)+".log")
		data, err := os.ReadFile(path)
		if err != nil {
			t.Errorf("Expected log file for category %s: %v", cat, err)
			continue
		}
		if !strings.Contains(string(data), "test message for "+string(cat)) {
			t.Errorf("Log file for %s missing message, got %q", cat, data)
		}
	}
}

// TestDisabledLoggingIsNoop verifies nothing is written in production mode
func TestDisabledLoggingIsNoop(t *testing.T) {
	tempDir := t.TempDir()
	if err := Initialize(Config{DebugMode: false, Dir: tempDir}); err != nil {
		t.Fatalf("Failed to initialize logging: %v", err)
	}
	if IsCategoryEnabled(CategoryEngine) {
		t.Error("Expected categories to be disabled without debug mode")
	}
	Engine("should not appear")
	CloseAll()

	entries, err := os.ReadDir(tempDir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected no log files, found %d", len(entries))
	}
}

// TestCategoryFilter verifies explicitly disabled categories are silenced
func TestCategoryFilter(t *testing.T) {
	t.Cleanup(func() { _ = Initialize(Config{}) })
	if err := Initialize(Config{
		DebugMode:  true,
		Dir:        t.TempDir(),
		Categories: map[string]bool{"live": false},
	}); err != nil {
		t.Fatalf("Failed to initialize logging: %v", err)
	}
	if IsCategoryEnabled(CategoryLive) {
		t.Error("live should be disabled")
	}
	if !IsCategoryEnabled(CategoryTree) {
		t.Error("categories missing from the filter default to enabled")
	}
}

// TestConcurrentGet ensures loggers are created once under contention
func TestConcurrentGet(t *testing.T) {
	t.Cleanup(func() { _ = Initialize(Config{}) })
	if err := Initialize(Config{DebugMode: true, Dir: t.TempDir()}); err != nil {
		t.Fatalf("Failed to initialize logging: %v", err)
	}

	var wg sync.WaitGroup
	got := make([]*Logger, 20)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = Get(CategoryStore)
		}(i)
	}
	wg.Wait()
	for i := 1; i < len(got); i++ {
		if got[i] != got[0] {
			t.Fatalf("Get returned different loggers for the same category")
		}
	}
}

func TestTimerThreshold(t *testing.T) {
	timer := StartTimer(CategoryEngine, "op")
	if elapsed := timer.StopWithThreshold(time.Hour); elapsed <= 0 {
		t.Errorf("Expected positive elapsed time, got %v", elapsed)
	}
}

// TestHelpersRouteToCategories checks each helper writes to its own file
func TestHelpersRouteToCategories(t *testing.T) {
	tempDir := t.TempDir()
	t.Cleanup(func() { _ = Initialize(Config{}) })
	if err := Initialize(Config{DebugMode: true, Level: "debug", Dir: tempDir}); err != nil {
		t.Fatalf("Failed to initialize logging: %v", err)
	}

	Boot("boot info")
	BootDebug("boot debug")
	BootWarn("boot warn")
	LiveDebug("live debug")
	BrowserError("browser error")
	StoreError("store error")
	CLIDebug("cli debug")
	CloseAll()

	want := map[Category][]string{
		CategoryBoot:    {"boot info", "boot debug", "boot warn"},
		CategoryLive:    {"live debug"},
		CategoryBrowser: {"browser error"},
		CategoryStore:   {"store error"},
		CategoryCLI:     {"cli debug"},
	}
	date := time.Now().Format("2006-01-02")
	for cat, msgs := range want {
		data, err := os.ReadFile(filepath.Join(tempDir, date+"_"+string(cat)+".log"))
		if err != nil {
			t.Errorf("Expected log file for category %s: %v", cat, err)
			continue
		}
		for _, msg := range msgs {
			if !strings.Contains(string(data), msg) {
				t.Errorf("%s log missing %q", cat, msg)
			}
		}
	}
}
