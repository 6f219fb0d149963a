package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/nadzzz/proagent/internal/metrics"
)

// Cleanup removes entries directly inside dirs whose modification time is
// older than maxAge and returns how many were removed.
func Cleanup(maxAge time.Duration, dirs ...string) (int, error) {
	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return removed, fmt.Errorf("listing %s: %w", dir, err)
		}
		for _, e := range entries {
			info, err := e.Info()
			if err != nil {
				continue
			}
			if info.ModTime().After(cutoff) {
				continue
			}
			if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
				slog.Warn("cleanup: removing entry failed", "path", filepath.Join(dir, e.Name()), "error", err)
				continue
			}
			removed++
		}
	}
	metrics.CleanupRemovedTotal.Add(float64(removed))
	return removed, nil
}

// RunCleanup calls Cleanup every interval until ctx is done.
func RunCleanup(ctx context.Context, interval, maxAge time.Duration, dirs ...string) error {
	if interval <= 0 || maxAge <= 0 {
		<-ctx.Done()
		return nil
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n, err := Cleanup(maxAge, dirs...)
			if err != nil {
				slog.Warn("cleanup failed", "error", err)
				continue
			}
			if n > 0 {
				slog.Info("cleanup removed old files", "count", n, "max_age", maxAge)
			}
		}
	}
}
