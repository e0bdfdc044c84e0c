package repository

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

const tempPrefix = ".tmp-"

// SweepTempFiles removes temp files left in the document root by writes that
// never completed, if they are older than maxAge. It returns the number of
// files removed.
func (r *FileDocumentRepository) SweepTempFiles(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(r.Root)
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, e := range entries {
		if !e.Type().IsRegular() || !strings.HasPrefix(e.Name(), tempPrefix) {
			continue
		}
		info, err := e.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(r.Root, e.Name())); err == nil {
			removed++
		}
	}
	return removed, nil
}

// StartTempFileSweeper runs SweepTempFiles every interval until ctx is done.
func StartTempFileSweeper(
	ctx context.Context,
	repo *FileDocumentRepository,
	interval time.Duration,
	maxAge time.Duration,
	log *zap.Logger,
) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := repo.SweepTempFiles(maxAge)
				if err != nil {
					log.Error("failed to sweep temp files", zap.Error(err))
					continue
				}
				if n > 0 {
					log.Info("swept stale temp files", zap.Int("removed", n))
				}
			}
		}
	}()
}
