package driver

import (
	"context"
	"crypto/sha256"
	"os"
	"time"

	"github.com/samber/lo"
)

// DefaultWatchInterval is the polling interval used when none is given.
const DefaultWatchInterval = 300 * time.Millisecond

// Watch polls the files matched by patterns and regenerates the reports of
// files whose contents changed. Polling is enough here; it returns when ctx
// is done.
func (d *Driver) Watch(ctx context.Context, cwd string, patterns []string, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultWatchInterval
	}
	hashes := map[string][32]byte{}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if err := d.regenerateChanged(ctx, cwd, patterns, hashes); err != nil && ctx.Err() == nil {
			d.log.Error("watch: generate failed", "err", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (d *Driver) regenerateChanged(ctx context.Context, cwd string, patterns []string, hashes map[string][32]byte) error {
	paths, err := d.Collect(cwd, patterns)
	if err != nil {
		return err
	}

	current := lo.Keyify(paths)
	for p := range hashes {
		if _, ok := current[p]; !ok {
			delete(hashes, p)
		}
	}

	pending := map[string][32]byte{}
	var changed []string
	for _, p := range paths {
		src, err := os.ReadFile(p)
		if err != nil {
			d.log.Warn("watch: read failed", "file", p, "err", err)
			continue
		}
		h := sha256.Sum256(src)
		if old, ok := hashes[p]; ok && old == h {
			continue
		}
		pending[p] = h
		changed = append(changed, p)
	}
	if len(changed) == 0 {
		return nil
	}

	d.log.Info("regenerating", "files", len(changed))
	results, err := d.Run(ctx, changed)
	// Failed files keep their old hash and are retried on the next poll.
	for _, r := range results {
		if r.Path != "" && r.Err == nil {
			hashes[r.Path] = pending[r.Path]
		}
	}
	return err
}
