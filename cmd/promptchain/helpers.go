package main

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/snappy-loop/promptchain/internal/storage"
)

// parseSet turns repeated key=value flags into recipe inputs. A later
// value for the same key wins.
func parseSet(pairs []string) (map[string]string, error) {
	inputs := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --set %q, want key=value", pair)
		}
		inputs[key] = value
	}
	return inputs, nil
}

// outputName picks where an image goes: an explicit path, else the recipe's
// suggested name under dir, else a timestamp name under dir.
func outputName(explicit, suggested, dir string, now time.Time) string {
	switch {
	case explicit != "":
		return explicit
	case suggested != "":
		return path.Join(dir, suggested)
	}
	return storage.DefaultNameIn(dir, now)
}
