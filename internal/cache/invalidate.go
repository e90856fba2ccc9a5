package cache

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ClearDir removes the directory and all contents. It recreates the directory
// afterwards to leave a valid empty cache location.
func ClearDir(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return errors.New("empty dir")
	}
	if err := os.RemoveAll(dir); err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o755)
}

type entryFile struct {
	meta    string
	savedAt time.Time
}

func listEntries(dir string) ([]entryFile, error) {
	var out []entryFile
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".meta.json") {
			return nil
		}
		b, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		var e HTTPEntry
		if err := json.Unmarshal(b, &e); err != nil {
			return nil
		}
		out = append(out, entryFile{meta: path, savedAt: e.SavedAt})
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return out, err
}

func removeEntry(metaPath string) {
	_ = os.Remove(metaPath)
	_ = os.Remove(strings.TrimSuffix(metaPath, ".meta.json") + ".body")
}

// PurgeByAge removes entries saved more than maxAge ago and reports how many
// were removed.
func PurgeByAge(dir string, maxAge time.Duration) (int, error) {
	if maxAge <= 0 {
		return 0, nil
	}
	entries, err := listEntries(dir)
	if err != nil {
		return 0, err
	}
	now := time.Now().UTC()
	removed := 0
	for _, e := range entries {
		if now.Sub(e.savedAt) <= maxAge {
			continue
		}
		removeEntry(e.meta)
		removed++
	}
	return removed, nil
}

// EnforceMaxEntries evicts the oldest entries until at most max remain.
func EnforceMaxEntries(dir string, max int) (int, error) {
	if max <= 0 {
		return 0, nil
	}
	entries, err := listEntries(dir)
	if err != nil || len(entries) <= max {
		return 0, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].savedAt.Before(entries[j].savedAt) })
	excess := len(entries) - max
	for _, e := range entries[:excess] {
		removeEntry(e.meta)
	}
	return excess, nil
}
