package evidence

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// hashSizeCap is the largest file the snapshot will content-hash.
// Bigger files still get an existence fact, just no hash.
const hashSizeCap = 4 << 20

// skipDirs are directories excluded from the snapshot.
var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"__pycache__":  true,
	"dist":         true,
	"build":        true,
	".guardrail":   true,
}

// Snapshot walks projectRoot and returns existence and content facts keyed
// by slash-separated relative path. An unreadable root yields (nil, false)
// rather than an error: missing evidence degrades validation, it never
// aborts it.
func Snapshot(projectRoot string) (map[string]FileFact, bool) {
	info, err := os.Stat(projectRoot)
	if err != nil || !info.IsDir() {
		return nil, false
	}

	facts := make(map[string]FileFact)
	_ = filepath.WalkDir(projectRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable subtree: record nothing for it.
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if skipDirs[d.Name()] && path != projectRoot {
				return filepath.SkipDir
			}
			return nil
		}
		rel, relErr := filepath.Rel(projectRoot, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		fact := FileFact{Exists: true}
		if fi, statErr := d.Info(); statErr == nil {
			fact.ModTime = fi.ModTime()
			if fi.Size() <= hashSizeCap {
				fact.SHA256 = hashFile(path)
			}
		}
		facts[rel] = fact
		return nil
	})

	return facts, true
}

// StatTemplate returns the fact for a declared template path. Relative
// paths are resolved against projectRoot. Missing paths report
// non-existence, never an error.
func StatTemplate(projectRoot, templatePath string) *FileFact {
	if templatePath == "" {
		return nil
	}
	path := templatePath
	if !filepath.IsAbs(path) {
		path = filepath.Join(projectRoot, path)
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return &FileFact{Exists: false}
	}
	fact := &FileFact{Exists: true, ModTime: info.ModTime()}
	if info.Size() <= hashSizeCap {
		fact.SHA256 = hashFile(path)
	}
	return fact
}

// hashFile returns the hex SHA-256 of a file, or "" if it cannot be read.
func hashFile(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return ""
	}
	return hex.EncodeToString(h.Sum(nil))
}

// BaseNames returns the unique file base names present in the snapshot,
// sorted lexically. Used for near-miss suggestions.
func BaseNames(files map[string]FileFact) []string {
	seen := make(map[string]bool, len(files))
	for path, fact := range files {
		if !fact.Exists {
			continue
		}
		seen[path[strings.LastIndex(path, "/")+1:]] = true
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	// Deterministic order for deterministic suggestions.
	sort.Strings(names)
	return names
}
