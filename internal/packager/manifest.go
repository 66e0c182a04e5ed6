package packager

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"

	"github.com/lfaller/clinvar-data-monitor/internal/models"
)

// Entry is one content-addressed file inside a package manifest.
type Entry struct {
	LogicalKey string `json:"logical_key"`
	Path       string `json:"path"`
	Size       int64  `json:"size"`
	SHA256     string `json:"sha256"`
}

// Package is a versioned snapshot of data files plus searchable
// metadata. TopHash is derived from the manifest content alone, so two
// packages with identical entries and metadata share a hash; Revision
// identifies a particular build of the package.
type Package struct {
	Name     string                 `json:"name"`
	Revision string                 `json:"revision"`
	Message  string                 `json:"message,omitempty"`
	Metadata map[string]interface{} `json:"metadata"`
	Entries  []Entry                `json:"entries"`
	TopHash  string                 `json:"top_hash"`
}

// BuildPackage hashes each file and assembles a manifest. The files map
// is logical key -> local path; entries are sorted by logical key so the
// top hash is deterministic.
func BuildPackage(name string, files map[string]string, metadata map[string]interface{}) (*Package, error) {
	entries := make([]Entry, 0, len(files))
	for logicalKey, path := range files {
		entry, err := hashEntry(logicalKey, path)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].LogicalKey < entries[j].LogicalKey
	})

	pkg := &Package{
		Name:     name,
		Revision: uuid.NewString(),
		Metadata: metadata,
		Entries:  entries,
	}

	topHash, err := computeTopHash(pkg)
	if err != nil {
		return nil, err
	}
	pkg.TopHash = topHash

	return pkg, nil
}

func hashEntry(logicalKey, path string) (Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Entry{}, &models.NotFoundError{Path: path}
		}
		return Entry{}, err
	}
	defer func() {
		_ = file.Close()
	}()

	info, err := file.Stat()
	if err != nil {
		return Entry{}, err
	}

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return Entry{}, fmt.Errorf("failed to hash %s: %w", path, err)
	}

	return Entry{
		LogicalKey: logicalKey,
		Path:       filepath.Base(path),
		Size:       info.Size(),
		SHA256:     hex.EncodeToString(hash.Sum(nil)),
	}, nil
}

// computeTopHash hashes the canonical JSON of the manifest content.
// Revision and Message are excluded: the hash addresses content, not a
// particular build.
func computeTopHash(pkg *Package) (string, error) {
	canonical := struct {
		Name     string                 `json:"name"`
		Metadata map[string]interface{} `json:"metadata"`
		Entries  []Entry                `json:"entries"`
	}{
		Name:     pkg.Name,
		Metadata: pkg.Metadata,
		Entries:  pkg.Entries,
	}

	// encoding/json writes map keys in sorted order, so this is stable.
	data, err := json.Marshal(canonical)
	if err != nil {
		return "", fmt.Errorf("failed to serialize manifest: %w", err)
	}

	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
