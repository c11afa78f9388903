// Package manifest records the files a generation run wrote so the next run can
// remove the ones it no longer produces.
package manifest

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"sort"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the manifest name at the module root.
const DefaultFile = ".dtogen.yaml"

// FormatVersion is written into every manifest.
const FormatVersion = 1

// Entry describes one generated file.
type Entry struct {
	File      string `yaml:"file" json:"file"` // relative to the module root, slash separated
	Namespace string `yaml:"namespace" json:"namespace"`
	Hint      string `yaml:"hint" json:"hint"`
	Source    string `yaml:"source" json:"source"`
	SHA256    string `yaml:"sha256" json:"sha256"`
}

// Manifest tracks generated files.
type Manifest struct {
	Version int     `yaml:"version" json:"version"`
	Files   []Entry `yaml:"files" json:"files"`
}

// Load reads a manifest from the provided path. If the file does not exist,
// an empty manifest is returned.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &Manifest{Version: FormatVersion}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read manifest")
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(err, "unmarshal manifest")
	}
	if m.Version > FormatVersion {
		return nil, errors.Newf("manifest version %d is newer than supported version %d", m.Version, FormatVersion)
	}

	return &m, nil
}

// Save writes the manifest to the provided path, creating parent directories as needed.
func (m *Manifest) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "create manifest directory")
	}

	m.Version = FormatVersion
	m.sort()
	data, err := yaml.Marshal(m)
	if err != nil {
		return errors.Wrap(err, "marshal manifest")
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(err, "write manifest")
	}

	return nil
}

// Replace swaps the recorded files for entries and returns the previously
// recorded entries that are no longer produced.
func (m *Manifest) Replace(entries []Entry) []Entry {
	stale := m.Stale(entries)
	m.Files = append([]Entry(nil), entries...)
	m.sort()
	return stale
}

// Stale returns recorded entries whose file is absent from entries.
func (m *Manifest) Stale(entries []Entry) []Entry {
	current := make(map[string]bool, len(entries))
	for _, e := range entries {
		current[e.File] = true
	}
	var out []Entry
	for _, e := range m.Files {
		if !current[e.File] {
			out = append(out, e)
		}
	}
	return out
}

// Lookup returns the entry recorded for file.
func (m *Manifest) Lookup(file string) (Entry, bool) {
	for _, e := range m.Files {
		if e.File == file {
			return e, true
		}
	}
	return Entry{}, false
}

func (m *Manifest) sort() {
	sort.Slice(m.Files, func(i, j int) bool { return m.Files[i].File < m.Files[j].File })
}

// Sum returns the hex encoded SHA-256 of content.
func Sum(content []byte) string {
	h := sha256.Sum256(content)
	return hex.EncodeToString(h[:])
}
