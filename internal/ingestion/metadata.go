package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Source kinds recorded in Metadata
const (
	SourceURL  = "url"
	SourceFile = "file"
)

// Output file names written by SaveJob
const (
	JobTextFile = "job_posting.cleaned.txt"
	JobMetaFile = "job_posting.meta.json"
)

// Metadata records where an ingested posting came from and fingerprints its
// cleaned text so later runs can tell whether the posting changed.
type Metadata struct {
	Source    string    `json:"source"`
	URL       string    `json:"url,omitempty"`
	Path      string    `json:"path,omitempty"`
	Platform  string    `json:"platform,omitempty"`
	Rendered  bool      `json:"rendered,omitempty"`
	FetchedAt time.Time `json:"fetched_at"`
	Hash      string    `json:"hash"`
	Words     int       `json:"words"`
}

func newMetadata(source, text string) *Metadata {
	return &Metadata{
		Source:    source,
		FetchedAt: time.Now().UTC().Truncate(time.Second),
		Hash:      fingerprint(text),
		Words:     len(strings.Fields(text)),
	}
}

// fingerprint is the hex SHA-256 of text
func fingerprint(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Matches reports whether text is the same posting this metadata describes.
func (m *Metadata) Matches(text string) bool {
	return m.Hash == fingerprint(text)
}

// SaveJob writes the cleaned posting and its metadata into dir, creating it
// if needed, and returns both paths.
func SaveJob(dir, text string, m *Metadata) (textPath, metaPath string, err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("creating %s: %w", dir, err)
	}
	meta, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", "", fmt.Errorf("encoding metadata: %w", err)
	}

	textPath = filepath.Join(dir, JobTextFile)
	if err := os.WriteFile(textPath, []byte(text), 0o644); err != nil {
		return "", "", fmt.Errorf("writing %s: %w", textPath, err)
	}
	metaPath = filepath.Join(dir, JobMetaFile)
	if err := os.WriteFile(metaPath, append(meta, '\n'), 0o644); err != nil {
		return "", "", fmt.Errorf("writing %s: %w", metaPath, err)
	}
	return textPath, metaPath, nil
}

// LoadJobMeta reads metadata written by SaveJob.
func LoadJobMeta(dir string) (*Metadata, error) {
	raw, err := os.ReadFile(filepath.Join(dir, JobMetaFile))
	if err != nil {
		return nil, err
	}
	var m Metadata
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", JobMetaFile, err)
	}
	return &m, nil
}
