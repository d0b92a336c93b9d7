package batch

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// ManifestEntry represents one exported asset in the output manifest.
type ManifestEntry struct {
	Identifier string `json:"identifier"`
	Kind       string `json:"kind"`
	Image      string `json:"image"`
}

// WriteManifest writes the successful results as JSON.
func WriteManifest(path string, results []Result) error {
	entries := make([]ManifestEntry, 0, len(results))
	for _, r := range results {
		if !r.Success {
			continue
		}
		entries = append(entries, ManifestEntry{
			Identifier: r.Identifier,
			Kind:       r.Kind,
			Image:      filepath.ToSlash(r.Output),
		})
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
