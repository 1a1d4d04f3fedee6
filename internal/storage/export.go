package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/halosim/internal/metrics"
)

type ExportData struct {
	Run       RunMetadata      `json:"run"`
	Snapshots []ExpectRow      `json:"snapshots"`
	Summary   *metrics.Summary `json:"summary,omitempty"`
}

func ExportJSON(path string, data ExportData) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return WriteJSON(file, data)
}

func WriteJSON(w io.Writer, data ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
