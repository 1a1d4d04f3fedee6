package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
)

const metadataFile = "metadata.json"

type Store struct {
	baseDir string
	log     *logrus.Entry
}

func New(baseDir string, log *logrus.Entry) *Store {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Store{baseDir: baseDir, log: log.WithField("store", baseDir)}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID          string             `json:"id"`
	Preset      string             `json:"preset,omitempty"`
	Timestamp   time.Time          `json:"timestamp"`
	Nodes       int                `json:"nodes"`
	NodeGrid    [2]int             `json:"node_grid"`
	Width       int                `json:"width"`
	Height      int                `json:"height"`
	DeltaX      float64            `json:"delta_x"`
	DeltaY      float64            `json:"delta_y"`
	Periodic    [2]bool            `json:"periodic"`
	Species     int                `json:"species"`
	Iteration   int                `json:"iteration"`
	Observables map[string]float64 `json:"observables"`
}

// Create makes a fresh run directory named after prefix and returns its
// id. The directory is filled by the node writers and closed by
// SaveMetadata.
func (s *Store) Create(prefix string) (string, error) {
	runID := fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano())
	if err := os.MkdirAll(s.Dir(runID), 0755); err != nil {
		return "", err
	}
	return runID, nil
}

// Dir is the directory of runID.
func (s *Store) Dir(runID string) string {
	return filepath.Join(s.baseDir, runID)
}

func (s *Store) SaveMetadata(meta RunMetadata) error {
	if meta.ID == "" {
		return fmt.Errorf("storage: metadata without run id")
	}
	f, err := os.Create(filepath.Join(s.Dir(meta.ID), metadataFile))
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

// List returns the metadata of every run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			s.log.WithError(err).Debugf("skipping %s", entry.Name())
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir(runID), metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}
