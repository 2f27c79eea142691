package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/ljsim/internal/sim"
)

type ExportData struct {
	Run        RunMetadata      `json:"run"`
	Properties []sim.Properties `json:"properties"`
}

// ExportJSON writes a run's metadata and property reports as indented JSON.
func ExportJSON(w io.Writer, meta *RunMetadata, props []sim.Properties) error {
	data := ExportData{Run: *meta, Properties: props}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// Export loads a stored run and writes it as JSON.
func (s *Store) Export(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	props, err := s.LoadProperties(runID)
	if err != nil {
		return err
	}
	return ExportJSON(w, meta, props)
}
