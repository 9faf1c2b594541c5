package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/chaosfield/internal/sim"
)

// ExportData is the JSON document written by ExportJSON.
type ExportData struct {
	Metadata  Metadata       `json:"metadata"`
	Snapshots []sim.Snapshot `json:"snapshots,omitempty"`
}

// ExportJSON writes an entry, with its trajectory for runs, as indented JSON.
func (s *Store) ExportJSON(w io.Writer, id string) error {
	meta, err := s.Load(id)
	if err != nil {
		return err
	}
	data := ExportData{Metadata: *meta}
	if meta.Kind == KindRun {
		if data.Snapshots, err = s.LoadTrajectory(id); err != nil {
			return err
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
