// Package storage keeps recorded runs and rendered fields on disk.
//
// Each entry is a directory under the base directory holding a
// metadata.json file plus either trajectory.csv (runs) or a field image
// (renders).
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/chaosfield/internal/dynamo"
	"github.com/san-kum/chaosfield/internal/export"
	"github.com/san-kum/chaosfield/internal/field"
	"github.com/san-kum/chaosfield/internal/sim"
)

const (
	KindRun    = "run"
	KindRender = "render"

	metadataFile   = "metadata.json"
	trajectoryFile = "trajectory.csv"
)

var trajectoryHeader = []string{"step", "time", "angle1", "momentum1", "angle2", "momentum2"}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// Metadata describes one stored entry.
type Metadata struct {
	ID        string             `json:"id"`
	Kind      string             `json:"kind"`
	Timestamp time.Time          `json:"timestamp"`
	Params    dynamo.Params      `json:"params"`
	Dt        float64            `json:"dt"`
	Angles    [2]float64         `json:"angles"`
	Steps     int                `json:"steps,omitempty"`
	Epsilon   float64            `json:"epsilon,omitempty"`
	View      *field.Viewport    `json:"view,omitempty"`
	Backend   string             `json:"backend,omitempty"`
	Image     string             `json:"image,omitempty"`
	Metrics   map[string]float64 `json:"metrics,omitempty"`
}

func (s *Store) newEntry(kind string) (string, string, error) {
	id := fmt.Sprintf("%s_%d", kind, time.Now().UnixNano())
	dir := filepath.Join(s.baseDir, id)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", "", err
	}
	return id, dir, nil
}

// SaveRun stores a recorded trajectory. meta.ID, Kind and Timestamp are
// filled in.
func (s *Store) SaveRun(meta Metadata, result *sim.Result) (string, error) {
	id, dir, err := s.newEntry(KindRun)
	if err != nil {
		return "", err
	}
	meta.ID, meta.Kind, meta.Timestamp = id, KindRun, time.Now()
	meta.Steps = result.StepsTaken
	if meta.Metrics == nil {
		meta.Metrics = result.Metrics
	}
	if err := writeMetadata(dir, meta); err != nil {
		return "", err
	}
	if err := writeTrajectory(filepath.Join(dir, trajectoryFile), result.Snapshots); err != nil {
		return "", err
	}
	dynamo.Logger().Info("run saved", "id", id, "snapshots", len(result.Snapshots))
	return id, nil
}

// SaveRender stores a field image in the given format.
func (s *Store) SaveRender(meta Metadata, img image.Image, format export.Format) (string, error) {
	id, dir, err := s.newEntry(KindRender)
	if err != nil {
		return "", err
	}
	meta.ID, meta.Kind, meta.Timestamp = id, KindRender, time.Now()
	meta.Image = "field." + string(format)
	if err := export.Save(filepath.Join(dir, meta.Image), img); err != nil {
		return "", err
	}
	if err := writeMetadata(dir, meta); err != nil {
		return "", err
	}
	dynamo.Logger().Info("render saved", "id", id, "image", meta.Image)
	return id, nil
}

func writeMetadata(dir string, meta Metadata) error {
	f, err := os.Create(filepath.Join(dir, metadataFile))
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func writeTrajectory(path string, snaps []sim.Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(trajectoryHeader); err != nil {
		return err
	}
	for _, snap := range snaps {
		row := []string{
			strconv.Itoa(snap.Step),
			strconv.FormatFloat(snap.Time, 'g', -1, 64),
			strconv.FormatFloat(snap.Pair[0].Angle, 'g', -1, 64),
			strconv.FormatFloat(snap.Pair[0].Momentum, 'g', -1, 64),
			strconv.FormatFloat(snap.Pair[1].Angle, 'g', -1, 64),
			strconv.FormatFloat(snap.Pair[1].Momentum, 'g', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns all readable entries, oldest first.
func (s *Store) List() ([]Metadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Metadata{}, nil
		}
		return nil, err
	}

	out := make([]Metadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		out = append(out, *meta)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (s *Store) Load(id string) (*Metadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, id, metadataFile))
	if err != nil {
		return nil, err
	}
	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("metadata %s: %w", id, err)
	}
	return &meta, nil
}

// LoadTrajectory reads a run back as snapshots. Lengths and masses come
// from the stored parameters.
func (s *Store) LoadTrajectory(id string) ([]sim.Snapshot, error) {
	meta, err := s.Load(id)
	if err != nil {
		return nil, err
	}
	if meta.Kind != KindRun {
		return nil, fmt.Errorf("%s is a %s, not a run", id, meta.Kind)
	}

	f, err := os.Open(filepath.Join(s.baseDir, id, trajectoryFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(trajectoryHeader)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []sim.Snapshot{}, nil
	}

	base := meta.Params.Pair([2]float64{})
	snaps := make([]sim.Snapshot, 0, len(records)-1)
	for line, rec := range records[1:] {
		step, err := strconv.Atoi(rec[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line+2, err)
		}
		var v [5]float64
		for i := range v {
			if v[i], err = strconv.ParseFloat(rec[i+1], 64); err != nil {
				return nil, fmt.Errorf("line %d: %w", line+2, err)
			}
		}
		pair := base
		pair[0].Angle, pair[0].Momentum = v[1], v[2]
		pair[1].Angle, pair[1].Momentum = v[3], v[4]
		snaps = append(snaps, sim.Snapshot{Step: step, Time: v[0], Pair: pair})
	}
	return snaps, nil
}

// LoadImage decodes a stored render.
func (s *Store) LoadImage(id string) (image.Image, error) {
	meta, err := s.Load(id)
	if err != nil {
		return nil, err
	}
	if meta.Image == "" {
		return nil, fmt.Errorf("%s has no image", id)
	}
	f, err := os.Open(filepath.Join(s.baseDir, id, meta.Image))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := export.Decode(f)
	return img, err
}
