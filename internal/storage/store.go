package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
)

const (
	metadataFile    = "metadata.json"
	expectFile      = "expect.csv"
	measurementFile = "measurement.csv"
)

var ErrNoSeries = errors.New("storage: run has no such series")

type Store struct {
	baseDir string
	now     func() time.Time
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, now: time.Now}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID          string             `json:"id"`
	UUID        string             `json:"uuid"`
	Model       string             `json:"model"`
	Timestamp   time.Time          `json:"timestamp"`
	Solver      string             `json:"solver"`
	Integrator  string             `json:"integrator"`
	NumSites    int                `json:"num_sites"`
	Dim         int                `json:"dim"`
	Duration    float64            `json:"duration"`
	NumPoints   int                `json:"num_points"`
	Dt          float64            `json:"dt"`
	Seed        *uint64            `json:"seed,omitempty"`
	NTraj       int                `json:"ntraj,omitempty"`
	NSubsteps   int                `json:"nsubsteps,omitempty"`
	Params      map[string]float64 `json:"params,omitempty"`
	Metrics     map[string]float64 `json:"metrics"`
	Steps       int                `json:"steps"`
	Rejected    int                `json:"rejected"`
	Expect      []string           `json:"expect"`
	Measurement []string           `json:"measurement,omitempty"`
}

// Series is a table of named columns over a time axis:
// Values[i][k] is column i at Times[k].
type Series struct {
	Times  []float64
	Labels []string
	Values [][]float64
}

// Transpose builds a Series from row-major samples, rows[k][i] being
// column i at times[k].
func Transpose(times []float64, labels []string, rows [][]float64) Series {
	s := Series{Times: times, Labels: labels, Values: make([][]float64, len(labels))}
	for i := range s.Values {
		s.Values[i] = make([]float64, len(rows))
		for k, row := range rows {
			s.Values[i][k] = row[i]
		}
	}
	return s
}

// Column returns the series with the given label.
func (s Series) Column(label string) ([]float64, bool) {
	for i, l := range s.Labels {
		if l == label {
			return s.Values[i], true
		}
	}
	return nil, false
}

// Save writes metadata and the expectation series, plus the measurement
// series when it has columns. The run ID is derived from the model name
// and the current time; the UUID identifies the run across data dirs.
// A failed write removes the run directory.
func (s *Store) Save(meta RunMetadata, expect Series, measurement Series) (string, error) {
	now := s.now()
	runID := fmt.Sprintf("%s_%d", meta.Model, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.UUID = uuid.New().String()
	meta.Timestamp = now
	meta.Expect = expect.Labels
	meta.Measurement = measurement.Labels
	if meta.Metrics == nil {
		meta.Metrics = map[string]float64{}
	}

	if err := writeRun(runDir, meta, expect, measurement); err != nil {
		if rmErr := os.RemoveAll(runDir); rmErr != nil {
			return "", errors.Join(err, rmErr)
		}
		return "", fmt.Errorf("save %s: %w", runID, err)
	}
	return runID, nil
}

func writeRun(runDir string, meta RunMetadata, expect, measurement Series) error {
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return err
	}
	if err := WriteCSV(filepath.Join(runDir, expectFile), expect); err != nil {
		return err
	}
	if len(measurement.Labels) > 0 {
		return WriteCSV(filepath.Join(runDir, measurementFile), measurement)
	}
	return nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteCSV writes a time column followed by one column per label.
func WriteCSV(path string, series Series) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(append([]string{"time"}, series.Labels...)); err != nil {
		return err
	}
	for k, t := range series.Times {
		row := []string{strconv.FormatFloat(t, 'g', -1, 64)}
		for _, col := range series.Values {
			row = append(row, strconv.FormatFloat(col[k], 'g', -1, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns every readable run, oldest first.
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
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadExpect(runID string) (Series, error) {
	return ReadCSV(filepath.Join(s.baseDir, runID, expectFile))
}

func (s *Store) LoadMeasurement(runID string) (Series, error) {
	series, err := ReadCSV(filepath.Join(s.baseDir, runID, measurementFile))
	if errors.Is(err, os.ErrNotExist) {
		return Series{}, fmt.Errorf("%w: %s has no measurement record", ErrNoSeries, runID)
	}
	return series, err
}

// ReadCSV parses a file written by WriteCSV.
func ReadCSV(path string) (Series, error) {
	file, err := os.Open(path)
	if err != nil {
		return Series{}, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return Series{}, err
	}
	if len(records) == 0 {
		return Series{}, fmt.Errorf("%s: missing header", path)
	}

	labels := records[0][1:]
	series := Series{
		Labels: labels,
		Times:  make([]float64, 0, len(records)-1),
		Values: make([][]float64, len(labels)),
	}
	for i := 1; i < len(records); i++ {
		record := records[i]
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return Series{}, fmt.Errorf("%s: row %d: %w", path, i, err)
		}
		series.Times = append(series.Times, t)

		for j := range labels {
			v, err := strconv.ParseFloat(record[j+1], 64)
			if err != nil {
				return Series{}, fmt.Errorf("%s: row %d: %w", path, i, err)
			}
			series.Values[j] = append(series.Values[j], v)
		}
	}
	return series, nil
}
