package storage

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func sampleExpect() Series {
	return Series{
		Times:  []float64{0, 0.5, 1},
		Labels: []string{"P_e[0]", "Sz[0]"},
		Values: [][]float64{{0, 0.5, 1}, {1, 0, -1}},
	}
}

func sampleMeasurement() Series {
	return Transpose([]float64{0.5, 1}, []string{"J[0]"}, [][]float64{{0.125}, {-0.375}})
}

func newStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	st := New(dir)
	require.NoError(t, st.Init())
	return st, dir
}

func TestStoreSaveLoad(t *testing.T) {
	st, _ := newStore(t)
	seed := uint64(42)

	runID, err := st.Save(RunMetadata{
		Model:   "rabi",
		Solver:  "sesolve",
		Seed:    &seed,
		Metrics: map[string]float64{"norm_drift": 1e-9},
		Steps:   12,
	}, sampleExpect(), sampleMeasurement())
	require.NoError(t, err)
	require.NotEmpty(t, runID)

	meta, err := st.Load(runID)
	require.NoError(t, err)
	assert.Equal(t, runID, meta.ID)
	_, err = uuid.Parse(meta.UUID)
	assert.NoError(t, err)
	assert.Equal(t, "rabi", meta.Model)
	assert.Equal(t, uint64(42), *meta.Seed)
	assert.Equal(t, 1e-9, meta.Metrics["norm_drift"])
	assert.Equal(t, []string{"P_e[0]", "Sz[0]"}, meta.Expect)
	assert.Equal(t, []string{"J[0]"}, meta.Measurement)

	expect, err := st.LoadExpect(runID)
	require.NoError(t, err)
	assert.Equal(t, sampleExpect(), expect)

	meas, err := st.LoadMeasurement(runID)
	require.NoError(t, err)
	assert.Equal(t, sampleMeasurement(), meas)

	col, ok := expect.Column("Sz[0]")
	require.True(t, ok)
	assert.Equal(t, []float64{1, 0, -1}, col)
	_, ok = expect.Column("missing")
	assert.False(t, ok)
}

func TestStoreWithoutMeasurement(t *testing.T) {
	st, dir := newStore(t)

	runID, err := st.Save(RunMetadata{Model: "rabi"}, sampleExpect(), Series{})
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, runID, metadataFile))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, runID, expectFile))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, runID, measurementFile))
	assert.True(t, os.IsNotExist(err))

	_, err = st.LoadMeasurement(runID)
	assert.ErrorIs(t, err, ErrNoSeries)

	meta, err := st.Load(runID)
	require.NoError(t, err)
	assert.NotNil(t, meta.Metrics)
}

func TestStoreSaveFailureLeavesNoRun(t *testing.T) {
	st, dir := newStore(t)

	// NaN has no JSON encoding, so the metadata write fails.
	_, err := st.Save(RunMetadata{
		Model:   "rabi",
		Metrics: map[string]float64{"energy_drift": math.NaN()},
	}, sampleExpect(), Series{})
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	runs, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestStoreList(t *testing.T) {
	st, dir := newStore(t)

	runs, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, runs)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	st.now = func() time.Time {
		tick++
		return base.Add(time.Duration(-tick) * time.Minute)
	}

	first, err := st.Save(RunMetadata{Model: "rabi"}, sampleExpect(), Series{})
	require.NoError(t, err)
	second, err := st.Save(RunMetadata{Model: "jaynes_cummings"}, sampleExpect(), Series{})
	require.NoError(t, err)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "stray"), 0755))

	runs, err = st.List()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second, runs[0].ID, "oldest first")
	assert.Equal(t, first, runs[1].ID)
}

func TestListMissingDir(t *testing.T) {
	runs, err := New(filepath.Join(t.TempDir(), "absent")).List()
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestReadCSVErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(bad, []byte("time,x\n0,abc\n"), 0644))
	_, err := ReadCSV(bad)
	assert.Error(t, err)

	empty := filepath.Join(dir, "empty.csv")
	require.NoError(t, os.WriteFile(empty, nil, 0644))
	_, err = ReadCSV(empty)
	assert.Error(t, err)
}

func TestExportJSON(t *testing.T) {
	meta := RunMetadata{ID: "rabi_1", Model: "rabi", Solver: "smesolve"}
	data := NewExportData(meta, sampleExpect(), sampleMeasurement())

	path := filepath.Join(t.TempDir(), "run.json")
	require.NoError(t, ExportJSON(path, data))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "rabi", decoded["model"])
	assert.Contains(t, decoded, "series")
	assert.Contains(t, decoded, "records")

	var buf bytes.Buffer
	require.NoError(t, ExportJSONTo(&buf, NewExportData(meta, sampleExpect(), Series{})))
	assert.NotContains(t, buf.String(), "records")
	assert.Contains(t, buf.String(), `"P_e[0]"`)
}

func TestExportMsgpack(t *testing.T) {
	meta := RunMetadata{ID: "homodyne_decay_1", Model: "homodyne_decay", Solver: "smesolve", NTraj: 8}
	data := NewExportData(meta, sampleExpect(), sampleMeasurement())

	path := filepath.Join(t.TempDir(), "run.msgpack")
	require.NoError(t, ExportMsgpack(path, data))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	dec := msgpack.NewDecoder(f)
	dec.SetCustomStructTag("json")
	var decoded ExportData
	require.NoError(t, dec.Decode(&decoded))

	assert.Equal(t, "homodyne_decay", decoded.Model)
	assert.Equal(t, 8, decoded.NTraj)
	assert.Equal(t, data.Times, decoded.Times)
	assert.Equal(t, data.Series, decoded.Series)
	assert.Equal(t, data.Records, decoded.Records)
}
