package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/vmihailenco/msgpack/v5"
)

type ExportData struct {
	RunMetadata
	Times       []float64            `json:"times"`
	Series      map[string][]float64 `json:"series"`
	RecordTimes []float64            `json:"record_times,omitempty"`
	Records     map[string][]float64 `json:"records,omitempty"`
}

func NewExportData(meta RunMetadata, expect, measurement Series) ExportData {
	data := ExportData{
		RunMetadata: meta,
		Times:       expect.Times,
		Series:      make(map[string][]float64, len(expect.Labels)),
	}
	for i, l := range expect.Labels {
		data.Series[l] = expect.Values[i]
	}
	if len(measurement.Labels) > 0 {
		data.RecordTimes = measurement.Times
		data.Records = make(map[string][]float64, len(measurement.Labels))
		for i, l := range measurement.Labels {
			data.Records[l] = measurement.Values[i]
		}
	}
	return data
}

func ExportJSON(path string, data ExportData) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return ExportJSONTo(file, data)
}

func ExportJSONTo(w io.Writer, data ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// ExportMsgpack writes data in MessagePack, keyed by the same field names
// as the JSON export.
func ExportMsgpack(path string, data ExportData) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := msgpack.NewEncoder(file)
	enc.SetCustomStructTag("json")
	return enc.Encode(data)
}
