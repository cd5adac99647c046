package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// Dataset defines tabular export content. Title is used as a section heading
// by renderers that support it.
type Dataset struct {
	Title   string
	Headers []string
	Rows    []map[string]string
}

// CSVExporter renders Dataset records into CSV bytes.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// ContentType reports the MIME type of rendered output.
func (e *CSVExporter) ContentType() string {
	return "text/csv"
}

// Render produces CSV encoded bytes. Datasets are written back to back; each
// dataset repeats its header row.
func (e *CSVExporter) Render(datasets ...Dataset) ([]byte, error) {
	if len(datasets) == 0 {
		return nil, fmt.Errorf("csv requires at least one dataset")
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	for _, data := range datasets {
		if len(data.Headers) == 0 {
			return nil, fmt.Errorf("csv requires at least one header")
		}
		if err := writer.Write(data.Headers); err != nil {
			return nil, fmt.Errorf("write csv headers: %w", err)
		}
		for _, row := range data.Rows {
			record := make([]string, len(data.Headers))
			for i, header := range data.Headers {
				record[i] = row[header]
			}
			if err := writer.Write(record); err != nil {
				return nil, fmt.Errorf("write csv row: %w", err)
			}
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
