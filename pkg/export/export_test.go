package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func timetableDataset(title string) Dataset {
	return Dataset{
		Title:   title,
		Headers: []string{"Day", "P1", "P2"},
		Rows: []map[string]string{
			{"Day": "Monday", "P1": "Math (R1)", "P2": "Science (R1)"},
			{"Day": "Tuesday", "P1": "Free", "P2": "Free"},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(timetableDataset("Class_A"))
	require.NoError(t, err)
	assert.Equal(t, "Day,P1,P2\nMonday,Math (R1),Science (R1)\nTuesday,Free,Free\n", string(out))
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
	_, err = NewCSVExporter().Render()
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	exporter := NewPDFExporter("Weekly Timetable")
	out, err := exporter.Render(timetableDataset("Class_A"), timetableDataset("Class_B"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
	assert.Equal(t, "application/pdf", exporter.ContentType())
}
