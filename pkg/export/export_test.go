package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func thesisDataset() Dataset {
	return Dataset{
		Headers: []string{"Topic", "Status"},
		Rows: []map[string]string{
			{"Topic": "Graph databases, revisited", "Status": "PLANNING"},
			{"Topic": "Säännölliset lausekkeet", "Status": "IN_PROGRESS"},
		},
		Widths: map[string]float64{"Topic": 3},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(thesisDataset())
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(out, []byte("\ufeff")))
	lines := strings.Split(strings.TrimSpace(strings.TrimPrefix(string(out), "\ufeff")), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Topic,Status", lines[0])
	assert.Equal(t, `"Graph databases, revisited",PLANNING`, lines[1])
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := (&CSVExporter{}).Render(Dataset{})
	require.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render(thesisDataset(), "Theses")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestColumnWidthsWeighted(t *testing.T) {
	widths := columnWidths(thesisDataset())
	require.Len(t, widths, 2)
	assert.InDelta(t, landscapeWidth*0.75, widths[0], 0.001)
	assert.InDelta(t, landscapeWidth*0.25, widths[1], 0.001)
}
