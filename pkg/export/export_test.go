package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVExporterRender(t *testing.T) {
	exporter := NewCSVExporter()
	data := Dataset{
		Headers: []string{"Empleado", "Fecha", "Asistió"},
		Rows: []map[string]string{
			{"Empleado": "Juan Pérez", "Fecha": "2025-03-10", "Asistió": "SI"},
			{"Empleado": "Ana López", "Fecha": "2025-03-10", "Asistió": "NO"},
		},
	}

	out, err := exporter.Render(data)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Empleado,Fecha,Asistió", lines[0])
	assert.Contains(t, lines[1], "Juan Pérez")
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	exporter := NewCSVExporter()
	_, err := exporter.Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	exporter := NewPDFExporter()
	data := Dataset{
		Headers: []string{"Empleado", "Faltas"},
		Rows:    []map[string]string{{"Empleado": "Juan", "Faltas": "2"}},
	}

	out, err := exporter.Render(data, "Reporte de inasistencias")
	require.NoError(t, err)
	assert.True(t, len(out) > 0)
	assert.Equal(t, "%PDF", string(out[:4]))
}

func TestPDFExporterRequiresHeaders(t *testing.T) {
	exporter := NewPDFExporter()
	_, err := exporter.Render(Dataset{}, "")
	assert.Error(t, err)
}
