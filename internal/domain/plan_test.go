package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tdlm/content-bot/internal/domain"
)

func TestStatusMatches(t *testing.T) {
	tests := []struct {
		status domain.Status
		cell   string
		want   bool
	}{
		{domain.StatusReady, "READY", true},
		{domain.StatusReady, "ready", true},
		{domain.StatusReady, "  Ready  ", true},
		{domain.StatusReady, "RUNNING", false},
		{domain.StatusReady, "", false},
		{domain.StatusPublished, "published", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.status.Matches(tt.cell), "%s.Matches(%q)", tt.status, tt.cell)
	}
}

func TestPlanRowFromCells(t *testing.T) {
	header := []string{"Estatus", " Tema ", "Palabras_Clave", "WP_Categoria", "WP_Estatus", "ID_Tema_AI"}
	cells := []string{" READY ", "Despido injustificado", "finiquito, liquidación", "Laboral", "publish", "T-01"}

	row := domain.PlanRowFromCells(header, cells, 2)

	assert.Equal(t, 2, row.RowNumber)
	assert.Equal(t, "READY", row.Status)
	assert.Equal(t, "Despido injustificado", row.Topic)
	assert.Equal(t, "finiquito, liquidación", row.Keywords)
	assert.Equal(t, "Laboral", row.Category)
	assert.Equal(t, "publish", row.WPStatus)
	assert.Equal(t, "T-01", row.KnowledgeID)
}

func TestPlanRowFromCellsShortRow(t *testing.T) {
	header := []string{"Estatus", "Tema", "Palabras_Clave", "Titulo_Final"}
	cells := []string{"READY"}

	row := domain.PlanRowFromCells(header, cells, 5)

	assert.Equal(t, "READY", row.Status)
	assert.Empty(t, row.Topic)
	assert.Empty(t, row.FinalTitle)
}

func TestPlanRowFromCellsDuplicateHeaderKeepsFirst(t *testing.T) {
	header := []string{"Estatus", "Tema", "Estatus"}
	cells := []string{"READY", "Vacaciones", "PUBLISHED"}

	row := domain.PlanRowFromCells(header, cells, 2)

	assert.Equal(t, "READY", row.Status)
}

func TestKnowledgeEntryFromCells(t *testing.T) {
	header := []string{"ID_Tema", "Titulo_Visible", "Palabras_Clave", "Contenido_Legal", "Fuente"}
	cells := []string{"T-07", "Aguinaldo", "aguinaldo, diciembre", "Artículo 87 LFT...", "LFT"}

	entry := domain.KnowledgeEntryFromCells(header, cells)

	assert.Equal(t, "T-07", entry.ID)
	assert.Equal(t, "Aguinaldo", entry.Title)
	assert.Equal(t, "aguinaldo, diciembre", entry.Keywords)
	assert.Equal(t, "Artículo 87 LFT...", entry.Content)
	assert.Equal(t, "LFT", entry.Source)
}
