package domain

import "strings"

// Column headers of the content-plan tab. The Spanish names are the external
// schema of the spreadsheet and are used verbatim for lookups and updates.
const (
	ColStatus       = "Estatus"
	ColTopic        = "Tema"
	ColKeywords     = "Palabras_Clave"
	ColCategory     = "WP_Categoria"
	ColWPStatus     = "WP_Estatus"
	ColKnowledgeID  = "ID_Tema_AI"
	ColLastError    = "Ultimo_Error"
	ColUpdatedAt    = "Actualizado_En"
	ColFinalTitle   = "Titulo_Final"
	ColPublishedURL = "URL_Publicado"
	ColPostID       = "WP_Post_ID"
)

// Column headers of the knowledge tab.
const (
	ColEntryID       = "ID_Tema"
	ColEntryTitle    = "Titulo_Visible"
	ColEntryKeywords = "Palabras_Clave"
	ColEntryContent  = "Contenido_Legal"
	ColEntrySource   = "Fuente"
)

// PlanRow is one unit of work in the content plan. Its identity is the
// 1-based row number within the tab (header row included in the count);
// no synthetic key exists.
type PlanRow struct {
	RowNumber int

	Status      string
	Topic       string
	Keywords    string
	Category    string
	WPStatus    string
	KnowledgeID string

	LastError    string
	UpdatedAt    string
	FinalTitle   string
	PublishedURL string
	PostID       string
}

// KnowledgeEntry is a read-only reference passage used to ground generation.
type KnowledgeEntry struct {
	ID       string
	Title    string
	Keywords string
	Content  string
	Source   string
}

// GeneratedPost is the transient output of one generation call. It is never
// persisted except through the plan row's outcome fields and WordPress.
type GeneratedPost struct {
	Title   string `json:"title"`
	Excerpt string `json:"excerpt"`
	HTML    string `json:"html"`
}

// PublishedPost is the outcome of publishing one plan row: the WordPress
// post identity plus the final title written back to the plan.
type PublishedPost struct {
	ID    int
	Link  string
	Title string
}

// PlanRowFromCells projects a raw spreadsheet row onto a typed PlanRow using
// the header row, so downstream logic never looks up a header string again.
// Missing trailing cells read as empty; all values are trimmed.
func PlanRowFromCells(header, cells []string, rowNumber int) PlanRow {
	rec := recordFromCells(header, cells)
	return PlanRow{
		RowNumber:    rowNumber,
		Status:       rec[ColStatus],
		Topic:        rec[ColTopic],
		Keywords:     rec[ColKeywords],
		Category:     rec[ColCategory],
		WPStatus:     rec[ColWPStatus],
		KnowledgeID:  rec[ColKnowledgeID],
		LastError:    rec[ColLastError],
		UpdatedAt:    rec[ColUpdatedAt],
		FinalTitle:   rec[ColFinalTitle],
		PublishedURL: rec[ColPublishedURL],
		PostID:       rec[ColPostID],
	}
}

// KnowledgeEntryFromCells projects a raw knowledge-tab row onto a typed entry.
func KnowledgeEntryFromCells(header, cells []string) KnowledgeEntry {
	rec := recordFromCells(header, cells)
	return KnowledgeEntry{
		ID:       rec[ColEntryID],
		Title:    rec[ColEntryTitle],
		Keywords: rec[ColEntryKeywords],
		Content:  rec[ColEntryContent],
		Source:   rec[ColEntrySource],
	}
}

// recordFromCells zips a header row with a data row into a map keyed by
// trimmed header text. Blank headers are skipped; a header repeated in the
// row keeps its first value.
func recordFromCells(header, cells []string) map[string]string {
	rec := make(map[string]string, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" {
			continue
		}
		if _, seen := rec[name]; seen {
			continue
		}
		var val string
		if i < len(cells) {
			val = strings.TrimSpace(cells[i])
		}
		rec[name] = val
	}
	return rec
}
