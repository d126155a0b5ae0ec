package sheets

import (
	"context"
	"fmt"
	"sort"
	"strings"

	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/tdlm/content-bot/internal/logger"
	"github.com/tdlm/content-bot/internal/retry"
)

// OpenTab verifies that a tab with the given title exists in the spreadsheet.
// When absent it either creates the tab with the given grid size or returns
// ErrTabNotFound, depending on createIfMissing.
func (c *Client) OpenTab(ctx context.Context, spreadsheetID, title string, createIfMissing bool, rows, cols int64) error {
	meta, err := retry.DoValue(ctx, c.backoff, func() (*sheetsapi.Spreadsheet, error) {
		return c.svc.Spreadsheets.Get(spreadsheetID).
			Fields("sheets(properties(sheetId,title))").
			Context(ctx).Do()
	})
	if err != nil {
		return fmt.Errorf("read spreadsheet metadata: %w", err)
	}

	for _, sh := range meta.Sheets {
		if sh.Properties != nil && sh.Properties.Title == title {
			return nil
		}
	}

	if !createIfMissing {
		return fmt.Errorf("%w: %q", ErrTabNotFound, title)
	}

	req := &sheetsapi.BatchUpdateSpreadsheetRequest{
		Requests: []*sheetsapi.Request{{
			AddSheet: &sheetsapi.AddSheetRequest{
				Properties: &sheetsapi.SheetProperties{
					Title: title,
					GridProperties: &sheetsapi.GridProperties{
						RowCount:    rows,
						ColumnCount: cols,
					},
				},
			},
		}},
	}
	err = retry.Do(ctx, c.backoff, func() error {
		_, callErr := c.svc.Spreadsheets.BatchUpdate(spreadsheetID, req).Context(ctx).Do()
		return callErr
	})
	if err != nil {
		return fmt.Errorf("create tab %q: %w", title, err)
	}

	c.log.Info("created missing tab",
		logger.String("tab", title),
		logger.Int64("rows", rows),
		logger.Int64("cols", cols))
	return nil
}

// HeaderMap reads row 1 of a tab and maps trimmed header text to its 1-based
// column position, skipping blank headers. It is recomputed on every call:
// the header row may legitimately change within a long-lived process, and a
// stale map would silently misdirect writes.
func (c *Client) HeaderMap(ctx context.Context, spreadsheetID, tab string) (HeaderMap, error) {
	resp, err := retry.DoValue(ctx, c.backoff, func() (*sheetsapi.ValueRange, error) {
		return c.svc.Spreadsheets.Values.Get(spreadsheetID, tabRange(tab)+"!1:1").Context(ctx).Do()
	})
	if err != nil {
		return nil, fmt.Errorf("read header row of %q: %w", tab, err)
	}

	var header []string
	if len(resp.Values) > 0 {
		header = cellStrings(resp.Values[0])
	}
	return headerMapFromRow(header), nil
}

// ReadAllRows returns the full cell grid of a tab. When the retry budget is
// exhausted it returns an empty grid instead of an error: callers treat empty
// as "nothing to do", so a spreadsheet outage degrades to an idle run rather
// than a crash loop.
func (c *Client) ReadAllRows(ctx context.Context, spreadsheetID, tab string) ([][]string, error) {
	resp, err := retry.DoValue(ctx, c.backoff, func() (*sheetsapi.ValueRange, error) {
		return c.svc.Spreadsheets.Values.Get(spreadsheetID, tabRange(tab)).Context(ctx).Do()
	})
	if err != nil {
		c.log.Warn("reading all rows failed after retries, returning empty grid",
			logger.String("tab", tab),
			logger.Error(err))
		return nil, nil
	}

	grid := make([][]string, 0, len(resp.Values))
	for _, row := range resp.Values {
		grid = append(grid, cellStrings(row))
	}
	return grid, nil
}

// UpdateCells writes the given header-name→value entries into one row,
// issuing one cell update per entry through the backoff executor. A nil
// header map is computed on the spot. Entries whose header cannot be found
// even case-insensitively are skipped with a warning; updates already sent
// are not undone when a later one fails.
func (c *Client) UpdateCells(ctx context.Context, spreadsheetID, tab string, rowNumber int, updates map[string]string, hdr HeaderMap) error {
	if len(updates) == 0 {
		return nil
	}

	if hdr == nil {
		var err error
		hdr, err = c.HeaderMap(ctx, spreadsheetID, tab)
		if err != nil {
			return err
		}
	}

	// Stable order keeps request sequences reproducible.
	names := make([]string, 0, len(updates))
	for name := range updates {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		col, ok := hdr.lookup(name)
		if !ok {
			c.log.Warn("skipping update for unknown column",
				logger.String("tab", tab),
				logger.String("column", name))
			continue
		}

		cellRange := fmt.Sprintf("%s!%s%d", tabRange(tab), columnLetter(col), rowNumber)
		value := updates[name]
		body := &sheetsapi.ValueRange{Values: [][]any{{value}}}

		err := retry.Do(ctx, c.backoff, func() error {
			_, callErr := c.svc.Spreadsheets.Values.Update(spreadsheetID, cellRange, body).
				ValueInputOption("RAW").
				Context(ctx).Do()
			return callErr
		})
		if err != nil {
			return fmt.Errorf("update cell %s: %w", cellRange, err)
		}
	}
	return nil
}

// tabRange quotes a tab title for use in an A1-notation range.
func tabRange(tab string) string {
	return "'" + strings.ReplaceAll(tab, "'", "''") + "'"
}

func cellStrings(row []any) []string {
	out := make([]string, len(row))
	for i, cell := range row {
		out[i] = fmt.Sprint(cell)
	}
	return out
}
