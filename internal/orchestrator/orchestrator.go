// Package orchestrator drives one publishing run end to end: claim the first
// READY row of the content plan, generate an article grounded in the
// knowledge tab, publish it to WordPress and write the outcome back.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/tdlm/content-bot/internal/config"
	"github.com/tdlm/content-bot/internal/domain"
	"github.com/tdlm/content-bot/internal/knowledge"
	"github.com/tdlm/content-bot/internal/logger"
	"github.com/tdlm/content-bot/internal/sheets"
	"github.com/tdlm/content-bot/internal/wordpress"
)

// Run outcome statuses reported to the caller.
const (
	StatusOK           = "ok"
	StatusNoRows       = "no_rows"
	StatusNothingReady = "nothing_ready"
)

// timestampLayout is ISO 8601 with a numeric UTC offset, matching the values
// human operators already see in the Actualizado_En column.
const timestampLayout = "2006-01-02T15:04:05-0700"

// Store is the spreadsheet surface the orchestrator needs.
type Store interface {
	Resolve(ctx context.Context, locator string) (string, error)
	OpenTab(ctx context.Context, spreadsheetID, title string, createIfMissing bool, rows, cols int64) error
	HeaderMap(ctx context.Context, spreadsheetID, tab string) (sheets.HeaderMap, error)
	ReadAllRows(ctx context.Context, spreadsheetID, tab string) ([][]string, error)
	UpdateCells(ctx context.Context, spreadsheetID, tab string, rowNumber int, updates map[string]string, hdr sheets.HeaderMap) error
}

// Generator produces one article from a topic and its reference passages.
type Generator interface {
	Generate(ctx context.Context, topic, keywords string, picked []domain.KnowledgeEntry) (domain.GeneratedPost, error)
}

// Publisher is the WordPress surface the orchestrator needs.
type Publisher interface {
	GetOrCreateCategory(ctx context.Context, name string) (int, error)
	CreatePost(ctx context.Context, req wordpress.PostRequest) (wordpress.Post, error)
}

// Result is the JSON-facing outcome of a single run.
type Result struct {
	Status   string `json:"status"`
	Row      int    `json:"row,omitempty"`
	WPPostID int    `json:"wp_post_id,omitempty"`
	Link     string `json:"link,omitempty"`
}

// Orchestrator owns the claim/transition protocol of the content plan. It is
// not safe to run concurrently against the same spreadsheet; serializing
// invocations is the scheduler's contract.
type Orchestrator struct {
	cfg   *config.Config
	store Store
	gen   Generator
	wp    Publisher
	log   logger.Logger

	loc *time.Location
	now func() time.Time
}

// New builds an Orchestrator. The timezone from cfg is resolved once; an
// unknown zone falls back to UTC with a warning rather than failing the
// service.
func New(cfg *config.Config, store Store, gen Generator, wp Publisher, log logger.Logger) *Orchestrator {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Warn("unknown timezone, falling back to UTC",
			logger.String("tz", cfg.Timezone),
			logger.Error(err))
		loc = time.UTC
	}

	return &Orchestrator{
		cfg:   cfg,
		store: store,
		gen:   gen,
		wp:    wp,
		log:   log,
		loc:   loc,
		now:   time.Now,
	}
}

// RunOnce processes at most one READY row. It returns a Result for the three
// non-error outcomes; any error after the RUNNING transition leaves the row
// claimed (unless the revert policy is enabled) with the failure noted in
// Ultimo_Error.
func (o *Orchestrator) RunOnce(ctx context.Context) (Result, error) {
	if err := o.cfg.ValidateForRun(); err != nil {
		return Result{}, err
	}

	spreadsheetID, err := o.store.Resolve(ctx, o.cfg.SheetLocator)
	if err != nil {
		return Result{}, err
	}

	if err := o.store.OpenTab(ctx, spreadsheetID, o.cfg.PlanTab, false, 0, 0); err != nil {
		return Result{}, err
	}

	grid, err := o.store.ReadAllRows(ctx, spreadsheetID, o.cfg.PlanTab)
	if err != nil {
		return Result{}, err
	}
	if len(grid) < 2 {
		o.log.Info("content plan has no data rows", logger.String("tab", o.cfg.PlanTab))
		return Result{Status: StatusNoRows}, nil
	}

	header := grid[0]
	row, found := firstReady(header, grid[1:])
	if !found {
		o.log.Info("no READY row in content plan", logger.Int("rows", len(grid)-1))
		return Result{Status: StatusNothingReady}, nil
	}

	o.log.Info("claiming row",
		logger.Int("row", row.RowNumber),
		logger.String("topic", row.Topic))

	hdr, err := o.store.HeaderMap(ctx, spreadsheetID, o.cfg.PlanTab)
	if err != nil {
		return Result{}, err
	}

	if err := o.store.UpdateCells(ctx, spreadsheetID, o.cfg.PlanTab, row.RowNumber, map[string]string{
		domain.ColStatus:    string(domain.StatusRunning),
		domain.ColLastError: "",
		domain.ColUpdatedAt: o.timestamp(),
	}, hdr); err != nil {
		return Result{}, fmt.Errorf("claiming row %d: %w", row.RowNumber, err)
	}

	post, err := o.publish(ctx, spreadsheetID, row)
	if err != nil {
		o.recordFailure(ctx, spreadsheetID, row.RowNumber, hdr, err)
		return Result{}, err
	}

	if err := o.store.UpdateCells(ctx, spreadsheetID, o.cfg.PlanTab, row.RowNumber, map[string]string{
		domain.ColStatus:       string(domain.StatusPublished),
		domain.ColFinalTitle:   post.Title,
		domain.ColPublishedURL: post.Link,
		domain.ColPostID:       fmt.Sprintf("%d", post.ID),
		domain.ColLastError:    "",
		domain.ColUpdatedAt:    o.timestamp(),
	}, hdr); err != nil {
		o.recordFailure(ctx, spreadsheetID, row.RowNumber, hdr, err)
		return Result{}, fmt.Errorf("recording outcome for row %d: %w", row.RowNumber, err)
	}

	o.log.Info("row published",
		logger.Int("row", row.RowNumber),
		logger.Int("wp_post_id", post.ID),
		logger.String("link", post.Link))

	return Result{
		Status:   StatusOK,
		Row:      row.RowNumber,
		WPPostID: post.ID,
		Link:     post.Link,
	}, nil
}

// publish runs the generate-and-publish leg for an already claimed row.
func (o *Orchestrator) publish(ctx context.Context, spreadsheetID string, row domain.PlanRow) (domain.PublishedPost, error) {
	picked, err := o.pickKnowledge(ctx, spreadsheetID, row)
	if err != nil {
		return domain.PublishedPost{}, err
	}

	post, err := o.gen.Generate(ctx, row.Topic, row.Keywords, picked)
	if err != nil {
		return domain.PublishedPost{}, err
	}

	title := post.Title
	if title == "" {
		title = row.Topic
	}

	categoryID := 0
	if row.Category != "" {
		categoryID, err = o.wp.GetOrCreateCategory(ctx, row.Category)
		if err != nil {
			return domain.PublishedPost{}, err
		}
	}

	wpStatus := row.WPStatus
	if wpStatus == "" {
		wpStatus = o.cfg.DefaultWPStatus
	}

	created, err := o.wp.CreatePost(ctx, wordpress.PostRequest{
		Title:      title,
		Content:    post.HTML,
		Status:     wpStatus,
		Excerpt:    post.Excerpt,
		CategoryID: categoryID,
	})
	if err != nil {
		return domain.PublishedPost{}, err
	}

	return domain.PublishedPost{ID: created.ID, Link: created.Link, Title: title}, nil
}

// pickKnowledge reads the knowledge tab and selects the reference passages
// for the row. A knowledge tab with no data rows yields an empty selection.
func (o *Orchestrator) pickKnowledge(ctx context.Context, spreadsheetID string, row domain.PlanRow) ([]domain.KnowledgeEntry, error) {
	if err := o.store.OpenTab(ctx, spreadsheetID, o.cfg.KnowledgeTab, false, 0, 0); err != nil {
		return nil, err
	}

	grid, err := o.store.ReadAllRows(ctx, spreadsheetID, o.cfg.KnowledgeTab)
	if err != nil {
		return nil, err
	}
	if len(grid) < 2 {
		return nil, nil
	}

	entries := make([]domain.KnowledgeEntry, 0, len(grid)-1)
	for _, cells := range grid[1:] {
		entries = append(entries, domain.KnowledgeEntryFromCells(grid[0], cells))
	}

	return knowledge.Select(entries, row.Topic, row.Keywords, row.KnowledgeID), nil
}

// recordFailure writes the failure back onto the claimed row. It is best
// effort: a second spreadsheet error is logged, not returned, so the original
// failure stays the one reported to the caller.
func (o *Orchestrator) recordFailure(ctx context.Context, spreadsheetID string, rowNumber int, hdr sheets.HeaderMap, runErr error) {
	updates := map[string]string{
		domain.ColLastError: runErr.Error(),
		domain.ColUpdatedAt: o.timestamp(),
	}
	if o.cfg.RevertStatusOnFailure {
		updates[domain.ColStatus] = string(domain.StatusReady)
	}

	if err := o.store.UpdateCells(ctx, spreadsheetID, o.cfg.PlanTab, rowNumber, updates, hdr); err != nil {
		o.log.Error("writing failure back to row",
			logger.Int("row", rowNumber),
			logger.NamedError("run_error", runErr),
			logger.Error(err))
	}
}

func (o *Orchestrator) timestamp() string {
	return o.now().In(o.loc).Format(timestampLayout)
}

// firstReady scans data rows top to bottom and returns the first READY one.
// Row numbers are 1-based sheet positions, so the first data row is 2.
func firstReady(header []string, rows [][]string) (domain.PlanRow, bool) {
	for i, cells := range rows {
		row := domain.PlanRowFromCells(header, cells, i+2)
		if domain.StatusReady.Matches(row.Status) {
			return row, true
		}
	}
	return domain.PlanRow{}, false
}
