// Package sheets is the tabular-store accessor: it resolves the content-plan
// spreadsheet, opens tabs, reads full value grids, and performs targeted cell
// updates addressed by row number and header name. All remote calls go
// through the backoff executor.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/tdlm/content-bot/internal/logger"
	"github.com/tdlm/content-bot/internal/retry"
)

var (
	// ErrSpreadsheetNotFound is returned when a locator resolves to nothing.
	ErrSpreadsheetNotFound = errors.New("spreadsheet not found")

	// ErrTabNotFound is returned when a named tab is absent and the caller
	// did not ask for it to be created.
	ErrTabNotFound = errors.New("tab not found")
)

// minKeyLength is the shortest locator treated as a spreadsheet key. Real
// keys are 44 characters; 25 leaves room while rejecting ordinary titles.
const minKeyLength = 25

var spreadsheetURLPattern = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9_-]+)`)

// Client talks to the Google Sheets and Drive APIs with service-account
// credentials.
type Client struct {
	svc     *sheetsapi.Service
	drive   *drive.Service
	backoff retry.Config
	log     logger.Logger
}

// NewClient builds a Client from service-account JSON.
func NewClient(ctx context.Context, credentialsJSON []byte, log logger.Logger) (*Client, error) {
	jwtCfg, err := google.JWTConfigFromJSON(credentialsJSON,
		sheetsapi.SpreadsheetsScope, drive.DriveScope)
	if err != nil {
		return nil, fmt.Errorf("parse service account: %w", err)
	}

	httpClient := jwtCfg.Client(ctx)

	svc, err := sheetsapi.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	driveSvc, err := drive.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}

	return &Client{
		svc:     svc,
		drive:   driveSvc,
		backoff: retry.DefaultConfig(),
		log:     log,
	}, nil
}

// Resolve turns a locator into a spreadsheet ID. A spreadsheet URL wins
// outright; a key-shaped string is opened by key with a fallback to title
// lookup; anything else is treated as a title.
func (c *Client) Resolve(ctx context.Context, locator string) (string, error) {
	locator = strings.TrimSpace(locator)

	if strings.Contains(locator, "docs.google.com") && strings.Contains(locator, "/spreadsheets/d/") {
		m := spreadsheetURLPattern.FindStringSubmatch(locator)
		if m == nil {
			return "", fmt.Errorf("%w: malformed URL %q", ErrSpreadsheetNotFound, locator)
		}
		return c.verify(ctx, m[1])
	}

	if looksLikeKey(locator) {
		if id, err := c.verify(ctx, locator); err == nil {
			return id, nil
		}
		// Key-shaped but not openable; fall through to title lookup.
	}

	return c.resolveByTitle(ctx, locator)
}

// verify confirms a spreadsheet ID is readable and returns it.
func (c *Client) verify(ctx context.Context, id string) (string, error) {
	_, err := retry.DoValue(ctx, c.backoff, func() (*sheetsapi.Spreadsheet, error) {
		return c.svc.Spreadsheets.Get(id).Fields("spreadsheetId").Context(ctx).Do()
	})
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrSpreadsheetNotFound, id, err)
	}
	return id, nil
}

// resolveByTitle finds a spreadsheet by exact name through the Drive API.
func (c *Client) resolveByTitle(ctx context.Context, title string) (string, error) {
	query := fmt.Sprintf(
		"name = '%s' and mimeType = 'application/vnd.google-apps.spreadsheet' and trashed = false",
		strings.ReplaceAll(title, "'", `\'`),
	)

	list, err := retry.DoValue(ctx, c.backoff, func() (*drive.FileList, error) {
		return c.drive.Files.List().Q(query).Fields("files(id, name)").PageSize(10).Context(ctx).Do()
	})
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrSpreadsheetNotFound, title, err)
	}
	if len(list.Files) == 0 {
		return "", fmt.Errorf("%w: %q", ErrSpreadsheetNotFound, title)
	}

	if len(list.Files) > 1 {
		c.log.Warn("multiple spreadsheets match title, using first",
			logger.String("title", title),
			logger.Int("matches", len(list.Files)))
	}
	return list.Files[0].Id, nil
}

// looksLikeKey reports whether a locator is shaped like a spreadsheet key:
// long enough, and only alphanumerics, hyphens, and underscores.
func looksLikeKey(s string) bool {
	if len(s) < minKeyLength {
		return false
	}
	for _, r := range s {
		alnum := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
		if !alnum && r != '-' && r != '_' {
			return false
		}
	}
	return true
}
