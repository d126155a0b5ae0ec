// Package wordpress is the publisher client for the WordPress REST API:
// find-or-create a category by name, and create a post.
package wordpress

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tdlm/content-bot/internal/logger"
)

const (
	categoryTimeout = 30 * time.Second
	postTimeout     = 60 * time.Second

	categorySearchPageSize = "50"
)

// APIError is a non-success response from the WordPress REST API.
type APIError struct {
	StatusCode int
	Endpoint   string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("wordpress API error (%d) at %s: %s", e.StatusCode, e.Endpoint, e.Body)
}

// PostRequest describes a post to create.
type PostRequest struct {
	Title      string
	Content    string
	Status     string
	Excerpt    string
	CategoryID int
}

// Post is a created WordPress post.
type Post struct {
	ID   int    `json:"id"`
	Link string `json:"link"`
}

type category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Client talks to one WordPress site using an application password.
type Client struct {
	baseURL     string
	username    string
	appPassword string
	client      *http.Client
	log         logger.Logger
}

// NewClient builds a Client. The base URL is required; trailing slashes are
// stripped so endpoint paths concatenate cleanly.
func NewClient(baseURL, username, appPassword string, log logger.Logger) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("wordpress base URL is required")
	}
	if username == "" || appPassword == "" {
		return nil, errors.New("wordpress user and application password are required")
	}

	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		username:    username,
		appPassword: appPassword,
		client:      &http.Client{Timeout: postTimeout},
		log:         log,
	}, nil
}

// GetOrCreateCategory returns the ID of the category with the given name,
// matching case-insensitively, creating it when absent. Concurrent runs could
// race this into duplicate categories; runs are serialized by the external
// scheduler, so the window is accepted rather than locked against.
func (c *Client) GetOrCreateCategory(ctx context.Context, name string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, categoryTimeout)
	defer cancel()

	query := url.Values{}
	query.Set("search", name)
	query.Set("per_page", categorySearchPageSize)
	endpoint := c.baseURL + "/wp-json/wp/v2/categories?" + query.Encode()

	var found []category
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &found); err != nil {
		return 0, fmt.Errorf("search category %q: %w", name, err)
	}

	want := strings.ToLower(strings.TrimSpace(name))
	for _, cat := range found {
		if strings.ToLower(strings.TrimSpace(cat.Name)) == want {
			return cat.ID, nil
		}
	}

	var created category
	payload := map[string]string{"name": name}
	if err := c.doJSON(ctx, http.MethodPost, c.baseURL+"/wp-json/wp/v2/categories", payload, &created); err != nil {
		return 0, fmt.Errorf("create category %q: %w", name, err)
	}

	c.log.Info("created category",
		logger.String("name", name),
		logger.Int("category_id", created.ID))
	return created.ID, nil
}

// CreatePost creates a post and returns its ID and public link. Any
// non-success status is a hard failure with no retry: re-sending a create
// that may have landed would duplicate the post.
func (c *Client) CreatePost(ctx context.Context, req PostRequest) (Post, error) {
	payload := map[string]any{
		"title":   req.Title,
		"content": req.Content,
		"status":  req.Status,
	}
	if req.Excerpt != "" {
		payload["excerpt"] = req.Excerpt
	}
	if req.CategoryID > 0 {
		payload["categories"] = []int{req.CategoryID}
	}

	var post Post
	if err := c.doJSON(ctx, http.MethodPost, c.baseURL+"/wp-json/wp/v2/posts", payload, &post); err != nil {
		return Post{}, fmt.Errorf("create post %q: %w", req.Title, err)
	}

	c.log.Info("created post",
		logger.String("title", req.Title),
		logger.String("status", req.Status),
		logger.Int("post_id", post.ID),
		logger.String("link", post.Link))
	return post, nil
}

// doJSON performs one authenticated request and decodes the JSON response
// into out. Status >= 400 becomes an APIError carrying the response body.
func (c *Client) doJSON(ctx context.Context, method, endpoint string, payload, out any) error {
	var body io.Reader = http.NoBody
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.SetBasicAuth(c.username, c.appPassword)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return &APIError{
			StatusCode: resp.StatusCode,
			Endpoint:   endpoint,
			Body:       strings.TrimSpace(string(respBody)),
		}
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
