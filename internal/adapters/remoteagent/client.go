package remoteagent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"uicapture/internal/core/ports"
)

// Run states reported by the agent service.
const (
	statusSucceeded = "SUCCEEDED"
	statusFailed    = "FAILED"
	statusAborted   = "ABORTED"
	statusTimedOut  = "TIMED-OUT"
)

// Client implements ports.Agent against an agent service's REST API.
type Client struct {
	baseURL      string
	apiToken     string
	pollInterval time.Duration
	client       *http.Client
	downloader   ports.Downloader
	dataset      ports.DatasetStore
	logger       *log.Logger
}

// NewClient creates a new Client. Manifests produced by the service are
// fetched with downloader and mirrored into dataset.
func NewClient(
	baseURL, apiToken string,
	pollInterval time.Duration,
	downloader ports.Downloader,
	dataset ports.DatasetStore,
	logger *log.Logger,
) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("agent service URL not set")
	}
	if pollInterval <= 0 {
		pollInterval = 3 * time.Second
	}
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		apiToken:     apiToken,
		pollInterval: pollInterval,
		client: &http.Client{
			Timeout: time.Minute,
		},
		downloader: downloader,
		dataset:    dataset,
		logger:     logger,
	}, nil
}

// Initialize opens a browser session on the service.
func (c *Client) Initialize(ctx context.Context, headless bool) (ports.Session, error) {
	var result struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	err := c.doJSON(ctx, http.MethodPost, "/sessions", map[string]interface{}{"headless": headless}, http.StatusCreated, &result)
	if err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}
	if result.Data.ID == "" {
		return nil, fmt.Errorf("failed to start session: empty session id")
	}
	c.logger.Printf("Agent session %s started", result.Data.ID)
	return &session{client: c, id: result.Data.ID}, nil
}

type session struct {
	client *Client
	id     string

	closeOnce sync.Once
	closeErr  error
}

// ExecuteTask submits the task, waits for it to finish and mirrors the
// resulting manifest into the local dataset directory.
func (s *session) ExecuteTask(ctx context.Context, req ports.TaskRequest) (string, error) {
	runID, err := s.startTask(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to start task: %w", err)
	}

	manifestURL, err := s.client.waitForTask(ctx, runID)
	if err != nil {
		return "", err
	}

	body, err := s.client.downloader.Download(ctx, s.client.resolve(manifestURL))
	if err != nil {
		return "", fmt.Errorf("failed to fetch manifest: %w", err)
	}
	defer body.Close()

	path, err := s.client.dataset.SaveManifest(ctx, req.Description, body)
	if err != nil {
		return "", fmt.Errorf("failed to save manifest: %w", err)
	}
	return path, nil
}

// Close deletes the session on the service. Only the first call does so.
func (s *session) Close(ctx context.Context) error {
	s.closeOnce.Do(func() {
		s.closeErr = s.client.doJSON(ctx, http.MethodDelete, "/sessions/"+s.id, nil, http.StatusNoContent, nil)
		if s.closeErr == nil {
			s.client.logger.Printf("Agent session %s closed", s.id)
		}
	})
	return s.closeErr
}

func (s *session) startTask(ctx context.Context, req ports.TaskRequest) (string, error) {
	input := map[string]interface{}{
		"task":      req.Description,
		"start_url": req.StartURL,
		"max_steps": req.MaxSteps,
	}
	var result struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := s.client.doJSON(ctx, http.MethodPost, "/sessions/"+s.id+"/tasks", input, http.StatusCreated, &result); err != nil {
		return "", err
	}
	if result.Data.ID == "" {
		return "", fmt.Errorf("empty task run id")
	}
	return result.Data.ID, nil
}

func (c *Client) waitForTask(ctx context.Context, runID string) (string, error) {
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(c.pollInterval):
		}

		var status struct {
			Data struct {
				Status      string `json:"status"`
				ManifestURL string `json:"manifest_url"`
				Error       string `json:"error"`
			} `json:"data"`
		}
		if err := c.doJSON(ctx, http.MethodGet, "/tasks/"+runID, nil, http.StatusOK, &status); err != nil {
			return "", fmt.Errorf("failed to poll task %s: %w", runID, err)
		}

		switch status.Data.Status {
		case statusSucceeded:
			if status.Data.ManifestURL == "" {
				return "", fmt.Errorf("task %s succeeded without a manifest", runID)
			}
			return status.Data.ManifestURL, nil
		case statusFailed, statusAborted, statusTimedOut:
			if status.Data.Error != "" {
				return "", fmt.Errorf("task run %s: %s", strings.ToLower(status.Data.Status), status.Data.Error)
			}
			return "", fmt.Errorf("task run failed with status: %s", status.Data.Status)
		}
		// Still running, continue polling
	}
}

func (c *Client) doJSON(ctx context.Context, method, path string, in interface{}, wantStatus int, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s %s: status %d, body: %s", method, path, resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// resolve makes service-relative manifest URLs absolute.
func (c *Client) resolve(manifestURL string) string {
	if strings.HasPrefix(manifestURL, "http://") || strings.HasPrefix(manifestURL, "https://") {
		return manifestURL
	}
	return c.baseURL + "/" + strings.TrimLeft(manifestURL, "/")
}
