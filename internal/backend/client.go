package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Client talks to the summarization/QA backend. The backend performs the
// actual transcript parsing, summarization, and question answering; this
// client is thin HTTP glue.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(baseURL, apiKey string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: logger,
	}
}

func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}) ([]byte, error) {
	var data []byte
	if body != nil {
		var err error
		data, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
	}
	return c.do(ctx, method, path, "application/json", func() io.Reader {
		if data == nil {
			return nil
		}
		return bytes.NewReader(data)
	})
}

// do sends one request, retrying transport errors, 429 and 5xx with
// exponential backoff. newBody is called per attempt so retries do not
// reuse a consumed reader.
func (c *Client) do(ctx context.Context, method, path, contentType string, newBody func() io.Reader) ([]byte, error) {
	url := c.baseURL + path
	c.logger.Debug("backend request", "method", method, "path", path)

	const maxRetries = 3
	requestStart := time.Now()

	var resp *http.Response
	for attempt := 0; attempt <= maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, method, url, newBody())
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		resp, err = c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if attempt == maxRetries {
				c.logger.Error("backend request transport error", "method", method, "path", path, "error", err, "elapsed", time.Since(requestStart))
				return nil, fmt.Errorf("sending request: %w", err)
			}
			c.logger.Debug("backend transport error, retrying", "path", path, "attempt", attempt+1, "error", err)
			time.Sleep(backoff(attempt))
			continue
		}

		if resp.StatusCode == 429 || resp.StatusCode >= 500 {
			resp.Body.Close()
			if attempt == maxRetries {
				c.logger.Error("backend request failed after retries", "method", method, "path", path, "status", resp.StatusCode)
				return nil, fmt.Errorf("backend returned status %d after %d retries", resp.StatusCode, maxRetries)
			}
			c.logger.Debug("backend retryable error", "path", path, "status", resp.StatusCode, "attempt", attempt+1)
			time.Sleep(backoff(attempt))
			continue
		}
		break
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	c.logger.Debug("backend response", "method", method, "path", path, "status", resp.StatusCode, "bytes", len(respBody), "elapsed", time.Since(requestStart))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("backend error (status %d): %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	return respBody, nil
}

func backoff(attempt int) time.Duration {
	return time.Duration(math.Pow(2, float64(attempt))) * time.Second
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

func (c *Client) CreateMeeting(ctx context.Context, title, platform string) (*Meeting, error) {
	body := map[string]string{"title": title, "platform": platform}
	data, err := c.doRequest(ctx, http.MethodPost, "/meetings", body)
	if err != nil {
		return nil, fmt.Errorf("creating meeting: %w", err)
	}

	var m Meeting
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing meeting response: %w", err)
	}
	return &m, nil
}

func (c *Client) ListMeetings(ctx context.Context) ([]Meeting, error) {
	data, err := c.doRequest(ctx, http.MethodGet, "/meetings", nil)
	if err != nil {
		return nil, fmt.Errorf("listing meetings: %w", err)
	}

	var meetings []Meeting
	if err := json.Unmarshal(data, &meetings); err != nil {
		return nil, fmt.Errorf("parsing meetings response: %w", err)
	}
	return meetings, nil
}

func (c *Client) DeleteMeeting(ctx context.Context, id int) error {
	if _, err := c.doRequest(ctx, http.MethodDelete, fmt.Sprintf("/meetings/%d", id), nil); err != nil {
		return fmt.Errorf("deleting meeting %d: %w", id, err)
	}
	return nil
}

// UploadTranscript sends a transcript file as multipart form data. The
// backend handles format detection (TXT/VTT/SRT/DOCX/PDF) and text
// extraction.
func (c *Client) UploadTranscript(ctx context.Context, id int, path string) error {
	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading transcript file: %w", err)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return fmt.Errorf("building multipart body: %w", err)
	}
	if _, err := part.Write(file); err != nil {
		return fmt.Errorf("building multipart body: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("building multipart body: %w", err)
	}

	payload := buf.Bytes()
	uploadPath := fmt.Sprintf("/meetings/%d/upload_transcript", id)
	if _, err := c.do(ctx, http.MethodPost, uploadPath, mw.FormDataContentType(), func() io.Reader {
		return bytes.NewReader(payload)
	}); err != nil {
		return fmt.Errorf("uploading transcript: %w", err)
	}
	return nil
}

// summaryEnvelope wraps summary responses; the backend also returns the
// raw sidecar data and its storage path, which the CLI ignores.
type summaryEnvelope struct {
	Normalized *Summary `json:"normalized"`
	Data       *Summary `json:"data"`
}

// Summarize kicks off background summarization for a meeting and
// returns the processing placeholder.
func (c *Client) Summarize(ctx context.Context, id int) (*Summary, error) {
	data, err := c.doRequest(ctx, http.MethodPost, fmt.Sprintf("/meetings/%d/summarize", id), nil)
	if err != nil {
		return nil, fmt.Errorf("triggering summarization: %w", err)
	}
	return parseSummaryEnvelope(data)
}

// GetSummary fetches the current summary state for a meeting. A meeting
// that was never summarized reports StatusEmpty rather than an error.
func (c *Client) GetSummary(ctx context.Context, id int) (*Summary, error) {
	data, err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/meetings/%d/summary", id), nil)
	if err != nil {
		return nil, fmt.Errorf("fetching summary: %w", err)
	}
	return parseSummaryEnvelope(data)
}

func parseSummaryEnvelope(data []byte) (*Summary, error) {
	var env summaryEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("parsing summary response: %w", err)
	}

	s := env.Normalized
	if s == nil {
		s = env.Data
	}
	if s == nil {
		return &Summary{Status: StatusEmpty}, nil
	}
	if s.Status == "" {
		s.Status = StatusReady
	}
	// schedule_suggestions ride on the raw sidecar data, not the
	// normalized block.
	if len(s.ScheduleSuggestions) == 0 && env.Data != nil {
		s.ScheduleSuggestions = env.Data.ScheduleSuggestions
	}
	return s, nil
}

// GetTranscript returns the best-effort plain-text rendering of the
// latest transcript.
func (c *Client) GetTranscript(ctx context.Context, id int) (string, error) {
	data, err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/meetings/%d/transcript", id), nil)
	if err != nil {
		return "", fmt.Errorf("fetching transcript: %w", err)
	}
	return string(data), nil
}

// Ask sends a free-text question against a meeting's indexed transcript
// and summary.
func (c *Client) Ask(ctx context.Context, id int, question string, topK int) (*Answer, error) {
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("question is empty")
	}
	if topK <= 0 {
		topK = 6
	}

	body := map[string]interface{}{
		"meeting_id": id,
		"question":   question,
		"top_k":      topK,
	}
	data, err := c.doRequest(ctx, http.MethodPost, "/qa/ask", body)
	if err != nil {
		return nil, fmt.Errorf("asking question: %w", err)
	}

	var ans Answer
	if err := json.Unmarshal(data, &ans); err != nil {
		return nil, fmt.Errorf("parsing answer response: %w", err)
	}
	return &ans, nil
}
