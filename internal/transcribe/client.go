package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// Segment is one diarized utterance with second-resolution timing.
type Segment struct {
	Text    string  `json:"text"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker"`
}

// SleepFunc suspends the poll loop for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

func defaultSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Client talks to the transcription vendor's REST API.
type Client struct {
	baseURL      string
	apiKey       string
	pollInterval time.Duration
	httpClient   *http.Client
	sleep        SleepFunc
}

// ClientOption adjusts Client construction.
type ClientOption func(*Client)

// WithHTTPClient substitutes the HTTP client (used in tests).
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = h }
}

// WithSleep substitutes the poll sleep (used in tests).
func WithSleep(sleep SleepFunc) ClientOption {
	return func(c *Client) { c.sleep = sleep }
}

// NewClient builds a vendor API client.
func NewClient(baseURL, apiKey string, pollInterval time.Duration, opts ...ClientOption) *Client {
	if pollInterval <= 0 {
		pollInterval = 3 * time.Second
	}
	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		apiKey:       apiKey,
		pollInterval: pollInterval,
		httpClient:   &http.Client{Timeout: 5 * time.Minute},
		sleep:        defaultSleep,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type uploadResponse struct {
	UploadURL string `json:"upload_url"`
}

type submitRequest struct {
	AudioURL          string `json:"audio_url"`
	SpeakerLabels     bool   `json:"speaker_labels"`
	Punctuate         bool   `json:"punctuate"`
	FormatText        bool   `json:"format_text"`
	LanguageCode      string `json:"language_code,omitempty"`
	LanguageDetection bool   `json:"language_detection,omitempty"`
}

type transcriptResponse struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	Error        string `json:"error"`
	LanguageCode string `json:"language_code"`
	Utterances   []struct {
		Text    string  `json:"text"`
		Start   float64 `json:"start"`
		End     float64 `json:"end"`
		Speaker string  `json:"speaker"`
	} `json:"utterances"`
}

// Transcribe uploads the file at path, submits a diarization job, and polls
// until completion. languageCode may be empty, enabling vendor-side language
// detection. Timing in the result is converted from milliseconds to seconds.
func (c *Client) Transcribe(ctx context.Context, path, languageCode string) ([]Segment, error) {
	audioURL, err := c.upload(ctx, path)
	if err != nil {
		return nil, err
	}
	id, err := c.submit(ctx, audioURL, languageCode)
	if err != nil {
		return nil, err
	}
	return c.poll(ctx, id)
}

func (c *Client) upload(ctx context.Context, path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open media file: %w", err)
	}
	defer file.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/upload", file)
	if err != nil {
		return "", fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Content-Type", "application/octet-stream")

	var out uploadResponse
	if err := c.do(req, &out); err != nil {
		return "", fmt.Errorf("upload media: %w", err)
	}
	if out.UploadURL == "" {
		return "", fmt.Errorf("upload response missing upload_url")
	}
	return out.UploadURL, nil
}

func (c *Client) submit(ctx context.Context, audioURL, languageCode string) (string, error) {
	body := submitRequest{
		AudioURL:      audioURL,
		SpeakerLabels: true,
		Punctuate:     true,
		FormatText:    true,
	}
	if languageCode != "" {
		body.LanguageCode = languageCode
	} else {
		body.LanguageDetection = true
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encode transcript request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/transcript", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build transcript request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	var out transcriptResponse
	if err := c.do(req, &out); err != nil {
		return "", fmt.Errorf("submit transcript job: %w", err)
	}
	if out.ID == "" {
		return "", fmt.Errorf("transcript response missing job id")
	}
	return out.ID, nil
}

func (c *Client) poll(ctx context.Context, id string) ([]Segment, error) {
	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v2/transcript/"+id, nil)
		if err != nil {
			return nil, fmt.Errorf("build poll request: %w", err)
		}
		req.Header.Set("Authorization", c.apiKey)

		var out transcriptResponse
		if err := c.do(req, &out); err != nil {
			return nil, fmt.Errorf("poll transcript %s: %w", id, err)
		}

		switch out.Status {
		case "completed":
			segments := make([]Segment, 0, len(out.Utterances))
			for _, u := range out.Utterances {
				segments = append(segments, Segment{
					Text:    u.Text,
					Start:   u.Start / 1000,
					End:     u.End / 1000,
					Speaker: u.Speaker,
				})
			}
			return segments, nil
		case "error":
			return nil, fmt.Errorf("transcription failed: %s", out.Error)
		case "queued", "processing":
			if err := c.sleep(ctx, c.pollInterval); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("unexpected transcript status %q", out.Status)
		}
	}
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("api returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
