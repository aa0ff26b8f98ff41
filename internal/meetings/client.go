package meetings

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// listPageSize is the page size requested from the recordings listing.
const listPageSize = "100"

// Meeting is one cloud recording entry from the listing API. UUID is the
// dedup identity; ID addresses the per-meeting recordings endpoint.
type Meeting struct {
	UUID      string `json:"uuid"`
	ID        int64  `json:"id"`
	Topic     string `json:"topic"`
	StartTime string `json:"start_time"`
	Duration  int    `json:"duration"`
}

// Transcript is a downloaded VTT transcript for one meeting.
type Transcript struct {
	Content     string
	DownloadURL string
	FileType    string
}

// Client calls the meeting platform's REST API with bearer tokens supplied by
// a TokenManager.
type Client struct {
	apiBase    string
	tokens     *TokenManager
	httpClient *http.Client
}

// NewClient builds an API client rooted at apiBase.
func NewClient(apiBase string, tokens *TokenManager, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		apiBase:    strings.TrimRight(apiBase, "/"),
		tokens:     tokens,
		httpClient: httpClient,
	}
}

type recordingsPage struct {
	Meetings      []Meeting `json:"meetings"`
	NextPageToken string    `json:"next_page_token"`
}

// ListRecordings returns all cloud recordings for the authenticated user in
// the [from, to] date window, following pagination to exhaustion.
func (c *Client) ListRecordings(ctx context.Context, from, to time.Time) ([]Meeting, error) {
	var meetings []Meeting
	pageToken := ""
	for {
		params := url.Values{}
		params.Set("from", from.UTC().Format("2006-01-02"))
		params.Set("to", to.UTC().Format("2006-01-02"))
		params.Set("page_size", listPageSize)
		if pageToken != "" {
			params.Set("next_page_token", pageToken)
		}

		var page recordingsPage
		if err := c.get(ctx, "/users/me/recordings?"+params.Encode(), &page); err != nil {
			return nil, fmt.Errorf("list recordings: %w", err)
		}
		meetings = append(meetings, page.Meetings...)

		if page.NextPageToken == "" {
			return meetings, nil
		}
		pageToken = page.NextPageToken
	}
}

type meetingRecordings struct {
	RecordingFiles []struct {
		FileType      string `json:"file_type"`
		RecordingType string `json:"recording_type"`
		DownloadURL   string `json:"download_url"`
	} `json:"recording_files"`
}

// MeetingTranscript downloads the VTT transcript for meetingID. It returns
// (nil, nil) when the meeting's recordings are gone (404) or no transcript
// artifact exists yet; callers leave such meetings unmarked so a later cycle
// can pick them up.
func (c *Client) MeetingTranscript(ctx context.Context, meetingID int64) (*Transcript, error) {
	var recording meetingRecordings
	err := c.get(ctx, "/meetings/"+strconv.FormatInt(meetingID, 10)+"/recordings", &recording)
	if err != nil {
		var apiErr *apiError
		if isAPIStatus(err, http.StatusNotFound, &apiErr) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch meeting recordings: %w", err)
	}

	fileType := ""
	downloadURL := ""
	for _, f := range recording.RecordingFiles {
		if f.FileType == "TRANSCRIPT" || f.RecordingType == "audio_transcript" {
			fileType = f.FileType
			downloadURL = f.DownloadURL
			break
		}
	}
	if downloadURL == "" {
		return nil, nil
	}
	if fileType == "" {
		fileType = "TRANSCRIPT"
	}

	content, err := c.download(ctx, downloadURL)
	if err != nil {
		return nil, fmt.Errorf("download transcript: %w", err)
	}
	return &Transcript{
		Content:     content,
		DownloadURL: downloadURL,
		FileType:    fileType,
	}, nil
}

type apiError struct {
	status int
	body   string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("api returned %d: %s", e.status, e.body)
}

func isAPIStatus(err error, status int, target **apiError) bool {
	if apiErr, ok := err.(*apiError); ok && apiErr.status == status {
		*target = apiErr
		return true
	}
	return false
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBase+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &apiError{status: resp.StatusCode, body: strings.TrimSpace(string(body))}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) download(ctx context.Context, downloadURL string) (string, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return "", fmt.Errorf("build download request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", &apiError{status: resp.StatusCode, body: strings.TrimSpace(string(body))}
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read transcript body: %w", err)
	}
	return string(data), nil
}
