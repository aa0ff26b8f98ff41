package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"inlet/internal/config"
)

const userAgent = "Inlet-Go/0.1.0"

// Service defines the notification surface exposed to pipeline components.
type Service interface {
	NotifyFileTranscribed(ctx context.Context, filename string) error
	NotifyTranscriptSaved(ctx context.Context, topic, date string) error
	NotifyError(ctx context.Context, err error, contextLabel string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:    topic,
		client:      &http.Client{Timeout: timeout},
		transcripts: cfg.Notifications.Transcripts,
		errors:      cfg.Notifications.Errors,
		titler:      cases.Title(language.English),
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint    string
	client      *http.Client
	transcripts bool
	errors      bool
	titler      cases.Caser
}

func (n *ntfyService) NotifyFileTranscribed(ctx context.Context, filename string) error {
	if !n.transcripts {
		return nil
	}
	filename = strings.TrimSpace(filename)
	data := payload{
		title:   "Inlet - Transcribed",
		message: fmt.Sprintf("Transcript ready: %s", filename),
		tags:    []string{"inlet", "file", "transcribed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyTranscriptSaved(ctx context.Context, topic, date string) error {
	if !n.transcripts {
		return nil
	}
	topic = strings.TrimSpace(topic)
	if topic == "" {
		topic = "untitled meeting"
	}
	message := fmt.Sprintf("Meeting transcript saved: %s", n.titler.String(topic))
	if date = strings.TrimSpace(date); date != "" {
		message = fmt.Sprintf("%s (%s)", message, date)
	}
	data := payload{
		title:   "Inlet - Meeting Archived",
		message: message,
		tags:    []string{"inlet", "meeting", "saved"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	if !n.errors {
		return nil
	}
	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "Inlet - Error",
		message:  builder.String(),
		tags:     []string{"inlet", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Inlet - Test",
		message:  "Notification system test",
		tags:     []string{"inlet", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyFileTranscribed(context.Context, string) error   { return nil }
func (noopService) NotifyTranscriptSaved(context.Context, string, string) error { return nil }
func (noopService) NotifyError(context.Context, error, string) error      { return nil }
func (noopService) TestNotification(context.Context) error                { return nil }
