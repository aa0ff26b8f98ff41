package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"inlet/internal/fileutil"
	"inlet/internal/logging"
	"inlet/internal/mirror"
	"inlet/internal/notifications"
)

// Processor transcribes inbox files and persists the results. Transcripts are
// written beside the source file and into the mirror under the files/ prefix.
type Processor struct {
	client          *Client
	mirror          *mirror.Writer
	prefix          string
	defaultLanguage string
	notifier        notifications.Service
	logger          *slog.Logger
}

// NewProcessor wires a Processor. notifier may be a noop service but must not
// be nil.
func NewProcessor(client *Client, writer *mirror.Writer, prefix, defaultLanguage string, notifier notifications.Service, logger *slog.Logger) *Processor {
	return &Processor{
		client:          client,
		mirror:          writer,
		prefix:          prefix,
		defaultLanguage: defaultLanguage,
		notifier:        notifier,
		logger:          logging.WithComponent(logger, "transcribe"),
	}
}

// Process transcribes the file at path. An existing transcript beside the
// source short-circuits the vendor call so re-runs after a ledger reset stay
// cheap.
func (p *Processor) Process(ctx context.Context, path string) error {
	base := filepath.Base(path)
	textPath := replaceSuffix(path, ".transcript.txt")
	if _, err := os.Stat(textPath); err == nil {
		p.logger.Info("transcript already present, skipping vendor call",
			logging.String(logging.FieldPath, textPath))
		return p.mirrorTranscript(ctx, textPath)
	}

	language := p.defaultLanguage
	if language == "" {
		language = LanguageFromFilename(path)
	}
	if language != "" {
		p.logger.Info("using language code",
			logging.String("language", language), logging.String(logging.FieldPath, base))
	}

	segments, err := p.client.Transcribe(ctx, path, language)
	if err != nil {
		return fmt.Errorf("transcribe %s: %w", base, err)
	}

	// Segment cache lets a rerun skip the vendor after a partial failure.
	if data, err := json.MarshalIndent(segments, "", "  "); err == nil {
		cachePath := replaceSuffix(path, ".transcript.json")
		if err := fileutil.WriteFileAtomic(cachePath, data, 0o644); err != nil {
			p.logger.Warn("failed to cache segments", logging.Error(err))
		}
	}

	text := FormatTranscript(base, segments)
	if err := fileutil.WriteFileAtomic(textPath, []byte(text), 0o644); err != nil {
		return fmt.Errorf("write transcript: %w", err)
	}
	p.logger.Info("transcript written",
		logging.String(logging.FieldPath, textPath),
		logging.Int(logging.FieldCount, len(segments)))

	if err := p.mirrorTranscript(ctx, textPath); err != nil {
		return err
	}

	if err := p.notifier.NotifyFileTranscribed(ctx, base); err != nil {
		p.logger.Warn("notification failed", logging.Error(err))
	}
	return nil
}

func (p *Processor) mirrorTranscript(ctx context.Context, textPath string) error {
	data, err := os.ReadFile(textPath)
	if err != nil {
		return fmt.Errorf("read transcript for mirror: %w", err)
	}
	prefix := strings.Trim(p.prefix, "/") + "/files"
	if _, err := p.mirror.Save(ctx, prefix, filepath.Base(textPath), data); err != nil {
		return fmt.Errorf("mirror transcript: %w", err)
	}
	return nil
}

func replaceSuffix(path, suffix string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + suffix
}
