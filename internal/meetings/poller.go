package meetings

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"inlet/internal/fileutil"
	"inlet/internal/ledger"
	"inlet/internal/logging"
	"inlet/internal/mirror"
	"inlet/internal/notifications"
	"inlet/internal/status"
)

// Poller pulls new meeting transcripts on a fixed interval. A meeting UUID
// that has ever been attempted is never pulled again; a listed meeting whose
// transcript is not ready yet stays unmarked for later cycles.
type Poller struct {
	client   *Client
	tokens   *TokenManager
	ledger   *ledger.Store
	mirror   *mirror.Writer
	prefix   string
	state    *status.State
	notifier notifications.Service
	logger   *slog.Logger

	windowDays int
	interval   time.Duration
}

// PollerOptions wires a Poller's collaborators.
type PollerOptions struct {
	Client     *Client
	Tokens     *TokenManager
	Ledger     *ledger.Store
	Mirror     *mirror.Writer
	Prefix     string
	State      *status.State
	Notifier   notifications.Service
	Logger     *slog.Logger
	WindowDays int
	Interval   time.Duration
}

// NewPoller builds a Poller.
func NewPoller(opts PollerOptions) *Poller {
	windowDays := opts.WindowDays
	if windowDays <= 0 {
		windowDays = 7
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Poller{
		client:     opts.Client,
		tokens:     opts.Tokens,
		ledger:     opts.Ledger,
		mirror:     opts.Mirror,
		prefix:     strings.Trim(opts.Prefix, "/"),
		state:      opts.State,
		notifier:   opts.Notifier,
		logger:     logging.WithComponent(opts.Logger, "meetings"),
		windowDays: windowDays,
		interval:   interval,
	}
}

// Run polls until ctx is cancelled. Cycle errors are recorded and logged but
// never stop the loop.
func (p *Poller) Run(ctx context.Context) {
	p.logger.Info("meeting poller started",
		logging.Duration("interval", p.interval),
		logging.Int("window_days", p.windowDays))

	for {
		if err := p.PollOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			p.logger.Error("meeting poll cycle failed", logging.Error(err))
			p.state.RecordError(fmt.Sprintf("meetings: %s", truncate(err.Error(), 200)))
			if notifyErr := p.notifier.NotifyError(ctx, err, "meeting poller"); notifyErr != nil {
				p.logger.Warn("notification failed", logging.Error(notifyErr))
			}
		}

		select {
		case <-ctx.Done():
			p.logger.Info("meeting poller stopped")
			return
		case <-time.After(p.interval):
		}
	}
}

// PollOnce performs a single poll cycle. A missing credential skips the cycle
// without error; linking can happen while the daemon runs.
func (p *Poller) PollOnce(ctx context.Context) error {
	if !p.tokens.HasCredential() {
		p.logger.Warn("meeting platform credential not linked, skipping cycle")
		return nil
	}

	now := time.Now().UTC()
	from := now.AddDate(0, 0, -p.windowDays)
	meetings, err := p.client.ListRecordings(ctx, from, now)
	if err != nil {
		return err
	}
	defer p.state.RecordMeetingPoll()

	if len(meetings) == 0 {
		p.logger.Debug("no recordings in window")
		return nil
	}

	blocked, err := p.ledger.BlockedIdentities(ctx)
	if err != nil {
		return err
	}

	pulled := 0
	for _, meeting := range meetings {
		if err := ctx.Err(); err != nil {
			return err
		}
		if meeting.UUID == "" {
			continue
		}
		if _, done := blocked[meeting.UUID]; done {
			continue
		}

		saved, err := p.archive(ctx, meeting)
		if err != nil {
			return err
		}
		if saved {
			pulled++
		}
	}

	if pulled > 0 {
		p.logger.Info("pulled new transcripts", logging.Int(logging.FieldCount, pulled))
	}
	return nil
}

func (p *Poller) archive(ctx context.Context, meeting Meeting) (bool, error) {
	transcript, err := p.client.MeetingTranscript(ctx, meeting.ID)
	if err != nil {
		return false, err
	}
	if transcript == nil {
		// Not ready or already purged; do not mark, a later cycle retries
		// while the meeting remains listed.
		p.logger.Debug("no transcript available",
			logging.String(logging.FieldTopic, meeting.Topic),
			logging.String(logging.FieldMeeting, meeting.UUID))
		return false, nil
	}

	date := meetingDate(meeting.StartTime)
	safeTopic := fileutil.SanitizeDirName(meeting.Topic)
	prefix := fmt.Sprintf("%s/meetings/%s/%s", p.prefix, date, safeTopic)

	localDir, err := p.mirror.Save(ctx, prefix, "transcript.vtt", []byte(transcript.Content))
	if err != nil {
		return false, err
	}

	meta := map[string]any{
		"topic":      meeting.Topic,
		"start_time": meeting.StartTime,
		"duration":   meeting.Duration,
		"meeting_id": fmt.Sprintf("%d", meeting.ID),
		"uuid":       meeting.UUID,
		"pulled_at":  time.Now().UTC().Format(time.RFC3339),
	}
	metaJSON, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return false, fmt.Errorf("encode metadata: %w", err)
	}
	if _, err := p.mirror.Save(ctx, prefix, "metadata.json", metaJSON); err != nil {
		return false, err
	}

	if err := p.ledger.MarkProcessed(ctx, meeting.UUID, true, prefix); err != nil {
		return false, err
	}

	p.logger.Info("transcript archived",
		logging.String(logging.FieldTopic, meeting.Topic),
		logging.String(logging.FieldMeeting, meeting.UUID),
		logging.String(logging.FieldPath, localDir))
	p.state.RecordTranscriptSaved()

	if err := p.notifier.NotifyTranscriptSaved(ctx, meeting.Topic, date); err != nil {
		p.logger.Warn("notification failed", logging.Error(err))
	}
	return true, nil
}

func meetingDate(startTime string) string {
	if len(startTime) >= 10 {
		return startTime[:10]
	}
	return time.Now().UTC().Format("2006-01-02")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
