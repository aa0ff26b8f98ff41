// Package status tracks runtime counters and recent errors for the daemon.
//
// The original deployment kept this in an ambient singleton; here it is a
// value owned by the process and injected into the loops that update it.
package status

import (
	"sync"
	"time"
)

// maxRecentErrors bounds the error ring; the oldest entry is dropped first.
const maxRecentErrors = 20

// RecordedError is one loop-level failure surfaced to the status API.
type RecordedError struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
}

// Snapshot is a point-in-time copy of the daemon state, safe to serialize.
type Snapshot struct {
	StartedAt        time.Time       `json:"started_at"`
	WatcherEnabled   bool            `json:"watcher_enabled"`
	MeetingsEnabled  bool            `json:"meetings_enabled"`
	MirrorEnabled    bool            `json:"mirror_enabled"`
	FilesProcessed   int             `json:"files_processed"`
	FilesFailed      int             `json:"files_failed"`
	TranscriptsSaved int             `json:"transcripts_saved"`
	LastActivity     *time.Time      `json:"last_activity,omitempty"`
	LastMeetingPoll  *time.Time      `json:"last_meeting_poll,omitempty"`
	RecentErrors     []RecordedError `json:"recent_errors"`
}

// State holds mutable daemon counters behind a mutex. Counters are
// best-effort observability; no control flow depends on them.
type State struct {
	mu sync.Mutex

	startedAt       time.Time
	watcherEnabled  bool
	meetingsEnabled bool
	mirrorEnabled   bool

	filesProcessed   int
	filesFailed      int
	transcriptsSaved int

	lastActivity    time.Time
	lastMeetingPoll time.Time

	recentErrors []RecordedError
}

// New returns a State stamped with the current time.
func New() *State {
	return &State{startedAt: time.Now()}
}

// SetModules records which subsystems are active for status reporting.
func (s *State) SetModules(watcher, meetings, mirror bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watcherEnabled = watcher
	s.meetingsEnabled = meetings
	s.mirrorEnabled = mirror
}

// RecordFileProcessed counts one local-file processing attempt.
func (s *State) RecordFileProcessed(success bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if success {
		s.filesProcessed++
	} else {
		s.filesFailed++
	}
	s.lastActivity = time.Now()
}

// RecordTranscriptSaved counts one pulled meeting transcript.
func (s *State) RecordTranscriptSaved() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcriptsSaved++
	s.lastActivity = time.Now()
}

// RecordMeetingPoll stamps the completion of a remote poll cycle.
func (s *State) RecordMeetingPoll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastMeetingPoll = time.Now()
}

// RecordError appends a loop-level failure, keeping only the most recent
// maxRecentErrors entries.
func (s *State) RecordError(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recentErrors = append(s.recentErrors, RecordedError{
		Timestamp: time.Now(),
		Message:   message,
	})
	if len(s.recentErrors) > maxRecentErrors {
		s.recentErrors = s.recentErrors[len(s.recentErrors)-maxRecentErrors:]
	}
}

// Snapshot returns a copy of the current state.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		StartedAt:        s.startedAt,
		WatcherEnabled:   s.watcherEnabled,
		MeetingsEnabled:  s.meetingsEnabled,
		MirrorEnabled:    s.mirrorEnabled,
		FilesProcessed:   s.filesProcessed,
		FilesFailed:      s.filesFailed,
		TranscriptsSaved: s.transcriptsSaved,
		RecentErrors:     make([]RecordedError, len(s.recentErrors)),
	}
	copy(snap.RecentErrors, s.recentErrors)
	if !s.lastActivity.IsZero() {
		t := s.lastActivity
		snap.LastActivity = &t
	}
	if !s.lastMeetingPoll.IsZero() {
		t := s.lastMeetingPoll
		snap.LastMeetingPoll = &t
	}
	return snap
}
