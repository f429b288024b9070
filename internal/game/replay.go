package game

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/quizboard/quizboard-server-go/internal/game/state"
)

const replayVersion = 1

// ReplayFrame is the state after one accepted action.
type ReplayFrame struct {
	Sequence int             `json:"sequence"`
	Action   string          `json:"action"`
	Snapshot *state.Snapshot `json:"snapshot"`
}

// Replay is a recorded game with sequential frames for playback.
type Replay struct {
	GameID       string
	Frames       []*ReplayFrame
	CurrentIndex int
	mu           sync.RWMutex
}

// NewReplay creates an empty replay.
func NewReplay(gameID string) *Replay {
	return &Replay{
		GameID: gameID,
		Frames: make([]*ReplayFrame, 0),
	}
}

// Record appends a frame, numbering it.
func (r *Replay) Record(action string, snapshot *state.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Frames = append(r.Frames, &ReplayFrame{
		Sequence: len(r.Frames) + 1,
		Action:   action,
		Snapshot: snapshot,
	})
}

// Start rewinds to the first frame.
func (r *Replay) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.CurrentIndex = 0
}

// Next returns the frame at the cursor and advances it, or nil at the end.
func (r *Replay) Next() *ReplayFrame {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.CurrentIndex < len(r.Frames) {
		frame := r.Frames[r.CurrentIndex]
		r.CurrentIndex++
		return frame
	}
	return nil
}

// Previous moves the cursor back and returns that frame, or nil at the start.
func (r *Replay) Previous() *ReplayFrame {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.CurrentIndex > 0 {
		r.CurrentIndex--
		return r.Frames[r.CurrentIndex]
	}
	return nil
}

// Skip moves the cursor by count frames, clamped to the recorded range.
func (r *Replay) Skip(count int) *ReplayFrame {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.CurrentIndex + count
	if idx >= len(r.Frames) {
		idx = len(r.Frames) - 1
	}
	if idx < 0 {
		idx = 0
	}
	r.CurrentIndex = idx
	if idx < len(r.Frames) {
		return r.Frames[idx]
	}
	return nil
}

// Size returns the number of recorded frames.
func (r *Replay) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.Frames)
}

// At returns the frame at index, or nil.
func (r *Replay) At(index int) *ReplayFrame {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if index >= 0 && index < len(r.Frames) {
		return r.Frames[index]
	}
	return nil
}

type replayMetadata struct {
	GameID     string    `json:"game_id"`
	Timestamp  time.Time `json:"timestamp"`
	Version    int       `json:"version"`
	FrameCount int       `json:"frame_count"`
}

func replayPath(directory, gameID string) string {
	return filepath.Join(directory, fmt.Sprintf("%s.replay", gameID))
}

// SaveToFile writes the replay as a gzipped JSON stream: metadata, then frames.
func (r *Replay) SaveToFile(directory string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := os.MkdirAll(directory, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(replayPath(directory, r.GameID))
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gz := gzip.NewWriter(file)
	encoder := json.NewEncoder(gz)

	metadata := replayMetadata{
		GameID:     r.GameID,
		Timestamp:  time.Now().UTC(),
		Version:    replayVersion,
		FrameCount: len(r.Frames),
	}
	if err := encoder.Encode(&metadata); err != nil {
		gz.Close()
		return fmt.Errorf("failed to encode metadata: %w", err)
	}
	for i, frame := range r.Frames {
		if err := encoder.Encode(frame); err != nil {
			gz.Close()
			return fmt.Errorf("failed to encode frame %d: %w", i, err)
		}
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("failed to flush replay: %w", err)
	}
	return nil
}

// LoadReplayFromFile reads a replay written by SaveToFile.
func LoadReplayFromFile(directory, gameID string) (*Replay, error) {
	file, err := os.Open(replayPath(directory, gameID))
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	gz, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gz.Close()

	decoder := json.NewDecoder(gz)

	var metadata replayMetadata
	if err := decoder.Decode(&metadata); err != nil {
		return nil, fmt.Errorf("failed to decode metadata: %w", err)
	}
	if metadata.Version != replayVersion {
		return nil, fmt.Errorf("unsupported replay version: %d", metadata.Version)
	}

	replay := NewReplay(metadata.GameID)
	for i := 0; i < metadata.FrameCount; i++ {
		var frame ReplayFrame
		if err := decoder.Decode(&frame); err != nil {
			return nil, fmt.Errorf("failed to decode frame %d: %w", i, err)
		}
		replay.Frames = append(replay.Frames, &frame)
	}
	return replay, nil
}

// ReplayRecorder keeps one replay per game id.
type ReplayRecorder struct {
	logger  *zap.Logger
	mu      sync.RWMutex
	replays map[string]*Replay
	enabled map[string]bool
	saveDir string
}

// NewReplayRecorder creates a recorder that saves into saveDir.
func NewReplayRecorder(logger *zap.Logger, saveDir string) *ReplayRecorder {
	return &ReplayRecorder{
		logger:  logger,
		replays: make(map[string]*Replay),
		enabled: make(map[string]bool),
		saveDir: saveDir,
	}
}

// StartRecording begins recording a game.
func (rr *ReplayRecorder) StartRecording(gameID string) {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	rr.replays[gameID] = NewReplay(gameID)
	rr.enabled[gameID] = true

	if rr.logger != nil {
		rr.logger.Info("started replay recording", zap.String("game_id", gameID))
	}
}

// StopRecording stops recording without discarding frames.
func (rr *ReplayRecorder) StopRecording(gameID string) {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	rr.enabled[gameID] = false

	if rr.logger != nil {
		rr.logger.Info("stopped replay recording", zap.String("game_id", gameID))
	}
}

// Record appends a frame if recording is enabled for the game.
func (rr *ReplayRecorder) Record(gameID, action string, snapshot *state.Snapshot) {
	rr.mu.RLock()
	enabled := rr.enabled[gameID]
	replay := rr.replays[gameID]
	rr.mu.RUnlock()

	if !enabled || replay == nil {
		return
	}

	replay.Record(action, snapshot)

	if rr.logger != nil {
		rr.logger.Debug("recorded replay frame",
			zap.String("game_id", gameID),
			zap.String("action", action),
			zap.Int("frame_count", replay.Size()),
		)
	}
}

// Replay returns the in-memory replay for a game.
func (rr *ReplayRecorder) Replay(gameID string) (*Replay, bool) {
	rr.mu.RLock()
	defer rr.mu.RUnlock()

	replay, ok := rr.replays[gameID]
	return replay, ok
}

// SaveReplay writes a replay to disk and drops it from memory.
func (rr *ReplayRecorder) SaveReplay(gameID string) error {
	rr.mu.Lock()
	replay, ok := rr.replays[gameID]
	if !ok {
		rr.mu.Unlock()
		return fmt.Errorf("no replay found for game %s", gameID)
	}
	delete(rr.replays, gameID)
	delete(rr.enabled, gameID)
	rr.mu.Unlock()

	if err := replay.SaveToFile(rr.saveDir); err != nil {
		return fmt.Errorf("failed to save replay: %w", err)
	}

	if rr.logger != nil {
		rr.logger.Info("saved replay to disk",
			zap.String("game_id", gameID),
			zap.Int("frame_count", replay.Size()),
			zap.String("directory", rr.saveDir),
		)
	}
	return nil
}

// LoadReplay reads a saved replay from the recorder's directory.
func (rr *ReplayRecorder) LoadReplay(gameID string) (*Replay, error) {
	replay, err := LoadReplayFromFile(rr.saveDir, gameID)
	if err != nil {
		return nil, err
	}

	if rr.logger != nil {
		rr.logger.Info("loaded replay from disk",
			zap.String("game_id", gameID),
			zap.Int("frame_count", replay.Size()),
		)
	}
	return replay, nil
}

// ClearReplay drops a replay from memory without saving.
func (rr *ReplayRecorder) ClearReplay(gameID string) {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	delete(rr.replays, gameID)
	delete(rr.enabled, gameID)
}

// IsRecording reports whether frames are being recorded for the game.
func (rr *ReplayRecorder) IsRecording(gameID string) bool {
	rr.mu.RLock()
	defer rr.mu.RUnlock()

	return rr.enabled[gameID]
}
