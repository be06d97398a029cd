package game

import (
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jigoku/jigoku-server-go/internal/game/rules"
)

const replayVersion = 2

// Replay is the ordered list of event records of one game, with a cursor
// for stepping through them.
type Replay struct {
	GameID       string
	Records      []rules.Record
	CurrentIndex int
	mu           sync.RWMutex
}

// NewReplay creates an empty replay.
func NewReplay(gameID string) *Replay {
	return &Replay{
		GameID:  gameID,
		Records: make([]rules.Record, 0),
	}
}

// Append adds records to the end of the replay.
func (r *Replay) Append(records ...rules.Record) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Records = append(r.Records, records...)
}

// Start rewinds the cursor.
func (r *Replay) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.CurrentIndex = 0
}

// Next returns the record under the cursor and advances it.
func (r *Replay) Next() (rules.Record, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.CurrentIndex < len(r.Records) {
		rec := r.Records[r.CurrentIndex]
		r.CurrentIndex++
		return rec, true
	}
	return rules.Record{}, false
}

// Previous moves the cursor back one record and returns it.
func (r *Replay) Previous() (rules.Record, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.CurrentIndex > 0 {
		r.CurrentIndex--
		return r.Records[r.CurrentIndex], true
	}
	return rules.Record{}, false
}

// Skip moves the cursor by count records, clamped to the replay.
func (r *Replay) Skip(count int) (rules.Record, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.CurrentIndex + count
	if idx >= len(r.Records) {
		idx = len(r.Records) - 1
	}
	if idx < 0 {
		idx = 0
	}
	r.CurrentIndex = idx
	if idx < len(r.Records) {
		return r.Records[idx], true
	}
	return rules.Record{}, false
}

// Size returns the number of records.
func (r *Replay) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.Records)
}

// Filter returns the records with the given event name, in order.
func (r *Replay) Filter(name rules.EventName) []rules.Record {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []rules.Record
	for _, rec := range r.Records {
		if rec.Name == name {
			out = append(out, rec)
		}
	}
	return out
}

// SaveToFile writes the replay as a gzipped gob stream to
// <directory>/<game id>.replay.
func (r *Replay) SaveToFile(directory string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := os.MkdirAll(directory, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	filename := filepath.Join(directory, r.GameID+".replay")
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gz := gzip.NewWriter(file)
	encoder := gob.NewEncoder(gz)
	metadata := replayMetadata{
		GameID:      r.GameID,
		Timestamp:   time.Now(),
		Version:     replayVersion,
		RecordCount: len(r.Records),
	}
	if err := encoder.Encode(&metadata); err != nil {
		gz.Close()
		return fmt.Errorf("failed to encode metadata: %w", err)
	}
	for i := range r.Records {
		if err := encoder.Encode(&r.Records[i]); err != nil {
			gz.Close()
			return fmt.Errorf("failed to encode record %d: %w", i, err)
		}
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("failed to flush replay: %w", err)
	}
	return nil
}

// LoadReplayFromFile reads a replay written by SaveToFile.
func LoadReplayFromFile(directory, gameID string) (*Replay, error) {
	file, err := os.Open(filepath.Join(directory, gameID+".replay"))
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	gz, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gz.Close()

	decoder := gob.NewDecoder(gz)
	var metadata replayMetadata
	if err := decoder.Decode(&metadata); err != nil {
		return nil, fmt.Errorf("failed to decode metadata: %w", err)
	}
	if metadata.Version != replayVersion {
		return nil, fmt.Errorf("unsupported replay version: %d", metadata.Version)
	}

	replay := NewReplay(metadata.GameID)
	for i := 0; i < metadata.RecordCount; i++ {
		var rec rules.Record
		if err := decoder.Decode(&rec); err != nil {
			return nil, fmt.Errorf("failed to decode record %d: %w", i, err)
		}
		replay.Records = append(replay.Records, rec)
	}
	return replay, nil
}

type replayMetadata struct {
	GameID      string
	Timestamp   time.Time
	Version     int
	RecordCount int
}

// ReplayRecorder collects the records of hosted games and saves them when
// the games end.
type ReplayRecorder struct {
	logger  *zap.Logger
	mu      sync.RWMutex
	replays map[string]*Replay
	enabled map[string]bool
	saveDir string
}

// NewReplayRecorder creates a recorder saving into saveDir.
func NewReplayRecorder(logger *zap.Logger, saveDir string) *ReplayRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
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
	rr.logger.Info("started replay recording", zap.String("game_id", gameID))
}

// StopRecording stops recording a game; the replay is kept until saved.
func (rr *ReplayRecorder) StopRecording(gameID string) {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	rr.enabled[gameID] = false
	rr.logger.Info("stopped replay recording", zap.String("game_id", gameID))
}

// RecordEvents appends records to a game's replay if it is being recorded.
func (rr *ReplayRecorder) RecordEvents(gameID string, records []rules.Record) {
	rr.mu.RLock()
	enabled := rr.enabled[gameID]
	replay := rr.replays[gameID]
	rr.mu.RUnlock()

	if !enabled || replay == nil {
		return
	}
	replay.Append(records...)
	rr.logger.Debug("recorded replay events",
		zap.String("game_id", gameID),
		zap.Int("record_count", replay.Size()),
	)
}

// GetReplay returns the in-memory replay of a game.
func (rr *ReplayRecorder) GetReplay(gameID string) (*Replay, bool) {
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
	rr.logger.Info("saved replay to disk",
		zap.String("game_id", gameID),
		zap.Int("record_count", replay.Size()),
		zap.String("directory", rr.saveDir),
	)
	return nil
}

// LoadReplay reads a saved replay.
func (rr *ReplayRecorder) LoadReplay(gameID string) (*Replay, error) {
	replay, err := LoadReplayFromFile(rr.saveDir, gameID)
	if err != nil {
		return nil, err
	}
	rr.logger.Info("loaded replay from disk",
		zap.String("game_id", gameID),
		zap.Int("record_count", replay.Size()),
	)
	return replay, nil
}

// ClearReplay drops a replay without saving it.
func (rr *ReplayRecorder) ClearReplay(gameID string) {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	delete(rr.replays, gameID)
	delete(rr.enabled, gameID)
}

// IsRecording reports whether a game is being recorded.
func (rr *ReplayRecorder) IsRecording(gameID string) bool {
	rr.mu.RLock()
	defer rr.mu.RUnlock()

	return rr.enabled[gameID]
}
