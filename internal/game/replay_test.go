package game

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/jigoku/jigoku-server-go/internal/game/rules"
)

func testRecords(n int) []rules.Record {
	out := make([]rules.Record, 0, n)
	for i := 0; i < n; i++ {
		name := rules.EventCardBowed
		if i%2 == 1 {
			name = rules.EventMoveFate
		}
		r := rules.NewRecord(name, fmt.Sprintf("event-%d", i+1), "source", "p1")
		r.Sequence = i + 1
		r.Amount = i
		r.Metadata["fate"] = fmt.Sprint(i)
		out = append(out, r)
	}
	return out
}

func TestNewReplay(t *testing.T) {
	replay := NewReplay("game-123")
	assert.Equal(t, "game-123", replay.GameID)
	assert.Equal(t, 0, replay.CurrentIndex)
	assert.Equal(t, 0, replay.Size())
}

func TestReplayNavigation(t *testing.T) {
	replay := NewReplay("game-123")
	replay.Append(testRecords(5)...)
	require.Equal(t, 5, replay.Size())

	replay.Start()
	rec, ok := replay.Next()
	require.True(t, ok)
	assert.Equal(t, 1, rec.Sequence)
	rec, ok = replay.Next()
	require.True(t, ok)
	assert.Equal(t, 2, rec.Sequence)
	assert.Equal(t, 2, replay.CurrentIndex)

	// Previous steps back onto the record Next last returned.
	rec, ok = replay.Previous()
	require.True(t, ok)
	assert.Equal(t, 2, rec.Sequence)
	rec, ok = replay.Previous()
	require.True(t, ok)
	assert.Equal(t, 1, rec.Sequence)

	_, ok = replay.Previous()
	assert.False(t, ok)
	assert.Equal(t, 0, replay.CurrentIndex)

	for i := 0; i < 10; i++ {
		replay.Next()
	}
	_, ok = replay.Next()
	assert.False(t, ok)
}

func TestReplaySkip(t *testing.T) {
	replay := NewReplay("game-123")
	replay.Append(testRecords(10)...)
	replay.Start()

	rec, ok := replay.Skip(3)
	require.True(t, ok)
	assert.Equal(t, 4, rec.Sequence)

	rec, ok = replay.Skip(100)
	require.True(t, ok)
	assert.Equal(t, 10, rec.Sequence, "skips clamp to the last record")

	rec, ok = replay.Skip(-100)
	require.True(t, ok)
	assert.Equal(t, 1, rec.Sequence)

	_, ok = NewReplay("empty").Skip(1)
	assert.False(t, ok)
}

func TestReplayFilter(t *testing.T) {
	replay := NewReplay("game-123")
	replay.Append(testRecords(6)...)

	moves := replay.Filter(rules.EventMoveFate)
	require.Len(t, moves, 3)
	for _, r := range moves {
		assert.Equal(t, rules.EventMoveFate, r.Name)
	}
	assert.Empty(t, replay.Filter(rules.EventDuelFinished))
}

func TestReplaySaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	replay := NewReplay("game-save")
	replay.Append(testRecords(4)...)

	require.NoError(t, replay.SaveToFile(dir))
	_, err := os.Stat(filepath.Join(dir, "game-save.replay"))
	require.NoError(t, err)

	loaded, err := LoadReplayFromFile(dir, "game-save")
	require.NoError(t, err)
	assert.Equal(t, "game-save", loaded.GameID)
	require.Equal(t, 4, loaded.Size())
	for i, r := range loaded.Records {
		want := replay.Records[i]
		assert.Equal(t, want.Name, r.Name)
		assert.Equal(t, want.ID, r.ID)
		assert.Equal(t, want.Sequence, r.Sequence)
		assert.Equal(t, want.Amount, r.Amount)
		assert.Equal(t, want.Metadata["fate"], r.Metadata["fate"])
		assert.True(t, want.Timestamp.Equal(r.Timestamp))
	}
}

func TestLoadReplayErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadReplayFromFile(dir, "missing")
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "garbage.replay"), []byte("not gzip"), 0o644))
	_, err = LoadReplayFromFile(dir, "garbage")
	assert.ErrorContains(t, err, "gzip")
}

func TestReplayRecorder(t *testing.T) {
	dir := t.TempDir()
	recorder := NewReplayRecorder(zaptest.NewLogger(t), dir)

	recorder.RecordEvents("game-1", testRecords(1))
	_, ok := recorder.GetReplay("game-1")
	assert.False(t, ok, "records for unrecorded games are dropped")

	recorder.StartRecording("game-1")
	assert.True(t, recorder.IsRecording("game-1"))
	recorder.RecordEvents("game-1", testRecords(3))

	recorder.StopRecording("game-1")
	assert.False(t, recorder.IsRecording("game-1"))
	recorder.RecordEvents("game-1", testRecords(2))

	replay, ok := recorder.GetReplay("game-1")
	require.True(t, ok)
	assert.Equal(t, 3, replay.Size())

	require.NoError(t, recorder.SaveReplay("game-1"))
	_, ok = recorder.GetReplay("game-1")
	assert.False(t, ok, "saved replays leave memory")

	loaded, err := recorder.LoadReplay("game-1")
	require.NoError(t, err)
	assert.Equal(t, 3, loaded.Size())

	assert.Error(t, recorder.SaveReplay("game-1"))
}

func TestReplayRecorderClear(t *testing.T) {
	recorder := NewReplayRecorder(nil, t.TempDir())
	recorder.StartRecording("game-2")
	recorder.RecordEvents("game-2", testRecords(2))

	recorder.ClearReplay("game-2")

	_, ok := recorder.GetReplay("game-2")
	assert.False(t, ok)
	assert.False(t, recorder.IsRecording("game-2"))
}
