package repository

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/jigoku/jigoku-server-go/internal/config"
	"github.com/jigoku/jigoku-server-go/internal/game"
	"github.com/jigoku/jigoku-server-go/internal/game/rules"
)

func sampleRecords(n int) []rules.Record {
	out := make([]rules.Record, 0, n)
	for i := 0; i < n; i++ {
		r := rules.NewRecord(rules.EventMoveFate, fmt.Sprintf("event-%d", i+1), "ring-fire", "p1")
		r.Sequence = i + 1
		r.Amount = i
		r.TargetIDs = []string{"card-1"}
		r.Metadata["fate"] = fmt.Sprint(i)
		r.Timestamp = time.Now().UTC().Truncate(time.Microsecond)
		out = append(out, r)
	}
	return out
}

var (
	_ EventStore   = (*MemoryJournal)(nil)
	_ EventStore   = (*PostgresJournal)(nil)
	_ game.Journal = (*MemoryJournal)(nil)
)

func TestMemoryJournal(t *testing.T) {
	ctx := context.Background()
	j := NewMemoryJournal()

	require.NoError(t, j.Append(ctx, "g1", sampleRecords(2)))
	require.NoError(t, j.Append(ctx, "g1", sampleRecords(3)[2:]))
	require.NoError(t, j.Append(ctx, "g2", sampleRecords(1)))

	records, err := j.Records(ctx, "g1")
	require.NoError(t, err)
	require.Len(t, records, 3)
	for i, r := range records {
		assert.Equal(t, i+1, r.Sequence)
	}
	assert.ElementsMatch(t, []string{"g1", "g2"}, j.Games())

	empty, err := j.Records(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMemoryJournalCopiesRecords(t *testing.T) {
	ctx := context.Background()
	j := NewMemoryJournal()
	records := sampleRecords(1)
	require.NoError(t, j.Append(ctx, "g1", records))

	records[0].Metadata["fate"] = "changed"
	records[0].TargetIDs[0] = "changed"
	stored, _ := j.Records(ctx, "g1")
	assert.Equal(t, "0", stored[0].Metadata["fate"])
	assert.Equal(t, "card-1", stored[0].TargetIDs[0])

	stored[0].Metadata["fate"] = "mutated"
	again, _ := j.Records(ctx, "g1")
	assert.Equal(t, "0", again[0].Metadata["fate"])
}

func TestMemoryJournalBacksEngine(t *testing.T) {
	ctx := context.Background()
	j := NewMemoryJournal()
	engine := game.NewEngine(game.EngineOptions{Logger: zaptest.NewLogger(t), Journal: j})
	seats := []game.SeatRequest{{ID: "p1", Name: "Player 1"}, {ID: "p2", Name: "Player 2"}}

	_, err := engine.CreateGame(ctx, "g1", seats, func(g *game.Game) error {
		g.RaiseEvent(rules.EventModifyHonor, game.EventParams{Player: g.Player("p1"), Amount: 2})
		return nil
	})
	require.NoError(t, err)

	records, err := j.Records(ctx, "g1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, rules.EventModifyHonor, records[0].Name)
}

// TestPostgresJournal runs against a live database when JIGOKU_TEST_DSN is
// set.
func TestPostgresJournal(t *testing.T) {
	dsn := os.Getenv("JIGOKU_TEST_DSN")
	if dsn == "" {
		t.Skip("JIGOKU_TEST_DSN not set")
	}
	ctx := context.Background()
	j, err := NewPostgresJournal(ctx, config.DatabaseConfig{DSN: dsn, MaxConns: 2}, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer j.Close()

	gameID := fmt.Sprintf("test-%d", time.Now().UnixNano())
	defer func() { _ = j.DeleteGame(ctx, gameID) }()

	records := sampleRecords(3)
	require.NoError(t, j.Append(ctx, gameID, records))
	require.NoError(t, j.Append(ctx, gameID, records[:1]), "duplicate sequences are ignored")

	stored, err := j.Records(ctx, gameID)
	require.NoError(t, err)
	require.Len(t, stored, 3)
	for i, r := range stored {
		assert.Equal(t, records[i].Sequence, r.Sequence)
		assert.Equal(t, records[i].Name, r.Name)
		assert.Equal(t, records[i].TargetIDs, r.TargetIDs)
		assert.Equal(t, records[i].Metadata, r.Metadata)
		assert.True(t, records[i].Timestamp.Equal(r.Timestamp))
	}
}
