package game

import (
	"bytes"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"
)

// PlayerState is the serialisable state of a player.
type PlayerState struct {
	ID            string
	Name          string
	Fate          int
	Honor         int
	ImperialFavor Favor
	FirstPlayer   bool
	HonorBid      int
	Lists         map[Location][]string
	Provinces     map[Location]string
}

// RingState is the serialisable state of a ring.
type RingState struct {
	Element         Element
	ConflictType    ConflictType
	Fate            int
	ClaimedBy       string
	Contested       bool
	RemovedFromGame bool
}

// StateSnapshot is a serialisable copy of a game's state.
type StateSnapshot struct {
	GameID    string
	Round     int
	Phase     string
	Sequence  int
	Finished  bool
	WinnerID  string
	Players   map[string]PlayerState
	Cards     map[string]CardSnapshot
	Rings     map[Element]RingState
	Conflict  *ConflictSummary
	Timestamp time.Time
}

// Snapshot copies the game's current state.
func (g *Game) Snapshot() *StateSnapshot {
	s := &StateSnapshot{
		GameID:    g.ID,
		Round:     g.phases.Round(),
		Phase:     g.phases.CurrentPhase().String(),
		Sequence:  g.seq,
		Finished:  g.finished,
		Players:   make(map[string]PlayerState, len(g.players)),
		Cards:     make(map[string]CardSnapshot, len(g.cards)),
		Rings:     make(map[Element]RingState, len(g.rings)),
		Timestamp: time.Now(),
	}
	if g.winner != nil {
		s.WinnerID = g.winner.ID
	}
	for _, p := range g.players {
		ps := PlayerState{
			ID:            p.ID,
			Name:          p.Name,
			Fate:          p.Fate,
			Honor:         p.Honor,
			ImperialFavor: p.ImperialFavor,
			FirstPlayer:   p.FirstPlayer,
			HonorBid:      p.HonorBid,
			Lists:         make(map[Location][]string),
			Provinces:     make(map[Location]string),
		}
		for loc, cards := range p.lists {
			if len(cards) == 0 {
				continue
			}
			ids := make([]string, len(cards))
			for i, c := range cards {
				ids[i] = c.ID
			}
			ps.Lists[loc] = ids
		}
		for loc, c := range p.provinces {
			ps.Provinces[loc] = c.ID
		}
		s.Players[p.ID] = ps
	}
	for id, c := range g.cards {
		s.Cards[id] = c.CreateSnapshot()
	}
	for e, r := range g.rings {
		s.Rings[e] = RingState{
			Element:         r.Element,
			ConflictType:    r.ConflictType,
			Fate:            r.Fate,
			ClaimedBy:       r.ClaimedBy,
			Contested:       r.Contested,
			RemovedFromGame: r.RemovedFromGame,
		}
	}
	if g.currentConflict != nil {
		summary := g.currentConflict.GetSummary()
		s.Conflict = &summary
	}
	return s
}

// SerializationChecksum is a hash of a snapshot's deterministic form.
type SerializationChecksum struct {
	Hash      string
	Timestamp string
	Version   int
}

// ComputeChecksum hashes the snapshot independently of map order and of
// its timestamp.
func (s *StateSnapshot) ComputeChecksum() (*SerializationChecksum, error) {
	hash := sha256.New()
	if _, err := hash.Write([]byte(s.deterministicRepresentation())); err != nil {
		return nil, fmt.Errorf("failed to compute hash: %w", err)
	}
	return &SerializationChecksum{
		Hash:      hex.EncodeToString(hash.Sum(nil)),
		Timestamp: s.Timestamp.Format("2006-01-02T15:04:05.000Z"),
		Version:   1,
	}, nil
}

func (s *StateSnapshot) deterministicRepresentation() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "GAME:%s|%d|%s|%d|%t|%s\n", s.GameID, s.Round, s.Phase, s.Sequence, s.Finished, s.WinnerID)

	for _, id := range sortedKeys(s.Players) {
		p := s.Players[id]
		fmt.Fprintf(&buf, "PLAYER:%s|%s|%d|%d|%s|%t|%d\n", id, p.Name, p.Fate, p.Honor, p.ImperialFavor, p.FirstPlayer, p.HonorBid)
		locs := make([]string, 0, len(p.Lists))
		for loc := range p.Lists {
			locs = append(locs, string(loc))
		}
		sort.Strings(locs)
		// List order is game state (deck order), so it is kept as is.
		for _, loc := range locs {
			fmt.Fprintf(&buf, "  LIST:%s=%s\n", loc, strings.Join(p.Lists[Location(loc)], ","))
		}
		provinces := make([]string, 0, len(p.Provinces))
		for loc, id := range p.Provinces {
			provinces = append(provinces, string(loc)+"="+id)
		}
		sort.Strings(provinces)
		for _, prov := range provinces {
			fmt.Fprintf(&buf, "  PROVINCE:%s\n", prov)
		}
	}

	for _, id := range sortedKeys(s.Cards) {
		c := s.Cards[id]
		fmt.Fprintf(&buf, "CARD:%s|%s|%s|%s|%t|%d|%t|%t|%t|%d|%d|%d\n",
			id, c.Code, c.ControllerID, c.Location, c.Bowed, c.Fate,
			c.Honored, c.Dishonored, c.Tainted, c.Military, c.Political, c.Glory)
	}

	for _, e := range Elements {
		r, ok := s.Rings[e]
		if !ok {
			continue
		}
		fmt.Fprintf(&buf, "RING:%s|%s|%d|%s|%t|%t\n", e, r.ConflictType, r.Fate, r.ClaimedBy, r.Contested, r.RemovedFromGame)
	}

	if c := s.Conflict; c != nil {
		fmt.Fprintf(&buf, "CONFLICT:%s|%s|%s|%d|%d|%t|%t\n",
			c.AttackingPlayerID, c.DefendingPlayerID, c.Type, c.AttackerSkill, c.DefenderSkill,
			c.DeclarationComplete, c.DefendersChosen)
	}
	return buf.String()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// VerifyChecksum reports whether the snapshot hashes to expected.
func (s *StateSnapshot) VerifyChecksum(expected *SerializationChecksum) (bool, error) {
	computed, err := s.ComputeChecksum()
	if err != nil {
		return false, fmt.Errorf("failed to compute checksum: %w", err)
	}
	return computed.Hash == expected.Hash, nil
}

// SerializeToBytes gob-encodes the snapshot.
func (s *StateSnapshot) SerializeToBytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(s); err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// DeserializeSnapshot decodes a snapshot written by SerializeToBytes.
func DeserializeSnapshot(data []byte) (*StateSnapshot, error) {
	var s StateSnapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &s, nil
}

// Checksum returns the hash of the game's current state.
func (g *Game) Checksum() (string, error) {
	sum, err := g.Snapshot().ComputeChecksum()
	if err != nil {
		return "", err
	}
	return sum.Hash, nil
}

// ValidateSerializationRoundtrip checks that a snapshot survives encoding
// with an unchanged checksum.
func ValidateSerializationRoundtrip(s *StateSnapshot) error {
	original, err := s.ComputeChecksum()
	if err != nil {
		return fmt.Errorf("failed to compute original checksum: %w", err)
	}
	data, err := s.SerializeToBytes()
	if err != nil {
		return fmt.Errorf("failed to serialize: %w", err)
	}
	decoded, err := DeserializeSnapshot(data)
	if err != nil {
		return fmt.Errorf("failed to deserialize: %w", err)
	}
	roundtrip, err := decoded.ComputeChecksum()
	if err != nil {
		return fmt.Errorf("failed to compute deserialized checksum: %w", err)
	}
	if original.Hash != roundtrip.Hash {
		return fmt.Errorf("checksum mismatch: original=%s, deserialized=%s", original.Hash, roundtrip.Hash)
	}
	return nil
}
