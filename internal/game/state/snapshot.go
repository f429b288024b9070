package state

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/blake2b"

	"github.com/quizboard/quizboard-server-go/internal/game/domain"
)

// SnapshotVersion is written into every snapshot.
const SnapshotVersion = 1

// Snapshot is the persisted form of a session: the board being edited and, if a
// game is in progress, its full state.
type Snapshot struct {
	Version int          `json:"version"`
	Board   domain.Board `json:"board"`
	Game    *GameState   `json:"game,omitempty"`
	SavedAt time.Time    `json:"saved_at"`
}

// NewSnapshot captures a deep copy of game (which may be nil).
func NewSnapshot(board domain.Board, game *GameState) *Snapshot {
	snap := &Snapshot{
		Version: SnapshotVersion,
		Board:   board.Clone(),
		SavedAt: time.Now().UTC(),
	}
	if game != nil {
		snap.Game = game.Clone()
	}
	return snap
}

// Checksum is a deterministic digest of a snapshot's game content.
type Checksum struct {
	Hash    string `json:"hash"`
	Version int    `json:"version"`
}

// ComputeChecksum hashes the canonical representation with BLAKE2b-256.
// SavedAt is excluded so identical games hash identically.
func (s *Snapshot) ComputeChecksum() Checksum {
	sum := blake2b.Sum256([]byte(s.canonical()))
	return Checksum{Hash: hex.EncodeToString(sum[:]), Version: SnapshotVersion}
}

// VerifyChecksum reports whether the snapshot still matches expected.
func (s *Snapshot) VerifyChecksum(expected Checksum) bool {
	return s.ComputeChecksum().Hash == expected.Hash
}

func (s *Snapshot) canonical() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "VERSION:%d\n", s.Version)
	writeBoard(&buf, "BOARD", s.Board)

	if s.Game == nil {
		buf.WriteString("GAME:none\n")
		return buf.String()
	}

	g := s.Game
	phase, _ := MarshalPhase(g.Phase)
	fmt.Fprintf(&buf, "GAME:%d|%s\n", g.ActiveTeam, phase)
	for _, t := range g.Teams {
		fmt.Fprintf(&buf, "TEAM:%d|%s|%d\n", t.ID, quote(t.Name), t.Score)
	}
	writeBoard(&buf, "GAME_BOARD", g.Board)

	ev := g.Events
	active, queued := "-", "-"
	if ev.Active != nil {
		active = string(*ev.Active)
	}
	if ev.Queued != nil {
		queued = string(*ev.Queued)
	}
	fmt.Fprintf(&buf, "EVENTS:%d|%s|%s|%t\n", ev.QuestionsAnswered, active, queued, ev.AnimationPlaying)

	history := make([]string, len(ev.History))
	for i, k := range ev.History {
		history[i] = string(k)
	}
	buf.WriteString("HISTORY:")
	buf.WriteString(strings.Join(history, ","))
	buf.WriteString("\n")

	if st := ev.LastSteal; st != nil {
		fmt.Fprintf(&buf, "STEAL:%d|%s|%d|%s|%d\n", st.ThiefID, quote(st.ThiefName), st.VictimID, quote(st.VictimName), st.Amount)
	}
	return buf.String()
}

func writeBoard(buf *bytes.Buffer, label string, board domain.Board) {
	fmt.Fprintf(buf, "%s:%d\n", label, len(board.Categories))
	for _, cat := range board.Categories {
		fmt.Fprintf(buf, "  CATEGORY:%s|%d\n", quote(cat.Name), len(cat.Clues))
		for _, c := range cat.Clues {
			buf.WriteString("    CLUE:")
			buf.WriteString(strings.Join([]string{
				strconv.FormatUint(uint64(c.ID), 10),
				strconv.Itoa(c.Points),
				quote(c.Question),
				quote(c.Answer),
				strconv.FormatBool(c.Revealed),
				strconv.FormatBool(c.Solved),
			}, "|"))
			buf.WriteString("\n")
		}
	}
}

// quote renders text the way it survives a JSON round trip: every invalid
// UTF-8 byte becomes U+FFFD, as encoding/json writes it.
func quote(s string) string {
	if utf8.ValidString(s) {
		return strconv.Quote(s)
	}
	var b strings.Builder
	for _, r := range s {
		b.WriteRune(r)
	}
	return strconv.Quote(b.String())
}

// Encode serializes the snapshot to JSON.
func (s *Snapshot) Encode() ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshot parses JSON written by Encode or by older releases.
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if snap.Version == 0 {
		snap.Version = SnapshotVersion
	}
	return &snap, nil
}

// ValidateRoundtrip checks that the snapshot survives encode/decode unchanged.
func ValidateRoundtrip(s *Snapshot) error {
	original := s.ComputeChecksum()

	data, err := s.Encode()
	if err != nil {
		return fmt.Errorf("failed to serialize: %w", err)
	}
	decoded, err := DecodeSnapshot(data)
	if err != nil {
		return fmt.Errorf("failed to deserialize: %w", err)
	}

	if got := decoded.ComputeChecksum(); got.Hash != original.Hash {
		return fmt.Errorf("checksum mismatch: original=%s, deserialized=%s", original.Hash, got.Hash)
	}
	return nil
}
