// Package history stores finished matches in SQLite.
package history

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/slices"

	"wordduel/pkg/match"
)

//go:embed migrations/*.sql
var migrations embed.FS

type Round struct {
	Number    int    `json:"round"`
	YourWord  string `json:"yourWord"`
	YourScore int    `json:"yourScore"`
	OppWord   string `json:"oppWord"`
	OppScore  int    `json:"oppScore"`
	Winner    string `json:"winner"`
}

// Result is one finished match seen from the local player.
type Result struct {
	MatchID    uuid.UUID `json:"matchId"`
	Epoch      int       `json:"epoch"`
	LocalID    uuid.UUID `json:"localId"`
	LocalName  string    `json:"localName"`
	RemoteID   uuid.UUID `json:"remoteId"`
	RemoteName string    `json:"remoteName"`
	MyTotal    int       `json:"myTotal"`
	OppTotal   int       `json:"oppTotal"`
	Outcome    string    `json:"outcome"`
	Forfeit    bool      `json:"forfeit"`
	PlayedAt   time.Time `json:"playedAt"`
	Rounds     []Round   `json:"rounds"`
}

// FromMatch converts a MatchEnded event into a Result.
func FromMatch(matchID uuid.UUID, local, remote match.Peer, ev match.MatchEnded, at time.Time) Result {
	rounds := make([]Round, len(ev.History))
	for i, r := range ev.History {
		rounds[i] = Round{
			Number:    r.Round,
			YourWord:  r.YourWord,
			YourScore: r.YourScore,
			OppWord:   r.OppWord,
			OppScore:  r.OppScore,
			Winner:    string(r.Winner),
		}
	}
	return Result{
		MatchID:    matchID,
		Epoch:      ev.Epoch,
		LocalID:    local.ID,
		LocalName:  local.Name,
		RemoteID:   remote.ID,
		RemoteName: remote.Name,
		MyTotal:    ev.MyTotal,
		OppTotal:   ev.OppTotal,
		Outcome:    string(ev.Outcome),
		Forfeit:    ev.Forfeit,
		PlayedAt:   at,
		Rounds:     rounds,
	}
}

type Store struct {
	db  *sql.DB
	log zerolog.Logger
}

// Open opens (and creates if missing) the SQLite database at dsn and applies
// the embedded migrations.
func Open(dsn string) (*Store, error) {
	if dsn != ":memory:" {
		dir := filepath.Dir(dsn)
		if dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("mkdir %s: %w", dir, err)
			}
		}
	}

	db, err := sql.Open("sqlite3", dsn+"?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, err
	}
	// SQLite has a single writer; one connection also keeps :memory: databases
	// shared across queries.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, log: log.Logger.With().Str("component", "history").Logger()}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// migrate applies migrations/*.sql in lexical order, each once, recording
// them in _migrations.
func (s *Store) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY);`); err != nil {
		return fmt.Errorf("create _migrations: %w", err)
	}

	files, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	slices.Sort(files)

	for _, f := range files {
		var done int
		err := s.db.QueryRow(`SELECT 1 FROM _migrations WHERE name=?`, f).Scan(&done)
		if err == nil {
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("query _migrations: %w", err)
		}

		body, err := migrations.ReadFile(f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(string(body)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply %s: %w", f, err)
		}
		if _, err := tx.Exec(`INSERT INTO _migrations(name) VALUES (?)`, f); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record %s: %w", f, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit %s: %w", f, err)
		}
		s.log.Info().Str("migration", f).Msg("applied")
	}
	return nil
}

// Record stores r. Recording the same match and epoch twice is a no-op.
func (s *Store) Record(ctx context.Context, r Result) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
        INSERT OR IGNORE INTO matches
            (match_id, epoch, local_id, local_name, remote_id, remote_name,
             my_total, opp_total, outcome, forfeit, played_at_ms)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.MatchID.String(), r.Epoch, r.LocalID.String(), r.LocalName, r.RemoteID.String(), r.RemoteName,
		r.MyTotal, r.OppTotal, r.Outcome, r.Forfeit, r.PlayedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert match: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		s.log.Debug().Str("match", r.MatchID.String()).Int("epoch", r.Epoch).Msg("already recorded")
		return nil
	}
	row, err := res.LastInsertId()
	if err != nil {
		return err
	}

	for _, rd := range r.Rounds {
		if _, err := tx.ExecContext(ctx, `
            INSERT INTO rounds (match_row, round, your_word, your_score, opp_word, opp_score, winner)
            VALUES (?, ?, ?, ?, ?, ?, ?)`,
			row, rd.Number, rd.YourWord, rd.YourScore, rd.OppWord, rd.OppScore, rd.Winner,
		); err != nil {
			return fmt.Errorf("insert round %d: %w", rd.Number, err)
		}
	}
	return tx.Commit()
}

// Recent returns up to limit results, newest first, with their rounds.
func (s *Store) Recent(ctx context.Context, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, match_id, epoch, local_id, local_name, remote_id, remote_name,
               my_total, opp_total, outcome, forfeit, played_at_ms
        FROM matches
        ORDER BY played_at_ms DESC, id DESC
        LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var (
		out  []Result
		keys []int64
	)
	for rows.Next() {
		var (
			r                          Result
			row, playedAt              int64
			matchID, localID, remoteID string
		)
		if err := rows.Scan(&row, &matchID, &r.Epoch, &localID, &r.LocalName, &remoteID, &r.RemoteName,
			&r.MyTotal, &r.OppTotal, &r.Outcome, &r.Forfeit, &playedAt); err != nil {
			return nil, err
		}
		r.MatchID, _ = uuid.Parse(matchID)
		r.LocalID, _ = uuid.Parse(localID)
		r.RemoteID, _ = uuid.Parse(remoteID)
		r.PlayedAt = time.UnixMilli(playedAt).UTC()
		out = append(out, r)
		keys = append(keys, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// Release the only connection before loading rounds.
	rows.Close()

	for i, key := range keys {
		rounds, err := s.rounds(ctx, key)
		if err != nil {
			return nil, err
		}
		out[i].Rounds = rounds
	}
	return out, nil
}

func (s *Store) rounds(ctx context.Context, matchRow int64) ([]Round, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT round, your_word, your_score, opp_word, opp_score, winner
        FROM rounds WHERE match_row=? ORDER BY round`, matchRow)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Round
	for rows.Next() {
		var rd Round
		if err := rows.Scan(&rd.Number, &rd.YourWord, &rd.YourScore, &rd.OppWord, &rd.OppScore, &rd.Winner); err != nil {
			return nil, err
		}
		out = append(out, rd)
	}
	return out, rows.Err()
}

// Tally counts recorded results by outcome.
func (s *Store) Tally(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT outcome, COUNT(1) FROM matches GROUP BY outcome`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var (
			outcome string
			n       int
		)
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, err
		}
		out[strings.ToLower(outcome)] = n
	}
	return out, rows.Err()
}
