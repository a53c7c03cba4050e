package indexdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"redplanet.games/internal/persistence/snapshot"
	"redplanet.games/internal/sim/catalogs"
	"redplanet.games/internal/sim/engine"
	"redplanet.games/internal/sim/match"
	"redplanet.games/internal/sim/tuning"
)

// SQLiteIndex is a queryable copy of what the JSONL logs and snapshots hold.
// Writes are queued to one writer goroutine and dropped when it falls behind.
type SQLiteIndex struct {
	db  *sqlx.DB // writer, one connection
	rdb *sqlx.DB // readers

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool

	dropGame     atomic.Uint64
	dropEvent    atomic.Uint64
	dropAudit    atomic.Uint64
	dropSnapshot atomic.Uint64
	dropResult   atomic.Uint64
}

var (
	_ match.EventLogger    = (*SQLiteIndex)(nil)
	_ match.AuditLogger    = (*SQLiteIndex)(nil)
	_ match.ResultRecorder = (*SQLiteIndex)(nil)
)

type reqKind int

const (
	reqGame reqKind = iota + 1
	reqEvent
	reqAudit
	reqSnapshot
	reqResult
	reqFlush
)

type req struct {
	kind reqKind

	game     GameRow
	event    match.EventLogEntry
	audit    match.AuditEntry
	snapshot SnapshotRow
	result   match.ResultEntry
	flushed  chan struct{}
}

type GameRow struct {
	ID         string `db:"id" json:"id"`
	Players    string `db:"players" json:"players"`
	Seed       int64  `db:"seed" json:"seed"`
	CreatedAt  string `db:"created_at" json:"created_at"`
	Seq        int    `db:"seq" json:"seq"`
	Generation int    `db:"gen" json:"gen"`
	Finished   bool   `db:"finished" json:"finished"`
}

type EventRow struct {
	GameID     string `db:"game_id" json:"game_id"`
	Seq        int    `db:"seq" json:"seq"`
	Generation int    `db:"gen" json:"gen"`
	Kind       string `db:"kind" json:"kind"`
	Player     int    `db:"player" json:"player"`
	Project    int    `db:"project" json:"project,omitempty"`
	At         string `db:"at" json:"at"`
	RawJSON    string `db:"raw_json" json:"-"`
}

type RejectionRow struct {
	GameID  string `db:"game_id" json:"game_id"`
	Seq     int    `db:"seq" json:"seq"`
	Player  int    `db:"player" json:"player"`
	Kind    string `db:"kind" json:"kind"`
	Project int    `db:"project" json:"project,omitempty"`
	Code    string `db:"code" json:"code"`
	Message string `db:"message" json:"message"`
	At      string `db:"at" json:"at"`
}

type SnapshotRow struct {
	GameID     string `db:"game_id" json:"game_id"`
	Seq        int    `db:"seq" json:"seq"`
	Generation int    `db:"gen" json:"gen"`
	Finished   bool   `db:"finished" json:"finished"`
	Path       string `db:"path" json:"path"`
}

type ResultRow struct {
	GameID     string `db:"game_id" json:"game_id"`
	Player     int    `db:"player" json:"player"`
	Generation int    `db:"gen" json:"gen"`
	TR         int    `db:"tr" json:"tr"`
	Cards      int    `db:"cards" json:"cards"`
	Greeneries int    `db:"greeneries" json:"greeneries"`
	Cities     int    `db:"cities" json:"cities"`
	Milestones int    `db:"milestones" json:"milestones"`
	Awards     int    `db:"awards" json:"awards"`
	Total      int    `db:"total" json:"total"`
	RecordedAt string `db:"recorded_at" json:"recorded_at"`
}

type Stats struct {
	QueueDepth        int    `json:"queue_depth"`
	QueueCapacity     int    `json:"queue_capacity"`
	DropGameTotal     uint64 `json:"drop_game_total"`
	DropEventTotal    uint64 `json:"drop_event_total"`
	DropAuditTotal    uint64 `json:"drop_audit_total"`
	DropSnapshotTotal uint64 `json:"drop_snapshot_total"`
	DropResultTotal   uint64 `json:"drop_result_total"`
}

const queueSize = 65536

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db.DB); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db.DB); err != nil {
		_ = db.Close()
		return nil, err
	}
	rdb, err := sqlx.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	rdb.SetMaxOpenConns(4)

	s := &SQLiteIndex{
		db:  db,
		rdb: rdb,
		ch:  make(chan req, queueSize),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS catalogs (
			name TEXT PRIMARY KEY,
			digest TEXT NOT NULL,
			json TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS games (
			id TEXT PRIMARY KEY,
			players TEXT NOT NULL,
			seed INTEGER NOT NULL,
			created_at TEXT NOT NULL,
			seq INTEGER NOT NULL DEFAULT 0,
			gen INTEGER NOT NULL DEFAULT 1,
			finished INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE INDEX IF NOT EXISTS idx_games_created ON games(created_at);`,
		`CREATE TABLE IF NOT EXISTS events (
			game_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			gen INTEGER NOT NULL,
			kind TEXT NOT NULL,
			player INTEGER NOT NULL,
			project INTEGER NOT NULL,
			at TEXT NOT NULL,
			raw_json TEXT NOT NULL,
			PRIMARY KEY (game_id, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_events_player ON events(game_id, player, seq);`,
		`CREATE TABLE IF NOT EXISTS rejections (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			game_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			player INTEGER NOT NULL,
			kind TEXT NOT NULL,
			project INTEGER NOT NULL,
			code TEXT NOT NULL,
			message TEXT NOT NULL,
			at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_rejections_game ON rejections(game_id, seq);`,
		`CREATE TABLE IF NOT EXISTS snapshots (
			game_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			gen INTEGER NOT NULL,
			finished INTEGER NOT NULL,
			path TEXT NOT NULL,
			PRIMARY KEY (game_id, seq)
		);`,
		`CREATE TABLE IF NOT EXISTS results (
			game_id TEXT NOT NULL,
			player INTEGER NOT NULL,
			gen INTEGER NOT NULL,
			tr INTEGER NOT NULL,
			cards INTEGER NOT NULL,
			greeneries INTEGER NOT NULL,
			cities INTEGER NOT NULL,
			milestones INTEGER NOT NULL,
			awards INTEGER NOT NULL,
			total INTEGER NOT NULL,
			recorded_at TEXT NOT NULL,
			PRIMARY KEY (game_id, player)
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
		if rerr := s.rdb.Close(); err == nil {
			err = rerr
		}
	})
	return err
}

func (s *SQLiteIndex) Stats() Stats {
	if s == nil {
		return Stats{}
	}
	return Stats{
		QueueDepth:        len(s.ch),
		QueueCapacity:     cap(s.ch),
		DropGameTotal:     s.dropGame.Load(),
		DropEventTotal:    s.dropEvent.Load(),
		DropAuditTotal:    s.dropAudit.Load(),
		DropSnapshotTotal: s.dropSnapshot.Load(),
		DropResultTotal:   s.dropResult.Load(),
	}
}

// enqueue drops r if the writer is behind; the JSONL logs remain the source
// of truth.
func (s *SQLiteIndex) enqueue(r req, drops *atomic.Uint64) {
	if s == nil || s.closed.Load() {
		return
	}
	select {
	case s.ch <- r:
	default:
		drops.Add(1)
	}
}

func (s *SQLiteIndex) RecordGame(id string, seats []engine.Seat, seed int64) {
	if s == nil {
		return
	}
	players, _ := json.Marshal(seats)
	s.enqueue(req{kind: reqGame, game: GameRow{
		ID:         id,
		Players:    string(players),
		Seed:       seed,
		CreatedAt:  time.Now().UTC().Format(time.RFC3339Nano),
		Generation: 1,
	}}, &s.dropGame)
}

func (s *SQLiteIndex) WriteEvent(e match.EventLogEntry) error {
	if s == nil {
		return nil
	}
	s.enqueue(req{kind: reqEvent, event: e}, &s.dropEvent)
	return nil
}

func (s *SQLiteIndex) WriteAudit(e match.AuditEntry) error {
	if s == nil {
		return nil
	}
	s.enqueue(req{kind: reqAudit, audit: e}, &s.dropAudit)
	return nil
}

func (s *SQLiteIndex) RecordSnapshot(path string, h snapshot.Header) {
	if s == nil {
		return
	}
	s.enqueue(req{kind: reqSnapshot, snapshot: SnapshotRow{
		GameID:     h.GameID,
		Seq:        h.Seq,
		Generation: h.Generation,
		Finished:   h.Finished,
		Path:       path,
	}}, &s.dropSnapshot)
}

func (s *SQLiteIndex) RecordResult(e match.ResultEntry) {
	if s == nil {
		return
	}
	s.enqueue(req{kind: reqResult, result: e}, &s.dropResult)
}

// Flush waits until everything queued before it is committed.
func (s *SQLiteIndex) Flush(ctx context.Context) error {
	if s == nil || s.closed.Load() {
		return nil
	}
	done := make(chan struct{})
	select {
	case s.ch <- req{kind: reqFlush, flushed: done}:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// UpsertCatalogs stores the catalogue and tuning the server runs with.
func (s *SQLiteIndex) UpsertCatalogs(cats *catalogs.Catalogs, tune tuning.Tuning) error {
	if s == nil || cats == nil {
		return nil
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)

	type kv struct {
		name   string
		digest string
		json   []byte
	}
	var rows []kv
	projects := make([]catalogs.ProjectDef, 0, len(cats.Projects.IDs))
	for _, id := range cats.Projects.IDs {
		projects = append(projects, cats.Projects.ByID[id])
	}
	if b, err := json.Marshal(projects); err == nil {
		rows = append(rows, kv{name: "projects", digest: cats.Projects.Digest, json: b})
	}
	corps := make([]catalogs.CorpDef, 0, len(cats.Corps.IDs))
	for _, id := range cats.Corps.IDs {
		corps = append(corps, cats.Corps.ByID[id])
	}
	if b, err := json.Marshal(corps); err == nil {
		rows = append(rows, kv{name: "corps", digest: cats.Corps.Digest, json: b})
	}
	if b, err := json.Marshal(tune); err == nil {
		rows = append(rows, kv{name: "tuning", digest: tune.Digest(), json: b})
	}

	tx, err := s.db.BeginTxx(context.Background(), nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1')`); err != nil {
		return err
	}
	for _, r := range rows {
		if r.digest == "" {
			continue
		}
		if _, err := tx.Exec(`INSERT OR REPLACE INTO catalogs(name,digest,json,updated_at) VALUES(?,?,?,?)`, r.name, r.digest, string(r.json), now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteIndex) RecentGames(ctx context.Context, limit int) ([]GameRow, error) {
	if limit <= 0 {
		limit = 50
	}
	var out []GameRow
	err := s.rdb.SelectContext(ctx, &out,
		`SELECT id, players, seed, created_at, seq, gen, finished FROM games ORDER BY created_at DESC LIMIT ?`, limit)
	return out, err
}

func (s *SQLiteIndex) Game(ctx context.Context, id string) (GameRow, error) {
	var g GameRow
	err := s.rdb.GetContext(ctx, &g,
		`SELECT id, players, seed, created_at, seq, gen, finished FROM games WHERE id = ?`, id)
	return g, err
}

func (s *SQLiteIndex) GameEvents(ctx context.Context, gameID string, since, limit int) ([]EventRow, error) {
	if limit <= 0 {
		limit = 500
	}
	var out []EventRow
	err := s.rdb.SelectContext(ctx, &out,
		`SELECT game_id, seq, gen, kind, player, project, at, raw_json FROM events WHERE game_id = ? AND seq >= ? ORDER BY seq LIMIT ?`,
		gameID, since, limit)
	return out, err
}

func (s *SQLiteIndex) Rejections(ctx context.Context, gameID string, limit int) ([]RejectionRow, error) {
	if limit <= 0 {
		limit = 100
	}
	var out []RejectionRow
	err := s.rdb.SelectContext(ctx, &out,
		`SELECT game_id, seq, player, kind, project, code, message, at FROM rejections WHERE game_id = ? ORDER BY id DESC LIMIT ?`,
		gameID, limit)
	return out, err
}

func (s *SQLiteIndex) GameResults(ctx context.Context, gameID string) ([]ResultRow, error) {
	var out []ResultRow
	err := s.rdb.SelectContext(ctx, &out,
		`SELECT game_id, player, gen, tr, cards, greeneries, cities, milestones, awards, total, recorded_at FROM results WHERE game_id = ? ORDER BY total DESC, player`,
		gameID)
	return out, err
}

func (s *SQLiteIndex) Snapshots(ctx context.Context, gameID string) ([]SnapshotRow, error) {
	var out []SnapshotRow
	err := s.rdb.SelectContext(ctx, &out,
		`SELECT game_id, seq, gen, finished, path FROM snapshots WHERE game_id = ? ORDER BY seq`, gameID)
	return out, err
}

func (s *SQLiteIndex) loop() {
	ctx := context.Background()

	insertGame, _ := s.db.Prepare(`INSERT OR IGNORE INTO games(id,players,seed,created_at,seq,gen,finished) VALUES(?,?,?,?,?,?,?)`)
	insertEvent, _ := s.db.Prepare(`INSERT OR REPLACE INTO events(game_id,seq,gen,kind,player,project,at,raw_json) VALUES(?,?,?,?,?,?,?,?)`)
	touchGame, _ := s.db.Prepare(`UPDATE games SET seq = MAX(seq, ?), gen = MAX(gen, ?) WHERE id = ?`)
	insertRejection, _ := s.db.Prepare(`INSERT INTO rejections(game_id,seq,player,kind,project,code,message,at) VALUES(?,?,?,?,?,?,?,?)`)
	insertSnapshot, _ := s.db.Prepare(`INSERT OR REPLACE INTO snapshots(game_id,seq,gen,finished,path) VALUES(?,?,?,?,?)`)
	insertResult, _ := s.db.Prepare(`INSERT OR REPLACE INTO results(game_id,player,gen,tr,cards,greeneries,cities,milestones,awards,total,recorded_at) VALUES(?,?,?,?,?,?,?,?,?,?,?)`)
	finishGame, _ := s.db.Prepare(`UPDATE games SET finished = 1, gen = ? WHERE id = ?`)
	stmts := []*sql.Stmt{insertGame, insertEvent, touchGame, insertRejection, insertSnapshot, insertResult, finishGame}
	defer func() {
		for _, st := range stmts {
			if st != nil {
				_ = st.Close()
			}
		}
	}()
	for _, st := range stmts {
		if st == nil {
			// Schema setup failed; drain so writers never block.
			for r := range s.ch {
				if r.flushed != nil {
					close(r.flushed)
				}
			}
			return
		}
	}

	var (
		tx            *sql.Tx
		opCount       int
		lastCommit    = time.Now()
		commitEvery   = 2000
		commitMaxWait = time.Second
	)
	begin := func() {
		if tx != nil {
			return
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
		lastCommit = time.Now()
	}
	commit := func() {
		if tx == nil {
			return
		}
		_ = tx.Commit()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	rollback := func() {
		if tx == nil {
			return
		}
		_ = tx.Rollback()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	exec := func(st *sql.Stmt, args ...any) bool {
		if _, err := tx.Stmt(st).Exec(args...); err != nil {
			rollback()
			return false
		}
		opCount++
		return true
	}

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		var r req
		select {
		case rr, ok := <-s.ch:
			if !ok {
				commit()
				return
			}
			r = rr
		case <-ticker.C:
			if tx != nil && time.Since(lastCommit) >= commitMaxWait {
				commit()
			}
			continue
		}

		if r.kind == reqFlush {
			commit()
			close(r.flushed)
			continue
		}
		begin()
		if tx == nil {
			continue
		}
		switch r.kind {
		case reqGame:
			g := r.game
			exec(insertGame, g.ID, g.Players, g.Seed, g.CreatedAt, g.Seq, g.Generation, g.Finished)

		case reqEvent:
			e := r.event
			raw, _ := json.Marshal(e.Event)
			if exec(insertEvent, e.GameID, e.Event.Seq, e.Event.Generation, string(e.Event.Kind), e.Event.Player, e.Event.Project, e.Time.Format(time.RFC3339Nano), string(raw)) {
				exec(touchGame, e.Event.Seq+1, e.Event.Generation, e.GameID)
			}

		case reqAudit:
			a := r.audit
			exec(insertRejection, a.GameID, a.Seq, a.Player, a.Kind, a.Project, a.Code, a.Message, a.Time.Format(time.RFC3339Nano))

		case reqSnapshot:
			sn := r.snapshot
			exec(insertSnapshot, sn.GameID, sn.Seq, sn.Generation, sn.Finished, sn.Path)

		case reqResult:
			res := r.result
			at := res.Time.Format(time.RFC3339Nano)
			ok := true
			for _, ps := range res.Scores {
				if ok = exec(insertResult, res.GameID, ps.Player, res.Generation, ps.TR, ps.Cards, ps.Greeneries, ps.Cities, ps.Milestones, ps.Awards, ps.Total, at); !ok {
					break
				}
			}
			if ok {
				exec(finishGame, res.Generation, res.GameID)
			}
		}
		if tx != nil && opCount >= commitEvery {
			commit()
		}
	}
}
