package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"redplanet.games/internal/persistence/indexdb"
	"redplanet.games/internal/persistence/snapshot"
	"redplanet.games/internal/sim/cards"
	"redplanet.games/internal/sim/engine"
	"redplanet.games/internal/sim/game"
)

func TestDBGames(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index", "games.sqlite")
	idx, err := indexdb.OpenSQLite(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	idx.RecordGame("g1", []engine.Seat{{Name: "a", Corporation: cards.Credicor}}, 9)
	if err := idx.Flush(context.Background()); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if err := idx.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	var out bytes.Buffer
	if code := dbCmd([]string{"-data", dir, "games"}, &out); code != 0 {
		t.Fatalf("exit %d", code)
	}
	var row indexdb.GameRow
	if err := json.Unmarshal(bytes.TrimSpace(out.Bytes()), &row); err != nil {
		t.Fatalf("output %q: %v", out.String(), err)
	}
	if row.ID != "g1" || row.Seed != 9 {
		t.Fatalf("row: %+v", row)
	}

	if code := dbCmd([]string{"-data", dir, "events"}, &out); code != 2 {
		t.Fatalf("events without -game: exit %d", code)
	}
	if code := dbCmd([]string{"-data", dir, "-game", "g1", "bogus"}, &out); code != 2 {
		t.Fatalf("unknown query: exit %d", code)
	}
}

func TestSnapshotSummary(t *testing.T) {
	dir := t.TempDir()
	doc := &game.Document{ID: "g1", Generation: 3, Oxygen: 5, Players: []game.Player{{}, {}}, Phase: game.PhaseAction}
	snap := snapshot.New(doc)
	snap.Header.Seq = 12
	if err := snapshot.WriteSnapshot(filepath.Join(dir, "games", "g1", "snapshots", snapshot.FileName(12)), snap); err != nil {
		t.Fatalf("write: %v", err)
	}

	var out bytes.Buffer
	if code := snapshotCmd([]string{"-data", dir, "-game", "g1"}, &out); code != 0 {
		t.Fatalf("exit %d", code)
	}
	for _, want := range []string{`"seq":12`, `"gen":3`, `"oxygen":5`, `"players":2`} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("summary %s missing %s", out.String(), want)
		}
	}

	out.Reset()
	if code := listCmd([]string{"-data", dir}, &out); code != 0 || strings.TrimSpace(out.String()) != "g1" {
		t.Fatalf("list: %d %q", code, out.String())
	}
}
