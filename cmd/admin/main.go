package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"redplanet.games/internal/persistence/indexdb"
	"redplanet.games/internal/persistence/snapshot"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "db":
			os.Exit(dbCmd(os.Args[2:], os.Stdout))
		case "state":
			os.Exit(stateCmd(os.Args[2:], os.Stdout))
		case "snapshot":
			os.Exit(snapshotCmd(os.Args[2:], os.Stdout))
		}
	}
	os.Exit(listCmd(os.Args[1:], os.Stdout))
}

// listCmd prints the game directories under the data dir.
func listCmd(args []string, out io.Writer) int {
	fs := flag.NewFlagSet("admin", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	_ = fs.Parse(args)

	entries, err := os.ReadDir(filepath.Join(*dataDir, "games"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "read:", err)
		return 1
	}
	for _, e := range entries {
		if e.IsDir() {
			fmt.Fprintln(out, e.Name())
		}
	}
	return 0
}

// dbCmd queries the sqlite index: games, events, rejections, results or
// snapshots.
func dbCmd(args []string, out io.Writer) int {
	fs := flag.NewFlagSet("db", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	dbPath := fs.String("db", "", "sqlite db path (default: <data>/index/games.sqlite)")
	gameID := fs.String("game", "", "game id (required except for games)")
	since := fs.Int("since", 0, "first event seq (events)")
	limit := fs.Int("limit", 0, "result limit")
	_ = fs.Parse(args)

	q := "games"
	if fs.NArg() > 0 {
		q = strings.TrimSpace(fs.Arg(0))
	}
	if q != "games" && strings.TrimSpace(*gameID) == "" {
		fmt.Fprintln(os.Stderr, "missing -game")
		return 2
	}

	path := strings.TrimSpace(*dbPath)
	if path == "" {
		path = filepath.Join(*dataDir, "index", "games.sqlite")
	}
	if _, err := os.Stat(path); err != nil {
		fmt.Fprintln(os.Stderr, "open:", err)
		return 1
	}
	idx, err := indexdb.OpenSQLite(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open:", err)
		return 1
	}
	defer idx.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var rows any
	switch q {
	case "games":
		rows, err = idx.RecentGames(ctx, *limit)
	case "events":
		rows, err = idx.GameEvents(ctx, *gameID, *since, *limit)
	case "rejections":
		rows, err = idx.Rejections(ctx, *gameID, *limit)
	case "results":
		rows, err = idx.GameResults(ctx, *gameID)
	case "snapshots":
		rows, err = idx.Snapshots(ctx, *gameID)
	default:
		fmt.Fprintln(os.Stderr, "unknown query:", q)
		return 2
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "query:", err)
		return 1
	}
	printRows(out, rows)
	return 0
}

// snapshotCmd summarises a game's latest snapshot.
func snapshotCmd(args []string, out io.Writer) int {
	fs := flag.NewFlagSet("snapshot", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	gameID := fs.String("game", "", "game id")
	_ = fs.Parse(args)

	if strings.TrimSpace(*gameID) == "" {
		fmt.Fprintln(os.Stderr, "missing -game")
		return 2
	}
	path, err := snapshot.Latest(filepath.Join(*dataDir, "games", *gameID, "snapshots"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "latest:", err)
		return 1
	}
	if path == "" {
		fmt.Fprintln(os.Stderr, "no snapshot found")
		return 2
	}
	snap, err := snapshot.ReadSnapshot(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read snapshot:", err)
		return 1
	}
	doc := snap.Document
	summary := struct {
		Path        string `json:"path"`
		Seq         int    `json:"seq"`
		Generation  int    `json:"gen"`
		Phase       string `json:"phase"`
		Players     int    `json:"players"`
		Temperature int    `json:"temperature"`
		Oxygen      int    `json:"oxygen"`
		Oceans      int    `json:"oceans"`
		Digest      string `json:"digest"`
	}{
		Path:        path,
		Seq:         snap.Header.Seq,
		Generation:  doc.Generation,
		Phase:       string(doc.Phase),
		Players:     len(doc.Players),
		Temperature: doc.Temperature,
		Oxygen:      doc.Oxygen,
		Oceans:      doc.Oceans(),
		Digest:      doc.Digest(),
	}
	printJSON(out, summary)
	return 0
}

// stateCmd fetches a running game's spectator state from a server.
func stateCmd(args []string, out io.Writer) int {
	fs := flag.NewFlagSet("state", flag.ExitOnError)
	baseURL := fs.String("url", "http://127.0.0.1:8080", "server base url")
	gameID := fs.String("game", "", "game id (default: list games)")
	_ = fs.Parse(args)

	u := strings.TrimRight(strings.TrimSpace(*baseURL), "/") + "/v1/games"
	if *gameID != "" {
		u += "/" + *gameID + "/state"
	}
	cl := &http.Client{Timeout: 5 * time.Second}
	resp, err := cl.Get(u)
	if err != nil {
		fmt.Fprintln(os.Stderr, "request:", err)
		return 1
	}
	defer resp.Body.Close()
	_, _ = io.Copy(out, resp.Body)
	if resp.StatusCode/100 != 2 {
		return 1
	}
	return 0
}

func printRows(out io.Writer, rows any) {
	b, err := json.Marshal(rows)
	if err != nil {
		fmt.Fprintln(os.Stderr, "encode:", err)
		return
	}
	var items []json.RawMessage
	if err := json.Unmarshal(b, &items); err != nil {
		printJSON(out, rows)
		return
	}
	for _, it := range items {
		fmt.Fprintln(out, string(it))
	}
}

func printJSON(out io.Writer, v any) {
	b, _ := json.Marshal(v)
	fmt.Fprintln(out, string(b))
}
