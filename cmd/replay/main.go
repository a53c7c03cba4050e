package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	plog "redplanet.games/internal/persistence/log"
	"redplanet.games/internal/persistence/snapshot"
	"redplanet.games/internal/sim/cards"
	"redplanet.games/internal/sim/catalogs"
	"redplanet.games/internal/sim/engine"
	"redplanet.games/internal/sim/game"
	"redplanet.games/internal/sim/match"
	"redplanet.games/internal/sim/tuning"
)

func main() {
	var (
		dataDir    = flag.String("data", "./data", "runtime data directory")
		gameID     = flag.String("game", "", "game id")
		snapPath   = flag.String("snapshot", "", "snapshot to start from (default: the game's seq 0 snapshot)")
		configDir  = flag.String("configs", "", "catalogue directory (default: built in)")
		tuningPath = flag.String("tuning", "", "tuning.yaml (default: built in)")
		toSeq      = flag.Int("to_seq", 0, "stop once the document reaches this seq (optional)")
	)
	flag.Parse()

	if *gameID == "" {
		fmt.Fprintln(os.Stderr, "missing -game")
		os.Exit(2)
	}
	gameDir := filepath.Join(*dataDir, "games", *gameID)
	path := *snapPath
	if path == "" {
		path = filepath.Join(gameDir, "snapshots", snapshot.FileName(0))
	}

	snap, err := snapshot.ReadSnapshot(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read snapshot:", err)
		os.Exit(1)
	}
	doc := snap.Document
	fmt.Printf("snapshot v%d game=%s seq=%d gen=%d players=%d phase=%s\n",
		snap.Header.Version, snap.Header.GameID, snap.Header.Seq, doc.Generation, len(doc.Players), doc.Phase)

	eng, err := loadEngine(*configDir, *tuningPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "rules:", err)
		os.Exit(1)
	}
	if cat := eng.Registry().Catalogs(); snap.ProjectsDigest != "" && snap.ProjectsDigest != cat.Projects.Digest {
		fmt.Fprintln(os.Stderr, "warning: project catalogue differs from the one the snapshot was taken with")
	}

	files, err := plog.Files(filepath.Join(gameDir, "events"), "events")
	if err != nil {
		fmt.Fprintln(os.Stderr, "list events:", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "no events files found in", filepath.Join(gameDir, "events"))
		os.Exit(1)
	}

	final, checked, err := replay(eng, &doc, files, *toSeq)
	if err != nil {
		fmt.Fprintln(os.Stderr, "replay:", err)
		os.Exit(1)
	}
	fmt.Printf("replay ok: checked=%d actions (seq %d -> %d)\n", checked, snap.Header.Seq, final.Seq())
	for _, s := range eng.Score(final) {
		fmt.Printf("player %d: total=%d tr=%d cards=%d greeneries=%d cities=%d milestones=%d awards=%d\n",
			s.Player, s.Total, s.TR, s.Cards, s.Greeneries, s.Cities, s.Milestones, s.Awards)
	}
}

var errStop = errors.New("stop")

// replay re-applies every logged action after doc's seq and checks each
// resulting digest against the log.
func replay(eng *engine.Engine, doc *game.Document, files []string, toSeq int) (*game.Document, int, error) {
	checked := 0
	for _, path := range files {
		err := plog.ReadLines(path, func(line []byte) error {
			var entry match.EventLogEntry
			if err := json.Unmarshal(line, &entry); err != nil {
				return fmt.Errorf("%s: unmarshal: %w", filepath.Base(path), err)
			}
			if entry.Event.Seq < doc.Seq() || entry.Action == nil {
				return nil
			}
			if toSeq > 0 && doc.Seq() >= toSeq {
				return errStop
			}
			a, err := engine.FromRequest(entry.Actor, *entry.Action)
			if err != nil {
				return fmt.Errorf("seq %d: decode action: %w", entry.Event.Seq, err)
			}
			next, _, err := eng.Apply(doc, a)
			if err != nil {
				return fmt.Errorf("seq %d: logged action rejected on replay: %w", entry.Event.Seq, err)
			}
			if next.Seq() != entry.Event.Seq+1 {
				return fmt.Errorf("seq mismatch: replay reached %d, log says %d", next.Seq(), entry.Event.Seq+1)
			}
			if got := next.Digest(); entry.Digest != "" && got != entry.Digest {
				return fmt.Errorf("digest mismatch at seq %d: got=%s want=%s", entry.Event.Seq, got, entry.Digest)
			}
			doc = next
			checked++
			return nil
		})
		if errors.Is(err, errStop) {
			break
		}
		if err != nil {
			return doc, checked, err
		}
	}
	return doc, checked, nil
}

func loadEngine(configDir, tuningPath string) (*engine.Engine, error) {
	var (
		cat *catalogs.Catalogs
		err error
	)
	if configDir != "" {
		cat, err = catalogs.LoadDir(configDir)
	} else {
		cat, err = catalogs.Default()
	}
	if err != nil {
		return nil, err
	}
	tun := tuning.Defaults()
	if tuningPath != "" {
		if tun, err = tuning.Load(tuningPath); err != nil {
			return nil, err
		}
	}
	reg, err := cards.New(cat, cards.Options{MaxOceans: tun.MaxOceans})
	if err != nil {
		return nil, err
	}
	return engine.New(reg, tun), nil
}
