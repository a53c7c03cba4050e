package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"redplanet.games/internal/persistence/indexdb"
	"redplanet.games/internal/sim/cards"
	"redplanet.games/internal/sim/catalogs"
	"redplanet.games/internal/sim/engine"
	"redplanet.games/internal/sim/multigame"
	"redplanet.games/internal/sim/tuning"
	"redplanet.games/internal/transport/ws"
)

func newTestHandler(t *testing.T) (*httptest.Server, *multigame.Manager) {
	t.Helper()
	cat, err := catalogs.Default()
	if err != nil {
		t.Fatalf("catalogs: %v", err)
	}
	tun := tuning.Defaults()
	reg, err := cards.New(cat, cards.Options{MaxOceans: tun.MaxOceans})
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	dir := t.TempDir()
	idx, err := indexdb.OpenSQLite(filepath.Join(dir, "index", "games.sqlite"))
	if err != nil {
		t.Fatalf("index: %v", err)
	}
	mgr, err := multigame.NewManager(multigame.Config{DataDir: dir}, engine.New(reg, tun), idx, nil)
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	wsSrv, err := ws.NewServer(mgr, ws.Config{}, nil)
	if err != nil {
		t.Fatalf("ws: %v", err)
	}
	logger := log.New(io.Discard, "", 0)
	hs := httptest.NewServer(newHandler(mgr, idx, wsSrv, httpOptions{}, logger))
	t.Cleanup(func() {
		hs.Close()
		_ = mgr.Close(context.Background())
		_ = idx.Close()
	})
	return hs, mgr
}

func get(t *testing.T, url string, hdr map[string]string) (*http.Response, string) {
	t.Helper()
	req, _ := http.NewRequest(http.MethodGet, url, nil)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp, string(b)
}

func TestHealthAndMetrics(t *testing.T) {
	hs, mgr := newTestHandler(t)
	if _, err := mgr.Create(multigame.CreateRequest{Players: []engine.Seat{{Corporation: cards.Credicor}, {Corporation: cards.Ecoline}}, Seed: 1}); err != nil {
		t.Fatalf("create: %v", err)
	}

	resp, body := get(t, hs.URL+"/healthz", nil)
	if resp.StatusCode != http.StatusOK || body != "ok" {
		t.Fatalf("healthz: %d %q", resp.StatusCode, body)
	}

	_, body = get(t, hs.URL+"/metrics", nil)
	for _, want := range []string{`redplanet_games{state="running"} 1`, `redplanet_index_dropped_total{kind="event"} 0`} {
		if !strings.Contains(body, want) {
			t.Fatalf("metrics missing %q:\n%s", want, body)
		}
	}
}

func TestCORSOnSpectatorAPI(t *testing.T) {
	hs, _ := newTestHandler(t)
	resp, _ := get(t, hs.URL+"/v1/games", map[string]string{"Origin": "http://viewer.example"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("allow origin: %q", got)
	}
}

func TestEnvFileFromArgs(t *testing.T) {
	cases := []struct {
		args []string
		want string
	}{
		{nil, ".env"},
		{[]string{"-addr", ":1", "-env", "prod.env"}, "prod.env"},
		{[]string{"--env=x.env"}, "x.env"},
		{[]string{"env", "y.env"}, ".env"},
	}
	for _, c := range cases {
		if got := envFileFromArgs(c.args, ".env"); got != c.want {
			t.Fatalf("%v: got %q want %q", c.args, got, c.want)
		}
	}
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("RP_TEST_BOOL", "true")
	t.Setenv("RP_TEST_LIST", " a, ,b ")
	if !envBool("RP_TEST_BOOL", false) || envBool("RP_TEST_MISSING", false) {
		t.Fatalf("envBool")
	}
	if got := envList("RP_TEST_LIST"); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("envList: %v", got)
	}
	if envString("RP_TEST_MISSING", "d") != "d" {
		t.Fatalf("envString default")
	}
}
