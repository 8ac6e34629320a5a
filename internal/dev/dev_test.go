package dev

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/weft/internal/config"
	"github.com/vango-dev/weft/internal/pages"
	"github.com/vango-dev/weft/pkg/observe"
	"github.com/vango-dev/weft/pkg/weft"
)

func newProject(t *testing.T, files map[string]string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.New()
	if err := cfg.SaveTo(filepath.Join(dir, config.ConfigFileName)); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(cfg.PagesPath(), 0755); err != nil {
		t.Fatal(err)
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(cfg.PagesPath(), name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return cfg
}

func get(t *testing.T, srv *httptest.Server, path string) (int, string) {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, string(body)
}

func dial(t *testing.T, srv *httptest.Server, hub *Hub) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/_weft/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })
	deadline := time.Now().Add(time.Second)
	for hub.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	return conn
}

func read(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatal(err)
	}
	return msg
}

func TestServePages(t *testing.T) {
	cfg := newProject(t, map[string]string{
		"index.html": `<h1>${title}</h1>`,
		"index.json": `{"title": "Home"}`,
		"bad.html":   `<p>${x}</p>`,
		"bad.json":   `nope`,
	})
	s := NewServer(ServerOptions{Config: cfg})
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()
	defer s.Hub().Close()

	tests := []struct {
		path   string
		status int
		want   string
	}{
		{"/", http.StatusOK, `<a href="/pages/index">index</a>`},
		{"/pages/index", http.StatusOK, `<h1>Home</h1>`},
		{"/pages/index", http.StatusOK, `data-weft-page="index"`},
		{"/pages/missing", http.StatusNotFound, `weft-error`},
		{"/pages/bad", http.StatusUnprocessableEntity, `E801`},
		{"/metrics", http.StatusNotFound, ``},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			status, body := get(t, srv, tt.path)
			if status != tt.status {
				t.Errorf("status = %d, want %d", status, tt.status)
			}
			if !strings.Contains(body, tt.want) {
				t.Errorf("body missing %q:\n%s", tt.want, body)
			}
		})
	}
}

func TestHolesEndpoint(t *testing.T) {
	cfg := newProject(t, map[string]string{
		"card.html": `<div class=${tone}>${text}</div>`,
		"card.json": `{"tone": "info"}`,
	})
	s := NewServer(ServerOptions{Config: cfg})
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()
	defer s.Hub().Close()

	status, body := get(t, srv, "/_weft/pages/card/holes")
	if status != http.StatusOK {
		t.Fatalf("status = %d: %s", status, body)
	}
	var got struct {
		Page    string       `json:"page"`
		Holes   []pages.Hole `json:"holes"`
		Missing []string     `json:"missing"`
	}
	if err := json.Unmarshal([]byte(body), &got); err != nil {
		t.Fatal(err)
	}
	want := []pages.Hole{
		{Name: "tone", Kind: "Attribute:class", Index: 0},
		{Name: "text", Kind: "Text", Index: 1},
	}
	if diff := cmp.Diff(want, got.Holes); diff != "" {
		t.Errorf("holes mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"text"}, got.Missing); diff != "" {
		t.Errorf("missing mismatch (-want +got):\n%s", diff)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	cfg := newProject(t, map[string]string{"p.html": `<p>p</p>`})
	cfg.Metrics.Enabled = true
	cfg.Metrics.Namespace = "devtest"
	s := NewServer(ServerOptions{Config: cfg, Registry: prometheus.NewRegistry()})
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()
	defer s.Hub().Close()

	if status, _ := get(t, srv, "/pages/p"); status != http.StatusOK {
		t.Fatalf("render status = %d", status)
	}
	status, body := get(t, srv, "/metrics")
	if status != http.StatusOK {
		t.Fatalf("metrics status = %d", status)
	}
	if !strings.Contains(body, `devtest_updates_total`) {
		t.Errorf("metrics missing updates counter:\n%s", body)
	}
}

func TestEventStream(t *testing.T) {
	cfg := newProject(t, map[string]string{"p.html": `<p>${x}</p>`})
	cfg.Dev.Events = true
	s := NewServer(ServerOptions{Config: cfg})
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()
	defer s.Hub().Close()

	conn := dial(t, srv, s.Hub())
	if status, _ := get(t, srv, "/pages/p"); status != http.StatusOK {
		t.Fatalf("render status = %d", status)
	}

	var kinds []string
	for len(kinds) == 0 || kinds[len(kinds)-1] != "update-end" {
		msg := read(t, conn)
		if msg.Type != MessageEvent || msg.Event == nil {
			t.Fatalf("unexpected message %+v", msg)
		}
		kinds = append(kinds, msg.Event.Kind)
	}
	if kinds[0] != "update-start" {
		t.Errorf("first event = %s, want update-start", kinds[0])
	}
}

func TestTraceObserver(t *testing.T) {
	cfg := newProject(t, map[string]string{"p.html": `<p>${x}</p>`})
	traced := func(s *Server) bool {
		for _, o := range s.observers {
			if _, ok := o.(*observe.Tracer); ok {
				return true
			}
		}
		return false
	}

	s := NewServer(ServerOptions{Config: cfg})
	s.Hub().Close()
	if traced(s) {
		t.Error("tracer attached with tracing off")
	}

	cfg.Trace.Enabled = true
	s = NewServer(ServerOptions{Config: cfg})
	defer s.Hub().Close()
	if !traced(s) {
		t.Fatal("tracer not attached with tracing on")
	}
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()
	if status, _ := get(t, srv, "/pages/p"); status != http.StatusOK {
		t.Errorf("render status = %d", status)
	}
}

func TestHubSerializesWrites(t *testing.T) {
	hub := NewHub()
	defer hub.Close()
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWebSocket))
	defer srv.Close()
	conn := dial(t, srv, hub)

	const reloads, events = 50, 200
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < reloads; i++ {
			hub.NotifyReload("p")
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < events; i++ {
			hub.OnRuntimeEvent(weft.RuntimeEvent{Kind: weft.EventUpdateStart})
		}
	}()
	wg.Wait()

	got := map[MessageType]int{}
	for got[MessageReload] < reloads || got[MessageEvent] < events {
		got[read(t, conn).Type]++
	}
	want := map[MessageType]int{MessageReload: reloads, MessageEvent: events}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("messages mismatch (-want +got):\n%s", diff)
	}
}

func TestHandleChanges(t *testing.T) {
	cfg := newProject(t, map[string]string{
		"ok.html":  `<p>ok</p>`,
		"bad.html": `<p>${oops</p>`,
	})
	var reloaded []string
	s := NewServer(ServerOptions{Config: cfg, OnReload: func(page string, _ int) {
		reloaded = append(reloaded, page)
	}})
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()
	defer s.Hub().Close()
	conn := dial(t, srv, s.Hub())

	s.HandleChanges([]Change{{Path: filepath.Join(cfg.PagesPath(), "ok.html"), Type: ChangeMarkup}})
	if msg := read(t, conn); msg.Type != MessageClear {
		t.Errorf("first message = %+v, want clear", msg)
	}
	if msg := read(t, conn); msg.Type != MessageReload || msg.Page != "ok" {
		t.Errorf("second message = %+v, want reload of ok", msg)
	}

	s.HandleChanges([]Change{{Path: filepath.Join(cfg.PagesPath(), "bad.html"), Type: ChangeMarkup}})
	if msg := read(t, conn); msg.Type != MessageError || !strings.Contains(msg.Error, "E301") {
		t.Errorf("message = %+v, want E301 error", msg)
	}

	s.HandleChanges([]Change{
		{Path: filepath.Join(cfg.PagesPath(), "ok.json"), Type: ChangeData},
		{Path: cfg.Path(), Type: ChangeConfig},
	})
	if diff := cmp.Diff([]string{"ok", ""}, reloaded); diff != "" {
		t.Errorf("reloads mismatch (-want +got):\n%s", diff)
	}
}

func TestClassifyChange(t *testing.T) {
	tests := map[string]ChangeType{
		"pages/index.html": ChangeMarkup,
		"pages/index.JSON": ChangeData,
		"weft.json":        ChangeConfig,
		"weft.yaml":        ChangeConfig,
		"pages/logo.png":   ChangeOther,
	}
	for path, want := range tests {
		if got := classifyChange(path); got != want {
			t.Errorf("classifyChange(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestCollectWatchPaths(t *testing.T) {
	cfg := newProject(t, nil)
	want := []string{cfg.PagesPath(), cfg.Path()}
	if diff := cmp.Diff(want, CollectWatchPaths(cfg)); diff != "" {
		t.Errorf("watch paths mismatch (-want +got):\n%s", diff)
	}
}

func TestWatcher(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "page.html")
	if err := os.WriteFile(file, []byte("<p>a</p>"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "page.html.swp"), nil, 0644); err != nil {
		t.Fatal(err)
	}

	w := NewWatcher(WatcherConfig{Paths: []string{dir}, Interval: 20 * time.Millisecond})
	changes := make(chan Change, 10)
	w.OnChange(func(c Change) { changes <- c })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)
	time.Sleep(60 * time.Millisecond)

	added := filepath.Join(dir, "new.json")
	if err := os.WriteFile(added, []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}
	select {
	case c := <-changes:
		if c.Path != added || c.Type != ChangeData {
			t.Errorf("change = %+v, want data change of %s", c, added)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for change")
	}

	if err := os.Remove(file); err != nil {
		t.Fatal(err)
	}
	select {
	case c := <-changes:
		if c.Path != file || c.Type != ChangeMarkup {
			t.Errorf("change = %+v, want removal of %s", c, file)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for removal")
	}

	w.Stop()
	if w.IsRunning() {
		t.Error("watcher still running after Stop")
	}
}
