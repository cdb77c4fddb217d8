package server

import (
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rathgar/idlebot/internal/data"
	"github.com/rathgar/idlebot/internal/engine"
	"github.com/rathgar/idlebot/internal/experience"
	"github.com/rathgar/idlebot/internal/guide"
	"github.com/rathgar/idlebot/internal/loot"
	"github.com/rathgar/idlebot/internal/model"
	"github.com/rathgar/idlebot/internal/nav"
	"github.com/rathgar/idlebot/internal/quest"
	"github.com/rathgar/idlebot/internal/zone"
)

type emptyStore struct{}

func (emptyStore) GetQuest(entry int32) (*data.Quest, error) {
	return nil, data.ErrNotFound
}

func (emptyStore) GetCreatureTemplate(entry int32) (*data.CreatureTemplate, error) {
	return nil, data.ErrNotFound
}

func (emptyStore) GetCreatureSpawns(entry int32) ([]data.CreatureSpawn, error) {
	return nil, nil
}

func (emptyStore) GetQuestGivers(questID int32) ([]int32, error) { return nil, nil }
func (emptyStore) GetQuestEnders(questID int32) ([]int32, error) { return nil, nil }
func (emptyStore) GetItem(entry int32) (*data.Item, error)       { return nil, data.ErrNotFound }
func (emptyStore) GetLootTable(entry int32) ([]data.LootRow, error) {
	return nil, nil
}
func (emptyStore) GetReferenceLootTable(ref int32) ([]data.LootRow, error) {
	return nil, nil
}
func (emptyStore) GetStartPosition(raceID, classID int32) (*model.Position, error) {
	return nil, data.ErrNotFound
}

func testServer(t *testing.T) (*Server, *engine.Engine) {
	t.Helper()
	book, err := guide.Load("")
	if err != nil {
		t.Fatal(err)
	}
	store := emptyStore{}
	eng := engine.New(engine.Deps{
		Store:     store,
		Executor:  quest.NewExecutor(store),
		Loot:      loot.NewGenerator(store),
		Navigator: nav.NewNavigator(book, store),
		Zones:     zone.NewRegistry(),
		Ledger:    experience.NewLedger(nil),
		Character: &model.Character{Name: "Tester", Race: "Human", Class: "Warrior", Level: 1},
		Inventory: model.NewInventory(),
	})
	_ = eng.SetMode(engine.ModeManual)
	return New(eng, slog.Default()), eng
}

func dial(t *testing.T, srv *Server) *websocket.Conn {
	t.Helper()
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func TestServer_InitialSnapshot(t *testing.T) {
	srv, _ := testServer(t)
	conn := dial(t, srv)

	msg := readMessage(t, conn)
	if msg.Type != "snapshot" || msg.Snapshot == nil {
		t.Fatalf("first frame = %+v, want a snapshot", msg)
	}
	if msg.Snapshot.Character.Name != "Tester" {
		t.Errorf("character = %+v", msg.Snapshot.Character)
	}
	if msg.Snapshot.Mode != engine.ModeManual {
		t.Errorf("mode = %s", msg.Snapshot.Mode)
	}
}

func TestServer_CommandsRoundTrip(t *testing.T) {
	srv, eng := testServer(t)
	conn := dial(t, srv)
	readMessage(t, conn) // initial snapshot

	if err := conn.WriteJSON(Command{Type: "pause"}); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return eng.Snapshot().Paused })

	if err := conn.WriteJSON(Command{Type: "resume"}); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return !eng.Snapshot().Paused })

	if err := conn.WriteJSON(Command{Type: "set-mode", Mode: "auto"}); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return eng.Snapshot().Mode == engine.ModeAuto })
}

func TestServer_BadCommandsReportErrors(t *testing.T) {
	srv, _ := testServer(t)
	conn := dial(t, srv)
	readMessage(t, conn)

	if err := conn.WriteJSON(Command{Type: "warp-speed"}); err != nil {
		t.Fatal(err)
	}
	msg := readMessage(t, conn)
	if msg.Type != "error" || !strings.Contains(msg.Error, "unknown command") {
		t.Errorf("frame = %+v, want an error", msg)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte("{nope")); err != nil {
		t.Fatal(err)
	}
	msg = readMessage(t, conn)
	if msg.Type != "error" {
		t.Errorf("frame = %+v, want an error", msg)
	}
}

func TestServer_BroadcastReachesClient(t *testing.T) {
	srv, eng := testServer(t)
	conn := dial(t, srv)
	readMessage(t, conn)

	eng.Tick()
	msg := readMessage(t, conn)
	if msg.Type != "snapshot" || msg.Snapshot == nil {
		t.Fatalf("frame = %+v, want the tick snapshot", msg)
	}
}

func TestServer_MarshalSnapshot(t *testing.T) {
	_, eng := testServer(t)
	snap := eng.Snapshot()

	raw, err := json.Marshal(Message{Type: "snapshot", Snapshot: &snap})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(raw), `"character"`) {
		t.Errorf("payload missing character: %s", raw)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}
