package feed

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"MapVision/shared/game"
	"MapVision/shared/mapdata"
	"MapVision/shared/poi"
	"MapVision/shared/proto/poinet"

	"github.com/gorilla/websocket"
	"github.com/hectorgimenez/d2go/pkg/data/area"
	"github.com/hectorgimenez/d2go/pkg/data/difficulty"
	"github.com/hectorgimenez/d2go/pkg/data/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu       sync.Mutex
	frames   [][]byte
	statuses [][]byte
}

func (r *recorder) Publish(frame []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, frame)
}

func (r *recorder) Broadcast(frame []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, frame)
}

func (r *recorder) last(t *testing.T) *poinet.POIList {
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.frames)
	return decodeList(t, r.frames[len(r.frames)-1])
}

func decodeList(t *testing.T, frame []byte) *poinet.POIList {
	env, err := poinet.Open(frame)
	require.NoError(t, err)
	var list poinet.POIList
	require.NoError(t, env.Decode(&list))
	return &list
}

// world monta o cânion (tumba 3 é a verdadeira) e o santuário arcano.
func world() mapdata.StaticProvider {
	p := mapdata.StaticProvider{}
	canyon := mapdata.NewAreaData(area.CanyonOfTheMagi)
	canyon.Objects[object.Act2Waypoint] = []mapdata.Point{{X: 300, Y: 300}}
	for i, tomb := range []game.Area{
		area.TalRashasTomb1, area.TalRashasTomb2, area.TalRashasTomb3, area.TalRashasTomb4,
		area.TalRashasTomb5, area.TalRashasTomb6, area.TalRashasTomb7,
	} {
		canyon.AdjacentLevels[tomb] = mapdata.AdjacentLevel{Area: tomb, Exits: []mapdata.Point{{X: i * 10, Y: i * 10}}}
		data := mapdata.NewAreaData(tomb)
		if tomb == area.TalRashasTomb3 {
			data.Objects[object.HoradricOrifice] = []mapdata.Point{{X: 1, Y: 1}}
		}
		p[tomb] = data
	}
	p[area.CanyonOfTheMagi] = canyon

	sanctuary := mapdata.NewAreaData(area.ArcaneSanctuary)
	sanctuary.Objects[object.YetAnotherTome] = []mapdata.Point{{X: 5, Y: 5}}
	p[area.ArcaneSanctuary] = sanctuary
	return p
}

func writeCurrent(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
}

func newTestTracker(t *testing.T) (*Tracker, *recorder, string) {
	current := filepath.Join(t.TempDir(), "current.json")
	out := &recorder{}
	cache := mapdata.NewCachedProvider(world(), nil)
	return NewTracker(current, cache, poi.NewAssembler(nil), out, time.Millisecond), out, current
}

func TestTrackerPublishesOnlyOnChange(t *testing.T) {
	tracker, out, current := newTestTracker(t)
	ctx := context.Background()

	writeCurrent(t, current, `{"area": 46, "seed": 77, "difficulty": 2}`)
	published, err := tracker.Poll(ctx)
	require.NoError(t, err)
	assert.True(t, published)

	list := out.last(t)
	assert.Equal(t, int32(area.CanyonOfTheMagi), list.Area)
	assert.Equal(t, mapdata.Session{Seed: 77, Difficulty: difficulty.Hell}, list.Session())

	var next []poi.PointOfInterest
	for _, p := range list.PointsOfInterest() {
		if p.Category == poi.NextArea {
			next = append(next, p)
		}
	}
	require.Len(t, next, 1)
	assert.Equal(t, area.TalRashasTomb3, next[0].Target)

	published, err = tracker.Poll(ctx)
	require.NoError(t, err)
	assert.False(t, published, "mesmo frame não é republicado")

	writeCurrent(t, current, `{"area": 74, "seed": 77, "difficulty": 2}`)
	published, err = tracker.Poll(ctx)
	require.NoError(t, err)
	assert.True(t, published)
	assert.Equal(t, int32(area.ArcaneSanctuary), out.last(t).Area)

	// Mesma área em outra seed também é mudança
	writeCurrent(t, current, `{"area": 74, "seed": 78, "difficulty": 2}`)
	published, err = tracker.Poll(ctx)
	require.NoError(t, err)
	assert.True(t, published)
	assert.Len(t, out.frames, 3)
}

func TestTrackerReadCurrentErrors(t *testing.T) {
	tracker, out, current := newTestTracker(t)
	ctx := context.Background()

	_, err := tracker.Poll(ctx)
	assert.Error(t, err, "arquivo ainda não existe")

	writeCurrent(t, current, `{"area":`)
	_, err = tracker.Poll(ctx)
	assert.Error(t, err)

	writeCurrent(t, current, `{"area": 9999}`)
	_, err = tracker.Poll(ctx)
	assert.Error(t, err)

	writeCurrent(t, current, `{"area": 74, "difficulty": 3}`)
	_, err = tracker.Poll(ctx)
	assert.ErrorContains(t, err, "dificuldade")

	// Área válida sem snapshot
	writeCurrent(t, current, `{"area": 1}`)
	_, err = tracker.Poll(ctx)
	assert.ErrorIs(t, err, mapdata.ErrAreaUnavailable)

	assert.Empty(t, out.frames)
}

func TestTrackerBroadcastsErrorOnce(t *testing.T) {
	tracker, out, current := newTestTracker(t)
	ctx := context.Background()

	tracker.pollSafe(ctx)
	tracker.pollSafe(ctx)
	require.Len(t, out.statuses, 1, "erro repetido só é avisado uma vez")

	env, err := poinet.Open(out.statuses[0])
	require.NoError(t, err)
	var status poinet.ServerStatus
	require.NoError(t, env.Decode(&status))
	assert.Contains(t, status.Message, "falha ao ler área atual")

	writeCurrent(t, current, `{"area": 74}`)
	tracker.pollSafe(ctx)
	assert.Len(t, out.frames, 1)

	writeCurrent(t, current, `{"area": 1}`)
	tracker.pollSafe(ctx)
	assert.Len(t, out.statuses, 2)
	assert.Len(t, out.frames, 1, "avisos não viram estado atual")
}

func TestTrackerRunStopsWithContext(t *testing.T) {
	tracker, out, current := newTestTracker(t)
	writeCurrent(t, current, `{"area": 74}`)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		tracker.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		out.mu.Lock()
		defer out.mu.Unlock()
		return len(out.frames) == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run não terminou após o cancelamento")
	}
}

func TestHandleMessage(t *testing.T) {
	tracker, _, _ := newTestTracker(t)

	var replies [][]byte
	reply := func(frame []byte) error {
		replies = append(replies, frame)
		return nil
	}

	env, err := poinet.Open(poinet.Wrap(&poinet.RequestArea{Area: int32(area.ArcaneSanctuary)}))
	require.NoError(t, err)
	tracker.HandleMessage(env, reply)
	require.Len(t, replies, 1)
	list := decodeList(t, replies[0])
	require.Len(t, list.Items, 1)
	assert.Equal(t, "Summoner", list.Items[0].Label)

	env, err = poinet.Open(poinet.Wrap(&poinet.RequestArea{Area: int32(area.Travincal)}))
	require.NoError(t, err)
	tracker.HandleMessage(env, reply)
	require.Len(t, replies, 2)
	status, err := poinet.Open(replies[1])
	require.NoError(t, err)
	assert.Equal(t, poinet.MsgServerStatus, status.Type)

	// Outros tipos são ignorados
	env, err = poinet.Open(poinet.Wrap(&poinet.ServerStatus{Message: "oi"}))
	require.NoError(t, err)
	tracker.HandleMessage(env, reply)
	assert.Len(t, replies, 2)
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) *poinet.Envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	env, err := poinet.Open(data)
	require.NoError(t, err)
	return env
}

func TestHubDeliversFrames(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub()
	go hub.Run(ctx)

	tracker, _, current := newTestTracker(t)
	tracker.out = hub
	hub.SetHandler(tracker.HandleMessage)

	srv := httptest.NewServer(hub)
	defer srv.Close()

	first := dial(t, srv)
	assert.Equal(t, poinet.MsgServerStatus, readEnvelope(t, first).Type)

	writeCurrent(t, current, `{"area": 46, "seed": 5}`)
	published, err := tracker.Poll(ctx)
	require.NoError(t, err)
	require.True(t, published)

	env := readEnvelope(t, first)
	require.Equal(t, poinet.MsgPOIList, env.Type)

	// Quem conecta depois recebe o status e o último frame publicado
	second := dial(t, srv)
	assert.Equal(t, poinet.MsgServerStatus, readEnvelope(t, second).Type)
	late := readEnvelope(t, second)
	assert.Equal(t, env.Payload, late.Payload)
	assert.Equal(t, 2, hub.ClientCount())

	// Pedido direto só volta para quem pediu
	req := poinet.Wrap(&poinet.RequestArea{Area: int32(area.ArcaneSanctuary)})
	require.NoError(t, second.WriteMessage(websocket.BinaryMessage, req))
	reply := readEnvelope(t, second)
	var list poinet.POIList
	require.NoError(t, reply.Decode(&list))
	assert.Equal(t, int32(area.ArcaneSanctuary), list.Area)

	// Broadcast chega a todos mas não substitui o último frame
	hub.Broadcast(poinet.Wrap(&poinet.ServerStatus{Message: "área sem snapshot"}))
	assert.Equal(t, poinet.MsgServerStatus, readEnvelope(t, first).Type)
	assert.Equal(t, poinet.MsgServerStatus, readEnvelope(t, second).Type)

	third := dial(t, srv)
	assert.Equal(t, poinet.MsgServerStatus, readEnvelope(t, third).Type)
	assert.Equal(t, env.Payload, readEnvelope(t, third).Payload)
}
