package channel

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cristianoliveira/sendpanel/internal/domain"
	"github.com/cristianoliveira/sendpanel/internal/errors"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu      sync.Mutex
	entries []string
}

func (s *recordingSink) add(sev, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, sev+":"+msg)
}

func (s *recordingSink) Error(msg string)   { s.add("error", msg) }
func (s *recordingSink) Warning(msg string) { s.add("warning", msg) }
func (s *recordingSink) Info(msg string)    { s.add("info", msg) }
func (s *recordingSink) Success(msg string) { s.add("success", msg) }

func (s *recordingSink) all() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.entries...)
}

var upgrader = websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}

// workerServer runs handle for each accepted connection; n is the
// zero-based connection index.
func workerServer(t *testing.T, handle func(n int, conn *websocket.Conn)) string {
	t.Helper()
	var mu sync.Mutex
	count := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		mu.Lock()
		n := count
		count++
		mu.Unlock()
		handle(n, conn)
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func startAdapter(t *testing.T, url string, sink *recordingSink) *Adapter {
	t.Helper()
	a := New(Options{URL: url, ReconnectDelay: 10 * time.Millisecond, MaxReconnectDelay: 20 * time.Millisecond, Sink: sink})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = a.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return a
}

func next(t *testing.T, a *Adapter) domain.Event {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	ev, err := a.Next(ctx)
	require.NoError(t, err)
	return ev
}

func TestEventsAreDeliveredInOrder(t *testing.T) {
	url := workerServer(t, func(_ int, conn *websocket.Conn) {
		for _, raw := range []string{
			`{"event":"bot_started","data":{}}`,
			`{"event":"status_update","data":{"stats":{"total_contacts":10,"messages_sent":1}}}`,
			`{"event":"status_update","data":{"stats":{"total_contacts":10,"messages_sent":2}}}`,
			`garbage`,
			`{"event":"bot_completed","data":{}}`,
		} {
			assert.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(raw)))
		}
		_, _, _ = conn.ReadMessage()
	})
	a := startAdapter(t, url, &recordingSink{})

	assert.Equal(t, domain.EventStarted, next(t, a).Name)
	assert.Equal(t, 1, next(t, a).Stats.MessagesSent)
	assert.Equal(t, 2, next(t, a).Stats.MessagesSent)
	assert.Equal(t, domain.EventCompleted, next(t, a).Name)
}

func TestDuplicateSequenceNumbersAreDropped(t *testing.T) {
	url := workerServer(t, func(_ int, conn *websocket.Conn) {
		for _, raw := range []string{
			`{"event":"bot_started","seq":1}`,
			`{"event":"bot_started","seq":1}`,
			`{"event":"status_update","seq":2,"data":{"message":"two"}}`,
		} {
			assert.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(raw)))
		}
		_, _, _ = conn.ReadMessage()
	})
	a := startAdapter(t, url, &recordingSink{})

	assert.Equal(t, domain.EventStarted, next(t, a).Name)
	assert.Equal(t, "two", next(t, a).Message)
}

func TestCommandsReachWorker(t *testing.T) {
	received := make(chan Frame, 2)
	url := workerServer(t, func(_ int, conn *websocket.Conn) {
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			f, err := DecodeFrame(msg)
			if err == nil {
				received <- f
			}
		}
	})
	a := startAdapter(t, url, &recordingSink{})
	require.Eventually(t, a.Connected, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, a.Start(domain.RunConfig{SourceFileID: "c.csv", MessageLimit: 5, DelayMillis: 1, MessageTemplate: "Hi"}))
	require.NoError(t, a.Stop())

	start := <-received
	assert.Equal(t, CommandStart, start.Event)
	assert.JSONEq(t, `{"filename":"c.csv","limit":5,"delay":1,"message":"Hi"}`, string(start.Data))
	stop := <-received
	assert.Equal(t, CommandStop, stop.Event)
}

func TestSendWithoutConnectionIsTransport(t *testing.T) {
	a := New(Options{URL: "ws://127.0.0.1:1/ws"})
	err := a.Start(domain.RunConfig{SourceFileID: "c.csv"})
	require.Error(t, err)
	assert.Equal(t, errors.KindTransport, errors.KindOf(err))
	assert.Equal(t, MsgNotConnected, errors.Message(err))
	assert.Equal(t, errors.KindTransport, errors.KindOf(a.Stop()))
}

func TestReconnectWarnsAndStartsNewSession(t *testing.T) {
	closeFirst := make(chan struct{})
	url := workerServer(t, func(n int, conn *websocket.Conn) {
		if n == 0 {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"event":"bot_started"}`))
			<-closeFirst
			return
		}
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"event":"status_update","data":{"message":"after"}}`))
		_, _, _ = conn.ReadMessage()
	})
	sink := &recordingSink{}
	a := startAdapter(t, url, sink)

	assert.Equal(t, domain.EventStarted, next(t, a).Name)
	first := a.Session()
	close(closeFirst)

	assert.Equal(t, "after", next(t, a).Message)
	assert.NotEqual(t, first, a.Session())
	assert.Equal(t, []string{"warning:" + MsgDisconnected, "info:" + MsgReconnected}, sink.all())
}

func TestUnreachableWorkerIsReportedOnce(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	srv.Close()

	sink := &recordingSink{}
	a := startAdapter(t, url, sink)

	time.Sleep(100 * time.Millisecond)
	assert.False(t, a.Connected())
	entries := sink.all()
	require.Len(t, entries, 1)
	assert.True(t, strings.HasPrefix(entries[0], "warning:Cannot reach worker"))
}

func TestStaleSessionEventsAreDropped(t *testing.T) {
	a := New(Options{URL: "ws://unused"})
	old := a.attach(nil)
	ev := domain.Event{Name: domain.EventStarted}

	assert.True(t, a.accept(Envelope{Session: old, Event: ev}))

	current := a.attach(nil)
	assert.False(t, a.accept(Envelope{Session: old, Event: ev}))
	assert.True(t, a.accept(Envelope{Session: current, Event: ev}))
}

func TestSequenceResetsPerSession(t *testing.T) {
	a := New(Options{URL: "ws://unused"})
	s1 := a.attach(nil)
	ev := domain.Event{Name: domain.EventStatusUpdate}

	assert.True(t, a.accept(Envelope{Session: s1, Seq: 5, Event: ev}))
	assert.False(t, a.accept(Envelope{Session: s1, Seq: 5, Event: ev}))
	assert.False(t, a.accept(Envelope{Session: s1, Seq: 3, Event: ev}))
	assert.True(t, a.accept(Envelope{Session: s1, Event: ev}))

	s2 := a.attach(nil)
	assert.True(t, a.accept(Envelope{Session: s2, Seq: 1, Event: ev}))
}

func TestNextHonorsContext(t *testing.T) {
	a := New(Options{URL: "ws://unused"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := a.Next(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
