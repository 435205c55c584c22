package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ResumeSense/internal/models"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type recordingPublisher struct {
	got []models.StatusUpdate
	err error
}

func (r *recordingPublisher) Publish(_ context.Context, u models.StatusUpdate) error {
	r.got = append(r.got, u)
	return r.err
}

func TestRoutingKey(t *testing.T) {
	assert.Equal(t, "resume.r1", RoutingKey(models.StatusUpdate{UploadID: "u1", ResumeID: "r1"}))
	assert.Equal(t, "upload.u1", RoutingKey(models.StatusUpdate{UploadID: "u1"}))
}

func TestFanout_ContinuesAfterFailure(t *testing.T) {
	failing := &recordingPublisher{err: errors.New("broker down")}
	ok := &recordingPublisher{}
	f := NewFanout(discard, failing, ok)

	err := f.Publish(context.Background(), models.StatusUpdate{Stage: models.StageAnalyzing})
	assert.ErrorContains(t, err, "broker down")
	assert.Len(t, failing.got, 1)
	assert.Len(t, ok.got, 1)
}

func TestNopPublisher(t *testing.T) {
	assert.NoError(t, NopPublisher{}.Publish(context.Background(), models.StatusUpdate{}))
}

func newHubServer(t *testing.T, hub *Hub, userID string) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Attach(userID, conn).ReadLoop()
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHub_DeliversToOwner(t *testing.T) {
	hub := NewHub(discard)
	srv := newHubServer(t, hub, "user-1")
	conn := dial(t, srv)

	require.Eventually(t, func() bool { return hub.Count("user-1") == 1 }, time.Second, 10*time.Millisecond)

	// 다른 사용자 업데이트는 전달되지 않음
	require.NoError(t, hub.Publish(context.Background(), models.StatusUpdate{UserID: "user-2", Stage: models.StageConverting}))
	require.NoError(t, hub.Publish(context.Background(), models.StatusUpdate{
		UploadID: "up-1",
		UserID:   "user-1",
		Stage:    models.StageCompleted,
		Message:  models.StatusMessages[models.StageCompleted],
	}))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var got models.StatusUpdate
	require.NoError(t, json.Unmarshal(msg, &got))
	assert.Equal(t, "up-1", got.UploadID)
	assert.Equal(t, models.StageCompleted, got.Stage)
	assert.Equal(t, "Analysis complete, redirecting...", got.Message)
}

func TestHub_DetachesOnDisconnect(t *testing.T) {
	hub := NewHub(discard)
	srv := newHubServer(t, hub, "user-1")
	conn := dial(t, srv)

	require.Eventually(t, func() bool { return hub.Count("user-1") == 1 }, time.Second, 10*time.Millisecond)
	conn.Close()
	assert.Eventually(t, func() bool { return hub.Count("user-1") == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_Close(t *testing.T) {
	hub := NewHub(discard)
	srv := newHubServer(t, hub, "user-1")
	dial(t, srv)

	require.Eventually(t, func() bool { return hub.Count("user-1") == 1 }, time.Second, 10*time.Millisecond)
	hub.Close()
	assert.Equal(t, 0, hub.Count("user-1"))
}
