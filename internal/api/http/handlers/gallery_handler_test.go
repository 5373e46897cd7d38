package handlers

import (
	"bufio"
	"bytes"
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devsanbid/bravo-test-sub001/internal/domain"
	"github.com/devsanbid/bravo-test-sub001/internal/events"
	"github.com/devsanbid/bravo-test-sub001/internal/repository"
	"github.com/devsanbid/bravo-test-sub001/internal/service"
)

func TestWriteEventFrame(t *testing.T) {
	ev := events.Event{
		ID:        "ev-1",
		Topic:     events.TopicGallery,
		Kind:      events.KindCreate,
		ItemID:    "img-1",
		Item:      &domain.GalleryImage{ID: "img-1", Title: "Batch photo"},
		Timestamp: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}

	var buf bytes.Buffer
	require.NoError(t, writeEvent(&buf, ev))

	frame := buf.String()
	assert.True(t, strings.HasPrefix(frame, "id: ev-1\nevent: create\ndata: {"))
	assert.True(t, strings.HasSuffix(frame, "}\n\n"))
	assert.Contains(t, frame, `"title":"Batch photo"`)
	assert.Equal(t, 1, strings.Count(frame, "data: "))
}

func TestEffectivePage(t *testing.T) {
	limit, offset := effectivePage(0, -3)
	assert.Equal(t, 25, limit)
	assert.Equal(t, 0, offset)

	limit, offset = effectivePage(500, 40)
	assert.Equal(t, 100, limit)
	assert.Equal(t, 40, offset)
}

// countingDispatcher tracks open subscriptions.
type countingDispatcher struct {
	events.Dispatcher
	active atomic.Int32
}

func (d *countingDispatcher) Subscribe(ctx context.Context, topic events.Topic, handler events.Handler) (func(), error) {
	unsubscribe, err := d.Dispatcher.Subscribe(ctx, topic, handler)
	if err != nil {
		return nil, err
	}
	d.active.Add(1)
	var once sync.Once
	return func() {
		unsubscribe()
		once.Do(func() { d.active.Add(-1) })
	}, nil
}

// readFrame returns the fields of the next SSE frame, skipping comment lines.
func readFrame(t *testing.T, r *bufio.Reader) map[string]string {
	t.Helper()
	fields := map[string]string{}
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\r\n")
		switch {
		case line == "":
			if len(fields) > 0 {
				return fields
			}
		case strings.HasPrefix(line, ":"):
		default:
			key, value, _ := strings.Cut(line, ": ")
			fields[key] = value
		}
	}
}

func TestEventsStreamsDedupedChangesUntilDisconnect(t *testing.T) {
	dispatcher := &countingDispatcher{Dispatcher: events.NewInMemoryDispatcher()}
	gallery := service.NewGalleryService(service.GalleryDependencies{
		GalleryRepo: repository.NewGalleryRepository(repository.NewMemoryDocumentStore(), "gallery"),
		Files:       repository.NewMemoryFileStore("media", "https://prep.example.com"),
		Dispatcher:  dispatcher,
	})
	h := NewGalleryHandler(gallery, nil, nil)
	h.keepalive = 20 * time.Millisecond

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Get("/events", h.Events)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.Listener(ln) }()
	defer func() { _ = app.ShutdownWithTimeout(time.Second) }()

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get("http://" + ln.Addr().String() + "/events")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	// the retry hint is written after the subscription is registered
	assert.Equal(t, "3000", readFrame(t, reader)["retry"])
	assert.Equal(t, int32(1), dispatcher.active.Load())

	ctx := context.Background()
	image := &domain.GalleryImage{ID: "img-1", Title: "Batch photo"}
	created := events.NewEvent(events.TopicGallery, events.KindCreate, image.ID, image)
	require.NoError(t, dispatcher.Publish(ctx, created))
	require.NoError(t, dispatcher.Publish(ctx, created))
	require.NoError(t, dispatcher.Publish(ctx, events.NewEvent(events.TopicGallery, events.KindUpdate, image.ID, image)))

	frame := readFrame(t, reader)
	assert.Equal(t, "create", frame["event"])
	assert.Equal(t, created.ID, frame["id"])
	assert.Contains(t, frame["data"], `"itemId":"img-1"`)

	frame = readFrame(t, reader)
	assert.Equal(t, "update", frame["event"])

	require.NoError(t, resp.Body.Close())
	assert.Eventually(t, func() bool {
		return dispatcher.active.Load() == 0
	}, 3*time.Second, 10*time.Millisecond)
}
