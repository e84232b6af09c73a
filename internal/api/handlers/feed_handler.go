package handlers

import (
	"sync"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/complaint-desk/backend/internal/storage/models"
	"github.com/complaint-desk/backend/pkg/logger"
)

// Feed fans newly stored complaints out to connected staff clients.
type Feed struct {
	mu      sync.RWMutex
	clients map[string]chan models.ComplaintRecord
}

func NewFeed() *Feed {
	return &Feed{
		clients: make(map[string]chan models.ComplaintRecord),
	}
}

// Broadcast delivers record to every connected client. Slow clients drop the
// record rather than stall the submit path.
func (f *Feed) Broadcast(record models.ComplaintRecord) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	for id, ch := range f.clients {
		select {
		case ch <- record:
		default:
			logger.Warn("Dropping feed message for slow client", zap.String("client_id", id))
		}
	}
}

func (f *Feed) subscribe() (string, chan models.ComplaintRecord) {
	id := uuid.New().String()
	ch := make(chan models.ComplaintRecord, 16)

	f.mu.Lock()
	f.clients[id] = ch
	f.mu.Unlock()

	return id, ch
}

func (f *Feed) unsubscribe(id string) {
	f.mu.Lock()
	delete(f.clients, id)
	f.mu.Unlock()
}

// HandleConnection streams complaints to one websocket client until the
// connection drops.
func (f *Feed) HandleConnection(c *websocket.Conn) {
	id, ch := f.subscribe()
	logger.Info("Feed client connected", zap.String("client_id", id))

	defer func() {
		f.unsubscribe(id)
		c.Close()
		logger.Info("Feed client disconnected", zap.String("client_id", id))
	}()

	done := make(chan struct{})

	// Reader loop exists only to observe the close handshake.
	go func() {
		defer close(done)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case record := <-ch:
			if err := c.WriteJSON(record); err != nil {
				logger.Debug("Failed to write feed message", zap.Error(err))
				return
			}
		case <-done:
			return
		}
	}
}
