package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ideaspark/ideaspark/internal/store"
)

// Handler turns store events into dashboard messages. It implements
// store.Observer.
type Handler struct {
	server *Server
	logger *log.Logger

	mu    sync.Mutex
	stats StatsData
}

var _ store.Observer = (*Handler)(nil)

// NewHandler creates a handler that broadcasts through server.
func NewHandler(server *Server, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{
		server: server,
		logger: logger,
		stats:  StatsData{ByStatus: make(map[string]int)},
	}
}

// OnTaskEvent broadcasts a task_update and then fresh stats.
func (h *Handler) OnTaskEvent(ev store.Event) {
	data := TaskUpdateData{
		TaskID: ev.TaskID,
		Action: string(ev.Kind),
	}
	if ev.Task != nil {
		data.Title = ev.Task.Title
		data.Category = ev.Task.Category
		data.Status = string(ev.Task.Status)
		data.Deleted = ev.Task.Deleted
	}
	h.logger.Printf("Task %s: %s", ev.Kind, ev.TaskID)

	h.send(MessageTypeTaskUpdate, ev.At, data)

	if err := h.RefreshStats(context.Background()); err != nil {
		h.logger.Printf("Failed to refresh stats: %v", err)
	}
}

// RefreshStats reloads counts from the attached source and broadcasts them.
func (h *Handler) RefreshStats(ctx context.Context) error {
	src := h.server.getSource()
	if src == nil {
		return fmt.Errorf("store not attached")
	}

	raw, err := src.Stats(ctx)
	if err != nil {
		return err
	}
	stats := statsFromDB(raw)

	h.mu.Lock()
	h.stats = stats
	h.mu.Unlock()

	h.send(MessageTypeStats, time.Now(), stats)
	return nil
}

// GetStats returns the last broadcast statistics.
func (h *Handler) GetStats() StatsData {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := h.stats
	out.ByStatus = make(map[string]int, len(h.stats.ByStatus))
	for k, v := range h.stats.ByStatus {
		out.ByStatus[k] = v
	}
	return out
}

func (h *Handler) send(typ MessageType, at time.Time, payload interface{}) {
	dataJSON, err := json.Marshal(payload)
	if err != nil {
		h.logger.Printf("Failed to marshal %s data: %v", typ, err)
		return
	}
	if at.IsZero() {
		at = time.Now()
	}
	h.server.Broadcast(Message{Type: typ, Timestamp: at, Data: dataJSON})
}
