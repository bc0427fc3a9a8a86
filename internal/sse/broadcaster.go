package sse

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"aufgussplan/internal/logger"
	"aufgussplan/internal/models"
)

// AllPlans is the subscription key for displays that show every plan.
const AllPlans = "*"

const keepAliveInterval = 25 * time.Second

// Broadcaster fans session changes out to connected display clients.
type Broadcaster struct {
	clients map[string][]chan models.AufguesseChangedEvent
	mu      sync.RWMutex
	Logger  *logger.Logger
}

func NewBroadcaster(log *logger.Logger) *Broadcaster {
	return &Broadcaster{
		clients: make(map[string][]chan models.AufguesseChangedEvent),
		Logger:  log,
	}
}

// PlanKey turns an optional plan id into a subscription key.
func PlanKey(planID *int64) string {
	if planID == nil {
		return AllPlans
	}
	return strconv.FormatInt(*planID, 10)
}

// Subscribe registers a client for planKey until ctx is done.
func (b *Broadcaster) Subscribe(ctx context.Context, planKey string) <-chan models.AufguesseChangedEvent {
	ch := make(chan models.AufguesseChangedEvent, 10)

	b.mu.Lock()
	b.clients[planKey] = append(b.clients[planKey], ch)
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.remove(planKey, ch)
	}()

	return ch
}

// AufguesseChanged delivers event to the plan's subscribers and to the
// displays watching all plans. Slow clients miss the event; they still
// pick up the change on their next poll.
func (b *Broadcaster) AufguesseChanged(_ context.Context, event models.AufguesseChangedEvent) {
	keys := []string{AllPlans}
	if event.PlanID != nil {
		keys = append(keys, PlanKey(event.PlanID))
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, key := range keys {
		for _, ch := range b.clients[key] {
			select {
			case ch <- event:
			default:
			}
		}
	}
}

func (b *Broadcaster) remove(planKey string, ch chan models.AufguesseChangedEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	clients := b.clients[planKey]
	for i, c := range clients {
		if c == ch {
			b.clients[planKey] = append(clients[:i], clients[i+1:]...)
			close(ch)
			break
		}
	}
	if len(b.clients[planKey]) == 0 {
		delete(b.clients, planKey)
	}
}

// ClientCount returns the number of clients subscribed to planKey.
func (b *Broadcaster) ClientCount(planKey string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients[planKey])
}

// ServeHTTP streams change events for ?plan_id= (or all plans).
func (b *Broadcaster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming nicht unterstützt", http.StatusInternalServerError)
		return
	}

	planKey := AllPlans
	if raw := r.URL.Query().Get("plan_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			http.Error(w, "Ungültige Plan-ID", http.StatusBadRequest)
			return
		}
		planKey = PlanKey(&id)
	}

	// Streams outlive the server write timeout.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	ctx := r.Context()
	events := b.Subscribe(ctx, planKey)
	b.Logger.Debug("SSE", fmt.Sprintf("Display subscribed to plan %s", planKey))

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(event)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: aufguesse\ndata: %s\n\n", data)
			flusher.Flush()
		case <-ticker.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		}
	}
}
