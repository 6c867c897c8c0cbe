package service

import (
	"sync"

	"github.com/noah-isme/smart-student-hub-api/internal/dto"
)

const notificationBufferSize = 16

// notificationHub delivers notifications to listeners connected to this node.
type notificationHub struct {
	mu        sync.RWMutex
	listeners map[string]map[chan dto.NotificationResponse]struct{}
}

func newNotificationHub() *notificationHub {
	return &notificationHub{listeners: make(map[string]map[chan dto.NotificationResponse]struct{})}
}

// attach registers a buffered listener for userID. The returned detach is safe to call twice.
func (h *notificationHub) attach(userID string) (<-chan dto.NotificationResponse, func()) {
	ch := make(chan dto.NotificationResponse, notificationBufferSize)

	h.mu.Lock()
	if h.listeners[userID] == nil {
		h.listeners[userID] = make(map[chan dto.NotificationResponse]struct{})
	}
	h.listeners[userID][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	detach := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()

			delete(h.listeners[userID], ch)
			if len(h.listeners[userID]) == 0 {
				delete(h.listeners, userID)
			}
			close(ch)
		})
	}
	return ch, detach
}

// deliver hands the notification to every listener of its owner and reports how many were skipped
// because their buffer was full.
func (h *notificationHub) deliver(notification dto.NotificationResponse) (delivered, dropped int) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.listeners[notification.UserID] {
		select {
		case ch <- notification:
			delivered++
		default:
			dropped++
		}
	}
	return delivered, dropped
}

func (h *notificationHub) listenerCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.listeners[userID])
}
