package dev

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/weft/pkg/weft"
)

// MessageType is the type of a message sent to browsers.
type MessageType string

const (
	MessageReload MessageType = "reload"
	MessageError  MessageType = "error"
	MessageClear  MessageType = "clear"
	MessageEvent  MessageType = "event"
)

// Message is sent to browsers via WebSocket.
type Message struct {
	Type  MessageType `json:"type"`
	Page  string      `json:"page,omitempty"`
	Error string      `json:"error,omitempty"`
	Event *Event      `json:"event,omitempty"`
}

// Event is the wire form of a weft.RuntimeEvent.
type Event struct {
	Kind      string  `json:"kind"`
	Frame     uint64  `json:"frame"`
	Lanes     string  `json:"lanes"`
	Coroutine string  `json:"coroutine,omitempty"`
	Phase     string  `json:"phase,omitempty"`
	Effects   int     `json:"effects,omitempty"`
	Millis    float64 `json:"ms,omitempty"`
	Error     string  `json:"error,omitempty"`
	Handled   bool    `json:"handled,omitempty"`
}

// NewEvent converts a runtime event to its wire form.
func NewEvent(e weft.RuntimeEvent) *Event {
	ev := &Event{
		Kind:      e.Kind.String(),
		Frame:     e.FrameID,
		Lanes:     e.Lanes.String(),
		Coroutine: e.Coroutine,
		Effects:   e.Effects,
		Millis:    float64(e.Duration) / float64(time.Millisecond),
		Handled:   e.Handled,
	}
	if e.Kind == weft.EventCommitStart || e.Kind == weft.EventCommitEnd {
		ev.Phase = e.Phase.String()
	}
	if e.Err != nil {
		ev.Error = e.Err.Error()
	}
	return ev
}

// Hub manages browser WebSocket connections. It broadcasts reloads and,
// as a weft.Observer, the runtime events of pages the dev server renders.
// Only the pump goroutine writes to connections.
type Hub struct {
	clients  map[*websocket.Conn]bool
	mu       sync.RWMutex
	upgrader websocket.Upgrader

	control chan Message
	events  chan Message
	done    chan struct{}
	once    sync.Once
}

var _ weft.Observer = (*Hub)(nil)

// eventBuffer bounds the events waiting to be written. Events beyond it are
// dropped rather than stalling the renderer.
const eventBuffer = 256

// NewHub creates a hub and starts its event pump.
func NewHub() *Hub {
	h := &Hub{
		clients: make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins in dev
			},
		},
		control: make(chan Message, 16),
		events:  make(chan Message, eventBuffer),
		done:    make(chan struct{}),
	}
	go h.pump()
	return h
}

// HandleWebSocket handles WebSocket upgrade and connection.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, req *http.Request) {
	conn, err := h.upgrader.Upgrade(w, req, nil)
	if err != nil {
		return
	}

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	// Keep the connection until the client goes away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	conn.Close()
}

// OnRuntimeEvent implements weft.Observer. It never blocks.
func (h *Hub) OnRuntimeEvent(e weft.RuntimeEvent) {
	select {
	case h.events <- Message{Type: MessageEvent, Event: NewEvent(e)}:
	default:
	}
}

// NotifyReload tells browsers showing page to reload. An empty page reloads
// every browser.
func (h *Hub) NotifyReload(page string) {
	h.send(Message{Type: MessageReload, Page: page})
}

// NotifyError shows an error overlay on all clients.
func (h *Hub) NotifyError(errMsg string) {
	h.send(Message{Type: MessageError, Error: errMsg})
}

// ClearError clears the error overlay on all clients.
func (h *Hub) ClearError() {
	h.send(Message{Type: MessageClear})
}

// send queues a control message for the pump. Unlike events, control
// messages are never dropped; send blocks until the pump takes the message
// or the hub is closed.
func (h *Hub) send(msg Message) {
	select {
	case h.control <- msg:
	case <-h.done:
	}
}

func (h *Hub) pump() {
	for {
		// Control messages go first so a burst of events cannot delay a reload.
		select {
		case <-h.done:
			return
		case msg := <-h.control:
			h.broadcast(msg)
			continue
		default:
		}
		select {
		case <-h.done:
			return
		case msg := <-h.control:
			h.broadcast(msg)
		case msg := <-h.events:
			h.broadcast(msg)
		}
	}
}

// broadcast sends a message to all connected clients.
func (h *Hub) broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	h.mu.RLock()
	clients := make([]*websocket.Conn, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		if err := client.WriteMessage(websocket.TextMessage, data); err != nil {
			h.mu.Lock()
			delete(h.clients, client)
			h.mu.Unlock()
			client.Close()
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close stops the event pump and closes all client connections.
func (h *Hub) Close() {
	h.once.Do(func() { close(h.done) })

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		client.Close()
		delete(h.clients, client)
	}
}

// DevClientScript is injected into rendered pages. It reloads on change,
// shows render errors and logs runtime events to the console.
const DevClientScript = `
<script>
(function() {
    'use strict';

    var delay = 1000;
    var page = document.documentElement.getAttribute('data-weft-page') || '';

    function connect() {
        var protocol = location.protocol === 'https:' ? 'wss:' : 'ws:';
        var ws = new WebSocket(protocol + '//' + location.host + '/_weft/ws');

        ws.onopen = function() {
            delay = 1000;
            clearOverlay();
        };

        ws.onmessage = function(e) {
            var msg;
            try {
                msg = JSON.parse(e.data);
            } catch (err) {
                return;
            }
            switch (msg.type) {
                case 'reload':
                    if (!msg.page || msg.page === page) {
                        location.reload();
                    }
                    break;
                case 'error':
                    showOverlay(msg.error);
                    break;
                case 'clear':
                    clearOverlay();
                    break;
                case 'event':
                    console.debug('[weft]', msg.event.kind, msg.event);
                    break;
            }
        };

        ws.onclose = function() {
            setTimeout(function() {
                delay = Math.min(delay * 2, 30000);
                connect();
            }, delay);
        };
    }

    function showOverlay(text) {
        clearOverlay();
        var overlay = document.createElement('pre');
        overlay.id = 'weft-error-overlay';
        overlay.style.cssText = 'position:fixed;inset:0;margin:0;padding:24px;background:rgba(0,0,0,0.9);color:#f55;font:14px monospace;white-space:pre-wrap;z-index:999999;';
        overlay.textContent = text;
        document.body.appendChild(overlay);
    }

    function clearOverlay() {
        var overlay = document.getElementById('weft-error-overlay');
        if (overlay) {
            overlay.remove();
        }
    }

    connect();
})();
</script>
`
