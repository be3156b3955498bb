package websocket

// Hub maintains the set of active clients indexed by user id and routes
// outbound messages to them.
type Hub struct {
	clients    map[uint]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	send       chan targetedMessage
}

type targetedMessage struct {
	userID  uint
	payload []byte
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uint]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		send:       make(chan targetedMessage, 64),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			if h.clients[client.userID] == nil {
				h.clients[client.userID] = make(map[*Client]bool)
			}
			h.clients[client.userID][client] = true
		case client := <-h.unregister:
			if conns, ok := h.clients[client.userID]; ok {
				if _, ok := conns[client]; ok {
					delete(conns, client)
					close(client.send)
					if len(conns) == 0 {
						delete(h.clients, client.userID)
					}
				}
			}
		case msg := <-h.send:
			for client := range h.clients[msg.userID] {
				select {
				case client.send <- msg.payload:
				default:
					// Slow consumer, drop the connection
					delete(h.clients[msg.userID], client)
					close(client.send)
				}
			}
		}
	}
}

// SendToUser queues a message for every open connection of the given user.
// Users without a connection simply miss the push; they catch up on their
// next read.
func (h *Hub) SendToUser(userID uint, payload []byte) {
	h.send <- targetedMessage{userID: userID, payload: payload}
}
