package websocket

import (
	"encoding/json"
	"log"

	"github.com/sistemas-fafin-lab/labpoints-be/services"
)

// HubNotifier adapts the hub to the services.Notifier contract: events are
// serialized and pushed to the connections of the interested user.
type HubNotifier struct {
	hub *Hub
}

func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub}
}

func (n *HubNotifier) Emit(event services.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("[WS] Error marshaling event %s: %v", event.Type, err)
		return
	}
	n.hub.SendToUser(event.UserID, payload)
}
