package trips

import (
	"github.com/Ahmed2300/triptracker/internal/domain/ride"
	"github.com/Ahmed2300/triptracker/internal/service/geo"
	"github.com/Ahmed2300/triptracker/pkg/websocket"
)

// Notifier pushes lifecycle events to the realtime listeners. The customer
// view subscribes to its ride's topic; the driver view listens on the
// pending feed and its region topics.
type Notifier interface {
	// RideAnnounced publishes a new or re-pending ride to the driver feed
	RideAnnounced(r *ride.Request)
	// RideWithdrawn tells the driver feed a pending ride is gone
	RideWithdrawn(r *ride.Request)
	// RideUpdated publishes a mutation to the ride's own subscribers
	RideUpdated(event string, r *ride.Request)
}

// HubNotifier publishes events through the WebSocket hub
type HubNotifier struct {
	hub *websocket.Hub
}

// NewHubNotifier wraps a hub as a Notifier
func NewHubNotifier(hub *websocket.Hub) *HubNotifier {
	return &HubNotifier{hub: hub}
}

// RideAnnounced notifies all drivers plus the pickup region topic
func (n *HubNotifier) RideAnnounced(r *ride.Request) {
	msg := websocket.Message{Type: "ride_pending", Data: r}
	n.hub.BroadcastToType("driver", msg)
	if r.PickupGeohash != "" {
		for _, region := range geo.RegionNeighborhood(r.PickupGeohash) {
			n.hub.BroadcastToTopic("region:"+region, msg)
		}
	}
}

// RideWithdrawn notifies drivers the ride left the pending pool
func (n *HubNotifier) RideWithdrawn(r *ride.Request) {
	n.hub.BroadcastToType("driver", websocket.Message{
		Type: "ride_claimed",
		Data: map[string]interface{}{"ride_id": r.ID.String()},
	})
}

// RideUpdated notifies the ride's subscribers and the dashboard
func (n *HubNotifier) RideUpdated(event string, r *ride.Request) {
	msg := websocket.Message{Type: event, Data: r}
	n.hub.BroadcastToTopic("ride:"+r.ID.String(), msg)
	n.hub.BroadcastToType("dashboard", msg)
}

// NopNotifier discards all events; used when no hub is wired
type NopNotifier struct{}

func (NopNotifier) RideAnnounced(*ride.Request)       {}
func (NopNotifier) RideWithdrawn(*ride.Request)       {}
func (NopNotifier) RideUpdated(string, *ride.Request) {}
