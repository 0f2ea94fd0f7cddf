package service

import "buildflow/internal/websocket"

// Notifier pushes workflow events to connected clients. The websocket hub
// implements it; a nil Notifier disables event publishing.
type Notifier interface {
	Publish(evt websocket.Event)
}

func publish(n Notifier, evt websocket.Event) {
	if n != nil {
		n.Publish(evt)
	}
}

// transitionEvent builds the standard event payload for a state change.
func transitionEvent(entity, entityID, projectID, status string) websocket.Event {
	return websocket.Event{
		Type:      websocket.EventTransition,
		Entity:    entity,
		EntityID:  entityID,
		ProjectID: projectID,
		Status:    status,
	}
}
