package scenegraph

// EventType identifies what the drag primitive reported.
type EventType int

const (
	EventDragStart EventType = iota
	EventDragMove
	EventDragEnd
	EventDrop
	EventCancel
)

// String returns the event type name for logs.
func (t EventType) String() string {
	switch t {
	case EventDragStart:
		return "drag-start"
	case EventDragMove:
		return "drag-move"
	case EventDragEnd:
		return "drag-end"
	case EventDrop:
		return "drop"
	case EventCancel:
		return "cancel"
	default:
		return "unknown"
	}
}

// DragKind names what is being dragged. It also selects the interaction
// channel the event belongs to.
type DragKind int

const (
	KindScene            DragKind = iota // A scene, by its header
	KindConnectionHandle                 // A new connection, from a scene's body
	KindConnection                       // The end of an existing connection
	KindConnectionStart                  // The start anchor of an existing connection
	KindPan                              // The viewport background
)

// String returns the kind name for logs.
func (k DragKind) String() string {
	switch k {
	case KindScene:
		return "scene"
	case KindConnectionHandle:
		return "connection-handle"
	case KindConnection:
		return "connection"
	case KindConnectionStart:
		return "connection-start"
	case KindPan:
		return "pan"
	default:
		return "unknown"
	}
}

type channel int

const (
	sceneChannel channel = iota
	connectionChannel
	panChannel
)

func (k DragKind) channel() channel {
	switch k {
	case KindScene:
		return sceneChannel
	case KindPan:
		return panChannel
	default:
		return connectionChannel
	}
}

// Event is a single report from the drag primitive. All positions and
// deltas are in screen space.
type Event struct {
	Type EventType
	Kind DragKind

	// ID is the dragged scene (KindScene, KindConnectionHandle) or
	// connection (KindConnection, KindConnectionStart). DragStart only.
	ID string

	// Position is the absolute pointer position at drag start.
	Position Point

	// Delta is the displacement from the drag start position.
	Delta Point

	// Target is the scene under the pointer, empty for none.
	Target string
}

// DragStart builds the event that begins a drag of kind on id.
func DragStart(kind DragKind, id string, position Point) Event {
	return Event{Type: EventDragStart, Kind: kind, ID: id, Position: position}
}

// DragMove builds a pointer move event.
func DragMove(kind DragKind, delta Point, target string) Event {
	return Event{Type: EventDragMove, Kind: kind, Delta: delta, Target: target}
}

// DragEnd builds the event that ends a drag.
func DragEnd(kind DragKind, delta Point) Event {
	return Event{Type: EventDragEnd, Kind: kind, Delta: delta}
}

// Drop builds a drop event. An empty target is a drop outside any scene.
func Drop(kind DragKind, delta Point, target string) Event {
	return Event{Type: EventDrop, Kind: kind, Delta: delta, Target: target}
}

// Cancel builds the event that abandons a drag. No hook fires and the
// caller's data is left untouched.
func Cancel(kind DragKind) Event {
	return Event{Type: EventCancel, Kind: kind}
}

// DragState is the state of one interaction channel.
type DragState int

const (
	StateIdle DragState = iota
	StateSceneDragging
	StateConnectionDragging
	StateConnectionTargeted
	StatePanning
)

// String returns the state name for logs.
func (s DragState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSceneDragging:
		return "scene-dragging"
	case StateConnectionDragging:
		return "connection-dragging"
	case StateConnectionTargeted:
		return "connection-targeted"
	case StatePanning:
		return "panning"
	default:
		return "unknown"
	}
}
