package scenegraph

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"

	"github.com/google/uuid"
)

// ErrMissingHook is returned by NewContainer when a required hook is nil.
var ErrMissingHook = errors.New("missing required hook")

// Config wires a Container to its caller. OnChange,
// OnDragConnectionStart, RenderScene and RenderSceneHeader are required;
// every other hook falls back to an equivalent OnChange.
type Config[V any] struct {
	// OnChange receives partial state the caller should merge.
	OnChange func(Change)

	// OnDragConnectionStart maps a click relative to the scene body to the
	// anchor a new connection starts from. ok == false means there is no
	// anchor at that spot and no connection starts.
	OnDragConnectionStart func(scene Scene, relativeClick Point) (anchor Point, ok bool)

	// OnDragConnectionEnd is called when a new connection is dropped on a
	// scene. start is the logical start anchor.
	OnDragConnectionEnd func(from, to Scene, start Point)

	// OnDragSceneEnd is notified of every finished scene drag, with the
	// screen-space displacement, before UpdateScene.
	OnDragSceneEnd func(scene Scene, screenDelta Point)

	// OnTargetlessConnectionDrop is called when a connection is dropped
	// outside every scene. For a new connection the ID is empty.
	OnTargetlessConnectionDrop func(c Connection)

	UpdateScene           func(scene Scene)
	UpdateConnectionStart func(c Connection, start Point)
	UpdateConnectionEnd   func(c Connection, toSceneID string)

	RenderScene       func(scene Scene) V
	RenderSceneHeader func(scene Scene) V

	ShowConnections bool

	// NewConnectionID mints ids for connections created by the default
	// OnDragConnectionEnd. Defaults to time-ordered UUIDs.
	NewConnectionID func() string

	Logger *slog.Logger
}

func (c Config[V]) validate() error {
	switch {
	case c.OnChange == nil:
		return fmt.Errorf("%w: OnChange", ErrMissingHook)
	case c.OnDragConnectionStart == nil:
		return fmt.Errorf("%w: OnDragConnectionStart", ErrMissingHook)
	case c.RenderScene == nil:
		return fmt.Errorf("%w: RenderScene", ErrMissingHook)
	case c.RenderSceneHeader == nil:
		return fmt.Errorf("%w: RenderSceneHeader", ErrMissingHook)
	}
	return nil
}

// Transient is a copy of the container's interaction state.
type Transient struct {
	SceneState      DragState
	ConnectionState DragState
	PanState        DragState

	DraggedScene      Scene      // Zero value when no scene is dragged
	DraggedConnection Connection // Zero value when no connection is dragged
	ConnectionOrigin  *Point     // Screen-space start of the in-progress connection
	Pointer           Point      // Live pointer of the connection drag
	Target            string     // Scene under the connection drag, if any

	SceneHeaderHeight float64
}

// Container is the interaction state machine. It keeps only transient drag
// state; persistent data is passed in on every call and never retained.
// A Container is not safe for concurrent use.
type Container[V any] struct {
	cfg Config[V]
	log *slog.Logger

	sceneState DragState
	scene      Scene
	sceneDelta Point

	connState    DragState
	connKind     DragKind
	connection   Connection
	source       Scene
	origin       *Point
	pointerStart Point
	pointer      Point
	target       string

	panState DragState
	panDelta Point

	headerHeight float64
}

// NewContainer validates cfg and returns an idle container.
func NewContainer[V any](cfg Config[V]) (*Container[V], error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.NewConnectionID == nil {
		cfg.NewConnectionID = newConnectionID
	}
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Container[V]{cfg: cfg, log: log}, nil
}

func newConnectionID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// SetShowConnections toggles connection rendering.
func (c *Container[V]) SetShowConnections(show bool) {
	c.cfg.ShowConnections = show
}

// ShowConnections reports whether connections are rendered.
func (c *Container[V]) ShowConnections() bool {
	return c.cfg.ShowConnections
}

// State returns a copy of the transient state.
func (c *Container[V]) State() Transient {
	t := Transient{
		SceneState:        c.sceneState,
		ConnectionState:   c.connState,
		PanState:          c.panState,
		DraggedScene:      c.scene,
		DraggedConnection: c.connection,
		Pointer:           c.pointer,
		Target:            c.target,
		SceneHeaderHeight: c.headerHeight,
	}
	if c.origin != nil {
		o := *c.origin
		t.ConnectionOrigin = &o
	}
	return t
}

// HandleSceneHeaderRef records the measured header height. It reports
// whether the value changed.
func (c *Container[V]) HandleSceneHeaderRef(height float64) bool {
	if height == c.headerHeight {
		return false
	}
	c.headerHeight = height
	return true
}

// HandleDragConnectionStart resolves where a new connection dragged out of
// scene starts. click is the absolute screen position of the press. It
// returns nil when the caller's hook reports no anchor.
func (c *Container[V]) HandleDragConnectionStart(v Viewport, scene Scene, click Point) *Point {
	corner := TransformScene(scene, v).Position()
	corner.Y += c.headerHeight

	anchor, ok := c.cfg.OnDragConnectionStart(scene, click.Sub(corner))
	if !ok {
		c.origin = nil
		return nil
	}
	abs := anchor.Add(corner)
	c.origin = &abs
	return &abs
}

// HandleConnectionDragChange marks conn as dragged, or clears the mark.
func (c *Container[V]) HandleConnectionDragChange(conn Connection, starting bool) {
	if starting {
		c.connection = conn
		return
	}
	c.connection = Connection{}
}

// HandleSceneDragChange marks the scene with sceneID as dragged, or clears
// the mark. An unknown id clears it.
func (c *Container[V]) HandleSceneDragChange(data Data, sceneID string, starting bool) {
	if !starting {
		c.scene = Scene{}
		return
	}
	c.scene = data.Scenes[sceneID]
}

// SceneAt returns the scene whose screen rectangle contains p. Later ids
// are drawn on top and win.
func (c *Container[V]) SceneAt(data Data, p Point) (Scene, bool) {
	var (
		hit   Scene
		found bool
	)
	for _, id := range slices.Sorted(maps.Keys(data.Scenes)) {
		s := data.Scenes[id]
		if TransformScene(s, data.Viewport).Contains(p) {
			hit, found = s, true
		}
	}
	return hit, found
}

// PanBy emits the viewport moved by a screen-space displacement.
func (c *Container[V]) PanBy(data Data, screenDelta Point) {
	v := Pan(data.Viewport, screenDelta)
	c.cfg.OnChange(Change{Viewport: &v})
}

// ZoomBy emits the viewport zoomed by factor.
func (c *Container[V]) ZoomBy(data Data, factor float64) {
	v := Zoom(data.Viewport, factor)
	c.cfg.OnChange(Change{Viewport: &v})
}

// ZoomTo emits the viewport at scale.
func (c *Container[V]) ZoomTo(data Data, scale float64) {
	v := ZoomTo(data.Viewport, scale)
	c.cfg.OnChange(Change{Viewport: &v})
}

// Handle feeds one drag event through the state machine. Events for a
// channel that is not in a matching state are ignored. A cancelled pan
// keeps the steps already emitted.
func (c *Container[V]) Handle(data Data, e Event) {
	switch e.Kind.channel() {
	case sceneChannel:
		c.handleScene(data, e)
	case connectionChannel:
		c.handleConnection(data, e)
	case panChannel:
		c.handlePan(data, e)
	}
}

func (c *Container[V]) handleScene(data Data, e Event) {
	switch e.Type {
	case EventDragStart:
		if c.sceneState != StateIdle {
			return
		}
		if _, ok := data.Scenes[e.ID]; !ok {
			c.log.Debug("drag start on unknown scene", "scene", e.ID)
			return
		}
		c.HandleSceneDragChange(data, e.ID, true)
		c.sceneState = StateSceneDragging
		c.sceneDelta = Point{}
		c.log.Debug("scene drag started", "scene", e.ID)
	case EventDragMove:
		if c.sceneState == StateSceneDragging {
			c.sceneDelta = e.Delta
		}
	case EventCancel:
		if c.sceneState == StateSceneDragging {
			c.log.Debug("scene drag cancelled", "scene", c.scene.ID)
			c.resetScene()
		}
	case EventDragEnd:
		if c.sceneState != StateSceneDragging {
			return
		}
		scene := c.scene
		if current, ok := data.Scenes[scene.ID]; ok {
			scene = current
		}
		c.resetScene()

		if c.cfg.OnDragSceneEnd != nil {
			c.cfg.OnDragSceneEnd(scene, e.Delta)
		}
		d := InverseTransformDelta(e.Delta, data.Viewport)
		moved := scene
		moved.X += d.X
		moved.Y += d.Y
		c.log.Debug("scene drag ended", "scene", scene.ID, "dx", d.X, "dy", d.Y)
		c.updateScene(data, moved)
	}
}

func (c *Container[V]) resetScene() {
	c.HandleSceneDragChange(Data{}, "", false)
	c.sceneState = StateIdle
	c.sceneDelta = Point{}
}

func (c *Container[V]) handleConnection(data Data, e Event) {
	switch e.Type {
	case EventDragStart:
		if c.connState != StateIdle {
			return
		}
		c.startConnection(data, e)
	case EventDragMove:
		if c.connState == StateIdle {
			return
		}
		c.pointer = c.pointerStart.Add(e.Delta)
		c.retarget(data, e.Target)
	case EventDrop:
		if c.connState == StateIdle {
			return
		}
		c.pointer = c.pointerStart.Add(e.Delta)
		c.retarget(data, e.Target)
		c.resolveConnection(data, true)
	case EventDragEnd:
		if c.connState == StateIdle {
			return
		}
		// No drop was reported: the drag ended outside every target.
		c.pointer = c.pointerStart.Add(e.Delta)
		c.target = ""
		c.resolveConnection(data, false)
	case EventCancel:
		if c.connState == StateIdle {
			return
		}
		c.log.Debug("connection drag cancelled", "kind", c.connKind, "connection", c.connection.ID)
		c.resetConnection()
	}
}

func (c *Container[V]) startConnection(data Data, e Event) {
	switch e.Kind {
	case KindConnectionHandle:
		scene, ok := data.Scenes[e.ID]
		if !ok {
			c.log.Debug("connection drag from unknown scene", "scene", e.ID)
			return
		}
		origin := c.HandleDragConnectionStart(data.Viewport, scene, e.Position)
		if origin == nil {
			c.log.Debug("no connection anchor", "scene", e.ID)
			return
		}
		c.source = scene
		c.pointerStart = *origin
	case KindConnection, KindConnectionStart:
		conn, ok := data.Connections[e.ID]
		if !ok {
			c.log.Debug("drag start on unknown connection", "connection", e.ID)
			return
		}
		c.HandleConnectionDragChange(conn, true)
		start := TransformPoint(conn.Start(), data.Viewport)
		c.origin = &start
		c.pointerStart = e.Position
	default:
		return
	}
	c.connKind = e.Kind
	c.pointer = c.pointerStart
	c.target = ""
	c.connState = StateConnectionDragging
	c.log.Debug("connection drag started", "kind", e.Kind, "id", e.ID)
}

func (c *Container[V]) retarget(data Data, target string) {
	if c.connKind == KindConnectionStart {
		return
	}
	if _, ok := data.Scenes[target]; ok {
		c.target = target
		c.connState = StateConnectionTargeted
		return
	}
	c.target = ""
	c.connState = StateConnectionDragging
}

// resolveConnection ends the connection channel. dropped is false when the
// drag ended without any drop report.
func (c *Container[V]) resolveConnection(data Data, dropped bool) {
	kind, conn, source, target := c.connKind, c.connection, c.source, c.target
	var start Point
	if c.origin != nil {
		start = InverseTransformPoint(*c.origin, data.Viewport)
	}
	pointer := c.pointer
	c.resetConnection()

	switch kind {
	case KindConnectionHandle:
		if to, ok := data.Scenes[target]; ok {
			c.log.Debug("connection created", "from", source.ID, "to", to.ID)
			c.connectionEnd(data, source, to, start)
			return
		}
		c.log.Debug("targetless connection drop", "from", source.ID)
		c.targetlessDrop(data, Connection{From: source.ID, StartX: start.X, StartY: start.Y})
	case KindConnection:
		if _, ok := data.Scenes[target]; ok {
			c.log.Debug("connection retargeted", "connection", conn.ID, "to", target)
			c.updateConnectionEnd(data, conn, target)
			return
		}
		c.log.Debug("targetless connection drop", "connection", conn.ID)
		c.targetlessDrop(data, conn)
	case KindConnectionStart:
		if !dropped {
			c.log.Debug("connection start drag cancelled", "connection", conn.ID)
			return
		}
		c.updateConnectionStart(data, conn, InverseTransformPoint(pointer, data.Viewport))
	}
}

func (c *Container[V]) resetConnection() {
	c.HandleConnectionDragChange(Connection{}, false)
	c.connState = StateIdle
	c.source = Scene{}
	c.origin = nil
	c.pointerStart = Point{}
	c.pointer = Point{}
	c.target = ""
}

func (c *Container[V]) handlePan(data Data, e Event) {
	switch e.Type {
	case EventDragStart:
		if c.panState != StateIdle {
			return
		}
		c.panState = StatePanning
		c.panDelta = Point{}
	case EventCancel:
		c.panState = StateIdle
		c.panDelta = Point{}
	case EventDragMove, EventDragEnd:
		if c.panState != StatePanning {
			return
		}
		step := e.Delta.Sub(c.panDelta)
		c.panDelta = e.Delta
		if e.Type == EventDragEnd {
			c.panState = StateIdle
			c.panDelta = Point{}
		}
		if step != (Point{}) {
			c.PanBy(data, step)
		}
	}
}

func (c *Container[V]) updateScene(data Data, scene Scene) {
	if c.cfg.UpdateScene != nil {
		c.cfg.UpdateScene(scene)
		return
	}
	scenes := cloneMap(data.Scenes)
	scenes[scene.ID] = scene
	c.cfg.OnChange(Change{Scenes: scenes})
}

func (c *Container[V]) connectionEnd(data Data, from, to Scene, start Point) {
	if c.cfg.OnDragConnectionEnd != nil {
		c.cfg.OnDragConnectionEnd(from, to, start)
		return
	}
	conn := Connection{
		ID:     c.cfg.NewConnectionID(),
		From:   from.ID,
		To:     to.ID,
		StartX: start.X,
		StartY: start.Y,
	}
	conns := cloneMap(data.Connections)
	conns[conn.ID] = conn
	c.cfg.OnChange(Change{Connections: conns})
}

func (c *Container[V]) updateConnectionEnd(data Data, conn Connection, to string) {
	if c.cfg.UpdateConnectionEnd != nil {
		c.cfg.UpdateConnectionEnd(conn, to)
		return
	}
	conn.To = to
	conns := cloneMap(data.Connections)
	conns[conn.ID] = conn
	c.cfg.OnChange(Change{Connections: conns})
}

func (c *Container[V]) updateConnectionStart(data Data, conn Connection, start Point) {
	if c.cfg.UpdateConnectionStart != nil {
		c.cfg.UpdateConnectionStart(conn, start)
		return
	}
	conn.StartX, conn.StartY = start.X, start.Y
	conns := cloneMap(data.Connections)
	conns[conn.ID] = conn
	c.cfg.OnChange(Change{Connections: conns})
}

func (c *Container[V]) targetlessDrop(data Data, conn Connection) {
	if c.cfg.OnTargetlessConnectionDrop != nil {
		c.cfg.OnTargetlessConnectionDrop(conn)
		return
	}
	if _, ok := data.Connections[conn.ID]; !ok || conn.ID == "" {
		return
	}
	conns := cloneMap(data.Connections)
	delete(conns, conn.ID)
	c.cfg.OnChange(Change{Connections: conns})
}
