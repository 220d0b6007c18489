package scenegraph

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	changes []Change
	anchors []Point // relative clicks seen by OnDragConnectionStart
	refuse  bool
}

func (r *recorder) config() Config[string] {
	return Config[string]{
		OnChange: func(c Change) { r.changes = append(r.changes, c) },
		OnDragConnectionStart: func(_ Scene, rel Point) (Point, bool) {
			r.anchors = append(r.anchors, rel)
			if r.refuse {
				return Point{}, false
			}
			return rel, true
		},
		RenderScene:       func(s Scene) string { return "body:" + s.ID },
		RenderSceneHeader: func(s Scene) string { return "header:" + s.ID },
		ShowConnections:   true,
		NewConnectionID:   func() string { return "new" },
	}
}

func (r *recorder) last(t *testing.T) Change {
	t.Helper()
	require.NotEmpty(t, r.changes)
	return r.changes[len(r.changes)-1]
}

func testData() Data {
	return Data{
		Scenes: map[string]Scene{
			"S1": {ID: "S1", X: 0, Y: 0, Width: 100, Height: 200},
			"S2": {ID: "S2", X: 200, Y: 0, Width: 100, Height: 200},
			"S3": {ID: "S3", X: -250, Y: 0, Width: 100, Height: 200},
		},
		Connections: map[string]Connection{
			"c1": {ID: "c1", From: "S1", To: "S2", StartX: 100, StartY: 50},
			"c2": {ID: "c2", From: "S3", To: "S2", StartX: -150, StartY: 50},
			"c3": {ID: "c3", From: "S2", To: "S3", StartX: 300, StartY: 10},
		},
		Viewport: Viewport{X: 0, Y: 0, Width: 600, Height: 600, Scale: 1},
	}
}

func newTestContainer(t *testing.T, r *recorder, mutate ...func(*Config[string])) *Container[string] {
	t.Helper()
	cfg := r.config()
	for _, m := range mutate {
		m(&cfg)
	}
	c, err := NewContainer(cfg)
	require.NoError(t, err)
	return c
}

func TestNewContainerRequiresHooks(t *testing.T) {
	r := &recorder{}
	tests := []struct {
		name string
		drop func(*Config[string])
	}{
		{"OnChange", func(c *Config[string]) { c.OnChange = nil }},
		{"OnDragConnectionStart", func(c *Config[string]) { c.OnDragConnectionStart = nil }},
		{"RenderScene", func(c *Config[string]) { c.RenderScene = nil }},
		{"RenderSceneHeader", func(c *Config[string]) { c.RenderSceneHeader = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := r.config()
			tt.drop(&cfg)
			_, err := NewContainer(cfg)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMissingHook))
			assert.Contains(t, err.Error(), tt.name)
		})
	}
}

func TestSceneDragEmitsLogicalPosition(t *testing.T) {
	r := &recorder{}
	var notified Point
	c := newTestContainer(t, r, func(cfg *Config[string]) {
		cfg.OnDragSceneEnd = func(_ Scene, d Point) { notified = d }
	})
	data := testData()
	data.Viewport = Zoom(data.Viewport, 2)

	c.Handle(data, DragStart(KindScene, "S1", Point{}))
	assert.Equal(t, StateSceneDragging, c.State().SceneState)
	assert.Equal(t, "S1", c.State().DraggedScene.ID)

	c.Handle(data, DragMove(KindScene, Point{10, 10}, ""))
	c.Handle(data, DragEnd(KindScene, Point{40, -20}))

	st := c.State()
	assert.Equal(t, StateIdle, st.SceneState)
	assert.Empty(t, st.DraggedScene.ID)
	assert.Equal(t, Point{40, -20}, notified)

	moved := r.last(t).Scenes["S1"]
	assert.Equal(t, 20.0, moved.X)
	assert.Equal(t, -10.0, moved.Y)
	assert.Equal(t, 100.0, moved.Width)
	assert.Len(t, r.last(t).Scenes, 3)
	assert.Equal(t, 0.0, data.Scenes["S1"].X, "caller snapshot must not be mutated")
}

func TestSceneDragUsesUpdateSceneHook(t *testing.T) {
	r := &recorder{}
	var updated Scene
	c := newTestContainer(t, r, func(cfg *Config[string]) {
		cfg.UpdateScene = func(s Scene) { updated = s }
	})
	data := testData()

	c.Handle(data, DragStart(KindScene, "S2", Point{}))
	c.Handle(data, DragEnd(KindScene, Point{5, 6}))

	assert.Equal(t, Scene{ID: "S2", X: 205, Y: 6, Width: 100, Height: 200}, updated)
	assert.Empty(t, r.changes)
}

func TestSceneDragUnknownSceneIgnored(t *testing.T) {
	r := &recorder{}
	c := newTestContainer(t, r)

	c.Handle(testData(), DragStart(KindScene, "missing", Point{}))
	c.Handle(testData(), DragEnd(KindScene, Point{1, 1}))

	assert.Equal(t, StateIdle, c.State().SceneState)
	assert.Empty(t, r.changes)
}

func TestDraggedSceneSuppressesItsConnections(t *testing.T) {
	r := &recorder{}
	c := newTestContainer(t, r)
	data := testData()

	c.Handle(data, DragStart(KindScene, "S3", Point{}))
	c.Handle(data, DragMove(KindScene, Point{7, 3}, ""))
	f := c.Render(data)

	for _, cv := range f.Connections {
		assert.NotEqual(t, "S3", cv.Connection.From)
		assert.NotEqual(t, "S3", cv.Connection.To)
	}
	require.Len(t, f.Connections, 1)
	assert.Equal(t, "c1", f.Connections[0].Connection.ID)

	for _, sv := range f.Scenes {
		assert.NotEqual(t, "S3", sv.Scene.ID)
	}
	require.NotNil(t, f.Ghost)
	assert.Equal(t, 50.0+7, f.Ghost.Scaled.X)
	assert.Equal(t, 300.0+3, f.Ghost.Scaled.Y)
}

func TestNewConnectionDroppedOnScene(t *testing.T) {
	r := &recorder{}
	c := newTestContainer(t, r)
	require.True(t, c.HandleSceneHeaderRef(20))
	data := testData()

	// S1 is drawn at (300, 300); the click lands 30 right and 60 down, so
	// 40 below the header.
	c.Handle(data, DragStart(KindConnectionHandle, "S1", Point{330, 360}))
	require.Len(t, r.anchors, 1)
	assert.Equal(t, Point{30, 40}, r.anchors[0])

	st := c.State()
	require.NotNil(t, st.ConnectionOrigin)
	assert.Equal(t, Point{330, 360}, *st.ConnectionOrigin)
	assert.Equal(t, StateConnectionDragging, st.ConnectionState)

	c.Handle(data, DragMove(KindConnectionHandle, Point{200, 0}, "S2"))
	assert.Equal(t, StateConnectionTargeted, c.State().ConnectionState)
	assert.Equal(t, Point{530, 360}, c.State().Pointer)

	f := c.Render(data)
	require.NotNil(t, f.Preview)
	assert.Equal(t, Point{330, 360}, f.Preview.From)
	assert.Equal(t, Point{530, 360}, f.Preview.To)
	assert.True(t, f.Preview.Targeted)

	c.Handle(data, Drop(KindConnectionHandle, Point{200, 0}, "S2"))
	c.Handle(data, DragEnd(KindConnectionHandle, Point{200, 0}))

	assert.Equal(t, StateIdle, c.State().ConnectionState)
	assert.Nil(t, c.State().ConnectionOrigin)
	require.Len(t, r.changes, 1)
	created := r.changes[0].Connections["new"]
	assert.Equal(t, Connection{ID: "new", From: "S1", To: "S2", StartX: 30, StartY: 60}, created)
	assert.Len(t, r.changes[0].Connections, 4)
}

func TestNewConnectionOnDragConnectionEndHook(t *testing.T) {
	r := &recorder{}
	var from, to Scene
	var start Point
	c := newTestContainer(t, r, func(cfg *Config[string]) {
		cfg.OnDragConnectionEnd = func(a, b Scene, s Point) { from, to, start = a, b, s }
	})
	data := testData()

	c.Handle(data, DragStart(KindConnectionHandle, "S2", Point{510, 310}))
	c.Handle(data, Drop(KindConnectionHandle, Point{-200, 0}, "S1"))

	assert.Equal(t, "S2", from.ID)
	assert.Equal(t, "S1", to.ID)
	assert.Equal(t, Point{210, 10}, start)
	assert.Empty(t, r.changes)
}

func TestNewConnectionRefusedByHook(t *testing.T) {
	r := &recorder{refuse: true}
	c := newTestContainer(t, r)

	origin := c.HandleDragConnectionStart(testData().Viewport, testData().Scenes["S1"], Point{310, 310})
	assert.Nil(t, origin)

	c.Handle(testData(), DragStart(KindConnectionHandle, "S1", Point{310, 310}))
	assert.Equal(t, StateIdle, c.State().ConnectionState)
	assert.Nil(t, c.State().ConnectionOrigin)
	assert.Nil(t, c.Render(testData()).Preview)
}

func TestNewConnectionTargetlessDrop(t *testing.T) {
	r := &recorder{}
	var dropped *Connection
	c := newTestContainer(t, r, func(cfg *Config[string]) {
		cfg.OnTargetlessConnectionDrop = func(conn Connection) { dropped = &conn }
	})
	data := testData()

	c.Handle(data, DragStart(KindConnectionHandle, "S1", Point{310, 310}))
	c.Handle(data, DragMove(KindConnectionHandle, Point{5, 5}, "S2"))
	c.Handle(data, Drop(KindConnectionHandle, Point{-500, -500}, ""))

	require.NotNil(t, dropped)
	assert.Empty(t, dropped.ID)
	assert.Equal(t, "S1", dropped.From)
	assert.Equal(t, StateIdle, c.State().ConnectionState)
	assert.Empty(t, r.changes)
}

func TestDragEndWithoutDropIsTargetless(t *testing.T) {
	r := &recorder{}
	c := newTestContainer(t, r)
	data := testData()

	c.Handle(data, DragStart(KindConnection, "c1", Point{500, 400}))
	c.Handle(data, DragMove(KindConnection, Point{1, 1}, "S3"))
	c.Handle(data, DragEnd(KindConnection, Point{1, 1}))

	require.Len(t, r.changes, 1)
	assert.NotContains(t, r.changes[0].Connections, "c1")
	assert.Len(t, r.changes[0].Connections, 2)
}

func TestExistingConnectionRetargeted(t *testing.T) {
	r := &recorder{}
	c := newTestContainer(t, r)
	data := testData()

	c.Handle(data, DragStart(KindConnection, "c1", Point{500, 400}))
	st := c.State()
	assert.Equal(t, "c1", st.DraggedConnection.ID)
	require.NotNil(t, st.ConnectionOrigin)
	assert.Equal(t, Point{400, 350}, *st.ConnectionOrigin)

	f := c.Render(data)
	for _, cv := range f.Connections {
		assert.NotEqual(t, "c1", cv.Connection.ID)
	}

	c.Handle(data, Drop(KindConnection, Point{-200, 0}, "S3"))

	assert.Empty(t, c.State().DraggedConnection.ID)
	retargeted := r.last(t).Connections["c1"]
	assert.Equal(t, "S3", retargeted.To)
	assert.Equal(t, "S1", retargeted.From)
}

func TestExistingConnectionRetargetHook(t *testing.T) {
	r := &recorder{}
	var gotID, gotTo string
	c := newTestContainer(t, r, func(cfg *Config[string]) {
		cfg.UpdateConnectionEnd = func(conn Connection, to string) { gotID, gotTo = conn.ID, to }
	})
	data := testData()

	c.Handle(data, DragStart(KindConnection, "c3", Point{0, 0}))
	c.Handle(data, Drop(KindConnection, Point{}, "S1"))

	assert.Equal(t, "c3", gotID)
	assert.Equal(t, "S1", gotTo)
	assert.Empty(t, r.changes)
}

func TestConnectionStartMoved(t *testing.T) {
	r := &recorder{}
	c := newTestContainer(t, r)
	data := testData()
	data.Viewport.Scale = 2

	c.Handle(data, DragStart(KindConnectionStart, "c1", Point{800, 700}))
	c.Handle(data, DragMove(KindConnectionStart, Point{20, 10}, "S2"))
	assert.Equal(t, StateConnectionDragging, c.State().ConnectionState, "start drags never target")

	f := c.Render(data)
	require.NotNil(t, f.Preview)
	assert.Equal(t, Point{820, 710}, f.Preview.From)

	c.Handle(data, Drop(KindConnectionStart, Point{20, 10}, ""))

	moved := r.last(t).Connections["c1"]
	assert.InDelta(t, 110, moved.StartX, 1e-9)
	assert.InDelta(t, 55, moved.StartY, 1e-9)
	assert.Equal(t, "S2", moved.To)
}

func TestConnectionStartCancelled(t *testing.T) {
	r := &recorder{}
	c := newTestContainer(t, r)
	data := testData()

	c.Handle(data, DragStart(KindConnectionStart, "c1", Point{400, 350}))
	c.Handle(data, DragEnd(KindConnectionStart, Point{20, 10}))

	assert.Empty(t, r.changes)
	assert.Equal(t, StateIdle, c.State().ConnectionState)
}

func TestCancelLeavesDataUntouched(t *testing.T) {
	r := &recorder{}
	var hooks []string
	c := newTestContainer(t, r, func(cfg *Config[string]) {
		cfg.OnDragSceneEnd = func(Scene, Point) { hooks = append(hooks, "scene-end") }
		cfg.OnTargetlessConnectionDrop = func(Connection) { hooks = append(hooks, "targetless") }
	})
	data := testData()

	c.Handle(data, DragStart(KindScene, "S1", Point{300, 300}))
	c.Handle(data, DragMove(KindScene, Point{30, 40}, ""))
	c.Handle(data, Cancel(KindScene))
	assert.Equal(t, StateIdle, c.State().SceneState)
	assert.Empty(t, c.State().DraggedScene.ID)

	for _, kind := range []DragKind{KindConnection, KindConnectionStart} {
		c.Handle(data, DragStart(kind, "c1", Point{500, 400}))
		c.Handle(data, DragMove(kind, Point{-20, 0}, "S3"))
		c.Handle(data, Cancel(kind))
		assert.Equal(t, StateIdle, c.State().ConnectionState, kind.String())
		assert.Empty(t, c.State().DraggedConnection.ID, kind.String())
	}

	c.Handle(data, DragStart(KindConnectionHandle, "S1", Point{310, 320}))
	c.Handle(data, Cancel(KindConnectionHandle))
	assert.Nil(t, c.State().ConnectionOrigin)

	// A drag end after a cancel finds the channels idle.
	c.Handle(data, DragEnd(KindScene, Point{30, 40}))
	c.Handle(data, DragEnd(KindConnection, Point{-20, 0}))

	assert.Empty(t, r.changes)
	assert.Empty(t, hooks)
}

func TestPanCancelKeepsEmittedSteps(t *testing.T) {
	r := &recorder{}
	c := newTestContainer(t, r)
	data := testData()

	c.Handle(data, DragStart(KindPan, "", Point{10, 10}))
	c.Handle(data, DragMove(KindPan, Point{10, 0}, ""))
	c.Handle(data, Cancel(KindPan))
	c.Handle(data, DragEnd(KindPan, Point{30, 0}))

	require.Len(t, r.changes, 1)
	assert.Equal(t, StateIdle, c.State().PanState)
}

func TestChannelsAreIndependent(t *testing.T) {
	r := &recorder{}
	c := newTestContainer(t, r)
	data := testData()

	c.Handle(data, DragStart(KindScene, "S1", Point{}))
	c.Handle(data, DragStart(KindConnection, "c3", Point{}))
	c.Handle(data, DragStart(KindScene, "S2", Point{}))

	st := c.State()
	assert.Equal(t, "S1", st.DraggedScene.ID, "second scene drag is ignored")
	assert.Equal(t, "c3", st.DraggedConnection.ID)
	assert.Equal(t, StateSceneDragging, st.SceneState)
	assert.Equal(t, StateConnectionDragging, st.ConnectionState)
}

func TestPanChannelEmitsIncrementalSteps(t *testing.T) {
	r := &recorder{}
	c := newTestContainer(t, r)
	data := testData()
	data.Viewport.Scale = 2

	c.Handle(data, DragStart(KindPan, "", Point{10, 10}))
	assert.Equal(t, StatePanning, c.State().PanState)

	c.Handle(data, DragMove(KindPan, Point{4, 2}, ""))
	data = r.last(t).Apply(data)
	c.Handle(data, DragMove(KindPan, Point{4, 2}, ""))
	c.Handle(data, DragEnd(KindPan, Point{10, 2}))
	data = r.last(t).Apply(data)

	require.Len(t, r.changes, 2)
	assert.Equal(t, 5.0, data.Viewport.X)
	assert.Equal(t, 1.0, data.Viewport.Y)
	assert.Equal(t, StateIdle, c.State().PanState)
}

func TestSceneHeaderRefOnlyOnChange(t *testing.T) {
	c := newTestContainer(t, &recorder{})
	assert.True(t, c.HandleSceneHeaderRef(1))
	assert.False(t, c.HandleSceneHeaderRef(1))
	assert.True(t, c.HandleSceneHeaderRef(2))
	assert.Equal(t, 2.0, c.State().SceneHeaderHeight)
}

func TestRenderSkipsDanglingConnections(t *testing.T) {
	r := &recorder{}
	c := newTestContainer(t, r)
	data := testData()
	data.Connections["dangling"] = Connection{ID: "dangling", From: "S1", To: "gone"}

	f := c.Render(data)

	ids := make([]string, 0, len(f.Connections))
	for _, cv := range f.Connections {
		ids = append(ids, cv.Connection.ID)
	}
	assert.Equal(t, []string{"c1", "c2", "c3"}, ids)
}

func TestRenderLaysOutEndingPoints(t *testing.T) {
	r := &recorder{}
	c := newTestContainer(t, r)
	data := testData()

	f := c.Render(data)

	assert.Equal(t, 600.0, f.Width)
	assert.Equal(t, 600.0, f.Height)
	require.Len(t, f.Scenes, 3)
	assert.Equal(t, "header:S1", f.Scenes[0].Header)
	assert.Equal(t, "body:S1", f.Scenes[0].Body)

	byID := make(map[string]ConnectionView)
	for _, cv := range f.Connections {
		byID[cv.Connection.ID] = cv
	}
	// c1 and c2 both end at S2, drawn at (500, 300) with height 200.
	assert.Equal(t, 1.0/3, byID["c1"].EndingVertOffset)
	assert.Equal(t, 2.0/3, byID["c2"].EndingVertOffset)
	assert.InDelta(t, 300+200.0/3, byID["c1"].End.Y, 1e-9)
	assert.Equal(t, 500.0, byID["c1"].End.X)
	assert.Equal(t, Point{400, 350}, byID["c1"].Start)
	assert.Equal(t, 0.5, byID["c3"].EndingVertOffset)
}

func TestRenderHidesConnectionsWhenDisabled(t *testing.T) {
	r := &recorder{}
	c := newTestContainer(t, r)
	c.SetShowConnections(false)

	assert.Empty(t, c.Render(testData()).Connections)
	assert.False(t, c.ShowConnections())
}

func TestSceneAt(t *testing.T) {
	c := newTestContainer(t, &recorder{})
	data := testData()

	s, ok := c.SceneAt(data, Point{350, 450})
	require.True(t, ok)
	assert.Equal(t, "S1", s.ID)

	_, ok = c.SceneAt(data, Point{5, 5})
	assert.False(t, ok)
}

func TestZoomByEmitsViewport(t *testing.T) {
	r := &recorder{}
	c := newTestContainer(t, r)

	c.ZoomBy(testData(), 2)

	v := r.last(t).Viewport
	require.NotNil(t, v)
	assert.Equal(t, Viewport{Width: 300, Height: 300, Scale: 2}, *v)

	c.ZoomTo(testData(), 0.5)
	assert.Equal(t, 1200.0, r.last(t).Viewport.Width)
}
