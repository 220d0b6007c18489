package scenegraph

import (
	"slices"
	"sort"
	"strings"
)

// EndingVertOffset returns where c meets toScene along its incoming edge,
// as a fraction of the scene's height. The n connections ending at the
// scene are ranked by id and spread at 1/(n+1) .. n/(n+1).
//
// It returns 0 when c is not one of the connections ending at toScene.
func EndingVertOffset(c Connection, toScene Scene, all map[string]Connection) float64 {
	ids := make([]string, 0, len(all))
	for _, conn := range all {
		if conn.To == toScene.ID {
			ids = append(ids, conn.ID)
		}
	}
	sort.Strings(ids)

	rank := slices.Index(ids, c.ID) + 1
	return float64(rank) / float64(len(ids)+1)
}

// EndingPoint returns the end of a connection on the incoming (left) edge of
// the already transformed target scene.
func EndingPoint(toScaled Scene, offset float64) Point {
	return Point{X: toScaled.X, Y: toScaled.Y + offset*toScaled.Height}
}

// VisibleConnections applies the render filter: connections touching the
// dragged scene, and the dragged connection itself, are left out. The
// result is ordered by id. Empty ids match nothing.
func VisibleConnections(all map[string]Connection, draggedSceneID, draggedConnectionID string) []Connection {
	out := make([]Connection, 0, len(all))
	for _, c := range all {
		if draggedSceneID != "" && (c.From == draggedSceneID || c.To == draggedSceneID) {
			continue
		}
		if draggedConnectionID != "" && c.ID == draggedConnectionID {
			continue
		}
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b Connection) int {
		return strings.Compare(a.ID, b.ID)
	})
	return out
}
