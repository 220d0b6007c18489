package main

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"scenegraph/scenegraph"
)

// Canvas is a rune grid in screen cells.
type Canvas struct {
	cells  [][]rune
	width  int
	height int
}

func NewCanvas(width, height int) *Canvas {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	cells := make([][]rune, height)
	for y := range cells {
		cells[y] = []rune(strings.Repeat(" ", width))
	}
	return &Canvas{cells: cells, width: width, height: height}
}

// Lines returns the grid as strings, one per row.
func (c *Canvas) Lines() []string {
	lines := make([]string, len(c.cells))
	for y, row := range c.cells {
		lines[y] = string(row)
	}
	return lines
}

func (c *Canvas) isValidPos(x, y int) bool {
	return y >= 0 && y < c.height && x >= 0 && x < c.width
}

func (c *Canvas) set(x, y int, r rune) {
	if c.isValidPos(x, y) {
		c.cells[y][x] = r
	}
}

// setLine draws r only over blank cells and other lines, so connections
// never cut through scene chrome or text.
func (c *Canvas) setLine(x, y int, r rune) {
	if !c.isValidPos(x, y) {
		return
	}
	switch c.cells[y][x] {
	case ' ', '─', '│', '┼', '·':
		c.cells[y][x] = r
	}
}

func (c *Canvas) at(x, y int) rune {
	if !c.isValidPos(x, y) {
		return 0
	}
	return c.cells[y][x]
}

// cell rounds a screen-space point to the cell it falls in.
func cell(p scenegraph.Point) (int, int) {
	return int(math.Floor(p.X)), int(math.Floor(p.Y))
}

// sceneRect rounds a transformed scene to whole cells. Boxes keep room for
// their borders at any zoom.
func sceneRect(s scenegraph.Scene) (x, y, w, h int) {
	x, y = cell(s.Position())
	w = max(int(math.Round(s.Width)), 2)
	h = max(int(math.Round(s.Height)), 2)
	return x, y, w, h
}

func (c *Canvas) drawScene(sv scenegraph.SceneView[string], isSelected bool) {
	boxX, boxY, width, height := sceneRect(sv.Scaled)

	var corner, horizontal, vertical rune
	if isSelected {
		corner = '#'
		horizontal = '#'
		vertical = '#'
	} else {
		corner = '+'
		horizontal = '-'
		vertical = '|'
	}

	for y := boxY; y < boxY+height; y++ {
		for x := boxX; x < boxX+width; x++ {
			switch {
			case y == boxY || y == boxY+height-1:
				if x == boxX || x == boxX+width-1 {
					c.set(x, y, corner)
				} else {
					c.set(x, y, horizontal)
				}
			case x == boxX || x == boxX+width-1:
				c.set(x, y, vertical)
			default:
				c.set(x, y, ' ')
			}
		}
	}

	// The header sits in the top border, the body below it.
	c.drawText(sv.Header, boxX+2, boxY, width-4, 1)
	c.drawText(sv.Body, boxX+1, boxY+1, width-2, height-2)
}

// drawText writes text clipped to a maxWidth x maxHeight area.
func (c *Canvas) drawText(text string, textX, textY, maxWidth, maxHeight int) {
	if maxWidth <= 0 || maxHeight <= 0 {
		return
	}
	for lineIdx, line := range strings.Split(text, "\n") {
		if lineIdx >= maxHeight {
			break
		}
		runes := []rune(line)
		if len(runes) > maxWidth {
			runes = runes[:maxWidth]
		}
		for i, char := range runes {
			c.set(textX+i, textY+lineIdx, char)
		}
	}
}

// drawConnection routes from start to end with a horizontal, vertical,
// horizontal elbow and puts the arrow head just outside the end.
func (c *Canvas) drawConnection(start, end scenegraph.Point, dotted bool) {
	fromX, fromY := cell(start)
	toX, toY := cell(end)
	toX-- // arrow sits left of the scene's edge

	horizontal, vertical := '─', '│'
	if dotted {
		horizontal, vertical = '·', '·'
	}

	midX := (fromX + toX) / 2
	for x := min(fromX, midX); x <= max(fromX, midX); x++ {
		c.setLine(x, fromY, horizontal)
	}
	for y := min(fromY, toY); y <= max(fromY, toY); y++ {
		c.setLine(midX, y, vertical)
	}
	for x := min(midX, toX); x <= max(midX, toX); x++ {
		c.setLine(x, toY, horizontal)
	}
	if fromY != toY && !dotted {
		c.setLine(midX, fromY, '┼')
		c.setLine(midX, toY, '┼')
	}

	c.set(fromX, fromY, 'o')
	if toX >= midX {
		c.set(toX, toY, '▶')
	} else {
		c.set(toX, toY, '◀')
	}
}

// renderFrame draws one frame. Scenes first, connections over the gaps, the
// dragged scene and the in-progress connection last.
func renderFrame(f scenegraph.Frame[string], width, height int) *Canvas {
	c := NewCanvas(width, height)
	for _, sv := range f.Scenes {
		c.drawScene(sv, false)
	}
	for _, cv := range f.Connections {
		c.drawConnection(cv.Start, cv.End, false)
	}
	if f.Ghost != nil {
		c.drawScene(*f.Ghost, true)
	}
	if p := f.Preview; p != nil {
		c.drawPreview(*p)
	}
	return c
}

func (c *Canvas) drawPreview(p scenegraph.Preview) {
	fromX, fromY := cell(p.From)
	toX, toY := cell(p.To)
	steps := max(abs(toX-fromX), abs(toY-fromY))
	for i := 0; i <= steps; i++ {
		t := 0.0
		if steps > 0 {
			t = float64(i) / float64(steps)
		}
		x := fromX + int(math.Round(t*float64(toX-fromX)))
		y := fromY + int(math.Round(t*float64(toY-fromY)))
		c.setLine(x, y, '·')
	}
	c.set(fromX, fromY, 'o')
	if p.Targeted {
		c.set(toX, toY, '◆')
	} else {
		c.set(toX, toY, '◇')
	}
}

// headerRows measures the header chrome of the first rendered scene.
func headerRows(f scenegraph.Frame[string]) (float64, bool) {
	if len(f.Scenes) == 0 {
		return 0, false
	}
	return float64(lipgloss.Height(f.Scenes[0].Header)), true
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
