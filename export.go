package main

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"

	"scenegraph/scenegraph"
)

var errNothingToExport = errors.New("nothing to export")

// Character cell dimensions (pixels per character)
const (
	charWidth  = 8.0
	charHeight = 16.0
)

// exportPNG draws the frame at one terminal cell per charWidth x charHeight
// pixels. Connections go first so scenes cover their anchors.
func exportPNG(f scenegraph.Frame[string], filename string) error {
	if len(f.Scenes) == 0 && f.Ghost == nil {
		return errNothingToExport
	}

	imageWidth := int(math.Ceil(f.Width * charWidth))
	imageHeight := int(math.Ceil(f.Height * charHeight))
	if imageWidth < 1 || imageHeight < 1 {
		return errNothingToExport
	}

	dc := gg.NewContext(imageWidth, imageHeight)
	dc.SetColor(color.White)
	dc.Clear()

	ttfFont, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return fmt.Errorf("failed to parse font: %w", err)
	}
	dc.SetFontFace(truetype.NewFace(ttfFont, &truetype.Options{
		Size:    12,
		DPI:     72,
		Hinting: font.HintingFull,
	}))

	for _, cv := range f.Connections {
		drawConnectionPNG(dc, cv)
	}
	for _, sv := range f.Scenes {
		drawScenePNG(dc, sv)
	}
	if f.Ghost != nil {
		drawScenePNG(dc, *f.Ghost)
	}

	if err := dc.SavePNG(filename); err != nil {
		return fmt.Errorf("writing %s: %w", filename, err)
	}
	return nil
}

func drawConnectionPNG(dc *gg.Context, cv scenegraph.ConnectionView) {
	sx, sy := cv.Start.X*charWidth, cv.Start.Y*charHeight
	ex, ey := cv.End.X*charWidth, cv.End.Y*charHeight
	midX := (sx + ex) / 2

	dc.SetLineWidth(1.0)
	dc.SetColor(color.Black)
	dc.MoveTo(sx, sy)
	dc.LineTo(midX, sy)
	dc.LineTo(midX, ey)
	dc.LineTo(ex, ey)
	dc.Stroke()

	drawArrowPNG(dc, midX, ey, ex, ey)
}

func drawArrowPNG(dc *gg.Context, fx, fy, tx, ty float64) {
	dx := tx - fx
	dy := ty - fy
	length := math.Sqrt(dx*dx + dy*dy)
	if length < 0.1 {
		return
	}

	// Normalize
	dx /= length
	dy /= length

	arrowSize := 6.0
	arrowAngle := 0.5 // radians

	baseX1 := tx - arrowSize*dx + arrowSize*dy*arrowAngle
	baseY1 := ty - arrowSize*dy - arrowSize*dx*arrowAngle
	baseX2 := tx - arrowSize*dx - arrowSize*dy*arrowAngle
	baseY2 := ty - arrowSize*dy + arrowSize*dx*arrowAngle

	dc.MoveTo(tx, ty)
	dc.LineTo(baseX1, baseY1)
	dc.LineTo(baseX2, baseY2)
	dc.ClosePath()
	dc.Fill()
}

func drawScenePNG(dc *gg.Context, sv scenegraph.SceneView[string]) {
	x := sv.Scaled.X * charWidth
	y := sv.Scaled.Y * charHeight
	width := sv.Scaled.Width * charWidth
	height := sv.Scaled.Height * charHeight

	dc.SetColor(color.White)
	dc.DrawRectangle(x, y, width, height)
	dc.Fill()

	dc.SetLineWidth(1.0)
	dc.SetColor(color.Black)
	dc.DrawRectangle(x, y, width, height)
	dc.Stroke()
	dc.DrawLine(x, y+charHeight, x+width, y+charHeight)
	dc.Stroke()

	dc.DrawString(sv.Header, x+charWidth, y+charHeight-4)
	for i, line := range strings.Split(sv.Body, "\n") {
		textY := y + charHeight*float64(i+2) - 4
		if textY > y+height {
			break
		}
		dc.DrawString(line, x+charWidth, textY)
	}
}

func exportText(c *Canvas, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	for _, line := range c.Lines() {
		if _, err := fmt.Fprintln(file, strings.TrimRight(line, " ")); err != nil {
			return fmt.Errorf("writing %s: %w", filename, err)
		}
	}
	return nil
}

func copyToClipboard(c *Canvas) error {
	lines := c.Lines()
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " ")
	}
	return clipboard.WriteAll(strings.Join(lines, "\n"))
}
