package heatmap

import "image/color"

// Surface receives the drawing calls of a Renderer. Coordinates are data
// coordinates: the cell at (row, col) is centred on x=col, y=row and spans
// ±0.5 in both directions; y grows downwards.
type Surface interface {
	// SetShape is called once, before any other call.
	SetShape(rows, cols int)
	Cell(row, col int, fill color.Color)
	Annotate(row, col int, text string, style TextStyle)
	HLine(y, x0, x1 float64, style LineStyle)
	VLine(x, y0, y1 float64, style LineStyle)
	XTicks(ticks []Tick, style TickStyle)
	YTicks(ticks []Tick, style TickStyle)
}

// Tick is a labelled position on an axis.
type Tick struct {
	Pos   float64
	Label string
}

// TextStyle describes annotation text.
type TextStyle struct {
	Color color.Color
	// Size is in points.
	Size float64
}

// LineStyle describes a stroked line.
type LineStyle struct {
	Color color.Color
	// Width is in points.
	Width float64
	// Dashes alternates on/off lengths in points; empty means solid.
	Dashes []float64
}

// TickStyle describes tick labels.
type TickStyle struct {
	// Size is in points.
	Size float64
	// Rotation is counter-clockwise, in degrees.
	Rotation float64
	Color    color.Color
}

//Personal.AI order the ending
