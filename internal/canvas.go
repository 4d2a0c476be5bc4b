package internal

import (
	"errors"
	"math"
	"regexp"
)

const (
	DefaultStrokeColor = "#000000"
	DefaultStrokeSize  = 5
	MaxStrokeSize      = 50
)

type DrawTool string

const (
	ToolPen    DrawTool = "pen"
	ToolEraser DrawTool = "eraser"
)

var (
	ErrMissingCoordinates = errors.New("stroke coordinates are required")
	ErrInvalidCoordinates = errors.New("stroke coordinates must be finite")

	hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
)

// DrawStroke is one line segment relayed from the drawer to the room.
type DrawStroke struct {
	X0    *float64 `json:"x0"`
	Y0    *float64 `json:"y0"`
	X1    *float64 `json:"x1"`
	Y1    *float64 `json:"y1"`
	Color string   `json:"color,omitempty"`
	Size  float64  `json:"size,omitempty"`
	Tool  DrawTool `json:"tool,omitempty"`
}

// Normalize checks the segment and fills in the stroke defaults.
func (s DrawStroke) Normalize() (DrawStroke, error) {
	coords := []*float64{s.X0, s.Y0, s.X1, s.Y1}
	for _, c := range coords {
		if c == nil {
			return s, ErrMissingCoordinates
		}
		if math.IsNaN(*c) || math.IsInf(*c, 0) {
			return s, ErrInvalidCoordinates
		}
	}

	if !hexColor.MatchString(s.Color) {
		s.Color = DefaultStrokeColor
	}

	switch {
	case s.Size <= 0:
		s.Size = DefaultStrokeSize
	case s.Size > MaxStrokeSize:
		s.Size = MaxStrokeSize
	}

	if s.Tool != ToolEraser {
		s.Tool = ToolPen
	}
	return s, nil
}
