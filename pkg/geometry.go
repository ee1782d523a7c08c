package reco

import (
	"fmt"
	"math"
	"strings"
)

type PlaneCategory int

const (
	// strips along the local Y axis, measuring X
	PlaneX PlaneCategory = iota
	// stereo planes rotated by a positive angle
	PlaneU
	// stereo planes rotated by a negative angle
	PlaneV
)

func (c PlaneCategory) String() string {
	switch c {
	case PlaneX:
		return "X"
	case PlaneU:
		return "U"
	case PlaneV:
		return "V"
	}
	return fmt.Sprintf("PlaneCategory(%d)", int(c))
}

// Plane is one detector layer at fixed z. Angle is in radians.
type Plane struct {
	Board    int
	Category PlaneCategory
	Z        float64
	Angle    float64
	X0       float64
	Y0       float64
	Pitch    float64
	Offset   float64
}

// MeasuredX converts a (fractional) strip number into the plane local X.
func (p Plane) MeasuredX(channel float64) float64 {
	return p.Pitch * (channel - p.Offset)
}

// PredictedX is the local X where track crosses the plane.
func (p Plane) PredictedX(track Track) float64 {
	x := track.XAt(p.Z) - p.X0
	y := track.YAt(p.Z) - p.Y0
	return x*math.Cos(p.Angle) + y*math.Sin(p.Angle)
}

// Geometry maps a board id to the plane it reads out.
type Geometry interface {
	Plane(board int) (Plane, bool)
}

type PlaneGeometry struct {
	planes map[int]Plane
}

func NewPlaneGeometry(configs []PlaneConfig) (*PlaneGeometry, error) {
	g := &PlaneGeometry{planes: make(map[int]Plane, len(configs))}
	for _, c := range configs {
		plane, err := planeFromConfig(c)
		if err != nil {
			return nil, err
		}
		if _, ok := g.planes[c.Board]; ok {
			return nil, fmt.Errorf("board %d: plane defined twice", c.Board)
		}
		g.planes[c.Board] = plane
	}
	return g, nil
}

func planeFromConfig(c PlaneConfig) (Plane, error) {
	plane := Plane{
		Board:  c.Board,
		Z:      c.Z,
		Angle:  c.Angle,
		X0:     c.X0,
		Y0:     c.Y0,
		Pitch:  c.Pitch,
		Offset: c.Offset,
	}
	switch strings.ToLower(c.Category) {
	case "primary", "x":
		plane.Category = PlaneX
	case "stereo", "u", "v":
		switch {
		case c.Angle > 0:
			plane.Category = PlaneU
		case c.Angle < 0:
			plane.Category = PlaneV
		default:
			return plane, fmt.Errorf("board %d: stereo plane with zero angle", c.Board)
		}
	default:
		return plane, fmt.Errorf("board %d: unknown plane category %q", c.Board, c.Category)
	}
	return plane, nil
}

func (g *PlaneGeometry) Plane(board int) (Plane, bool) {
	p, ok := g.planes[board]
	return p, ok
}

func (g *PlaneGeometry) NPlanes() int {
	return len(g.planes)
}
