package vracmap

import (
	"log"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/golang/geo/s2"
)

// Display limits of the map. Requested bounds are clamped into this rectangle.
const (
	MinBoundSouth = 40.0
	MinBoundWest  = -7.0
	MaxBoundNorth = 53.0
	MaxBoundEast  = 11.0
)

// Zoom levels and initial view of the map.
const (
	MinZoom     = 5
	MaxZoom     = 17
	DefaultZoom = 6
	CenterLat   = 47.0
	CenterLon   = 2.0
)

// Bounds is a viewport rectangle in degrees.
type Bounds struct {
	South float64 `json:"south"`
	West  float64 `json:"west"`
	North float64 `json:"north"`
	East  float64 `json:"east"`
}

// DefaultBounds returns the display limits.
func DefaultBounds() Bounds {
	return Bounds{South: MinBoundSouth, West: MinBoundWest, North: MaxBoundNorth, East: MaxBoundEast}
}

// BoundsRequest holds optionally requested edges; nil means not requested.
type BoundsRequest struct {
	South, West, North, East *float64
}

func orDefault(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

// Resolve clamps the requested edges into the display limits. Absent edges
// fall back to the whole globe before clamping. An inverted result is reset
// to DefaultBounds and logged.
func (req BoundsRequest) Resolve(logger *log.Logger) Bounds {
	b := Bounds{
		South: math.Max(orDefault(req.South, 0), MinBoundSouth),
		West:  math.Max(orDefault(req.West, -180), MinBoundWest),
		North: math.Min(orDefault(req.North, 90), MaxBoundNorth),
		East:  math.Min(orDefault(req.East, 180), MaxBoundEast),
	}
	if b.North < b.South || b.East < b.West {
		if logger == nil {
			logger = log.Default()
		}
		logger.Printf("error - wrong coordinates parameters: south=%g west=%g north=%g east=%g", b.South, b.West, b.North, b.East)
		return DefaultBounds()
	}
	return b
}

// parseEdge reads one edge from a query value. Empty, zero and unparseable
// values count as not requested.
func parseEdge(v string) *float64 {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f == 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// BoundsRequestFromQuery reads boundS, boundW, boundN and boundE.
func BoundsRequestFromQuery(q url.Values) BoundsRequest {
	return BoundsRequest{
		South: parseEdge(q.Get("boundS")),
		West:  parseEdge(q.Get("boundW")),
		North: parseEdge(q.Get("boundN")),
		East:  parseEdge(q.Get("boundE")),
	}
}

// IsSet reports whether any edge was requested.
func (req BoundsRequest) IsSet() bool {
	return req.South != nil || req.West != nil || req.North != nil || req.East != nil
}

// Rect returns the bounds as an s2 rectangle.
func (b Bounds) Rect() s2.Rect {
	return s2.RectFromLatLng(s2.LatLngFromDegrees(b.South, b.West)).
		AddPoint(s2.LatLngFromDegrees(b.North, b.East))
}

// Contains reports whether the position lies inside the bounds, edges included.
func (b Bounds) Contains(lat, lon float64) bool {
	return b.Rect().ContainsLatLng(s2.LatLngFromDegrees(lat, lon))
}

// FilterEntries keeps the entries inside b, in order.
func FilterEntries(entries []DisplayEntry, b Bounds) []DisplayEntry {
	rect := b.Rect()
	out := make([]DisplayEntry, 0, len(entries))
	for _, e := range entries {
		if rect.ContainsLatLng(s2.LatLngFromDegrees(e.Lat, e.Lon)) {
			out = append(out, e)
		}
	}
	return out
}

// Viewport is the map configuration handed to the rendering surface.
type Viewport struct {
	Bounds      Bounds     `json:"bounds"`
	Center      Coordinate `json:"center"`
	MinZoom     int        `json:"minZoom"`
	MaxZoom     int        `json:"maxZoom"`
	DefaultZoom int        `json:"defaultZoom"`
}

// NewViewport returns the map configuration for the given bounds.
func NewViewport(b Bounds) Viewport {
	return Viewport{
		Bounds:      b,
		Center:      Coordinate{Lat: CenterLat, Lon: CenterLon},
		MinZoom:     MinZoom,
		MaxZoom:     MaxZoom,
		DefaultZoom: DefaultZoom,
	}
}
