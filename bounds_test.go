package vracmap

import (
	"bytes"
	"log"
	"net/url"
	"strings"
	"testing"
)

func edge(v float64) *float64 { return &v }

func TestBoundsRequestResolve(t *testing.T) {
	tests := []struct {
		name      string
		req       BoundsRequest
		want      Bounds
		wantReset bool
	}{
		{
			name: "nothing requested",
			req:  BoundsRequest{},
			want: DefaultBounds(),
		},
		{
			name: "inside limits",
			req:  BoundsRequest{South: edge(46), West: edge(-2), North: edge(48), East: edge(0)},
			want: Bounds{South: 46, West: -2, North: 48, East: 0},
		},
		{
			name: "clamped to limits",
			req:  BoundsRequest{South: edge(30), West: edge(-20), North: edge(60), East: edge(20)},
			want: DefaultBounds(),
		},
		{
			name: "partial request",
			req:  BoundsRequest{North: edge(48)},
			want: Bounds{South: MinBoundSouth, West: MinBoundWest, North: 48, East: MaxBoundEast},
		},
		{
			name:      "south above north",
			req:       BoundsRequest{South: edge(60), North: edge(10)},
			want:      DefaultBounds(),
			wantReset: true,
		},
		{
			name:      "west beyond east",
			req:       BoundsRequest{West: edge(5), East: edge(-5)},
			want:      DefaultBounds(),
			wantReset: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			got := tt.req.Resolve(log.New(&logs, "", 0))
			if got != tt.want {
				t.Errorf("Resolve() = %+v, want %+v", got, tt.want)
			}
			reset := strings.Contains(logs.String(), "wrong coordinates parameters")
			if reset != tt.wantReset {
				t.Errorf("reset logged = %v, want %v (logs %q)", reset, tt.wantReset, logs.String())
			}
		})
	}
}

func TestBoundsRequestFromQuery(t *testing.T) {
	q := url.Values{
		"boundS": {"45.5"},
		"boundW": {"abc"},
		"boundN": {"0"},
		"boundE": {" 3 "},
	}
	req := BoundsRequestFromQuery(q)
	if req.South == nil || *req.South != 45.5 {
		t.Errorf("South = %v, want 45.5", req.South)
	}
	if req.West != nil {
		t.Errorf("West = %v, want absent for unparseable value", *req.West)
	}
	if req.North != nil {
		t.Errorf("North = %v, want absent for zero", *req.North)
	}
	if req.East == nil || *req.East != 3 {
		t.Errorf("East = %v, want 3", req.East)
	}
	if !req.IsSet() {
		t.Error("IsSet() = false")
	}
	if BoundsRequestFromQuery(url.Values{}).IsSet() {
		t.Error("IsSet() = true for an empty query")
	}
}

func TestBoundsContains(t *testing.T) {
	b := Bounds{South: 47, West: -2, North: 48, East: -1}
	tests := []struct {
		lat, lon float64
		want     bool
	}{
		{47.5, -1.5, true},
		{47, -2, true},
		{48, -1, true},
		{46.9, -1.5, false},
		{47.5, -0.9, false},
		{48.8, 2.3, false},
	}
	for _, tt := range tests {
		if got := b.Contains(tt.lat, tt.lon); got != tt.want {
			t.Errorf("Contains(%v, %v) = %v, want %v", tt.lat, tt.lon, got, tt.want)
		}
	}
}

func TestFilterEntries(t *testing.T) {
	entries := []DisplayEntry{
		{ID: 1, Lat: 48.8, Lon: 2.3},
		{ID: 2, Lat: 47.2146, Lon: -1.5536},
		{ID: 3, Lat: 47.2205, Lon: -1.5621},
	}
	got := FilterEntries(entries, Bounds{South: 47, West: -2, North: 48, East: -1})
	if len(got) != 2 || got[0].ID != 2 || got[1].ID != 3 {
		t.Errorf("FilterEntries() = %+v, want ids 2 and 3", got)
	}
}

func TestNewViewport(t *testing.T) {
	v := NewViewport(DefaultBounds())
	if v.MinZoom != 5 || v.MaxZoom != 17 || v.DefaultZoom != 6 {
		t.Errorf("zoom = %d/%d/%d, want 5/17/6", v.MinZoom, v.MaxZoom, v.DefaultZoom)
	}
	if v.Center != (Coordinate{Lat: 47, Lon: 2}) {
		t.Errorf("Center = %+v", v.Center)
	}
	if v.Bounds != DefaultBounds() {
		t.Errorf("Bounds = %+v", v.Bounds)
	}
}
