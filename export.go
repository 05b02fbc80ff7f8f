package vracmap

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	geohash "github.com/TomiHiltunen/geohash-golang"
	"github.com/jszwec/csvutil"
)

// FeatureCollection is a GeoJSON collection of shop markers.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Feature is one GeoJSON point feature.
type Feature struct {
	Type       string            `json:"type"`
	Geometry   Geometry          `json:"geometry"`
	Properties FeatureProperties `json:"properties"`
}

// Geometry is a GeoJSON point; coordinates are [lon, lat].
type Geometry struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// FeatureProperties carries the marker style and popup of a feature.
type FeatureProperties struct {
	ID       ID       `json:"id"`
	Name     string   `json:"name"`
	Category Category `json:"category"`
	Label    string   `json:"label,omitempty"`
	Popup    string   `json:"popup"`
	Partner  bool     `json:"partner"`
	Geohash  string   `json:"geohash"`
}

// NewFeatureCollection converts entries into GeoJSON, keeping their order.
func NewFeatureCollection(entries []DisplayEntry) FeatureCollection {
	fc := FeatureCollection{Type: "FeatureCollection", Features: make([]Feature, 0, len(entries))}
	for _, e := range entries {
		fc.Features = append(fc.Features, Feature{
			Type:     "Feature",
			Geometry: Geometry{
				Type:        "Point",
				Coordinates: [2]float64{e.Lon, e.Lat},
			},
			Properties: FeatureProperties{
				ID:       e.ID,
				Name:     e.Name,
				Category: e.Category,
				Label:    e.Category.Label(),
				Popup:    e.Popup,
				Partner:  e.Partner,
				Geohash:  e.Geohash,
			},
		})
	}
	return fc
}

// newEncoder returns a JSON encoder that leaves popup markup unescaped.
func newEncoder(w io.Writer) *json.Encoder {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc
}

// WriteGeoJSON writes entries as a GeoJSON FeatureCollection.
func WriteGeoJSON(w io.Writer, entries []DisplayEntry) error {
	if err := newEncoder(w).Encode(NewFeatureCollection(entries)); err != nil {
		return fmt.Errorf("encoding geojson: %w", err)
	}
	return nil
}

// WriteJSON writes entries as a JSON array.
func WriteJSON(w io.Writer, entries []DisplayEntry) error {
	if err := newEncoder(w).Encode(entries); err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	return nil
}

// csvEntry is the flat CSV row of an entry; the popup markup is left out.
type csvEntry struct {
	ID       int64   `csv:"id"`
	Name     string  `csv:"name"`
	Category string  `csv:"category"`
	Label    string  `csv:"label"`
	Partner  bool    `csv:"partner"`
	Lat      float64 `csv:"lat"`
	Lon      float64 `csv:"lon"`
	Geohash  string  `csv:"geohash"`
}

// WriteCSV writes entries as CSV with a header row.
func WriteCSV(w io.Writer, entries []DisplayEntry) error {
	rows := make([]csvEntry, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, csvEntry{
			ID:       int64(e.ID),
			Name:     e.Name,
			Category: e.Category.String(),
			Label:    e.Category.Label(),
			Partner:  e.Partner,
			Lat:      e.Lat,
			Lon:      e.Lon,
			Geohash:  e.Geohash,
		})
	}
	b, err := csvutil.Marshal(rows)
	if err != nil {
		return fmt.Errorf("encoding csv: %w", err)
	}
	if _, err := w.Write(b); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	return nil
}

// Cluster groups the entries sharing a geohash cell.
type Cluster struct {
	Cell     string     `json:"cell"`
	Count    int        `json:"count"`
	Partners int        `json:"partners"`
	Center   Coordinate `json:"center"`
}

// MaxClusterPrecision is the longest geohash accepted by Clusters.
const MaxClusterPrecision = 12

// Clusters buckets entries by geohash cell of the given precision and returns
// the buckets ordered by cell. Center is the mean position of the bucket.
func Clusters(entries []DisplayEntry, precision int) ([]Cluster, error) {
	if precision < 1 || precision > MaxClusterPrecision {
		return nil, fmt.Errorf("cluster precision %d out of range 1..%d", precision, MaxClusterPrecision)
	}

	byCell := make(map[string]*Cluster)
	for _, e := range entries {
		cell := geohash.EncodeWithPrecision(e.Lat, e.Lon, precision)
		c, ok := byCell[cell]
		if !ok {
			c = &Cluster{Cell: cell}
			byCell[cell] = c
		}
		c.Count++
		if e.Partner {
			c.Partners++
		}
		c.Center.Lat += e.Lat
		c.Center.Lon += e.Lon
	}

	out := make([]Cluster, 0, len(byCell))
	for _, c := range byCell {
		c.Center.Lat /= float64(c.Count)
		c.Center.Lon /= float64(c.Count)
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Cell < out[j].Cell })
	return out, nil
}
