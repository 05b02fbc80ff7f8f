package vracmap

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/golang/geo/s2"
)

// ID is an element identifier as found in both datasets.
type ID int64

// UnmarshalJSON accepts a JSON number or a numeric string.
func (id *ID) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid identifier %s: %w", data, err)
	}
	*id = ID(v)
	return nil
}

func (id ID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// Shape distinguishes single-point elements from areas that carry a centroid.
type Shape uint8

const (
	ShapeMalformed Shape = iota
	ShapePoint
	ShapeArea
)

func (s Shape) String() string {
	switch s {
	case ShapePoint:
		return "point"
	case ShapeArea:
		return "area"
	default:
		return "malformed"
	}
}

// shapeFromType maps the element type onto a Shape. Overpass element types
// and the plain point/area tags are both accepted.
func shapeFromType(t string) Shape {
	switch t {
	case "node", "point":
		return ShapePoint
	case "way", "relation", "area":
		return ShapeArea
	default:
		return ShapeMalformed
	}
}

// Coordinate is a position in degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// LatLng returns the coordinate as an s2 point.
func (c Coordinate) LatLng() s2.LatLng {
	return s2.LatLngFromDegrees(c.Lat, c.Lon)
}

// valid rejects NaN, infinities and out-of-range degrees.
func (c Coordinate) valid() bool {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lon) ||
		math.IsInf(c.Lat, 0) || math.IsInf(c.Lon, 0) {
		return false
	}
	return c.LatLng().IsValid()
}

// Tag keys read from the shop dataset.
const (
	TagName            = "name"
	TagShop            = "shop"
	TagAmenity         = "amenity"
	TagCraft           = "craft"
	TagOrganic         = "organic"
	TagBulkPurchase    = "bulk_purchase"
	TagHouseNumber     = "addr:housenumber"
	TagStreet          = "addr:street"
	TagPostcode        = "addr:postcode"
	TagCity            = "addr:city"
	TagOpeningHours    = "opening_hours"
	TagWebsite         = "website"
	TagContactWebsite  = "contact:website"
	TagFacebook        = "facebook"
	TagContactFacebook = "contact:facebook"
)

// Tags holds the free-form descriptive tags of an element. Any key may be absent.
type Tags map[string]string

// Get returns the trimmed value for key, or "" when absent.
func (t Tags) Get(key string) string {
	return strings.TrimSpace(t[key])
}

func (t Tags) Name() string { return t.Get(TagName) }

// Record is one shop or amenity from the shop dataset. The location is a variant
// over the element shape; use Coordinate to resolve it.
type Record struct {
	ID    ID
	Type  string // raw element type ("node", "way", ...)
	Shape Shape
	Tags  Tags

	point  *Coordinate // direct lat/lon, meaningful for ShapePoint
	center *Coordinate // centroid, meaningful for ShapeArea
}

// NewPointRecord builds a point-shaped record.
func NewPointRecord(id ID, lat, lon float64, tags Tags) Record {
	return Record{ID: id, Type: "node", Shape: ShapePoint, Tags: tags, point: &Coordinate{Lat: lat, Lon: lon}}
}

// NewAreaRecord builds an area-shaped record with the given centroid.
func NewAreaRecord(id ID, lat, lon float64, tags Tags) Record {
	return Record{ID: id, Type: "way", Shape: ShapeArea, Tags: tags, center: &Coordinate{Lat: lat, Lon: lon}}
}

// Coordinate resolves the display position of the record. Points use their own
// lat/lon, areas their centroid; anything else, or an invalid position, yields false.
func (r Record) Coordinate() (Coordinate, bool) {
	var c *Coordinate
	switch r.Shape {
	case ShapePoint:
		c = r.point
	case ShapeArea:
		c = r.center
	}
	if c == nil || !c.valid() {
		return Coordinate{}, false
	}
	return *c, true
}

// rawRecord mirrors an Overpass element with every location field optional.
type rawRecord struct {
	ID     ID       `json:"id"`
	Type   string   `json:"type"`
	Lat    *float64 `json:"lat"`
	Lon    *float64 `json:"lon"`
	Center *struct {
		Lat *float64 `json:"lat"`
		Lon *float64 `json:"lon"`
	} `json:"center"`
	Tags Tags `json:"tags"`
}

func coordinateOf(lat, lon *float64) *Coordinate {
	if lat == nil || lon == nil {
		return nil
	}
	return &Coordinate{Lat: *lat, Lon: *lon}
}

// UnmarshalJSON decodes an Overpass element.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw rawRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*r = Record{
		ID:    raw.ID,
		Type:  raw.Type,
		Shape: shapeFromType(raw.Type),
		Tags:  raw.Tags,
	}
	if r.Tags == nil {
		r.Tags = Tags{}
	}
	switch r.Shape {
	case ShapePoint:
		r.point = coordinateOf(raw.Lat, raw.Lon)
	case ShapeArea:
		if raw.Center != nil {
			r.center = coordinateOf(raw.Center.Lat, raw.Center.Lon)
		}
	}
	return nil
}
