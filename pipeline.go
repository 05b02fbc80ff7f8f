package vracmap

import (
	"log"

	geohash "github.com/TomiHiltunen/geohash-golang"
)

// geohashPrecision is the cell size stored on each entry (~150m).
const geohashPrecision = 7

// UnclassifiedPolicy decides what the pipeline does with a named shop whose
// tags match no category. The popup itself never fails on it.
type UnclassifiedPolicy uint8

const (
	// SkipUnclassified drops the shop from the output.
	SkipUnclassified UnclassifiedPolicy = iota
	// KeepUnclassified emits the shop with the Unclassified marker style and no
	// category line.
	KeepUnclassified
)

// SkipReason names why a record was left out of the output.
type SkipReason string

const (
	SkipMissingCoordinate SkipReason = "missing-coordinate"
	SkipUnclassifiedShop  SkipReason = "unclassified"
	SkipMissingName       SkipReason = "missing-name"
)

// DisplayEntry is what the map surface receives for one shop.
type DisplayEntry struct {
	ID       ID       `json:"id"`
	Category Category `json:"category"`
	Popup    string   `json:"popup"`
	Name     string   `json:"name"`
	Partner  bool     `json:"partner"`
	Lat      float64  `json:"lat"`
	Lon      float64  `json:"lon"`
	Geohash  string   `json:"geohash"`
}

// Report is the outcome of one pipeline run.
type Report struct {
	Entries []DisplayEntry
	Skipped map[SkipReason]int
	Total   int
}

// Pipeline turns shop records into display entries.
// Safe for concurrent use; it holds no per-run state.
type Pipeline struct {
	partners *PartnerIndex
	policy   UnclassifiedPolicy
	logger   *log.Logger
}

// NewPipeline returns a pipeline over a built partner index. A nil logger
// logs to log.Default().
func NewPipeline(partners *PartnerIndex, policy UnclassifiedPolicy, logger *log.Logger) *Pipeline {
	if logger == nil {
		logger = log.Default()
	}
	return &Pipeline{partners: partners, policy: policy, logger: logger}
}

// Entry processes one record. It returns the reason when the record cannot
// be displayed.
func (p *Pipeline) Entry(r Record) (DisplayEntry, SkipReason, bool) {
	name := r.Tags.Name()

	coord, ok := r.Coordinate()
	if !ok {
		p.logger.Printf("No coordinates found for shop: id=%s ; name=%s ; shape=%s", r.ID, name, r.Shape)
		return DisplayEntry{}, SkipMissingCoordinate, false
	}

	category := ClassifyTags(r.Tags)
	if category == Unclassified && p.policy == SkipUnclassified {
		p.logger.Printf("No type found for shop: id=%s ; name=%s%s", r.ID, name, unclassifiedHint(r.Tags))
		return DisplayEntry{}, SkipUnclassifiedShop, false
	}

	popup, ok := BuildPopup(r, p.partners)
	if !ok {
		p.logger.Printf("No popup found for shop : id=%s ; name=%s", r.ID, name)
		return DisplayEntry{}, SkipMissingName, false
	}

	return DisplayEntry{
		ID:       r.ID,
		Category: category,
		Popup:    popup.HTML(),
		Name:     name,
		Partner:  popup.Partner,
		Lat:      coord.Lat,
		Lon:      coord.Lon,
		Geohash:  geohash.EncodeWithPrecision(coord.Lat, coord.Lon, geohashPrecision),
	}, "", true
}

// Process runs every record through Entry, keeping input order. Bad records
// are counted and logged, never returned as errors.
func (p *Pipeline) Process(records []Record) Report {
	rep := Report{
		Entries: make([]DisplayEntry, 0, len(records)),
		Skipped: make(map[SkipReason]int),
		Total:   len(records),
	}
	for _, r := range records {
		e, reason, ok := p.Entry(r)
		if !ok {
			rep.Skipped[reason]++
			continue
		}
		rep.Entries = append(rep.Entries, e)
	}
	return rep
}

// SkippedCount returns the number of records left out.
func (r Report) SkippedCount() int {
	n := 0
	for _, c := range r.Skipped {
		n += c
	}
	return n
}
