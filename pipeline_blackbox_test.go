package vracmap_test

import (
	"bytes"
	"encoding/json"
	"log"
	"strings"
	"sync"
	"testing"

	"github.com/vracanantes/vracmap"
)

const overpassDoc = `[
  {"type": "node", "id": 1, "lat": 48.8, "lon": 2.3,
   "tags": {"name": "Green Shopper", "shop": "grocery", "organic": "yes"}},
  {"type": "node", "id": 3, "lat": 47.21, "lon": -1.55,
   "tags": {"name": "Boulangerie X"}},
  {"type": "way", "id": 20, "center": {"lat": 47.2, "lon": -1.56},
   "tags": {"name": "La Fromagerie", "shop": "cheese", "bulk_purchase": "yes"}},
  {"type": "node", "id": 21, "lat": 47.25, "lon": -1.52,
   "tags": {"name": "La Fromagerie", "shop": "cheese", "bulk_purchase": "yes"}}
]`

func decodeRecords(t *testing.T) []vracmap.Record {
	t.Helper()
	var records []vracmap.Record
	if err := json.Unmarshal([]byte(overpassDoc), &records); err != nil {
		t.Fatalf("decoding records: %v", err)
	}
	return records
}

func TestProcessEndToEnd(t *testing.T) {
	var logs bytes.Buffer
	partners := []vracmap.PartnerGroup{{Name: "jtb", IDs: []vracmap.ID{20}}}
	d := vracmap.NewDataset(decodeRecords(t), partners, vracmap.WithLogger(log.New(&logs, "", 0)))

	rep := d.Process()
	if rep.Total != 4 || len(rep.Entries) != 3 {
		t.Fatalf("report = %d total, %d entries", rep.Total, len(rep.Entries))
	}
	if rep.Skipped[vracmap.SkipUnclassifiedShop] != 1 {
		t.Errorf("skipped = %v", rep.Skipped)
	}
	if !strings.Contains(logs.String(), "No type found for shop: id=3 ; name=Boulangerie X") {
		t.Errorf("logs = %q", logs.String())
	}

	green := rep.Entries[0]
	if green.Category != vracmap.Grocery || green.Partner {
		t.Errorf("Green Shopper entry = %+v", green)
	}
	if !strings.Contains(green.Popup, "<i>Épicerie bio en ligne</i>") {
		t.Errorf("Green Shopper popup = %q", green.Popup)
	}
	if green.Lat != 48.8 || green.Lon != 2.3 {
		t.Errorf("Green Shopper position = %v,%v", green.Lat, green.Lon)
	}

	// Same tags, one listed as a partner, one not.
	listed, unlisted := rep.Entries[1], rep.Entries[2]
	if !listed.Partner || !strings.Contains(listed.Popup, "J'aime tes bocaux") {
		t.Errorf("partner popup = %q", listed.Popup)
	}
	if unlisted.Partner || strings.Contains(unlisted.Popup, "J'aime tes bocaux") {
		t.Errorf("non-partner popup = %q", unlisted.Popup)
	}
	if strings.TrimSuffix(listed.Popup, vracmap.FormatPartnership(true)) != unlisted.Popup {
		t.Errorf("popups differ beyond the badge:\n%q\n%q", listed.Popup, unlisted.Popup)
	}
}

func TestKeepUnclassified(t *testing.T) {
	quiet := log.New(&bytes.Buffer{}, "", 0)
	d := vracmap.NewDataset(decodeRecords(t), nil,
		vracmap.WithLogger(quiet),
		vracmap.WithUnclassifiedPolicy(vracmap.KeepUnclassified))

	rep := d.Process()
	if len(rep.Entries) != 4 || rep.SkippedCount() != 0 {
		t.Fatalf("entries = %d, skipped = %v", len(rep.Entries), rep.Skipped)
	}
	x := rep.Entries[1]
	if x.Category != vracmap.Unclassified {
		t.Errorf("category = %v, want unclassified", x.Category)
	}
	if x.Popup != "<b>Boulangerie X</b><br />" {
		t.Errorf("popup = %q", x.Popup)
	}
}

func TestPipelineConcurrentUse(t *testing.T) {
	records := decodeRecords(t)
	p := vracmap.NewPipeline(vracmap.NewPartnerIndex(nil), vracmap.SkipUnclassified, log.New(&bytes.Buffer{}, "", 0))
	want := p.Process(records)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		bads int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got := p.Process(records)
			if len(got.Entries) != len(want.Entries) {
				mu.Lock()
				bads++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if bads != 0 {
		t.Errorf("%d concurrent runs disagreed", bads)
	}
}

func TestPlainShapeTags(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantOK  bool
		wantLat float64
		wantLon float64
	}{
		{
			name:    "point",
			doc:     `{"id": 1, "type": "point", "lat": 48.8, "lon": 2.3, "tags": {"name": "Green Shopper", "shop": "grocery", "organic": "yes"}}`,
			wantOK:  true,
			wantLat: 48.8,
			wantLon: 2.3,
		},
		{
			name:    "area with center",
			doc:     `{"id": 2, "type": "area", "center": {"lat": 47.2, "lon": -1.55}, "tags": {"name": "La Fromagerie", "shop": "cheese"}}`,
			wantOK:  true,
			wantLat: 47.2,
			wantLon: -1.55,
		},
		{
			name: "area without center",
			doc:  `{"id": 3, "type": "area", "lat": 47.2, "lon": -1.55, "tags": {"name": "La Fromagerie", "shop": "cheese"}}`,
		},
	}

	p := vracmap.NewPipeline(vracmap.NewPartnerIndex(nil), vracmap.SkipUnclassified, log.New(&bytes.Buffer{}, "", 0))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r vracmap.Record
			if err := json.Unmarshal([]byte(tt.doc), &r); err != nil {
				t.Fatalf("decoding record: %v", err)
			}
			e, reason, ok := p.Entry(r)
			if ok != tt.wantOK {
				t.Fatalf("Entry() ok = %v (%s), want %v", ok, reason, tt.wantOK)
			}
			if !ok {
				if reason != vracmap.SkipMissingCoordinate {
					t.Errorf("reason = %s, want %s", reason, vracmap.SkipMissingCoordinate)
				}
				return
			}
			if e.Lat != tt.wantLat || e.Lon != tt.wantLon {
				t.Errorf("position = %v,%v, want %v,%v", e.Lat, e.Lon, tt.wantLat, tt.wantLon)
			}
		})
	}

	var green vracmap.Record
	if err := json.Unmarshal([]byte(tests[0].doc), &green); err != nil {
		t.Fatal(err)
	}
	e, _, _ := p.Entry(green)
	if want := "<b>Green Shopper</b><br /><i>Épicerie bio en ligne</i><br />"; e.Popup != want {
		t.Errorf("popup = %q, want %q", e.Popup, want)
	}
}
