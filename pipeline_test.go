package vracmap

import (
	"bytes"
	"log"
	"strings"

	. "gopkg.in/check.v1"
)

type PipelineSuite struct {
	logs     *bytes.Buffer
	partners *PartnerIndex
}

var _ = Suite(&PipelineSuite{})

func (s *PipelineSuite) SetUpTest(c *C) {
	s.logs = &bytes.Buffer{}
	s.partners = NewPartnerIndex([]PartnerGroup{{Name: "J'aime tes bocaux", IDs: []ID{10, 11}}})
}

func (s *PipelineSuite) pipeline(policy UnclassifiedPolicy) *Pipeline {
	return NewPipeline(s.partners, policy, log.New(s.logs, "", 0))
}

func (s *PipelineSuite) TestPointCoordinateIsExact(c *C) {
	e, _, ok := s.pipeline(SkipUnclassified).Entry(NewPointRecord(1, 47.218371, -1.553621, Tags{TagName: "A", TagShop: "tea"}))
	c.Assert(ok, Equals, true)
	c.Assert(e.Lat, Equals, 47.218371)
	c.Assert(e.Lon, Equals, -1.553621)
	c.Assert(e.Geohash, HasLen, geohashPrecision)
	c.Assert(strings.HasPrefix(e.Geohash, "gbqu"), Equals, true)
}

func (s *PipelineSuite) TestAreaUsesCentroid(c *C) {
	e, _, ok := s.pipeline(SkipUnclassified).Entry(NewAreaRecord(2, 47.2146, -1.5536, Tags{TagName: "B", TagAmenity: "marketplace"}))
	c.Assert(ok, Equals, true)
	c.Assert(e.Lat, Equals, 47.2146)
	c.Assert(e.Lon, Equals, -1.5536)
	c.Assert(e.Category, Equals, Market)
}

func (s *PipelineSuite) TestMissingCoordinateSkipped(c *C) {
	_, reason, ok := s.pipeline(SkipUnclassified).Entry(Record{ID: 3, Type: "way", Shape: ShapeArea, Tags: Tags{TagName: "C", TagShop: "bakery"}})
	c.Assert(ok, Equals, false)
	c.Assert(reason, Equals, SkipMissingCoordinate)
	c.Assert(s.logs.String(), Equals, "No coordinates found for shop: id=3 ; name=C ; shape=area\n")
}

func (s *PipelineSuite) TestUnclassifiedSkippedByDefault(c *C) {
	_, reason, ok := s.pipeline(SkipUnclassified).Entry(NewPointRecord(4, 47.2, -1.5, Tags{TagName: "Boulangerie X"}))
	c.Assert(ok, Equals, false)
	c.Assert(reason, Equals, SkipUnclassifiedShop)
	c.Assert(s.logs.String(), Equals, "No type found for shop: id=4 ; name=Boulangerie X\n")
}

func (s *PipelineSuite) TestUnclassifiedKept(c *C) {
	e, _, ok := s.pipeline(KeepUnclassified).Entry(NewPointRecord(4, 47.2, -1.5, Tags{TagName: "Boulangerie X"}))
	c.Assert(ok, Equals, true)
	c.Assert(e.Category, Equals, Unclassified)
	c.Assert(e.Popup, Equals, "<b>Boulangerie X</b><br />")
}

func (s *PipelineSuite) TestMissingNameSkipped(c *C) {
	_, reason, ok := s.pipeline(KeepUnclassified).Entry(NewPointRecord(5, 47.2, -1.5, Tags{TagShop: "bakery"}))
	c.Assert(ok, Equals, false)
	c.Assert(reason, Equals, SkipMissingName)
	c.Assert(s.logs.String(), Equals, "No popup found for shop : id=5 ; name=\n")
}

func (s *PipelineSuite) TestPartnerBadge(c *C) {
	tags := Tags{TagName: "D", TagShop: "cheese"}
	p := s.pipeline(SkipUnclassified)

	in, _, ok := p.Entry(NewPointRecord(10, 47.2, -1.5, tags))
	c.Assert(ok, Equals, true)
	c.Assert(in.Partner, Equals, true)
	c.Assert(strings.HasSuffix(in.Popup, partnerBadge), Equals, true)

	out, _, ok := p.Entry(NewPointRecord(12, 47.2, -1.5, tags))
	c.Assert(ok, Equals, true)
	c.Assert(out.Partner, Equals, false)
	c.Assert(strings.Contains(out.Popup, "J'aime tes bocaux"), Equals, false)
	c.Assert(in.Popup, Equals, out.Popup+partnerBadge)
}

func (s *PipelineSuite) TestProcessKeepsOrderAndDuplicates(c *C) {
	records := []Record{
		NewPointRecord(20, 47.3, -1.5, Tags{TagName: "E", TagShop: "wine"}),
		NewPointRecord(21, 47.1, -1.4, Tags{TagName: "F"}),
		NewPointRecord(20, 47.3, -1.5, Tags{TagName: "E", TagShop: "wine"}),
		NewAreaRecord(22, 47.0, -1.3, Tags{TagName: "G", TagCraft: "brewery"}),
	}
	rep := s.pipeline(SkipUnclassified).Process(records)
	c.Assert(rep.Total, Equals, 4)
	c.Assert(rep.Entries, HasLen, 3)
	c.Assert(rep.Entries[0].ID, Equals, ID(20))
	c.Assert(rep.Entries[1].ID, Equals, ID(20))
	c.Assert(rep.Entries[2].ID, Equals, ID(22))
	c.Assert(rep.Skipped, DeepEquals, map[SkipReason]int{SkipUnclassifiedShop: 1})
}

func (s *PipelineSuite) TestProcessEmpty(c *C) {
	rep := s.pipeline(SkipUnclassified).Process(nil)
	c.Assert(rep.Entries, HasLen, 0)
	c.Assert(rep.SkippedCount(), Equals, 0)
}

func (s *PipelineSuite) TestNilLoggerUsesDefault(c *C) {
	p := NewPipeline(nil, SkipUnclassified, nil)
	c.Assert(p.logger, Equals, log.Default())
}
