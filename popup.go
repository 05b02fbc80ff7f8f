package vracmap

import (
	"html"
	"strings"
)

// Popup holds the formatted fragments describing one shop. Empty fragments are
// omitted from the rendered markup.
type Popup struct {
	Title       string
	Category    string // category line, "" when unclassified
	Address     string
	Hours       string
	Links       string
	Partnership string
	Partner     bool
}

// HTML concatenates the fragments in display order.
func (p Popup) HTML() string {
	var b strings.Builder
	b.WriteString(p.Title)
	b.WriteString(p.Category)
	b.WriteString(p.Address)
	b.WriteString(p.Hours)
	b.WriteString(p.Links)
	b.WriteString(p.Partnership)
	return b.String()
}

// BuildPopup formats the popup of a record. It fails only when the record has
// no name; an unclassified record gets a popup without a category line.
func BuildPopup(r Record, partners *PartnerIndex) (Popup, bool) {
	t := r.Tags
	name := t.Name()
	if name == "" {
		return Popup{}, false
	}

	p := Popup{
		Title: "<b>" + html.EscapeString(name) + "</b>" + lineBreak,
	}

	if label, ok := FormatCategoryLabel(ClassifyTags(t), t.Get(TagOrganic), t.Get(TagBulkPurchase)); ok {
		if b, ok := LookupBrand(name); ok {
			label += b.Suffix
		}
		p.Category = "<i>" + html.EscapeString(label) + "</i>" + lineBreak
	}

	p.Address = FormatAddress(t.Get(TagHouseNumber), t.Get(TagStreet), t.Get(TagPostcode), t.Get(TagCity))
	p.Hours = FormatHours(t.Get(TagOpeningHours))
	p.Links = FormatWebsite(t.Get(TagWebsite), t.Get(TagContactWebsite), t.Get(TagFacebook), t.Get(TagContactFacebook))
	p.Partner = partners.Contains(r.ID)
	p.Partnership = FormatPartnership(p.Partner)
	return p, true
}
