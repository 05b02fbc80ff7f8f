package vracmap

import (
	"html"
	"strings"
)

// Popup markup. Every fragment that is not empty ends with lineBreak.
const (
	lineBreak      = "<br />"
	addressDelim   = ", "
	hoursLabel     = "Horaires : "
	facebookLabel  = "Page Facebook"
	organicSuffix  = " bio"
	bulkYesSuffix  = " avec vrac"
	bulkOnlySuffix = " 100% vrac"

	partnerBadge = `<hr style="padding-bottom: 0px;" size="1">` +
		`<div style="display: flex;"><img style="height: 50px;" src="jtb.png"/>` +
		`<div style="margin: auto; font-weight: bold;">Partenaire <br />J'aime tes bocaux</div></div>`
)

// truthy reports whether an OSM yes/only style flag is set.
func truthy(v string) bool {
	switch strings.TrimSpace(v) {
	case "yes", "only":
		return true
	}
	return false
}

func joinPresent(sep string, parts ...string) string {
	present := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			present = append(present, p)
		}
	}
	return strings.Join(present, sep)
}

// FormatAddress renders "<number> <street>, <postcode> <city>" skipping absent
// parts. It returns "" when every part is absent.
func FormatAddress(houseNumber, street, postcode, city string) string {
	addr := joinPresent(addressDelim,
		joinPresent(" ", houseNumber, street),
		joinPresent(" ", postcode, city),
	)
	if addr == "" {
		return ""
	}
	return html.EscapeString(addr) + lineBreak
}

// FormatHours renders the opening hours line, "" when absent.
func FormatHours(openingHours string) string {
	openingHours = strings.TrimSpace(openingHours)
	if openingHours == "" {
		return ""
	}
	return hoursLabel + html.EscapeString(openingHours) + lineBreak
}

// FormatWebsite renders a link to the first present value among website,
// contact website, facebook and contact facebook, in that order.
func FormatWebsite(website, contactWebsite, facebook, contactFacebook string) string {
	for _, l := range []struct {
		url, label string
	}{
		{website, ""},
		{contactWebsite, ""},
		{facebook, facebookLabel},
		{contactFacebook, facebookLabel},
	} {
		u := strings.TrimSpace(l.url)
		if u == "" {
			continue
		}
		label := l.label
		if label == "" {
			label = u
		}
		return `<a href="` + html.EscapeString(u) + `" target="_blank">` + html.EscapeString(label) + `</a>` + lineBreak
	}
	return ""
}

// FormatCategoryLabel returns the category label with its organic and bulk
// qualifiers, or false for Unclassified.
func FormatCategoryLabel(c Category, organic, bulkPurchase string) (string, bool) {
	if c == Unclassified || c >= numCategories {
		return "", false
	}
	info := categories[c]
	label := info.label
	if truthy(organic) && !info.organic {
		label += organicSuffix
	}
	if !info.bulk {
		switch strings.TrimSpace(bulkPurchase) {
		case "yes":
			label += bulkYesSuffix
		case "only":
			label += bulkOnlySuffix
		}
	}
	return label, true
}

// FormatPartnership returns the partner badge when partner is set.
func FormatPartnership(partner bool) string {
	if !partner {
		return ""
	}
	return partnerBadge
}
