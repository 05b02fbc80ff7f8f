package vracmap

import (
	"sort"

	"github.com/agnivade/levenshtein"
)

// Category is the kind of business a shop is displayed as.
type Category uint8

// Unclassified is the zero value: no taxonomy entry matched.
const (
	Unclassified Category = iota
	Bakery
	Butcher
	Cheese
	Grocery
	Greengrocer
	Supermarket
	OrganicStore
	BulkStore
	Convenience
	Deli
	Wine
	Beverages
	Coffee
	Tea
	Spices
	Confectionery
	Fishmonger
	Farm
	HealthFood
	Cosmetics
	Drugstore
	Market
	Cafe
	Restaurant
	Brewery
	Caterer

	numCategories
)

type categoryInfo struct {
	slug    string // marker style key
	label   string // popup label
	organic bool   // label already says organic
	bulk    bool   // label already says bulk
}

// categories is indexed by Category. Every value below numCategories needs an entry.
var categories = [numCategories]categoryInfo{
	Unclassified:  {slug: "unclassified"},
	Bakery:        {slug: "bakery", label: "Boulangerie"},
	Butcher:       {slug: "butcher", label: "Boucherie"},
	Cheese:        {slug: "cheese", label: "Fromagerie"},
	Grocery:       {slug: "grocery", label: "Épicerie"},
	Greengrocer:   {slug: "greengrocer", label: "Primeur"},
	Supermarket:   {slug: "supermarket", label: "Supermarché"},
	OrganicStore:  {slug: "organic", label: "Magasin bio", organic: true},
	BulkStore:     {slug: "bulk", label: "Épicerie vrac", bulk: true},
	Convenience:   {slug: "convenience", label: "Épicerie de proximité"},
	Deli:          {slug: "deli", label: "Épicerie fine"},
	Wine:          {slug: "wine", label: "Caviste"},
	Beverages:     {slug: "beverages", label: "Boissons"},
	Coffee:        {slug: "coffee", label: "Torréfacteur"},
	Tea:           {slug: "tea", label: "Maison de thé"},
	Spices:        {slug: "spices", label: "Épices"},
	Confectionery: {slug: "confectionery", label: "Confiserie"},
	Fishmonger:    {slug: "seafood", label: "Poissonnerie"},
	Farm:          {slug: "farm", label: "Vente à la ferme"},
	HealthFood:    {slug: "health_food", label: "Diététique"},
	Cosmetics:     {slug: "cosmetics", label: "Cosmétiques"},
	Drugstore:     {slug: "chemist", label: "Droguerie"},
	Market:        {slug: "marketplace", label: "Marché"},
	Cafe:          {slug: "cafe", label: "Café"},
	Restaurant:    {slug: "restaurant", label: "Restaurant"},
	Brewery:       {slug: "brewery", label: "Brasserie artisanale"},
	Caterer:       {slug: "caterer", label: "Traiteur"},
}

// String returns the marker style key of the category.
func (c Category) String() string {
	if c >= numCategories {
		return categories[Unclassified].slug
	}
	return categories[c].slug
}

// Label returns the display label, "" for Unclassified.
func (c Category) Label() string {
	if c >= numCategories {
		return ""
	}
	return categories[c].label
}

// MarshalText encodes the category as its style key.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Kind tag taxonomies, matched exactly against the source data conventions.
var (
	shopKinds = map[string]Category{
		"bakery":        Bakery,
		"pastry":        Bakery,
		"butcher":       Butcher,
		"cheese":        Cheese,
		"dairy":         Cheese,
		"grocery":       Grocery,
		"greengrocer":   Greengrocer,
		"supermarket":   Supermarket,
		"organic":       OrganicStore,
		"bulk":          BulkStore,
		"zero_waste":    BulkStore,
		"convenience":   Convenience,
		"deli":          Deli,
		"wine":          Wine,
		"alcohol":       Wine,
		"beverages":     Beverages,
		"coffee":        Coffee,
		"tea":           Tea,
		"spices":        Spices,
		"confectionery": Confectionery,
		"chocolate":     Confectionery,
		"seafood":       Fishmonger,
		"farm":          Farm,
		"health_food":   HealthFood,
		"cosmetics":     Cosmetics,
		"chemist":       Drugstore,
		"household":     Drugstore,
	}
	amenityKinds = map[string]Category{
		"marketplace": Market,
		"cafe":        Cafe,
		"restaurant":  Restaurant,
	}
	craftKinds = map[string]Category{
		"brewery":       Brewery,
		"winery":        Wine,
		"caterer":       Caterer,
		"confectionery": Confectionery,
		"bakery":        Bakery,
	}
)

// Brand is a shop recognised by its name rather than by its kind tags.
type Brand struct {
	Category Category
	Suffix   string // appended to the category line, e.g. " en ligne"
}

// brands maps exact shop names to their brand entry.
var brands = map[string]Brand{
	"Green Shopper": {Category: Grocery, Suffix: " en ligne"},
	"Biocoop":       {Category: OrganicStore},
	"La Vie Claire": {Category: OrganicStore},
	"Naturalia":     {Category: OrganicStore},
	"Day by Day":    {Category: BulkStore},
}

// LookupBrand returns the brand entry for an exact shop name.
func LookupBrand(name string) (Brand, bool) {
	b, ok := brands[name]
	return b, ok
}

// Classify maps the descriptive tags of a shop onto a Category. The shop,
// amenity and craft tags are tried in that order; the name is only consulted
// when none of them matches. Matching is exact and case-sensitive.
func Classify(name, shop, amenity, craft string) Category {
	if c, ok := shopKinds[shop]; ok {
		return c
	}
	if c, ok := amenityKinds[amenity]; ok {
		return c
	}
	if c, ok := craftKinds[craft]; ok {
		return c
	}
	if b, ok := brands[name]; ok {
		return b.Category
	}
	return Unclassified
}

// ClassifyTags is Classify over a tag set.
func ClassifyTags(t Tags) Category {
	return Classify(t.Name(), t.Get(TagShop), t.Get(TagAmenity), t.Get(TagCraft))
}

// maxHintDistance bounds the edit distance of a kind hint.
const maxHintDistance = 2

// sortedShopKinds, sortedAmenityKinds and sortedCraftKinds give hints a
// deterministic order.
var (
	sortedShopKinds    = sortedKeys(shopKinds)
	sortedAmenityKinds = sortedKeys(amenityKinds)
	sortedCraftKinds   = sortedKeys(craftKinds)
)

func sortedKeys(m map[string]Category) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// kindHint returns the known kind closest to an unrecognised tag value, for
// diagnostics only. It never influences classification.
func kindHint(value string, known []string) (string, bool) {
	if value == "" {
		return "", false
	}
	best, bestDist := "", maxHintDistance+1
	for _, k := range known {
		if d := levenshtein.ComputeDistance(value, k); d < bestDist {
			best, bestDist = k, d
		}
	}
	return best, best != ""
}

// unclassifiedHint describes the closest known kinds for an unclassified tag set.
func unclassifiedHint(t Tags) string {
	var hint string
	for _, tier := range []struct {
		key   string
		known []string
	}{
		{TagShop, sortedShopKinds},
		{TagAmenity, sortedAmenityKinds},
		{TagCraft, sortedCraftKinds},
	} {
		v := t.Get(tier.key)
		if k, ok := kindHint(v, tier.known); ok {
			hint += " ; " + tier.key + "=" + v + " (closest known: " + k + ")"
		}
	}
	return hint
}
