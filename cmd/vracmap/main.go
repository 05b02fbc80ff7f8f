// Command vracmap serves and exports the bulk-shopping shop map.
//
// Usage:
//
//	vracmap serve --config vracmap.yaml
//	vracmap export --format geojson --output shops.geojson
//	vracmap update-cache
//
// Settings come from the YAML file given with --config, a .env file and
// VRACMAP_* environment variables, in that order.
package main

func main() {
	Execute()
}
