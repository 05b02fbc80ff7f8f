package main

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/vracanantes/vracmap"
	"github.com/vracanantes/vracmap/internal/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "vracmap",
	Short: "Map of bulk-shopping shops around Nantes",
	Long: `vracmap classifies OpenStreetMap shop elements, builds their popups and
serves them to the map frontend, or exports them as JSON, GeoJSON or CSV.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(updateCacheCmd)
}

// datasetOptions maps the service configuration onto loader options.
func datasetOptions(cfg config.Config) []vracmap.Option {
	policy := vracmap.SkipUnclassified
	if cfg.KeepUnclassified {
		policy = vracmap.KeepUnclassified
	}
	return []vracmap.Option{
		vracmap.WithShopsSource(cfg.ShopsSource),
		vracmap.WithPartnersSource(cfg.PartnersSource),
		vracmap.WithCacheDir(cfg.CacheDir),
		vracmap.WithUnclassifiedPolicy(policy),
	}
}
