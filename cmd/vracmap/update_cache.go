package main

import (
	"errors"
	"log"

	"github.com/spf13/cobra"

	"github.com/vracanantes/vracmap"
	"github.com/vracanantes/vracmap/internal/config"
)

var updateCacheCmd = &cobra.Command{
	Use:   "update-cache",
	Short: "Download the URL datasets into the cache directory",
	RunE:  runUpdateCache,
}

func runUpdateCache(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.CacheDir == "" {
		return errors.New("no cache directory configured: set cache_dir or VRACMAP_CACHE_DIR")
	}

	log.Printf("refreshing dataset cache in %s", cfg.CacheDir)
	if err := vracmap.RefreshCache(cmd.Context(), datasetOptions(cfg)...); err != nil {
		return err
	}
	log.Printf("cache refreshed")
	return nil
}
