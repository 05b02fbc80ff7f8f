package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/vracanantes/vracmap"
	"github.com/vracanantes/vracmap/internal/config"
)

var (
	exportFormat string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the displayable shops",
	Long:  "Run the shop dataset through the pipeline and write the displayable shops as JSON, GeoJSON or CSV",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "geojson", "Output format: json, geojson or csv")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "-", "Output file, - for stdout")
}

func exporter(format string) (func(io.Writer, []vracmap.DisplayEntry) error, error) {
	switch format {
	case "json":
		return vracmap.WriteJSON, nil
	case "geojson":
		return vracmap.WriteGeoJSON, nil
	case "csv":
		return vracmap.WriteCSV, nil
	}
	return nil, fmt.Errorf("invalid format: %s. Use 'json', 'geojson' or 'csv'", format)
}

func runExport(cmd *cobra.Command, args []string) error {
	write, err := exporter(exportFormat)
	if err != nil {
		return err
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	d, err := vracmap.Load(cmd.Context(), datasetOptions(cfg)...)
	if err != nil {
		return fmt.Errorf("loading dataset: %w", err)
	}
	rep := d.Process()

	if exportOutput == "-" {
		if err := write(cmd.OutOrStdout(), rep.Entries); err != nil {
			return err
		}
	} else if err := writeFile(exportOutput, write, rep.Entries); err != nil {
		return err
	}

	log.Printf("exported %d of %d shops (%d skipped)", len(rep.Entries), rep.Total, rep.SkippedCount())
	return nil
}

// writeFile writes entries to path and reports a failed close, so a truncated
// file never passes for a complete export.
func writeFile(path string, write func(io.Writer, []vracmap.DisplayEntry) error, entries []vracmap.DisplayEntry) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	if err := write(f, entries); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing output %s: %w", path, err)
	}
	return nil
}
