package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"painel/internal/backend"
	"painel/internal/report"
)

var flagDryRun bool

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Export the Resumo and Extrato de Obras sheets to Google Sheets",
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Build the sheets without writing to Google Sheets")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	// Reports only read, so no alert publisher is needed.
	backendCfg.AMQPURL = ""
	be, err := backend.NewFactory(logger).Create(backendCfg)
	if err != nil {
		return err
	}
	defer be.Close()

	var (
		writer report.Writer
		memory *report.MemoryWriter
	)
	if flagDryRun {
		memory = report.NewMemoryWriter()
		writer = memory
	} else {
		if err := cfg.ValidateReport(); err != nil {
			return err
		}
		sheets, err := report.NewSheetsWriter(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleServiceAccountFile)
		if err != nil {
			return err
		}
		writer = sheets
	}

	summary, err := report.NewExporter(be.Service, writer, logger).Export(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("  Secretarias: %d\n", summary.Secretarias)
	fmt.Printf("  Obras:       %d\n", summary.Obras)
	if memory != nil {
		for _, title := range memory.Titles() {
			rows, _ := memory.Sheet(title)
			fmt.Printf("\n  [%s]\n", title)
			for _, row := range rows {
				fmt.Printf("    %v\n", row)
			}
		}
	}
	return nil
}
