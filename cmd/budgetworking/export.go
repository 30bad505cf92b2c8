package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/phuslu/log"
	"github.com/spf13/cobra"

	"github.com/Prabhakar2095/Budget-Working/internal/config"
	"github.com/Prabhakar2095/Budget-Working/internal/exporter"
	"github.com/Prabhakar2095/Budget-Working/internal/model"
	"github.com/Prabhakar2095/Budget-Working/internal/server"
	"github.com/Prabhakar2095/Budget-Working/internal/store"
)

func newExportCmd(opts *options) *cobra.Command {
	var (
		fiscalYear string
		outDir     string
		lobs       []string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the consolidated workbook of saved snapshots",
		RunE: func(cmd *cobra.Command, _ []string) error {
			dataDir, err := config.EnsureDataDir(opts.cfg)
			if err != nil {
				return err
			}
			st, err := store.New(filepath.Join(dataDir, server.DBFile))
			if err != nil {
				return err
			}
			defer st.Close()

			eo := exporter.ExportOptions{FiscalYear: fiscalYear}
			for _, name := range lobs {
				lob, ok := model.ParseLOB(name)
				if !ok {
					return fmt.Errorf("unknown line of business %q", name)
				}
				eo.LOBs = append(eo.LOBs, lob)
			}

			f, statuses, err := exporter.NewExporter(st).Export(eo, func(p exporter.ProgressEvent) {
				log.Debug().Int("percent", p.Percent).Msg(p.Stage)
			})
			if err != nil {
				return err
			}
			defer f.Close()

			if outDir == "" {
				outDir = filepath.Join(dataDir, opts.cfg.Excel.ExportDir)
			}
			path, err := exporter.SaveTo(f, outDir, fiscalYear, time.Now())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, s := range statuses {
				line := fmt.Sprintf("%-12s %s", s.LOB, s.Status)
				if s.Error != "" {
					line += ": " + s.Error
				}
				fmt.Fprintln(w, line)
			}
			fmt.Fprintln(w, path)
			return nil
		},
	}
	cmd.Flags().StringVar(&fiscalYear, "fiscal-year", "", "fiscal year, e.g. FY25-26 (latest snapshot per LOB when empty)")
	cmd.Flags().StringVar(&outDir, "out", "", "output directory (defaults to the export dir)")
	cmd.Flags().StringSliceVar(&lobs, "lob", nil, "lines of business to export (all when empty)")
	return cmd
}
