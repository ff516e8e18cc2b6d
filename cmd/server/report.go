package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"salesdash/server/config"
	"salesdash/server/internal/dashboard"
	"salesdash/server/internal/database"
	"salesdash/server/internal/export"
	"salesdash/server/internal/geocoding"
	"salesdash/server/internal/models"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// withService runs fn against a dashboard service over the configured store.
func withService(ctx context.Context, fn func(ctx context.Context, svc *dashboard.Service, logger *logrus.Logger) error) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := database.NewDatabase(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer store.Close()

	svc := dashboard.NewService(cfg, store, geocoding.NewTable(logger), logger)
	return fn(ctx, svc, logger)
}

func statsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print the dashboard header counters",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd.Context(), func(ctx context.Context, svc *dashboard.Service, _ *logrus.Logger) error {
				stats, err := svc.GlobalStats(ctx)
				if err != nil {
					return err
				}

				t := table.NewWriter()
				t.SetOutputMirror(os.Stdout)
				t.SetStyle(table.StyleLight)
				t.AppendHeader(table.Row{"Metric", "Value"})
				t.AppendRows([]table.Row{
					{"Active", stats.Total},
					{"Rental", stats.ByType.Rental},
					{"Sale", stats.ByType.Sale},
					{"New today", stats.NewToday},
					{"Sold today", stats.SoldToday},
				})
				t.Render()

				c := table.NewWriter()
				c.SetOutputMirror(os.Stdout)
				c.SetStyle(table.StyleLight)
				c.AppendHeader(table.Row{"Category", "Genre", "Count"})
				for _, cc := range stats.ByCategory {
					c.AppendRow(table.Row{cc.CategoryName, cc.GenreName, cc.Count})
				}
				c.Render()
				return nil
			})
		},
	}
}

func areasCommand() *cobra.Command {
	var top int
	cmd := &cobra.Command{
		Use:   "areas",
		Short: "Print per-municipality statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd.Context(), func(ctx context.Context, svc *dashboard.Service, _ *logrus.Logger) error {
				resp, err := svc.AreaStats(ctx)
				if err != nil {
					return err
				}

				t := table.NewWriter()
				t.SetOutputMirror(os.Stdout)
				t.SetStyle(table.StyleLight)
				t.AppendHeader(table.Row{"City", "Total", "Rental", "Sale", "Avg", "Median", "New (7d)", "New (30d)", "Score"})
				for i, a := range resp.Areas {
					if top > 0 && i >= top {
						break
					}
					t.AppendRow(table.Row{
						a.City, a.TotalProperties, a.ByType.Rental, a.ByType.Sale,
						a.AvgPrice, a.MedianPrice, a.NewThisWeek, a.NewThisMonth, a.ActivityScore,
					})
				}
				t.AppendFooter(table.Row{"Areas", resp.TotalAreas})
				t.Render()
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&top, "top", 0, "only print the first n areas")
	return cmd
}

func exportCommand() *cobra.Command {
	var (
		out   string
		limit int
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the dashboard statistics to an xlsx workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd.Context(), func(ctx context.Context, svc *dashboard.Service, logger *logrus.Logger) error {
				stats, err := svc.GlobalStats(ctx)
				if err != nil {
					return err
				}
				areas, err := svc.AreaStats(ctx)
				if err != nil {
					return err
				}
				properties, err := svc.Listings(ctx, dashboard.ListingQuery{Limit: limit})
				if err != nil {
					return err
				}

				if out == "" {
					out = "salesdash-" + time.Now().In(models.Tokyo).Format("20060102") + ".xlsx"
				}
				err = export.SaveAs(out, export.Report{
					GeneratedAt: time.Now(),
					Stats:       stats,
					Areas:       areas.Areas,
					Properties:  properties,
				})
				if err != nil {
					return err
				}

				logger.WithFields(logrus.Fields{
					"path":       out,
					"areas":      len(areas.Areas),
					"properties": len(properties),
				}).Info("Exported workbook")
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output path (default salesdash-YYYYMMDD.xlsx)")
	cmd.Flags().IntVar(&limit, "limit", 1000, "maximum number of listings on the Properties sheet")
	return cmd
}

func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the local sqlite schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Database.Type != config.DatabaseSQLite {
				return fmt.Errorf("migrate only manages sqlite databases, DATABASE_TYPE is %s", cfg.Database.Type)
			}

			// Opening the store applies the schema
			store, err := database.NewSQLiteStore(cfg.Database.SQLitePath, logger)
			if err != nil {
				return err
			}
			defer store.Close()

			logger.WithField("path", cfg.Database.SQLitePath).Info("Database schema is up to date")
			return nil
		},
	}
}
