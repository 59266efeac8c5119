package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"prithvipulse/adapters/excel"
	"prithvipulse/internal/config"
	"prithvipulse/internal/container"
	"prithvipulse/internal/migration"
	"prithvipulse/internal/testkit"
	"prithvipulse/models"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "prithvipulse-dev",
		Short: "PrithviPulse development tools",
	}

	rootCmd.AddCommand(
		newBackendCmd(),
		newSmokeCmd(),
		newMigrateCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newBackendCmd() *cobra.Command {
	var addr, prices string
	var verbose bool

	cmd := &cobra.Command{
		Use:   "backend",
		Short: "Serve a mock AI backend with canned answers",
		RunE: func(cmd *cobra.Command, args []string) error {
			mock := testkit.NewMockBackend(verbose)
			if prices != "" {
				crops, err := excel.ReadMarketCrops(prices)
				if err != nil {
					return err
				}
				mock.SetMarketCrops(crops)
				fmt.Printf("Serving %d crop prices from %s\n", len(crops), prices)
			}

			srv := &http.Server{Addr: addr, Handler: mock.Handler(), ReadHeaderTimeout: 10 * time.Second}
			fmt.Printf("Mock AI backend on http://%s\n", addr)
			return srv.ListenAndServe()
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "localhost:8000", "Listen address")
	cmd.Flags().StringVar(&prices, "prices", "", "Price sheet (.xlsx or .csv) served by /get-market-trends")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "Log every request")
	return cmd
}

func newSmokeCmd() *cobra.Command {
	var region string

	cmd := &cobra.Command{
		Use:   "smoke",
		Short: "Call every backend operation once and report where answers came from",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSmoke(cmd.Context(), region)
		},
	}

	cmd.Flags().StringVar(&region, "region", "Punjab", "Region for the market call")
	return cmd
}

func runSmoke(ctx context.Context, region string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	c, err := container.New(cfg)
	if err != nil {
		return err
	}
	defer c.Shutdown(context.Background())

	d := c.Dispatcher
	fmt.Printf("Smoke testing %s\n", d.BaseURL())

	outcomes := []models.Outcome{
		d.Health(ctx).Outcome,
		d.Diagnose(ctx, models.ImageUpload{Filename: "leaf.jpg", Content: []byte("smoke")}).Outcome,
		d.SmartPlan(ctx, models.SmartPlanRequest{SoilType: "Black", LandSize: "2", Budget: "50000", WaterSource: "Borewell", Season: "Kharif"}).Outcome,
		d.ExecutionPlan(ctx, models.ExecutionPlanRequest{CropName: "Wheat", LandSize: "2"}).Outcome,
		d.MarketTrends(ctx, models.MarketTrendsRequest{Region: region}).Outcome,
		d.CropAdvisory(ctx, models.CropAdvisoryRequest{Soil: "Loamy", Season: "Rabi"}).Outcome,
		d.FarmPlan(ctx, models.FarmPlanRequest{SoilType: "Loamy", WaterSource: "Canal", Budget: 40000, LandSize: 2}).Outcome,
	}

	fallbacks := 0
	for _, o := range outcomes {
		mark := "✓"
		if o.FellBack() {
			mark = "✗"
			fallbacks++
		}
		fmt.Printf("  %s %-16s source=%-8s class=%-9s status=%d latency=%s\n",
			mark, o.Operation, o.Source, o.Failure, o.StatusCode, o.Latency.Round(time.Millisecond))
	}

	if fallbacks > 0 {
		return fmt.Errorf("%d of %d operations fell back", fallbacks, len(outcomes))
	}
	fmt.Println("All operations answered by the backend")
	return nil
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the dispatch usage schema in DATABASE_URL",
		RunE: func(cmd *cobra.Command, args []string) error {
			url := os.Getenv("DATABASE_URL")
			if url == "" {
				return fmt.Errorf("DATABASE_URL is required")
			}
			db, err := container.ConnectDatabase(url)
			if err != nil {
				return err
			}
			defer db.Close()

			migrator := migration.NewRunner()
			if err := migrator.Run(cmd.Context(), db); err != nil {
				return err
			}
			fmt.Printf("Schema %s applied\n", migrator.Version())
			return nil
		},
	}
}
