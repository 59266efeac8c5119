package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"prithvipulse/adapters/excel"
	"prithvipulse/app"
	"prithvipulse/internal/config"
	"prithvipulse/internal/container"
	"prithvipulse/internal/report"
	"prithvipulse/models"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "prithvipulse-cli",
		Short: "PrithviPulse CLI for calling the AI backend with fallbacks",
	}

	rootCmd.AddCommand(
		newDiagnoseCmd(),
		newReportCmd(),
		newSmartPlanCmd(),
		newExecutionPlanCmd(),
		newMarketCmd(),
		newAdviseCmd(),
		newFarmPlanCmd(),
		newHealthCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// withDispatcher builds the container for one command and drains it afterwards
func withDispatcher(fn func(*app.Dispatcher) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	c, err := container.New(cfg)
	if err != nil {
		return err
	}
	defer c.Shutdown(context.Background())
	return fn(c.Dispatcher)
}

func printDispatched[T any](out models.Dispatched[T]) error {
	fmt.Fprintf(os.Stderr, "source=%s class=%s status=%d latency=%s request_id=%s\n",
		out.Outcome.Source, out.Outcome.Failure, out.Outcome.StatusCode, out.Outcome.Latency, out.Outcome.RequestID)
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out.Value)
}

func readImage(path, language string) (models.ImageUpload, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return models.ImageUpload{}, fmt.Errorf("failed to read image: %w", err)
	}
	return models.ImageUpload{Filename: filepath.Base(path), Content: content, Language: language}, nil
}

func newDiagnoseCmd() *cobra.Command {
	var language string

	cmd := &cobra.Command{
		Use:   "diagnose [image]",
		Short: "Diagnose a leaf photo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			upload, err := readImage(args[0], language)
			if err != nil {
				return err
			}
			return withDispatcher(func(d *app.Dispatcher) error {
				return printDispatched(d.Diagnose(cmd.Context(), upload))
			})
		},
	}

	cmd.Flags().StringVar(&language, "language", "", "Language code for the diagnosis text")
	return cmd
}

func newReportCmd() *cobra.Command {
	var language, out string

	cmd := &cobra.Command{
		Use:   "report [image]",
		Short: "Diagnose a leaf photo and write an HTML report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			upload, err := readImage(args[0], language)
			if err != nil {
				return err
			}
			return withDispatcher(func(d *app.Dispatcher) error {
				res := d.Diagnose(cmd.Context(), upload)
				if err := os.WriteFile(out, report.DiagnosisHTML(res.Value, res.Outcome), 0o644); err != nil {
					return fmt.Errorf("failed to write report: %w", err)
				}
				fmt.Printf("Report for %q written to %s (source=%s)\n", res.Value.DiseaseName, out, res.Outcome.Source)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&language, "language", "", "Language code for the diagnosis text")
	cmd.Flags().StringVar(&out, "out", "diagnosis.html", "Output HTML file")
	return cmd
}

func newSmartPlanCmd() *cobra.Command {
	var req models.SmartPlanRequest

	cmd := &cobra.Command{
		Use:   "smart-plan",
		Short: "Request a crop strategy for a farm",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDispatcher(func(d *app.Dispatcher) error {
				return printDispatched(d.SmartPlan(cmd.Context(), req))
			})
		},
	}

	cmd.Flags().StringVar(&req.SoilType, "soil", "Black", "Soil type")
	cmd.Flags().StringVar(&req.LandSize, "land", "2", "Land size in acres")
	cmd.Flags().StringVar(&req.Budget, "budget", "50000", "Budget in rupees")
	cmd.Flags().StringVar(&req.WaterSource, "water", "Borewell", "Water source")
	cmd.Flags().StringVar(&req.Season, "season", "Kharif", "Season")
	cmd.Flags().StringVar(&req.SowingMonth, "month", "", "Planned sowing month")
	return cmd
}

func newExecutionPlanCmd() *cobra.Command {
	var req models.ExecutionPlanRequest

	cmd := &cobra.Command{
		Use:   "execution-plan",
		Short: "Request the precision manual for one crop",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDispatcher(func(d *app.Dispatcher) error {
				return printDispatched(d.ExecutionPlan(cmd.Context(), req))
			})
		},
	}

	cmd.Flags().StringVar(&req.CropName, "crop", "Wheat", "Crop name")
	cmd.Flags().StringVar(&req.Variety, "variety", "", "Crop variety")
	cmd.Flags().StringVar(&req.LandSize, "land", "2", "Land size in acres")
	cmd.Flags().StringVar(&req.SoilType, "soil", "Loamy", "Soil type")
	cmd.Flags().StringVar(&req.WaterSource, "water", "Canal", "Water source")
	cmd.Flags().StringVar(&req.SowingDate, "sowing-date", "", "Sowing date")
	return cmd
}

func newMarketCmd() *cobra.Command {
	var xlsx string

	cmd := &cobra.Command{
		Use:   "market [region]",
		Short: "Fetch regional mandi prices",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDispatcher(func(d *app.Dispatcher) error {
				out := d.MarketTrends(cmd.Context(), models.MarketTrendsRequest{Region: args[0]})
				if xlsx != "" {
					if err := excel.NewMarketWriter(out.Value).SaveAs(xlsx); err != nil {
						return err
					}
					fmt.Fprintf(os.Stderr, "market sheet written to %s\n", xlsx)
				}
				return printDispatched(out)
			})
		},
	}

	cmd.Flags().StringVar(&xlsx, "xlsx", "", "Also write the prices to this .xlsx file")
	return cmd
}

func newAdviseCmd() *cobra.Command {
	var req models.CropAdvisoryRequest

	cmd := &cobra.Command{
		Use:   "advise",
		Short: "Ask which crops suit a soil and season",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDispatcher(func(d *app.Dispatcher) error {
				return printDispatched(d.CropAdvisory(cmd.Context(), req))
			})
		},
	}

	cmd.Flags().StringVar(&req.Soil, "soil", "Loamy", "Soil type")
	cmd.Flags().StringVar(&req.Season, "season", "Kharif", "Season")
	cmd.Flags().StringVar(&req.Location, "location", "", "Location (default India)")
	return cmd
}

func newFarmPlanCmd() *cobra.Command {
	var req models.FarmPlanRequest

	cmd := &cobra.Command{
		Use:   "farm-plan",
		Short: "Run the quick farm planner",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDispatcher(func(d *app.Dispatcher) error {
				return printDispatched(d.FarmPlan(cmd.Context(), req))
			})
		},
	}

	cmd.Flags().StringVar(&req.SoilType, "soil", "Loamy", "Soil type")
	cmd.Flags().StringVar(&req.WaterSource, "water", "Borewell", "Water source")
	cmd.Flags().Float64Var(&req.Budget, "budget", 50000, "Budget in rupees")
	cmd.Flags().Float64Var(&req.LandSize, "land", 2, "Land size in acres")
	return cmd
}

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Probe the AI backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDispatcher(func(d *app.Dispatcher) error {
				out := d.Health(cmd.Context())
				if err := printDispatched(out); err != nil {
					return err
				}
				if !out.Value.Healthy {
					return fmt.Errorf("backend at %s is not healthy (%s)", out.Value.BaseURL, out.Outcome.Failure)
				}
				return nil
			})
		},
	}
}
