package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/lararachidi/agent-supply-chain/pkg/application/services/orchestration"
)

func newSetupCommand(g *globalFlags) *cobra.Command {
	var reset bool
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Generate a synthetic dataset into the managed tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, g, func(ctx context.Context, app *App) error {
				result, err := app.Pipeline.RunSetup(ctx, reset, nil)
				if err != nil {
					return err
				}
				return render(cmd, g, "setup", result)
			})
		},
	}
	cmd.Flags().BoolVar(&reset, "reset", false, "drop every managed table first")
	return cmd
}

func newImportCommand(g *globalFlags) *cobra.Command {
	var reset bool
	cmd := &cobra.Command{
		Use:   "import <dir>",
		Short: "Load the input tables from a directory of CSV files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, g, func(ctx context.Context, app *App) error {
				result, err := app.Setup.Import(ctx, args[0], reset)
				if err != nil {
					return err
				}
				return render(cmd, g, "import", result)
			})
		},
	}
	cmd.Flags().BoolVar(&reset, "reset", false, "drop every managed table first")
	return cmd
}

func newForecastCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "forecast",
		Short: "Forecast demand per product and wholesaler",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, g, func(ctx context.Context, app *App) error {
				result, err := app.Pipeline.RunForecast(ctx, nil)
				if err != nil {
					return err
				}
				return render(cmd, g, "forecast", result)
			})
		},
	}
}

func newDeriveRawCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "derive-raw",
		Short: "Derive raw material demand from the forecast",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, g, func(ctx context.Context, app *App) error {
				result, err := app.Pipeline.RunRawMaterial(ctx, nil)
				if err != nil {
					return err
				}
				return render(cmd, g, "raw_material", result)
			})
		},
	}
}

func newOptimizeCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "optimize",
		Short: "Solve the plant to distribution center transport problem per product",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, g, func(ctx context.Context, app *App) error {
				result, err := app.Pipeline.RunTransport(ctx, nil)
				if err != nil {
					return err
				}
				return render(cmd, g, "transport", result)
			})
		},
	}
}

func newEmailsCommand(g *globalFlags) *cobra.Command {
	var generate bool
	cmd := &cobra.Command{
		Use:   "emails",
		Short: "Index the supplier emails for semantic search",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, g, func(ctx context.Context, app *App) error {
				result, err := app.Pipeline.RunEmails(ctx, generate, nil)
				if err != nil {
					return err
				}
				return render(cmd, g, "emails", result)
			})
		},
	}
	cmd.Flags().BoolVar(&generate, "generate", false, "regenerate the synthetic emails before indexing")
	return cmd
}

func newRunCommand(g *globalFlags) *cobra.Command {
	var opts orchestration.Options
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run forecast, raw material derivation, transport optimization and email indexing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, g, func(ctx context.Context, app *App) error {
				report, err := app.Pipeline.RunAll(ctx, opts)
				if rerr := render(cmd, g, "pipeline", report); rerr != nil && err == nil {
					err = rerr
				}
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&opts.Generate, "generate", false, "generate a synthetic dataset first")
	cmd.Flags().BoolVar(&opts.Reset, "reset", false, "drop every managed table before generating")
	cmd.Flags().BoolVar(&opts.SkipEmails, "skip-emails", false, "skip email indexing")
	cmd.Flags().BoolVar(&opts.GenerateEmails, "generate-emails", false, "regenerate the synthetic emails before indexing")
	return cmd
}

func newRunsCommand(g *globalFlags) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent pipeline stage runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, g, func(ctx context.Context, app *App) error {
				runs, err := app.Runs.ListRuns(ctx, limit)
				if err != nil {
					return err
				}
				return render(cmd, g, "runs", runs)
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of runs to list")
	return cmd
}
