package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lararachidi/agent-supply-chain/pkg/config"
	"github.com/lararachidi/agent-supply-chain/pkg/infrastructure/events"
	"github.com/lararachidi/agent-supply-chain/pkg/interfaces/cli/output"
)

// globalFlags are shared by every subcommand
type globalFlags struct {
	configPath string
	format     string
	outputDir  string
	verbose    bool
}

func (g *globalFlags) output() output.Config {
	return output.Config{Format: g.format, OutputDir: g.outputDir, Verbose: g.verbose}
}

// NewRootCommand builds the supplychain command tree
func NewRootCommand() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "supplychain",
		Short:         "Supply chain demand forecasting, raw material planning and transport optimization",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch g.format {
			case output.FormatText, output.FormatJSON, output.FormatCSV:
				return nil
			default:
				return fmt.Errorf("unsupported output format: %s", g.format)
			}
		},
	}
	root.PersistentFlags().StringVarP(&g.configPath, "config", "c", config.DefaultPath, "configuration file")
	root.PersistentFlags().StringVar(&g.format, "format", output.FormatText, "output format: text, json, csv")
	root.PersistentFlags().StringVar(&g.outputDir, "output", "", "directory for json and csv results (default stdout)")
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "print stage progress")

	root.AddCommand(
		newSetupCommand(g),
		newImportCommand(g),
		newForecastCommand(g),
		newDeriveRawCommand(g),
		newOptimizeCommand(g),
		newEmailsCommand(g),
		newRunCommand(g),
		newRunsCommand(g),
		newQueryCommand(g),
		newServeCommand(g),
	)
	return root
}

// Execute runs the CLI until it finishes or the process is interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCommand().ExecuteContext(ctx)
}

// withApp loads the configuration, builds the App and closes it once fn returns
func withApp(cmd *cobra.Command, g *globalFlags, fn func(ctx context.Context, app *App) error) error {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	app, err := NewApp(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			app.Log.Errorf("close: %v", err)
		}
	}()
	if g.verbose {
		if err := watchStages(app.Events, cmd.ErrOrStderr()); err != nil {
			app.Log.Warnf("stage progress unavailable: %v", err)
		}
	}
	return fn(cmd.Context(), app)
}

// watchStages prints pipeline progress as stage events arrive
func watchStages(store events.EventStore, w io.Writer) error {
	handler := &events.TypedHandler{
		Types: []string{events.StageStartedEvent, events.StageCompletedEvent, events.StageFailedEvent, events.ProductInfeasibleEvent},
		Fn: func(e events.Event) error {
			switch data := e.Data().(type) {
			case events.StageStarted:
				fmt.Fprintf(w, "🔧 %s started\n", data.Stage)
			case events.StageCompleted:
				fmt.Fprintf(w, "✅ %s completed in %v: %s\n", data.Stage, data.Duration, data.Detail)
			case events.StageFailed:
				fmt.Fprintf(w, "❌ %s failed: %s\n", data.Stage, data.Error)
			case events.ProductInfeasible:
				fmt.Fprintf(w, "⚠️  %s: %s\n", data.Product, data.Status)
			}
			return nil
		},
	}
	if err := store.Subscribe(handler.Types, handler); err != nil {
		return fmt.Errorf("subscribing to stage events: %w", err)
	}
	return nil
}

func render(cmd *cobra.Command, g *globalFlags, name string, result interface{}) error {
	return output.Write(cmd.OutOrStdout(), name, result, g.output())
}
