package orchestration

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lararachidi/agent-supply-chain/pkg/application/dto"
	"github.com/lararachidi/agent-supply-chain/pkg/application/services/transport"
	"github.com/lararachidi/agent-supply-chain/pkg/config"
	"github.com/lararachidi/agent-supply-chain/pkg/domain/repositories"
	"github.com/lararachidi/agent-supply-chain/pkg/infrastructure/events"
	"github.com/lararachidi/agent-supply-chain/pkg/infrastructure/logger"
	"github.com/lararachidi/agent-supply-chain/pkg/infrastructure/metrics"
)

// Stage names
const (
	StageSetup       = "setup"
	StageForecast    = "forecast"
	StageRawMaterial = "raw_material"
	StageTransport   = "transport"
	StageEmails      = "emails"
)

// Run statuses
const (
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

type DataLoader interface {
	Generate(ctx context.Context, cfg config.GeneratorConfig, reset bool) (*dto.SetupResult, error)
}

type Forecaster interface {
	Run(ctx context.Context) (*dto.ForecastResult, error)
}

type RawMaterialDeriver interface {
	Derive(ctx context.Context) (*dto.RawMaterialResult, error)
}

type ShipmentOptimizer interface {
	Run(ctx context.Context) (*dto.TransportResult, error)
}

type EmailIndexer interface {
	Generate(ctx context.Context) (int, error)
	Index(ctx context.Context) (*dto.EmailIndexResult, error)
}

// Stages groups the services run by the pipeline
type Stages struct {
	Setup       DataLoader
	Forecast    Forecaster
	RawMaterial RawMaterialDeriver
	Transport   ShipmentOptimizer
	Emails      EmailIndexer
}

// Options selects the optional parts of a full run
type Options struct {
	// Generate writes a synthetic dataset before forecasting.
	Generate bool
	// Reset drops every table before generating.
	Reset          bool
	SkipEmails     bool
	GenerateEmails bool
}

// Pipeline runs the supply chain stages in order. Every stage records a run
// row, publishes events and reports its duration and outcome.
type Pipeline struct {
	stages    Stages
	generator config.GeneratorConfig
	runs      repositories.RunRepository
	events    events.EventStore
	log       logger.Logger
	metrics   metrics.Sink
}

// NewPipeline creates a new pipeline. eventStore may be nil.
func NewPipeline(
	stages Stages,
	generator config.GeneratorConfig,
	runs repositories.RunRepository,
	eventStore events.EventStore,
	log logger.Logger,
	sink metrics.Sink,
) *Pipeline {
	return &Pipeline{
		stages:    stages,
		generator: generator,
		runs:      runs,
		events:    eventStore,
		log:       logger.OrNop(log),
		metrics:   metrics.OrNop(sink),
	}
}

// RunAll runs setup when requested, then forecast, raw material derivation,
// transport optimization and email indexing. It stops at the first failing
// stage and returns the report of the stages run so far.
func (p *Pipeline) RunAll(ctx context.Context, opts Options) (*dto.PipelineReport, error) {
	report := &dto.PipelineReport{}
	var err error

	if opts.Generate {
		if report.Setup, err = p.RunSetup(ctx, opts.Reset, report); err != nil {
			return report, err
		}
	}
	if report.Forecast, err = p.RunForecast(ctx, report); err != nil {
		return report, err
	}
	if report.RawMaterial, err = p.RunRawMaterial(ctx, report); err != nil {
		return report, err
	}
	if report.Transport, err = p.RunTransport(ctx, report); err != nil {
		return report, err
	}
	if !opts.SkipEmails {
		if report.Emails, err = p.RunEmails(ctx, opts.GenerateEmails, report); err != nil {
			return report, err
		}
	}
	return report, nil
}

// RunSetup writes a synthetic dataset. report may be nil.
func (p *Pipeline) RunSetup(ctx context.Context, reset bool, report *dto.PipelineReport) (*dto.SetupResult, error) {
	return runStage(ctx, p, StageSetup, report, func(ctx context.Context, runID string) (*dto.SetupResult, string, error) {
		result, err := p.stages.Setup.Generate(ctx, p.generator, reset)
		if err != nil {
			return nil, "", err
		}
		p.publish(runID, events.DataGeneratedEvent, events.DataGenerated{
			Products:    result.Products,
			Wholesalers: result.Wholesalers,
			DemandRows:  result.DemandRows,
			BOMLines:    result.BOMLines,
		})
		return result, fmt.Sprintf("%d products, %d demand rows", result.Products, result.DemandRows), nil
	})
}

// RunForecast forecasts demand. report may be nil.
func (p *Pipeline) RunForecast(ctx context.Context, report *dto.PipelineReport) (*dto.ForecastResult, error) {
	return runStage(ctx, p, StageForecast, report, func(ctx context.Context, runID string) (*dto.ForecastResult, string, error) {
		result, err := p.stages.Forecast.Run(ctx)
		if err != nil {
			return nil, "", err
		}
		p.metrics.SetForecastSeries(result.Series)
		p.publish(runID, events.ForecastCompletedEvent, events.ForecastCompleted{
			Series:   result.Series,
			Points:   len(result.Points),
			DCDemand: len(result.DCDemand),
		})
		return result, fmt.Sprintf("%d series, mean rmse %.2f", result.Series, result.MeanRMSE), nil
	})
}

// RunRawMaterial derives raw material demand. report may be nil.
func (p *Pipeline) RunRawMaterial(ctx context.Context, report *dto.PipelineReport) (*dto.RawMaterialResult, error) {
	return runStage(ctx, p, StageRawMaterial, report, func(ctx context.Context, runID string) (*dto.RawMaterialResult, string, error) {
		result, err := p.stages.RawMaterial.Derive(ctx)
		if err != nil {
			return nil, "", err
		}
		derived := events.RawMaterialDerived{RawMaterials: len(result.Requirements)}
		for _, r := range result.Requirements {
			derived.TotalDemand += r.Demand
		}
		p.publish(runID, events.RawMaterialDerivedEvent, derived)
		return result, fmt.Sprintf("%d raw materials, %d units", derived.RawMaterials, derived.TotalDemand), nil
	})
}

// RunTransport optimizes shipments. report may be nil.
func (p *Pipeline) RunTransport(ctx context.Context, report *dto.PipelineReport) (*dto.TransportResult, error) {
	return runStage(ctx, p, StageTransport, report, func(ctx context.Context, runID string) (*dto.TransportResult, string, error) {
		result, err := p.stages.Transport.Run(ctx)
		if err != nil {
			return nil, "", err
		}
		for _, plan := range result.Plans {
			if plan.Status != transport.StatusOptimal {
				p.publish(runID, events.ProductInfeasibleEvent, events.ProductInfeasible{Product: plan.Product, Status: plan.Status})
			}
		}
		p.publish(runID, events.ShipmentOptimizedEvent, events.ShipmentOptimized{
			Products:   len(result.Plans),
			Optimal:    result.Optimal,
			Infeasible: len(result.Infeasible),
			Skipped:    len(result.Skipped),
		})
		return result, fmt.Sprintf("%d optimal, %d infeasible, cost %s",
			result.Optimal, len(result.Infeasible), result.TotalCost.StringFixed(2)), nil
	})
}

// RunEmails optionally regenerates the emails, then indexes them. report may be nil.
func (p *Pipeline) RunEmails(ctx context.Context, generate bool, report *dto.PipelineReport) (*dto.EmailIndexResult, error) {
	return runStage(ctx, p, StageEmails, report, func(ctx context.Context, runID string) (*dto.EmailIndexResult, string, error) {
		if generate {
			if _, err := p.stages.Emails.Generate(ctx); err != nil {
				return nil, "", err
			}
		}
		result, err := p.stages.Emails.Index(ctx)
		if err != nil {
			return nil, "", err
		}
		p.publish(runID, events.EmailsIndexedEvent, events.EmailsIndexed{
			Emails:  result.Emails,
			Indexed: result.Indexed,
			Model:   result.Model,
		})
		return result, fmt.Sprintf("%d emails, %d indexed", result.Emails, result.Indexed), nil
	})
}

func runStage[T any](
	ctx context.Context,
	p *Pipeline,
	stage string,
	report *dto.PipelineReport,
	fn func(ctx context.Context, runID string) (T, string, error),
) (T, error) {
	var zero T
	run := &repositories.PipelineRun{
		ID:        uuid.NewString(),
		Stage:     stage,
		StartedAt: time.Now().UTC(),
		Status:    StatusRunning,
	}
	if err := p.runs.StartRun(ctx, run); err != nil {
		return zero, fmt.Errorf("failed to record %s run: %w", stage, err)
	}
	p.publish(run.ID, events.StageStartedEvent, events.StageStarted{RunID: run.ID, Stage: stage})
	p.log.Infof("stage %s started (run %s)", stage, run.ID)

	result, detail, err := fn(ctx, run.ID)
	duration := time.Since(run.StartedAt)
	p.metrics.ObserveStage(stage, duration, err)

	status := StatusSucceeded
	if err != nil {
		status, detail = StatusFailed, err.Error()
		p.publish(run.ID, events.StageFailedEvent, events.StageFailed{RunID: run.ID, Stage: stage, Error: detail})
		p.log.Errorf("stage %s failed after %s: %v", stage, duration.Round(time.Millisecond), err)
	} else {
		p.publish(run.ID, events.StageCompletedEvent, events.StageCompleted{RunID: run.ID, Stage: stage, Duration: duration, Detail: detail})
		p.log.Infof("stage %s completed in %s: %s", stage, duration.Round(time.Millisecond), detail)
	}

	// the run row is closed even when ctx was cancelled
	if ferr := p.runs.FinishRun(context.WithoutCancel(ctx), run.ID, status, detail, time.Now().UTC()); ferr != nil {
		p.log.Warnf("failed to record end of %s run %s: %v", stage, run.ID, ferr)
	}
	if report != nil {
		report.Stages = append(report.Stages, dto.StageReport{
			RunID:    run.ID,
			Stage:    stage,
			Status:   status,
			Detail:   detail,
			Duration: duration,
		})
	}

	if err != nil {
		return zero, fmt.Errorf("stage %s: %w", stage, err)
	}
	return result, nil
}

func (p *Pipeline) publish(runID, eventType string, data interface{}) {
	if p.events == nil {
		return
	}
	if err := p.events.AppendEvent(runID, events.NewEvent(eventType, runID, data)); err != nil {
		p.log.Warnf("failed to publish %s: %v", eventType, err)
	}
}
