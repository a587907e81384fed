package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lararachidi/agent-supply-chain/pkg/application/dto"
	"github.com/lararachidi/agent-supply-chain/pkg/application/services/orchestration"
	"github.com/lararachidi/agent-supply-chain/pkg/infrastructure/events"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cfg := `
storage:
  dir: ` + filepath.Join(dir, "data") + `
logging:
  level: error
  format: json
generator:
  plants: 2
  products: 3
  distribution_centers: 2
  min_wholesalers: 3
  max_wholesalers: 4
  weeks: 60
emails:
  count: 10
  dimensions: 16
transport:
  workers: 2
`
	path := filepath.Join(dir, "supplychain.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o600))
	return path
}

func execute(t *testing.T, args ...string) ([]byte, error) {
	t.Helper()
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.Bytes(), err
}

func TestCommands_SetupRunAndRuns(t *testing.T) {
	cfg := writeConfig(t)

	out, err := execute(t, "-c", cfg, "--format", "json", "setup", "--reset")
	require.NoError(t, err)
	var setup dto.SetupResult
	require.NoError(t, json.Unmarshal(out, &setup))
	assert.Equal(t, 3, setup.Products)
	assert.Equal(t, 2, setup.Plants)
	assert.Positive(t, setup.DemandRows)

	out, err = execute(t, "-c", cfg, "--format", "json", "run", "--skip-emails")
	require.NoError(t, err)
	var report dto.PipelineReport
	require.NoError(t, json.Unmarshal(out, &report))
	require.Len(t, report.Stages, 3)
	for _, stage := range report.Stages {
		assert.Equal(t, orchestration.StatusSucceeded, stage.Status, stage.Stage)
	}
	require.NotNil(t, report.Transport)
	assert.Equal(t, 3, len(report.Transport.Plans)+len(report.Transport.Skipped))

	out, err = execute(t, "-c", cfg, "--format", "json", "runs", "--limit", "10")
	require.NoError(t, err)
	var runs []map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &runs))
	assert.Len(t, runs, 4)
}

func TestCommands_EmailsAndSearch(t *testing.T) {
	cfg := writeConfig(t)

	out, err := execute(t, "-c", cfg, "--format", "json", "emails", "--generate")
	require.NoError(t, err)
	var indexed dto.EmailIndexResult
	require.NoError(t, json.Unmarshal(out, &indexed))
	assert.Equal(t, 10, indexed.Emails)
	assert.Equal(t, 10, indexed.Indexed)
	assert.Equal(t, "hashing-16", indexed.Model)

	out, err = execute(t, "-c", cfg, "--format", "csv", "query", "emails", "-k", "2", "shipment", "delay")
	require.NoError(t, err)
	assert.Contains(t, string(out), "date,similarity_score,content")
}

func TestCommands_Errors(t *testing.T) {
	cfg := writeConfig(t)

	_, err := execute(t, "-c", cfg, "--format", "xml", "forecast")
	assert.ErrorContains(t, err, "unsupported output format")

	_, err = execute(t, "-c", cfg, "query", "revenue-risk", "raw_1", "lots")
	assert.ErrorContains(t, err, "not an integer")

	_, err = execute(t, "-c", cfg, "query", "raw-from-product")
	assert.Error(t, err)

	_, err = execute(t, "-c", filepath.Join(t.TempDir(), "missing.yaml"), "forecast")
	assert.ErrorContains(t, err, "load config")
}

type closedEventStore struct {
	events.EventStore
}

func (closedEventStore) Subscribe([]string, events.EventHandler) error {
	return errors.New("store closed")
}

func TestWatchStages(t *testing.T) {
	var buf bytes.Buffer
	store := events.NewInMemoryEventStore(nil)
	require.NoError(t, watchStages(store, &buf))
	require.NoError(t, store.AppendEvent("run-1", events.NewEvent(events.StageStartedEvent, "run-1", events.StageStarted{RunID: "run-1", Stage: "forecast"})))
	assert.Contains(t, buf.String(), "forecast started")

	err := watchStages(closedEventStore{}, io.Discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store closed")
}
