// Package modeler builds the dimensional model by executing a fixed,
// ordered list of SQL scripts against the loaded database.
package modeler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/JayJamieson/csv-dwh/pkg/catalog"
	"github.com/JayJamieson/csv-dwh/pkg/logging"
	"github.com/JayJamieson/csv-dwh/pkg/models"
)

// Scripts is the execution order of the model. Dimensions come before the
// facts that reference them.
var Scripts = []string{
	"dim_suscripciones.sql",
	"dim_cuentas.sql",
	"dim_contenidos.sql",
	"dim_tiempo_dia.sql",
	"fact_creacion_contenido.sql",
	"fact_cuentas_suscripcion.sql",
}

// Executor runs one SQL batch.
type Executor interface {
	ExecScript(ctx context.Context, script string) error
}

type Runner struct {
	exec     Executor
	dir      string
	scripts  []string
	recorder catalog.Recorder
	logger   logging.Logger
}

// New returns a Runner that executes Scripts from dir.
func New(exec Executor, dir string, recorder catalog.Recorder, logger logging.Logger) *Runner {
	if recorder == nil {
		recorder = catalog.Discard
	}
	return &Runner{
		exec:     exec,
		dir:      dir,
		scripts:  Scripts,
		recorder: recorder,
		logger:   logger,
	}
}

type Summary struct {
	RunID   string
	Results []models.ScriptResult
}

func (s Summary) Count(status models.Status) int {
	n := 0
	for _, r := range s.Results {
		if r.Status == status {
			n++
		}
	}
	return n
}

// Run executes every listed script in order. A missing script is skipped and
// a failing script is logged; neither stops the scripts after it and nothing
// already executed is rolled back.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	recorder := r.recorder
	runID, err := recorder.StartRun(ctx, catalog.KindModel)
	if err != nil {
		r.logger.Warnf("catalog unavailable, run will not be recorded: %v", err)
		recorder = catalog.Discard
		runID, _ = recorder.StartRun(ctx, catalog.KindModel)
	}

	results := make([]models.ScriptResult, 0, len(r.scripts))
	for i, name := range r.scripts {
		if err := ctx.Err(); err != nil {
			return Summary{RunID: runID, Results: results}, err
		}

		result := r.runScript(ctx, name)
		results = append(results, result)

		event := models.Event{
			RunID:   runID,
			Seq:     i + 1,
			Subject: name,
			Status:  result.Status,
			Detail:  result.Error,
		}
		if err := recorder.Record(ctx, event); err != nil {
			r.logger.Warnf("failed to record %s: %v", name, err)
		}
	}

	if err := recorder.FinishRun(ctx, runID); err != nil {
		r.logger.Warnf("failed to finish run %s: %v", runID, err)
	}

	return Summary{RunID: runID, Results: results}, nil
}

func (r *Runner) runScript(ctx context.Context, name string) models.ScriptResult {
	path := filepath.Join(r.dir, name)
	result := models.ScriptResult{File: path}

	script, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			r.logger.Warnf("file not found: %s", path)
			result.Status = models.StatusSkipped
			result.Error = "not found"
			return result
		}
		r.logger.Errorf("error reading %s: %v", path, err)
		result.Status = models.StatusFailed
		result.Error = fmt.Sprintf("read: %v", err)
		return result
	}

	if err := r.exec.ExecScript(ctx, string(script)); err != nil {
		r.logger.Errorf("error executing %s: %v", path, err)
		result.Status = models.StatusFailed
		result.Error = err.Error()
		return result
	}

	r.logger.Infof("executed: %s", path)
	result.Status = models.StatusOK
	return result
}
