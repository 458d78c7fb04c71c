// Package loader converts a directory of CSV files to UTF-8 and creates one
// DuckDB table per file.
package loader

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/JayJamieson/csv-dwh/pkg/catalog"
	"github.com/JayJamieson/csv-dwh/pkg/logging"
	"github.com/JayJamieson/csv-dwh/pkg/models"
	"github.com/JayJamieson/csv-dwh/pkg/render"
	"github.com/JayJamieson/csv-dwh/pkg/transcode"
)

const DefaultPreviewRows = 5

// Store is the part of the database the loader needs.
type Store interface {
	CreateTableFromCSV(ctx context.Context, tableName, csvPath string, replace bool) error
	CountRows(ctx context.Context, tableName string) (int64, error)
	Preview(ctx context.Context, tableName string, limit int) ([]string, [][]string, error)
}

type Options struct {
	// Replace recreates tables that already exist.
	Replace bool
	// PreviewRows is how many file lines and table rows to print; 0 disables previews.
	PreviewRows int
}

type Loader struct {
	store    Store
	recorder catalog.Recorder
	logger   logging.Logger
	opts     Options
	convert  func(path string) (transcode.Detection, error)
}

func New(store Store, recorder catalog.Recorder, logger logging.Logger, opts Options) *Loader {
	if recorder == nil {
		recorder = catalog.Discard
	}
	return &Loader{
		store:    store,
		recorder: recorder,
		logger:   logger,
		opts:     opts,
		convert:  transcode.ConvertFile,
	}
}

type Summary struct {
	RunID   string
	Results []models.LoadResult
}

func (s Summary) Loaded() int {
	n := 0
	for _, r := range s.Results {
		if r.Status == models.StatusOK {
			n++
		}
	}
	return n
}

func (s Summary) Failed() int {
	return len(s.Results) - s.Loaded()
}

// TableName derives the table name from the file name without its extension.
func TableName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// DiscoverCSV lists the *.csv files directly inside dir in lexical order.
func DiscoverCSV(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read data directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("failed to read data directory: %s is not a directory", dir)
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, fmt.Errorf("failed to list CSV files: %w", err)
	}
	return files, nil
}

// Run converts every CSV in dir and then loads each one into its own table.
// Per-file failures are logged and recorded; only discovery errors are returned.
func (l *Loader) Run(ctx context.Context, dir string) (Summary, error) {
	files, err := DiscoverCSV(dir)
	if err != nil {
		return Summary{}, err
	}

	recorder := l.recorder
	runID, err := recorder.StartRun(ctx, catalog.KindLoad)
	if err != nil {
		l.logger.Warnf("catalog unavailable, run will not be recorded: %v", err)
		recorder = catalog.Discard
		runID, _ = recorder.StartRun(ctx, catalog.KindLoad)
	}

	if len(files) == 0 {
		l.logger.Warnf("no CSV files found in %s", dir)
	}

	results := make([]models.LoadResult, len(files))
	for i, file := range files {
		results[i] = l.convertFile(file)
	}

	for i := range results {
		if err := ctx.Err(); err != nil {
			return Summary{RunID: runID, Results: results[:i]}, err
		}

		l.loadFile(ctx, &results[i])

		event := models.Event{
			RunID:   runID,
			Seq:     i + 1,
			Subject: filepath.Base(results[i].File),
			Target:  results[i].TableName,
			Status:  results[i].Status,
			Detail:  results[i].Error,
			Rows:    results[i].Rows,
		}
		if err := recorder.Record(ctx, event); err != nil {
			l.logger.Warnf("failed to record %s: %v", event.Subject, err)
		}
	}

	if err := recorder.FinishRun(ctx, runID); err != nil {
		l.logger.Warnf("failed to finish run %s: %v", runID, err)
	}

	return Summary{RunID: runID, Results: results}, nil
}

func (l *Loader) convertFile(file string) models.LoadResult {
	result := models.LoadResult{
		File:      file,
		TableName: TableName(file),
	}

	detected, err := l.convert(file)
	result.Charset = detected.Charset
	if err != nil {
		l.logger.Errorf("error converting %s: %v", file, err)
		result.Error = fmt.Sprintf("convert: %v", err)
		return result
	}

	result.Converted = true
	l.logger.Infof("converted %s from %s to UTF-8", file, detected.Charset)
	l.logger.Debugf("charset %s detected with confidence %d (language %q)",
		detected.Charset, detected.Confidence, detected.Language)
	return result
}

func (l *Loader) loadFile(ctx context.Context, result *models.LoadResult) {
	l.logger.Infof("creating table %s from %s", result.TableName, result.File)

	if l.opts.PreviewRows > 0 {
		l.previewFile(result.File)
	}

	if err := l.store.CreateTableFromCSV(ctx, result.TableName, result.File, l.opts.Replace); err != nil {
		l.logger.Errorf("error creating table %s: %v", result.TableName, err)
		result.Status = models.StatusFailed
		result.Error = joinErrors(result.Error, err.Error())
		return
	}

	result.Status = models.StatusOK

	rows, err := l.store.CountRows(ctx, result.TableName)
	if err != nil {
		l.logger.Warnf("could not count rows of %s: %v", result.TableName, err)
	}
	result.Rows = rows
	l.logger.Infof("table %s created with %d rows", result.TableName, rows)

	if l.opts.PreviewRows > 0 {
		l.previewTable(ctx, result.TableName)
	}
}

func (l *Loader) previewFile(file string) {
	lines, err := HeadLines(file, l.opts.PreviewRows)
	if err != nil {
		l.logger.Warnf("could not preview %s: %v", file, err)
		return
	}
	l.logger.Infof("first %d lines of %s:\n%s", len(lines), filepath.Base(file), strings.Join(lines, "\n"))
}

func (l *Loader) previewTable(ctx context.Context, tableName string) {
	columns, rows, err := l.store.Preview(ctx, tableName, l.opts.PreviewRows)
	if err != nil {
		l.logger.Warnf("could not preview table %s: %v", tableName, err)
		return
	}
	l.logger.Infof("first %d rows of %s:\n%s", len(rows), tableName, render.Table(columns, rows))
}

// HeadLines returns up to n lines of the file with any leading BOM and
// trailing whitespace removed.
func HeadLines(path string, n int) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for len(lines) < n && scanner.Scan() {
		line := scanner.Bytes()
		if len(lines) == 0 {
			line = bytes.TrimPrefix(line, transcode.BOM)
		}
		lines = append(lines, strings.TrimSpace(string(line)))
	}
	if err := scanner.Err(); err != nil {
		return lines, err
	}
	return lines, nil
}

func joinErrors(prev, next string) string {
	if prev == "" {
		return next
	}
	return prev + "; " + next
}
