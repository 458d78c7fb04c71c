package models

import (
	"time"
)

// Status is the outcome of one file in a load or model run.
type Status string

// Per-file statuses recorded in summaries and the run catalog.
const (
	StatusOK      Status = "ok"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// LoadResult is the outcome of converting and loading one CSV file.
type LoadResult struct {
	File      string `json:"file"`
	TableName string `json:"table_name"`
	Charset   string `json:"charset"`
	Converted bool   `json:"converted"`
	Status    Status `json:"status"`
	Rows      int64  `json:"rows"`
	Error     string `json:"error,omitempty"`
}

// ScriptResult is the outcome of executing one model script.
type ScriptResult struct {
	File   string `json:"file"`
	Status Status `json:"status"`
	Error  string `json:"error,omitempty"`
}

// TableInfo describes a table in the main schema of the warehouse.
type TableInfo struct {
	Name          string `json:"name"`
	ColumnCount   int64  `json:"column_count"`
	EstimatedSize int64  `json:"estimated_size"`
}

// ColumnInfo is one row of PRAGMA table_info.
type ColumnInfo struct {
	CID        int    `json:"cid"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	NotNull    bool   `json:"not_null"`
	DefaultVal any    `json:"default_value"`
	PK         bool   `json:"pk"`
}

// TableQuery selects one page of a table for the browser.
type TableQuery struct {
	TableName  string
	Limit      int
	Offset     int
	SortColumn string
	SortDesc   bool
	ShowRowID  bool
	Shape      string
}

// Run is one recorded execution of load or model.
type Run struct {
	ID         string     `json:"id"`
	Kind       string     `json:"kind"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// Event is the recorded outcome of one file within a run.
type Event struct {
	RunID     string    `json:"run_id"`
	Seq       int       `json:"seq"`
	Subject   string    `json:"subject"`
	Target    string    `json:"target,omitempty"`
	Status    Status    `json:"status"`
	Detail    string    `json:"detail,omitempty"`
	Rows      int64     `json:"rows"`
	CreatedAt time.Time `json:"created_at"`
}

// ErrorResponse is the JSON body of every browser error.
type ErrorResponse struct {
	Timestamp string `json:"timestamp"`
	Error     string `json:"error"`
	Message   string `json:"message"`
}

type TablesResponse struct {
	OK     bool        `json:"ok"`
	Tables []TableInfo `json:"tables"`
}

type RunsResponse struct {
	OK   bool  `json:"ok"`
	Runs []Run `json:"runs"`
}

type EventsResponse struct {
	OK     bool    `json:"ok"`
	Run    Run     `json:"run"`
	Events []Event `json:"events"`
}

type DataResponse struct {
	OK      bool     `json:"ok"`
	QueryMS float64  `json:"query_ms"`
	Columns []string `json:"columns"`
	Total   int      `json:"total,omitempty"`
	Rows    []any    `json:"rows"`
}
