package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/JayJamieson/csv-dwh/pkg/catalog"
	"github.com/JayJamieson/csv-dwh/pkg/db"
	"github.com/JayJamieson/csv-dwh/pkg/models"
	"github.com/labstack/echo/v4"
)

const (
	defaultPageSize = 500
	defaultRunLimit = 20
)

var _ ServerInterface = (*Server)(nil)

// ListTables implements ServerInterface.
func (s *Server) ListTables(c echo.Context) error {
	tables, err := s.db.ListTables(c.Request().Context())
	if err != nil {
		return createErrorResponse(c, http.StatusInternalServerError, "Query error", err.Error())
	}
	if tables == nil {
		tables = []models.TableInfo{}
	}

	return c.JSON(http.StatusOK, TablesResponse{
		OK:     true,
		Tables: tables,
	})
}

// QueryTable implements ServerInterface. Parameter ranges and enums are
// checked by the request validator before this runs.
func (s *Server) QueryTable(c echo.Context, name TableName, params QueryTableParams) error {
	ctx := c.Request().Context()

	if name == "" {
		return createErrorResponse(c, http.StatusBadRequest, "Missing parameter", "Table name is required")
	}

	size := defaultPageSize
	if params.Size != nil && *params.Size > 0 {
		size = *params.Size
	}

	offset := 0
	if params.Offset != nil {
		offset = *params.Offset
	}

	var sortCol string
	sortDesc := false
	if params.Sort != nil {
		sortCol = *params.Sort
	}
	if params.SortDesc != nil && *params.SortDesc != "" {
		sortDesc = true
		if sortCol == "" {
			sortCol = *params.SortDesc
		}
	}

	shape := QueryTableParamsShapeObjects
	if params.Shape != nil {
		shape = *params.Shape
	}

	showRowID := params.Rowid == nil || *params.Rowid != QueryTableParamsRowidHide
	showTotal := params.Total == nil || *params.Total != QueryTableParamsTotalHide

	columns, rows, queryTime, err := s.db.QueryTable(ctx, models.TableQuery{
		TableName:  name,
		Limit:      size,
		Offset:     offset,
		SortColumn: sortCol,
		SortDesc:   sortDesc,
		ShowRowID:  showRowID,
		Shape:      string(shape),
	})
	if err != nil {
		if errors.Is(err, db.ErrTableNotFound) {
			return createErrorResponse(c, http.StatusNotFound, "Resource not found", err.Error())
		}
		return createErrorResponse(c, http.StatusInternalServerError, "Query error", err.Error())
	}

	resp := DataResponse{
		OK:      true,
		QueryMS: queryTime,
		Columns: columns,
		Rows:    rows,
	}

	if showTotal {
		resp.Total = len(rows)
	}

	return c.JSON(http.StatusOK, resp)
}

// TableColumns implements ServerInterface.
func (s *Server) TableColumns(c echo.Context, name TableName) error {
	columns, err := s.db.Columns(c.Request().Context(), name)
	if err != nil {
		if errors.Is(err, db.ErrTableNotFound) {
			return createErrorResponse(c, http.StatusNotFound, "Resource not found", err.Error())
		}
		return createErrorResponse(c, http.StatusInternalServerError, "Query error", err.Error())
	}
	return c.JSON(http.StatusOK, columns)
}

// ListRuns implements ServerInterface.
func (s *Server) ListRuns(c echo.Context, params ListRunsParams) error {
	if s.runs == nil {
		return createErrorResponse(c, http.StatusNotFound, "Catalog disabled", "No run catalog is configured")
	}

	limit := defaultRunLimit
	if params.Size != nil && *params.Size > 0 {
		limit = *params.Size
	}

	runs, err := s.runs.RecentRuns(c.Request().Context(), limit)
	if err != nil {
		return createErrorResponse(c, http.StatusInternalServerError, "Query error", err.Error())
	}
	if runs == nil {
		runs = []models.Run{}
	}

	return c.JSON(http.StatusOK, RunsResponse{OK: true, Runs: runs})
}

// GetRun implements ServerInterface.
func (s *Server) GetRun(c echo.Context, id string) error {
	if s.runs == nil {
		return createErrorResponse(c, http.StatusNotFound, "Catalog disabled", "No run catalog is configured")
	}

	ctx := c.Request().Context()

	run, err := s.runs.GetRun(ctx, id)
	if err != nil {
		if errors.Is(err, catalog.ErrRunNotFound) {
			return createErrorResponse(c, http.StatusNotFound, "Resource not found", err.Error())
		}
		return createErrorResponse(c, http.StatusInternalServerError, "Query error", err.Error())
	}

	events, err := s.runs.Events(ctx, id)
	if err != nil {
		return createErrorResponse(c, http.StatusInternalServerError, "Query error", err.Error())
	}
	if events == nil {
		events = []models.Event{}
	}

	return c.JSON(http.StatusOK, EventsResponse{OK: true, Run: run, Events: events})
}

func createErrorResponse(c echo.Context, status int, error string, message string) error {
	resp := ErrorResponse{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Error:     error,
		Message:   message,
	}
	return c.JSON(status, resp)
}
