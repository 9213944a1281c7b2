package api

import (
	"encoding/json"
	"time"
)

// Page is the paginated list shape returned by the datasource and query endpoints.
type Page[T any] struct {
	Total    int64 `json:"total"`
	List     []T   `json:"list"`
	PageSize int   `json:"pageSize"`
	Current  int   `json:"current"`
}

// PageParams selects a page. Zero values fall back to page 1 of DefaultPageSize.
type PageParams struct {
	Current  int
	PageSize int
}

const DefaultPageSize = 10

func (p PageParams) normalized() PageParams {
	if p.Current <= 0 {
		p.Current = 1
	}

	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}

	return p
}

type DatasourceType string

const (
	DatasourceMySQL DatasourceType = "MySQL"
	DatasourceDB2   DatasourceType = "DB2"
)

type DatasourceStatus string

const (
	DatasourceActive   DatasourceStatus = "active"
	DatasourceInactive DatasourceStatus = "inactive"
	DatasourceError    DatasourceStatus = "error"
)

type Datasource struct {
	ID          string           `json:"id" yaml:"id"`
	Name        string           `json:"name" yaml:"name"`
	Type        DatasourceType   `json:"type" yaml:"type"`
	Host        string           `json:"host" yaml:"host"`
	Port        int              `json:"port" yaml:"port"`
	Database    string           `json:"database" yaml:"database"`
	Username    string           `json:"username" yaml:"username"`
	Status      DatasourceStatus `json:"status" yaml:"status"`
	Description string           `json:"description,omitempty" yaml:"description,omitempty"`
	CreatedAt   string           `json:"createdAt" yaml:"createdAt"`
	UpdatedAt   string           `json:"updatedAt" yaml:"updatedAt"`
}

// DatasourceInput is the body of create and update calls. Password is write-only.
type DatasourceInput struct {
	Name        string         `json:"name,omitempty"`
	Type        DatasourceType `json:"type,omitempty"`
	Host        string         `json:"host,omitempty"`
	Port        int            `json:"port,omitempty"`
	Database    string         `json:"database,omitempty"`
	Username    string         `json:"username,omitempty"`
	Password    string         `json:"password,omitempty"`
	Description string         `json:"description,omitempty"`
}

type DatasourceFilter struct {
	PageParams
	Keyword string
	Type    DatasourceType
	Status  DatasourceStatus
}

type ConnectionTestResult struct {
	Success bool   `json:"success" yaml:"success"`
	Message string `json:"message" yaml:"message"`
	Details string `json:"details,omitempty" yaml:"details,omitempty"`
}

type QueryStatus string

const (
	QueryDraft     QueryStatus = "draft"
	QueryPublished QueryStatus = "published"
	QueryArchived  QueryStatus = "archived"
)

type QueryCondition struct {
	Field        string         `json:"field" yaml:"field"`
	Label        string         `json:"label,omitempty" yaml:"label,omitempty"`
	Type         string         `json:"type" yaml:"type"`
	Required     bool           `json:"required,omitempty" yaml:"required,omitempty"`
	DefaultValue any            `json:"defaultValue,omitempty" yaml:"defaultValue,omitempty"`
	Hidden       bool           `json:"hidden,omitempty" yaml:"hidden,omitempty"`
	Order        int            `json:"order,omitempty" yaml:"order,omitempty"`
	Options      []OptionChoice `json:"options,omitempty" yaml:"options,omitempty"`
}

type OptionChoice struct {
	Label string `json:"label" yaml:"label"`
	Value any    `json:"value" yaml:"value"`
}

type QueryColumn struct {
	Field    string `json:"field" yaml:"field"`
	Label    string `json:"label,omitempty" yaml:"label,omitempty"`
	Type     string `json:"type" yaml:"type"`
	Width    int    `json:"width,omitempty" yaml:"width,omitempty"`
	Sortable bool   `json:"sortable,omitempty" yaml:"sortable,omitempty"`
	Hidden   bool   `json:"hidden,omitempty" yaml:"hidden,omitempty"`
	Format   string `json:"format,omitempty" yaml:"format,omitempty"`
	Mask     bool   `json:"mask,omitempty" yaml:"mask,omitempty"`
}

type QuerySort struct {
	Field string `json:"field" yaml:"field"`
	Order string `json:"order" yaml:"order"`
}

type QueryPagination struct {
	Enabled  bool `json:"enabled" yaml:"enabled"`
	PageSize int  `json:"pageSize" yaml:"pageSize"`
}

type QueryConfig struct {
	Conditions []QueryCondition `json:"conditions" yaml:"conditions"`
	Columns    []QueryColumn    `json:"columns" yaml:"columns"`
	Sorts      []QuerySort      `json:"sorts" yaml:"sorts"`
	Pagination QueryPagination  `json:"pagination" yaml:"pagination"`
}

// Query is both the list item and the detail; SQL and Config are only set on the detail.
type Query struct {
	ID             string       `json:"id" yaml:"id"`
	Name           string       `json:"name" yaml:"name"`
	Description    string       `json:"description,omitempty" yaml:"description,omitempty"`
	DatasourceID   string       `json:"dataSourceId" yaml:"dataSourceId"`
	DatasourceName string       `json:"dataSourceName,omitempty" yaml:"dataSourceName,omitempty"`
	SQL            string       `json:"sql,omitempty" yaml:"sql,omitempty"`
	Config         *QueryConfig `json:"config,omitempty" yaml:"config,omitempty"`
	Status         QueryStatus  `json:"status" yaml:"status"`
	Creator        string       `json:"creator" yaml:"creator"`
	CreatedAt      string       `json:"createdAt" yaml:"createdAt"`
	UpdatedAt      string       `json:"updatedAt" yaml:"updatedAt"`
}

type QueryInput struct {
	Name         string       `json:"name"`
	Description  string       `json:"description,omitempty"`
	DatasourceID string       `json:"dataSourceId"`
	SQL          string       `json:"sql"`
	Config       *QueryConfig `json:"config,omitempty"`
}

type QueryFilter struct {
	PageParams
	Keyword      string
	Status       QueryStatus
	DatasourceID string
}

type ExecuteParams struct {
	Conditions map[string]any `json:"conditions,omitempty"`
	Page       int            `json:"page,omitempty"`
	PageSize   int            `json:"pageSize,omitempty"`
}

type ExecutionResult struct {
	ExecutionTime int64            `json:"executionTime" yaml:"executionTime"`
	AffectedRows  int64            `json:"affectedRows" yaml:"affectedRows"`
	Total         int64            `json:"total,omitempty" yaml:"total,omitempty"`
	Data          []map[string]any `json:"data" yaml:"data"`
}

// Execution is one run of a saved query.
type Execution struct {
	ID           string         `json:"id" yaml:"id"`
	QueryID      string         `json:"queryId" yaml:"queryId"`
	QueryName    string         `json:"queryName" yaml:"queryName"`
	Executor     string         `json:"executor" yaml:"executor"`
	Status       string         `json:"status" yaml:"status"`
	StartTime    string         `json:"startTime" yaml:"startTime"`
	EndTime      string         `json:"endTime,omitempty" yaml:"endTime,omitempty"`
	Duration     int64          `json:"duration,omitempty" yaml:"duration,omitempty"`
	AffectedRows int64          `json:"affectedRows,omitempty" yaml:"affectedRows,omitempty"`
	Error        string         `json:"error,omitempty" yaml:"error,omitempty"`
	Conditions   map[string]any `json:"conditions,omitempty" yaml:"conditions,omitempty"`
}

type ExecutionFilter struct {
	PageParams
	QueryID   string
	Status    string
	StartTime string
	EndTime   string
}

// History is one executed statement, whether or not it belongs to a saved query.
type History struct {
	ID             string `json:"id" yaml:"id"`
	SQL            string `json:"sql" yaml:"sql"`
	DatasourceID   string `json:"dataSourceId" yaml:"dataSourceId"`
	DatasourceName string `json:"dataSourceName" yaml:"dataSourceName"`
	ExecutionTime  int64  `json:"executionTime" yaml:"executionTime"`
	AffectedRows   int64  `json:"affectedRows" yaml:"affectedRows"`
	Status         string `json:"status" yaml:"status"`
	ErrorMessage   string `json:"errorMessage,omitempty" yaml:"errorMessage,omitempty"`
	Parameters     string `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	ExecutionIP    string `json:"executionIp" yaml:"executionIp"`
	CreatedBy      string `json:"createdBy" yaml:"createdBy"`
	CreatedAt      string `json:"createdAt" yaml:"createdAt"`
}

// HistoryPage is the paginated shape of the history endpoint, which is zero-based.
type HistoryPage struct {
	Content       []History `json:"content"`
	TotalElements int64     `json:"totalElements"`
	TotalPages    int       `json:"totalPages"`
	Size          int       `json:"size"`
	Number        int       `json:"number"`
}

type HistoryFilter struct {
	Page         int // Zero-based
	Size         int
	DatasourceID string
	Status       string
	StartTime    time.Time
	EndTime      time.Time
}

type StatsFilter struct {
	DatasourceID string
	StartTime    time.Time
	EndTime      time.Time
}

type QueryStats struct {
	TotalQueries         int64   `json:"totalQueries" yaml:"totalQueries"`
	SuccessQueries       int64   `json:"successQueries" yaml:"successQueries"`
	FailedQueries        int64   `json:"failedQueries" yaml:"failedQueries"`
	AverageExecutionTime float64 `json:"averageExecutionTime" yaml:"averageExecutionTime"`
	MaxExecutionTime     int64   `json:"maxExecutionTime" yaml:"maxExecutionTime"`
	MinExecutionTime     int64   `json:"minExecutionTime" yaml:"minExecutionTime"`
	TotalAffectedRows    int64   `json:"totalAffectedRows" yaml:"totalAffectedRows"`
}

type SQLParseRequest struct {
	SQL          string `json:"sql"`
	DatasourceID string `json:"dataSourceId,omitempty"`
}

// SQLParseResult is kept loosely typed; the parser reply varies with the statement kind.
type SQLParseResult struct {
	Valid      bool            `json:"valid" yaml:"valid"`
	Type       string          `json:"type,omitempty" yaml:"type,omitempty"`
	Tables     []string        `json:"tables,omitempty" yaml:"tables,omitempty"`
	Columns    []string        `json:"columns,omitempty" yaml:"columns,omitempty"`
	Parameters []string        `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Error      string          `json:"error,omitempty" yaml:"error,omitempty"`
	Extra      json.RawMessage `json:"extra,omitempty" yaml:"-"`
}

type ColumnInfo struct {
	Name     string `json:"name" yaml:"name"`
	Type     string `json:"type" yaml:"type"`
	Nullable bool   `json:"nullable" yaml:"nullable"`
	Comment  string `json:"comment,omitempty" yaml:"comment,omitempty"`
}

type TableInfo struct {
	Name    string       `json:"name" yaml:"name"`
	Comment string       `json:"comment,omitempty" yaml:"comment,omitempty"`
	Columns []ColumnInfo `json:"columns,omitempty" yaml:"columns,omitempty"`
}

type UserInfo struct {
	ID          string   `json:"id" yaml:"id"`
	Username    string   `json:"username" yaml:"username"`
	Email       string   `json:"email" yaml:"email"`
	Avatar      string   `json:"avatar,omitempty" yaml:"avatar,omitempty"`
	Roles       []string `json:"roles" yaml:"roles"`
	Permissions []string `json:"permissions" yaml:"permissions"`
}

type LoginResult struct {
	Token    string   `json:"token"`
	UserInfo UserInfo `json:"userInfo"`
}
