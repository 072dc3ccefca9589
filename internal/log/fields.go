package log

// Common field names for structured logging
const (
	FieldComponent    = "component"
	FieldRequestID    = "request_id"
	FieldClientIP     = "client_ip"
	FieldMethod       = "method"
	FieldPath         = "path"
	FieldQuery        = "query"
	FieldStatusCode   = "status_code"
	FieldDuration     = "duration_ms"
	FieldUserAgent    = "user_agent"
	FieldSuccess      = "success"
	FieldError        = "error"
	FieldOperation    = "operation"
	FieldProjectID    = "project_id"
	FieldProjectName  = "project_name"
	FieldStatusFilter = "status_filter"
	FieldSearchTerm   = "search_term"
	FieldResultCount  = "result_count"
	FieldReportPages  = "report_pages"
	FieldReportBytes  = "report_bytes"
	FieldCacheHit     = "cache_hit"
)

const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentDashboard = "dashboard"
	ComponentReport    = "report"
	ComponentCatalog   = "catalog"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentCache     = "cache"
	ComponentSecurity  = "security"
	ComponentRateLimit = "rate_limit"
	ComponentTrace     = "trace"
	ComponentBackend   = "backend"
	ComponentTemplate  = "template"
	ComponentCLI       = "cli"
)

const (
	OpLoad     = "load"
	OpFilter   = "filter"
	OpKPIs     = "kpis"
	OpReport   = "report"
	OpExport   = "export"
	OpApprove  = "approve"
	OpRender   = "render"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// LogFields is a builder for structured log attributes.
type LogFields map[string]any

func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

func (f LogFields) WithRequestID(requestID string) LogFields {
	f[FieldRequestID] = requestID
	return f
}

func (f LogFields) WithClientIP(ip string) LogFields {
	f[FieldClientIP] = ip
	return f
}

func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

func (f LogFields) WithProject(id, name string) LogFields {
	f[FieldProjectID] = id
	if name != "" {
		f[FieldProjectName] = name
	}
	return f
}

// WithFilter records the list filter and how many projects it kept.
func (f LogFields) WithFilter(status, term string, results int) LogFields {
	f[FieldStatusFilter] = status
	f[FieldSearchTerm] = term
	f[FieldResultCount] = results
	return f
}

func (f LogFields) WithReport(pages, size int, cacheHit bool) LogFields {
	f[FieldReportPages] = pages
	f[FieldReportBytes] = size
	f[FieldCacheHit] = cacheHit
	return f
}

func (f LogFields) WithHTTPRequest(method, path, query, userAgent string) LogFields {
	f[FieldMethod] = method
	f[FieldPath] = path
	f[FieldQuery] = query
	if userAgent != "" {
		f[FieldUserAgent] = userAgent
	}
	return f
}

func (f LogFields) WithHTTPResponse(statusCode int, durationMs int64) LogFields {
	f[FieldStatusCode] = statusCode
	f[FieldDuration] = durationMs
	f[FieldSuccess] = statusCode < 400
	return f
}

// ToSlice flattens the fields into slog key/value arguments.
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
