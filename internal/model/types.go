// Package model holds the value types exchanged between clients, pipelines,
// and the orchestrator. Every record here is owned by its constructing
// caller and discarded after serialization — there are no cyclic references.
package model

// Registry identifies a package registry protocol.
type Registry string

const (
	RegistryNPM    Registry = "npm"
	RegistryPyPI   Registry = "pypi"
	RegistryCrates Registry = "crates"
	RegistryGo     Registry = "go"
)

// SearchHit is one ranked result from the meta-search backend.
type SearchHit struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Snippet string  `json:"snippet"`
	Engine  string  `json:"engine,omitempty"`
	Score   float64 `json:"score,omitempty"`
}

// PackageInfo describes a single package as reported by a registry.
type PackageInfo struct {
	Name                string   `json:"name"`
	Registry            Registry `json:"registry"`
	Version             string   `json:"version"`
	Description         string   `json:"description,omitempty"`
	License             string   `json:"license,omitempty"`
	Downloads           string   `json:"downloads,omitempty"`
	LastUpdated         string   `json:"last_updated,omitempty"`
	Repository          string   `json:"repository,omitempty"`
	DependenciesCount   int      `json:"dependencies_count,omitempty"`
	Homepage            string   `json:"homepage,omitempty"`
}

// Commit is a single repository commit.
type Commit struct {
	SHA     string `json:"sha"`
	Message string `json:"message"`
	Author  string `json:"author"`
	Date    string `json:"date"`
}

// RepoInfo describes a source repository.
type RepoInfo struct {
	FullName      string   `json:"full_name"`
	Description   string   `json:"description,omitempty"`
	Stars         int      `json:"stars"`
	Forks         int      `json:"forks"`
	Watchers      int      `json:"watchers"`
	OpenIssues    int      `json:"open_issues"`
	OpenPRs       *int     `json:"open_prs,omitempty"`
	Language      string   `json:"language,omitempty"`
	License       string   `json:"license,omitempty"`
	LastUpdated   string   `json:"last_updated"`
	Topics        []string `json:"topics,omitempty"`
	Homepage      string   `json:"homepage,omitempty"`
	RecentCommits []Commit `json:"recent_commits,omitempty"`
}

// ImageResult is a single stock-image hit.
type ImageResult struct {
	Tags       []string `json:"tags"`
	Width      int      `json:"width"`
	Height     int      `json:"height"`
	Views      int      `json:"views"`
	Downloads  int      `json:"downloads"`
	Likes      int      `json:"likes"`
	User       string   `json:"user"`
	PreviewURL string   `json:"preview_url"`
	LargeURL   string   `json:"large_url"`
	FullHDURL  string   `json:"full_hd_url,omitempty"`
}

// Language is a detected programming language.
type Language string

const (
	LangPython     Language = "python"
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
	LangRust       Language = "rust"
	LangJava       Language = "java"
	LangGo         Language = "go"
	LangUnknown    Language = "unknown"
)

// Framework is a detected application framework.
type Framework string

const (
	FrameworkReact   Framework = "react"
	FrameworkVue     Framework = "vue"
	FrameworkAngular Framework = "angular"
	FrameworkDjango  Framework = "django"
	FrameworkFlask   Framework = "flask"
	FrameworkFastAPI Framework = "fastapi"
	FrameworkExpress Framework = "express"
	FrameworkNext    Framework = "next"
	FrameworkNone    Framework = ""
)

// ParsedError is the structured result of error-message analysis.
type ParsedError struct {
	Language  Language  `json:"language"`
	Framework Framework `json:"framework,omitempty"`
	ErrorType string    `json:"error_type"`
	Message   string    `json:"message"`
	File      string    `json:"file,omitempty"`
	Line      int       `json:"line,omitempty"`
	KeyTerms  []string  `json:"key_terms"`
}

// DocExample is a single fenced code example pulled from documentation.
type DocExample struct {
	Language string `json:"language"`
	Code     string `json:"code"`
}

// RelatedLink is an in-page link to another documentation page.
type RelatedLink struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// ApiDoc is the aggregate result of documentation discovery for one topic.
type ApiDoc struct {
	APIName      string        `json:"api_name"`
	Topic        string        `json:"topic"`
	DocsBaseURL  string        `json:"docs_base_url,omitempty"`
	Overview     string        `json:"overview,omitempty"`
	Parameters   []DocParam    `json:"parameters,omitempty"`
	Examples     []DocExample  `json:"examples,omitempty"`
	Notes        []string      `json:"notes,omitempty"`
	RelatedLinks []RelatedLink `json:"related_links,omitempty"`
	Sources      []string      `json:"sources,omitempty"`
}

// DocParam is a single documented parameter.
type DocParam struct {
	Name        string `json:"name"`
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
}

// ExtractionKind selects which extraction mode produced an ExtractionResult.
type ExtractionKind string

const (
	KindTable  ExtractionKind = "table"
	KindList   ExtractionKind = "list"
	KindFields ExtractionKind = "fields"
	KindJSONLD ExtractionKind = "json-ld"
	KindAuto   ExtractionKind = "auto"
)

// TableData is one extracted HTML table.
type TableData struct {
	Caption string              `json:"caption,omitempty"`
	Headers []string            `json:"headers"`
	Rows    []map[string]string `json:"rows"`
}

// ListData is one extracted HTML list.
type ListData struct {
	Title  string   `json:"title,omitempty"`
	Items  []string `json:"items"`
	Nested bool     `json:"nested"`
}

// ExtractionResult is the tagged union returned by the Extractor.
type ExtractionResult struct {
	Kind    ExtractionKind `json:"kind"`
	Tables  []TableData    `json:"tables,omitempty"`
	Lists   []ListData     `json:"lists,omitempty"`
	Fields  map[string]any `json:"fields,omitempty"`
	JSONLD  []any          `json:"json_ld,omitempty"`
}

// Release is a single package/repository release.
type Release struct {
	Version         string   `json:"version"`
	Date            string   `json:"date,omitempty"`
	Author          string   `json:"author,omitempty"`
	BreakingChanges []string `json:"breaking_changes,omitempty"`
	NewFeatures     []string `json:"new_features,omitempty"`
	BugFixes        []string `json:"bug_fixes,omitempty"`
	Notes           string   `json:"notes,omitempty"`
	URL             string   `json:"url,omitempty"`
	MigrationGuide  string   `json:"migration_guide,omitempty"`
}

// Difficulty buckets the upgrade risk of a changelog.
type Difficulty string

const (
	DifficultyLow    Difficulty = "low"
	DifficultyMedium Difficulty = "medium"
	DifficultyHigh   Difficulty = "high"
)

// ChangelogSummary is the rolled-up risk assessment for a Changelog.
type ChangelogSummary struct {
	TotalReleases  int        `json:"total_releases"`
	BreakingCount  int        `json:"breaking_count"`
	Difficulty     Difficulty `json:"difficulty"`
	Recommendation string     `json:"recommendation"`
}

// Changelog is the aggregate release history for a package.
type Changelog struct {
	Package    string           `json:"package"`
	Registry   Registry         `json:"registry"`
	Repository string           `json:"repository,omitempty"`
	Releases   []Release        `json:"releases"`
	Summary    ChangelogSummary `json:"summary"`
}

// IncidentStatus is the lifecycle state of a service incident.
type IncidentStatus string

const (
	IncidentInvestigating IncidentStatus = "investigating"
	IncidentIdentified    IncidentStatus = "identified"
	IncidentMonitoring    IncidentStatus = "monitoring"
	IncidentResolved      IncidentStatus = "resolved"
)

// Impact is the severity of a service incident.
type Impact string

const (
	ImpactMinor    Impact = "minor"
	ImpactMajor    Impact = "major"
	ImpactCritical Impact = "critical"
)

// ServiceIncident is a single status-page incident entry.
type ServiceIncident struct {
	Title       string         `json:"title"`
	Status      IncidentStatus `json:"status"`
	StartedAt   string         `json:"started_at,omitempty"`
	ResolvedAt  string         `json:"resolved_at,omitempty"`
	Impact      Impact         `json:"impact,omitempty"`
	Summary     string         `json:"summary,omitempty"`
}

// ServiceHealth is the normalized, closed-set health state of a service.
type ServiceHealth string

const (
	HealthOperational        ServiceHealth = "operational"
	HealthDegradedPerf       ServiceHealth = "degraded_performance"
	HealthPartialOutage      ServiceHealth = "partial_outage"
	HealthMajorOutage        ServiceHealth = "major_outage"
	HealthUnderMaintenance   ServiceHealth = "under_maintenance"
	HealthUnknown            ServiceHealth = "unknown"
)

// ServiceComponent is one status-page component row.
type ServiceComponent struct {
	Name   string        `json:"name"`
	Status ServiceHealth `json:"status"`
}

// ServiceStatus is the aggregate result of a status probe.
type ServiceStatus struct {
	Service            string             `json:"service"`
	Status             ServiceHealth      `json:"status"`
	StatusPageURL      string             `json:"status_page_url,omitempty"`
	CheckedAt          string             `json:"checked_at"`
	CurrentIncidents   []ServiceIncident  `json:"current_incidents"`
	Components         []ServiceComponent `json:"components,omitempty"`
	RecentIncidents    []ServiceIncident  `json:"recent_incidents,omitempty"`
	UptimePercentage   float64            `json:"uptime_percentage,omitempty"`
}

// UsageEvent records the outcome of a single tool invocation.
type UsageEvent struct {
	TimestampUTC     string         `json:"timestamp_utc"`
	Tool             string         `json:"tool"`
	Reasoning        string         `json:"reasoning"`
	Parameters       map[string]any `json:"parameters"`
	ResponseTimeMs   float64        `json:"response_time_ms"`
	Success          bool           `json:"success"`
	ErrorMessage     string         `json:"error_message,omitempty"`
	ResponseSizeBytes int           `json:"response_size_bytes"`
	SessionID        string         `json:"session_id"`
}

// ToolSummary is the per-tool aggregate used in UsageSummary.
type ToolSummary struct {
	Count            int            `json:"count"`
	SuccessCount     int            `json:"success_count"`
	AvgResponseTime  float64        `json:"avg_response_time"`
	CommonReasonings map[string]int `json:"common_reasonings"`
}

// Totals is the global aggregate used in UsageSummary.
type Totals struct {
	TotalCalls          int     `json:"total_calls"`
	MostUsedTool        string  `json:"most_used_tool,omitempty"`
	AverageResponseTime float64 `json:"average_response_time"`
}

// UsageSummary is the rolling aggregate derived from the event log.
type UsageSummary struct {
	Tools  map[string]*ToolSummary `json:"tools"`
	Totals Totals                  `json:"totals"`
}
