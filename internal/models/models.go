package models

import "time"

type Mode string

const (
	ModeConversation Mode = "conversation"
	ModeAnalytics    Mode = "analytics"
	ModeOffTopic     Mode = "off_topic"
)

type ConversationType string

const (
	ConversationGreeting ConversationType = "greeting"
	ConversationThanks   ConversationType = "thanks"
	ConversationGoodbye  ConversationType = "goodbye"
	ConversationHelp     ConversationType = "help"
)

type IntentType string

const (
	IntentSummary      IntentType = "summary"
	IntentDistribution IntentType = "distribution"
	IntentComparison   IntentType = "comparison"
	IntentComposite    IntentType = "composite"
)

// Intent is the structured interpretation of one free-text query.
// It lives for a single request and is never persisted.
type Intent struct {
	Mode             Mode             `json:"mode"`
	ConversationType ConversationType `json:"conversation_type,omitempty"`
	IntentType       IntentType       `json:"intent_type,omitempty"`

	Indicator  string   `json:"indicator,omitempty"`
	Indicators []string `json:"indicators,omitempty"` // composite requests only
	Dimension  string   `json:"dimension,omitempty"`

	CropFilters  []string `json:"crop_filters,omitempty"`
	SeasonFilter string   `json:"season_filter,omitempty"`
	// YearFilter is the normalized "YYYY-YYYY" agricultural year, or
	// YearCurrent when the query asked for the current/latest year.
	YearFilter string `json:"year_filter,omitempty"`

	Comparison string `json:"comparison,omitempty"`
	TopN       int    `json:"top_n,omitempty"`

	MentionedState        string `json:"mentioned_state,omitempty"`
	MentionedDistrictCode string `json:"mentioned_district_code,omitempty"`
	MentionedDistrictName string `json:"mentioned_district_name,omitempty"`
}

// YearCurrent marks a time-relative year filter that must be resolved
// against the latest year present in the caller's own data.
const YearCurrent = "current"

type ChartType string

const (
	ChartMessage ChartType = "message"
	ChartKPI     ChartType = "kpi"
	ChartBar     ChartType = "bar"
	ChartPie     ChartType = "pie"
	ChartLine    ChartType = "line"
)

type FilterOp string

const (
	// FilterEq is exact equality.
	FilterEq FilterOp = "eq"
	// FilterIEq is case-insensitive equality.
	FilterIEq FilterOp = "ieq"
	// FilterIContainsAny matches rows whose column contains any of the
	// values, case-insensitively.
	FilterIContainsAny FilterOp = "icontains_any"
	// FilterYearEq matches the full "YYYY-YYYY" form or its bare first year,
	// so "2024-2025" also matches rows stored as "2024".
	FilterYearEq FilterOp = "year_eq"
)

type Filter struct {
	Column string   `json:"column"`
	Op     FilterOp `json:"op"`
	Values []string `json:"values"`
}

type PlanKind string

const (
	PlanAggregate  PlanKind = "aggregate"
	PlanComparison PlanKind = "comparison"
	PlanComposite  PlanKind = "composite"
)

// ComparisonLeg is one of the two fixed aggregates of a comparison plan.
type ComparisonLeg struct {
	Label    string `json:"label"`
	Table    string `json:"table"`
	Column   string `json:"column"`
	SeasonEq string `json:"season_eq,omitempty"`
}

// CompositeItem is one independent KPI of a multi-indicator plan.
type CompositeItem struct {
	Indicator string `json:"indicator"`
	Table     string `json:"table"`
	Column    string `json:"column"`
	Derived   bool   `json:"derived,omitempty"`
	Title     string `json:"title"`
	Unit      string `json:"unit"`
}

// QueryPlan is a fully resolved, execution-ready description of one
// aggregate. The region filter is always present and is the only part of
// the plan the intent cannot influence.
type QueryPlan struct {
	Kind PlanKind `json:"kind"`

	Table       string `json:"table,omitempty"`
	ValueColumn string `json:"value_column,omitempty"`
	// Derived marks a computed value column (pending validation is
	// crop_area_closed - crop_area_approved).
	Derived     bool   `json:"derived,omitempty"`
	GroupColumn string `json:"group_column,omitempty"`

	Filters []Filter `json:"filters"`

	// Chronological orders a time-axis grouping ascending with no row cap;
	// otherwise grouped plans order by aggregated value descending.
	Chronological bool `json:"chronological,omitempty"`
	Limit         int  `json:"limit,omitempty"`

	Comparison []ComparisonLeg `json:"comparison,omitempty"`
	Composite  []CompositeItem `json:"composite,omitempty"`

	Title     string    `json:"title"`
	Unit      string    `json:"unit,omitempty"`
	ChartType ChartType `json:"chart_type"`
	// Note explains a degraded dimension when the requested grouping column
	// does not exist in the source table.
	Note string `json:"note,omitempty"`
}

// KPIValue is one (title, value, unit) tuple of a composite result.
type KPIValue struct {
	Title string  `json:"title"`
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// AnalyticsResult is the uniform result shape produced by every backend.
// Invariants: len(Labels) == len(Values); Total == sum(Values) within
// floating tolerance.
type AnalyticsResult struct {
	Kind        PlanKind   `json:"kind,omitempty"`
	Title       string     `json:"title"`
	Unit        string     `json:"unit,omitempty"`
	Labels      []string   `json:"labels"`
	Values      []float64  `json:"values"`
	Total       float64    `json:"total"`
	Percentages []float64  `json:"percentages,omitempty"`
	ChartType   ChartType  `json:"chart_type"`
	NoData      bool       `json:"no_data,omitempty"`
	Note        string     `json:"note,omitempty"`
	Items       []KPIValue `json:"items,omitempty"`

	// Auxiliary KPI fields attached when the source table carries them.
	FarmersCount int64 `json:"farmers_count,omitempty"`
	PlotsCount   int64 `json:"plots_count,omitempty"`
}

type ChatRequest struct {
	Query   string `json:"query"`
	LGDCode string `json:"lgd_code"`
}

type ChartData struct {
	Type   ChartType `json:"type"`
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
	Unit   string    `json:"unit,omitempty"`
}

type ChatMetadata struct {
	RequestID  string            `json:"request_id"`
	Mode       Mode              `json:"mode"`
	IntentType IntentType        `json:"intent_type,omitempty"`
	Indicator  string            `json:"indicator,omitempty"`
	Dimension  string            `json:"dimension,omitempty"`
	Filters    map[string]string `json:"filters,omitempty"`
	State      string            `json:"state"`
	LGDCode    string            `json:"lgd_code"`
	DataSource string            `json:"data_source,omitempty"`
	Plan       *QueryPlan        `json:"plan,omitempty"`
	Denied     bool              `json:"denied,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
}

type ChatResponse struct {
	Title     string       `json:"title"`
	Chart     ChartData    `json:"chart_data"`
	Narration string       `json:"narration"`
	Items     []KPIValue   `json:"items,omitempty"`
	Metadata  ChatMetadata `json:"metadata"`
}
