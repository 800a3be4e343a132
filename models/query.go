package models

import (
	"encoding/json"
	"time"
)

const (
	DefaultPageSize    = 50
	MaxPageSize        = 100
	DefaultSearchLimit = 20
	MaxSearchLimit     = 100
	DefaultPeriodDays  = 30
	LatestIssuesLimit  = 10
	MapFeedLimit       = 100
	TrendDays          = 7
)

// IssueFilter enumerates the recognized filter keys. An empty field
// imposes no constraint; a set field is an exact-match constraint.
type IssueFilter struct {
	Category   IssueCategory
	Status     IssueStatus
	Priority   IssuePriority
	AssignedTo string
}

// SortField names an issue attribute usable as a sort key.
type SortField string

const (
	SortCreatedAt SortField = "createdAt"
	SortUpdatedAt SortField = "updatedAt"
	SortTitle     SortField = "title"
	SortCategory  SortField = "category"
	SortPriority  SortField = "priority"
	SortStatus    SortField = "status"
	// SortNatural keeps insertion order.
	SortNatural SortField = ""
)

// ParseSortField maps a caller-supplied key to a known field. Unknown keys
// yield SortNatural.
func ParseSortField(key string) SortField {
	switch SortField(key) {
	case SortCreatedAt, SortUpdatedAt, SortTitle, SortCategory, SortPriority, SortStatus:
		return SortField(key)
	}
	return SortNatural
}

type SortOptions struct {
	Field SortField
	Desc  bool
}

// DefaultSort is newest first.
var DefaultSort = SortOptions{Field: SortCreatedAt, Desc: true}

type IssueQuery struct {
	Filter IssueFilter
	Sort   SortOptions
	Page   int
	Limit  int
}

// Normalize clamps pagination into range.
func (q IssueQuery) Normalize() IssueQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultPageSize
	}
	if q.Limit > MaxPageSize {
		q.Limit = MaxPageSize
	}
	return q
}

// Skip is the number of matching records before the requested page.
func (q IssueQuery) Skip() int64 {
	return int64(q.Page-1) * int64(q.Limit)
}

type IssuePage struct {
	Issues []Issue
	Total  int64
	Page   int
	Limit  int
}

// Pages is ceil(Total / Limit).
func (p IssuePage) Pages() int {
	if p.Limit <= 0 {
		return 0
	}
	return int((p.Total + int64(p.Limit) - 1) / int64(p.Limit))
}

type Pagination struct {
	Current int   `json:"current"`
	Pages   int   `json:"pages"`
	Total   int64 `json:"total"`
	Limit   int   `json:"limit"`
}

func (p IssuePage) Pagination() Pagination {
	return Pagination{Current: p.Page, Pages: p.Pages(), Total: p.Total, Limit: p.Limit}
}

// OptionalString distinguishes an absent JSON member from an explicit
// null or string value.
type OptionalString struct {
	Set     bool
	Value   *string
	Invalid bool
}

func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		o.Invalid = true
		return nil
	}
	o.Value = &s
	return nil
}

// Str returns the value or "" when null.
func (o OptionalString) Str() string {
	if o.Value == nil {
		return ""
	}
	return *o.Value
}

// Some builds a present, non-null OptionalString.
func Some(s string) OptionalString {
	return OptionalString{Set: true, Value: &s}
}

// IssuePatch is a staff mutation. Only members present in the request
// are applied.
type IssuePatch struct {
	Status     OptionalString `json:"status"`
	Priority   OptionalString `json:"priority"`
	AssignedTo OptionalString `json:"assignedTo"`
	AdminNotes OptionalString `json:"adminNotes"`
}

// Validate reports every field that cannot be applied.
func (p IssuePatch) Validate() []FieldError {
	var errs []FieldError
	if p.Status.Set && (p.Status.Invalid || !IssueStatus(p.Status.Str()).IsValid()) {
		errs = append(errs, NewFieldError("status", "Invalid value"))
	}
	if p.Priority.Set && (p.Priority.Invalid || !IssuePriority(p.Priority.Str()).IsValid()) {
		errs = append(errs, NewFieldError("priority", "Invalid value"))
	}
	if p.AssignedTo.Invalid {
		errs = append(errs, NewFieldError("assignedTo", "Invalid value"))
	}
	if p.AdminNotes.Invalid {
		errs = append(errs, NewFieldError("adminNotes", "Invalid value"))
	}
	return errs
}

// Apply mutates issue in place with the present members of p.
func (p IssuePatch) Apply(issue *Issue, at time.Time) {
	if p.Status.Set {
		issue.Status = IssueStatus(p.Status.Str())
	}
	if p.Priority.Set {
		issue.Priority = IssuePriority(p.Priority.Str())
	}
	if p.AssignedTo.Set {
		if p.AssignedTo.Value == nil {
			issue.AssignedTo = nil
		} else {
			v := *p.AssignedTo.Value
			issue.AssignedTo = &v
		}
	}
	if p.AdminNotes.Set {
		issue.AdminNotes = p.AdminNotes.Str()
	}
	issue.UpdatedAt = at
}

// GroupField is an enumerated attribute issues can be grouped by.
type GroupField string

const (
	GroupByStatus   GroupField = "status"
	GroupByCategory GroupField = "category"
	GroupByPriority GroupField = "priority"
)

// GroupCount is one bucket of a grouped count. Members with zero matches
// may be absent.
type GroupCount struct {
	ID    string `bson:"_id" json:"_id"`
	Count int64  `bson:"count" json:"count"`
}

type DailyCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

type DashboardStats struct {
	TotalIssues   int64          `json:"totalIssues"`
	RecentIssues  int64          `json:"recentIssues"`
	StatusStats   []GroupCount   `json:"statusStats"`
	CategoryStats []GroupCount   `json:"categoryStats"`
	PriorityStats []GroupCount   `json:"priorityStats"`
	LatestIssues  []IssueSummary `json:"latestIssues"`
	Last7Days     []DailyCount   `json:"last7Days"`
}

// CountOf returns the bucket count for id, treating absence as zero.
func CountOf(groups []GroupCount, id string) int64 {
	for _, g := range groups {
		if g.ID == id {
			return g.Count
		}
	}
	return 0
}
