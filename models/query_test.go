package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueQueryNormalize(t *testing.T) {
	tests := []struct {
		name      string
		in        IssueQuery
		wantPage  int
		wantLimit int
	}{
		{"defaults", IssueQuery{}, 1, DefaultPageSize},
		{"negative page", IssueQuery{Page: -3, Limit: 10}, 1, 10},
		{"oversized limit", IssueQuery{Page: 2, Limit: 1000}, 2, MaxPageSize},
		{"kept", IssueQuery{Page: 4, Limit: 25}, 4, 25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Normalize()
			assert.Equal(t, tt.wantPage, got.Page)
			assert.Equal(t, tt.wantLimit, got.Limit)
		})
	}

	assert.Equal(t, int64(50), IssueQuery{Page: 3, Limit: 25}.Skip())
}

func TestIssuePagePages(t *testing.T) {
	tests := []struct {
		total int64
		limit int
		want  int
	}{
		{0, 50, 0},
		{1, 50, 1},
		{50, 50, 1},
		{51, 50, 2},
		{7, 3, 3},
	}
	for _, tt := range tests {
		p := IssuePage{Total: tt.total, Limit: tt.limit}
		assert.Equal(t, tt.want, p.Pages(), "total=%d limit=%d", tt.total, tt.limit)
	}
}

func TestParseSortField(t *testing.T) {
	assert.Equal(t, SortPriority, ParseSortField("priority"))
	assert.Equal(t, SortNatural, ParseSortField("reporterInfo.phone"))
	assert.Equal(t, SortNatural, ParseSortField(""))
}

func TestIssuePatchDecodeDistinguishesAbsentAndNull(t *testing.T) {
	var p IssuePatch
	require.NoError(t, json.Unmarshal([]byte(`{"assignedTo":null,"adminNotes":""}`), &p))

	assert.False(t, p.Status.Set)
	assert.False(t, p.Priority.Set)
	assert.True(t, p.AssignedTo.Set)
	assert.Nil(t, p.AssignedTo.Value)
	assert.True(t, p.AdminNotes.Set)
	require.NotNil(t, p.AdminNotes.Value)
	assert.Equal(t, "", *p.AdminNotes.Value)
}

func TestIssuePatchValidate(t *testing.T) {
	var p IssuePatch
	require.NoError(t, json.Unmarshal([]byte(`{"status":"Done","priority":"High","assignedTo":42}`), &p))

	var paths []string
	for _, fe := range p.Validate() {
		paths = append(paths, fe.Path)
	}
	assert.Equal(t, []string{"status", "assignedTo"}, paths)

	assert.Empty(t, IssuePatch{Status: Some("Closed"), Priority: Some("Low")}.Validate())
	assert.Len(t, IssuePatch{Status: OptionalString{Set: true}}.Validate(), 1)
}

func TestIssuePatchApply(t *testing.T) {
	team := "Roads Dept"
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	issue := Issue{
		Status:     StatusSubmitted,
		Priority:   PriorityMedium,
		AssignedTo: &team,
		AdminNotes: "old",
		CreatedAt:  created,
		UpdatedAt:  created,
	}
	later := created.Add(time.Hour)

	IssuePatch{Status: Some("Closed"), AssignedTo: OptionalString{Set: true}}.Apply(&issue, later)

	assert.Equal(t, StatusClosed, issue.Status)
	assert.Equal(t, PriorityMedium, issue.Priority)
	assert.Nil(t, issue.AssignedTo)
	assert.Equal(t, "old", issue.AdminNotes)
	assert.Equal(t, later, issue.UpdatedAt)

	// Regressions are allowed.
	IssuePatch{Status: Some("Submitted")}.Apply(&issue, later)
	assert.Equal(t, StatusSubmitted, issue.Status)
}

func TestCountOfTreatsAbsentAsZero(t *testing.T) {
	groups := []GroupCount{{ID: "Road", Count: 3}}
	assert.Equal(t, int64(3), CountOf(groups, "Road"))
	assert.Equal(t, int64(0), CountOf(groups, "Water"))
	assert.Equal(t, int64(0), CountOf(nil, "Water"))
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Fields: []FieldError{NewFieldError("title", "Title is required"), NewFieldError("category", "Invalid category")}}
	assert.Equal(t, "validation failed: title, category", err.Error())
	assert.Equal(t, "field", err.Fields[0].Type)
	assert.Equal(t, "body", err.Fields[0].Location)
}
