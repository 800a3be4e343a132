package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestEnumMembership(t *testing.T) {
	assert.True(t, CategoryRoad.IsValid())
	assert.False(t, IssueCategory("Sanitation").IsValid())
	assert.False(t, IssueCategory("").IsValid())

	assert.True(t, PriorityCritical.IsValid())
	assert.False(t, IssuePriority("Urgent").IsValid())

	assert.True(t, StatusInProgress.IsValid())
	assert.False(t, IssueStatus("Pending").IsValid())
}

func TestPublicProjectionOmitsPrivateFields(t *testing.T) {
	issue := Issue{
		ID:           primitive.NewObjectID(),
		Title:        "Broken light",
		ReporterInfo: ReporterInfo{Name: "A", Email: "a@x.com", Phone: "555-0100"},
		AdminNotes:   "call contractor",
	}

	raw, err := json.Marshal(issue.Public())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.NotContains(t, decoded, "adminNotes")
	reporter := decoded["reporterInfo"].(map[string]any)
	assert.NotContains(t, reporter, "phone")
	assert.Equal(t, "a@x.com", reporter["email"])
	assert.Equal(t, []any{}, decoded["images"])
}

func TestAdminProjectionKeepsPrivateFields(t *testing.T) {
	issue := Issue{
		ReporterInfo: ReporterInfo{Name: "A", Email: "a@x.com", Phone: "555-0100"},
		AdminNotes:   "call contractor",
	}

	raw, err := json.Marshal(issue)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"phone":"555-0100"`)
	assert.Contains(t, string(raw), `"adminNotes":"call contractor"`)
	assert.Contains(t, string(raw), `"assignedTo":null`)
}

func TestCoordinatesAcceptStringEncodedObject(t *testing.T) {
	var loc Location
	require.NoError(t, json.Unmarshal([]byte(`{"address":"Main St","coordinates":"{\"lat\":1.5,\"lng\":-2}"}`), &loc))
	require.NotNil(t, loc.Coordinates)
	assert.Equal(t, Coordinates{Lat: 1.5, Lng: -2}, *loc.Coordinates)

	loc = Location{}
	require.NoError(t, json.Unmarshal([]byte(`{"address":"Main St","coordinates":{"lat":3,"lng":4}}`), &loc))
	assert.Equal(t, Coordinates{Lat: 3, Lng: 4}, *loc.Coordinates)

	loc = Location{}
	require.NoError(t, json.Unmarshal([]byte(`{"address":"Main St"}`), &loc))
	assert.Nil(t, loc.Coordinates)
}

func TestAdminPasswordHashing(t *testing.T) {
	a := Admin{Password: "secret123"}
	require.NoError(t, a.HashPassword())
	assert.NotEqual(t, "secret123", a.Password)
	assert.True(t, a.ComparePassword("secret123"))
	assert.False(t, a.ComparePassword("wrong"))

	raw, err := json.Marshal(a)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "password")
}

func TestSummaryProjection(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	issue := Issue{Title: "t", Status: StatusClosed, Category: CategoryWater, Priority: PriorityLow, CreatedAt: now, AdminNotes: "x"}
	s := issue.Summary()
	assert.Equal(t, IssueSummary{ID: issue.ID, Title: "t", Status: StatusClosed, Category: CategoryWater, Priority: PriorityLow, CreatedAt: now}, s)
}
