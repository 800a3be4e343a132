package repository

import (
	"context"
	"testing"
	"time"

	"civic-issues-be/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var baseTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func seedIssue(t *testing.T, s IssueStore, title string, cat models.IssueCategory, status models.IssueStatus, prio models.IssuePriority, age time.Duration) *models.Issue {
	t.Helper()
	issue := &models.Issue{
		Title:        title,
		Description:  title + " description",
		Category:     cat,
		Status:       status,
		Priority:     prio,
		Location:     models.Location{Address: title + " street"},
		ReporterInfo: models.ReporterInfo{Name: "A", Email: "a@x.com", Phone: "555"},
		CreatedAt:    baseTime.Add(-age),
		UpdatedAt:    baseTime.Add(-age),
	}
	require.NoError(t, s.Create(context.Background(), issue))
	require.False(t, issue.ID.IsZero())
	return issue
}

func TestMemoryIssueStore_FindFiltersAndPaginates(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryIssueStore()
	seedIssue(t, s, "oldest road", models.CategoryRoad, models.StatusSubmitted, models.PriorityLow, 3*time.Hour)
	seedIssue(t, s, "water", models.CategoryWater, models.StatusSubmitted, models.PriorityHigh, 2*time.Hour)
	seedIssue(t, s, "newest road", models.CategoryRoad, models.StatusResolved, models.PriorityHigh, time.Hour)

	issues, total, err := s.Find(ctx, models.IssueQuery{Filter: models.IssueFilter{Category: models.CategoryRoad}, Sort: models.DefaultSort})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, issues, 2)
	assert.Equal(t, "newest road", issues[0].Title)
	assert.Equal(t, "oldest road", issues[1].Title)

	issues, total, err = s.Find(ctx, models.IssueQuery{Filter: models.IssueFilter{Priority: models.PriorityHigh, Status: models.StatusSubmitted}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "water", issues[0].Title)

	issues, total, err = s.Find(ctx, models.IssueQuery{Sort: models.DefaultSort, Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, issues, 1)
	assert.Equal(t, "oldest road", issues[0].Title)

	issues, total, err = s.Find(ctx, models.IssueQuery{Page: 9, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Empty(t, issues)
}

func TestMemoryIssueStore_AssignedToFilter(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryIssueStore()
	a := seedIssue(t, s, "a", models.CategoryRoad, models.StatusSubmitted, models.PriorityLow, time.Hour)
	seedIssue(t, s, "b", models.CategoryRoad, models.StatusSubmitted, models.PriorityLow, time.Hour)

	_, err := s.Update(ctx, a.ID, models.IssuePatch{AssignedTo: models.Some("Roads Dept")}, baseTime)
	require.NoError(t, err)

	issues, total, err := s.Find(ctx, models.IssueQuery{Filter: models.IssueFilter{AssignedTo: "Roads Dept"}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, a.ID, issues[0].ID)
}

func TestMemoryIssueStore_SortKeys(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryIssueStore()
	seedIssue(t, s, "b", models.CategoryRoad, models.StatusSubmitted, models.PriorityLow, time.Hour)
	seedIssue(t, s, "c", models.CategoryRoad, models.StatusSubmitted, models.PriorityLow, 3*time.Hour)
	seedIssue(t, s, "a", models.CategoryRoad, models.StatusSubmitted, models.PriorityLow, 2*time.Hour)

	titles := func(q models.IssueQuery) []string {
		issues, _, err := s.Find(ctx, q)
		require.NoError(t, err)
		var out []string
		for _, i := range issues {
			out = append(out, i.Title)
		}
		return out
	}

	assert.Equal(t, []string{"a", "b", "c"}, titles(models.IssueQuery{Sort: models.SortOptions{Field: models.SortTitle}}))
	assert.Equal(t, []string{"c", "a", "b"}, titles(models.IssueQuery{Sort: models.SortOptions{Field: models.SortCreatedAt}}))
	// Unknown keys keep insertion order.
	assert.Equal(t, []string{"b", "c", "a"}, titles(models.IssueQuery{Sort: models.SortOptions{Field: models.ParseSortField("bogus"), Desc: true}}))
}

func TestMemoryIssueStore_SearchIsCaseInsensitiveSubstring(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryIssueStore()
	seedIssue(t, s, "Pothole on Main", models.CategoryRoad, models.StatusSubmitted, models.PriorityLow, 2*time.Hour)
	seedIssue(t, s, "Leak", models.CategoryWater, models.StatusSubmitted, models.PriorityLow, time.Hour)
	seedIssue(t, s, "Lamp (broken)", models.CategoryStreetlight, models.StatusSubmitted, models.PriorityLow, 3*time.Hour)

	found, err := s.Search(ctx, "POTHOLE", 20)
	require.NoError(t, err)
	require.Len(t, found, 1)

	// Address and description are searched too.
	found, err = s.Search(ctx, "street", 20)
	require.NoError(t, err)
	require.Len(t, found, 3)
	assert.Equal(t, "Leak", found[0].Title)

	found, err = s.Search(ctx, "(broken)", 20)
	require.NoError(t, err)
	assert.Len(t, found, 1)

	found, err = s.Search(ctx, "street", 2)
	require.NoError(t, err)
	assert.Len(t, found, 2)
}

func TestMemoryIssueStore_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryIssueStore()
	issue := seedIssue(t, s, "a", models.CategoryRoad, models.StatusSubmitted, models.PriorityLow, time.Hour)

	updated, err := s.Update(ctx, issue.ID, models.IssuePatch{Status: models.Some("Resolved"), AdminNotes: models.Some("done")}, baseTime)
	require.NoError(t, err)
	assert.Equal(t, models.StatusResolved, updated.Status)
	assert.Equal(t, "done", updated.AdminNotes)
	assert.Equal(t, baseTime, updated.UpdatedAt)

	_, err = s.Update(ctx, primitive.NewObjectID(), models.IssuePatch{}, baseTime)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Delete(ctx, issue.ID))
	_, err = s.FindByID(ctx, issue.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, issue.ID), ErrNotFound)
}

func TestMemoryIssueStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryIssueStore()
	issue := seedIssue(t, s, "a", models.CategoryRoad, models.StatusSubmitted, models.PriorityLow, time.Hour)

	got, err := s.FindByID(ctx, issue.ID)
	require.NoError(t, err)
	got.Title = "mutated"

	again, err := s.FindByID(ctx, issue.ID)
	require.NoError(t, err)
	assert.Equal(t, "a", again.Title)
}

func TestMemoryIssueStore_Aggregates(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryIssueStore()
	seedIssue(t, s, "a", models.CategoryRoad, models.StatusSubmitted, models.PriorityLow, 40*24*time.Hour)
	seedIssue(t, s, "b", models.CategoryRoad, models.StatusClosed, models.PriorityHigh, time.Hour)
	seedIssue(t, s, "c", models.CategoryWater, models.StatusSubmitted, models.PriorityHigh, 2*time.Hour)

	total, err := s.CountCreated(ctx, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	recent, err := s.CountCreated(ctx, baseTime.AddDate(0, 0, -30), time.Time{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), recent)

	window, err := s.CountCreated(ctx, baseTime.Add(-90*time.Minute), baseTime)
	require.NoError(t, err)
	assert.Equal(t, int64(1), window)

	byCat, err := s.CountBy(ctx, models.GroupByCategory)
	require.NoError(t, err)
	assert.Equal(t, []models.GroupCount{{ID: "Road", Count: 2}, {ID: "Water", Count: 1}}, byCat)

	latest, err := s.Latest(ctx, 2)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, "b", latest[0].Title)
	assert.Equal(t, "c", latest[1].Title)

	between, err := s.CreatedBetween(ctx, baseTime.Add(-3*time.Hour), baseTime.Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, between, 1)
	assert.Equal(t, "c", between[0].Title)
}

func TestMemoryIssueStore_Geolocated(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryIssueStore()
	seedIssue(t, s, "no coords", models.CategoryRoad, models.StatusSubmitted, models.PriorityLow, time.Hour)
	located := &models.Issue{
		Title:     "with coords",
		Location:  models.Location{Address: "x", Coordinates: &models.Coordinates{Lat: 1, Lng: 2}},
		CreatedAt: baseTime,
	}
	require.NoError(t, s.Create(ctx, located))

	found, err := s.Geolocated(ctx, 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "with coords", found[0].Title)
}
