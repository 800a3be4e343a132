package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"civic-issues-be/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryIssueStore serves issues from process memory when MongoDB is
// disabled. Records are kept in insertion order.
type MemoryIssueStore struct {
	mu     sync.RWMutex
	issues []models.Issue
}

func NewMemoryIssueStore() *MemoryIssueStore {
	return &MemoryIssueStore{}
}

func (s *MemoryIssueStore) Create(_ context.Context, issue *models.Issue) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if issue.ID.IsZero() {
		issue.ID = primitive.NewObjectID()
	}
	s.issues = append(s.issues, cloneIssue(*issue))
	return nil
}

func (s *MemoryIssueStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Issue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, ErrNotFound
	}
	issue := cloneIssue(s.issues[i])
	return &issue, nil
}

func (s *MemoryIssueStore) Find(_ context.Context, query models.IssueQuery) ([]models.Issue, int64, error) {
	query = query.Normalize()

	s.mu.RLock()
	matched := make([]models.Issue, 0)
	for _, issue := range s.issues {
		if matchesFilter(issue, query.Filter) {
			matched = append(matched, cloneIssue(issue))
		}
	}
	s.mu.RUnlock()

	sortIssues(matched, query.Sort)

	total := int64(len(matched))
	start := query.Skip()
	if start > total {
		start = total
	}
	end := start + int64(query.Limit)
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (s *MemoryIssueStore) Search(_ context.Context, text string, limit int) ([]models.Issue, error) {
	needle := strings.ToLower(text)

	s.mu.RLock()
	matched := make([]models.Issue, 0)
	for _, issue := range s.issues {
		if strings.Contains(strings.ToLower(issue.Title), needle) ||
			strings.Contains(strings.ToLower(issue.Description), needle) ||
			strings.Contains(strings.ToLower(issue.Location.Address), needle) {
			matched = append(matched, cloneIssue(issue))
		}
	}
	s.mu.RUnlock()

	sortIssues(matched, models.DefaultSort)
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (s *MemoryIssueStore) Update(_ context.Context, id primitive.ObjectID, patch models.IssuePatch, at time.Time) (*models.Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, ErrNotFound
	}
	patch.Apply(&s.issues[i], at)
	issue := cloneIssue(s.issues[i])
	return &issue, nil
}

func (s *MemoryIssueStore) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	s.issues = append(s.issues[:i], s.issues[i+1:]...)
	return nil
}

func (s *MemoryIssueStore) CountCreated(_ context.Context, from, to time.Time) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, issue := range s.issues {
		if inRange(issue.CreatedAt, from, to) {
			n++
		}
	}
	return n, nil
}

func (s *MemoryIssueStore) CountBy(_ context.Context, field models.GroupField) ([]models.GroupCount, error) {
	s.mu.RLock()
	counts := map[string]int64{}
	for _, issue := range s.issues {
		counts[groupKey(issue, field)]++
	}
	s.mu.RUnlock()

	groups := make([]models.GroupCount, 0, len(counts))
	for id, n := range counts {
		groups = append(groups, models.GroupCount{ID: id, Count: n})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].ID < groups[j].ID })
	return groups, nil
}

func (s *MemoryIssueStore) Latest(_ context.Context, limit int) ([]models.IssueSummary, error) {
	s.mu.RLock()
	all := make([]models.Issue, len(s.issues))
	copy(all, s.issues)
	s.mu.RUnlock()

	sortIssues(all, models.DefaultSort)
	if len(all) > limit {
		all = all[:limit]
	}
	latest := make([]models.IssueSummary, 0, len(all))
	for _, issue := range all {
		latest = append(latest, issue.Summary())
	}
	return latest, nil
}

func (s *MemoryIssueStore) Geolocated(_ context.Context, limit int) ([]models.Issue, error) {
	s.mu.RLock()
	matched := make([]models.Issue, 0)
	for _, issue := range s.issues {
		if issue.Location.Coordinates != nil {
			matched = append(matched, cloneIssue(issue))
		}
	}
	s.mu.RUnlock()

	sortIssues(matched, models.DefaultSort)
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (s *MemoryIssueStore) CreatedBetween(_ context.Context, from, to time.Time) ([]models.Issue, error) {
	s.mu.RLock()
	matched := make([]models.Issue, 0)
	for _, issue := range s.issues {
		if inRange(issue.CreatedAt, from, to) {
			matched = append(matched, cloneIssue(issue))
		}
	}
	s.mu.RUnlock()

	sortIssues(matched, models.SortOptions{Field: models.SortCreatedAt})
	return matched, nil
}

// indexOf must be called with the lock held.
func (s *MemoryIssueStore) indexOf(id primitive.ObjectID) int {
	for i := range s.issues {
		if s.issues[i].ID == id {
			return i
		}
	}
	return -1
}

func inRange(t, from, to time.Time) bool {
	if !from.IsZero() && t.Before(from) {
		return false
	}
	if !to.IsZero() && !t.Before(to) {
		return false
	}
	return true
}

func matchesFilter(issue models.Issue, f models.IssueFilter) bool {
	if f.Category != "" && issue.Category != f.Category {
		return false
	}
	if f.Status != "" && issue.Status != f.Status {
		return false
	}
	if f.Priority != "" && issue.Priority != f.Priority {
		return false
	}
	if f.AssignedTo != "" && (issue.AssignedTo == nil || *issue.AssignedTo != f.AssignedTo) {
		return false
	}
	return true
}

// sortIssues is stable so equal keys keep insertion order.
func sortIssues(issues []models.Issue, o models.SortOptions) {
	if o.Field == models.SortNatural {
		return
	}
	sort.SliceStable(issues, func(i, j int) bool {
		c := compareField(issues[i], issues[j], o.Field)
		if o.Desc {
			return c > 0
		}
		return c < 0
	})
}

func compareField(a, b models.Issue, field models.SortField) int {
	switch field {
	case models.SortCreatedAt:
		return a.CreatedAt.Compare(b.CreatedAt)
	case models.SortUpdatedAt:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	case models.SortTitle:
		return strings.Compare(a.Title, b.Title)
	case models.SortCategory:
		return strings.Compare(string(a.Category), string(b.Category))
	case models.SortPriority:
		return strings.Compare(string(a.Priority), string(b.Priority))
	case models.SortStatus:
		return strings.Compare(string(a.Status), string(b.Status))
	}
	return 0
}

func groupKey(issue models.Issue, field models.GroupField) string {
	switch field {
	case models.GroupByStatus:
		return string(issue.Status)
	case models.GroupByCategory:
		return string(issue.Category)
	case models.GroupByPriority:
		return string(issue.Priority)
	}
	return ""
}

func cloneIssue(issue models.Issue) models.Issue {
	if issue.Images != nil {
		issue.Images = append([]models.Image(nil), issue.Images...)
	}
	if issue.AssignedTo != nil {
		v := *issue.AssignedTo
		issue.AssignedTo = &v
	}
	if issue.Location.Coordinates != nil {
		c := *issue.Location.Coordinates
		issue.Location.Coordinates = &c
	}
	return issue
}
