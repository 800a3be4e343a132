package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"civic-issues-be/models"
	"civic-issues-be/repository"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var fieldCheck = validator.New()

// MediaIntake stores the files attached to a submission.
type MediaIntake interface {
	// Check reports every problem with files without writing anything.
	Check(files []*multipart.FileHeader) []models.FieldError
	// Save writes all files or none of them.
	Save(files []*multipart.FileHeader) ([]models.Image, error)
	Remove(images []models.Image)
}

// IssueService owns intake validation, listing, staff mutation and
// statistics over the issue store.
type IssueService struct {
	store repository.IssueStore
	media MediaIntake
	log   *zap.Logger
	now   func() time.Time
}

func NewIssueService(store repository.IssueStore, media MediaIntake, log *zap.Logger) *IssueService {
	return &IssueService{store: store, media: media, log: log, now: time.Now}
}

// ValidateSubmission checks every intake rule and returns all violations.
func ValidateSubmission(sub models.IssueSubmission) []models.FieldError {
	var errs []models.FieldError
	if strings.TrimSpace(sub.Title) == "" {
		errs = append(errs, models.NewFieldError("title", "Title is required"))
	}
	if strings.TrimSpace(sub.Description) == "" {
		errs = append(errs, models.NewFieldError("description", "Description is required"))
	}
	if !models.IssueCategory(strings.TrimSpace(sub.Category)).IsValid() {
		errs = append(errs, models.NewFieldError("category", "Invalid category"))
	}
	if p := strings.TrimSpace(sub.Priority); p != "" && !models.IssuePriority(p).IsValid() {
		errs = append(errs, models.NewFieldError("priority", "Invalid priority"))
	}
	if strings.TrimSpace(sub.Location.Address) == "" {
		errs = append(errs, models.NewFieldError("location.address", "Address is required"))
	}
	if strings.TrimSpace(sub.ReporterInfo.Name) == "" {
		errs = append(errs, models.NewFieldError("reporterInfo.name", "Reporter name is required"))
	}
	if fieldCheck.Var(strings.TrimSpace(sub.ReporterInfo.Email), "required,email") != nil {
		errs = append(errs, models.NewFieldError("reporterInfo.email", "Valid email is required"))
	}
	return errs
}

// Create validates sub together with its files, stores the files and
// persists a new Submitted issue. Nothing is written when any rule fails.
func (s *IssueService) Create(ctx context.Context, sub models.IssueSubmission, files []*multipart.FileHeader) (*models.Issue, error) {
	errs := ValidateSubmission(sub)
	if len(files) > 0 {
		if s.media == nil {
			errs = append(errs, models.NewFieldError("images", "Image uploads are not accepted"))
		} else {
			errs = append(errs, s.media.Check(files)...)
		}
	}
	if len(errs) > 0 {
		return nil, &models.ValidationError{Fields: errs}
	}

	var images []models.Image
	if len(files) > 0 {
		saved, err := s.media.Save(files)
		if err != nil {
			return nil, fmt.Errorf("store images: %w", err)
		}
		images = saved
	}

	issue := s.buildIssue(sub, images)
	if err := s.store.Create(ctx, issue); err != nil {
		if len(images) > 0 {
			s.media.Remove(images)
		}
		return nil, err
	}

	s.log.Info("issue reported",
		zap.String("issue_id", issue.ID.Hex()),
		zap.String("category", string(issue.Category)),
		zap.Int("images", len(issue.Images)),
	)
	return issue, nil
}

func (s *IssueService) buildIssue(sub models.IssueSubmission, images []models.Image) *models.Issue {
	category := models.IssueCategory(strings.TrimSpace(sub.Category))
	if category == "" {
		category = models.CategoryOther
	}
	priority := models.IssuePriority(strings.TrimSpace(sub.Priority))
	if priority == "" {
		priority = models.PriorityMedium
	}
	if images == nil {
		images = []models.Image{}
	}

	location := models.Location{Address: strings.TrimSpace(sub.Location.Address)}
	if sub.Location.Coordinates != nil {
		c := *sub.Location.Coordinates
		location.Coordinates = &c
	}

	now := s.now()
	return &models.Issue{
		Title:       strings.TrimSpace(sub.Title),
		Description: strings.TrimSpace(sub.Description),
		Category:    category,
		Priority:    priority,
		Status:      models.StatusSubmitted,
		Location:    location,
		Images:      images,
		ReporterInfo: models.ReporterInfo{
			Name:  strings.TrimSpace(sub.ReporterInfo.Name),
			Email: strings.TrimSpace(sub.ReporterInfo.Email),
			Phone: strings.TrimSpace(sub.ReporterInfo.Phone),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *IssueService) List(ctx context.Context, query models.IssueQuery) (*models.IssuePage, error) {
	query = query.Normalize()
	issues, total, err := s.store.Find(ctx, query)
	if err != nil {
		return nil, err
	}
	return &models.IssuePage{Issues: issues, Total: total, Page: query.Page, Limit: query.Limit}, nil
}

// Get looks an issue up by its hex id. Malformed ids are reported as
// ErrNotFound.
func (s *IssueService) Get(ctx context.Context, id string) (*models.Issue, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	return s.store.FindByID(ctx, oid)
}

func (s *IssueService) Search(ctx context.Context, text string, limit int) ([]models.Issue, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &models.ValidationError{Fields: []models.FieldError{
			models.NewQueryFieldError("query", "Search text is required"),
		}}
	}
	if limit < 1 {
		limit = models.DefaultSearchLimit
	}
	if limit > models.MaxSearchLimit {
		limit = models.MaxSearchLimit
	}
	return s.store.Search(ctx, text, limit)
}

// Update applies the present members of patch. The patch is validated
// before the issue is looked up so a bad request never touches the store.
func (s *IssueService) Update(ctx context.Context, id string, patch models.IssuePatch) (*models.Issue, error) {
	if errs := patch.Validate(); len(errs) > 0 {
		return nil, &models.ValidationError{Fields: errs}
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}

	issue, err := s.store.Update(ctx, oid, patch, s.now())
	if err != nil {
		return nil, err
	}
	s.log.Info("issue updated",
		zap.String("issue_id", id),
		zap.String("status", string(issue.Status)),
	)
	return issue, nil
}

func (s *IssueService) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return repository.ErrNotFound
	}
	if err := s.store.Delete(ctx, oid); err != nil {
		return err
	}
	s.log.Info("issue deleted", zap.String("issue_id", id))
	return nil
}

func (s *IssueService) GroupStats(ctx context.Context, field models.GroupField) ([]models.GroupCount, error) {
	groups, err := s.store.CountBy(ctx, field)
	if err != nil {
		return nil, err
	}
	if groups == nil {
		groups = []models.GroupCount{}
	}
	return groups, nil
}

// Dashboard computes the staff dashboard over a lookback window of
// periodDays. Values below one fall back to the default window.
func (s *IssueService) Dashboard(ctx context.Context, periodDays int) (*models.DashboardStats, error) {
	if periodDays < 1 {
		periodDays = models.DefaultPeriodDays
	}
	now := s.now()

	total, err := s.store.CountCreated(ctx, time.Time{}, time.Time{})
	if err != nil {
		return nil, err
	}
	recent, err := s.store.CountCreated(ctx, now.AddDate(0, 0, -periodDays), time.Time{})
	if err != nil {
		return nil, err
	}

	stats := &models.DashboardStats{TotalIssues: total, RecentIssues: recent}
	for field, dst := range map[models.GroupField]*[]models.GroupCount{
		models.GroupByStatus:   &stats.StatusStats,
		models.GroupByCategory: &stats.CategoryStats,
		models.GroupByPriority: &stats.PriorityStats,
	} {
		groups, err := s.GroupStats(ctx, field)
		if err != nil {
			return nil, err
		}
		*dst = groups
	}

	latest, err := s.store.Latest(ctx, models.LatestIssuesLimit)
	if err != nil {
		return nil, err
	}
	if latest == nil {
		latest = []models.IssueSummary{}
	}
	stats.LatestIssues = latest

	trend, err := s.dailyTrend(ctx, now)
	if err != nil {
		return nil, err
	}
	stats.Last7Days = trend
	return stats, nil
}

// dailyTrend counts issues created on each of the last TrendDays UTC
// calendar days, oldest first, today included.
func (s *IssueService) dailyTrend(ctx context.Context, now time.Time) ([]models.DailyCount, error) {
	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	trend := make([]models.DailyCount, 0, models.TrendDays)
	for i := models.TrendDays - 1; i >= 0; i-- {
		day := today.AddDate(0, 0, -i)
		n, err := s.store.CountCreated(ctx, day, day.AddDate(0, 0, 1))
		if err != nil {
			return nil, err
		}
		trend = append(trend, models.DailyCount{Date: day.Format("2006-01-02"), Count: n})
	}
	return trend, nil
}

// Map returns the newest geolocated issues as map points.
func (s *IssueService) Map(ctx context.Context) ([]models.MapPoint, error) {
	issues, err := s.store.Geolocated(ctx, models.MapFeedLimit)
	if err != nil {
		return nil, err
	}

	points := make([]models.MapPoint, 0, len(issues))
	for _, issue := range issues {
		c := issue.Location.Coordinates
		if c == nil {
			continue
		}
		points = append(points, models.MapPoint{
			ID:        issue.ID.Hex(),
			Title:     issue.Title,
			Category:  issue.Category,
			Status:    issue.Status,
			Address:   issue.Location.Address,
			Lat:       c.Lat,
			Lng:       c.Lng,
			CreatedAt: issue.CreatedAt,
		})
	}
	return points, nil
}
