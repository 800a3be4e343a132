package repository

import (
	"context"
	"errors"
	"time"

	"civic-issues-be/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

// IssueStore owns issue records. Implementations rely only on
// single-record atomicity.
type IssueStore interface {
	Create(ctx context.Context, issue *models.Issue) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Issue, error)
	// Find returns one page of matches plus the total match count.
	Find(ctx context.Context, query models.IssueQuery) ([]models.Issue, int64, error)
	// Search matches title, description or address case-insensitively,
	// newest first.
	Search(ctx context.Context, text string, limit int) ([]models.Issue, error)
	Update(ctx context.Context, id primitive.ObjectID, patch models.IssuePatch, at time.Time) (*models.Issue, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	// CountCreated counts issues with from <= createdAt < to. A zero bound
	// is open.
	CountCreated(ctx context.Context, from, to time.Time) (int64, error)
	CountBy(ctx context.Context, field models.GroupField) ([]models.GroupCount, error)
	Latest(ctx context.Context, limit int) ([]models.IssueSummary, error)
	// Geolocated returns the newest issues that carry coordinates.
	Geolocated(ctx context.Context, limit int) ([]models.Issue, error)
	// CreatedBetween returns issues with from <= createdAt < to, oldest first.
	CreatedBetween(ctx context.Context, from, to time.Time) ([]models.Issue, error)
}

// AdminStore owns administrator records.
type AdminStore interface {
	Create(ctx context.Context, admin *models.Admin) error
	FindByEmail(ctx context.Context, email string) (*models.Admin, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Admin, error)
}
