package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IssueCategory enum
type IssueCategory string

const (
	CategoryGarbage     IssueCategory = "Garbage"
	CategoryStreetlight IssueCategory = "Streetlight"
	CategoryWater       IssueCategory = "Water"
	CategoryRoad        IssueCategory = "Road"
	CategoryDrainage    IssueCategory = "Drainage"
	CategoryOther       IssueCategory = "Other"
)

// Categories lists every category in display order.
var Categories = []IssueCategory{
	CategoryGarbage, CategoryStreetlight, CategoryWater,
	CategoryRoad, CategoryDrainage, CategoryOther,
}

func (c IssueCategory) IsValid() bool {
	for _, v := range Categories {
		if c == v {
			return true
		}
	}
	return false
}

// IssuePriority enum
type IssuePriority string

const (
	PriorityLow      IssuePriority = "Low"
	PriorityMedium   IssuePriority = "Medium"
	PriorityHigh     IssuePriority = "High"
	PriorityCritical IssuePriority = "Critical"
)

var Priorities = []IssuePriority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}

func (p IssuePriority) IsValid() bool {
	for _, v := range Priorities {
		if p == v {
			return true
		}
	}
	return false
}

// IssueStatus enum
type IssueStatus string

const (
	StatusSubmitted  IssueStatus = "Submitted"
	StatusInProgress IssueStatus = "In Progress"
	StatusResolved   IssueStatus = "Resolved"
	StatusClosed     IssueStatus = "Closed"
)

var Statuses = []IssueStatus{StatusSubmitted, StatusInProgress, StatusResolved, StatusClosed}

func (s IssueStatus) IsValid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// MaxImages is the most media references a single issue may carry.
const MaxImages = 5

type Coordinates struct {
	Lat float64 `bson:"lat" json:"lat"`
	Lng float64 `bson:"lng" json:"lng"`
}

type Location struct {
	Address     string       `bson:"address" json:"address"`
	Coordinates *Coordinates `bson:"coordinates,omitempty" json:"coordinates,omitempty"`
}

// Image is a stored media reference produced by media intake.
type Image struct {
	URL      string `bson:"url" json:"url"`
	Filename string `bson:"filename" json:"filename"`
}

type ReporterInfo struct {
	Name  string `bson:"name" json:"name"`
	Email string `bson:"email" json:"email"`
	Phone string `bson:"phone" json:"phone,omitempty"`
}

// Issue represents a civic issue reported by a citizen
type Issue struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Title        string             `bson:"title" json:"title"`
	Description  string             `bson:"description" json:"description"`
	Category     IssueCategory      `bson:"category" json:"category"`
	Priority     IssuePriority      `bson:"priority" json:"priority"`
	Status       IssueStatus        `bson:"status" json:"status"`
	Location     Location           `bson:"location" json:"location"`
	Images       []Image            `bson:"images" json:"images"`
	ReporterInfo ReporterInfo       `bson:"reporterInfo" json:"reporterInfo"`
	AssignedTo   *string            `bson:"assignedTo" json:"assignedTo"`
	AdminNotes   string             `bson:"adminNotes" json:"adminNotes"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// PublicReporter is the reporter block visible to unauthenticated callers.
type PublicReporter struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// PublicIssue is the public projection of an Issue: no reporter phone, no admin notes.
type PublicIssue struct {
	ID           primitive.ObjectID `json:"_id"`
	Title        string             `json:"title"`
	Description  string             `json:"description"`
	Category     IssueCategory      `json:"category"`
	Priority     IssuePriority      `json:"priority"`
	Status       IssueStatus        `json:"status"`
	Location     Location           `json:"location"`
	Images       []Image            `json:"images"`
	ReporterInfo PublicReporter     `json:"reporterInfo"`
	AssignedTo   *string            `json:"assignedTo"`
	CreatedAt    time.Time          `json:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt"`
}

func (i Issue) Public() PublicIssue {
	images := i.Images
	if images == nil {
		images = []Image{}
	}
	return PublicIssue{
		ID:          i.ID,
		Title:       i.Title,
		Description: i.Description,
		Category:    i.Category,
		Priority:    i.Priority,
		Status:      i.Status,
		Location:    i.Location,
		Images:      images,
		ReporterInfo: PublicReporter{
			Name:  i.ReporterInfo.Name,
			Email: i.ReporterInfo.Email,
		},
		AssignedTo: i.AssignedTo,
		CreatedAt:  i.CreatedAt,
		UpdatedAt:  i.UpdatedAt,
	}
}

// PublicIssues projects a slice; never returns nil so lists encode as [].
func PublicIssues(issues []Issue) []PublicIssue {
	out := make([]PublicIssue, 0, len(issues))
	for _, issue := range issues {
		out = append(out, issue.Public())
	}
	return out
}

// IssueAck is the minimal acknowledgment returned after intake.
type IssueAck struct {
	ID        primitive.ObjectID `json:"id"`
	Title     string             `json:"title"`
	Status    IssueStatus        `json:"status"`
	CreatedAt time.Time          `json:"createdAt"`
}

func (i Issue) Ack() IssueAck {
	return IssueAck{ID: i.ID, Title: i.Title, Status: i.Status, CreatedAt: i.CreatedAt}
}

// IssueSummary is the dashboard projection of the latest issues.
type IssueSummary struct {
	ID        primitive.ObjectID `bson:"_id" json:"_id"`
	Title     string             `bson:"title" json:"title"`
	Status    IssueStatus        `bson:"status" json:"status"`
	Category  IssueCategory      `bson:"category" json:"category"`
	Priority  IssuePriority      `bson:"priority" json:"priority"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

func (i Issue) Summary() IssueSummary {
	return IssueSummary{
		ID:        i.ID,
		Title:     i.Title,
		Status:    i.Status,
		Category:  i.Category,
		Priority:  i.Priority,
		CreatedAt: i.CreatedAt,
	}
}

// MapPoint is a geolocated issue for the public map feed.
type MapPoint struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	Category  IssueCategory `json:"category"`
	Status    IssueStatus   `json:"status"`
	Address   string        `json:"address"`
	Lat       float64       `json:"lat"`
	Lng       float64       `json:"lng"`
	CreatedAt time.Time     `json:"createdAt"`
}
