package controllers

import (
	"encoding/json"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"civic-issues-be/models"
	"civic-issues-be/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// IssueController serves the public issue endpoints.
type IssueController struct {
	issues *services.IssueService
	log    *zap.Logger
}

func NewIssueController(issues *services.IssueService, log *zap.Logger) *IssueController {
	return &IssueController{issues: issues, log: log}
}

// CreateIssue accepts a citizen report as multipart form data (with up to
// five images) or as a JSON body.
func (ic *IssueController) CreateIssue(c *gin.Context) {
	var (
		sub        models.IssueSubmission
		files      []*multipart.FileHeader
		decodeErrs []models.FieldError
	)

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		form, err := c.MultipartForm()
		if err != nil {
			validationFailed(c, []models.FieldError{models.NewFieldError("body", "Invalid form data")})
			return
		}
		sub, decodeErrs = submissionFromForm(form)
		files = form.File["images"]
	} else if err := c.ShouldBindJSON(&sub); err != nil {
		validationFailed(c, []models.FieldError{models.NewFieldError("body", "Invalid request body")})
		return
	}

	if len(decodeErrs) > 0 {
		validationFailed(c, append(decodeErrs, services.ValidateSubmission(sub)...))
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	issue, err := ic.issues.Create(ctx, sub, files)
	if err != nil {
		respondError(c, ic.log, err, "Issue not found")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Issue reported successfully",
		"issue":   issue.Ack(),
	})
}

// submissionFromForm reads the text fields of a multipart submission.
// location and reporterInfo arrive as JSON-encoded strings.
func submissionFromForm(form *multipart.Form) (models.IssueSubmission, []models.FieldError) {
	value := func(key string) string {
		if v := form.Value[key]; len(v) > 0 {
			return v[0]
		}
		return ""
	}

	sub := models.IssueSubmission{
		Title:       value("title"),
		Description: value("description"),
		Category:    value("category"),
		Priority:    value("priority"),
		Status:      value("status"),
	}

	var errs []models.FieldError
	if raw := value("location"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &sub.Location); err != nil {
			errs = append(errs, models.NewFieldError("location", "Invalid location"))
		}
	}
	if raw := value("reporterInfo"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &sub.ReporterInfo); err != nil {
			errs = append(errs, models.NewFieldError("reporterInfo", "Invalid reporter information"))
		}
	}
	return sub, errs
}

// GetAllIssues lists issues in the public projection.
func (ic *IssueController) GetAllIssues(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	page, err := ic.issues.List(ctx, parseIssueQuery(c))
	if err != nil {
		respondError(c, ic.log, err, "Issue not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"issues":     models.PublicIssues(page.Issues),
		"pagination": page.Pagination(),
	})
}

func (ic *IssueController) GetIssue(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	issue, err := ic.issues.Get(ctx, c.Param("id"))
	if err != nil {
		respondError(c, ic.log, err, "Issue not found")
		return
	}
	c.JSON(http.StatusOK, issue.Public())
}

func (ic *IssueController) SearchIssues(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(models.DefaultSearchLimit)))

	ctx, cancel := requestContext(c)
	defer cancel()

	issues, err := ic.issues.Search(ctx, c.Param("query"), limit)
	if err != nil {
		respondError(c, ic.log, err, "Issue not found")
		return
	}
	c.JSON(http.StatusOK, models.PublicIssues(issues))
}

// IssueMap returns the newest geolocated issues for map display.
func (ic *IssueController) IssueMap(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	points, err := ic.issues.Map(ctx)
	if err != nil {
		respondError(c, ic.log, err, "Issue not found")
		return
	}
	c.JSON(http.StatusOK, points)
}
