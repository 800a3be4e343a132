package controllers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"civic-issues-be/models"
	"civic-issues-be/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminController serves the staff-only issue endpoints.
type AdminController struct {
	issues *services.IssueService
	export *services.ExportService
	log    *zap.Logger
}

func NewAdminController(issues *services.IssueService, export *services.ExportService, log *zap.Logger) *AdminController {
	return &AdminController{issues: issues, export: export, log: log}
}

// GetAllIssues lists issues in the admin projection together with status
// and category breakdowns.
func (ac *AdminController) GetAllIssues(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	page, err := ac.issues.List(ctx, parseIssueQuery(c))
	if err != nil {
		respondError(c, ac.log, err, "Issue not found")
		return
	}
	byStatus, err := ac.issues.GroupStats(ctx, models.GroupByStatus)
	if err != nil {
		respondError(c, ac.log, err, "Issue not found")
		return
	}
	byCategory, err := ac.issues.GroupStats(ctx, models.GroupByCategory)
	if err != nil {
		respondError(c, ac.log, err, "Issue not found")
		return
	}

	issues := page.Issues
	if issues == nil {
		issues = []models.Issue{}
	}
	c.JSON(http.StatusOK, gin.H{
		"issues":     issues,
		"pagination": page.Pagination(),
		"stats": gin.H{
			"byStatus":   byStatus,
			"byCategory": byCategory,
		},
	})
}

func (ac *AdminController) GetIssue(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	issue, err := ac.issues.Get(ctx, c.Param("id"))
	if err != nil {
		respondError(c, ac.log, err, "Issue not found")
		return
	}
	c.JSON(http.StatusOK, issue)
}

// UpdateIssue applies a partial update of status, priority, assignedTo
// and adminNotes.
func (ac *AdminController) UpdateIssue(c *gin.Context) {
	var patch models.IssuePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		validationFailed(c, []models.FieldError{models.NewFieldError("body", "Invalid request body")})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	issue, err := ac.issues.Update(ctx, c.Param("id"), patch)
	if err != nil {
		respondError(c, ac.log, err, "Issue not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Issue updated successfully",
		"issue":   issue,
	})
}

func (ac *AdminController) DeleteIssue(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := ac.issues.Delete(ctx, c.Param("id")); err != nil {
		respondError(c, ac.log, err, "Issue not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Issue deleted successfully"})
}

// Dashboard returns the statistics for the last ?period days (default 30).
func (ac *AdminController) Dashboard(c *gin.Context) {
	period, _ := strconv.Atoi(c.DefaultQuery("period", strconv.Itoa(models.DefaultPeriodDays)))

	ctx, cancel := requestContext(c)
	defer cancel()

	stats, err := ac.issues.Dashboard(ctx, period)
	if err != nil {
		respondError(c, ac.log, err, "Issue not found")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ExportIssues streams the issues created between ?from and ?to
// (inclusive, YYYY-MM-DD) as csv or xlsx.
func (ac *AdminController) ExportIssues(c *gin.Context) {
	fromS, toS := c.Query("from"), c.Query("to")
	r, format, err := services.ParseExportRange(fromS, toS, c.Query("format"))
	if err != nil {
		respondError(c, ac.log, err, "Issue not found")
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	var buf bytes.Buffer
	if err := ac.export.Export(ctx, r, format, &buf); err != nil {
		respondError(c, ac.log, err, "Issue not found")
		return
	}

	contentType := "text/csv; charset=utf-8"
	if format == services.FormatXLSX {
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=issues_%s..%s.%s", fromS, toS, format))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}
