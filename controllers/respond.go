package controllers

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"civic-issues-be/models"
	"civic-issues-be/repository"
	"civic-issues-be/services"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const requestTimeout = 10 * time.Second

var jsonNamesOnce sync.Once

func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}

func validationFailed(c *gin.Context, fields []models.FieldError) {
	c.JSON(http.StatusBadRequest, gin.H{"errors": fields})
}

// respondError maps service errors onto the HTTP error taxonomy. Anything
// unrecognized is logged and reported as a generic 500.
func respondError(c *gin.Context, log *zap.Logger, err error, notFound string) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		validationFailed(c, verr.Fields)
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": notFound})
	case errors.Is(err, repository.ErrDuplicateEmail):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Admin already exists"})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid credentials"})
	default:
		log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
	}
}

// UseJSONFieldNames makes binding errors report JSON member names instead
// of Go field names.
func UseJSONFieldNames() {
	jsonNamesOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
	})
}

// bindingErrors converts a gin binding error to field errors. messages maps
// a JSON field name to the text reported when any rule on it fails.
func bindingErrors(err error, messages map[string]string) []models.FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []models.FieldError{models.NewFieldError("body", "Invalid request body")}
	}

	fields := make([]models.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		path := fe.Field()
		msg, ok := messages[path]
		if !ok {
			msg = "Invalid value"
		}
		fields = append(fields, models.NewFieldError(path, msg))
	}
	return fields
}

// parseIssueQuery reads filters, pagination and ordering from the query
// string. Missing or malformed numbers fall back to defaults.
func parseIssueQuery(c *gin.Context) models.IssueQuery {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(models.DefaultPageSize)))

	order := models.DefaultSort
	if sortBy, ok := c.GetQuery("sortBy"); ok {
		order.Field = models.ParseSortField(sortBy)
	}
	order.Desc = c.DefaultQuery("sortOrder", "desc") != "asc"

	return models.IssueQuery{
		Filter: models.IssueFilter{
			Category:   models.IssueCategory(c.Query("category")),
			Status:     models.IssueStatus(c.Query("status")),
			Priority:   models.IssuePriority(c.Query("priority")),
			AssignedTo: c.Query("assignedTo"),
		},
		Sort:  order,
		Page:  page,
		Limit: limit,
	}.Normalize()
}
