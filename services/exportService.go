package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"civic-issues-be/models"
	"civic-issues-be/repository"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

type ExportFormat string

const (
	FormatCSV  ExportFormat = "csv"
	FormatXLSX ExportFormat = "xlsx"

	exportDateLayout = "2006-01-02"
	exportSheet      = "Issues"
)

var exportHeader = []string{
	"id", "created_at", "updated_at", "title", "category", "priority", "status",
	"address", "latitude", "longitude", "reporter_name", "reporter_email",
	"reporter_phone", "assigned_to", "admin_notes", "images",
}

// ExportRange is a span of whole UTC days. To is exclusive.
type ExportRange struct {
	From time.Time
	To   time.Time
}

// ParseExportRange reads inclusive from/to dates (YYYY-MM-DD) and a format.
// An empty format means csv.
func ParseExportRange(from, to, format string) (ExportRange, ExportFormat, error) {
	var errs []models.FieldError
	start, err := time.Parse(exportDateLayout, from)
	if err != nil {
		errs = append(errs, models.NewQueryFieldError("from", "Date must be YYYY-MM-DD"))
	}
	end, err := time.Parse(exportDateLayout, to)
	if err != nil {
		errs = append(errs, models.NewQueryFieldError("to", "Date must be YYYY-MM-DD"))
	}
	if len(errs) == 0 && end.Before(start) {
		errs = append(errs, models.NewQueryFieldError("to", "End date is before start date"))
	}

	f := ExportFormat(format)
	if f == "" {
		f = FormatCSV
	}
	if f != FormatCSV && f != FormatXLSX {
		errs = append(errs, models.NewQueryFieldError("format", "Format must be csv or xlsx"))
	}
	if len(errs) > 0 {
		return ExportRange{}, "", &models.ValidationError{Fields: errs}
	}
	return ExportRange{From: start, To: end.AddDate(0, 0, 1)}, f, nil
}

// ExportService writes issue reports for staff.
type ExportService struct {
	store repository.IssueStore
	log   *zap.Logger
}

func NewExportService(store repository.IssueStore, log *zap.Logger) *ExportService {
	return &ExportService{store: store, log: log}
}

// Export writes every issue created within r to w in the given format.
func (s *ExportService) Export(ctx context.Context, r ExportRange, format ExportFormat, w io.Writer) error {
	issues, err := s.store.CreatedBetween(ctx, r.From, r.To)
	if err != nil {
		return fmt.Errorf("load issues for export: %w", err)
	}

	switch format {
	case FormatXLSX:
		err = writeXLSX(issues, w)
	default:
		err = writeCSV(issues, w)
	}
	if err != nil {
		return err
	}

	s.log.Info("issues exported",
		zap.String("format", string(format)),
		zap.Int("rows", len(issues)),
		zap.Time("from", r.From),
		zap.Time("to", r.To),
	)
	return nil
}

func exportRow(issue models.Issue) []string {
	lat, lng := "", ""
	if c := issue.Location.Coordinates; c != nil {
		lat = strconv.FormatFloat(c.Lat, 'f', 6, 64)
		lng = strconv.FormatFloat(c.Lng, 'f', 6, 64)
	}
	assigned := ""
	if issue.AssignedTo != nil {
		assigned = *issue.AssignedTo
	}
	urls := make([]string, 0, len(issue.Images))
	for _, img := range issue.Images {
		urls = append(urls, img.URL)
	}
	return []string{
		issue.ID.Hex(),
		issue.CreatedAt.UTC().Format(time.RFC3339),
		issue.UpdatedAt.UTC().Format(time.RFC3339),
		issue.Title,
		string(issue.Category),
		string(issue.Priority),
		string(issue.Status),
		issue.Location.Address,
		lat,
		lng,
		issue.ReporterInfo.Name,
		issue.ReporterInfo.Email,
		issue.ReporterInfo.Phone,
		assigned,
		issue.AdminNotes,
		strings.Join(urls, " "),
	}
}

func writeCSV(issues []models.Issue, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, issue := range issues {
		if err := cw.Write(exportRow(issue)); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeXLSX(issues []models.Issue, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("delete default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	if err := writeSheetRow(f, 1, exportHeader); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(exportHeader), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(exportSheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("set header style: %w", err)
	}

	for i, issue := range issues {
		if err := writeSheetRow(f, i+2, exportRow(issue)); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func writeSheetRow(f *excelize.File, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(exportSheet, cell, &cells); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}
