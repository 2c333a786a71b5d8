package review

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"hrunity/internal/domain/performance"
)

// Report writes a PDF summary of an employee's review for a quarter.
func (s *Service) Report(ctx context.Context, employeeID, quarterID string, w io.Writer) error {
	subj, err := s.resolve(ctx, employeeID, quarterID)
	if err != nil {
		return err
	}
	c, err := s.loadCatalog(ctx)
	if err != nil {
		return err
	}
	records, err := s.deps.Records.RecordsFor(ctx, employeeID, quarterID)
	if err != nil {
		return err
	}
	stats := performance.ComputeStats(records)

	var assessment AssessmentPayload
	if stats.SelfAssessment != nil {
		if assessment, err = decodePayload[AssessmentPayload](*stats.SelfAssessment); err != nil {
			return err
		}
	}
	var requests FeedbackRequestPayload
	if stats.RequestFeedback != nil {
		if requests, err = decodePayload[FeedbackRequestPayload](*stats.RequestFeedback); err != nil {
			return err
		}
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(fmt.Sprintf("Performance review %s %s", subj.employee.Name, subj.quarter.ID), true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, tr("Performance Review"))
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, tr(fmt.Sprintf("Employee: %s (%s)", subj.employee.Name, subj.employee.EmployeeID)))
	pdf.Ln(7)
	pdf.Cell(0, 8, tr(fmt.Sprintf("Role: %s, %s", subj.employee.Role, subj.employee.Department)))
	pdf.Ln(7)
	pdf.Cell(0, 8, tr(fmt.Sprintf("Quarter: %s %d (%s to %s)", subj.quarter.Name, subj.quarter.Year,
		subj.quarter.StartDate.Format("2006-01-02"), subj.quarter.EndDate.Format("2006-01-02"))))
	pdf.Ln(10)

	section(pdf, tr, "Progress")
	pdf.Cell(0, 8, tr(fmt.Sprintf("Self-assessment: %s", statusLabel(stats.SelfAssessment))))
	pdf.Ln(7)
	pdf.Cell(0, 8, tr(fmt.Sprintf("Feedback requests: %s (%d sent, %d failed)", statusLabel(stats.RequestFeedback), requests.SentCount, requests.FailedCount)))
	pdf.Ln(7)
	pdf.Cell(0, 8, tr(fmt.Sprintf("Feedback summary: %s", statusLabel(stats.FeedbackSummary))))
	pdf.Ln(7)
	progress := computeProgress(c, assessment.Answers)
	pdf.Cell(0, 8, tr(fmt.Sprintf("Answered: %d of %d questions (%d%%)", progress.Answered, progress.Total, progress.Percentage)))
	pdf.Ln(10)

	if len(c.quantitative) > 0 {
		section(pdf, tr, "Scored questions")
		for _, q := range c.quantitative {
			answer := orDash(assessment.Answers[QuantitativeKey(q.ID)])
			pdf.MultiCell(0, 6, tr(fmt.Sprintf("%s [%s]: %s", q.Question, q.Scale, answer)), "", "L", false)
			pdf.Ln(2)
		}
		pdf.Ln(4)
	}
	if len(c.qualitative) > 0 {
		section(pdf, tr, "Written answers")
		for _, q := range c.qualitative {
			pdf.SetFont("Helvetica", "B", 11)
			pdf.MultiCell(0, 6, tr(q.Question), "", "L", false)
			pdf.SetFont("Helvetica", "", 11)
			pdf.MultiCell(0, 6, tr(orDash(assessment.Answers[QualitativeKey(q.ID)])), "", "L", false)
			pdf.Ln(3)
		}
	}
	if assessment.AISummary != "" {
		section(pdf, tr, "Summary")
		pdf.MultiCell(0, 6, tr(assessment.AISummary), "", "L", false)
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return pdf.Output(w)
}

func section(pdf *gofpdf.Fpdf, tr func(string) string, title string) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, tr(title))
	pdf.Ln(9)
	pdf.SetFont("Helvetica", "", 11)
}

func statusLabel(rec *performance.Record) string {
	if rec == nil {
		return "not started"
	}
	return strings.ReplaceAll(string(rec.Status), "_", " ")
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
