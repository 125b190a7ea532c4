package template

import (
	"fmt"
	"time"

	"hrm-system/internal/employee"
)

// RequestInfo carries the request fields the template data derivation needs,
// decoupled from the request entity so the engine stays a leaf package.
type RequestInfo struct {
	Title     string
	Type      string
	StartDate *time.Time
	EndDate   *time.Time
	Duration  *int
	CreatedAt time.Time
}

var ruMonths = [...]string{
	"января", "февраля", "марта", "апреля", "мая", "июня",
	"июля", "августа", "сентября", "октября", "ноября", "декабря",
}

// FormatDateRU renders a date the way Russian paperwork expects it,
// e.g. "05 марта 2026 г.".
func FormatDateRU(t time.Time) string {
	return fmt.Sprintf("%02d %s %d г.", t.Day(), ruMonths[t.Month()-1], t.Year())
}

// PrepareTemplateData derives the flat placeholder map for a document: the
// employee's composed name and inferred gender, Russian-formatted dates, the
// on-request defaults for salary fields, then the caller's extra values
// overlaid on top so any default can be overridden.
func PrepareTemplateData(emp *employee.Employee, req RequestInfo, extra map[string]any) map[string]any {
	patronymic := ""
	if emp.Patronymic != nil {
		patronymic = *emp.Patronymic
	}

	data := map[string]any{
		"fullName":    emp.FullName(),
		"firstName":   emp.FirstName,
		"lastName":    emp.LastName,
		"patronymic":  patronymic,
		"gender":      InferGender(emp.FirstName, patronymic),
		"position":    emp.Position,
		"department":  emp.Department,
		"email":       emp.Email,
		"currentDate": FormatDateRU(time.Now()),

		"requestTitle": req.Title,
		"requestType":  req.Type,
		"requestDate":  FormatDateRU(req.CreatedAt),

		// Salary details are not stored here; the issuing office fills them in.
		"salary":       "по запросу",
		"salaryPeriod": "по запросу",

		"organizationName": "ООО «Компания»",
		"signerName":       "",
		"hrManagerName":    "",
	}

	if emp.HiredAt != nil {
		data["hiredAt"] = FormatDateRU(*emp.HiredAt)
	}
	if req.StartDate != nil {
		data["startDate"] = FormatDateRU(*req.StartDate)
	}
	if req.EndDate != nil {
		data["endDate"] = FormatDateRU(*req.EndDate)
	}
	if req.Duration != nil {
		data["duration"] = fmt.Sprintf("%d", *req.Duration)
	}

	for key, value := range extra {
		data[key] = value
	}

	return data
}
