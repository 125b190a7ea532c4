package document

import (
	"fmt"

	"hrm-system/internal/request"
	"hrm-system/internal/template"
)

// Document types.
const (
	TypeWorkCertificate          = "work-certificate"
	TypeSalaryCertificate        = "salary-certificate"
	TypeVacationCertificate      = "vacation-certificate"
	TypeSickLeaveCertificate     = "sick-leave-certificate"
	TypePersonalLeaveCertificate = "personal-leave-certificate"
	TypeEmploymentExtract        = "employment-extract"
	TypeContractCopy             = "contract-copy"
	TypeOther                    = "other"
)

// Document statuses. Draft is only ever written by seed data; the workflow
// accepts it on read and never sets it.
const (
	StatusUnderReview = "under-review"
	StatusSigned      = "signed"
	StatusRejected    = "rejected"
	StatusDraft       = "draft"
)

// generationRule describes how one request type maps onto a generated
// document: the document type, its title, and the type-specific extra
// template fields. Adding a document kind means adding a row here.
type generationRule struct {
	docType     string
	title       string
	extraFields func(r *request.Request) map[string]any
}

var generationRules = map[string]generationRule{
	request.TypeDocument: {
		docType: TypeWorkCertificate,
		title:   "Справка с места работы",
	},
	request.TypeCertificate: {
		docType: TypeSalaryCertificate,
		title:   "Справка о доходах",
	},
	request.TypeLeaveVacation: {
		docType:     TypeVacationCertificate,
		title:       "Справка о предоставлении отпуска",
		extraFields: vacationFields,
	},
	request.TypeLeaveSick: {
		docType:     TypeSickLeaveCertificate,
		title:       "Справка об отсутствии по болезни",
		extraFields: sickLeaveFields,
	},
	request.TypeLeavePersonal: {
		docType:     TypePersonalLeaveCertificate,
		title:       "Справка об отпуске без сохранения заработной платы",
		extraFields: personalLeaveFields,
	},
}

var defaultRule = generationRule{
	docType: TypeOther,
	title:   "Документ по заявке",
}

func ruleFor(requestType string) generationRule {
	if rule, ok := generationRules[requestType]; ok {
		return rule
	}
	return defaultRule
}

func vacationFields(r *request.Request) map[string]any {
	fields := leaveWindowFields(r)
	if r.StartDate != nil && r.EndDate != nil && r.Duration != nil {
		fields["vacationNote"] = fmt.Sprintf(
			"Отпуск предоставляется с %s по %s продолжительностью %d календарных дней.",
			template.FormatDateRU(*r.StartDate), template.FormatDateRU(*r.EndDate), *r.Duration,
		)
	}
	return fields
}

func sickLeaveFields(r *request.Request) map[string]any {
	fields := leaveWindowFields(r)
	if r.StartDate != nil && r.EndDate != nil && r.Duration != nil {
		fields["sickLeaveNote"] = fmt.Sprintf(
			"Период временной нетрудоспособности: с %s по %s (%d календарных дней).",
			template.FormatDateRU(*r.StartDate), template.FormatDateRU(*r.EndDate), *r.Duration,
		)
	}
	return fields
}

// personalLeaveFields composes a single narrative sentence carrying the whole
// window, since the personal leave template has no per-field slots.
func personalLeaveFields(r *request.Request) map[string]any {
	fields := leaveWindowFields(r)
	if r.StartDate != nil && r.EndDate != nil && r.Duration != nil {
		fields["personalLeaveNote"] = fmt.Sprintf(
			"Работнику предоставляется отпуск без сохранения заработной платы с %s по %s продолжительностью %d календарных дней.",
			template.FormatDateRU(*r.StartDate), template.FormatDateRU(*r.EndDate), *r.Duration,
		)
	}
	return fields
}

func leaveWindowFields(r *request.Request) map[string]any {
	fields := map[string]any{}
	if r.StartDate != nil {
		fields["startDate"] = template.FormatDateRU(*r.StartDate)
	}
	if r.EndDate != nil {
		fields["endDate"] = template.FormatDateRU(*r.EndDate)
	}
	if r.Duration != nil {
		fields["duration"] = fmt.Sprintf("%d", *r.Duration)
	}
	return fields
}
