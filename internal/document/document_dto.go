package document

import "time"

type CreateDocumentInput struct {
	Type         string         `json:"type" binding:"required,oneof=work-certificate salary-certificate vacation-certificate sick-leave-certificate personal-leave-certificate employment-extract contract-copy other"`
	Title        string         `json:"title" binding:"required"`
	Description  string         `json:"description"`
	RequestID    string         `json:"request_id" binding:"required,uuid"`
	CreatedBy    string         `json:"created_by" binding:"required"`
	TemplateData map[string]any `json:"template_data"`
	Metadata     map[string]any `json:"metadata"`
}

// UpdateDocumentInput is a patch: only non-nil fields are applied.
type UpdateDocumentInput struct {
	Title           *string         `json:"title"`
	Description     *string         `json:"description"`
	Status          *string         `json:"status" binding:"omitempty,oneof=under-review signed rejected"`
	RejectionReason *string         `json:"rejection_reason"`
	SignedByID      *string         `json:"signed_by_id" binding:"omitempty,uuid"`
	TemplateData    *map[string]any `json:"template_data"`
	Metadata        *map[string]any `json:"metadata"`
}

type UpdateDocumentStatusInput struct {
	Status          string  `json:"status" binding:"required,oneof=under-review signed rejected"`
	RejectionReason *string `json:"rejection_reason"`
}

type RegenerateDocumentInput struct {
	ExtraData map[string]any `json:"extra_data"`
}

type DocumentResponse struct {
	ID              string         `json:"id"`
	Type            string         `json:"type"`
	Title           string         `json:"title"`
	Description     string         `json:"description"`
	Status          string         `json:"status"`
	Content         string         `json:"content,omitempty"`
	FilePath        string         `json:"file_path,omitempty"`
	FileURL         string         `json:"file_url,omitempty"`
	RequestID       string         `json:"request_id"`
	RequestedByID   string         `json:"requested_by_id"`
	RequestedByName string         `json:"requested_by_name,omitempty"`
	CreatedByID     *string        `json:"created_by_id,omitempty"`
	CreatedByName   string         `json:"created_by_name,omitempty"`
	SignedByID      *string        `json:"signed_by_id,omitempty"`
	SignedByName    string         `json:"signed_by_name,omitempty"`
	SignedAt        *string        `json:"signed_at,omitempty"`
	RejectionReason *string        `json:"rejection_reason,omitempty"`
	Metadata        map[string]any `json:"metadata,omitempty"`
	CreatedAt       string         `json:"created_at"`
	UpdatedAt       string         `json:"updated_at"`
}

func mapToResponse(d Document) DocumentResponse {
	resp := DocumentResponse{
		ID:              d.ID.String(),
		Type:            d.Type,
		Title:           d.Title,
		Description:     d.Description,
		Status:          d.Status,
		Content:         d.Content,
		FilePath:        d.FilePath,
		FileURL:         d.FileURL,
		RequestID:       d.SourceRequestID.String(),
		RequestedByID:   d.RequestedByID.String(),
		RejectionReason: d.RejectionReason,
		Metadata:        d.Metadata,
		CreatedAt:       d.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       d.UpdatedAt.Format(time.RFC3339),
	}
	if d.RequestedBy != nil {
		resp.RequestedByName = d.RequestedBy.FullName()
	}
	if d.CreatedByID != nil {
		v := d.CreatedByID.String()
		resp.CreatedByID = &v
	}
	if d.CreatedBy != nil {
		resp.CreatedByName = d.CreatedBy.FullName()
	}
	if d.SignedByID != nil {
		v := d.SignedByID.String()
		resp.SignedByID = &v
	}
	if d.SignedBy != nil {
		resp.SignedByName = d.SignedBy.FullName()
	}
	if d.SignedAt != nil {
		v := d.SignedAt.Format(time.RFC3339)
		resp.SignedAt = &v
	}
	return resp
}

func mapToListResponse(documents []Document) []DocumentResponse {
	resp := make([]DocumentResponse, len(documents))
	for i, d := range documents {
		resp[i] = mapToResponse(d)
	}
	return resp
}
