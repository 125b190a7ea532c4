package request

import "time"

type CreateRequestInput struct {
	Type        string   `json:"type" binding:"required,oneof=document certificate leave-vacation leave-sick leave-personal business-trip remote-work equipment other"`
	Priority    string   `json:"priority" binding:"omitempty,oneof=low medium high critical"`
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description"`
	AssigneeID  *string  `json:"assignee_id" binding:"omitempty,uuid"`
	StartDate   *string  `json:"start_date"`
	EndDate     *string  `json:"end_date"`
	Attachments []string `json:"attachments"`
}

// UpdateRequestInput is a patch: only non-nil fields are applied.
type UpdateRequestInput struct {
	Priority    *string   `json:"priority" binding:"omitempty,oneof=low medium high critical"`
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	AssigneeID  *string   `json:"assignee_id" binding:"omitempty,uuid"`
	StartDate   *string   `json:"start_date"`
	EndDate     *string   `json:"end_date"`
	Attachments *[]string `json:"attachments"`
}

type UpdateRequestStatusInput struct {
	Status string `json:"status" binding:"required,oneof=pending approved rejected completed cancelled"`
}

type RequestResponse struct {
	ID           string   `json:"id"`
	Type         string   `json:"type"`
	Priority     string   `json:"priority"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Status       string   `json:"status"`
	CreatorID    string   `json:"creator_id"`
	CreatorName  string   `json:"creator_name,omitempty"`
	AssigneeID   *string  `json:"assignee_id,omitempty"`
	AssigneeName string   `json:"assignee_name,omitempty"`
	StartDate    *string  `json:"start_date,omitempty"`
	EndDate      *string  `json:"end_date,omitempty"`
	Duration     *int     `json:"duration,omitempty"`
	Attachments  []string `json:"attachments,omitempty"`
	CreatedAt    string   `json:"created_at"`
	UpdatedAt    string   `json:"updated_at"`
}

func mapToResponse(r Request) RequestResponse {
	resp := RequestResponse{
		ID:          r.ID.String(),
		Type:        r.Type,
		Priority:    r.Priority,
		Title:       r.Title,
		Description: r.Description,
		Status:      r.Status,
		CreatorID:   r.CreatorID.String(),
		Duration:    r.Duration,
		Attachments: r.Attachments,
		CreatedAt:   r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   r.UpdatedAt.Format(time.RFC3339),
	}
	if r.Creator != nil {
		resp.CreatorName = r.Creator.FullName()
	}
	if r.AssigneeID != nil {
		v := r.AssigneeID.String()
		resp.AssigneeID = &v
	}
	if r.Assignee != nil {
		resp.AssigneeName = r.Assignee.FullName()
	}
	if r.StartDate != nil {
		v := r.StartDate.Format("2006-01-02")
		resp.StartDate = &v
	}
	if r.EndDate != nil {
		v := r.EndDate.Format("2006-01-02")
		resp.EndDate = &v
	}
	return resp
}

func mapToListResponse(requests []Request) []RequestResponse {
	resp := make([]RequestResponse, len(requests))
	for i, r := range requests {
		resp[i] = mapToResponse(r)
	}
	return resp
}
