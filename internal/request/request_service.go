package request

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"hrm-system/internal/domain"
	"hrm-system/internal/employee"
	"hrm-system/internal/events"
	"hrm-system/internal/messaging/kafka"
	requesterrors "hrm-system/internal/request/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	leaveLeadTimeDays  = 3
	maxVacationDays    = 30
	dateLayout         = "2006-01-02"
	defaultPriority    = PriorityMedium
	requestCreatedType = "request.created"
)

// autoGenerateTypes is the fixed subset of request types for which a document
// is generated automatically on submission.
var autoGenerateTypes = map[string]bool{
	TypeDocument:      true,
	TypeCertificate:   true,
	TypeLeaveVacation: true,
	TypeLeaveSick:     true,
	TypeLeavePersonal: true,
}

// DocumentGenerator is the hook into the document workflow. Generation runs
// best-effort after a request is created: its failure is logged, never
// surfaced to the submitter.
type DocumentGenerator interface {
	GenerateFromRequest(ctx context.Context, requestID string, actor domain.Actor) error
}

type Service interface {
	Create(ctx context.Context, actor domain.Actor, req CreateRequestInput) (RequestResponse, error)
	Update(ctx context.Context, actor domain.Actor, id string, req UpdateRequestInput) (RequestResponse, error)
	UpdateStatus(ctx context.Context, actor domain.Actor, id, status string) (RequestResponse, error)
	Delete(ctx context.Context, actor domain.Actor, id string) error
	List(ctx context.Context, f Filter) ([]RequestResponse, int64, error)
	GetByID(ctx context.Context, id string) (RequestResponse, error)
	GetByEmployee(ctx context.Context, employeeID string, f Filter) ([]RequestResponse, int64, error)
	GetByStatus(ctx context.Context, status string, f Filter) ([]RequestResponse, int64, error)
}

type service struct {
	db        *sql.DB
	repo      Repository
	employees employee.Repository
	docs      DocumentGenerator
	outbox    kafka.OutboxRepository
	logger    *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	employees employee.Repository,
	docs DocumentGenerator,
	outbox kafka.OutboxRepository,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("request.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("request.service")
	}
	return &service{
		db:        db,
		repo:      repo,
		employees: employees,
		docs:      docs,
		outbox:    outbox,
		logger:    l,
	}
}

func (s *service) Create(ctx context.Context, actor domain.Actor, req CreateRequestInput) (RequestResponse, error) {
	s.logger.Debug("create request",
		zap.String("actor_id", actor.EmployeeID),
		zap.String("type", req.Type),
	)

	startDate, endDate, duration, err := validateDates(req.Type, req.StartDate, req.EndDate)
	if err != nil {
		s.logger.Warn("create request validation failed", zap.Error(err))
		return RequestResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create request begin tx failed", zap.Error(err))
		return RequestResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	creator, err := s.employees.FindByID(ctx, actor.EmployeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return RequestResponse{}, requesterrors.ErrEmployeeNotFound
		}
		return RequestResponse{}, err
	}

	var assignee *employee.Employee
	var assigneeID *uuid.UUID
	if req.AssigneeID != nil && *req.AssigneeID != "" {
		assignee, err = s.employees.FindByID(ctx, *req.AssigneeID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return RequestResponse{}, requesterrors.ErrEmployeeNotFound
			}
			return RequestResponse{}, err
		}
		assigneeID = &assignee.ID
	}

	priority := req.Priority
	if priority == "" {
		priority = defaultPriority
	}

	r := &Request{
		ID:          uuid.New(),
		Type:        req.Type,
		Priority:    priority,
		Title:       req.Title,
		Description: req.Description,
		Status:      StatusPending,
		CreatorID:   creator.ID,
		AssigneeID:  assigneeID,
		StartDate:   startDate,
		EndDate:     endDate,
		Duration:    duration,
		Attachments: req.Attachments,
	}

	if err := qtx.Create(ctx, r); err != nil {
		s.logger.Error("create request persist failed", zap.Error(err))
		return RequestResponse{}, err
	}

	if err := s.writeCreatedEvent(ctx, tx, r); err != nil {
		s.logger.Error("create request outbox write failed", zap.Error(err))
		return RequestResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("create request commit failed", zap.Error(err))
		return RequestResponse{}, err
	}
	s.logger.Info("request created",
		zap.String("request_id", r.ID.String()),
		zap.String("type", r.Type),
		zap.String("creator_id", r.CreatorID.String()),
	)

	// Document generation is attempt-but-don't-block: the request stands even
	// when the artifact pipeline is down.
	if s.docs != nil && autoGenerateTypes[r.Type] {
		if err := s.docs.GenerateFromRequest(ctx, r.ID.String(), actor); err != nil {
			s.logger.Warn("auto document generation failed",
				zap.String("request_id", r.ID.String()),
				zap.String("type", r.Type),
				zap.Error(err),
			)
		}
	}

	r.Creator = creator
	r.Assignee = assignee
	return mapToResponse(*r), nil
}

func (s *service) writeCreatedEvent(ctx context.Context, tx *sql.Tx, r *Request) error {
	if s.outbox == nil {
		return nil
	}

	payload, err := json.Marshal(events.RequestCreatedEvent{
		EventType:   requestCreatedType,
		RequestID:   r.ID.String(),
		RequestType: r.Type,
		CreatorID:   r.CreatorID.String(),
		OccurredAt:  time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	return s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.New().String(),
		AggregateType: "request",
		AggregateID:   r.ID.String(),
		EventType:     requestCreatedType,
		Topic:         events.RequestLifecycleTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}

func (s *service) Update(ctx context.Context, actor domain.Actor, id string, req UpdateRequestInput) (RequestResponse, error) {
	s.logger.Debug("update request",
		zap.String("request_id", id),
		zap.String("actor_id", actor.EmployeeID),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("update request begin tx failed", zap.Error(err))
		return RequestResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	r, err := s.loadRequest(ctx, qtx, id)
	if err != nil {
		return RequestResponse{}, err
	}

	if !domain.Allowed(actor, []string{r.CreatorID.String()}, domain.ElevatedRoles...) {
		s.logger.Warn("update request forbidden",
			zap.String("request_id", id),
			zap.String("actor_id", actor.EmployeeID),
		)
		return RequestResponse{}, requesterrors.ErrForbidden
	}

	if req.Priority != nil {
		r.Priority = *req.Priority
	}
	if req.Title != nil {
		r.Title = *req.Title
	}
	if req.Description != nil {
		r.Description = *req.Description
	}
	if req.Attachments != nil {
		r.Attachments = *req.Attachments
	}
	if req.AssigneeID != nil {
		if *req.AssigneeID == "" {
			r.AssigneeID = nil
			r.Assignee = nil
		} else {
			assignee, err := s.employees.FindByID(ctx, *req.AssigneeID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return RequestResponse{}, requesterrors.ErrEmployeeNotFound
				}
				return RequestResponse{}, err
			}
			r.AssigneeID = &assignee.ID
			r.Assignee = assignee
		}
	}

	if req.StartDate != nil || req.EndDate != nil {
		if err := applyDatePatch(r, req.StartDate, req.EndDate); err != nil {
			s.logger.Warn("update request date patch invalid", zap.Error(err))
			return RequestResponse{}, err
		}
	}

	if err := qtx.Update(ctx, r); err != nil {
		s.logger.Error("update request persist failed", zap.String("request_id", id), zap.Error(err))
		return RequestResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		s.logger.Error("update request commit failed", zap.String("request_id", id), zap.Error(err))
		return RequestResponse{}, err
	}
	s.logger.Info("request updated", zap.String("request_id", id))

	return mapToResponse(*r), nil
}

func (s *service) UpdateStatus(ctx context.Context, actor domain.Actor, id, status string) (RequestResponse, error) {
	s.logger.Debug("update request status",
		zap.String("request_id", id),
		zap.String("actor_id", actor.EmployeeID),
		zap.String("target_status", status),
	)

	if !isKnownStatus(status) {
		return RequestResponse{}, requesterrors.ErrInvalidStatus
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("update request status begin tx failed", zap.Error(err))
		return RequestResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	r, err := s.loadRequest(ctx, qtx, id)
	if err != nil {
		return RequestResponse{}, err
	}

	owners := []string{r.CreatorID.String()}
	if r.AssigneeID != nil {
		owners = append(owners, r.AssigneeID.String())
	}
	if !domain.Allowed(actor, owners, domain.ElevatedRoles...) {
		s.logger.Warn("update request status forbidden",
			zap.String("request_id", id),
			zap.String("actor_id", actor.EmployeeID),
		)
		return RequestResponse{}, requesterrors.ErrForbidden
	}

	r.Status = status

	if err := qtx.Update(ctx, r); err != nil {
		s.logger.Error("update request status persist failed", zap.String("request_id", id), zap.Error(err))
		return RequestResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		s.logger.Error("update request status commit failed", zap.String("request_id", id), zap.Error(err))
		return RequestResponse{}, err
	}
	s.logger.Info("request status updated",
		zap.String("request_id", id),
		zap.String("status", status),
	)

	return mapToResponse(*r), nil
}

func (s *service) Delete(ctx context.Context, actor domain.Actor, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	r, err := s.loadRequest(ctx, qtx, id)
	if err != nil {
		return err
	}

	if !domain.Allowed(actor, []string{r.CreatorID.String()}, domain.ElevatedRoles...) {
		s.logger.Warn("delete request forbidden",
			zap.String("request_id", id),
			zap.String("actor_id", actor.EmployeeID),
		)
		return requesterrors.ErrForbidden
	}

	if err := qtx.Delete(ctx, id); err != nil {
		s.logger.Error("delete request failed", zap.String("request_id", id), zap.Error(err))
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	s.logger.Info("request deleted", zap.String("request_id", id))
	return nil
}

func (s *service) List(ctx context.Context, f Filter) ([]RequestResponse, int64, error) {
	requests, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	return mapToListResponse(requests), total, nil
}

func (s *service) GetByID(ctx context.Context, id string) (RequestResponse, error) {
	r, err := s.loadRequest(ctx, s.repo, id)
	if err != nil {
		return RequestResponse{}, err
	}
	return mapToResponse(*r), nil
}

func (s *service) GetByEmployee(ctx context.Context, employeeID string, f Filter) ([]RequestResponse, int64, error) {
	f.CreatorID = employeeID
	return s.List(ctx, f)
}

func (s *service) GetByStatus(ctx context.Context, status string, f Filter) ([]RequestResponse, int64, error) {
	if !isKnownStatus(status) {
		return nil, 0, requesterrors.ErrInvalidStatus
	}
	f.Statuses = []string{status}
	return s.List(ctx, f)
}

func (s *service) loadRequest(ctx context.Context, repo Repository, id string) (*Request, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, requesterrors.ErrInvalidRequestID
	}
	r, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, requesterrors.ErrRequestNotFound
		}
		return nil, err
	}
	return r, nil
}

func isKnownStatus(status string) bool {
	switch status {
	case StatusPending, StatusApproved, StatusRejected, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// validateDates parses the optional date window and enforces the leave rules:
// start before end, a 3-day lead time for leave types, and the 30-day cap for
// vacations. Duration is inclusive of both endpoints.
func validateDates(requestType string, start, end *string) (*time.Time, *time.Time, *int, error) {
	var startDate, endDate *time.Time

	if start != nil && *start != "" {
		t, err := time.Parse(dateLayout, *start)
		if err != nil {
			return nil, nil, nil, requesterrors.ErrInvalidDateFormat
		}
		startDate = &t
	}
	if end != nil && *end != "" {
		t, err := time.Parse(dateLayout, *end)
		if err != nil {
			return nil, nil, nil, requesterrors.ErrInvalidDateFormat
		}
		endDate = &t
	}

	var duration *int
	if startDate != nil && endDate != nil {
		if startDate.After(*endDate) {
			return nil, nil, nil, requesterrors.ErrInvalidDateRange
		}
		d := int(endDate.Sub(*startDate).Hours()/24) + 1
		duration = &d
	}

	if IsLeaveType(requestType) && startDate != nil {
		minStart := time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, leaveLeadTimeDays)
		if startDate.Before(minStart) {
			return nil, nil, nil, requesterrors.ErrLeaveTooSoon
		}
	}
	if requestType == TypeLeaveVacation && duration != nil && *duration > maxVacationDays {
		return nil, nil, nil, requesterrors.ErrVacationTooLong
	}

	return startDate, endDate, duration, nil
}

// applyDatePatch merges patched dates onto the entity and recomputes the
// duration. The lead-time rule applies at submission only, not on update.
func applyDatePatch(r *Request, start, end *string) error {
	newStart := r.StartDate
	newEnd := r.EndDate

	if start != nil {
		if *start == "" {
			newStart = nil
		} else {
			t, err := time.Parse(dateLayout, *start)
			if err != nil {
				return requesterrors.ErrInvalidDateFormat
			}
			newStart = &t
		}
	}
	if end != nil {
		if *end == "" {
			newEnd = nil
		} else {
			t, err := time.Parse(dateLayout, *end)
			if err != nil {
				return requesterrors.ErrInvalidDateFormat
			}
			newEnd = &t
		}
	}

	if newStart != nil && newEnd != nil {
		if newStart.After(*newEnd) {
			return requesterrors.ErrInvalidDateRange
		}
		d := int(newEnd.Sub(*newStart).Hours()/24) + 1
		if r.Type == TypeLeaveVacation && d > maxVacationDays {
			return requesterrors.ErrVacationTooLong
		}
		r.Duration = &d
	} else {
		r.Duration = nil
	}

	r.StartDate = newStart
	r.EndDate = newEnd
	return nil
}
