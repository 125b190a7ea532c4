package document

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	documenterrors "hrm-system/internal/document/errors"
	"hrm-system/internal/domain"
	"hrm-system/internal/employee"
	"hrm-system/internal/events"
	"hrm-system/internal/identity"
	"hrm-system/internal/messaging/kafka"
	"hrm-system/internal/request"
	"hrm-system/internal/template"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	documentSignedType   = "document.signed"
	documentRejectedType = "document.rejected"
)

// TemplateRenderer is the slice of the template engine the workflow needs.
type TemplateRenderer interface {
	TemplatePath(docType string) string
	GenerateDocument(docType string, data map[string]any, documentID string) (*template.Artifact, error)
	DeleteDocument(filePath string) error
}

type Service interface {
	Create(ctx context.Context, actor domain.Actor, req CreateDocumentInput) (DocumentResponse, error)
	GenerateFromRequest(ctx context.Context, requestID string, actor domain.Actor) error
	Update(ctx context.Context, actor domain.Actor, id string, req UpdateDocumentInput) (DocumentResponse, error)
	UpdateStatus(ctx context.Context, actor domain.Actor, id, status string, rejectionReason *string) (DocumentResponse, error)
	Regenerate(ctx context.Context, actor domain.Actor, id string, extraData map[string]any) (DocumentResponse, error)
	Delete(ctx context.Context, actor domain.Actor, id string) error
	List(ctx context.Context, f Filter) ([]DocumentResponse, int64, error)
	GetByID(ctx context.Context, id string) (DocumentResponse, error)
	GetByRequest(ctx context.Context, requestID string) ([]DocumentResponse, error)
	GetByEmployee(ctx context.Context, employeeID string, f Filter) ([]DocumentResponse, int64, error)
	GetByStatus(ctx context.Context, status string, f Filter) ([]DocumentResponse, int64, error)
}

type service struct {
	db       *sql.DB
	repo     Repository
	requests request.Repository
	resolver *identity.Resolver
	renderer TemplateRenderer
	outbox   kafka.OutboxRepository
	logger   *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	requests request.Repository,
	resolver *identity.Resolver,
	renderer TemplateRenderer,
	outbox kafka.OutboxRepository,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("document.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("document.service")
	}
	return &service{
		db:       db,
		repo:     repo,
		requests: requests,
		resolver: resolver,
		renderer: renderer,
		outbox:   outbox,
		logger:   l,
	}
}

func (s *service) Create(ctx context.Context, actor domain.Actor, req CreateDocumentInput) (DocumentResponse, error) {
	s.logger.Debug("create document",
		zap.String("actor_id", actor.EmployeeID),
		zap.String("type", req.Type),
		zap.String("request_id", req.RequestID),
	)

	src, err := s.loadSourceRequest(ctx, req.RequestID)
	if err != nil {
		return DocumentResponse{}, err
	}

	creator, err := s.resolveCreator(ctx, req.CreatedBy)
	if err != nil {
		s.logger.Warn("create document creator resolution failed",
			zap.String("created_by", req.CreatedBy),
			zap.Error(err),
		)
		return DocumentResponse{}, err
	}

	d := &Document{
		ID:              uuid.New(),
		Type:            req.Type,
		Title:           req.Title,
		Description:     req.Description,
		Status:          StatusUnderReview,
		TemplatePath:    s.renderer.TemplatePath(req.Type),
		TemplateData:    req.TemplateData,
		SourceRequestID: src.ID,
		RequestedByID:   src.CreatorID,
		CreatedByID:     &creator.ID,
		Metadata:        req.Metadata,
	}

	if err := s.repo.Create(ctx, d); err != nil {
		s.logger.Error("create document persist failed", zap.Error(err))
		return DocumentResponse{}, mapRepositoryError(err)
	}
	s.logger.Info("document created",
		zap.String("document_id", d.ID.String()),
		zap.String("type", d.Type),
		zap.String("request_id", src.ID.String()),
	)

	d.SourceRequest = src
	d.RequestedBy = src.Creator
	d.CreatedBy = creator
	return mapToResponse(*d), nil
}

// GenerateFromRequest derives a document from a request via the generation
// rule table, persists it in review and renders the artifact. A render
// failure deletes the just-created row so no artifact-less document survives
// this path.
func (s *service) GenerateFromRequest(ctx context.Context, requestID string, actor domain.Actor) error {
	s.logger.Debug("generate document from request",
		zap.String("request_id", requestID),
		zap.String("actor_id", actor.EmployeeID),
	)

	src, err := s.loadSourceRequest(ctx, requestID)
	if err != nil {
		return err
	}
	if src.Creator == nil {
		return documenterrors.ErrEmployeeNotFound
	}

	rule := ruleFor(src.Type)

	extra := map[string]any{}
	if rule.extraFields != nil {
		extra = rule.extraFields(src)
	}
	data := template.PrepareTemplateData(src.Creator, template.RequestInfo{
		Title:     src.Title,
		Type:      src.Type,
		StartDate: src.StartDate,
		EndDate:   src.EndDate,
		Duration:  src.Duration,
		CreatedAt: src.CreatedAt,
	}, extra)

	d := &Document{
		ID:              uuid.New(),
		Type:            rule.docType,
		Title:           rule.title,
		Status:          StatusUnderReview,
		TemplatePath:    s.renderer.TemplatePath(rule.docType),
		TemplateData:    data,
		SourceRequestID: src.ID,
		RequestedByID:   src.CreatorID,
	}

	// The auto path tolerates an unknown actor: the requested-by employee
	// still owns the document, created-by just stays empty.
	if res, err := s.resolver.ResolveEmployee(ctx, actor.EmployeeID); err != nil {
		return err
	} else if res.Kind != identity.Unresolved {
		d.CreatedByID = &res.Employee.ID
		d.CreatedBy = res.Employee
	}

	if err := s.repo.Create(ctx, d); err != nil {
		s.logger.Error("generate document persist failed",
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		return mapRepositoryError(err)
	}

	artifact, err := s.renderer.GenerateDocument(d.Type, data, d.ID.String())
	if err != nil {
		s.logger.Error("artifact render failed, compensating document row",
			zap.String("document_id", d.ID.String()),
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		if delErr := s.repo.Delete(ctx, d.ID.String()); delErr != nil {
			s.logger.Error("compensating delete failed",
				zap.String("document_id", d.ID.String()),
				zap.Error(delErr),
			)
		}
		return documenterrors.ErrGenerationFailed
	}

	d.Content = artifact.Content
	d.FilePath = artifact.FilePath
	d.FileURL = artifact.FileURL
	if err := s.repo.Update(ctx, d); err != nil {
		s.logger.Error("generate document artifact update failed",
			zap.String("document_id", d.ID.String()),
			zap.Error(err),
		)
		return err
	}

	s.logger.Info("document generated",
		zap.String("document_id", d.ID.String()),
		zap.String("request_id", requestID),
		zap.String("type", d.Type),
	)
	return nil
}

func (s *service) Update(ctx context.Context, actor domain.Actor, id string, req UpdateDocumentInput) (DocumentResponse, error) {
	s.logger.Debug("update document",
		zap.String("document_id", id),
		zap.String("actor_id", actor.EmployeeID),
	)

	d, err := s.loadDocument(ctx, id)
	if err != nil {
		return DocumentResponse{}, err
	}

	if !domain.Allowed(actor, ownerIDs(d), domain.ElevatedRoles...) {
		s.logger.Warn("update document forbidden",
			zap.String("document_id", id),
			zap.String("actor_id", actor.EmployeeID),
		)
		return DocumentResponse{}, documenterrors.ErrForbidden
	}

	if req.Title != nil {
		d.Title = *req.Title
	}
	if req.Description != nil {
		d.Description = *req.Description
	}
	if req.RejectionReason != nil {
		d.RejectionReason = req.RejectionReason
	}
	if req.TemplateData != nil {
		d.TemplateData = *req.TemplateData
	}
	if req.Metadata != nil {
		d.Metadata = *req.Metadata
	}

	if req.Status != nil {
		d.Status = *req.Status
		if *req.Status == StatusSigned && req.SignedByID != nil {
			signer, err := s.resolveCreator(ctx, *req.SignedByID)
			if err != nil {
				return DocumentResponse{}, err
			}
			now := time.Now().UTC()
			d.SignedByID = &signer.ID
			d.SignedBy = signer
			d.SignedAt = &now
		}
	}

	if err := s.repo.Update(ctx, d); err != nil {
		s.logger.Error("update document persist failed", zap.String("document_id", id), zap.Error(err))
		return DocumentResponse{}, mapRepositoryError(err)
	}
	s.logger.Info("document updated", zap.String("document_id", id))

	return mapToResponse(*d), nil
}

func (s *service) UpdateStatus(ctx context.Context, actor domain.Actor, id, status string, rejectionReason *string) (DocumentResponse, error) {
	s.logger.Debug("update document status",
		zap.String("document_id", id),
		zap.String("actor_id", actor.EmployeeID),
		zap.String("target_status", status),
	)

	if !isKnownStatus(status) {
		return DocumentResponse{}, documenterrors.ErrInvalidStatus
	}

	d, err := s.loadDocument(ctx, id)
	if err != nil {
		return DocumentResponse{}, err
	}

	if !domain.Allowed(actor, ownerIDs(d), domain.ElevatedRoles...) {
		s.logger.Warn("update document status forbidden",
			zap.String("document_id", id),
			zap.String("actor_id", actor.EmployeeID),
		)
		return DocumentResponse{}, documenterrors.ErrForbidden
	}

	d.Status = status
	switch status {
	case StatusSigned:
		signer, err := s.resolveCreator(ctx, actor.EmployeeID)
		if err != nil {
			return DocumentResponse{}, err
		}
		now := time.Now().UTC()
		d.SignedByID = &signer.ID
		d.SignedBy = signer
		d.SignedAt = &now
	case StatusRejected:
		if rejectionReason != nil {
			d.RejectionReason = rejectionReason
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("update document status begin tx failed", zap.Error(err))
		return DocumentResponse{}, err
	}
	defer tx.Rollback()

	if err := s.repo.WithTx(tx).Update(ctx, d); err != nil {
		s.logger.Error("update document status persist failed", zap.String("document_id", id), zap.Error(err))
		return DocumentResponse{}, mapRepositoryError(err)
	}

	if err := s.syncRequestStatus(ctx, tx, d, status); err != nil {
		return DocumentResponse{}, err
	}

	if err := s.writeStatusEvent(ctx, tx, d, actor); err != nil {
		s.logger.Error("update document status outbox write failed", zap.Error(err))
		return DocumentResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("update document status commit failed", zap.String("document_id", id), zap.Error(err))
		return DocumentResponse{}, err
	}
	s.logger.Info("document status updated",
		zap.String("document_id", id),
		zap.String("status", status),
	)

	return mapToResponse(*d), nil
}

// computeRequestStatus maps a document status change onto the source
// request's status. The second return reports whether a write is needed.
func computeRequestStatus(documentStatus, currentRequestStatus string) (string, bool) {
	var target string
	switch documentStatus {
	case StatusSigned:
		target = request.StatusApproved
	case StatusRejected:
		target = request.StatusRejected
	case StatusUnderReview:
		// Re-review of a pending request counts as an implicit acknowledgement.
		if currentRequestStatus != request.StatusPending {
			return "", false
		}
		target = request.StatusApproved
	default:
		return "", false
	}
	if target == currentRequestStatus {
		return "", false
	}
	return target, true
}

func (s *service) syncRequestStatus(ctx context.Context, tx *sql.Tx, d *Document, status string) error {
	src, err := s.requests.WithTx(tx).FindByID(ctx, d.SourceRequestID.String())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return documenterrors.ErrRequestNotFound
		}
		return err
	}

	target, changed := computeRequestStatus(status, src.Status)
	if !changed {
		return nil
	}

	src.Status = target
	if err := s.requests.WithTx(tx).Update(ctx, src); err != nil {
		s.logger.Error("request status sync failed",
			zap.String("document_id", d.ID.String()),
			zap.String("request_id", src.ID.String()),
			zap.Error(err),
		)
		return err
	}

	s.logger.Info("request status synced from document",
		zap.String("document_id", d.ID.String()),
		zap.String("request_id", src.ID.String()),
		zap.String("request_status", target),
	)
	return nil
}

func (s *service) writeStatusEvent(ctx context.Context, tx *sql.Tx, d *Document, actor domain.Actor) error {
	if s.outbox == nil {
		return nil
	}

	var eventType string
	switch d.Status {
	case StatusSigned:
		eventType = documentSignedType
	case StatusRejected:
		eventType = documentRejectedType
	default:
		return nil
	}

	payload, err := json.Marshal(events.DocumentStatusChangedEvent{
		EventType:  eventType,
		DocumentID: d.ID.String(),
		RequestID:  d.SourceRequestID.String(),
		Status:     d.Status,
		ActorID:    actor.EmployeeID,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	return s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.New().String(),
		AggregateType: "document",
		AggregateID:   d.ID.String(),
		EventType:     eventType,
		Topic:         events.DocumentLifecycleTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}

func (s *service) Regenerate(ctx context.Context, actor domain.Actor, id string, extraData map[string]any) (DocumentResponse, error) {
	s.logger.Debug("regenerate document",
		zap.String("document_id", id),
		zap.String("actor_id", actor.EmployeeID),
	)

	d, err := s.loadDocument(ctx, id)
	if err != nil {
		return DocumentResponse{}, err
	}

	if !domain.Allowed(actor, creatorIDs(d), domain.StrictRoles...) {
		s.logger.Warn("regenerate document forbidden",
			zap.String("document_id", id),
			zap.String("actor_id", actor.EmployeeID),
		)
		return DocumentResponse{}, documenterrors.ErrForbidden
	}

	if err := s.renderer.DeleteDocument(d.FilePath); err != nil {
		s.logger.Error("regenerate prior artifact delete failed",
			zap.String("document_id", id),
			zap.String("file_path", d.FilePath),
			zap.Error(err),
		)
		return DocumentResponse{}, documenterrors.ErrGenerationFailed
	}

	data := make(map[string]any, len(d.TemplateData)+len(extraData))
	for k, v := range d.TemplateData {
		data[k] = v
	}
	for k, v := range extraData {
		data[k] = v
	}

	artifact, err := s.renderer.GenerateDocument(d.Type, data, d.ID.String())
	if err != nil {
		s.logger.Error("regenerate render failed",
			zap.String("document_id", id),
			zap.Error(err),
		)
		return DocumentResponse{}, documenterrors.ErrGenerationFailed
	}

	d.TemplateData = data
	d.TemplatePath = s.renderer.TemplatePath(d.Type)
	d.Content = artifact.Content
	d.FilePath = artifact.FilePath
	d.FileURL = artifact.FileURL

	if err := s.repo.Update(ctx, d); err != nil {
		s.logger.Error("regenerate persist failed", zap.String("document_id", id), zap.Error(err))
		return DocumentResponse{}, err
	}
	s.logger.Info("document regenerated", zap.String("document_id", id))

	return mapToResponse(*d), nil
}

func (s *service) Delete(ctx context.Context, actor domain.Actor, id string) error {
	d, err := s.loadDocument(ctx, id)
	if err != nil {
		return err
	}

	if !domain.Allowed(actor, creatorIDs(d), domain.StrictRoles...) {
		s.logger.Warn("delete document forbidden",
			zap.String("document_id", id),
			zap.String("actor_id", actor.EmployeeID),
		)
		return documenterrors.ErrForbidden
	}

	if err := s.renderer.DeleteDocument(d.FilePath); err != nil {
		s.logger.Warn("delete document artifact removal failed",
			zap.String("document_id", id),
			zap.String("file_path", d.FilePath),
			zap.Error(err),
		)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("delete document failed", zap.String("document_id", id), zap.Error(err))
		return err
	}
	s.logger.Info("document deleted", zap.String("document_id", id))
	return nil
}

func (s *service) List(ctx context.Context, f Filter) ([]DocumentResponse, int64, error) {
	documents, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	return mapToListResponse(documents), total, nil
}

func (s *service) GetByID(ctx context.Context, id string) (DocumentResponse, error) {
	d, err := s.loadDocument(ctx, id)
	if err != nil {
		return DocumentResponse{}, err
	}
	return mapToResponse(*d), nil
}

func (s *service) GetByRequest(ctx context.Context, requestID string) ([]DocumentResponse, error) {
	if _, err := uuid.Parse(requestID); err != nil {
		return nil, documenterrors.ErrInvalidDocumentID
	}
	documents, err := s.repo.FindByRequestID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(documents), nil
}

func (s *service) GetByEmployee(ctx context.Context, employeeID string, f Filter) ([]DocumentResponse, int64, error) {
	f.RequestedByID = employeeID
	return s.List(ctx, f)
}

func (s *service) GetByStatus(ctx context.Context, status string, f Filter) ([]DocumentResponse, int64, error) {
	if !isKnownStatus(status) && status != StatusDraft {
		return nil, 0, documenterrors.ErrInvalidStatus
	}
	f.Statuses = []string{status}
	return s.List(ctx, f)
}

// ownerIDs lists who may act on the document as its owner: the staff member
// who generated it and the employee it certifies.
func ownerIDs(d *Document) []string {
	ids := []string{d.RequestedByID.String()}
	if d.CreatedByID != nil {
		ids = append(ids, d.CreatedByID.String())
	}
	return ids
}

func creatorIDs(d *Document) []string {
	if d.CreatedByID == nil {
		return nil
	}
	return []string{d.CreatedByID.String()}
}

func (s *service) loadDocument(ctx context.Context, id string) (*Document, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, documenterrors.ErrInvalidDocumentID
	}
	d, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, documenterrors.ErrDocumentNotFound
		}
		return nil, err
	}
	return d, nil
}

func (s *service) loadSourceRequest(ctx context.Context, requestID string) (*request.Request, error) {
	if _, err := uuid.Parse(requestID); err != nil {
		return nil, documenterrors.ErrRequestNotFound
	}
	src, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, documenterrors.ErrRequestNotFound
		}
		return nil, err
	}
	return src, nil
}

// resolveCreator applies the two-step lookup: the reference may be an
// identity (account) id or a plain employee id.
func (s *service) resolveCreator(ctx context.Context, ref string) (*employee.Employee, error) {
	res, err := s.resolver.ResolveEmployee(ctx, ref)
	if err != nil {
		return nil, err
	}
	if res.Kind == identity.Unresolved {
		return nil, documenterrors.ErrCreatorNotResolved
	}
	return res.Employee, nil
}

func isKnownStatus(status string) bool {
	switch status {
	case StatusUnderReview, StatusSigned, StatusRejected:
		return true
	}
	return false
}
