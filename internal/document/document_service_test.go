package document_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"hrm-system/internal/document"
	documenterrors "hrm-system/internal/document/errors"
	"hrm-system/internal/domain"
	"hrm-system/internal/employee"
	"hrm-system/internal/identity"
	"hrm-system/internal/messaging/kafka"
	"hrm-system/internal/request"
	"hrm-system/internal/template"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeDocumentRepository struct {
	withTxFn          func(tx *sql.Tx) document.Repository
	createFn          func(ctx context.Context, d *document.Document) error
	findByIDFn        func(ctx context.Context, id string) (*document.Document, error)
	findByRequestIDFn func(ctx context.Context, requestID string) ([]document.Document, error)
	updateFn          func(ctx context.Context, d *document.Document) error
	deleteFn          func(ctx context.Context, id string) error
	listFn            func(ctx context.Context, f document.Filter) ([]document.Document, int64, error)
}

func (f *fakeDocumentRepository) WithTx(tx *sql.Tx) document.Repository {
	if f.withTxFn != nil {
		return f.withTxFn(tx)
	}
	return f
}

func (f *fakeDocumentRepository) Create(ctx context.Context, d *document.Document) error {
	if f.createFn != nil {
		return f.createFn(ctx, d)
	}
	return nil
}

func (f *fakeDocumentRepository) FindByID(ctx context.Context, id string) (*document.Document, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeDocumentRepository) FindByRequestID(ctx context.Context, requestID string) ([]document.Document, error) {
	if f.findByRequestIDFn != nil {
		return f.findByRequestIDFn(ctx, requestID)
	}
	return nil, nil
}

func (f *fakeDocumentRepository) Update(ctx context.Context, d *document.Document) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, d)
	}
	return nil
}

func (f *fakeDocumentRepository) Delete(ctx context.Context, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

func (f *fakeDocumentRepository) List(ctx context.Context, flt document.Filter) ([]document.Document, int64, error) {
	if f.listFn != nil {
		return f.listFn(ctx, flt)
	}
	return nil, 0, nil
}

type fakeRequestRepository struct {
	withTxFn   func(tx *sql.Tx) request.Repository
	createFn   func(ctx context.Context, r *request.Request) error
	findByIDFn func(ctx context.Context, id string) (*request.Request, error)
	updateFn   func(ctx context.Context, r *request.Request) error
	deleteFn   func(ctx context.Context, id string) error
	listFn     func(ctx context.Context, f request.Filter) ([]request.Request, int64, error)
}

func (f *fakeRequestRepository) WithTx(tx *sql.Tx) request.Repository {
	if f.withTxFn != nil {
		return f.withTxFn(tx)
	}
	return f
}

func (f *fakeRequestRepository) Create(ctx context.Context, r *request.Request) error {
	if f.createFn != nil {
		return f.createFn(ctx, r)
	}
	return nil
}

func (f *fakeRequestRepository) FindByID(ctx context.Context, id string) (*request.Request, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRequestRepository) Update(ctx context.Context, r *request.Request) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, r)
	}
	return nil
}

func (f *fakeRequestRepository) Delete(ctx context.Context, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

func (f *fakeRequestRepository) List(ctx context.Context, flt request.Filter) ([]request.Request, int64, error) {
	if f.listFn != nil {
		return f.listFn(ctx, flt)
	}
	return nil, 0, nil
}

type fakeIdentityRepository struct {
	findByIDFn func(ctx context.Context, id string) (*identity.Identity, error)
}

func (f *fakeIdentityRepository) FindByID(ctx context.Context, id string) (*identity.Identity, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeEmployeeRepository struct {
	findByIDFn func(ctx context.Context, id string) (*employee.Employee, error)
}

func (f *fakeEmployeeRepository) FindByID(ctx context.Context, id string) (*employee.Employee, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeRenderer struct {
	templatePathFn func(docType string) string
	generateFn     func(docType string, data map[string]any, documentID string) (*template.Artifact, error)
	deleteFn       func(filePath string) error
}

func (f *fakeRenderer) TemplatePath(docType string) string {
	if f.templatePathFn != nil {
		return f.templatePathFn(docType)
	}
	return "templates/" + docType + ".txt"
}

func (f *fakeRenderer) GenerateDocument(docType string, data map[string]any, documentID string) (*template.Artifact, error) {
	if f.generateFn != nil {
		return f.generateFn(docType, data, documentID)
	}
	return &template.Artifact{
		FilePath: "storage/" + documentID + ".txt",
		FileURL:  "http://files.local/" + documentID + ".txt",
		Content:  "rendered",
	}, nil
}

func (f *fakeRenderer) DeleteDocument(filePath string) error {
	if f.deleteFn != nil {
		return f.deleteFn(filePath)
	}
	return nil
}

type fakeOutbox struct {
	created []kafka.OutboxEvent
}

func (f *fakeOutbox) WithTx(tx *sql.Tx) kafka.OutboxRepository { return f }

func (f *fakeOutbox) Create(ctx context.Context, event kafka.OutboxEvent) error {
	f.created = append(f.created, event)
	return nil
}

func (f *fakeOutbox) ListPending(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	return nil, nil
}

func (f *fakeOutbox) MarkSent(ctx context.Context, id string) error { return nil }

func (f *fakeOutbox) MarkFailed(ctx context.Context, id string, reason string) error { return nil }

type documentServiceDeps struct {
	db         *sql.DB
	sqlMock    sqlmock.Sqlmock
	service    document.Service
	repo       *fakeDocumentRepository
	requests   *fakeRequestRepository
	identities *fakeIdentityRepository
	employees  *fakeEmployeeRepository
	renderer   *fakeRenderer
	outbox     *fakeOutbox
}

func setupDocumentServiceTest(t *testing.T) *documentServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	repo := &fakeDocumentRepository{}
	requests := &fakeRequestRepository{}
	identities := &fakeIdentityRepository{}
	employees := &fakeEmployeeRepository{}
	renderer := &fakeRenderer{}
	outbox := &fakeOutbox{}

	resolver := identity.NewResolver(identities, employees)
	svc := document.NewService(db, repo, requests, resolver, renderer, outbox)

	return &documentServiceDeps{
		db:         db,
		sqlMock:    sqlMock,
		service:    svc,
		repo:       repo,
		requests:   requests,
		identities: identities,
		employees:  employees,
		renderer:   renderer,
		outbox:     outbox,
	}
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func makeEmployee(firstName, lastName string) *employee.Employee {
	return &employee.Employee{
		ID:        uuid.New(),
		FirstName: firstName,
		LastName:  lastName,
		Position:  "Инженер",
	}
}

func makeLeaveRequest(emp *employee.Employee, startOffset, days int) *request.Request {
	start := time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, startOffset)
	end := start.AddDate(0, 0, days-1)
	return &request.Request{
		ID:        uuid.New(),
		Type:      request.TypeLeaveVacation,
		Title:     "Отпуск",
		Status:    request.StatusPending,
		CreatorID: emp.ID,
		Creator:   emp,
		StartDate: &start,
		EndDate:   &end,
		Duration:  &days,
		CreatedAt: time.Now().UTC(),
	}
}

func TestDocumentService_GenerateFromRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("creates vacation certificate in review", func(t *testing.T) {
		deps := setupDocumentServiceTest(t)
		defer deps.db.Close()

		emp := makeEmployee("Иван", "Петров")
		src := makeLeaveRequest(emp, 10, 14)
		actor := domain.Actor{EmployeeID: emp.ID.String(), Role: domain.RoleEmployee}

		deps.requests.findByIDFn = func(ctx context.Context, id string) (*request.Request, error) {
			assert.Equal(t, src.ID.String(), id)
			return src, nil
		}
		deps.employees.findByIDFn = func(ctx context.Context, id string) (*employee.Employee, error) {
			assert.Equal(t, emp.ID.String(), id)
			return emp, nil
		}

		var created *document.Document
		deps.repo.createFn = func(ctx context.Context, d *document.Document) error {
			created = d
			return nil
		}
		var updated *document.Document
		deps.repo.updateFn = func(ctx context.Context, d *document.Document) error {
			updated = d
			return nil
		}

		err := deps.service.GenerateFromRequest(ctx, src.ID.String(), actor)

		assert.NoError(t, err)
		assert.NotNil(t, created)
		assert.Equal(t, "vacation-certificate", created.Type)
		assert.Equal(t, document.StatusUnderReview, created.Status)
		assert.Equal(t, src.ID, created.SourceRequestID)
		assert.Equal(t, emp.ID, created.RequestedByID)
		if assert.NotNil(t, created.CreatedByID) {
			assert.Equal(t, emp.ID, *created.CreatedByID)
		}
		assert.Equal(t, emp.FullName(), created.TemplateData["fullName"])
		assert.Contains(t, created.TemplateData, "vacationNote")

		if assert.NotNil(t, updated) {
			assert.Equal(t, "rendered", updated.Content)
			assert.NotEmpty(t, updated.FilePath)
			assert.NotEmpty(t, updated.FileURL)
		}
	})

	t.Run("unmapped type falls back to generic document", func(t *testing.T) {
		deps := setupDocumentServiceTest(t)
		defer deps.db.Close()

		emp := makeEmployee("Анна", "Сидорова")
		src := &request.Request{
			ID:        uuid.New(),
			Type:      request.TypeEquipment,
			Title:     "Новый ноутбук",
			Status:    request.StatusPending,
			CreatorID: emp.ID,
			Creator:   emp,
			CreatedAt: time.Now().UTC(),
		}

		deps.requests.findByIDFn = func(ctx context.Context, id string) (*request.Request, error) {
			return src, nil
		}
		deps.employees.findByIDFn = func(ctx context.Context, id string) (*employee.Employee, error) {
			return emp, nil
		}

		var created *document.Document
		deps.repo.createFn = func(ctx context.Context, d *document.Document) error {
			created = d
			return nil
		}

		err := deps.service.GenerateFromRequest(ctx, src.ID.String(),
			domain.Actor{EmployeeID: emp.ID.String(), Role: domain.RoleEmployee})

		assert.NoError(t, err)
		if assert.NotNil(t, created) {
			assert.Equal(t, "other", created.Type)
			assert.Equal(t, "Документ по заявке", created.Title)
		}
	})

	t.Run("render failure deletes the created row", func(t *testing.T) {
		deps := setupDocumentServiceTest(t)
		defer deps.db.Close()

		emp := makeEmployee("Иван", "Петров")
		src := makeLeaveRequest(emp, 10, 5)

		deps.requests.findByIDFn = func(ctx context.Context, id string) (*request.Request, error) {
			return src, nil
		}
		deps.employees.findByIDFn = func(ctx context.Context, id string) (*employee.Employee, error) {
			return emp, nil
		}

		var createdID string
		deps.repo.createFn = func(ctx context.Context, d *document.Document) error {
			createdID = d.ID.String()
			return nil
		}
		deps.renderer.generateFn = func(docType string, data map[string]any, documentID string) (*template.Artifact, error) {
			return nil, errors.New("disk full")
		}
		var deletedID string
		deps.repo.deleteFn = func(ctx context.Context, id string) error {
			deletedID = id
			return nil
		}

		err := deps.service.GenerateFromRequest(ctx, src.ID.String(),
			domain.Actor{EmployeeID: emp.ID.String(), Role: domain.RoleEmployee})

		assert.ErrorIs(t, err, documenterrors.ErrGenerationFailed)
		assert.Equal(t, createdID, deletedID)
	})

	t.Run("missing request", func(t *testing.T) {
		deps := setupDocumentServiceTest(t)
		defer deps.db.Close()

		err := deps.service.GenerateFromRequest(ctx, uuid.New().String(),
			domain.Actor{EmployeeID: uuid.New().String(), Role: domain.RoleEmployee})

		assert.ErrorIs(t, err, documenterrors.ErrRequestNotFound)
	})

	t.Run("unknown actor leaves created-by empty", func(t *testing.T) {
		deps := setupDocumentServiceTest(t)
		defer deps.db.Close()

		emp := makeEmployee("Иван", "Петров")
		src := makeLeaveRequest(emp, 10, 5)
		strangerID := uuid.New().String()

		deps.requests.findByIDFn = func(ctx context.Context, id string) (*request.Request, error) {
			return src, nil
		}
		deps.employees.findByIDFn = func(ctx context.Context, id string) (*employee.Employee, error) {
			if id == emp.ID.String() {
				return emp, nil
			}
			return nil, gorm.ErrRecordNotFound
		}

		var created *document.Document
		deps.repo.createFn = func(ctx context.Context, d *document.Document) error {
			created = d
			return nil
		}

		err := deps.service.GenerateFromRequest(ctx, src.ID.String(),
			domain.Actor{EmployeeID: strangerID, Role: domain.RoleAdmin})

		assert.NoError(t, err)
		if assert.NotNil(t, created) {
			assert.Nil(t, created.CreatedByID)
		}
	})

	t.Run("second generation yields an independent document", func(t *testing.T) {
		deps := setupDocumentServiceTest(t)
		defer deps.db.Close()

		emp := makeEmployee("Иван", "Петров")
		src := makeLeaveRequest(emp, 10, 5)
		actor := domain.Actor{EmployeeID: emp.ID.String(), Role: domain.RoleEmployee}

		deps.requests.findByIDFn = func(ctx context.Context, id string) (*request.Request, error) {
			return src, nil
		}
		deps.employees.findByIDFn = func(ctx context.Context, id string) (*employee.Employee, error) {
			return emp, nil
		}

		var ids []string
		deps.repo.createFn = func(ctx context.Context, d *document.Document) error {
			ids = append(ids, d.ID.String())
			return nil
		}

		assert.NoError(t, deps.service.GenerateFromRequest(ctx, src.ID.String(), actor))
		assert.NoError(t, deps.service.GenerateFromRequest(ctx, src.ID.String(), actor))

		assert.Len(t, ids, 2)
		assert.NotEqual(t, ids[0], ids[1])
	})
}

func TestDocumentService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("resolves creator by identity", func(t *testing.T) {
		deps := setupDocumentServiceTest(t)
		defer deps.db.Close()

		emp := makeEmployee("Иван", "Петров")
		hr := makeEmployee("Ольга", "Иванова")
		src := makeLeaveRequest(emp, 10, 5)
		identityID := uuid.New()

		deps.requests.findByIDFn = func(ctx context.Context, id string) (*request.Request, error) {
			return src, nil
		}
		deps.identities.findByIDFn = func(ctx context.Context, id string) (*identity.Identity, error) {
			if id == identityID.String() {
				return &identity.Identity{ID: identityID, EmployeeID: hr.ID}, nil
			}
			return nil, gorm.ErrRecordNotFound
		}
		deps.employees.findByIDFn = func(ctx context.Context, id string) (*employee.Employee, error) {
			if id == hr.ID.String() {
				return hr, nil
			}
			return nil, gorm.ErrRecordNotFound
		}

		var created *document.Document
		deps.repo.createFn = func(ctx context.Context, d *document.Document) error {
			created = d
			return nil
		}

		resp, err := deps.service.Create(ctx, domain.Actor{EmployeeID: hr.ID.String(), Role: domain.RoleHR},
			document.CreateDocumentInput{
				Type:      "work-certificate",
				Title:     "Справка",
				RequestID: src.ID.String(),
				CreatedBy: identityID.String(),
			})

		assert.NoError(t, err)
		if assert.NotNil(t, created) {
			assert.Equal(t, document.StatusUnderReview, created.Status)
			assert.Equal(t, hr.ID, *created.CreatedByID)
			assert.Equal(t, emp.ID, created.RequestedByID)
		}
		assert.Equal(t, hr.FullName(), resp.CreatedByName)
	})

	t.Run("unresolvable creator", func(t *testing.T) {
		deps := setupDocumentServiceTest(t)
		defer deps.db.Close()

		emp := makeEmployee("Иван", "Петров")
		src := makeLeaveRequest(emp, 10, 5)

		deps.requests.findByIDFn = func(ctx context.Context, id string) (*request.Request, error) {
			return src, nil
		}

		_, err := deps.service.Create(ctx, domain.Actor{EmployeeID: uuid.New().String(), Role: domain.RoleHR},
			document.CreateDocumentInput{
				Type:      "work-certificate",
				Title:     "Справка",
				RequestID: src.ID.String(),
				CreatedBy: uuid.New().String(),
			})

		assert.ErrorIs(t, err, documenterrors.ErrCreatorNotResolved)
	})
}

func TestDocumentService_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	makeDoc := func(emp *employee.Employee, src *request.Request) *document.Document {
		return &document.Document{
			ID:              uuid.New(),
			Type:            "vacation-certificate",
			Title:           "Справка о предоставлении отпуска",
			Status:          document.StatusUnderReview,
			SourceRequestID: src.ID,
			RequestedByID:   emp.ID,
			RequestedBy:     emp,
		}
	}

	t.Run("signing approves the source request", func(t *testing.T) {
		deps := setupDocumentServiceTest(t)
		defer deps.db.Close()

		emp := makeEmployee("Иван", "Петров")
		hr := makeEmployee("Ольга", "Иванова")
		src := makeLeaveRequest(emp, 10, 5)
		doc := makeDoc(emp, src)

		deps.repo.findByIDFn = func(ctx context.Context, id string) (*document.Document, error) {
			return doc, nil
		}
		deps.requests.findByIDFn = func(ctx context.Context, id string) (*request.Request, error) {
			return src, nil
		}
		deps.employees.findByIDFn = func(ctx context.Context, id string) (*employee.Employee, error) {
			if id == hr.ID.String() {
				return hr, nil
			}
			return nil, gorm.ErrRecordNotFound
		}

		var updatedRequest *request.Request
		deps.requests.updateFn = func(ctx context.Context, r *request.Request) error {
			updatedRequest = r
			return nil
		}

		expectTx(t, deps.sqlMock, true)

		resp, err := deps.service.UpdateStatus(ctx,
			domain.Actor{EmployeeID: hr.ID.String(), Role: domain.RoleHR},
			doc.ID.String(), document.StatusSigned, nil)

		assert.NoError(t, err)
		assert.Equal(t, document.StatusSigned, resp.Status)
		assert.NotNil(t, resp.SignedAt)
		if assert.NotNil(t, resp.SignedByID) {
			assert.Equal(t, hr.ID.String(), *resp.SignedByID)
		}
		if assert.NotNil(t, updatedRequest) {
			assert.Equal(t, request.StatusApproved, updatedRequest.Status)
		}
		if assert.Len(t, deps.outbox.created, 1) {
			assert.Equal(t, "document.signed", deps.outbox.created[0].EventType)
		}
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("rejecting rejects the source request", func(t *testing.T) {
		deps := setupDocumentServiceTest(t)
		defer deps.db.Close()

		emp := makeEmployee("Иван", "Петров")
		src := makeLeaveRequest(emp, 10, 5)
		doc := makeDoc(emp, src)
		reason := "Неверные даты"

		deps.repo.findByIDFn = func(ctx context.Context, id string) (*document.Document, error) {
			return doc, nil
		}
		deps.requests.findByIDFn = func(ctx context.Context, id string) (*request.Request, error) {
			return src, nil
		}

		var updatedRequest *request.Request
		deps.requests.updateFn = func(ctx context.Context, r *request.Request) error {
			updatedRequest = r
			return nil
		}

		expectTx(t, deps.sqlMock, true)

		resp, err := deps.service.UpdateStatus(ctx,
			domain.Actor{EmployeeID: uuid.New().String(), Role: domain.RoleManager},
			doc.ID.String(), document.StatusRejected, &reason)

		assert.NoError(t, err)
		assert.Equal(t, document.StatusRejected, resp.Status)
		if assert.NotNil(t, resp.RejectionReason) {
			assert.Equal(t, reason, *resp.RejectionReason)
		}
		if assert.NotNil(t, updatedRequest) {
			assert.Equal(t, request.StatusRejected, updatedRequest.Status)
		}
		if assert.Len(t, deps.outbox.created, 1) {
			assert.Equal(t, "document.rejected", deps.outbox.created[0].EventType)
		}
	})

	t.Run("review of an already approved request writes nothing", func(t *testing.T) {
		deps := setupDocumentServiceTest(t)
		defer deps.db.Close()

		emp := makeEmployee("Иван", "Петров")
		src := makeLeaveRequest(emp, 10, 5)
		src.Status = request.StatusApproved
		doc := makeDoc(emp, src)

		deps.repo.findByIDFn = func(ctx context.Context, id string) (*document.Document, error) {
			return doc, nil
		}
		deps.requests.findByIDFn = func(ctx context.Context, id string) (*request.Request, error) {
			return src, nil
		}
		deps.requests.updateFn = func(ctx context.Context, r *request.Request) error {
			t.Fatal("request must not be written when the status is unchanged")
			return nil
		}

		expectTx(t, deps.sqlMock, true)

		_, err := deps.service.UpdateStatus(ctx,
			domain.Actor{EmployeeID: emp.ID.String(), Role: domain.RoleEmployee},
			doc.ID.String(), document.StatusUnderReview, nil)

		assert.NoError(t, err)
		assert.Empty(t, deps.outbox.created)
	})

	t.Run("unrelated employee is forbidden", func(t *testing.T) {
		deps := setupDocumentServiceTest(t)
		defer deps.db.Close()

		emp := makeEmployee("Иван", "Петров")
		src := makeLeaveRequest(emp, 10, 5)
		doc := makeDoc(emp, src)

		deps.repo.findByIDFn = func(ctx context.Context, id string) (*document.Document, error) {
			return doc, nil
		}

		_, err := deps.service.UpdateStatus(ctx,
			domain.Actor{EmployeeID: uuid.New().String(), Role: domain.RoleEmployee},
			doc.ID.String(), document.StatusSigned, nil)

		assert.ErrorIs(t, err, documenterrors.ErrForbidden)
	})

	t.Run("invalid status", func(t *testing.T) {
		deps := setupDocumentServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.UpdateStatus(ctx,
			domain.Actor{EmployeeID: uuid.New().String(), Role: domain.RoleAdmin},
			uuid.New().String(), "archived", nil)

		assert.ErrorIs(t, err, documenterrors.ErrInvalidStatus)
	})
}

func TestDocumentService_Regenerate(t *testing.T) {
	ctx := context.Background()

	t.Run("merges extra data over stored data", func(t *testing.T) {
		deps := setupDocumentServiceTest(t)
		defer deps.db.Close()

		hr := makeEmployee("Ольга", "Иванова")
		hrID := hr.ID
		doc := &document.Document{
			ID:            uuid.New(),
			Type:          "work-certificate",
			Status:        document.StatusUnderReview,
			FilePath:      "storage/old.txt",
			RequestedByID: uuid.New(),
			CreatedByID:   &hrID,
			TemplateData:  map[string]any{"fullName": "Петров Иван", "signerName": ""},
		}

		deps.repo.findByIDFn = func(ctx context.Context, id string) (*document.Document, error) {
			return doc, nil
		}

		var removedPath string
		deps.renderer.deleteFn = func(filePath string) error {
			removedPath = filePath
			return nil
		}
		var renderedData map[string]any
		deps.renderer.generateFn = func(docType string, data map[string]any, documentID string) (*template.Artifact, error) {
			renderedData = data
			return &template.Artifact{FilePath: "storage/new.txt", FileURL: "http://files.local/new.txt", Content: "v2"}, nil
		}

		var updated *document.Document
		deps.repo.updateFn = func(ctx context.Context, d *document.Document) error {
			updated = d
			return nil
		}

		resp, err := deps.service.Regenerate(ctx,
			domain.Actor{EmployeeID: hr.ID.String(), Role: domain.RoleEmployee},
			doc.ID.String(), map[string]any{"signerName": "Иванова О."})

		assert.NoError(t, err)
		assert.Equal(t, "storage/old.txt", removedPath)
		assert.Equal(t, "Петров Иван", renderedData["fullName"])
		assert.Equal(t, "Иванова О.", renderedData["signerName"])
		if assert.NotNil(t, updated) {
			assert.Equal(t, "v2", updated.Content)
			assert.Equal(t, "storage/new.txt", updated.FilePath)
		}
		assert.Equal(t, "v2", resp.Content)
	})

	t.Run("manager without ownership is forbidden", func(t *testing.T) {
		deps := setupDocumentServiceTest(t)
		defer deps.db.Close()

		creatorID := uuid.New()
		doc := &document.Document{
			ID:            uuid.New(),
			Type:          "work-certificate",
			Status:        document.StatusUnderReview,
			RequestedByID: uuid.New(),
			CreatedByID:   &creatorID,
		}

		deps.repo.findByIDFn = func(ctx context.Context, id string) (*document.Document, error) {
			return doc, nil
		}

		_, err := deps.service.Regenerate(ctx,
			domain.Actor{EmployeeID: uuid.New().String(), Role: domain.RoleManager},
			doc.ID.String(), nil)

		assert.ErrorIs(t, err, documenterrors.ErrForbidden)
	})
}

func TestDocumentService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("hr removes document and artifact", func(t *testing.T) {
		deps := setupDocumentServiceTest(t)
		defer deps.db.Close()

		doc := &document.Document{
			ID:            uuid.New(),
			Type:          "work-certificate",
			Status:        document.StatusSigned,
			FilePath:      "storage/doc.txt",
			RequestedByID: uuid.New(),
		}

		deps.repo.findByIDFn = func(ctx context.Context, id string) (*document.Document, error) {
			return doc, nil
		}
		var removedPath string
		deps.renderer.deleteFn = func(filePath string) error {
			removedPath = filePath
			return nil
		}
		var deletedID string
		deps.repo.deleteFn = func(ctx context.Context, id string) error {
			deletedID = id
			return nil
		}

		err := deps.service.Delete(ctx,
			domain.Actor{EmployeeID: uuid.New().String(), Role: domain.RoleHR},
			doc.ID.String())

		assert.NoError(t, err)
		assert.Equal(t, "storage/doc.txt", removedPath)
		assert.Equal(t, doc.ID.String(), deletedID)
	})

	t.Run("requested-by employee cannot delete", func(t *testing.T) {
		deps := setupDocumentServiceTest(t)
		defer deps.db.Close()

		emp := makeEmployee("Иван", "Петров")
		doc := &document.Document{
			ID:            uuid.New(),
			Type:          "work-certificate",
			Status:        document.StatusUnderReview,
			RequestedByID: emp.ID,
			RequestedBy:   emp,
		}

		deps.repo.findByIDFn = func(ctx context.Context, id string) (*document.Document, error) {
			return doc, nil
		}

		err := deps.service.Delete(ctx,
			domain.Actor{EmployeeID: emp.ID.String(), Role: domain.RoleEmployee},
			doc.ID.String())

		assert.ErrorIs(t, err, documenterrors.ErrForbidden)
	})
}
