package request_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"hrm-system/internal/domain"
	"hrm-system/internal/employee"
	"hrm-system/internal/messaging/kafka"
	"hrm-system/internal/request"
	requesterrors "hrm-system/internal/request/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

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

type fakeEmployeeRepository struct {
	findByIDFn func(ctx context.Context, id string) (*employee.Employee, error)
}

func (f *fakeEmployeeRepository) FindByID(ctx context.Context, id string) (*employee.Employee, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeGenerator struct {
	calls      []string
	generateFn func(ctx context.Context, requestID string, actor domain.Actor) error
}

func (f *fakeGenerator) GenerateFromRequest(ctx context.Context, requestID string, actor domain.Actor) error {
	f.calls = append(f.calls, requestID)
	if f.generateFn != nil {
		return f.generateFn(ctx, requestID, actor)
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

type requestServiceDeps struct {
	db        *sql.DB
	sqlMock   sqlmock.Sqlmock
	service   request.Service
	repo      *fakeRequestRepository
	employees *fakeEmployeeRepository
	docs      *fakeGenerator
	outbox    *fakeOutbox
}

func setupRequestServiceTest(t *testing.T) *requestServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	repo := &fakeRequestRepository{}
	employees := &fakeEmployeeRepository{}
	docs := &fakeGenerator{}
	outbox := &fakeOutbox{}

	svc := request.NewService(db, repo, employees, docs, outbox)

	return &requestServiceDeps{
		db:        db,
		sqlMock:   sqlMock,
		service:   svc,
		repo:      repo,
		employees: employees,
		docs:      docs,
		outbox:    outbox,
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

func dateOffset(days int) string {
	return time.Now().UTC().AddDate(0, 0, days).Format("2006-01-02")
}

func makeEmployee() *employee.Employee {
	return &employee.Employee{
		ID:        uuid.New(),
		FirstName: "Иван",
		LastName:  "Петров",
	}
}

func TestRequestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("vacation inside the window persists pending and generates", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		emp := makeEmployee()
		actor := domain.Actor{EmployeeID: emp.ID.String(), Role: domain.RoleEmployee}

		deps.employees.findByIDFn = func(ctx context.Context, id string) (*employee.Employee, error) {
			assert.Equal(t, emp.ID.String(), id)
			return emp, nil
		}

		var created *request.Request
		deps.repo.createFn = func(ctx context.Context, r *request.Request) error {
			created = r
			return nil
		}

		expectTx(t, deps.sqlMock, true)

		start := dateOffset(10)
		end := dateOffset(23)
		resp, err := deps.service.Create(ctx, actor, request.CreateRequestInput{
			Type:      request.TypeLeaveVacation,
			Title:     "Отпуск",
			StartDate: &start,
			EndDate:   &end,
		})

		assert.NoError(t, err)
		assert.Equal(t, request.StatusPending, resp.Status)
		if assert.NotNil(t, resp.Duration) {
			assert.Equal(t, 14, *resp.Duration)
		}
		if assert.NotNil(t, created) {
			assert.Equal(t, emp.ID, created.CreatorID)
			assert.Equal(t, []string{created.ID.String()}, deps.docs.calls)
		}
		if assert.Len(t, deps.outbox.created, 1) {
			assert.Equal(t, "request.created", deps.outbox.created[0].EventType)
		}
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("leave starting too soon fails validation", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		start := dateOffset(1)
		end := dateOffset(5)
		_, err := deps.service.Create(ctx,
			domain.Actor{EmployeeID: uuid.New().String(), Role: domain.RoleEmployee},
			request.CreateRequestInput{
				Type:      request.TypeLeaveSick,
				Title:     "Больничный",
				StartDate: &start,
				EndDate:   &end,
			})

		assert.ErrorIs(t, err, requesterrors.ErrLeaveTooSoon)
		assert.Empty(t, deps.docs.calls)
	})

	t.Run("leave at exactly the lead-time boundary passes", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		emp := makeEmployee()
		deps.employees.findByIDFn = func(ctx context.Context, id string) (*employee.Employee, error) {
			return emp, nil
		}

		expectTx(t, deps.sqlMock, true)

		start := dateOffset(3)
		end := dateOffset(4)
		_, err := deps.service.Create(ctx,
			domain.Actor{EmployeeID: emp.ID.String(), Role: domain.RoleEmployee},
			request.CreateRequestInput{
				Type:      request.TypeLeavePersonal,
				Title:     "Отгул",
				StartDate: &start,
				EndDate:   &end,
			})

		assert.NoError(t, err)
	})

	t.Run("vacation over thirty days fails", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		start := dateOffset(10)
		end := dateOffset(40)
		_, err := deps.service.Create(ctx,
			domain.Actor{EmployeeID: uuid.New().String(), Role: domain.RoleEmployee},
			request.CreateRequestInput{
				Type:      request.TypeLeaveVacation,
				Title:     "Длинный отпуск",
				StartDate: &start,
				EndDate:   &end,
			})

		assert.ErrorIs(t, err, requesterrors.ErrVacationTooLong)
	})

	t.Run("thirty-day vacation is allowed", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		emp := makeEmployee()
		deps.employees.findByIDFn = func(ctx context.Context, id string) (*employee.Employee, error) {
			return emp, nil
		}

		expectTx(t, deps.sqlMock, true)

		start := dateOffset(10)
		end := dateOffset(39)
		resp, err := deps.service.Create(ctx,
			domain.Actor{EmployeeID: emp.ID.String(), Role: domain.RoleEmployee},
			request.CreateRequestInput{
				Type:      request.TypeLeaveVacation,
				Title:     "Отпуск",
				StartDate: &start,
				EndDate:   &end,
			})

		assert.NoError(t, err)
		if assert.NotNil(t, resp.Duration) {
			assert.Equal(t, 30, *resp.Duration)
		}
	})

	t.Run("end before start fails", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		start := dateOffset(10)
		end := dateOffset(8)
		_, err := deps.service.Create(ctx,
			domain.Actor{EmployeeID: uuid.New().String(), Role: domain.RoleEmployee},
			request.CreateRequestInput{
				Type:      request.TypeLeaveVacation,
				Title:     "Отпуск",
				StartDate: &start,
				EndDate:   &end,
			})

		assert.ErrorIs(t, err, requesterrors.ErrInvalidDateRange)
	})

	t.Run("generation failure does not fail the request", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		emp := makeEmployee()
		deps.employees.findByIDFn = func(ctx context.Context, id string) (*employee.Employee, error) {
			return emp, nil
		}
		deps.docs.generateFn = func(ctx context.Context, requestID string, actor domain.Actor) error {
			return errors.New("template store down")
		}

		expectTx(t, deps.sqlMock, true)

		resp, err := deps.service.Create(ctx,
			domain.Actor{EmployeeID: emp.ID.String(), Role: domain.RoleEmployee},
			request.CreateRequestInput{
				Type:  request.TypeCertificate,
				Title: "Справка о доходах",
			})

		assert.NoError(t, err)
		assert.Equal(t, request.StatusPending, resp.Status)
		assert.Len(t, deps.docs.calls, 1)
	})

	t.Run("equipment request skips generation", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		emp := makeEmployee()
		deps.employees.findByIDFn = func(ctx context.Context, id string) (*employee.Employee, error) {
			return emp, nil
		}

		expectTx(t, deps.sqlMock, true)

		_, err := deps.service.Create(ctx,
			domain.Actor{EmployeeID: emp.ID.String(), Role: domain.RoleEmployee},
			request.CreateRequestInput{
				Type:  request.TypeEquipment,
				Title: "Ноутбук",
			})

		assert.NoError(t, err)
		assert.Empty(t, deps.docs.calls)
	})

	t.Run("unknown submitter", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)

		_, err := deps.service.Create(ctx,
			domain.Actor{EmployeeID: uuid.New().String(), Role: domain.RoleEmployee},
			request.CreateRequestInput{
				Type:  request.TypeOther,
				Title: "Прочее",
			})

		assert.ErrorIs(t, err, requesterrors.ErrEmployeeNotFound)
	})
}

func TestRequestService_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	makeRequest := func(creator uuid.UUID) *request.Request {
		return &request.Request{
			ID:        uuid.New(),
			Type:      request.TypeOther,
			Title:     "Прочее",
			Status:    request.StatusPending,
			CreatorID: creator,
		}
	}

	t.Run("creator cancels own request", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		creatorID := uuid.New()
		r := makeRequest(creatorID)

		deps.repo.findByIDFn = func(ctx context.Context, id string) (*request.Request, error) {
			return r, nil
		}
		var updated *request.Request
		deps.repo.updateFn = func(ctx context.Context, r *request.Request) error {
			updated = r
			return nil
		}

		expectTx(t, deps.sqlMock, true)

		resp, err := deps.service.UpdateStatus(ctx,
			domain.Actor{EmployeeID: creatorID.String(), Role: domain.RoleEmployee},
			r.ID.String(), request.StatusCancelled)

		assert.NoError(t, err)
		assert.Equal(t, request.StatusCancelled, resp.Status)
		if assert.NotNil(t, updated) {
			assert.Equal(t, request.StatusCancelled, updated.Status)
		}
	})

	t.Run("assignee may transition", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		assigneeID := uuid.New()
		r := makeRequest(uuid.New())
		r.AssigneeID = &assigneeID

		deps.repo.findByIDFn = func(ctx context.Context, id string) (*request.Request, error) {
			return r, nil
		}

		expectTx(t, deps.sqlMock, true)

		_, err := deps.service.UpdateStatus(ctx,
			domain.Actor{EmployeeID: assigneeID.String(), Role: domain.RoleEmployee},
			r.ID.String(), request.StatusCompleted)

		assert.NoError(t, err)
	})

	t.Run("manager may transition any request", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		r := makeRequest(uuid.New())
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*request.Request, error) {
			return r, nil
		}

		expectTx(t, deps.sqlMock, true)

		_, err := deps.service.UpdateStatus(ctx,
			domain.Actor{EmployeeID: uuid.New().String(), Role: domain.RoleManager},
			r.ID.String(), request.StatusApproved)

		assert.NoError(t, err)
	})

	t.Run("unrelated employee is forbidden", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		r := makeRequest(uuid.New())
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*request.Request, error) {
			return r, nil
		}

		expectTx(t, deps.sqlMock, false)

		_, err := deps.service.UpdateStatus(ctx,
			domain.Actor{EmployeeID: uuid.New().String(), Role: domain.RoleEmployee},
			r.ID.String(), request.StatusApproved)

		assert.ErrorIs(t, err, requesterrors.ErrForbidden)
	})

	t.Run("unknown status rejected before load", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.UpdateStatus(ctx,
			domain.Actor{EmployeeID: uuid.New().String(), Role: domain.RoleAdmin},
			uuid.New().String(), "archived")

		assert.ErrorIs(t, err, requesterrors.ErrInvalidStatus)
	})
}

func TestRequestService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("patch applies only set fields", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		creatorID := uuid.New()
		r := &request.Request{
			ID:          uuid.New(),
			Type:        request.TypeOther,
			Priority:    request.PriorityMedium,
			Title:       "Старый заголовок",
			Description: "Описание",
			Status:      request.StatusPending,
			CreatorID:   creatorID,
		}

		deps.repo.findByIDFn = func(ctx context.Context, id string) (*request.Request, error) {
			return r, nil
		}

		expectTx(t, deps.sqlMock, true)

		title := "Новый заголовок"
		priority := request.PriorityHigh
		resp, err := deps.service.Update(ctx,
			domain.Actor{EmployeeID: creatorID.String(), Role: domain.RoleEmployee},
			r.ID.String(), request.UpdateRequestInput{Title: &title, Priority: &priority})

		assert.NoError(t, err)
		assert.Equal(t, "Новый заголовок", resp.Title)
		assert.Equal(t, request.PriorityHigh, resp.Priority)
		assert.Equal(t, "Описание", resp.Description)
	})

	t.Run("vacation cap re-checked on date patch", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		creatorID := uuid.New()
		start := time.Now().UTC().AddDate(0, 0, 10)
		end := start.AddDate(0, 0, 4)
		days := 5
		r := &request.Request{
			ID:        uuid.New(),
			Type:      request.TypeLeaveVacation,
			Title:     "Отпуск",
			Status:    request.StatusPending,
			CreatorID: creatorID,
			StartDate: &start,
			EndDate:   &end,
			Duration:  &days,
		}

		deps.repo.findByIDFn = func(ctx context.Context, id string) (*request.Request, error) {
			return r, nil
		}

		expectTx(t, deps.sqlMock, false)

		newEnd := dateOffset(45)
		_, err := deps.service.Update(ctx,
			domain.Actor{EmployeeID: creatorID.String(), Role: domain.RoleEmployee},
			r.ID.String(), request.UpdateRequestInput{EndDate: &newEnd})

		assert.ErrorIs(t, err, requesterrors.ErrVacationTooLong)
	})

	t.Run("non-creator employee forbidden", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		r := &request.Request{
			ID:        uuid.New(),
			Type:      request.TypeOther,
			Title:     "Прочее",
			Status:    request.StatusPending,
			CreatorID: uuid.New(),
		}
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*request.Request, error) {
			return r, nil
		}

		expectTx(t, deps.sqlMock, false)

		title := "x"
		_, err := deps.service.Update(ctx,
			domain.Actor{EmployeeID: uuid.New().String(), Role: domain.RoleEmployee},
			r.ID.String(), request.UpdateRequestInput{Title: &title})

		assert.ErrorIs(t, err, requesterrors.ErrForbidden)
	})
}

func TestRequestService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("hr deletes any request", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		r := &request.Request{ID: uuid.New(), CreatorID: uuid.New(), Status: request.StatusPending}
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*request.Request, error) {
			return r, nil
		}
		var deletedID string
		deps.repo.deleteFn = func(ctx context.Context, id string) error {
			deletedID = id
			return nil
		}

		expectTx(t, deps.sqlMock, true)

		err := deps.service.Delete(ctx,
			domain.Actor{EmployeeID: uuid.New().String(), Role: domain.RoleHR}, r.ID.String())

		assert.NoError(t, err)
		assert.Equal(t, r.ID.String(), deletedID)
	})

	t.Run("stranger forbidden", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		r := &request.Request{ID: uuid.New(), CreatorID: uuid.New(), Status: request.StatusPending}
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*request.Request, error) {
			return r, nil
		}

		expectTx(t, deps.sqlMock, false)

		err := deps.service.Delete(ctx,
			domain.Actor{EmployeeID: uuid.New().String(), Role: domain.RoleEmployee}, r.ID.String())

		assert.ErrorIs(t, err, requesterrors.ErrForbidden)
	})

	t.Run("malformed id", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)

		err := deps.service.Delete(ctx,
			domain.Actor{EmployeeID: uuid.New().String(), Role: domain.RoleAdmin}, "not-a-uuid")

		assert.ErrorIs(t, err, requesterrors.ErrInvalidRequestID)
	})
}

func TestRequestService_GetByStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("filters by the requested status", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		deps.repo.listFn = func(ctx context.Context, f request.Filter) ([]request.Request, int64, error) {
			assert.Equal(t, []string{request.StatusApproved}, f.Statuses)
			return []request.Request{{ID: uuid.New(), Status: request.StatusApproved, CreatorID: uuid.New()}}, 1, nil
		}

		resp, total, err := deps.service.GetByStatus(ctx, request.StatusApproved, request.Filter{})

		assert.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Len(t, resp, 1)
	})

	t.Run("unknown status rejected", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		_, _, err := deps.service.GetByStatus(ctx, "archived", request.Filter{})

		assert.ErrorIs(t, err, requesterrors.ErrInvalidStatus)
	})
}
