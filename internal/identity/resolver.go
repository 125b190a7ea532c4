package identity

import (
	"context"
	"errors"

	"hrm-system/internal/employee"

	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// ResolutionKind tags how an employee reference was resolved.
type ResolutionKind string

const (
	// ResolvedByIdentity means the id matched a login account and the
	// employee was reached through it.
	ResolvedByIdentity ResolutionKind = "identity"
	// ResolvedByEmployeeID means the id matched an employee record directly.
	ResolvedByEmployeeID ResolutionKind = "employee_id"
	// Unresolved means neither lookup matched.
	Unresolved ResolutionKind = "unresolved"
)

// Resolution is the tagged result of a two-step employee lookup.
type Resolution struct {
	Kind     ResolutionKind
	Employee *employee.Employee
}

// Resolver resolves an ambiguous "creator" reference: callers may hand over
// either an identity (account) id or a plain employee id. The identity lookup
// runs first; on miss the value is treated as an employee id.
type Resolver struct {
	identities Repository
	employees  employee.Repository
	sf         *singleflight.Group
}

func NewResolver(identities Repository, employees employee.Repository) *Resolver {
	return &Resolver{
		identities: identities,
		employees:  employees,
		sf:         &singleflight.Group{},
	}
}

// ResolveEmployee dedupes concurrent lookups of the same id; auto-generation
// and manual creation often resolve the same actor back to back.
func (r *Resolver) ResolveEmployee(ctx context.Context, id string) (Resolution, error) {
	v, err, _ := r.sf.Do(id, func() (any, error) {
		return r.resolve(ctx, id)
	})
	if err != nil {
		return Resolution{}, err
	}
	return v.(Resolution), nil
}

func (r *Resolver) resolve(ctx context.Context, id string) (Resolution, error) {
	ident, err := r.identities.FindByID(ctx, id)
	switch {
	case err == nil:
		emp, err := r.employees.FindByID(ctx, ident.EmployeeID.String())
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return Resolution{Kind: Unresolved}, nil
			}
			return Resolution{}, err
		}
		return Resolution{Kind: ResolvedByIdentity, Employee: emp}, nil

	case errors.Is(err, gorm.ErrRecordNotFound):
		emp, err := r.employees.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return Resolution{Kind: Unresolved}, nil
			}
			return Resolution{}, err
		}
		return Resolution{Kind: ResolvedByEmployeeID, Employee: emp}, nil

	default:
		return Resolution{}, err
	}
}
