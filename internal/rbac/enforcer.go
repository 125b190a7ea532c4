package rbac

import (
	"github.com/casbin/casbin/v2"
	casbinmodel "github.com/casbin/casbin/v2/model"
)

const modelText = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

// Static role policy over the workflow resources. Ownership checks stay in
// the services; this layer only gates whole route/action combinations.
var policies = [][]string{
	{"employee", "request", "read"},
	{"employee", "request", "create"},
	{"employee", "request", "update"},
	{"employee", "request", "delete"},
	{"employee", "document", "read"},
	{"employee", "document", "update"},
	// Delete and regenerate pass the gate for everyone; the service narrows
	// them to the document's creator or an hr-and-above actor.
	{"employee", "document", "delete"},
	{"employee", "document", "regenerate"},

	{"manager", "document", "create"},
}

// Role inheritance: each elevated role includes everything below it.
var groupings = [][]string{
	{"manager", "employee"},
	{"hr", "manager"},
	{"admin", "hr"},
}

// NewEnforcer builds the casbin enforcer from the embedded model and the
// static role policy.
func NewEnforcer() (*casbin.Enforcer, error) {
	m, err := casbinmodel.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}

	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}

	for _, g := range groupings {
		if _, err := enforcer.AddGroupingPolicy(g[0], g[1]); err != nil {
			return nil, err
		}
	}
	for _, p := range policies {
		if _, err := enforcer.AddPolicy(p[0], p[1], p[2]); err != nil {
			return nil, err
		}
	}

	return enforcer, nil
}
