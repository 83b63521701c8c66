package auth

import (
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

const (
	ResourceAnalytics = "analytics"
	ResourceOrders    = "orders"
	ActionRead        = "read"
	ActionWrite       = "write"
)

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && r.obj == p.obj && r.act == p.act
`

// defaultPolicy grants per role. Roles not listed are denied everything.
var defaultPolicy = [][]string{
	{"admin", ResourceAnalytics, ActionRead},
	{"admin", ResourceOrders, ActionWrite},
}

// Policy decides whether a role may perform an action on a resource.
type Policy struct {
	enforcer *casbin.Enforcer
}

func NewPolicy() (*Policy, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("load rbac model: %w", err)
	}
	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("init rbac enforcer: %w", err)
	}
	if _, err := e.AddPolicies(defaultPolicy); err != nil {
		return nil, fmt.Errorf("load rbac policy: %w", err)
	}
	return &Policy{enforcer: e}, nil
}

func (p *Policy) Allowed(role, resource, action string) (bool, error) {
	ok, err := p.enforcer.Enforce(role, resource, action)
	if err != nil {
		return false, fmt.Errorf("rbac check: %w", err)
	}
	return ok, nil
}
