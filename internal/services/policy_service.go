package services

import (
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"

	"github.com/Mojasagwe/taxiRankApp/domain"
)

// casbinModel is the capability model. Policies ship with the client;
// there is nothing to administer at runtime.
const casbinModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && r.obj == p.obj && r.act == p.act
`

// PolicyServiceImpl implements domain.PolicyService. Routing is a pure
// function of the user record; capability checks go through Casbin so
// admin-only workflow operations are gated client-side.
type PolicyServiceImpl struct {
	enforcer *casbin.Enforcer
}

// NewPolicyService creates the policy service and seeds the capability
// table.
func NewPolicyService() (*PolicyServiceImpl, error) {
	m, err := model.NewModelFromString(casbinModel)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}

	policies := [][]string{
		{"role_user", "ranks", "view"},
		{"role_user", "ranks", "apply"},
		{"role_admin", "ranks", "view"},
		{"role_admin", "ranks", "manage"},
		{"role_admin", "ranks", "apply"},
		{"role_admin", "dashboard", "view"},
		{"role_super_admin", "requests", "review"},
		{"role_super_admin", "ranks", "view"},
	}
	for _, p := range policies {
		if _, err := enforcer.AddPolicy(p[0], p[1], p[2]); err != nil {
			return nil, err
		}
	}

	return &PolicyServiceImpl{enforcer: enforcer}, nil
}

// RoleOf implements domain.PolicyService. A nil user defaults to USER;
// absence of a user routes to the auth root, not to a role.
func (p *PolicyServiceImpl) RoleOf(u *domain.User) domain.Role {
	if u == nil || !u.Role.Valid() {
		return domain.RoleUser
	}
	return u.Role
}

// RootFor implements domain.PolicyService. The precedence is strict:
// no user, then super admin, then admin, then commuter. A super admin is
// never routed to the admin root.
func (p *PolicyServiceImpl) RootFor(u *domain.User) domain.Root {
	switch {
	case u == nil:
		return domain.RootAuth
	case u.IsSuperAdmin():
		return domain.RootSuperAdmin
	case u.IsAdmin():
		return domain.RootAdmin
	default:
		return domain.RootCommuter
	}
}

// Can implements domain.PolicyService.
func (p *PolicyServiceImpl) Can(role domain.Role, resource, action string) (bool, error) {
	return p.enforcer.Enforce(casbinSubject(role), resource, action)
}

func casbinSubject(role domain.Role) string {
	switch role {
	case domain.RoleAdmin:
		return "role_admin"
	case domain.RoleSuperAdmin:
		return "role_super_admin"
	default:
		return "role_user"
	}
}
