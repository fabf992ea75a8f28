package rbac

import (
	"testing"

	"go-attendance/internal/domain"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/stretchr/testify/assert"
)

const testModel = `
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

type fakeRepo struct {
	rows []RolePermissionRow
	err  error
}

func (f *fakeRepo) GetRolePermissions() ([]RolePermissionRow, error) {
	return f.rows, f.err
}

func newTestEnforcer(t *testing.T) *casbin.Enforcer {
	t.Helper()
	m, err := model.NewModelFromString(testModel)
	assert.NoError(t, err)
	e, err := casbin.NewEnforcer(m)
	assert.NoError(t, err)
	return e
}

func TestService_Enforce(t *testing.T) {
	repo := &fakeRepo{rows: []RolePermissionRow{
		{Role: "STUDENT", Resource: "attendance", Action: "create"},
		{Role: "STUDENT", Resource: "face", Action: "write"},
		{Role: "LECTURER", Resource: "session", Action: "create"},
		{Role: "LECTURER", Resource: "attendance", Action: "read"},
	}}

	svc := NewService(repo, newTestEnforcer(t))

	allowed, err := svc.Enforce(domain.EnforceRequest{Role: "STUDENT", Resource: "attendance", Action: "create"})
	assert.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = svc.Enforce(domain.EnforceRequest{Role: "STUDENT", Resource: "session", Action: "create"})
	assert.NoError(t, err)
	assert.False(t, allowed)

	// ADMIN inherits LECTURER permissions through the grouping policy
	allowed, err = svc.Enforce(domain.EnforceRequest{Role: "ADMIN", Resource: "session", Action: "create"})
	assert.NoError(t, err)
	assert.True(t, allowed)
}
