package infra

import (
	"fmt"

	"github.com/casbin/casbin/v2"
)

// NewEnforcer builds a casbin enforcer from the RBAC model file. Policy rows
// live in Postgres and are loaded into the enforcer at startup.
func NewEnforcer(modelPath string) (*casbin.Enforcer, error) {
	e, err := casbin.NewEnforcer(modelPath)
	if err != nil {
		return nil, fmt.Errorf("rbac enforcer init: %w", err)
	}
	return e, nil
}
