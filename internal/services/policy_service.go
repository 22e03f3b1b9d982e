package services

import (
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/wabdevconsult/batuta/domain"
	"github.com/wabdevconsult/batuta/internal/infrastructure/auth"
)

// CasbinEnforcerWrapper wraps the real Casbin enforcer to implement our interface
type CasbinEnforcerWrapper struct {
	enforcer *casbin.Enforcer
}

// NewCasbinEnforcerWrapper creates a wrapper for the real Casbin enforcer
func NewCasbinEnforcerWrapper(enforcer *casbin.Enforcer) domain.CasbinEnforcer {
	return &CasbinEnforcerWrapper{enforcer: enforcer}
}

func (w *CasbinEnforcerWrapper) AddPolicy(params ...interface{}) (bool, error) {
	return w.enforcer.AddPolicy(params...)
}

func (w *CasbinEnforcerWrapper) RemovePolicy(params ...interface{}) (bool, error) {
	return w.enforcer.RemovePolicy(params...)
}

func (w *CasbinEnforcerWrapper) Enforce(rvals ...interface{}) (bool, error) {
	return w.enforcer.Enforce(rvals...)
}

func (w *CasbinEnforcerWrapper) GetPolicy() ([][]string, error) {
	return w.enforcer.GetPolicy()
}

// SavePolicy is a no-op for the in-memory model, which has no adapter
func (w *CasbinEnforcerWrapper) SavePolicy() error {
	if w.enforcer.GetAdapter() == nil {
		return nil
	}
	return w.enforcer.SavePolicy()
}

// capabilityResources are the objects listed in a capability table
var capabilityResources = append(append([]domain.Resource{}, domain.Resources...), domain.ResourcePolicies)

// PolicyServiceImpl implements domain.PolicyService using Casbin
type PolicyServiceImpl struct {
	enforcer domain.CasbinEnforcer
}

// NewPolicyService creates a new policy service
func NewPolicyService(enforcer *casbin.Enforcer) domain.PolicyService {
	return &PolicyServiceImpl{
		enforcer: NewCasbinEnforcerWrapper(enforcer),
	}
}

// NewPolicyServiceWithEnforcer creates a new policy service with a CasbinEnforcer interface (for testing)
func NewPolicyServiceWithEnforcer(enforcer domain.CasbinEnforcer) domain.PolicyService {
	return &PolicyServiceImpl{
		enforcer: enforcer,
	}
}

// actionPattern anchors a plain action list like "list|view" so it cannot
// match a longer action name
func actionPattern(action string) string {
	if strings.HasPrefix(action, "^") {
		return action
	}
	return "^(" + action + ")$"
}

func validatePolicy(role domain.Role, resource, action string) error {
	if !role.Valid() {
		return fmt.Errorf("unknown role %q", role)
	}
	if strings.TrimSpace(resource) == "" || strings.TrimSpace(action) == "" {
		return fmt.Errorf("resource and action are required")
	}
	return nil
}

// AddPolicy implements domain.PolicyService
func (p *PolicyServiceImpl) AddPolicy(role domain.Role, resource, action string) error {
	if err := validatePolicy(role, resource, action); err != nil {
		return err
	}
	_, err := p.enforcer.AddPolicy(auth.Subject(role), resource, actionPattern(action))
	if err != nil {
		return err
	}
	return p.enforcer.SavePolicy()
}

// RemovePolicy implements domain.PolicyService
func (p *PolicyServiceImpl) RemovePolicy(role domain.Role, resource, action string) error {
	if err := validatePolicy(role, resource, action); err != nil {
		return err
	}
	_, err := p.enforcer.RemovePolicy(auth.Subject(role), resource, actionPattern(action))
	if err != nil {
		return err
	}
	return p.enforcer.SavePolicy()
}

// CheckPermission implements domain.PolicyService
func (p *PolicyServiceImpl) CheckPermission(role domain.Role, resource domain.Resource, action domain.Action) (bool, error) {
	return p.enforcer.Enforce(auth.Subject(role), string(resource), string(action))
}

// Capabilities implements domain.PolicyService
func (p *PolicyServiceImpl) Capabilities(role domain.Role) (domain.Capabilities, error) {
	caps := domain.Capabilities{Role: role, Resources: make(map[domain.Resource][]domain.Action)}
	for _, resource := range capabilityResources {
		for _, action := range domain.Actions {
			ok, err := p.CheckPermission(role, resource, action)
			if err != nil {
				return domain.Capabilities{}, fmt.Errorf("check %s %s: %w", resource, action, err)
			}
			if ok {
				caps.Resources[resource] = append(caps.Resources[resource], action)
			}
		}
	}
	return caps, nil
}

// GetPolicies implements domain.PolicyService
func (p *PolicyServiceImpl) GetPolicies() [][]string {
	policies, _ := p.enforcer.GetPolicy()
	return policies
}
