package mocks

import "github.com/wabdevconsult/batuta/domain"

// MockPolicyService implements domain.PolicyService interface for testing
type MockPolicyService struct {
	AddPolicyFunc       func(role domain.Role, resource, action string) error
	RemovePolicyFunc    func(role domain.Role, resource, action string) error
	CheckPermissionFunc func(role domain.Role, resource domain.Resource, action domain.Action) (bool, error)
	CapabilitiesFunc    func(role domain.Role) (domain.Capabilities, error)
	GetPoliciesFunc     func() [][]string
}

// NewMockPolicyService creates a new MockPolicyService with default behaviors
func NewMockPolicyService() *MockPolicyService {
	return &MockPolicyService{}
}

// AddPolicy adds a new capability
func (m *MockPolicyService) AddPolicy(role domain.Role, resource, action string) error {
	if m.AddPolicyFunc != nil {
		return m.AddPolicyFunc(role, resource, action)
	}
	return nil
}

// RemovePolicy removes a capability
func (m *MockPolicyService) RemovePolicy(role domain.Role, resource, action string) error {
	if m.RemovePolicyFunc != nil {
		return m.RemovePolicyFunc(role, resource, action)
	}
	return nil
}

// CheckPermission checks if a role may perform action on resource
func (m *MockPolicyService) CheckPermission(role domain.Role, resource domain.Resource, action domain.Action) (bool, error) {
	if m.CheckPermissionFunc != nil {
		return m.CheckPermissionFunc(role, resource, action)
	}
	// Default behavior: admin may do anything, other roles may only read
	if role == domain.RoleAdmin {
		return true, nil
	}
	return action == domain.ActionList || action == domain.ActionView, nil
}

// Capabilities builds the capability table from CheckPermission
func (m *MockPolicyService) Capabilities(role domain.Role) (domain.Capabilities, error) {
	if m.CapabilitiesFunc != nil {
		return m.CapabilitiesFunc(role)
	}
	caps := domain.Capabilities{Role: role, Resources: map[domain.Resource][]domain.Action{}}
	for _, resource := range append(append([]domain.Resource{}, domain.Resources...), domain.ResourcePolicies) {
		for _, action := range domain.Actions {
			ok, err := m.CheckPermission(role, resource, action)
			if err != nil {
				return domain.Capabilities{}, err
			}
			if ok {
				caps.Resources[resource] = append(caps.Resources[resource], action)
			}
		}
	}
	return caps, nil
}

// GetPolicies returns all current policies
func (m *MockPolicyService) GetPolicies() [][]string {
	if m.GetPoliciesFunc != nil {
		return m.GetPoliciesFunc()
	}
	return [][]string{
		{"role_admin", "*", "^(list|view|create|update|delete|transition|export)$"},
		{"role_client", "installations", "^(list|view)$"},
	}
}

// Compile-time interface compliance verification
var _ domain.PolicyService = (*MockPolicyService)(nil)
