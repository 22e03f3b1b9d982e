package auth

import (
	"fmt"
	"log"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"github.com/wabdevconsult/batuta/domain"
	"gorm.io/gorm"
)

// CapabilityModel matches role_<role> subjects against resource globs and action regexes
const CapabilityModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && keyMatch(r.obj, p.obj) && regexMatch(r.act, p.act)
`

// DefaultPolicies is the capability table seeded when no policy is stored
var DefaultPolicies = [][]string{
	{"role_admin", "*", "^(list|view|create|update|delete|transition|export)$"},
	{"role_technicien", "installations", "^(list|view|update|transition)$"},
	{"role_technicien", "interventions", "^(list|view|update|transition)$"},
	{"role_technicien", "equipments", "^(list|view|transition)$"},
	{"role_technicien", "clients", "^(list|view)$"},
	{"role_client", "installations", "^(list|view)$"},
	{"role_client", "interventions", "^(list|view)$"},
	{"role_client", "quote-requests", "^(list|view|create|transition)$"},
	{"role_fournisseur", "equipments", "^(list|view|create|update)$"},
	{"role_fournisseur", "quote-requests", "^(list|view)$"},
}

// Subject converts a role to its casbin subject
func Subject(role domain.Role) string {
	return "role_" + string(role)
}

type CasbinService struct{ E *casbin.Enforcer }

// NewCasbinService builds an in-memory enforcer seeded with DefaultPolicies
func NewCasbinService() (*CasbinService, error) {
	m, err := model.NewModelFromString(CapabilityModel)
	if err != nil {
		return nil, fmt.Errorf("parse capability model: %w", err)
	}
	E, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}
	if err := seed(E); err != nil {
		return nil, err
	}
	return &CasbinService{E}, nil
}

// NewPersistentCasbinService stores the capability table in db through the gorm adapter
func NewPersistentCasbinService(db *gorm.DB) (*CasbinService, error) {
	m, err := model.NewModelFromString(CapabilityModel)
	if err != nil {
		return nil, fmt.Errorf("parse capability model: %w", err)
	}
	adp, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Casbin GORM adapter: %w", err)
	}
	E, err := casbin.NewEnforcer(m, adp)
	if err != nil {
		return nil, err
	}
	if err := E.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seed(E); err != nil {
		return nil, err
	}
	return &CasbinService{E}, nil
}

func seed(E *casbin.Enforcer) error {
	policies, err := E.GetPolicy()
	if err != nil {
		return err
	}
	if len(policies) > 0 {
		return nil
	}
	if _, err := E.AddPolicies(DefaultPolicies); err != nil {
		return fmt.Errorf("seed capability table: %w", err)
	}
	log.Println("casbin: seeded default policies")
	return nil
}
