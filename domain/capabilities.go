package domain

// Resource names a REST collection, also used as the casbin object
type Resource string

const (
	ResourceInstallations Resource = "installations"
	ResourceEquipments    Resource = "equipments"
	ResourceInterventions Resource = "interventions"
	ResourceClients       Resource = "clients"
	ResourceQuoteRequests Resource = "quote-requests"
	ResourcePolicies      Resource = "policies"
)

// Resources lists the entity collections exposed in the console
var Resources = []Resource{
	ResourceInstallations,
	ResourceEquipments,
	ResourceInterventions,
	ResourceClients,
	ResourceQuoteRequests,
}

// Path returns the backend collection path
func (r Resource) Path() string {
	return "/" + string(r)
}

// Action is what a role wants to do with a resource
type Action string

const (
	ActionList       Action = "list"
	ActionView       Action = "view"
	ActionCreate     Action = "create"
	ActionUpdate     Action = "update"
	ActionDelete     Action = "delete"
	ActionTransition Action = "transition"
	ActionExport     Action = "export"
)

// Actions lists every action in display order
var Actions = []Action{ActionList, ActionView, ActionCreate, ActionUpdate, ActionDelete, ActionTransition, ActionExport}

// Capabilities is the per-role permission table a view consults once
type Capabilities struct {
	Role      Role                  `json:"role"`
	Resources map[Resource][]Action `json:"resources"`
}

// Can reports whether the table grants action on resource
func (c Capabilities) Can(resource Resource, action Action) bool {
	for _, a := range c.Resources[resource] {
		if a == action {
			return true
		}
	}
	return false
}
