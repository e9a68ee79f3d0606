package model

// Actor carries the caller's authority into every orchestrator call,
// replacing ambient session state. Provisioning refuses actors without the
// provision capability.
type Actor struct {
	ID   string
	Role ActorRole
}

type ActorRole string

const (
	ActorRoleWebhook  ActorRole = "webhook"
	ActorRoleOperator ActorRole = "operator"
	ActorRoleReadOnly ActorRole = "readonly"
)

func (a Actor) CanProvision() bool {
	return a.Role == ActorRoleWebhook || a.Role == ActorRoleOperator
}
