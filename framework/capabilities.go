package framework

// Capabilities is a list of optional features that the current run can exercise, such as a
// configured message broker or a second user identity. Tests that depend on one of these call
// ldtest.(*T).RequireCapability and are skipped when it is absent.
type Capabilities []string

const (
	// CapabilityNotifications means a message broker destination was configured and reachable.
	CapabilityNotifications = "notifications"

	// CapabilityPermissionlessUser means credentials for a user without any ACL grants were given.
	CapabilityPermissionlessUser = "permissionless-user"

	// CapabilityRootController means credentials for the repository root controller were given.
	CapabilityRootController = "root-controller"
)

// Has returns true if the specified string appears in the list.
func (cs Capabilities) Has(name string) bool {
	for _, c := range cs {
		if c == name {
			return true
		}
	}
	return false
}

// With returns a copy of the list with name added, unless it was already present.
func (cs Capabilities) With(name string) Capabilities {
	if cs.Has(name) {
		return cs
	}
	return append(append(Capabilities(nil), cs...), name)
}
