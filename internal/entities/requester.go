package entities

// RequesterKind classifies who is asking: an anonymous visitor, an
// authenticated customer, a staff account, or an app credential.
type RequesterKind string

const (
	RequesterAnonymous RequesterKind = "anonymous"
	RequesterCustomer  RequesterKind = "customer"
	RequesterStaff     RequesterKind = "staff"
	RequesterApp       RequesterKind = "app"
)

// Requester is the resolved identity behind a request, together with its
// granted permission set. A zero-value Requester is anonymous.
type Requester struct {
	Kind        RequesterKind
	ID          string       // account or app ID; empty for anonymous
	Permissions []Permission // granted permissions; empty for anonymous and customers

	// SessionToken is the opaque checkout token carried by anonymous
	// sessions. It establishes ownership of token-owned entities only.
	SessionToken string
}

// Anonymous returns an unauthenticated requester.
func Anonymous() *Requester {
	return &Requester{Kind: RequesterAnonymous}
}

// IsAuthenticated reports whether the requester carries a verified identity.
func (r *Requester) IsAuthenticated() bool {
	return r.Kind != RequesterAnonymous && r.Kind != ""
}

// HasPermission reports whether the requester holds the given permission.
func (r *Requester) HasPermission(p Permission) bool {
	for _, granted := range r.Permissions {
		if granted == p {
			return true
		}
	}
	return false
}

// HasAnyPermission reports whether the requester holds at least one of the
// given permissions.
func (r *Requester) HasAnyPermission(perms ...Permission) bool {
	for _, p := range perms {
		if r.HasPermission(p) {
			return true
		}
	}
	return false
}
