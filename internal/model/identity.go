package model

// Identity is the authenticated caller as carried by the access token.
type Identity struct {
	ID       uint   `json:"id"`
	TenantID *uint  `json:"tenantId,omitempty"`
	Role     string `json:"role"`
}

// OwnerID resolves the tenant scoping key: tenantId when present, else the caller id.
func (i Identity) OwnerID() uint {
	if i.TenantID != nil {
		return *i.TenantID
	}
	return i.ID
}
