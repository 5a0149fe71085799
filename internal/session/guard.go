// Package session decides whether a signed-in principal may use a tenant's
// admin surface.
package session

// IsAuthorized reports whether the principal's tenant is the route's tenant.
// Empty ids never match.
func IsAuthorized(principalTenantID, routeTenantID string) bool {
	return principalTenantID != "" && routeTenantID != "" && principalTenantID == routeTenantID
}
