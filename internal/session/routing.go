package session

import (
	"slices"

	"github.com/fjod/go_cart/eventhub/internal/domain"
)

type Area string

const (
	AreaCart            Area = "cart"
	AreaCustomerOrders  Area = "customer"
	AreaVendorDashboard Area = "vendor"
	AreaAdminDashboard  Area = "admin"
)

var areaRoles = map[Area][]domain.Role{
	AreaCart:            {domain.RoleUser, domain.RoleAdmin},
	AreaCustomerOrders:  {domain.RoleUser, domain.RoleAdmin},
	AreaVendorDashboard: {domain.RoleVendor, domain.RoleAdmin},
	AreaAdminDashboard:  {domain.RoleAdmin},
}

func AllowedRoles(area Area) []domain.Role {
	return slices.Clone(areaRoles[area])
}

// Allowed reports whether profile may enter area. A missing profile is
// never allowed.
func Allowed(profile *domain.Profile, area Area) bool {
	if profile == nil {
		return false
	}
	return slices.Contains(areaRoles[area], profile.Role)
}

// DashboardPath is where a signed-in profile lands.
func DashboardPath(profile *domain.Profile) string {
	if profile == nil {
		return "/login"
	}
	switch profile.Role {
	case domain.RoleAdmin:
		return "/admin/dashboard"
	case domain.RoleVendor:
		return "/vendor/dashboard"
	default:
		return "/user/dashboard"
	}
}
