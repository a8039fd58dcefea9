package acesso

import "strings"

// GuardConfig holds the application paths the route guard redirects between.
// Zero values are filled in by Decide, so an empty GuardConfig is usable.
type GuardConfig struct {
	// OnboardingPath is where users without a store are sent.
	OnboardingPath string

	// BillingPath is where locked-out tenants are sent to renew.
	BillingPath string

	// SettingsPath stays reachable while locked out, so tenants can manage
	// their account.
	SettingsPath string

	// AdminPath is the platform-operator area.
	AdminPath string

	// DashboardPath is the default application area.
	DashboardPath string
}

// DefaultGuardConfig returns the paths used by the hosted application.
func DefaultGuardConfig() GuardConfig {
	return GuardConfig{
		OnboardingPath: "/onboarding",
		BillingPath:    "/planos",
		SettingsPath:   "/configuracoes",
		AdminPath:      "/admin",
		DashboardPath:  "/dashboard",
	}
}

func (g *GuardConfig) applyDefaults() {
	d := DefaultGuardConfig()
	if g.OnboardingPath == "" {
		g.OnboardingPath = d.OnboardingPath
	}
	if g.BillingPath == "" {
		g.BillingPath = d.BillingPath
	}
	if g.SettingsPath == "" {
		g.SettingsPath = d.SettingsPath
	}
	if g.AdminPath == "" {
		g.AdminPath = d.AdminPath
	}
	if g.DashboardPath == "" {
		g.DashboardPath = d.DashboardPath
	}
}

// Decide is the route-guard decision table. It maps the user's bootstrap
// state, the current access status and the requested path to a redirect
// target, or "" when the request may proceed.
//
// Precedence: onboarding and admin routing are checked before the paywall, so
// an admin or a user who just finished onboarding can never be trapped in a
// stale paywall redirect loop. Decide is pure and must be re-evaluated on
// every navigation: access can change server-side between requests.
func (g GuardConfig) Decide(boot BootstrapStatus, status AccessStatus, requestedPath string) string {
	g.applyDefaults()

	// Admins live in the admin area; the admin area is denied to everyone else.
	if boot.IsAdmin {
		if pathWithin(requestedPath, g.AdminPath) {
			return ""
		}
		return g.AdminPath
	}
	if pathWithin(requestedPath, g.AdminPath) {
		return g.DashboardPath
	}

	// Users with no tenant at all are forced through onboarding.
	if !boot.HasStore && !boot.IsMember {
		if pathWithin(requestedPath, g.OnboardingPath) {
			return ""
		}
		return g.OnboardingPath
	}

	// Tenants that completed onboarding have no business back there.
	if pathWithin(requestedPath, g.OnboardingPath) {
		return g.DashboardPath
	}

	// Paywall: locked-out tenants may still reach billing and settings.
	if !status.Granted {
		if pathWithin(requestedPath, g.BillingPath) || pathWithin(requestedPath, g.SettingsPath) {
			return ""
		}
		return g.BillingPath
	}

	return ""
}

// pathWithin reports whether path equals base or is nested under it.
// "/planos/checkout" is within "/planos"; "/planosb" is not.
func pathWithin(path, base string) bool {
	if base == "" || base == "/" {
		return base == path
	}
	base = strings.TrimSuffix(base, "/")
	if path == base {
		return true
	}
	return strings.HasPrefix(path, base+"/")
}
