package roles

// LandingRoute is where users without a recognized session are sent.
const LandingRoute = "/"

// dashboardRoutes maps each role to its default dashboard. Adding a role
// means adding exactly one entry here and one in menuCategories.
var dashboardRoutes = map[Role]string{
	Admin:   "/admin/dashboard",
	Manager: "/manager/dashboard",
	Staff:   "/staff/dashboard",
	Parent:  "/parent/dashboard",
	Student: "/student/dashboard",
}

// DashboardRoute returns the default post-login destination for a role.
// Unknown or empty roles fall back to the public landing route.
func DashboardRoute(r Role) string {
	if route, ok := dashboardRoutes[r]; ok {
		return route
	}
	return LandingRoute
}

// menuCategories lists the menu groups visible to each role. Any "this role
// also sees that role's screens" hierarchy is expressed here by listing the
// categories; route guards never imply it.
var menuCategories = map[Role][]string{
	Admin:   {"accounts", "classes", "students", "medication", "reports", "settings"},
	Manager: {"classes", "students", "medication", "reports"},
	Staff:   {"classes", "students", "medication"},
	Parent:  {"children", "medication"},
	Student: {"profile", "medication"},
}

// MenuCategories returns the menu groups for a role. The slice is a copy;
// callers may not mutate the table through it.
func MenuCategories(r Role) []string {
	cats, ok := menuCategories[r]
	if !ok {
		return nil
	}
	out := make([]string, len(cats))
	copy(out, cats)
	return out
}
