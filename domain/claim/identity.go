package claim

// Role partitions accounts into policy holders and insurer staff
type Role string

const (
	RoleUser    Role = "user"
	RoleCompany Role = "company"
)

const (
	RouteSignIn           = "/sign-in"
	RouteUserDashboard    = "/dashboard"
	RouteCompanyDashboard = "/dashboard/company"
)

func (r Role) Valid() bool { return r == RoleUser || r == RoleCompany }

// Home is the landing route after sign-in
func (r Role) Home() string {
	if r == RoleCompany {
		return RouteCompanyDashboard
	}
	return RouteUserDashboard
}

// Identity is the signed-in principal as returned by the backend
type Identity struct {
	ID      ID     `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Role    Role   `json:"role"`
	Company string `json:"company,omitempty"`
	Avatar  string `json:"avatar,omitempty"`
}

// Valid reports whether a restored identity is usable
func (i Identity) Valid() bool {
	return !i.ID.IsEmpty() && i.Role.Valid()
}

// IsCompany reports whether the identity belongs to insurer staff
func (i Identity) IsCompany() bool { return i.Role == RoleCompany }
