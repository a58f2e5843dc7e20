package domain

import (
	"strings"
)

// Role is one of the supply-chain permission categories managed by the
// RolesManager contract.
type Role string

const (
	RoleMiner       Role = "MINER"
	RoleRefiner     Role = "REFINER"
	RoleTransporter Role = "TRANSPORTER"
	RoleAuditor     Role = "AUDITOR"
	RoleInspector   Role = "INSPECTOR"
	RoleBuyer       Role = "BUYER"
)

// Roles lists every managed role in dashboard display order.
var Roles = []Role{
	RoleMiner,
	RoleRefiner,
	RoleTransporter,
	RoleAuditor,
	RoleInspector,
	RoleBuyer,
}

var roleTitles = map[Role]string{
	RoleMiner:       "Miner",
	RoleRefiner:     "Refiner",
	RoleTransporter: "Transporter",
	RoleAuditor:     "Auditor",
	RoleInspector:   "Inspector",
	RoleBuyer:       "Buyer",
}

// ParseRole accepts either the upper-case key ("AUDITOR") or the display
// title in any case ("auditor", "Auditor").
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := roleTitles[r]; !ok {
		return "", false
	}
	return r, true
}

// Valid reports whether r is one of the managed roles.
func (r Role) Valid() bool {
	_, ok := roleTitles[r]
	return ok
}

// Title returns the display name, e.g. "Auditor".
func (r Role) Title() string {
	return roleTitles[r]
}

// ID returns the on-chain role identifier: the UTF-8 bytes of "<ROLE>_ROLE"
// right-padded with zeros to 32 bytes.
func (r Role) ID() [32]byte {
	var id [32]byte
	copy(id[:], r.roleName())
	return id
}

func (r Role) roleName() string {
	return string(r) + "_ROLE"
}

// AssignFunction is the RolesManager write function that grants r.
func (r Role) AssignFunction() string {
	return "assign" + r.Title()
}

// RevokeFunction is the RolesManager write function that removes r.
func (r Role) RevokeFunction() string {
	return "revoke" + r.Title()
}

// HasRoleFunction is the RolesManager view function that checks r.
func (r Role) HasRoleFunction() string {
	return "has" + r.Title() + "Role"
}

// Portal is the dashboard route for holders of r.
func (r Role) Portal() string {
	return "/" + strings.ToLower(string(r))
}

// PortalAdmin is the route for wallets that hold the admin role.
const PortalAdmin = "/admin"

// PortalOrder is the order in which a wallet's roles are checked when picking
// its landing portal. Admin is checked before all of these.
var PortalOrder = []Role{
	RoleMiner,
	RoleRefiner,
	RoleTransporter,
	RoleInspector,
	RoleAuditor,
	RoleBuyer,
}

// RoleCount is the locally held member count of a role.
type RoleCount struct {
	Role     Role   `json:"role"`
	Title    string `json:"title"`
	Count    uint64 `json:"count"`
	InFlight bool   `json:"in_flight"`
}
