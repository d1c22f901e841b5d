package permission

// Role is one of the fixed SGAD profiles.
type Role string

const (
	RoleAdmin         Role = "admin"
	RoleDirigente     Role = "dirigente"
	RoleAvaliador     Role = "avaliador"
	RoleAvaliado      Role = "avaliado"
	RoleUtenteInterno Role = "utente_interno"
	RoleUtenteExterno Role = "utente_externo"
)

// AllRoles lists every role in declaration order.
var AllRoles = []Role{
	RoleAdmin,
	RoleDirigente,
	RoleAvaliador,
	RoleAvaliado,
	RoleUtenteInterno,
	RoleUtenteExterno,
}

// ParseRole converts an untyped role name (from a token or a database row).
// The boolean is false for anything outside the fixed set.
func ParseRole(s string) (Role, bool) {
	for _, r := range AllRoles {
		if string(r) == s {
			return r, true
		}
	}
	return "", false
}

func (r Role) Valid() bool {
	_, ok := ParseRole(string(r))
	return ok
}

func (r Role) String() string {
	return string(r)
}
