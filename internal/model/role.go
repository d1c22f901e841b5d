package model

import "sgad-api/internal/permission"

// Role and Permission back the dynamic RBAC tables (roles, permissions,
// role_permissions). They mirror the static matrix as flat codes and carry
// no scope or lock logic; authorization decisions use permission.Evaluator.
type Role struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	Code        string       `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Name        string       `gorm:"type:varchar(100)" json:"name"`
	Description string       `gorm:"type:text" json:"description"`
	Permissions []Permission `gorm:"many2many:role_permissions;" json:"permissions,omitempty"`
}

// Permission is a single "Mxx.action" grant.
type Permission struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	Code   string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Module string `gorm:"type:varchar(10);index" json:"module"`
	Action string `gorm:"type:varchar(10)" json:"action"`
	Name   string `gorm:"type:varchar(150)" json:"name"`
}

var roleLabels = map[permission.Role][2]string{
	permission.RoleAdmin:         {"Administrador", "Acesso total, incluindo auditoria após fecho do ciclo"},
	permission.RoleDirigente:     {"Dirigente", "Dirigente da unidade orgânica; homologa resultados"},
	permission.RoleAvaliador:     {"Avaliador", "Avalia os trabalhadores da sua equipa"},
	permission.RoleAvaliado:      {"Avaliado", "Trabalhador em avaliação"},
	permission.RoleUtenteInterno: {"Utente Interno", "Utente interno que avalia serviços"},
	permission.RoleUtenteExterno: {"Utente Externo", "Utente externo; submissões anónimas"},
}

// DefaultRoles lists one row per fixed role.
func DefaultRoles() []Role {
	roles := make([]Role, 0, len(permission.AllRoles))
	for _, r := range permission.AllRoles {
		l := roleLabels[r]
		roles = append(roles, Role{Code: string(r), Name: l[0], Description: l[1]})
	}
	return roles
}

var actionLabels = map[permission.Action]string{
	permission.ActionView:   "Consultar",
	permission.ActionCreate: "Criar",
	permission.ActionUpdate: "Alterar",
	permission.ActionDelete: "Eliminar",
}

// DefaultPermissions lists every module/action pair of the catalog.
func DefaultPermissions(catalog *permission.Catalog) []Permission {
	var perms []Permission
	for _, m := range catalog.All() {
		for _, a := range permission.AllActions {
			perms = append(perms, Permission{
				Code:   permission.PairCode(m.Code, a),
				Module: string(m.Code),
				Action: string(a),
				Name:   actionLabels[a] + " " + m.Label,
			})
		}
	}
	return perms
}
