package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Scope restricts queries to a set of evaluated users. When Restricted is
// false no restriction applies; when true and IDs is empty nothing matches.
type Scope struct {
	Restricted bool
	IDs        []uuid.UUID
}

// Unrestricted matches every evaluated user.
func Unrestricted() Scope {
	return Scope{}
}

// Only restricts to the given evaluated users.
func Only(ids ...uuid.UUID) Scope {
	return Scope{Restricted: true, IDs: ids}
}

// Allows reports whether id falls inside the scope.
func (s Scope) Allows(id uuid.UUID) bool {
	if !s.Restricted {
		return true
	}
	for _, v := range s.IDs {
		if v == id {
			return true
		}
	}
	return false
}

func applyScope(query *gorm.DB, column string, s Scope) *gorm.DB {
	if !s.Restricted {
		return query
	}
	if len(s.IDs) == 0 {
		return query.Where("1 = 0")
	}
	return query.Where(column+" IN ?", s.IDs)
}
