package repository

import (
	"errors"
	"time"

	"sgad-api/internal/model"
	"sgad-api/internal/permission"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrStateChanged is returned when a cycle moved under a concurrent transition.
var ErrStateChanged = errors.New("cycle state changed concurrently")

// CycleGuard re-reads a cycle's state FOR SHARE inside a write transaction
// and lets Check veto the write. Transition holds the row FOR UPDATE, so a
// state change cannot land between the check and the write. The zero value
// checks nothing.
type CycleGuard struct {
	CycleID uuid.UUID
	Check   func(state permission.CycleState) error
}

func (g CycleGuard) hold(tx *gorm.DB) error {
	if g.CycleID == uuid.Nil || g.Check == nil {
		return nil
	}
	var cycle model.Cycle
	if err := tx.Clauses(clause.Locking{Strength: "SHARE"}).
		Select("id", "state").
		First(&cycle, "id = ?", g.CycleID).Error; err != nil {
		return err
	}
	return g.Check(cycle.State)
}

type CycleRepository interface {
	Create(cycle *model.Cycle) error
	Update(cycle *model.Cycle) error
	Delete(id uuid.UUID, deletedBy string) error
	FindByID(id uuid.UUID) (*model.Cycle, error)
	FindAll() ([]model.Cycle, error)
	// Transition moves the cycle from -> to inside a locked transaction and
	// records the change. It fails with ErrStateChanged if the stored state
	// is no longer from.
	Transition(id uuid.UUID, from, to permission.CycleState, userID, note string) (*model.Cycle, error)
	Transitions(id uuid.UUID) ([]model.CycleTransition, error)
	CountByState() (map[permission.CycleState]int64, error)
}

type cycleRepo struct {
	db *gorm.DB
}

func NewCycleRepo(db *gorm.DB) CycleRepository {
	return &cycleRepo{db}
}

func (r *cycleRepo) Create(cycle *model.Cycle) error {
	return r.db.Create(cycle).Error
}

func (r *cycleRepo) Update(cycle *model.Cycle) error {
	// state only moves through Transition
	return r.db.Model(cycle).Omit("state", "homologated_at", "homologated_by").Updates(map[string]interface{}{
		"name":       cycle.Name,
		"year":       cycle.Year,
		"period":     cycle.Period,
		"start_date": cycle.StartDate,
		"end_date":   cycle.EndDate,
		"scheme":     cycle.Scheme,
		"updated_by": cycle.UpdatedBy,
	}).Error
}

func (r *cycleRepo) Delete(id uuid.UUID, deletedBy string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Cycle{}).Where("id = ?", id).Update("deleted_by", deletedBy).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Cycle{}, "id = ?", id).Error
	})
}

func (r *cycleRepo) FindByID(id uuid.UUID) (*model.Cycle, error) {
	var cycle model.Cycle
	if err := r.db.First(&cycle, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &cycle, nil
}

func (r *cycleRepo) FindAll() ([]model.Cycle, error) {
	var cycles []model.Cycle
	err := r.db.Order("year DESC, start_date DESC").Find(&cycles).Error
	return cycles, err
}

func (r *cycleRepo) Transition(id uuid.UUID, from, to permission.CycleState, userID, note string) (*model.Cycle, error) {
	var updated model.Cycle

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&updated, "id = ?", id).Error; err != nil {
			return err
		}
		if updated.State != from {
			return ErrStateChanged
		}

		updates := map[string]interface{}{
			"state":      to,
			"updated_by": userID,
		}
		if to == permission.CycleHomologado {
			now := time.Now()
			updates["homologated_at"] = now
			if uid, err := uuid.Parse(userID); err == nil {
				updates["homologated_by"] = uid
			}
		}
		if err := tx.Model(&updated).Updates(updates).Error; err != nil {
			return err
		}

		transition := model.CycleTransition{CycleID: id, From: from, To: to, Note: note}
		transition.Stamp(userID)
		if err := tx.Create(&transition).Error; err != nil {
			return err
		}

		return tx.First(&updated, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *cycleRepo) Transitions(id uuid.UUID) ([]model.CycleTransition, error) {
	var out []model.CycleTransition
	err := r.db.Where("cycle_id = ?", id).Order("created_at ASC").Find(&out).Error
	return out, err
}

func (r *cycleRepo) CountByState() (map[permission.CycleState]int64, error) {
	rows, err := r.db.Model(&model.Cycle{}).
		Select("state, COUNT(*) as total").
		Group("state").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[permission.CycleState]int64)
	for rows.Next() {
		var state string
		var total int64
		if err := rows.Scan(&state, &total); err != nil {
			return nil, err
		}
		counts[permission.CycleState(state)] = total
	}
	return counts, rows.Err()
}
