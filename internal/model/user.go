package model

import (
	"time"

	"sgad-api/internal/permission"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// User is an authenticated person: staff being evaluated, evaluators,
// directors, administrators or utentes.
type User struct {
	BaseModel
	Email        string          `gorm:"type:varchar(255);uniqueIndex;not null" json:"email" validate:"required,email"`
	Password     string          `gorm:"type:varchar(255);not null" json:"-"`
	FullName     string          `gorm:"type:varchar(255)" json:"full_name" validate:"required"`
	EmployeeNo   string          `gorm:"type:varchar(50)" json:"employee_no"`
	JobTitle     string          `gorm:"type:varchar(255)" json:"job_title"`
	OrgUnit      string          `gorm:"type:varchar(100);index" json:"org_unit"`
	SuperiorID   *uuid.UUID      `gorm:"type:uuid;index" json:"superior_id,omitempty"`
	RoleCode     permission.Role `gorm:"type:varchar(50);index;not null" json:"role" validate:"required,sgad_role"`
	IsActive     bool            `gorm:"default:true" json:"is_active"`
	TokenVersion string          `gorm:"type:varchar(255);default:''" json:"-"`
	LastSeenAt   *time.Time      `json:"last_seen_at,omitempty"`
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// UserResponse is the API view of a user without secrets.
type UserResponse struct {
	ID         uuid.UUID       `json:"id"`
	Email      string          `json:"email"`
	FullName   string          `json:"full_name"`
	EmployeeNo string          `json:"employee_no,omitempty"`
	JobTitle   string          `json:"job_title,omitempty"`
	OrgUnit    string          `json:"org_unit,omitempty"`
	SuperiorID *uuid.UUID      `json:"superior_id,omitempty"`
	Role       permission.Role `json:"role"`
	IsActive   bool            `json:"is_active"`
	LastSeenAt *time.Time      `json:"last_seen_at,omitempty"`
}

func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:         u.ID,
		Email:      u.Email,
		FullName:   u.FullName,
		EmployeeNo: u.EmployeeNo,
		JobTitle:   u.JobTitle,
		OrgUnit:    u.OrgUnit,
		SuperiorID: u.SuperiorID,
		Role:       u.RoleCode,
		IsActive:   u.IsActive,
		LastSeenAt: u.LastSeenAt,
	}
}
