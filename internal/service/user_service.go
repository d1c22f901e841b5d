package service

import (
	"errors"

	"sgad-api/internal/audit"
	"sgad-api/internal/model"
	"sgad-api/internal/permission"
	"sgad-api/internal/repository"
	"sgad-api/pkg/validator"

	"github.com/google/uuid"
)

var ErrEmailExists = errors.New("email already exists")

type UserService interface {
	CreateUser(actor Actor, req *CreateUserRequest) (*model.UserResponse, error)
	UpdateUser(actor Actor, userID uuid.UUID, req *UpdateUserRequest) (*model.UserResponse, error)
	DeleteUser(actor Actor, userID uuid.UUID) error
	GetAllUsers(actor Actor, filter repository.UserFilter) ([]model.UserResponse, error)
	GetUserByID(actor Actor, id uuid.UUID) (*model.UserResponse, error)
}

type CreateUserRequest struct {
	Email      string     `json:"email" validate:"required,email"`
	Password   string     `json:"password" validate:"required,min=6"`
	FullName   string     `json:"full_name" validate:"required"`
	EmployeeNo string     `json:"employee_no"`
	JobTitle   string     `json:"job_title"`
	OrgUnit    string     `json:"org_unit"`
	SuperiorID *uuid.UUID `json:"superior_id"`
	Role       string     `json:"role" validate:"required,sgad_role"`
}

type UpdateUserRequest struct {
	Email      string     `json:"email" validate:"required,email"`
	Password   *string    `json:"password,omitempty" validate:"omitempty,min=6"`
	FullName   string     `json:"full_name" validate:"required"`
	EmployeeNo string     `json:"employee_no"`
	JobTitle   string     `json:"job_title"`
	OrgUnit    string     `json:"org_unit"`
	SuperiorID *uuid.UUID `json:"superior_id"`
	Role       string     `json:"role" validate:"required,sgad_role"`
	IsActive   *bool      `json:"is_active"`
}

type userService struct {
	userRepo repository.UserRepository
	guard    guard
	scopes   scopeResolver
	audit    *audit.Logger
}

func NewUserService(userRepo repository.UserRepository, evaluator *permission.Evaluator, auditLog *audit.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		guard:    guard{evaluator},
		scopes:   scopeResolver{ev: evaluator, users: userRepo},
		audit:    auditLog,
	}
}

func (s *userService) record(actor Actor, action permission.Action, user *model.User) {
	s.audit.Log(audit.Entry{
		UserID:     actor.ID(),
		Role:       actor.Role,
		Module:     permission.ModuleUsers,
		Action:     string(action),
		EntityType: "user",
		EntityID:   user.ID.String(),
		Details:    map[string]interface{}{"email": user.Email, "role": user.RoleCode},
	})
}

func (s *userService) CreateUser(actor Actor, req *CreateUserRequest) (*model.UserResponse, error) {
	if err := s.guard.allow(actor.Role, permission.ModuleUsers, permission.ActionCreate); err != nil {
		return nil, err
	}
	if err := validator.FirstError(req); err != nil {
		return nil, validationError(err)
	}

	if existing, _ := s.userRepo.FindByEmail(req.Email); existing != nil {
		return nil, ErrEmailExists
	}

	role, _ := permission.ParseRole(req.Role)
	user := &model.User{
		Email:      req.Email,
		FullName:   req.FullName,
		EmployeeNo: req.EmployeeNo,
		JobTitle:   req.JobTitle,
		OrgUnit:    req.OrgUnit,
		SuperiorID: req.SuperiorID,
		RoleCode:   role,
		IsActive:   true,
	}
	user.Stamp(actor.ID())
	if err := user.SetPassword(req.Password); err != nil {
		return nil, errors.New("failed to hash password")
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}
	s.record(actor, permission.ActionCreate, user)

	resp := user.ToResponse()
	return &resp, nil
}

func (s *userService) UpdateUser(actor Actor, userID uuid.UUID, req *UpdateUserRequest) (*model.UserResponse, error) {
	if err := s.guard.allow(actor.Role, permission.ModuleUsers, permission.ActionUpdate); err != nil {
		return nil, err
	}
	if err := validator.FirstError(req); err != nil {
		return nil, validationError(err)
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	if req.Email != user.Email {
		if existing, _ := s.userRepo.FindByEmail(req.Email); existing != nil {
			return nil, ErrEmailExists
		}
	}
	if req.SuperiorID != nil && *req.SuperiorID == user.ID {
		return nil, validationError(errors.New("a user cannot be their own superior"))
	}

	role, _ := permission.ParseRole(req.Role)
	user.Email = req.Email
	user.FullName = req.FullName
	user.EmployeeNo = req.EmployeeNo
	user.JobTitle = req.JobTitle
	user.OrgUnit = req.OrgUnit
	user.SuperiorID = req.SuperiorID
	user.RoleCode = role
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	user.UpdatedBy = actor.ID()

	if req.Password != nil && *req.Password != "" {
		if err := user.SetPassword(*req.Password); err != nil {
			return nil, errors.New("failed to hash password")
		}
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	s.record(actor, permission.ActionUpdate, user)

	resp := user.ToResponse()
	return &resp, nil
}

func (s *userService) DeleteUser(actor Actor, userID uuid.UUID) error {
	if err := s.guard.allow(actor.Role, permission.ModuleUsers, permission.ActionDelete); err != nil {
		return err
	}
	if userID == actor.UserID {
		return validationError(errors.New("cannot delete your own account"))
	}
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return ErrUserNotFound
	}
	if err := s.userRepo.Delete(userID, actor.ID()); err != nil {
		return err
	}
	s.record(actor, permission.ActionDelete, user)
	return nil
}

func (s *userService) GetAllUsers(actor Actor, filter repository.UserFilter) ([]model.UserResponse, error) {
	if err := s.guard.allow(actor.Role, permission.ModuleUsers, permission.ActionView); err != nil {
		return nil, err
	}
	scope, err := s.scopes.resolve(actor)
	if err != nil {
		return nil, err
	}

	users, err := s.userRepo.FindAll(filter)
	if err != nil {
		return nil, err
	}

	responses := make([]model.UserResponse, 0, len(users))
	for _, user := range users {
		if scope.Allows(user.ID) {
			responses = append(responses, user.ToResponse())
		}
	}
	return responses, nil
}

func (s *userService) GetUserByID(actor Actor, id uuid.UUID) (*model.UserResponse, error) {
	if id != actor.UserID {
		if err := s.guard.allow(actor.Role, permission.ModuleUsers, permission.ActionView); err != nil {
			return nil, err
		}
		scope, err := s.scopes.resolve(actor)
		if err != nil {
			return nil, err
		}
		if !scope.Allows(id) {
			return nil, ErrForbidden
		}
	}
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, ErrUserNotFound
	}
	response := user.ToResponse()
	return &response, nil
}
