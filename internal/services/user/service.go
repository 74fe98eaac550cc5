package user

import (
	"context"
	"errors"
	"fmt"

	apperrors "relais/internal/errors"
	"relais/internal/events"
	"relais/internal/models"
	"relais/internal/repositories"
	"relais/internal/services/auth"
	"relais/internal/utils/pagination"
	"relais/internal/validation"

	"go.uber.org/zap"
)

type Service interface {
	Create(ctx context.Context, actor *models.UserClaims, input CreateInput) (*models.User, error)
	Get(ctx context.Context, actor *models.UserClaims, id uint) (*models.User, error)
	List(ctx context.Context, actor *models.UserClaims, filter repositories.UserFilter, p pagination.Pagination) ([]models.User, int64, error)
	Update(ctx context.Context, actor *models.UserClaims, id uint, input UpdateInput) (*models.User, error)
	SetStatus(ctx context.Context, actor *models.UserClaims, id uint, status string) (*models.User, error)
	SetPermissions(ctx context.Context, actor *models.UserClaims, id uint, permissions []string) (*models.User, error)
	AssignAgency(ctx context.Context, actor *models.UserClaims, agentID, agencyID uint) (*models.User, error)
	Delete(ctx context.Context, actor *models.UserClaims, id uint) error
	RegisterDevice(ctx context.Context, userID uint, token string) error
}

type service struct {
	store     repositories.Store
	publisher events.Publisher
	log       *zap.Logger
}

func NewService(store repositories.Store, publisher events.Publisher, log *zap.Logger) Service {
	return &service{store: store, publisher: publisher, log: log}
}

// creatableRoles lists which roles each actor role may create.
var creatableRoles = map[string][]string{
	models.RoleAdminGeneral: models.ValidRoles,
	models.RoleSousAdmin:    {models.RoleAgent, models.RolePartner},
	models.RolePartner:      {models.RoleAgent},
}

func canCreate(actor *models.UserClaims, role string) bool {
	if actor.Role != models.RoleAdminGeneral && !actor.HasPermission(models.PermissionUserWrite) {
		return false
	}
	for _, r := range creatableRoles[actor.Role] {
		if r == role {
			return true
		}
	}
	return false
}

func (s *service) Create(ctx context.Context, actor *models.UserClaims, input CreateInput) (*models.User, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	if !models.IsValidRole(input.Role) {
		return nil, ErrInvalidRole
	}
	if !canCreate(actor, input.Role) {
		return nil, ErrRoleNotAllowed
	}

	// Partners only create agents inside their own network.
	if actor.Role == models.RolePartner {
		input.PartnerID = actor.PartnerID
		input.AgencyID = actor.AgencyID
	}

	if err := s.ensureUnique(ctx, 0, input.Email, input.Phone); err != nil {
		return nil, err
	}

	hashed, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	u := &models.User{
		Email:     input.Email,
		Phone:     input.Phone,
		Name:      input.Name,
		Password:  hashed,
		Role:      input.Role,
		Status:    models.UserStatusActive,
		CreatedBy: &actor.UserID,
	}

	if input.Role == models.RoleSousAdmin {
		if err := checkGrantable(input.Permissions); err != nil {
			return nil, err
		}
		u.Permissions = input.Permissions
	}

	if input.Role == models.RoleAgent && input.PartnerID != nil {
		agency, err := s.store.Agencies().GetByPartnerID(ctx, *input.PartnerID)
		if err != nil {
			return nil, err
		}
		if input.AgencyID != nil && *input.AgencyID != agency.ID {
			return nil, fmt.Errorf("%w: agency does not belong to partner", apperrors.ErrInvalidInput)
		}
		u.PartnerID = &agency.PartnerID
		u.AgencyID = &agency.ID
	}

	if err := s.store.Users().Create(ctx, u); err != nil {
		return nil, err
	}

	s.log.Info("user created",
		zap.Uint("user_id", u.ID),
		zap.String("role", u.Role),
		zap.Uint("created_by", actor.UserID))
	s.publish(ctx, u, events.ActionCreated)
	return u, nil
}

func (s *service) Get(ctx context.Context, actor *models.UserClaims, id uint) (*models.User, error) {
	u, err := s.store.Users().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canView(actor, u) {
		return nil, apperrors.ErrForbidden
	}
	return u, nil
}

func (s *service) List(ctx context.Context, actor *models.UserClaims, filter repositories.UserFilter, p pagination.Pagination) ([]models.User, int64, error) {
	switch {
	case actor.IsAdmin() && actor.HasPermission(models.PermissionUserRead):
	case actor.Role == models.RolePartner && actor.PartnerID != nil:
		filter.PartnerID = actor.PartnerID
	default:
		return nil, 0, apperrors.ErrForbidden
	}
	return s.store.Users().List(ctx, filter, p.Offset, p.Limit)
}

func (s *service) Update(ctx context.Context, actor *models.UserClaims, id uint, input UpdateInput) (*models.User, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	u, err := s.store.Users().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.UserID != id && !canManage(actor, u) {
		return nil, apperrors.ErrForbidden
	}

	email, phone := "", ""
	if input.Email != nil && *input.Email != u.Email {
		email = *input.Email
	}
	if input.Phone != nil && *input.Phone != u.Phone {
		phone = *input.Phone
	}
	if err := s.ensureUnique(ctx, u.ID, email, phone); err != nil {
		return nil, err
	}

	if input.Name != nil {
		u.Name = *input.Name
	}
	if email != "" {
		u.Email = email
	}
	if phone != "" {
		u.Phone = phone
	}

	if err := s.store.Users().Update(ctx, u); err != nil {
		return nil, err
	}
	s.publish(ctx, u, events.ActionUpdated)
	return u, nil
}

func (s *service) SetStatus(ctx context.Context, actor *models.UserClaims, id uint, status string) (*models.User, error) {
	if status != models.UserStatusActive && status != models.UserStatusSuspended {
		return nil, ErrInvalidUserStatus
	}
	if actor.UserID == id {
		return nil, ErrSelfAction
	}

	u, err := s.store.Users().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canManage(actor, u) {
		return nil, apperrors.ErrForbidden
	}

	u.Status = status
	if status == models.UserStatusSuspended {
		// Suspension ends every open session.
		u.TokenVersion++
	}
	if err := s.store.Users().Update(ctx, u); err != nil {
		return nil, err
	}

	s.log.Info("user status changed", zap.Uint("user_id", id), zap.String("status", status), zap.Uint("actor", actor.UserID))
	s.publish(ctx, u, events.ActionUpdated)
	return u, nil
}

func (s *service) SetPermissions(ctx context.Context, actor *models.UserClaims, id uint, permissions []string) (*models.User, error) {
	if actor.Role != models.RoleAdminGeneral {
		return nil, apperrors.ErrForbidden
	}
	if err := checkGrantable(permissions); err != nil {
		return nil, err
	}

	u, err := s.store.Users().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.Role != models.RoleSousAdmin {
		return nil, ErrNotSousAdmin
	}

	u.Permissions = permissions
	u.TokenVersion++
	if err := s.store.Users().Update(ctx, u); err != nil {
		return nil, err
	}

	s.log.Info("sub-admin permissions updated", zap.Uint("user_id", id), zap.Strings("permissions", permissions))
	s.publish(ctx, u, events.ActionUpdated)
	return u, nil
}

func (s *service) AssignAgency(ctx context.Context, actor *models.UserClaims, agentID, agencyID uint) (*models.User, error) {
	if !actor.IsAdmin() || !actor.HasPermission(models.PermissionUserWrite) {
		return nil, apperrors.ErrForbidden
	}

	u, err := s.store.Users().GetByID(ctx, agentID)
	if err != nil {
		return nil, err
	}
	if u.Role != models.RoleAgent {
		return nil, ErrNotAgent
	}

	agency, err := s.store.Agencies().GetByID(ctx, agencyID)
	if err != nil {
		return nil, err
	}

	u.AgencyID = &agency.ID
	u.PartnerID = &agency.PartnerID
	u.TokenVersion++
	if err := s.store.Users().Update(ctx, u); err != nil {
		return nil, err
	}
	s.publish(ctx, u, events.ActionUpdated)
	return u, nil
}

func (s *service) Delete(ctx context.Context, actor *models.UserClaims, id uint) error {
	if actor.Role != models.RoleAdminGeneral {
		return apperrors.ErrForbidden
	}
	if actor.UserID == id {
		return ErrSelfAction
	}
	if err := s.store.Users().Delete(ctx, id); err != nil {
		return err
	}
	_ = s.publisher.Publish(ctx, events.Change{Entity: events.EntityUser, Action: events.ActionDeleted, ID: id})
	return nil
}

func (s *service) RegisterDevice(ctx context.Context, userID uint, token string) error {
	u, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		return err
	}
	u.FCMToken = token
	return s.store.Users().Update(ctx, u)
}

func (s *service) ensureUnique(ctx context.Context, selfID uint, email, phone string) error {
	if email != "" {
		existing, err := s.store.Users().GetByEmail(ctx, email)
		if err == nil && existing.ID != selfID {
			return ErrEmailTaken
		}
		if err != nil && !errors.Is(err, repositories.ErrUserNotFound) {
			return err
		}
	}
	if phone != "" {
		existing, err := s.store.Users().GetByPhone(ctx, phone)
		if err == nil && existing.ID != selfID {
			return ErrPhoneTaken
		}
		if err != nil && !errors.Is(err, repositories.ErrUserNotFound) {
			return err
		}
	}
	return nil
}

func (s *service) publish(ctx context.Context, u *models.User, action string) {
	_ = s.publisher.Publish(ctx, events.Change{
		Entity:    events.EntityUser,
		Action:    action,
		ID:        u.ID,
		PartnerID: u.PartnerID,
		UserID:    &u.ID,
	})
}

func checkGrantable(permissions []string) error {
	for _, p := range permissions {
		if !models.IsGrantable(p) {
			return fmt.Errorf("%w: %s", ErrNotGrantable, p)
		}
	}
	return nil
}

// canView: staff with user:read see everyone, partners see their network,
// everyone sees themselves.
func canView(actor *models.UserClaims, u *models.User) bool {
	if actor.UserID == u.ID {
		return true
	}
	if actor.IsAdmin() && actor.HasPermission(models.PermissionUserRead) {
		return true
	}
	return inPartnerNetwork(actor, u)
}

// canManage: admin_general manages everyone, sub-admins with user:write
// manage agents and partners, partners manage their own agents.
func canManage(actor *models.UserClaims, u *models.User) bool {
	switch actor.Role {
	case models.RoleAdminGeneral:
		return true
	case models.RoleSousAdmin:
		return actor.HasPermission(models.PermissionUserWrite) &&
			(u.Role == models.RoleAgent || u.Role == models.RolePartner)
	case models.RolePartner:
		return u.Role == models.RoleAgent && inPartnerNetwork(actor, u)
	}
	return false
}

func inPartnerNetwork(actor *models.UserClaims, u *models.User) bool {
	return actor.Role == models.RolePartner &&
		actor.PartnerID != nil && u.PartnerID != nil &&
		*actor.PartnerID == *u.PartnerID
}
