package identity

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lastmile/backend/internal/domain/identity"
	"github.com/lastmile/backend/internal/domain/order"
	"github.com/lastmile/backend/internal/domain/shared"
)

// UserService handles account management operations
type UserService struct {
	userRepo identity.UserRepository
	logger   *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(userRepo identity.UserRepository, logger *zap.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		logger:   logger,
	}
}

// Create creates a new user account
func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*UserInfo, error) {
	s.logger.Info("Creating new user",
		zap.String("username", input.Username),
		zap.String("role", string(input.Role)))

	exists, err := s.userRepo.ExistsByUsername(ctx, input.Username)
	if err != nil {
		s.logger.Error("Failed to check username existence", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to check username availability")
	}
	if exists {
		return nil, shared.NewDomainError("USERNAME_EXISTS", "Username already exists")
	}

	var user *identity.User
	if input.Active {
		user, err = identity.NewActiveUser(input.Username, input.Password, input.Role, input.OfficeID)
	} else {
		user, err = identity.NewUser(input.Username, input.Password, input.Role, input.OfficeID)
	}
	if err != nil {
		return nil, err
	}

	if input.Email != "" {
		if err := user.SetEmail(input.Email); err != nil {
			return nil, err
		}
	}
	if input.Phone != "" {
		if err := user.SetPhone(input.Phone); err != nil {
			return nil, err
		}
	}
	if input.DisplayName != "" {
		if err := user.SetDisplayName(input.DisplayName); err != nil {
			return nil, err
		}
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		s.logger.Error("Failed to create user", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to create user")
	}

	s.logger.Info("User created successfully",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username))

	info := toUserInfo(user)
	return &info, nil
}

// GetByID retrieves a user by ID
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*UserInfo, error) {
	user, err := s.findUser(ctx, id)
	if err != nil {
		return nil, err
	}

	info := toUserInfo(user)
	return &info, nil
}

// Update updates a user's profile fields
func (s *UserService) Update(ctx context.Context, input UpdateUserInput) (*UserInfo, error) {
	user, err := s.findUser(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	if input.Email != nil {
		if err := user.SetEmail(*input.Email); err != nil {
			return nil, err
		}
	}
	if input.Phone != nil {
		if err := user.SetPhone(*input.Phone); err != nil {
			return nil, err
		}
	}
	if input.DisplayName != nil {
		if err := user.SetDisplayName(*input.DisplayName); err != nil {
			return nil, err
		}
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error("Failed to update user", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to update user")
	}

	s.logger.Info("User updated", zap.String("user_id", input.UserID.String()))

	info := toUserInfo(user)
	return &info, nil
}

// SetRole changes a user's role and office binding
func (s *UserService) SetRole(ctx context.Context, input SetRoleInput) (*UserInfo, error) {
	user, err := s.findUser(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	if err := user.SetRole(input.Role, input.OfficeID); err != nil {
		return nil, err
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error("Failed to update user role", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to update user")
	}

	s.logger.Info("User role changed",
		zap.String("user_id", input.UserID.String()),
		zap.String("role", string(input.Role)))

	info := toUserInfo(user)
	return &info, nil
}

// Activate activates a user account
func (s *UserService) Activate(ctx context.Context, id uuid.UUID) (*UserInfo, error) {
	return s.mutate(ctx, id, func(u *identity.User) error { return u.Activate() })
}

// Deactivate deactivates a user account
func (s *UserService) Deactivate(ctx context.Context, id uuid.UUID) (*UserInfo, error) {
	return s.mutate(ctx, id, func(u *identity.User) error { return u.Deactivate() })
}

// Unlock unlocks a locked user account
func (s *UserService) Unlock(ctx context.Context, id uuid.UUID) (*UserInfo, error) {
	return s.mutate(ctx, id, func(u *identity.User) error { return u.Unlock() })
}

// ResetPassword resets a user's password (admin action).
// The user must change the password on next login.
func (s *UserService) ResetPassword(ctx context.Context, input ResetPasswordInput) error {
	user, err := s.findUser(ctx, input.UserID)
	if err != nil {
		return err
	}

	if err := user.SetPassword(input.NewPassword); err != nil {
		return err
	}
	user.ForcePasswordChange()

	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error("Failed to reset password", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to reset password")
	}

	s.logger.Info("User password reset", zap.String("user_id", input.UserID.String()))

	return nil
}

// ListByRole lists accounts holding a role
func (s *UserService) ListByRole(ctx context.Context, role order.ActorRole, filter shared.Filter) ([]UserInfo, error) {
	if !role.IsValid() {
		return nil, shared.NewDomainError("INVALID_ROLE", "Unknown actor role")
	}

	users, err := s.userRepo.FindByRole(ctx, role, filter)
	if err != nil {
		s.logger.Error("Failed to list users by role", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list users")
	}

	return toUserInfos(users), nil
}

// ListByOffice lists accounts bound to an office
func (s *UserService) ListByOffice(ctx context.Context, officeID uuid.UUID, filter shared.Filter) ([]UserInfo, error) {
	users, err := s.userRepo.FindByOffice(ctx, officeID, filter)
	if err != nil {
		s.logger.Error("Failed to list users by office", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list users")
	}

	return toUserInfos(users), nil
}

// Count returns the total number of users
func (s *UserService) Count(ctx context.Context) (int64, error) {
	return s.userRepo.Count(ctx, shared.Filter{})
}

func (s *UserService) findUser(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("USER_NOT_FOUND", "User not found")
		}
		s.logger.Error("Failed to find user", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find user")
	}
	return user, nil
}

func (s *UserService) mutate(ctx context.Context, id uuid.UUID, fn func(*identity.User) error) (*UserInfo, error) {
	user, err := s.findUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := fn(user); err != nil {
		return nil, err
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error("Failed to update user", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to update user")
	}

	info := toUserInfo(user)
	return &info, nil
}

func toUserInfos(users []identity.User) []UserInfo {
	infos := make([]UserInfo, len(users))
	for i := range users {
		infos[i] = toUserInfo(&users[i])
	}
	return infos
}
