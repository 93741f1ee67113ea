package service

import (
	"context"
	"strings"

	"inkwell/internal/access"
	"inkwell/internal/models"
	"inkwell/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
)

type UserService struct {
	userRepo repository.UserRepository
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type UpdateProfileInput struct {
	Principal   access.Principal
	Bio         string
	Avatar      string
	SocialLinks datatypes.JSON
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

const (
	minPasswordLen = 8
	maxUsernameLen = 30
	maxBioLen      = 500
)

// Register creates a reader account. Role escalation happens separately
// through SetRole, never at registration.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if username == "" {
		return nil, models.NewValidationError("Username is required")
	}
	if len(username) > maxUsernameLen {
		return nil, models.NewValidationError("Username too long (max 30 characters)")
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, models.NewValidationError("A valid email is required")
	}
	if len(in.Password) < minPasswordLen {
		return nil, models.NewValidationError("Password must be at least 8 characters")
	}

	if existing, err := s.userRepo.GetByEmail(ctx, email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, models.NewConflictError("Email already registered")
	}
	if existing, err := s.userRepo.GetByUsername(ctx, username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, models.NewConflictError("Username already taken")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: string(hashed),
		Role:     models.RoleReader,
		IsActive: true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate verifies credentials. Missing user and wrong password both
// return the same error so the response never reveals which one failed.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, models.NewAuthRequiredError("Invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, models.NewAuthRequiredError("Invalid email or password")
	}
	return user, nil
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *UserService) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User")
	}
	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.userRepo.ListActive(ctx, limit, offset)
}

func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	if in.Principal.IsAnonymous {
		return nil, models.NewAuthRequiredError("Authentication required")
	}

	user, err := s.userRepo.GetByID(ctx, in.Principal.ID)
	if err != nil {
		return nil, err
	}

	if in.Bio != "" {
		if len(in.Bio) > maxBioLen {
			return nil, models.NewValidationError("Bio too long (max 500 characters)")
		}
		user.Bio = in.Bio
	}
	if in.Avatar != "" {
		user.Avatar = in.Avatar
	}
	if in.SocialLinks != nil {
		user.SocialLinks = in.SocialLinks
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// SetRole changes a user's role. Only admins may call it; the legacy staff
// and superuser flags are never writable through the API.
func (s *UserService) SetRole(ctx context.Context, principal access.Principal, targetID uint, role models.Role) (*models.User, error) {
	if principal.IsAnonymous {
		return nil, models.NewAuthRequiredError("Authentication required")
	}
	if !access.IsAdmin(principal) {
		return nil, models.NewPermissionDeniedError("Admin access required")
	}
	if !models.ValidRole(role) {
		return nil, models.NewValidationError("Invalid role")
	}

	if err := s.userRepo.SetRole(ctx, targetID, role); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, targetID)
}

// SetActive enables or disables an account. Admin only; admins cannot
// deactivate themselves, which keeps at least one working admin around.
func (s *UserService) SetActive(ctx context.Context, principal access.Principal, targetID uint, active bool) (*models.User, error) {
	if principal.IsAnonymous {
		return nil, models.NewAuthRequiredError("Authentication required")
	}
	if !access.IsAdmin(principal) {
		return nil, models.NewPermissionDeniedError("Admin access required")
	}
	if targetID == principal.ID && !active {
		return nil, models.NewValidationError("You cannot deactivate your own account")
	}

	if err := s.userRepo.SetActive(ctx, targetID, active); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, targetID)
}
