package auth

import (
	"context"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/umbrella-client/internal/application/dto"
	"github.com/jhoicas/umbrella-client/internal/domain"
	"github.com/jhoicas/umbrella-client/internal/domain/entity"
	"github.com/jhoicas/umbrella-client/internal/domain/repository"
	"github.com/jhoicas/umbrella-client/pkg/jwt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase casos de uso de autenticación y administración de usuarios del sandbox.
type AuthUseCase struct {
	userRepo   repository.UserRepository
	branchRepo repository.BranchRepository
	jwtCfg     JWTConfig
	now        func() time.Time
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, branchRepo repository.BranchRepository, jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{userRepo: userRepo, branchRepo: branchRepo, jwtCfg: jwtCfg, now: time.Now}
}

// Login verifica email/password y genera el JWT. Credenciales inválidas -> ErrUnauthorized;
// usuario desactivado -> ErrForbidden.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := uc.userRepo.GetByEmail(ctx, strings.TrimSpace(in.Email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	if !user.Status {
		return nil, domain.ErrForbidden
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, string(user.Profile), uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	id := dto.ID(user.ID)
	return &dto.LoginResponse{ID: &id, Token: token, Profile: string(user.Profile), Name: user.Name}, nil
}

// RegisterUser crea un usuario con password bcrypt. Un usuario BRANCH recibe su filial con la
// dirección del formulario. ErrEmailAlreadyExists si el email ya existe.
func (uc *AuthUseCase) RegisterUser(ctx context.Context, in dto.RegisterUserRequest) (*dto.UserResponse, error) {
	email := strings.TrimSpace(in.Email)
	if strings.TrimSpace(in.Name) == "" || email == "" || in.Password == "" {
		return nil, domain.NewValidationError("", "Nome, email e senha são obrigatórios.")
	}
	role, ok := entity.ParseRole(in.Profile)
	if !ok {
		return nil, domain.NewValidationError("profile", "Perfil inválido")
	}
	existing, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	user := &entity.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		Document:     in.Document,
		Profile:      role,
		Status:       true,
		PasswordHash: string(hash),
		URLCover:     in.URLCover,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	if role == entity.RoleBranch {
		branch := &entity.Branch{
			UserID:       user.ID,
			Name:         user.Name,
			Document:     in.Document,
			Street:       in.Street,
			Number:       in.Number,
			Complement:   in.Complement,
			Neighborhood: in.Neighborhood,
			City:         in.City,
			State:        in.State,
			ZipCode:      in.ZipCode,
		}
		if err := uc.branchRepo.Create(ctx, branch); err != nil {
			return nil, err
		}
	}
	return dto.NewUserResponse(user), nil
}

// ListUsers todos los usuarios.
func (uc *AuthUseCase) ListUsers(ctx context.Context) ([]*entity.User, error) {
	return uc.userRepo.List(ctx)
}

// GetUser usuario por id; ErrNotFound si no existe.
func (uc *AuthUseCase) GetUser(ctx context.Context, id int64) (*entity.User, error) {
	u, err := uc.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

// ToggleStatus activa o desactiva el usuario.
func (uc *AuthUseCase) ToggleStatus(ctx context.Context, id int64) (*entity.User, error) {
	u, err := uc.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	u.Status = !u.Status
	u.UpdatedAt = uc.now()
	if err := uc.userRepo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// DeleteUser elimina el usuario.
func (uc *AuthUseCase) DeleteUser(ctx context.Context, id int64) error {
	if _, err := uc.GetUser(ctx, id); err != nil {
		return err
	}
	return uc.userRepo.Delete(ctx, id)
}
