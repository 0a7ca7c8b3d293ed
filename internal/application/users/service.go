package users

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/jhoicas/umbrella-client/internal/application/dto"
	"github.com/jhoicas/umbrella-client/internal/application/ports"
	"github.com/jhoicas/umbrella-client/internal/domain"
	"github.com/jhoicas/umbrella-client/internal/domain/entity"
	"github.com/jhoicas/umbrella-client/pkg/apierror"
	"github.com/jhoicas/umbrella-client/pkg/document"
)

// Mensajes del formulario de registro.
const (
	MsgNameRequired     = "Preencha o nome"
	MsgEmailRequired    = "Preencha o email"
	MsgInvalidCPF       = "CPF inválido"
	MsgAddressRequired  = "Preencha todos os campos de endereço"
	MsgInvalidZipCode   = "CEP inválido"
	MsgShortPassword    = "A senha deve ter ao menos 6 caracteres"
	MsgPasswordMismatch = "As senhas não coincidem"
	MsgInvalidProfile   = "Perfil inválido"
	MsgEmailTaken       = "Este email já está cadastrado."
	MsgRegisterFailed   = "Falha ao cadastrar usuário."
)

var (
	cpfRe     = regexp.MustCompile(`^\d{3}\.\d{3}\.\d{3}-\d{2}$`)
	zipCodeRe = regexp.MustCompile(`^\d{5}-?\d{3}$`)
	nonDigit  = regexp.MustCompile(`\D`)
)

// RegisterInput formulario de alta de un motorista o una filial.
type RegisterInput struct {
	Name            string
	Document        string
	Email           string
	URLCover        string
	Street          string
	Number          string
	Complement      string
	Neighborhood    string
	City            string
	State           string
	ZipCode         string
	Password        string
	ConfirmPassword string
	Profile         entity.Role
}

// Service administración de usuarios (pantallas del ADMIN).
type Service struct {
	api ports.Requester
}

// NewService construye el servicio.
func NewService(api ports.Requester) *Service {
	return &Service{api: api}
}

// List GET /user.
func (s *Service) List(ctx context.Context) ([]*entity.User, error) {
	var resp []dto.UserResponse
	if err := s.api.Get(ctx, "/user", &resp); err != nil {
		return nil, err
	}
	out := make([]*entity.User, 0, len(resp))
	for i := range resp {
		out = append(out, resp[i].Entity())
	}
	return out, nil
}

// Get GET /user/{id}.
func (s *Service) Get(ctx context.Context, id int64) (*entity.User, error) {
	var resp dto.UserResponse
	if err := s.api.Get(ctx, fmt.Sprintf("/user/%d", id), &resp); err != nil {
		return nil, err
	}
	return resp.Entity(), nil
}

// Register valida el formulario y da de alta el usuario con POST /user.
// Un rechazo del backend que menciona el email se traduce a ErrEmailAlreadyExists.
func (s *Service) Register(ctx context.Context, in RegisterInput) error {
	if err := validate(in); err != nil {
		return err
	}
	req := dto.RegisterUserRequest{
		Name:         strings.TrimSpace(in.Name),
		Document:     in.Document,
		Email:        strings.TrimSpace(in.Email),
		URLCover:     in.URLCover,
		Street:       in.Street,
		City:         in.City,
		Neighborhood: in.Neighborhood,
		Number:       in.Number,
		Complement:   in.Complement,
		State:        in.State,
		ZipCode:      in.ZipCode,
		Password:     in.Password,
		Profile:      string(in.Profile),
	}
	if err := s.api.Post(ctx, "/user", req, nil); err != nil {
		if errors.Is(err, domain.ErrSessionEnded) {
			return err
		}
		var apiErr *apierror.Error
		if errors.As(err, &apiErr) && apiErr.Status != 0 {
			msg := apierror.Extract(err)
			if apiErr.Status == http.StatusConflict || strings.Contains(strings.ToLower(msg), "email") {
				return fmt.Errorf("%s: %w", MsgEmailTaken, domain.ErrEmailAlreadyExists)
			}
		}
		return err
	}
	return nil
}

// ToggleStatus PATCH /user/{id}/status: activa o desactiva el usuario.
func (s *Service) ToggleStatus(ctx context.Context, id int64) error {
	return s.api.Patch(ctx, fmt.Sprintf("/user/%d/status", id), nil, nil)
}

// Delete DELETE /user/{id}.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.api.Delete(ctx, fmt.Sprintf("/user/%d", id), nil)
}

// Partition separa motoristas y filiales; los administradores no se listan.
func Partition(list []*entity.User) (drivers, branches []*entity.User) {
	for _, u := range list {
		switch u.Profile {
		case entity.RoleDriver:
			drivers = append(drivers, u)
		case entity.RoleBranch:
			branches = append(branches, u)
		}
	}
	return drivers, branches
}

// FormatCPF da formato 000.000.000-00 a los dígitos escritos hasta el momento.
func FormatCPF(value string) string {
	d := nonDigit.ReplaceAllString(value, "")
	if len(d) > 11 {
		d = d[:11]
	}
	var b strings.Builder
	for i, r := range d {
		switch i {
		case 3, 6:
			b.WriteByte('.')
		case 9:
			b.WriteByte('-')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func validate(in RegisterInput) error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return domain.NewValidationError("name", MsgNameRequired)
	case strings.TrimSpace(in.Email) == "":
		return domain.NewValidationError("email", MsgEmailRequired)
	case in.Profile != entity.RoleDriver && in.Profile != entity.RoleBranch:
		return domain.NewValidationError("profile", MsgInvalidProfile)
	case in.Profile == entity.RoleDriver && (!cpfRe.MatchString(in.Document) || document.ValidateCPF(in.Document) != nil):
		return domain.NewValidationError("document", MsgInvalidCPF)
	case in.Street == "" || in.City == "" || in.Neighborhood == "" || in.Number == "" || in.State == "" || in.ZipCode == "":
		return domain.NewValidationError("address", MsgAddressRequired)
	case !zipCodeRe.MatchString(in.ZipCode):
		return domain.NewValidationError("zip_code", MsgInvalidZipCode)
	case len(in.Password) < 6:
		return domain.NewValidationError("password", MsgShortPassword)
	case in.Password != in.ConfirmPassword:
		return domain.NewValidationError("confirm_password", MsgPasswordMismatch)
	}
	return nil
}
