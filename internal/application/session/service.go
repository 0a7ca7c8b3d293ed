package session

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jhoicas/umbrella-client/internal/application/dto"
	"github.com/jhoicas/umbrella-client/internal/application/ports"
	"github.com/jhoicas/umbrella-client/internal/domain"
	"github.com/jhoicas/umbrella-client/internal/domain/entity"
	"github.com/jhoicas/umbrella-client/internal/domain/repository"
	"github.com/jhoicas/umbrella-client/pkg/jwt"
	"github.com/jhoicas/umbrella-client/pkg/logger"
)

// Mensajes de validación del formulario de login.
const (
	MsgInvalidEmail  = "Por favor, insira um email válido."
	MsgEmptyPassword = "O campo de senha não pode estar vazio."
)

// Parámetros de navegación enviados a la pantalla de entrada.
const (
	ParamProfile = "userProfile"
	ParamName    = "userName"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Guard rearma el cierre de sesión por expiración del transporte.
type Guard interface {
	ResumeSession()
}

// Service login, restauración y cierre de sesión explícito.
type Service struct {
	api   ports.Requester
	creds repository.CredentialStore
	nav   ports.Navigator
	guard Guard
	log   *logger.Logger
	now   func() time.Time
}

// NewService construye el servicio. guard puede ser nil.
func NewService(api ports.Requester, creds repository.CredentialStore, nav ports.Navigator, guard Guard, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{api: api, creds: creds, nav: nav, guard: guard, log: log.Named("session"), now: time.Now}
}

// LandingRoute pantalla de entrada por rol; un rol desconocido cae en la lista de usuarios.
func LandingRoute(role entity.Role) string {
	switch role {
	case entity.RoleBranch:
		return ports.RouteListProducts
	case entity.RoleDriver:
		return ports.RouteMovementList
	default:
		return ports.RouteUserList
	}
}

// Login valida el formulario, autentica contra POST /login, persiste la sesión y navega a la
// pantalla del rol. Los errores del backend (BAD_CREDENTIALS...) se devuelven sin cambios.
func (s *Service) Login(ctx context.Context, email, password string) (*entity.Session, error) {
	email = strings.TrimSpace(email)
	if !emailRe.MatchString(email) {
		return nil, domain.NewValidationError("email", MsgInvalidEmail)
	}
	if password == "" {
		return nil, domain.NewValidationError("password", MsgEmptyPassword)
	}

	var resp dto.LoginResponse
	if err := s.api.Post(ctx, "/login", dto.LoginRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}
	if resp.ID == nil || *resp.ID == 0 || resp.Token == "" || resp.Profile == "" {
		return nil, domain.ErrLoginContract
	}

	role, ok := entity.ParseRole(resp.Profile)
	if !ok {
		s.log.Warn().Str("profile", resp.Profile).Msg("perfil desconocido")
	}
	sess := &entity.Session{
		Token:       resp.Token,
		UserID:      int64(*resp.ID),
		Role:        role,
		DisplayName: displayName(resp.Name, int64(*resp.ID)),
		Email:       email,
	}
	if err := s.creds.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("guardar sesión: %w", err)
	}
	if s.guard != nil {
		s.guard.ResumeSession()
	}
	s.log.Info().Int64("user_id", sess.UserID).Str("role", string(sess.Role)).Msg("login")

	if err := s.enter(ctx, sess); err != nil {
		return sess, err
	}
	return sess, nil
}

// Restore retoma la sesión guardada al abrir la aplicación. Sin sesión válida, o con el token
// ya vencido, navega a Login y devuelve nil sin error.
func (s *Service) Restore(ctx context.Context) (*entity.Session, error) {
	sess, err := s.creds.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("leer sesión: %w", err)
	}
	if !sess.Authenticated() {
		return nil, s.nav.Reset(ctx, ports.RouteLogin, nil)
	}
	if exp, ok := jwt.PeekExpiry(sess.Token); ok && !exp.After(s.now()) {
		s.log.Info().Time("exp", exp).Msg("token guardado vencido")
		if err := s.creds.Clear(ctx); err != nil {
			return nil, fmt.Errorf("borrar sesión: %w", err)
		}
		return nil, s.nav.Reset(ctx, ports.RouteLogin, nil)
	}
	if s.guard != nil {
		s.guard.ResumeSession()
	}
	return sess, s.enter(ctx, sess)
}

// Current sesión persistida, nil si no hay usuario autenticado.
func (s *Service) Current(ctx context.Context) (*entity.Session, error) {
	sess, err := s.creds.Load(ctx)
	if err != nil {
		return nil, err
	}
	if !sess.Authenticated() {
		return nil, nil
	}
	return sess, nil
}

// Logout cierre de sesión explícito: borra credenciales y vuelve a Login.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.creds.Clear(ctx); err != nil {
		return fmt.Errorf("borrar sesión: %w", err)
	}
	s.log.Info().Msg("logout")
	return s.nav.Reset(ctx, ports.RouteLogin, nil)
}

func (s *Service) enter(ctx context.Context, sess *entity.Session) error {
	return s.nav.Reset(ctx, LandingRoute(sess.Role), map[string]string{
		ParamProfile: string(sess.Role),
		ParamName:    sess.DisplayName,
	})
}

func displayName(name string, id int64) string {
	if n := strings.TrimSpace(name); n != "" {
		return n
	}
	return "Usuário " + strconv.FormatInt(id, 10)
}
