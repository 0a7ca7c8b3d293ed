// Package seed carga los datos de demostración del sandbox: un administrador, dos filiales,
// un motorista y productos con stock.
package seed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/umbrella-client/internal/application/auth"
	"github.com/jhoicas/umbrella-client/internal/application/dto"
	"github.com/jhoicas/umbrella-client/internal/domain/entity"
	"github.com/jhoicas/umbrella-client/internal/domain/repository"
	"github.com/jhoicas/umbrella-client/pkg/logger"
)

// Account credenciales de una cuenta sembrada.
type Account struct {
	Name     string
	Email    string
	Password string
	Document string
	Profile  entity.Role
	City     string
	ZipCode  string
}

// Accounts cuentas de demostración.
var Accounts = []Account{
	{Name: "Administrador", Email: "admin@umbrella.com", Password: "admin123", Profile: entity.RoleAdmin},
	{Name: "Filial Centro", Email: "centro@umbrella.com", Password: "filial123", Document: "12.345.678/0001-90", Profile: entity.RoleBranch, City: "São Paulo", ZipCode: "01001-000"},
	{Name: "Filial Norte", Email: "norte@umbrella.com", Password: "filial123", Document: "98.765.432/0001-10", Profile: entity.RoleBranch, City: "Manaus", ZipCode: "69005-000"},
	{Name: "João Motorista", Email: "motorista@umbrella.com", Password: "motorista123", Document: "123.456.789-09", Profile: entity.RoleDriver},
}

// DefaultProducts stock inicial por email de la filial.
var DefaultProducts = []ProductRow{
	{BranchEmail: "centro@umbrella.com", Name: "Guarda-chuva preto", Description: "Guarda-chuva automático", Amount: 50},
	{BranchEmail: "centro@umbrella.com", Name: "Capa de chuva", Description: "Tamanho único", Amount: 20},
	{BranchEmail: "norte@umbrella.com", Name: "Guarda-chuva preto", Description: "Guarda-chuva automático", Amount: 5},
}

// Deps repositorios y caso de uso de auth (hash de passwords y creación de filiales).
type Deps struct {
	Auth     *auth.AuthUseCase
	Users    repository.UserRepository
	Branches repository.BranchRepository
	Products repository.ProductRepository
	Logger   *logger.Logger
}

// Result ids de lo sembrado, por email.
type Result struct {
	Users    map[string]int64
	Branches map[string]int64
	Products int
}

// Run crea las cuentas y productos que falten. Es idempotente: una cuenta cuyo email ya
// existe se reutiliza y un producto ya presente en la filial no se duplica.
func Run(ctx context.Context, deps Deps, products []ProductRow) (*Result, error) {
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}
	log = log.Named("seed")

	res := &Result{Users: map[string]int64{}, Branches: map[string]int64{}}
	for _, acc := range Accounts {
		id, err := ensureAccount(ctx, deps, acc)
		if err != nil {
			return nil, fmt.Errorf("sembrar %s: %w", acc.Email, err)
		}
		res.Users[acc.Email] = id
		if acc.Profile != entity.RoleBranch {
			continue
		}
		b, err := deps.Branches.GetByUserID(ctx, id)
		if err != nil {
			return nil, err
		}
		if b == nil {
			return nil, fmt.Errorf("sembrar %s: filial no creada", acc.Email)
		}
		res.Branches[acc.Email] = b.ID
	}

	now := time.Now()
	for _, row := range products {
		branchID, ok := res.Branches[strings.ToLower(row.BranchEmail)]
		if !ok {
			return nil, fmt.Errorf("producto %q: filial %q no sembrada", row.Name, row.BranchEmail)
		}
		existing, err := deps.Products.FindByBranchAndName(ctx, branchID, row.Name)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			continue
		}
		p := &entity.Product{
			BranchID:    branchID,
			Name:        row.Name,
			Description: row.Description,
			Amount:      row.Amount,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := deps.Products.Create(ctx, p); err != nil {
			return nil, fmt.Errorf("producto %q: %w", row.Name, err)
		}
		res.Products++
	}

	log.Info().Int("users", len(res.Users)).Int("products", res.Products).Msg("datos de demostración cargados")
	return res, nil
}

func ensureAccount(ctx context.Context, deps Deps, acc Account) (int64, error) {
	u, err := deps.Users.GetByEmail(ctx, acc.Email)
	if err != nil {
		return 0, err
	}
	if u != nil {
		return u.ID, nil
	}
	created, err := deps.Auth.RegisterUser(ctx, dto.RegisterUserRequest{
		Name:     acc.Name,
		Document: acc.Document,
		Email:    acc.Email,
		City:     acc.City,
		ZipCode:  acc.ZipCode,
		Password: acc.Password,
		Profile:  string(acc.Profile),
	})
	if err != nil {
		return 0, err
	}
	return int64(created.ID), nil
}
