package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/umbrella-client/internal/application/auth"
	"github.com/jhoicas/umbrella-client/internal/application/dispatch"
	"github.com/jhoicas/umbrella-client/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC     *auth.AuthUseCase
	DispatchUC *dispatch.DispatchUseCase
	CatalogUC  *dispatch.CatalogUseCase
	JWTSecret  string
	UploadDir  string
}

// Router registra las rutas del sandbox con los paths que consume el cliente.
// El AuthMiddleware va por ruta: un path desconocido responde 404, no 401.
func Router(app *fiber.App, deps RouterDeps) {
	authHandler := NewAuthHandler(deps.AuthUC)
	catalogHandler := NewCatalogHandler(deps.CatalogUC)
	movementHandler := NewMovementHandler(deps.DispatchUC, deps.UploadDir)

	authed := AuthMiddleware(deps.JWTSecret)
	admin := RequireRole(entity.RoleAdmin)
	branch := RequireRole(entity.RoleBranch)
	driver := RequireRole(entity.RoleDriver)

	// Público
	app.Post("/login", authHandler.Login)

	// Usuarios (ADMIN)
	app.Get("/user", authed, admin, authHandler.List)
	app.Post("/user", authed, admin, authHandler.Register)
	app.Get("/user/:id", authed, admin, authHandler.GetByID)
	app.Patch("/user/:id/status", authed, admin, authHandler.ToggleStatus)
	app.Delete("/user/:id", authed, admin, authHandler.Delete)

	// Catálogo
	app.Get("/products", authed, catalogHandler.ListProducts)
	app.Get("/products/me", authed, branch, catalogHandler.MyProducts)
	app.Get("/branches", authed, catalogHandler.ListBranches)
	app.Get("/branches/me", authed, branch, catalogHandler.MyBranch)

	// Movimientos
	app.Post("/movements", authed, branch, movementHandler.Create)
	app.Get("/movements", authed, driver, movementHandler.ListForDriver)
	app.Get("/movements/current", authed, driver, movementHandler.Current)
	app.Get("/movements/branches/me", authed, branch, movementHandler.ListForBranch)
	app.Patch("/movements/:id/start", authed, driver, movementHandler.Start)
	app.Patch("/movements/:id/end", authed, driver, movementHandler.End)
}
