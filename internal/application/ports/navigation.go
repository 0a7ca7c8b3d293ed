package ports

import "context"

// Rutas de entrada de la aplicación.
const (
	RouteLogin           = "Login"
	RouteUserList        = "UserListScreen"
	RouteListProducts    = "ListProducts"
	RouteMovementList    = "MovementList"
	RouteCurrentMovement = "CurrentMovement"
	RouteBranchMovements = "BranchMovementList"
)

// Navigator comando de navegación para código que no es pantalla.
// Reset descarta todo el historial y deja route como única entrada.
type Navigator interface {
	Reset(ctx context.Context, route string, params map[string]string) error
}

// Notifier muestra un aviso al usuario (alerta, toast, stderr en el CLI).
type Notifier interface {
	Notify(ctx context.Context, title, message string)
}
