package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/umbrella-client/internal/application/dto"
	"github.com/jhoicas/umbrella-client/internal/domain/entity"
	"github.com/jhoicas/umbrella-client/pkg/jwt"
)

// Locals keys para UserID y rol en Fiber.
const (
	LocalUserID = "user_id"
	LocalRole   = "role"
)

// AuthMiddleware valida el Bearer Token JWT y extrae UserID y rol a c.Locals.
// Un token vencido responde 401 con error TOKEN_EXPIRED; es la señal que el cliente usa para
// cerrar la sesión. Cualquier otro fallo del token responde INVALID_TOKEN.
func AuthMiddleware(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: dto.CodeMissingToken, Message: "Token não informado"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: dto.CodeInvalidToken, Message: "Formato: Bearer <token>"})
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: dto.CodeMissingToken, Message: "Token não informado"})
		}
		claims, err := jwt.Parse(jwtSecret, tokenString)
		if err != nil {
			if jwt.IsExpired(err) {
				return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: dto.CodeTokenExpired, Message: "Token expirado"})
			}
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: dto.CodeInvalidToken, Message: "Token inválido"})
		}
		if claims.UserID == 0 {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: dto.CodeInvalidToken, Message: "Token sem usuário"})
		}
		role, _ := entity.ParseRole(claims.Profile)
		c.Locals(LocalUserID, claims.UserID)
		c.Locals(LocalRole, role)
		return c.Next()
	}
}

// RequireRole permite el acceso solo a los roles indicados. Debe usarse después de AuthMiddleware.
func RequireRole(roles ...entity.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := GetRole(c)
		if role == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: dto.CodeInvalidToken, Message: "Token sem perfil"})
		}
		for _, r := range roles {
			if r == role {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Error: dto.CodeForbidden, Message: "Acesso negado"})
	}
}

// GetUserID devuelve el UserID del contexto (después del middleware de auth).
func GetUserID(c *fiber.Ctx) int64 {
	id, _ := c.Locals(LocalUserID).(int64)
	return id
}

// GetRole devuelve el rol del contexto (después del middleware de auth).
func GetRole(c *fiber.Ctx) entity.Role {
	role, _ := c.Locals(LocalRole).(entity.Role)
	return role
}
