package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/umbrella-client/internal/application/dispatch"
	"github.com/jhoicas/umbrella-client/internal/application/dto"
	"github.com/jhoicas/umbrella-client/internal/domain/entity"
)

// CatalogHandler productos y filiales.
type CatalogHandler struct {
	uc *dispatch.CatalogUseCase
}

// NewCatalogHandler construye el handler.
func NewCatalogHandler(uc *dispatch.CatalogUseCase) *CatalogHandler {
	return &CatalogHandler{uc: uc}
}

// ListProducts GET /products.
func (h *CatalogHandler) ListProducts(c *fiber.Ctx) error {
	list, err := h.uc.ListProducts(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(productResponses(list))
}

// MyProducts GET /products/me (BRANCH).
func (h *CatalogHandler) MyProducts(c *fiber.Ctx) error {
	list, err := h.uc.ProductsOfUser(c.UserContext(), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(productResponses(list))
}

// ListBranches GET /branches.
func (h *CatalogHandler) ListBranches(c *fiber.Ctx) error {
	list, err := h.uc.ListBranches(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	out := make([]*dto.BranchResponse, 0, len(list))
	for _, b := range list {
		out = append(out, dto.NewBranchResponse(b))
	}
	return c.JSON(out)
}

// MyBranch GET /branches/me (BRANCH).
func (h *CatalogHandler) MyBranch(c *fiber.Ctx) error {
	b, err := h.uc.BranchOfUser(c.UserContext(), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewBranchResponse(b))
}

func productResponses(list []*entity.Product) []*dto.ProductResponse {
	out := make([]*dto.ProductResponse, 0, len(list))
	for _, p := range list {
		out = append(out, dto.NewProductResponse(p))
	}
	return out
}
