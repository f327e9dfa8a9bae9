package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"kitchenware-market.backend/internal/domain/entities"
	"kitchenware-market.backend/internal/interfaces/http/response"
	"kitchenware-market.backend/pkg/utils"
)

type SellerService interface {
	ListVerifiedSellers(ctx context.Context, page int) ([]*entities.UserProfile, utils.PaginationMeta, error)
	GetVerifiedSeller(ctx context.Context, username string) (*entities.SellerDetail, error)
}

// SellerHandler lists verified sellers
type SellerHandler struct {
	sellerService SellerService
}

func NewSellerHandler(sellerService SellerService) *SellerHandler {
	return &SellerHandler{sellerService: sellerService}
}

// ListSellers GET /api/v1/sellers?page=
func (h *SellerHandler) ListSellers(c *gin.Context) {
	profiles, meta, err := h.sellerService.ListVerifiedSellers(c.Request.Context(), pageParam(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, profiles, meta)
}

// GetSeller GET /api/v1/sellers/:username
func (h *SellerHandler) GetSeller(c *gin.Context) {
	detail, err := h.sellerService.GetVerifiedSeller(c.Request.Context(), c.Param("username"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, detail)
}
