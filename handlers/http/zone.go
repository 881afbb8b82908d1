package httpHandler

import (
	"net/http"

	"agro-collector/usecases"

	"github.com/gin-gonic/gin"
)

type ZoneHandler struct {
	useCase *usecases.ZoneUseCase
}

func NewZoneHandler(useCase *usecases.ZoneUseCase) *ZoneHandler {
	return &ZoneHandler{useCase: useCase}
}

// GetCompanyZones handles GET /api/v1/companies/:company_id/zones
func (h *ZoneHandler) GetCompanyZones(c *gin.Context) {
	zones, err := h.useCase.ListForCompany(c.Request.Context(), c.Param("company_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve zones",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  zones,
		"count": len(zones),
	})
}
