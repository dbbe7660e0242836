package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/harvestlink/checkoutapi/internal/domain"
	"github.com/harvestlink/checkoutapi/internal/service"
)

// HandleGetUserLocations lists the user's saved shipping locations
func HandleGetUserLocations(locations *service.LocationService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := locations.Locations(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, logger, err)
			return
		}
		if result == nil {
			result = []domain.ShippingLocation{}
		}
		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"locations": result,
		})
	}
}
