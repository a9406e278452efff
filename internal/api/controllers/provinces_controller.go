package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gladiadores/internal/models/request_models"
	"gladiadores/internal/services"
	"gladiadores/pkg/utils"
)

type ProvincesController struct {
	provinceService services.ProvinceServiceInterface
}

func NewProvincesController(provinceService services.ProvinceServiceInterface) *ProvincesController {
	return &ProvincesController{
		provinceService: provinceService,
	}
}

// ListCounters godoc
// @Summary Registration counters per province
// @Tags Provinces
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Router /provinces [get]
func (p *ProvincesController) ListCounters(c *gin.Context) {
	counters, err := p.provinceService.ListCounters(c.Request.Context())
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, counters, "Provinces fetched successfully")
}

// GetCounter godoc
// @Summary Counter of one province
// @Tags Provinces
// @Produce json
// @Param name path string true "Province name"
// @Success 200 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Router /provinces/{name} [get]
func (p *ProvincesController) GetCounter(c *gin.Context) {
	counter, err := p.provinceService.GetCounter(c.Request.Context(), c.Param("name"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, counter, "Province fetched successfully")
}

// IntegrityMap godoc
// @Summary Mapa de integridad
// @Description Every province with its CIDP progress and national totals
// @Tags Provinces
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Router /mapa-integridad [get]
func (p *ProvincesController) IntegrityMap(c *gin.Context) {
	m, err := p.provinceService.IntegrityMap(c.Request.Context())
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	c.Header("Cache-Control", "public, max-age=30")
	utils.RespondSuccess(c, m, "Integrity map fetched successfully")
}

// SetThreshold godoc
// @Summary Change the CIDP threshold of a province
// @Tags Admin
// @Accept json
// @Produce json
// @Param name path string true "Province name"
// @Param request body request_models.SetThresholdRequest true "New threshold"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/provinces/{name}/threshold [put]
func (p *ProvincesController) SetThreshold(c *gin.Context) {
	var req request_models.SetThresholdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	counter, err := p.provinceService.SetThreshold(c.Request.Context(), c.Param("name"), req.Threshold)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, counter, "Threshold updated")
}

// Reconcile godoc
// @Summary Recount registrations per province
// @Tags Admin
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/provinces/reconcile [post]
func (p *ProvincesController) Reconcile(c *gin.Context) {
	drifted, err := p.provinceService.Reconcile(c.Request.Context())
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, gin.H{"corrected": drifted}, "Province counters reconciled")
}
