package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gladiadores/internal/models/request_models"
	"gladiadores/internal/services"
	"gladiadores/pkg/utils"
)

type RoleController struct {
	roleService services.RoleServiceInterface
}

func NewRoleController(roleService services.RoleServiceInterface) *RoleController {
	return &RoleController{roleService: roleService}
}

// HasRole godoc
// @Summary Check whether the caller holds a role
// @Tags Roles
// @Produce json
// @Param role path string true "admin | moderator | user"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /roles/has/{role} [get]
func (r *RoleController) HasRole(c *gin.Context) {
	accountID, ok := currentUser(c)
	if !ok {
		return
	}

	has, err := r.roleService.HasRole(c.Request.Context(), accountID, c.Param("role"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, gin.H{"role": c.Param("role"), "has_role": has}, "Role checked")
}

// ListAll godoc
// @Summary List role grants
// @Tags Admin
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param pageSize query int false "Page size (default: 20, max: 100)"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/roles [get]
func (r *RoleController) ListAll(c *gin.Context) {
	roles, err := r.roleService.ListAll(c.Request.Context(), intQuery(c, "page", 1), intQuery(c, "pageSize", 20))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, roles, "Roles fetched successfully")
}

// Assign godoc
// @Summary Grant a role
// @Tags Admin
// @Accept json
// @Produce json
// @Param request body request_models.AssignRoleRequest true "Grant"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/roles [post]
func (r *RoleController) Assign(c *gin.Context) {
	grantedBy, ok := currentUser(c)
	if !ok {
		return
	}

	var req request_models.AssignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := r.roleService.Assign(c.Request.Context(), &grantedBy, req.AccountID, req.Role); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, nil, "Role granted")
}

// Revoke godoc
// @Summary Revoke a role
// @Tags Admin
// @Accept json
// @Produce json
// @Param request body request_models.AssignRoleRequest true "Grant to remove"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/roles [delete]
func (r *RoleController) Revoke(c *gin.Context) {
	callerID, ok := currentUser(c)
	if !ok {
		return
	}

	var req request_models.AssignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}
	if req.AccountID == callerID && req.Role == "admin" {
		utils.RespondError(c, http.StatusBadRequest, "You cannot revoke your own admin role")
		return
	}

	if err := r.roleService.Revoke(c.Request.Context(), req.AccountID, req.Role); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, nil, "Role revoked")
}
