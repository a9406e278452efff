package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"gladiadores/internal/services"
	"gladiadores/pkg/middleware"
	"gladiadores/pkg/utils"
)

// currentUser writes a 401 and returns false when the JWT middleware did not run.
func currentUser(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, "Unauthorized")
		return uuid.Nil, false
	}
	return id, true
}

func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func intQuery(c *gin.Context, name string, def int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return def
	}
	return v
}

// formUpload opens a multipart file field; the returned closer must be called.
func formUpload(c *gin.Context, field string) (services.Upload, func(), error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return services.Upload{}, nil, utils.ErrInvalidUpload
	}
	f, err := fh.Open()
	if err != nil {
		return services.Upload{}, nil, utils.ErrInvalidUpload
	}
	return services.Upload{Filename: fh.Filename, Size: fh.Size, Body: f}, func() { _ = f.Close() }, nil
}
