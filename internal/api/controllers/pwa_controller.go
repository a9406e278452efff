package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/mod/semver"

	"gladiadores/config"
	"gladiadores/internal/models/response_models"
	"gladiadores/pkg/utils"
)

type manifestIcon struct {
	Src     string `json:"src"`
	Sizes   string `json:"sizes"`
	Type    string `json:"type"`
	Purpose string `json:"purpose,omitempty"`
}

type webManifest struct {
	Name            string         `json:"name"`
	ShortName       string         `json:"short_name"`
	Lang            string         `json:"lang"`
	StartURL        string         `json:"start_url"`
	Scope           string         `json:"scope"`
	Display         string         `json:"display"`
	Orientation     string         `json:"orientation"`
	BackgroundColor string         `json:"background_color"`
	ThemeColor      string         `json:"theme_color"`
	Icons           []manifestIcon `json:"icons"`
}

type PWAController struct {
	app config.AppConfig
}

func NewPWAController(cfg *config.Config) *PWAController {
	return &PWAController{app: cfg.App}
}

// Manifest godoc
// @Summary Web app manifest
// @Tags PWA
// @Produce json
// @Success 200 {object} webManifest
// @Router /manifest.webmanifest [get]
func (p *PWAController) Manifest(c *gin.Context) {
	c.Header("Content-Type", "application/manifest+json")
	c.JSON(http.StatusOK, webManifest{
		Name:            p.app.Name,
		ShortName:       p.app.Name,
		Lang:            "es-DO",
		StartURL:        "/?source=pwa",
		Scope:           "/",
		Display:         "standalone",
		Orientation:     "portrait",
		BackgroundColor: "#0b1d3a",
		ThemeColor:      "#c8102e",
		Icons: []manifestIcon{
			{Src: "/icons/icon-192.png", Sizes: "192x192", Type: "image/png"},
			{Src: "/icons/icon-512.png", Sizes: "512x512", Type: "image/png"},
			{Src: "/icons/maskable-512.png", Sizes: "512x512", Type: "image/png", Purpose: "maskable"},
		},
	})
}

// Version godoc
// @Summary Current and minimum supported client version
// @Tags PWA
// @Produce json
// @Param client query string false "Version the client is running"
// @Success 200 {object} utils.APIResponse
// @Router /app/version [get]
func (p *PWAController) Version(c *gin.Context) {
	client := c.Query("client")
	utils.RespondSuccess(c, response_models.AppVersionResponse{
		Version:        p.app.Version,
		MinVersion:     p.app.MinVersion,
		UpdateRequired: client != "" && versionBelow(client, p.app.MinVersion),
	}, "Version fetched successfully")
}

// Health godoc
// @Summary Liveness probe
// @Tags PWA
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Router /health [get]
func (p *PWAController) Health(c *gin.Context) {
	utils.RespondSuccess(c, gin.H{"status": "ok", "version": p.app.Version}, "")
}

// versionBelow treats an unparsable client version as outdated.
func versionBelow(client, min string) bool {
	cv, mv := canonicalVersion(client), canonicalVersion(min)
	if !semver.IsValid(mv) {
		return false
	}
	if !semver.IsValid(cv) {
		return true
	}
	return semver.Compare(cv, mv) < 0
}

func canonicalVersion(v string) string {
	v = strings.TrimSpace(v)
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}
