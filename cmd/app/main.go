package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"gladiadores/cmd/fx/account_fx"
	"gladiadores/cmd/fx/communication_fx"
	"gladiadores/cmd/fx/config_fx"
	"gladiadores/cmd/fx/controllers_fx"
	"gladiadores/cmd/fx/dashboard"
	"gladiadores/cmd/fx/db_fx"
	"gladiadores/cmd/fx/donation_fx"
	"gladiadores/cmd/fx/interests_fx"
	"gladiadores/cmd/fx/jobs_fx"
	"gladiadores/cmd/fx/logger_fx"
	"gladiadores/cmd/fx/mail_fx"
	"gladiadores/cmd/fx/memcache_fx"
	"gladiadores/cmd/fx/province_fx"
	"gladiadores/cmd/fx/realtime_fx"
	"gladiadores/cmd/fx/redis_fx"
	"gladiadores/cmd/fx/registration_fx"
	"gladiadores/cmd/fx/staircase_fx"
	"gladiadores/cmd/fx/storage_fx"
	"gladiadores/config"
	"gladiadores/internal/api/controllers"
	"gladiadores/internal/services"
	mem "gladiadores/pkg/memcache"
	"gladiadores/pkg/middleware"
	"gladiadores/pkg/utils"
)

// @title Gladiadores API
// @version 1.0
// @description Registro de Gladiadores, escalera de verificación y pasaporte.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	app := fx.New(
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),

		config_fx.Module,
		logger_fx.Module,
		db_fx.Module,
		redis_fx.Module,
		memcache_fx.Module,
		storage_fx.Module,
		mail_fx.Module,
		realtime_fx.Module,

		account_fx.Module,
		registration_fx.Module,
		staircase_fx.Module,
		donation_fx.Module,
		province_fx.Module,
		communication_fx.Module,
		interests_fx.Module,
		dashboard.Module,
		jobs_fx.Module,
		controllers_fx.Module,

		fx.Provide(ProvideRouter),
		fx.Invoke(StartServer),
	)

	app.Run()
}

func StartServer(lc fx.Lifecycle, cfg *config.Config, engine *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			log.Info("starting HTTP server", zap.String("addr", srv.Addr))
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("HTTP server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("stopping HTTP server")
			return srv.Shutdown(ctx)
		},
	})
}

type routerParams struct {
	fx.In

	Config      *config.Config
	Log         *zap.Logger
	Issuer      *utils.TokenIssuer
	Denylist    mem.TokenStore `name:"jwt_denylist"`
	RoleService services.RoleServiceInterface

	Account       *controllers.AccountController
	Registration  *controllers.RegistrationController
	Staircase     *controllers.StaircaseController
	Passport      *controllers.PassportController
	Donation      *controllers.DonationController
	Vote          *controllers.VoteController
	Provinces     *controllers.ProvincesController
	Communication *controllers.CommunicationController
	Role          *controllers.RoleController
	Interest      *controllers.InterestController
	Dashboard     *controllers.DashboardController
	Realtime      *controllers.RealtimeController
	PWA           *controllers.PWAController
}

func ProvideRouter(p routerParams) (*gin.Engine, error) {
	if !p.Config.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := utils.RegisterValidators(); err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(middleware.TraceIDMiddleware())
	r.Use(middleware.RequestLogger(p.Log))
	r.Use(gin.Recovery())
	r.Use(middleware.CORSMiddleware(p.Config.Server.AllowedOrigins))
	r.MaxMultipartMemory = p.Config.Storage.MaxUploadMB << 20

	RegisterRoutes(r, p)

	return r, nil
}

func RegisterRoutes(r *gin.Engine, p routerParams) {
	auth := middleware.JWTAuthMiddleware(p.Issuer, p.Denylist)
	admin := middleware.RoleMiddleware(p.RoleService, "admin")
	// Each route group keeps its own buckets.
	newLimiter := func() gin.HandlerFunc {
		return middleware.NewRateLimiter(p.Config.Server.RateLimitRPS, p.Config.Server.RateLimitBurst).Middleware()
	}
	authLimiter := newLimiter()
	lookupLimiter := newLimiter()
	writeLimiter := newLimiter()

	r.GET("/health", p.PWA.Health)
	r.GET("/manifest.webmanifest", p.PWA.Manifest)

	api := r.Group("/api/v1")
	api.GET("/app/version", p.PWA.Version)

	authGroup := api.Group("/auth")
	authGroup.POST("/signup", authLimiter, p.Account.Register)
	authGroup.POST("/login", authLimiter, p.Account.Login)
	authGroup.POST("/forgot-password", authLimiter, p.Account.ForgotPassword)
	authGroup.POST("/reset-password", authLimiter, p.Account.ResetPassword)
	authGroup.POST("/logout", auth, p.Account.Logout)
	authGroup.GET("/me", auth, p.Account.Me)

	api.GET("/provinces", p.Provinces.ListCounters)
	api.GET("/provinces/:name", p.Provinces.GetCounter)
	api.GET("/mapa-integridad", p.Provinces.IntegrityMap)
	api.GET("/interests", p.Interest.ListInterests)
	api.GET("/leaderboard", p.Registration.Leaderboard)
	api.GET("/referrals/:code", lookupLimiter, p.Registration.LookupReferrer)

	me := api.Group("", auth)
	me.POST("/registrations", writeLimiter, p.Registration.Register)
	me.GET("/registrations/me", p.Registration.GetMine)
	me.GET("/referrals/me", p.Registration.ReferralStats)
	me.GET("/referrals/me/qr", p.Registration.ReferralQR)
	me.GET("/passport", p.Passport.GetPassport)
	me.GET("/documents/me", p.Staircase.GetMyDocuments)
	me.GET("/communications", p.Communication.ListMine)
	me.GET("/roles/has/:role", p.Role.HasRole)
	me.GET("/realtime/stream", p.Realtime.Stream)

	staircase := me.Group("/staircase")
	staircase.GET("", p.Staircase.Progress)
	staircase.POST("/oath", p.Staircase.AcceptOath)
	staircase.POST("/document/:side", p.Staircase.UploadDocument)
	staircase.POST("/cedula/verify", writeLimiter, p.Staircase.VerifyCedula)
	staircase.POST("/biometric/begin", p.Staircase.BeginBiometric)
	staircase.POST("/biometric/finish", p.Staircase.FinishBiometric)
	staircase.POST("/interests", p.Staircase.SelectInterests)

	me.POST("/donations", p.Donation.Submit)
	me.GET("/donations/me", p.Donation.ListMine)
	me.POST("/votes/evidence", p.Vote.SubmitEvidence)

	adminGroup := api.Group("/admin", auth, admin)
	adminGroup.GET("/dashboard", p.Dashboard.GetDashboard)
	adminGroup.GET("/donations", p.Donation.ListForReview)
	adminGroup.POST("/donations/:id/approve", p.Donation.Approve)
	adminGroup.POST("/donations/:id/reject", p.Donation.Reject)
	adminGroup.POST("/votes/:registrationId", p.Vote.Review)
	adminGroup.PUT("/provinces/:name/threshold", p.Provinces.SetThreshold)
	adminGroup.POST("/provinces/reconcile", p.Provinces.Reconcile)
	adminGroup.GET("/communications", p.Communication.ListAll)
	adminGroup.POST("/communications", p.Communication.Create)
	adminGroup.GET("/roles", p.Role.ListAll)
	adminGroup.POST("/roles", p.Role.Assign)
	adminGroup.DELETE("/roles", p.Role.Revoke)
	adminGroup.POST("/interests", p.Interest.CreateInterest)
}
