// Package server wires the HTTP surface over the identity and organization
// services.
package server

import (
	"context"
	"net/http"

	"github.com/atriumhq/atrium/internal/auth"
	authdomain "github.com/atriumhq/atrium/internal/auth/domain"
	"github.com/atriumhq/atrium/internal/config"
	"github.com/atriumhq/atrium/internal/organization"
	orgdomain "github.com/atriumhq/atrium/internal/organization/domain"
	"github.com/atriumhq/atrium/internal/organization/permissions"
	"github.com/atriumhq/atrium/internal/providers/email"
	"github.com/atriumhq/atrium/pkg/db"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module assembles the HTTP server and its domain dependencies.
var Module = fx.Module("http.server",
	config.Module,
	db.Module,
	auth.Module,
	organization.Module,
	email.Module,
	fx.Provide(registerGin),
	fx.Provide(NewServer),
	fx.Invoke(RegisterRoutes),
	fx.Invoke(RunHTTP),
)

type Server struct {
	log     *zap.Logger
	cfg     config.Config
	authsvc authdomain.Service
	orgsvc  orgdomain.Service
	guard   *permissions.Guard
}

func NewServer(log *zap.Logger, cfg config.Config, authsvc authdomain.Service, orgsvc orgdomain.Service, guard *permissions.Guard) *Server {
	return &Server{
		log:     log.Named("http.server"),
		cfg:     cfg,
		authsvc: authsvc,
		orgsvc:  orgsvc,
		guard:   guard,
	}
}

func registerGin(cfg config.Config) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(ErrorHandlingMiddleware())
	return engine
}

// RegisterRoutes mounts the /auth and /org surfaces.
func RegisterRoutes(r *gin.Engine, s *Server) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authGroup := r.Group("/auth")
	authGroup.POST("/register", s.Register)
	authGroup.POST("/login", s.Login)
	authGroup.GET("/refresh", s.Refresh)
	authGroup.GET("/verification/:token", s.CompleteVerification)
	authGroup.POST("/verification/resend", s.ResendVerification)
	authGroup.POST("/password/reset", s.RequestPasswordReset)
	authGroup.POST("/password/reset/:token", s.CompletePasswordReset)

	me := authGroup.Group("", s.AuthRequired())
	me.GET("/me", s.Me)
	me.PATCH("/me", s.UpdateProfile)
	me.DELETE("/me", s.DeleteAccount)
	me.POST("/password/change", s.ChangePassword)

	orgGroup := r.Group("/org", s.AuthRequired())
	orgGroup.POST("", s.CreateOrganization)
	orgGroup.GET("", s.ListOrganizations)
	orgGroup.POST("/join/:token/:role_token", s.JoinOrganization)
	orgGroup.GET("/:slug", s.GetOrganization)
	orgGroup.PATCH("/:slug", s.UpdateOrganization)
	orgGroup.DELETE("/:slug", s.DeleteOrganization)
	orgGroup.POST("/:slug/invite", s.CreateInviteLink)
	orgGroup.POST("/:slug/revoke", s.RevokeInviteLink)
	orgGroup.POST("/:slug/leave", s.LeaveOrganization)
	orgGroup.GET("/:slug/members", s.ListMembers)
	orgGroup.GET("/:slug/members/:user_id", s.GetMember)
	orgGroup.PATCH("/:slug/members/:user_id", s.UpdateMemberRole)
	orgGroup.DELETE("/:slug/members/:user_id", s.RemoveMember)
}

// RunHTTP starts the listener under the fx lifecycle.
func RunHTTP(lc fx.Lifecycle, engine *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: engine,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
