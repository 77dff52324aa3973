package web

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/brvnobarreto/activity-log-controller/internal/config"
	"github.com/brvnobarreto/activity-log-controller/internal/domain"
	"github.com/brvnobarreto/activity-log-controller/internal/transport/web/mw"
	"github.com/brvnobarreto/activity-log-controller/internal/transport/web/v1/activity"
	authv1 "github.com/brvnobarreto/activity-log-controller/internal/transport/web/v1/auth"
	"github.com/brvnobarreto/activity-log-controller/internal/transport/web/v1/employee"
	"github.com/brvnobarreto/activity-log-controller/internal/transport/web/v1/health"
	"github.com/brvnobarreto/activity-log-controller/internal/transport/web/v1/report"
)

type Server struct {
	log    *log.Logger
	server *http.Server
	cfg    *config.Config
}

func New(logger *log.Logger, cfg *config.Config, repos Repos, auth AuthDeps,
	storage domain.BlobStorage, cache domain.Cache) *Server {

	sub := func(name string) *log.Logger {
		return log.New(logger.Writer(), logger.Prefix()+"["+name+"] ", logger.Flags())
	}

	healthHandler := &health.Handler{
		Log: sub("health"), DB: repos.Users, Cache: cache, Storage: storage,
	}
	registerHandler := &authv1.HandlerRegister{
		Log: sub("auth"), Users: repos.Users, Hasher: auth.Hasher, AdminToken: cfg.AuthAdminToken,
	}
	loginHandler := &authv1.HandlerLogin{
		Log: sub("auth"), Users: repos.Users, Hasher: auth.Hasher, Tokens: auth.Tokens,
	}
	logoutHandler := &authv1.HandlerLogout{
		Log: sub("auth"), Tokens: auth.Tokens, Blacklist: auth.Blacklist,
	}
	actHandler := activity.NewHandler(sub("activity"), repos.Users, repos.Acts,
		storage, cache, cfg.CacheListTTL, cfg.CacheActivityTTL)
	empHandler := employee.NewHandler(sub("employee"), repos.Users)
	repHandler := report.NewHandler(sub("report"), repos.Acts, cache)

	mwDeps := mw.AuthDeps{Tokens: auth.Tokens, Blacklist: auth.Blacklist}

	srv := &http.Server{
		Addr: cfg.AppPort,
		Handler: newRouter(routerDeps{
			health:   healthHandler,
			register: registerHandler,
			login:    loginHandler,
			logout:   logoutHandler,
			acts:     actHandler,
			emps:     empHandler,
			reports:  repHandler,
			auth:     mwDeps,
		}, logger),
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second, // стриминг фото может быть долгим
		MaxHeaderBytes:    1 << 20,
		ReadHeaderTimeout: 2 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return &Server{server: srv, cfg: cfg, log: logger}
}

func (ws *Server) Run() {
	ws.log.Printf("started on %s", ws.server.Addr)
	if err := ws.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		ws.log.Fatalf("error: %v", err)
	}
}

func (ws *Server) Close(ctx context.Context) {
	if err := ws.server.Shutdown(ctx); err != nil {
		ws.log.Printf("forced to shutdown: %v", err)
	}
	ws.log.Println("exited gracefully")
}
