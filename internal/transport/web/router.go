package web

import (
	"log"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/brvnobarreto/activity-log-controller/internal/docs"
	"github.com/brvnobarreto/activity-log-controller/internal/transport/web/mw"
	"github.com/brvnobarreto/activity-log-controller/internal/transport/web/v1/activity"
	authv1 "github.com/brvnobarreto/activity-log-controller/internal/transport/web/v1/auth"
	"github.com/brvnobarreto/activity-log-controller/internal/transport/web/v1/employee"
	"github.com/brvnobarreto/activity-log-controller/internal/transport/web/v1/health"
	"github.com/brvnobarreto/activity-log-controller/internal/transport/web/v1/report"
)

type routerDeps struct {
	health   *health.Handler
	register *authv1.HandlerRegister
	login    *authv1.HandlerLogin
	logout   *authv1.HandlerLogout
	acts     *activity.Handler
	emps     *employee.Handler
	reports  *report.Handler
	auth     mw.AuthDeps
}

func newRouter(d routerDeps, logger *log.Logger) http.Handler {
	mux := http.NewServeMux()

	authed := func(h http.HandlerFunc) http.Handler { return mw.RequireAuth(d.auth, h) }
	boss := func(h http.HandlerFunc) http.Handler { return mw.RequireSupervisor(d.auth, h) }

	// health
	mux.HandleFunc("GET /api/healthz", d.health.Liveness)
	mux.HandleFunc("GET /api/readyz", d.health.Readiness)

	// auth
	mux.HandleFunc("POST /api/register", limitBody(1<<20, d.register.Register))
	mux.HandleFunc("POST /api/auth", limitBody(1<<20, d.login.Login))
	mux.HandleFunc("DELETE /api/auth/{token}", d.logout.Logout)

	// activities
	mux.Handle("POST /api/activities", authed(limitBody(64<<20, d.acts.Create))) // 64MB на фото
	mux.Handle("GET /api/activities", authed(d.acts.List))
	mux.Handle("HEAD /api/activities", authed(d.acts.List))
	mux.Handle("GET /api/activities/{id}", authed(d.acts.GetOne))
	mux.Handle("GET /api/activities/{id}/photo", authed(d.acts.Photo))
	mux.Handle("HEAD /api/activities/{id}/photo", authed(d.acts.Photo))
	mux.Handle("PATCH /api/activities/{id}/status", authed(limitBody(1<<20, d.acts.UpdateStatus)))
	mux.Handle("DELETE /api/activities/{id}", authed(d.acts.Delete))

	// employees (только супервизор)
	mux.Handle("GET /api/employees", boss(d.emps.List))
	mux.Handle("PATCH /api/employees/{id}/role", boss(limitBody(1<<20, d.emps.UpdateRole)))
	mux.Handle("DELETE /api/employees/{id}", boss(d.emps.Delete))

	// reports (только супервизор)
	mux.Handle("GET /api/reports/summary", boss(d.reports.Summary))

	// swagger
	mux.Handle("GET /swagger/", httpSwagger.WrapHandler)

	// 🔗 middleware
	return mw.WithRequestID(mw.Logging(logger)(mux))
}

func limitBody(n int64, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, n)
		h(w, r)
	}
}
