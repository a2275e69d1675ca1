package http

import (
	"net/http"
	"time"

	"nexusboard/internal/http/handlers"
	"nexusboard/internal/http/middleware"
	"nexusboard/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Limits struct {
	AuthRate       int
	AuthWindow     time.Duration
	MutationRate   int
	MutationWindow time.Duration
}

// Deps is everything the router needs; main builds it once.
type Deps struct {
	Handler       *handlers.Handler
	Health        *handlers.HealthHandler
	Sessions      *middleware.Auth
	Limiter       *middleware.Limiter
	Limits        Limits
	Hub           *ws.Hub
	Access        ws.MembershipChecker
	AllowedOrigin string
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	handlers.RegisterValidators()
	h := d.Handler

	r.Use(middleware.RequestID(), middleware.Metrics())

	// Health checks and metrics (no auth, no rate limiting)
	r.GET("/healthz", d.Health.Liveness)
	r.GET("/readyz", d.Health.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/", d.Sessions.Identify(), h.Index)

	authRL := d.Limiter.ByIP("auth", d.Limits.AuthRate, d.Limits.AuthWindow)
	r.POST("/register", authRL, h.Register)
	r.POST("/login", authRL, h.Login)

	authed := r.Group("/", d.Sessions.Require(http.StatusUnauthorized))
	mut := d.Limiter.ByUser("mutation", d.Limits.MutationRate, d.Limits.MutationWindow)
	{
		authed.GET("/logout", h.Logout)
		authed.GET("/dashboard", h.Dashboard)

		authed.POST("/add_board", mut, h.AddBoard)
		authed.POST("/join_board", mut, h.JoinBoard)
		authed.GET("/board/:board_id", h.BoardView)

		authed.POST("/add_task/:board_id", mut, h.AddTask)
		authed.GET("/edit_task/:task_id", h.EditTaskForm)
		authed.POST("/edit_task/:task_id", mut, h.EditTask)
		authed.GET("/delete_task/:task_id", mut, h.DeleteTask)

		authed.GET("/edit_board/:board_id", h.EditBoardForm)
		authed.POST("/edit_board/:board_id", mut, h.EditBoard)
		authed.GET("/delete_board/:board_id", mut, h.DeleteBoard)
		authed.POST("/invite_member/:board_id", mut, h.InviteMember)
		authed.GET("/remove_member/:board_id/:user_id", mut, h.RemoveMember)

		authed.GET("/history/:board_id", h.BoardHistory)
		authed.POST("/delete_history/:log_id", mut, h.DeleteHistory)

		authed.GET("/ws", ws.Handler(d.Hub, d.Access, d.AllowedOrigin))
	}

	// The reorder endpoint answers 403 rather than 401 to anonymous callers.
	r.POST("/update_task_order/:board_id", d.Sessions.Require(http.StatusForbidden), mut, h.UpdateTaskOrder)
}
