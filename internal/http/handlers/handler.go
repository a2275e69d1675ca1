package handlers

import (
	"strconv"

	"nexusboard/internal/domain"
	"nexusboard/internal/http/middleware"
	"nexusboard/internal/service"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Auth     *service.AuthService
	Boards   *service.BoardService
	Tasks    *service.TaskService
	History  *service.HistoryService
	Tokens   *service.TokenIssuer
	Sessions *middleware.Auth
}

func NewHandler(
	auth *service.AuthService,
	boards *service.BoardService,
	tasks *service.TaskService,
	history *service.HistoryService,
	tokens *service.TokenIssuer,
	sessions *middleware.Auth,
) *Handler {
	return &Handler{
		Auth:     auth,
		Boards:   boards,
		Tasks:    tasks,
		History:  history,
		Tokens:   tokens,
		Sessions: sessions,
	}
}

// getUserID извлекает user_id из контекста Gin
func getUserID(c *gin.Context) (int64, bool) {
	uidVal, ok := c.Get(middleware.ContextUserID)
	if !ok {
		return 0, false
	}
	switch v := uidVal.(type) {
	case int64:
		return v, v > 0
	case float64:
		return int64(v), v > 0
	default:
		return 0, false
	}
}

// pathID reads a positive integer path parameter. Anything else is reported
// as a missing entity.
func pathID(c *gin.Context, name, what string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NotFound(what)
	}
	return id, nil
}

func boardPath(id int64) string {
	return "/board/" + strconv.FormatInt(id, 10)
}
