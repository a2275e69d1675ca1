package handlers

import (
	"errors"
	"net/http"

	"nexusboard/internal/domain"
	"nexusboard/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// respondError maps an error kind to a status. Messages of unexpected
// errors are logged, never returned.
func respondError(c *gin.Context, err error) {
	body := gin.H{"error": err.Error()}
	var status int

	switch {
	case errors.Is(err, domain.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthenticated):
		status = http.StatusUnauthorized
		body["redirect"] = "/login"
	case errors.Is(err, domain.ErrForbidden):
		status = http.StatusForbidden
		body["redirect"] = "/dashboard"
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
		body["redirect"] = "/dashboard"
	case errors.Is(err, domain.ErrConflict):
		status = http.StatusConflict
	default:
		uid, _ := getUserID(c)
		logger.WithContext(c.Request.Context()).Error("request failed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"user_id", uid,
			"error", err,
		)
		status = http.StatusInternalServerError
		body = gin.H{"error": "Something went wrong, please try again"}
	}

	c.AbortWithStatusJSON(status, body)
}

// bind parses the request into req and turns binding failures into
// validation errors with a readable message.
func bind(c *gin.Context, req any) error {
	if err := c.ShouldBind(req); err != nil {
		return domain.Validationf("%s", bindingMessage(err))
	}
	return nil
}

var fieldLabels = map[string]string{
	"Username": "Username",
	"Email":    "Email",
	"Password": "Password",
	"Name":     "Name",
	"Code":     "Board code",
	"Order":    "Task order",
}

func bindingMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid request"
	}

	fe := verrs[0]
	label, ok := fieldLabels[fe.Field()]
	if !ok {
		label = fe.Field()
	}
	switch fe.Tag() {
	case "required", "notblank", "required_without":
		if fe.Field() == "Order" {
			return "Task order must not be empty"
		}
		return label + " required"
	case "min":
		if fe.Field() == "Order" {
			return "Task order must not be empty"
		}
		return label + " is invalid"
	case "isodate":
		return "Invalid due date format. Use YYYY-MM-DD or ISO format."
	case "numeric":
		return label + " must be a number"
	case "email":
		return "Invalid email address"
	case "max":
		return label + " is too long"
	default:
		return label + " is invalid"
	}
}
