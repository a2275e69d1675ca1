package handlers

import (
	"encoding/json"
	"strconv"
	"strings"

	"nexusboard/internal/domain"
	"nexusboard/internal/service"
)

type RegisterRequest struct {
	Username string `form:"username" json:"username" binding:"required,notblank,max=80"`
	Email    string `form:"email" json:"email" binding:"required,email,max=120"`
	Password string `form:"password" json:"password" binding:"required,max=72"`
}

// LoginRequest accepts either an email or a username.
type LoginRequest struct {
	Email    string `form:"email" json:"email" binding:"required_without=Username"`
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password" binding:"required"`
}

func (r LoginRequest) login() string {
	if strings.TrimSpace(r.Email) != "" {
		return r.Email
	}
	return r.Username
}

type BoardRequest struct {
	Name        string `form:"name" json:"name" binding:"required,notblank,max=120"`
	Description string `form:"description" json:"description" binding:"max=2000"`
}

type JoinBoardRequest struct {
	Code string `form:"board_code" json:"board_code" binding:"required,notblank,max=16"`
}

type InviteRequest struct {
	Username string `form:"username" json:"username" binding:"required,notblank"`
}

// TaskRequest is the add/edit task form. An assignee of 0 means unassigned.
type TaskRequest struct {
	Name        string      `form:"name" json:"name" binding:"required,notblank,max=200"`
	Description string      `form:"description" json:"description" binding:"max=5000"`
	AssignedTo  *int64      `form:"assigned_to" json:"assigned_to" binding:"omitempty,min=0"`
	Comments    string      `form:"comments" json:"comments" binding:"max=5000"`
	DueDate     string      `form:"due_date" json:"due_date" binding:"omitempty,isodate"`
	Progress    json.Number `form:"progress" json:"progress" binding:"omitempty,numeric"`
}

func (r TaskRequest) input() (service.TaskInput, error) {
	due, err := service.ParseDueDate(r.DueDate)
	if err != nil {
		return service.TaskInput{}, err
	}
	progress, err := service.ParseProgress(r.Progress.String())
	if err != nil {
		return service.TaskInput{}, err
	}
	in := service.TaskInput{
		Name:        r.Name,
		Description: strings.TrimSpace(r.Description),
		Comments:    strings.TrimSpace(r.Comments),
		DueDate:     due,
		Progress:    progress,
	}
	if r.AssignedTo != nil && *r.AssignedTo > 0 {
		id := *r.AssignedTo
		in.AssignedTo = &id
	}
	return in, nil
}

type TaskOrderRequest struct {
	Order []int64 `form:"order" json:"order" binding:"required,min=1,dive,gt=0"`
}

// taskFilter reads ?search= and ?filter=<assignee id>.
func taskFilter(search, filter string) (domain.TaskFilter, error) {
	f := domain.TaskFilter{Search: strings.TrimSpace(search)}
	filter = strings.TrimSpace(filter)
	if filter == "" || filter == "all" {
		return f, nil
	}
	id, err := strconv.ParseInt(filter, 10, 64)
	if err != nil || id <= 0 {
		return f, domain.Validationf("Invalid assignee filter")
	}
	f.AssigneeID = &id
	return f, nil
}
