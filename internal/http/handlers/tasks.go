package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) AddTask(c *gin.Context) {
	boardID, err := pathID(c, "board_id", "board")
	if err != nil {
		respondError(c, err)
		return
	}
	var req TaskRequest
	if err := bind(c, &req); err != nil {
		respondError(c, err)
		return
	}
	in, err := req.input()
	if err != nil {
		respondError(c, err)
		return
	}
	userID, _ := getUserID(c)

	task, err := h.Tasks.AddTask(c.Request.Context(), userID, boardID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"task":     task,
		"message":  "Task added",
		"redirect": boardPath(boardID),
	})
}

func (h *Handler) EditTaskForm(c *gin.Context) {
	taskID, err := pathID(c, "task_id", "task")
	if err != nil {
		respondError(c, err)
		return
	}
	userID, _ := getUserID(c)

	edit, err := h.Tasks.GetTaskForEdit(c.Request.Context(), userID, taskID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, edit)
}

func (h *Handler) EditTask(c *gin.Context) {
	taskID, err := pathID(c, "task_id", "task")
	if err != nil {
		respondError(c, err)
		return
	}
	var req TaskRequest
	if err := bind(c, &req); err != nil {
		respondError(c, err)
		return
	}
	in, err := req.input()
	if err != nil {
		respondError(c, err)
		return
	}
	userID, _ := getUserID(c)

	task, err := h.Tasks.UpdateTask(c.Request.Context(), userID, taskID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"task":     task,
		"message":  "Task updated",
		"redirect": boardPath(task.BoardID),
	})
}

func (h *Handler) DeleteTask(c *gin.Context) {
	taskID, err := pathID(c, "task_id", "task")
	if err != nil {
		respondError(c, err)
		return
	}
	userID, _ := getUserID(c)

	boardID, err := h.Tasks.DeleteTask(c.Request.Context(), userID, taskID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted", "redirect": boardPath(boardID)})
}

// UpdateTaskOrder takes {"order": [task ids...]}; position becomes the index.
func (h *Handler) UpdateTaskOrder(c *gin.Context) {
	boardID, err := pathID(c, "board_id", "board")
	if err != nil {
		respondError(c, err)
		return
	}
	var req TaskOrderRequest
	if err := bind(c, &req); err != nil {
		respondError(c, err)
		return
	}
	userID, _ := getUserID(c)

	if err := h.Tasks.Reorder(c.Request.Context(), userID, boardID, req.Order); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
