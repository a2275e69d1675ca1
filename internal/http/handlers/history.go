package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

func (h *Handler) BoardHistory(c *gin.Context) {
	boardID, err := pathID(c, "board_id", "board")
	if err != nil {
		respondError(c, err)
		return
	}
	userID, _ := getUserID(c)

	entries, err := h.History.List(c.Request.Context(), userID, boardID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"board_id": boardID, "history": entries})
}

func (h *Handler) DeleteHistory(c *gin.Context) {
	logID, err := pathID(c, "log_id", "history entry")
	if err != nil {
		respondError(c, err)
		return
	}
	userID, _ := getUserID(c)

	entry, err := h.History.Delete(c.Request.Context(), userID, logID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "History entry deleted",
		"redirect": "/history/" + strconv.FormatInt(entry.BoardID, 10),
	})
}
