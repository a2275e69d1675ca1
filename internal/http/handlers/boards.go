package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Dashboard(c *gin.Context) {
	userID, _ := getUserID(c)
	d, err := h.Boards.Dashboard(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user_id": userID,
		"owned":   d.Owned,
		"joined":  d.Joined,
	})
}

func (h *Handler) AddBoard(c *gin.Context) {
	var req BoardRequest
	if err := bind(c, &req); err != nil {
		respondError(c, err)
		return
	}
	userID, _ := getUserID(c)

	b, err := h.Boards.CreateBoard(c.Request.Context(), userID, req.Name, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"board":    b,
		"message":  "Board created. Code: " + b.Code,
		"redirect": "/dashboard",
	})
}

func (h *Handler) JoinBoard(c *gin.Context) {
	var req JoinBoardRequest
	if err := bind(c, &req); err != nil {
		respondError(c, err)
		return
	}
	userID, _ := getUserID(c)

	res, err := h.Boards.JoinBoard(c.Request.Context(), userID, req.Code)
	if err != nil {
		respondError(c, err)
		return
	}
	msg := "Joined board"
	if res.AlreadyMember {
		msg = "Already joined"
	}
	c.JSON(http.StatusOK, gin.H{
		"board":          res.Board,
		"already_member": res.AlreadyMember,
		"message":        msg,
		"redirect":       "/dashboard",
	})
}

func (h *Handler) BoardView(c *gin.Context) {
	boardID, err := pathID(c, "board_id", "board")
	if err != nil {
		respondError(c, err)
		return
	}
	filter, err := taskFilter(c.Query("search"), c.Query("filter"))
	if err != nil {
		respondError(c, err)
		return
	}
	userID, _ := getUserID(c)

	view, err := h.Boards.BoardView(c.Request.Context(), userID, boardID, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"board":    view.Board,
		"members":  view.Members,
		"tasks":    view.Tasks,
		"is_owner": view.IsOwner,
		"search":   filter.Search,
		"filter":   c.Query("filter"),
	})
}

func (h *Handler) EditBoardForm(c *gin.Context) {
	boardID, err := pathID(c, "board_id", "board")
	if err != nil {
		respondError(c, err)
		return
	}
	userID, _ := getUserID(c)

	b, err := h.Boards.GetBoardForEdit(c.Request.Context(), userID, boardID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"board": b})
}

func (h *Handler) EditBoard(c *gin.Context) {
	boardID, err := pathID(c, "board_id", "board")
	if err != nil {
		respondError(c, err)
		return
	}
	var req BoardRequest
	if err := bind(c, &req); err != nil {
		respondError(c, err)
		return
	}
	userID, _ := getUserID(c)

	if err := h.Boards.UpdateBoard(c.Request.Context(), userID, boardID, req.Name, req.Description); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Board updated", "redirect": "/dashboard"})
}

func (h *Handler) DeleteBoard(c *gin.Context) {
	boardID, err := pathID(c, "board_id", "board")
	if err != nil {
		respondError(c, err)
		return
	}
	userID, _ := getUserID(c)

	if err := h.Boards.DeleteBoard(c.Request.Context(), userID, boardID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Board deleted", "redirect": "/dashboard"})
}

func (h *Handler) InviteMember(c *gin.Context) {
	boardID, err := pathID(c, "board_id", "board")
	if err != nil {
		respondError(c, err)
		return
	}
	var req InviteRequest
	if err := bind(c, &req); err != nil {
		respondError(c, err)
		return
	}
	userID, _ := getUserID(c)

	res, err := h.Boards.InviteMember(c.Request.Context(), userID, boardID, req.Username)
	if err != nil {
		respondError(c, err)
		return
	}
	msg := "Member invited"
	if res.AlreadyMember {
		msg = "Already a member"
	}
	c.JSON(http.StatusOK, gin.H{
		"already_member": res.AlreadyMember,
		"message":        msg,
		"redirect":       boardPath(boardID),
	})
}

func (h *Handler) RemoveMember(c *gin.Context) {
	boardID, err := pathID(c, "board_id", "board")
	if err != nil {
		respondError(c, err)
		return
	}
	memberID, err := pathID(c, "user_id", "member")
	if err != nil {
		respondError(c, err)
		return
	}
	userID, _ := getUserID(c)

	if err := h.Boards.RemoveMember(c.Request.Context(), userID, boardID, memberID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Member removed", "redirect": boardPath(boardID)})
}
