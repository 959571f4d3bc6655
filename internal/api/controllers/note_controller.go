package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"mlmadmin/internal/models/request_models"
	"mlmadmin/internal/services"
	"mlmadmin/pkg/utils"
)

type NoteController struct {
	noteService services.NoteServiceInterface
}

func NewNoteController(noteService services.NoteServiceInterface) *NoteController {
	return &NoteController{noteService: noteService}
}

// AddNote godoc
// @Summary Add an admin note
// @Description Add a note, optionally about a specific member
// @Tags Admin Notes
// @Accept json
// @Produce json
// @Param request body request_models.AdminNoteRequest true "Note payload"
// @Success 201 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/notes [post]
func (n *NoteController) AddNote(c *gin.Context) {
	var req request_models.AdminNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	authorID, ok := currentUserID(c)
	if !ok {
		return
	}

	var subject *uuid.UUID
	if req.SubjectMemberID != "" {
		id, err := uuid.Parse(req.SubjectMemberID)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, "Invalid member ID")
			return
		}
		subject = &id
	}

	note, err := n.noteService.AddNote(c.Request.Context(), authorID, subject, req.Body, req.Pinned)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondCreated(c, note, "Note added successfully")
}

// ListNotes godoc
// @Summary List admin notes
// @Description Pinned notes first, newest first
// @Tags Admin Notes
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(20) minimum(1) maximum(100)
// @Param member_id query string false "Only notes about this member"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/notes [get]
func (n *NoteController) ListNotes(c *gin.Context) {
	page, pageSize, ok := pagination(c)
	if !ok {
		return
	}

	var subject *uuid.UUID
	if raw := c.Query("member_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, "Invalid member ID")
			return
		}
		subject = &id
	}

	notes, total, err := n.noteService.GetNotes(c.Request.Context(), subject, page, pageSize)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	respondPage(c, notes, page, pageSize, total, "Notes fetched successfully")
}

// UpdateNote godoc
// @Summary Update an admin note
// @Tags Admin Notes
// @Accept json
// @Produce json
// @Param id path string true "Note ID"
// @Param request body request_models.AdminNoteRequest true "Note payload"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/notes/{id} [put]
func (n *NoteController) UpdateNote(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req request_models.AdminNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	note, err := n.noteService.UpdateNote(c.Request.Context(), id, req.Body, req.Pinned)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, note, "Note updated successfully")
}

// DeleteNote godoc
// @Summary Delete an admin note
// @Tags Admin Notes
// @Param id path string true "Note ID"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/notes/{id} [delete]
func (n *NoteController) DeleteNote(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := n.noteService.DeleteNote(c.Request.Context(), id); err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, nil, "Note deleted successfully")
}
