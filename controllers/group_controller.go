package controllers

import (
	"net/http"

	"jogakzip/models"
	"jogakzip/services"

	"github.com/gin-gonic/gin"
)

type GroupController struct {
	groupService *services.GroupService
}

func NewGroupController(groupService *services.GroupService) *GroupController {
	return &GroupController{groupService: groupService}
}

// CreateGroup godoc
// @Summary Create a group
// @Tags groups
// @Accept json
// @Produce json
// @Param body body models.CreateGroupRequest true "Group"
// @Success 201 {object} models.GroupResponse
// @Failure 400 {object} ErrorResponse
// @Router /groups [post]
func (gc *GroupController) CreateGroup(c *gin.Context) {
	var req models.CreateGroupRequest
	if !bindJSON(c, &req) {
		return
	}

	group, err := gc.groupService.CreateGroup(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, group.ToResponse())
}

// GetGroups godoc
// @Summary List public groups
// @Tags groups
// @Produce json
// @Param sortBy query string false "latest | mostPosted | mostLiked | mostBadge"
// @Param keyword query string false "Substring of the group name"
// @Param isPublic query bool false "Only true lists anything"
// @Param page query int false "Page, from 1"
// @Param pageSize query int false "Page size, up to 100"
// @Success 200 {object} GroupPage
// @Router /groups [get]
func (gc *GroupController) GetGroups(c *gin.Context) {
	var query models.GroupListQuery
	if !bindQuery(c, &query) {
		return
	}

	page, err := gc.groupService.ListGroups(c.Request.Context(), &query)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// GetGroup godoc
// @Summary Group detail
// @Description Private groups need the group password in the X-Resource-Password header.
// @Tags groups
// @Produce json
// @Param groupId path int true "Group ID"
// @Success 200 {object} models.GroupResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /groups/{groupId} [get]
func (gc *GroupController) GetGroup(c *gin.Context) {
	group, err := gc.groupService.GetGroup(c.Request.Context(), pathID(c, "groupId"), c.GetHeader(PasswordHeader))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, group.ToResponse())
}

// UpdateGroup godoc
// @Summary Update a group
// @Tags groups
// @Accept json
// @Produce json
// @Param groupId path int true "Group ID"
// @Param body body models.UpdateGroupRequest true "Password and changed fields"
// @Success 200 {object} models.GroupResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /groups/{groupId} [put]
func (gc *GroupController) UpdateGroup(c *gin.Context) {
	var req models.UpdateGroupRequest
	if !bindJSON(c, &req) {
		return
	}

	group, err := gc.groupService.UpdateGroup(c.Request.Context(), pathID(c, "groupId"), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, group.ToResponse())
}

// DeleteGroup godoc
// @Summary Delete a group without posts
// @Tags groups
// @Accept json
// @Produce json
// @Param groupId path int true "Group ID"
// @Param body body models.PasswordRequest true "Group password"
// @Success 200 {object} MessageResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /groups/{groupId} [delete]
func (gc *GroupController) DeleteGroup(c *gin.Context) {
	var req models.PasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := gc.groupService.DeleteGroup(c.Request.Context(), pathID(c, "groupId"), req.Password); err != nil {
		_ = c.Error(withAuthStatus(err, http.StatusForbidden))
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Group deleted successfully"})
}

// VerifyPassword godoc
// @Summary Check a group password
// @Tags groups
// @Accept json
// @Produce json
// @Param groupId path int true "Group ID"
// @Param body body models.PasswordRequest true "Group password"
// @Success 200 {object} MessageResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /groups/{groupId}/verify-password [post]
func (gc *GroupController) VerifyPassword(c *gin.Context) {
	var req models.PasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := gc.groupService.VerifyGroupPassword(c.Request.Context(), pathID(c, "groupId"), req.Password); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Password verified"})
}

// LikeGroup godoc
// @Summary Like a group
// @Tags groups
// @Produce json
// @Param groupId path int true "Group ID"
// @Success 200 {object} LikeResponse
// @Failure 404 {object} ErrorResponse
// @Router /groups/{groupId}/like [post]
func (gc *GroupController) LikeGroup(c *gin.Context) {
	group, err := gc.groupService.LikeGroup(c.Request.Context(), pathID(c, "groupId"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, LikeResponse{Message: "Group liked", ID: group.ID, LikeCount: group.LikesCount})
}

// IsPublic godoc
// @Summary Group visibility
// @Tags groups
// @Produce json
// @Param groupId path int true "Group ID"
// @Success 200 {object} models.VisibilityResponse
// @Failure 404 {object} ErrorResponse
// @Router /groups/{groupId}/is-public [get]
func (gc *GroupController) IsPublic(c *gin.Context) {
	visibility, err := gc.groupService.GetGroupVisibility(c.Request.Context(), pathID(c, "groupId"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, visibility)
}
