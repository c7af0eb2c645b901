package controllers

import (
	"net/http"

	"jogakzip/models"
	"jogakzip/services"

	"github.com/gin-gonic/gin"
)

type CommentController struct {
	commentService *services.CommentService
}

func NewCommentController(commentService *services.CommentService) *CommentController {
	return &CommentController{commentService: commentService}
}

// CreateComment godoc
// @Summary Comment on a post
// @Tags comments
// @Accept json
// @Produce json
// @Param postId path int true "Post ID"
// @Param body body models.CreateCommentRequest true "Comment"
// @Success 201 {object} models.CommentResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /posts/{postId}/comments [post]
func (cc *CommentController) CreateComment(c *gin.Context) {
	var req models.CreateCommentRequest
	if !bindJSON(c, &req) {
		return
	}

	comment, err := cc.commentService.CreateComment(c.Request.Context(), pathID(c, "postId"), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, comment.ToResponse())
}

// GetPostComments godoc
// @Summary List comments of a readable post, oldest first
// @Tags comments
// @Produce json
// @Param postId path int true "Post ID"
// @Param page query int false "Page, from 1"
// @Param pageSize query int false "Page size, up to 100"
// @Success 200 {object} CommentPage
// @Failure 404 {object} ErrorResponse
// @Router /posts/{postId}/comments [get]
func (cc *CommentController) GetPostComments(c *gin.Context) {
	var query models.CommentListQuery
	if !bindQuery(c, &query) {
		return
	}

	page, err := cc.commentService.ListComments(c.Request.Context(), pathID(c, "postId"), &query)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// GetComment godoc
// @Summary Comment detail
// @Description Comments of a post that is not readable need the comment password in X-Resource-Password.
// @Tags comments
// @Produce json
// @Param commentId path int true "Comment ID"
// @Success 200 {object} models.CommentResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /comments/{commentId} [get]
func (cc *CommentController) GetComment(c *gin.Context) {
	comment, err := cc.commentService.GetComment(c.Request.Context(), pathID(c, "commentId"), c.GetHeader(PasswordHeader))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, comment.ToResponse())
}

// UpdateComment godoc
// @Summary Update a comment
// @Tags comments
// @Accept json
// @Produce json
// @Param commentId path int true "Comment ID"
// @Param body body models.UpdateCommentRequest true "Password and changed fields"
// @Success 200 {object} models.CommentResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /comments/{commentId} [put]
func (cc *CommentController) UpdateComment(c *gin.Context) {
	var req models.UpdateCommentRequest
	if !bindJSON(c, &req) {
		return
	}

	comment, err := cc.commentService.UpdateComment(c.Request.Context(), pathID(c, "commentId"), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, comment.ToResponse())
}

// DeleteComment godoc
// @Summary Delete a comment
// @Tags comments
// @Accept json
// @Produce json
// @Param commentId path int true "Comment ID"
// @Param body body models.PasswordRequest true "Comment password"
// @Success 200 {object} MessageResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /comments/{commentId} [delete]
func (cc *CommentController) DeleteComment(c *gin.Context) {
	var req models.PasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := cc.commentService.DeleteComment(c.Request.Context(), pathID(c, "commentId"), req.Password); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Comment deleted successfully"})
}

// VerifyPassword godoc
// @Summary Check a comment password
// @Tags comments
// @Accept json
// @Produce json
// @Param commentId path int true "Comment ID"
// @Param body body models.PasswordRequest true "Comment password"
// @Success 200 {object} MessageResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /comments/{commentId}/verify-password [post]
func (cc *CommentController) VerifyPassword(c *gin.Context) {
	var req models.PasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := cc.commentService.VerifyCommentPassword(c.Request.Context(), pathID(c, "commentId"), req.Password); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Password verified"})
}
