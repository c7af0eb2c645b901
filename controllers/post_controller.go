package controllers

import (
	"net/http"

	"jogakzip/models"
	"jogakzip/services"

	"github.com/gin-gonic/gin"
)

type PostController struct {
	postService *services.PostService
}

func NewPostController(postService *services.PostService) *PostController {
	return &PostController{postService: postService}
}

// CreatePost godoc
// @Summary Post a memory to a group
// @Tags posts
// @Accept json
// @Produce json
// @Param groupId path int true "Group ID"
// @Param body body models.CreatePostRequest true "Post"
// @Success 201 {object} models.PostResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /groups/{groupId}/posts [post]
func (pc *PostController) CreatePost(c *gin.Context) {
	var req models.CreatePostRequest
	if !bindJSON(c, &req) {
		return
	}

	post, err := pc.postService.CreatePost(c.Request.Context(), pathID(c, "groupId"), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, post.ToResponse())
}

// GetGroupPosts godoc
// @Summary List readable posts of a group
// @Tags posts
// @Produce json
// @Param groupId path int true "Group ID"
// @Param sortBy query string false "latest | mostCommented | mostLiked"
// @Param keyword query string false "Substring of the title"
// @Param page query int false "Page, from 1"
// @Param pageSize query int false "Page size, up to 100"
// @Success 200 {object} PostPage
// @Failure 404 {object} ErrorResponse
// @Router /groups/{groupId}/posts [get]
func (pc *PostController) GetGroupPosts(c *gin.Context) {
	var query models.PostListQuery
	if !bindQuery(c, &query) {
		return
	}

	page, err := pc.postService.ListPosts(c.Request.Context(), pathID(c, "groupId"), &query)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// GetPost godoc
// @Summary Post detail
// @Description Posts that are private, or live in a private group, need the post password in X-Resource-Password.
// @Tags posts
// @Produce json
// @Param postId path int true "Post ID"
// @Success 200 {object} models.PostResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /posts/{postId} [get]
func (pc *PostController) GetPost(c *gin.Context) {
	post, err := pc.postService.GetPost(c.Request.Context(), pathID(c, "postId"), c.GetHeader(PasswordHeader))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, post.ToResponse())
}

// UpdatePost godoc
// @Summary Update a post
// @Tags posts
// @Accept json
// @Produce json
// @Param postId path int true "Post ID"
// @Param body body models.UpdatePostRequest true "Password and changed fields"
// @Success 200 {object} models.PostResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /posts/{postId} [put]
func (pc *PostController) UpdatePost(c *gin.Context) {
	var req models.UpdatePostRequest
	if !bindJSON(c, &req) {
		return
	}

	post, err := pc.postService.UpdatePost(c.Request.Context(), pathID(c, "postId"), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, post.ToResponse())
}

// DeletePost godoc
// @Summary Delete a post and its comments
// @Tags posts
// @Accept json
// @Produce json
// @Param postId path int true "Post ID"
// @Param body body models.PasswordRequest true "Post password"
// @Success 200 {object} MessageResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /posts/{postId} [delete]
func (pc *PostController) DeletePost(c *gin.Context) {
	var req models.PasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := pc.postService.DeletePost(c.Request.Context(), pathID(c, "postId"), req.Password); err != nil {
		_ = c.Error(withAuthStatus(err, http.StatusForbidden))
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Post deleted successfully"})
}

// VerifyPassword godoc
// @Summary Check a post password
// @Tags posts
// @Accept json
// @Produce json
// @Param postId path int true "Post ID"
// @Param body body models.PasswordRequest true "Post password"
// @Success 200 {object} MessageResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /posts/{postId}/verify-password [post]
func (pc *PostController) VerifyPassword(c *gin.Context) {
	var req models.PasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := pc.postService.VerifyPostPassword(c.Request.Context(), pathID(c, "postId"), req.Password); err != nil {
		_ = c.Error(withAuthStatus(err, http.StatusForbidden))
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Password verified"})
}

// LikePost godoc
// @Summary Like a post
// @Tags posts
// @Produce json
// @Param postId path int true "Post ID"
// @Success 200 {object} LikeResponse
// @Failure 404 {object} ErrorResponse
// @Router /posts/{postId}/like [post]
func (pc *PostController) LikePost(c *gin.Context) {
	post, err := pc.postService.LikePost(c.Request.Context(), pathID(c, "postId"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, LikeResponse{Message: "Post liked", ID: post.ID, LikeCount: post.LikesCount})
}

// IsPublic godoc
// @Summary Effective post visibility (post and group both public)
// @Tags posts
// @Produce json
// @Param postId path int true "Post ID"
// @Success 200 {object} models.VisibilityResponse
// @Failure 404 {object} ErrorResponse
// @Router /posts/{postId}/is-public [get]
func (pc *PostController) IsPublic(c *gin.Context) {
	visibility, err := pc.postService.GetPostVisibility(c.Request.Context(), pathID(c, "postId"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, visibility)
}
