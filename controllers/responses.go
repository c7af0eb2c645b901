package controllers

import "jogakzip/models"

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

type LikeResponse struct {
	Message   string `json:"message"`
	ID        uint   `json:"id"`
	LikeCount int64  `json:"likeCount"`
}

// Concrete page types for the API docs.
type (
	GroupPage   = models.PageResponse[models.GroupResponse]
	PostPage    = models.PageResponse[models.PostResponse]
	CommentPage = models.PageResponse[models.CommentResponse]
)
