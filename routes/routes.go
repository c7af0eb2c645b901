package routes

import (
	"net/http"

	"jogakzip/controllers"
	"jogakzip/handlers"
	"jogakzip/middleware"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, groupController *controllers.GroupController, postController *controllers.PostController, commentController *controllers.CommentController, imageController *controllers.ImageController, w *handlers.WebSocketHandler) {
	controllers.RegisterValidation()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.POST("/image", imageController.UploadImage)

		api.POST("/groups", groupController.CreateGroup)
		api.GET("/groups", groupController.GetGroups)

		group := api.Group("/groups/:groupId")
		group.Use(middleware.RequireID("groupId"))
		{
			group.GET("", groupController.GetGroup)
			group.PUT("", groupController.UpdateGroup)
			group.DELETE("", groupController.DeleteGroup)
			group.POST("/verify-password", groupController.VerifyPassword)
			group.POST("/like", groupController.LikeGroup)
			group.GET("/is-public", groupController.IsPublic)

			group.POST("/posts", postController.CreatePost)
			group.GET("/posts", postController.GetGroupPosts)

			if w != nil {
				group.GET("/ws", w.HandleGroupFeed)
			}
		}

		post := api.Group("/posts/:postId")
		post.Use(middleware.RequireID("postId"))
		{
			post.GET("", postController.GetPost)
			post.PUT("", postController.UpdatePost)
			post.DELETE("", postController.DeletePost)
			post.POST("/verify-password", postController.VerifyPassword)
			post.POST("/like", postController.LikePost)
			post.GET("/is-public", postController.IsPublic)

			post.POST("/comments", commentController.CreateComment)
			post.GET("/comments", commentController.GetPostComments)
		}

		comment := api.Group("/comments/:commentId")
		comment.Use(middleware.RequireID("commentId"))
		{
			comment.GET("", commentController.GetComment)
			comment.PUT("", commentController.UpdateComment)
			comment.DELETE("", commentController.DeleteComment)
			comment.POST("/verify-password", commentController.VerifyPassword)
		}
	}
}
