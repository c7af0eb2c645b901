package services

import "jogakzip/models"

func GroupReadable(group *models.Group) bool {
	return group != nil && group.IsPublic
}

// PostReadable requires both the post and its group to be public.
func PostReadable(post *models.Post, group *models.Group) bool {
	return post != nil && post.IsPublic && GroupReadable(group)
}

// CommentReadable follows the parent post; comments carry no flag of their own.
func CommentReadable(post *models.Post, group *models.Group) bool {
	return PostReadable(post, group)
}
