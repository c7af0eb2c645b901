package models

import (
	"time"

	"gorm.io/datatypes"
)

type Post struct {
	ID           uint                        `json:"id" gorm:"primaryKey"`
	GroupID      uint                        `json:"groupId" gorm:"not null;index"`
	Group        *Group                      `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;"`
	Nickname     string                      `json:"nickname" gorm:"not null"`
	Title        string                      `json:"title" gorm:"not null;index"`
	Content      string                      `json:"content" gorm:"type:text;not null"`
	ImageURL     string                      `json:"imageUrl"`
	Tags         datatypes.JSONSlice[string] `json:"tags"`
	Location     string                      `json:"location"`
	Moment       time.Time                   `json:"moment" gorm:"not null"`
	IsPublic     bool                        `json:"isPublic" gorm:"not null"`
	Password     string                      `json:"-" gorm:"not null"`
	LikesCount   int64                       `json:"likeCount" gorm:"not null;default:0"`
	CommentCount int64                       `json:"commentCount" gorm:"not null;default:0"`
	CreatedAt    time.Time                   `json:"createdAt" gorm:"index"`
	UpdatedAt    time.Time                   `json:"updatedAt"`
	Comments     []Comment                   `json:"-" gorm:"foreignKey:PostID"`
}

type CreatePostRequest struct {
	Nickname string    `json:"nickname" binding:"required"`
	Title    string    `json:"title" binding:"required,max=100"`
	Content  string    `json:"content" binding:"required"`
	Moment   time.Time `json:"moment" binding:"required"`
	IsPublic *bool     `json:"isPublic" binding:"required"`
	Password string    `json:"password" binding:"required,min=6"`
	ImageURL string    `json:"image"`
	Tags     []string  `json:"tags"`
	Location string    `json:"location"`
}

type UpdatePostRequest struct {
	Password string     `json:"password" binding:"required"`
	Nickname *string    `json:"nickname"`
	Title    *string    `json:"title" binding:"omitempty,max=100"`
	Content  *string    `json:"content"`
	ImageURL *string    `json:"image"`
	Tags     *[]string  `json:"tags"`
	Location *string    `json:"location"`
	Moment   *time.Time `json:"moment"`
	IsPublic *bool      `json:"isPublic"`
}

type PostListQuery struct {
	SortBy   string `form:"sortBy"`
	Keyword  string `form:"keyword"`
	Page     int    `form:"page" binding:"omitempty,min=1,max=1000000"`
	PageSize int    `form:"pageSize" binding:"omitempty,min=1,max=100"`
}

type PostResponse struct {
	ID           uint      `json:"id"`
	GroupID      uint      `json:"groupId"`
	Nickname     string    `json:"nickname"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	ImageURL     string    `json:"imageUrl"`
	Tags         []string  `json:"tags"`
	Location     string    `json:"location"`
	Moment       time.Time `json:"moment"`
	IsPublic     bool      `json:"isPublic"`
	LikeCount    int64     `json:"likeCount"`
	CommentCount int64     `json:"commentCount"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (p *Post) ToResponse() PostResponse {
	tags := []string(p.Tags)
	if tags == nil {
		tags = []string{}
	}
	return PostResponse{
		ID:           p.ID,
		GroupID:      p.GroupID,
		Nickname:     p.Nickname,
		Title:        p.Title,
		Content:      p.Content,
		ImageURL:     p.ImageURL,
		Tags:         tags,
		Location:     p.Location,
		Moment:       p.Moment,
		IsPublic:     p.IsPublic,
		LikeCount:    p.LikesCount,
		CommentCount: p.CommentCount,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}
