package models

import (
	"time"
)

type Group struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"not null;index"`
	ImageURL    string    `json:"imageUrl"`
	Description string    `json:"introduction" gorm:"type:text"`
	IsPublic    bool      `json:"isPublic" gorm:"not null;index"`
	Password    string    `json:"-" gorm:"not null"`
	LikesCount  int64     `json:"likeCount" gorm:"not null;default:0"`
	PostCount   int64     `json:"postCount" gorm:"not null;default:0"`
	BadgeCount  int64     `json:"badgeCount" gorm:"not null;default:0"`
	CreatedAt   time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Posts       []Post    `json:"-" gorm:"foreignKey:GroupID"`
}

type CreateGroupRequest struct {
	Name        string `json:"groupName" binding:"required"`
	Password    string `json:"password" binding:"required,min=6"`
	IsPublic    *bool  `json:"isPublic" binding:"required"`
	ImageURL    string `json:"image"`
	Description string `json:"description"`
}

// UpdateGroupRequest uses pointers so an omitted field can be told apart
// from one explicitly set to its zero value.
type UpdateGroupRequest struct {
	Password    string  `json:"password" binding:"required"`
	Name        *string `json:"groupName"`
	ImageURL    *string `json:"image"`
	Description *string `json:"description"`
	IsPublic    *bool   `json:"isPublic"`
}

type GroupListQuery struct {
	SortBy   string `form:"sortBy"`
	Keyword  string `form:"keyword"`
	IsPublic *bool  `form:"isPublic"`
	Page     int    `form:"page" binding:"omitempty,min=1,max=1000000"`
	PageSize int    `form:"pageSize" binding:"omitempty,min=1,max=100"`
}

type GroupResponse struct {
	ID           uint      `json:"id"`
	Name         string    `json:"name"`
	ImageURL     string    `json:"imageUrl"`
	IsPublic     bool      `json:"isPublic"`
	LikeCount    int64     `json:"likeCount"`
	PostCount    int64     `json:"postCount"`
	BadgeCount   int64     `json:"badgeCount"`
	Introduction string    `json:"introduction"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type VisibilityResponse struct {
	ID       uint `json:"id"`
	IsPublic bool `json:"isPublic"`
}

func (g *Group) ToResponse() GroupResponse {
	return GroupResponse{
		ID:           g.ID,
		Name:         g.Name,
		ImageURL:     g.ImageURL,
		IsPublic:     g.IsPublic,
		LikeCount:    g.LikesCount,
		PostCount:    g.PostCount,
		BadgeCount:   g.BadgeCount,
		Introduction: g.Description,
		CreatedAt:    g.CreatedAt,
		UpdatedAt:    g.UpdatedAt,
	}
}
