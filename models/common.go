package models

type PasswordRequest struct {
	Password string `json:"password" binding:"required"`
}

type PageResponse[T any] struct {
	CurrentPage    int   `json:"currentPage"`
	TotalPages     int   `json:"totalPages"`
	TotalItemCount int64 `json:"totalItemCount"`
	Data           []T   `json:"data"`
}

func NewPageResponse[T any](data []T, total int64, page, pageSize int) PageResponse[T] {
	if data == nil {
		data = []T{}
	}
	totalPages := 0
	if pageSize > 0 {
		totalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return PageResponse[T]{
		CurrentPage:    page,
		TotalPages:     totalPages,
		TotalItemCount: total,
		Data:           data,
	}
}
