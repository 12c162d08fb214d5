package domain

// PageResult 分页结果
type PageResult[T any] struct {
	Content       []T   `json:"content"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
}

// TotalPages 总页数
func (p PageResult[T]) TotalPages() int64 {
	if p.Size <= 0 {
		return 0
	}
	size := int64(p.Size)
	return (p.TotalElements + size - 1) / size
}
