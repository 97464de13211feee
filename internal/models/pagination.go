package models

// Pagination is the paging metadata attached to list responses
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// HasPrev reports whether a previous page exists
func (p *Pagination) HasPrev() bool {
	return p != nil && p.Page > 1
}

// HasNext reports whether a next page exists
func (p *Pagination) HasNext() bool {
	return p != nil && p.Page < p.Pages
}

// ListQuery carries the paging, sorting and filtering parameters of a list call
type ListQuery struct {
	Page     int
	Limit    int
	Sort     string
	Search   string
	Type     string
	MinPrice string
	MaxPrice string
	Bedrooms string
}
