package projection

import (
	v1 "github.com/devstats-lab/devstats/internal/api/v1"
)

// popularURI binds GET /api/v1/popular/:field/:days.
type popularURI struct {
	Field string `uri:"field" binding:"required"`
	Days  string `uri:"days" binding:"required"`
}

// popularQuery binds the optional row limit.
type popularQuery struct {
	Limit *int `form:"limit"`
}

// countQuery binds the optional filter of GET /api/v1/count/:days.
type countQuery struct {
	Field string `form:"field"`
	Value string `form:"value"`
}

// infoURI binds GET /api/v1/info/:field/:value.
type infoURI struct {
	Field string `uri:"field" binding:"required"`
	Value string `uri:"value" binding:"required"`
}

// PopularResponse wraps a popularity result.
type PopularResponse struct {
	Result *v1.AggregateResult `json:"result"`
}

// CountResponse is the body of a count query.
type CountResponse struct {
	Total int64 `json:"total"`
}
