package review

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type CreateReviewRequest struct {
	ListingID int64  `json:"listing_id" validate:"required,gt=0"`
	Comment   string `json:"comment" validate:"required,notblank,max=2000"`
}

type UpdateReviewRequest struct {
	Comment string `json:"comment" validate:"required,notblank,max=2000"`
}

type ListQuery struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}
