package domain

// Review is a single user review as served by the reviews service.
type Review struct {
	ID          string  `json:"reviewId"`
	MovieInfoID string  `json:"movieInfoId"`
	Comment     string  `json:"comment"`
	Rating      float64 `json:"rating"`
}
