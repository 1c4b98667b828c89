package types

// Pointers distinguish a missing field from an empty one.

type CreateSummaryRequest struct {
	URL *string `json:"url" validate:"required,max=2083,urlscheme,urlhost"`
}

type UpdateSummaryRequest struct {
	URL     *string `json:"url" validate:"required,max=2083,urlscheme,urlhost"`
	Summary *string `json:"summary" validate:"required"`
}

// SummaryRef is returned by create, update and delete.
type SummaryRef struct {
	ID  int    `json:"id"`
	URL string `json:"url"`
}

type ErrorResponse struct {
	Detail any `json:"detail"`
}
