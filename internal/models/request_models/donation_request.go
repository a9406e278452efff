package request_models

type CreateDonationForm struct {
	AmountMinor int64  `form:"amount_minor" binding:"required,gt=0"`
	Currency    string `form:"currency" binding:"required,oneof=DOP USD"`
	Note        string `form:"note" binding:"omitempty,max=280"`
}

type RejectRequest struct {
	Reason string `json:"reason" binding:"required,min=3,max=280"`
}

type ReviewVoteRequest struct {
	Approve bool   `json:"approve"`
	Reason  string `json:"reason" binding:"omitempty,max=280"`
}
