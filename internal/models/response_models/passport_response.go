package response_models

type NextLevel struct {
	Level             string `json:"level"`
	ReferralsNeeded   int64  `json:"referrals_needed"`
	StaircaseRequired bool   `json:"staircase_required"`
	DonationUnlocks   bool   `json:"donation_unlocks"`
}

type PassportResponse struct {
	FullName      string     `json:"full_name"`
	Province      string     `json:"province"`
	Level         string     `json:"level"`
	Points        int64      `json:"points"`
	Referrals     int64      `json:"referrals"`
	ReferralCode  string     `json:"referral_code"`
	InviteURL     string     `json:"invite_url"`
	VoteValidated bool       `json:"vote_validated"`
	Next          *NextLevel `json:"next,omitempty"`
}
