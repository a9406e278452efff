package response_models

import "time"

// RegistrationSafeResponse never carries the full cédula or phone.
type RegistrationSafeResponse struct {
	ID             string     `json:"id"`
	FullName       string     `json:"full_name"`
	Cedula         string     `json:"cedula"`
	Phone          string     `json:"phone"`
	Email          string     `json:"email,omitempty"`
	Province       string     `json:"province"`
	Municipality   string     `json:"municipality,omitempty"`
	ReferralCode   string     `json:"referral_code"`
	ReferredBy     string     `json:"referred_by,omitempty"`
	PassportLevel  string     `json:"passport_level"`
	Points         int64      `json:"points"`
	CedulaVerified bool       `json:"cedula_verified"`
	Interests      []string   `json:"interests"`
	VoteStatus     string     `json:"vote_status"`
	CompletedAt    *time.Time `json:"staircase_completed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

type ReferrerPreview struct {
	FirstName string `json:"first_name"`
	Province  string `json:"province"`
	Code      string `json:"code"`
}

type ReferredGladiador struct {
	FirstName     string    `json:"first_name"`
	Province      string    `json:"province"`
	PassportLevel string    `json:"passport_level"`
	JoinedAt      time.Time `json:"joined_at"`
}

type ReferralStatsResponse struct {
	Code      string              `json:"code"`
	InviteURL string              `json:"invite_url"`
	Count     int64               `json:"count"`
	Referrals []ReferredGladiador `json:"referrals"`
}

type LeaderboardEntry struct {
	Rank          int    `json:"rank"`
	FirstName     string `json:"first_name"`
	Province      string `json:"province"`
	PassportLevel string `json:"passport_level"`
	Points        int64  `json:"points"`
}
