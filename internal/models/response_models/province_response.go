package response_models

import "time"

type ProvinceCounterResponse struct {
	Province       string     `json:"province"`
	Registrations  int64      `json:"registrations"`
	CIDPThreshold  int64      `json:"cidp_threshold"`
	CIDPProgress   float64    `json:"cidp_progress_pct"`
	CIDPUnlocked   bool       `json:"cidp_unlocked"`
	CIDPUnlockedAt *time.Time `json:"cidp_unlocked_at,omitempty"`
}

type IntegrityMap struct {
	TotalRegistrations int64                     `json:"total_registrations"`
	UnlockedProvinces  int                       `json:"unlocked_provinces"`
	Provinces          []ProvinceCounterResponse `json:"provinces"`
}
