package response_models

import (
	"time"

	"github.com/google/uuid"
)

type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	// "day" | "week" | "month"
	Interval string `json:"interval"`
	// Timezone used for bucketing, America/Santo_Domingo unless overridden.
	Timezone string `json:"timezone,omitempty"`
}

type KPIBlock struct {
	TotalRegistrations int64 `json:"total_registrations"`
	NewRegistrations   int64 `json:"new_registrations"`
	TotalAccounts      int64 `json:"total_accounts"`
	BronzePassports    int64 `json:"bronze_passports"`
	GoldenPassports    int64 `json:"golden_passports"`
	StaircaseCompleted int64 `json:"staircase_completed"`
	PendingDonations   int64 `json:"pending_donations"`
	PendingVotes       int64 `json:"pending_votes"`
	ValidatedVotes     int64 `json:"validated_votes"`
	UnlockedProvinces  int64 `json:"unlocked_provinces"`

	// Approved donations in the range, in minor units per currency.
	ApprovedDonationsMinor map[string]int64 `json:"approved_donations_minor"`
}

type SeriesPoint struct {
	Bucket time.Time `json:"bucket"`
	Value  int64     `json:"value"`
}

type CountSeries struct {
	Points []SeriesPoint `json:"points"`
	Total  int64         `json:"total"`
}

type ProvinceRank struct {
	Province      string `json:"province"`
	Registrations int64  `json:"registrations"`
}

type RecentDonation struct {
	ID          uuid.UUID `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	AmountMinor int64     `json:"amount_minor"`
	Currency    string    `json:"currency"`
	Status      string    `json:"status"`
	DonorName   string    `json:"donor_name"`
	Province    string    `json:"province"`
}

type DashboardReport struct {
	Range            TimeRange        `json:"range"`
	KPIs             KPIBlock         `json:"kpis"`
	NewRegistrations CountSeries      `json:"new_registrations"`
	Donations        CountSeries      `json:"approved_donations"`
	TopProvinces     []ProvinceRank   `json:"top_provinces"`
	RecentDonations  []RecentDonation `json:"recent_donations"`
}
