package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gladiadores/config"
	"gladiadores/internal/models/db_models"
)

func testRules() GamificationRules {
	return NewGamificationRules(config.GamificationConfig{
		RegistrationPoints: 10,
		StepPoints:         5,
		ReferralPoints:     20,
		VotePoints:         50,
		DonationPoints:     100,
		BronzeReferrals:    3,
		GoldenReferrals:    10,
		CIDPThreshold:      500,
		OCRMaxDistance:     2,
	})
}

func TestPoints(t *testing.T) {
	rules := testRules()

	assert.Equal(t, int64(10), rules.Points(Progress{}))
	assert.Equal(t, int64(220), rules.Points(Progress{
		StepsCompleted:    4,
		Referrals:         2,
		ApprovedDonations: 1,
		VoteValidated:     true,
	}))

	p := Progress{StepsCompleted: 2, Referrals: 1}
	assert.Equal(t, rules.Points(p), rules.Points(p), "points are a pure function of progress")
}

func TestLevel(t *testing.T) {
	rules := testRules()

	tests := []struct {
		name string
		in   Progress
		want db_models.PassportLevel
	}{
		{"fresh registration", Progress{}, db_models.PassportNone},
		{"referrals without staircase", Progress{Referrals: 5}, db_models.PassportNone},
		{"staircase without referrals", Progress{StaircaseComplete: true, Referrals: 2}, db_models.PassportNone},
		{"bronze", Progress{StaircaseComplete: true, Referrals: 3}, db_models.PassportBronze},
		{"golden by referrals", Progress{StaircaseComplete: true, Referrals: 10}, db_models.PassportGolden},
		{"golden by vote", Progress{StaircaseComplete: true, Referrals: 3, VoteValidated: true}, db_models.PassportGolden},
		{"vote alone is not enough", Progress{VoteValidated: true}, db_models.PassportNone},
		{"golden by donation", Progress{ApprovedDonations: 1}, db_models.PassportGolden},
		{"never goes down", Progress{CurrentLevel: db_models.PassportGolden}, db_models.PassportGolden},
		{"bronze kept after referral loss", Progress{StaircaseComplete: true, Referrals: 1, CurrentLevel: db_models.PassportBronze}, db_models.PassportBronze},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, rules.Level(tc.in))
		})
	}
}

func TestNextLevel(t *testing.T) {
	rules := testRules()

	next := rules.NextLevel(Progress{Referrals: 1})
	require.NotNil(t, next)
	assert.Equal(t, "bronze", next.Level)
	assert.Equal(t, int64(2), next.ReferralsNeeded)
	assert.True(t, next.StaircaseRequired)

	next = rules.NextLevel(Progress{StaircaseComplete: true, Referrals: 4})
	require.NotNil(t, next)
	assert.Equal(t, "golden", next.Level)
	assert.Equal(t, int64(6), next.ReferralsNeeded)
	assert.False(t, next.StaircaseRequired)

	assert.Nil(t, rules.NextLevel(Progress{ApprovedDonations: 1}))
}

func TestCIDP(t *testing.T) {
	assert.True(t, CIDPReached(500, 500))
	assert.False(t, CIDPReached(499, 500))
	assert.False(t, CIDPReached(10, 0))

	assert.InDelta(t, 50.0, CIDPProgress(250, 500), 0.001)
	assert.InDelta(t, 100.0, CIDPProgress(600, 500), 0.001)
	assert.InDelta(t, 100.0, CIDPProgress(0, 0), 0.001)
}
