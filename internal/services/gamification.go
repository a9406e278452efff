package services

import (
	"gladiadores/config"
	"gladiadores/internal/models/db_models"
	resp "gladiadores/internal/models/response_models"
)

// Progress is the snapshot of a registration that points and levels are derived from.
type Progress struct {
	StepsCompleted    int
	StaircaseComplete bool
	Referrals         int64
	ApprovedDonations int64
	VoteValidated     bool
	CurrentLevel      db_models.PassportLevel
}

type GamificationRules struct {
	cfg config.GamificationConfig
}

func NewGamificationRules(cfg config.GamificationConfig) GamificationRules {
	return GamificationRules{cfg: cfg}
}

// Points is recomputed from scratch so re-evaluating twice never double counts.
func (g GamificationRules) Points(p Progress) int64 {
	points := g.cfg.RegistrationPoints
	points += int64(p.StepsCompleted) * g.cfg.StepPoints
	points += p.Referrals * g.cfg.ReferralPoints
	points += p.ApprovedDonations * g.cfg.DonationPoints
	if p.VoteValidated {
		points += g.cfg.VotePoints
	}
	return points
}

func (g GamificationRules) isBronze(p Progress) bool {
	return p.StaircaseComplete && p.Referrals >= g.cfg.BronzeReferrals
}

// Level never returns anything below CurrentLevel.
func (g GamificationRules) Level(p Progress) db_models.PassportLevel {
	level := db_models.PassportNone
	bronze := g.isBronze(p)
	if bronze {
		level = db_models.PassportBronze
	}
	if p.ApprovedDonations > 0 || (bronze && (p.Referrals >= g.cfg.GoldenReferrals || p.VoteValidated)) {
		level = db_models.PassportGolden
	}
	if p.CurrentLevel.Rank() > level.Rank() {
		return p.CurrentLevel
	}
	return level
}

// NextLevel describes what is missing for the next tier; nil once golden.
func (g GamificationRules) NextLevel(p Progress) *resp.NextLevel {
	switch g.Level(p) {
	case db_models.PassportGolden:
		return nil
	case db_models.PassportBronze:
		return &resp.NextLevel{
			Level:           string(db_models.PassportGolden),
			ReferralsNeeded: max(g.cfg.GoldenReferrals-p.Referrals, 0),
			DonationUnlocks: true,
		}
	default:
		return &resp.NextLevel{
			Level:             string(db_models.PassportBronze),
			ReferralsNeeded:   max(g.cfg.BronzeReferrals-p.Referrals, 0),
			StaircaseRequired: !p.StaircaseComplete,
			DonationUnlocks:   true,
		}
	}
}

func (g GamificationRules) DefaultCIDPThreshold() int64 {
	return g.cfg.CIDPThreshold
}

func CIDPReached(registrations, threshold int64) bool {
	return threshold > 0 && registrations >= threshold
}

// CIDPProgress is the percentage towards the threshold, capped at 100.
func CIDPProgress(registrations, threshold int64) float64 {
	if threshold <= 0 {
		return 100
	}
	pct := float64(registrations) * 100 / float64(threshold)
	if pct > 100 {
		return 100
	}
	return pct
}
