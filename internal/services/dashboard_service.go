package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	dbm "gladiadores/internal/models/db_models"
	resp "gladiadores/internal/models/response_models"
	"gladiadores/internal/repositories"
	"gladiadores/pkg/utils"
)

type DashboardService interface {
	BuildDashboard(ctx context.Context, rng resp.TimeRange) (*resp.DashboardReport, error)
}

type dashboardService struct {
	repo repositories.DashboardRepository
}

func NewDashboardService(repo repositories.DashboardRepository) DashboardService {
	return &dashboardService{repo: repo}
}

// normalizeRange ensures sane defaults and ordering
func normalizeRange(r resp.TimeRange) resp.TimeRange {
	out := r
	if out.Interval == "" {
		out.Interval = "day"
	}
	if out.Timezone == "" {
		out.Timezone = utils.DefaultTimezone
	}
	if out.End.IsZero() {
		out.End = time.Now().UTC()
	}
	if out.Start.IsZero() {
		out.Start = out.End.AddDate(0, 0, -30) // last 30 days default
	}
	if out.Start.After(out.End) {
		out.Start, out.End = out.End, out.Start
	}
	return out
}

func toPoints(rows []repositories.BucketSum) resp.CountSeries {
	var out resp.CountSeries
	for _, r := range rows {
		out.Points = append(out.Points, resp.SeriesPoint{Bucket: r.Bucket, Value: r.Sum})
		out.Total += r.Sum
	}
	return out
}

func (s *dashboardService) BuildDashboard(ctx context.Context, rng resp.TimeRange) (*resp.DashboardReport, error) {
	rng = normalizeRange(rng)

	var kpis resp.KPIBlock
	counts := []struct {
		dst *int64
		fn  func() (int64, error)
	}{
		{&kpis.TotalRegistrations, func() (int64, error) { return s.repo.CountTotalRegistrations(ctx) }},
		{&kpis.NewRegistrations, func() (int64, error) { return s.repo.CountNewRegistrations(ctx, rng.Start, rng.End) }},
		{&kpis.TotalAccounts, func() (int64, error) { return s.repo.CountTotalAccounts(ctx) }},
		{&kpis.BronzePassports, func() (int64, error) { return s.repo.CountByLevel(ctx, dbm.PassportBronze) }},
		{&kpis.GoldenPassports, func() (int64, error) { return s.repo.CountByLevel(ctx, dbm.PassportGolden) }},
		{&kpis.StaircaseCompleted, func() (int64, error) { return s.repo.CountStaircaseCompleted(ctx) }},
		{&kpis.PendingDonations, func() (int64, error) { return s.repo.CountDonationsByStatus(ctx, dbm.DonationPending) }},
		{&kpis.PendingVotes, func() (int64, error) { return s.repo.CountVotesByStatus(ctx, dbm.VotePending) }},
		{&kpis.ValidatedVotes, func() (int64, error) { return s.repo.CountVotesByStatus(ctx, dbm.VoteValidated) }},
		{&kpis.UnlockedProvinces, func() (int64, error) { return s.repo.CountUnlockedProvinces(ctx) }},
	}
	for _, c := range counts {
		n, err := c.fn()
		if err != nil {
			return nil, utils.ErrDatabaseError
		}
		*c.dst = n
	}

	totals, err := s.repo.ApprovedDonationTotals(ctx, rng.Start, rng.End)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	kpis.ApprovedDonationsMinor = make(map[string]int64, len(totals))
	for _, t := range totals {
		kpis.ApprovedDonationsMinor[t.Currency] = t.Sum
	}

	// ---------- Series ----------
	regRows, err := s.repo.NewRegistrationsSeries(ctx, rng.Start, rng.End, rng.Interval, rng.Timezone)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	donRows, err := s.repo.ApprovedDonationsSeries(ctx, rng.Start, rng.End, rng.Interval, rng.Timezone)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}

	// ---------- Top provinces ----------
	provRows, err := s.repo.TopProvinces(ctx, 10)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	topProvinces := make([]resp.ProvinceRank, 0, len(provRows))
	for _, r := range provRows {
		topProvinces = append(topProvinces, resp.ProvinceRank{Province: r.Province, Registrations: r.Count})
	}

	// ---------- Recent donations ----------
	donationRows, err := s.repo.RecentDonations(ctx, 10)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	recent := make([]resp.RecentDonation, 0, len(donationRows))
	for _, r := range donationRows {
		id, err := uuid.Parse(r.ID)
		if err != nil {
			return nil, errors.New("invalid donation UUID in recent donations")
		}
		recent = append(recent, resp.RecentDonation{
			ID:          id,
			CreatedAt:   utils.FromUnixSecondsDO(r.CreatedAt),
			AmountMinor: r.AmountMinor,
			Currency:    r.Currency,
			Status:      r.Status,
			DonorName:   firstName(r.FullName),
			Province:    r.Province,
		})
	}

	return &resp.DashboardReport{
		Range:            rng,
		KPIs:             kpis,
		NewRegistrations: toPoints(regRows),
		Donations:        toPoints(donRows),
		TopProvinces:     topProvinces,
		RecentDonations:  recent,
	}, nil
}
