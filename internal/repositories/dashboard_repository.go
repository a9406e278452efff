package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	dbm "gladiadores/internal/models/db_models"
)

type DashboardRepository interface {
	// KPIs / counts
	CountTotalRegistrations(ctx context.Context) (int64, error)
	CountNewRegistrations(ctx context.Context, start, end time.Time) (int64, error)
	CountTotalAccounts(ctx context.Context) (int64, error)
	CountByLevel(ctx context.Context, level dbm.PassportLevel) (int64, error)
	CountStaircaseCompleted(ctx context.Context) (int64, error)
	CountDonationsByStatus(ctx context.Context, status dbm.DonationStatus) (int64, error)
	CountVotesByStatus(ctx context.Context, status dbm.VoteStatus) (int64, error)
	CountUnlockedProvinces(ctx context.Context) (int64, error)
	ApprovedDonationTotals(ctx context.Context, start, end time.Time) ([]CurrencySum, error)

	// Time series
	NewRegistrationsSeries(ctx context.Context, start, end time.Time, interval, tz string) ([]BucketSum, error)
	ApprovedDonationsSeries(ctx context.Context, start, end time.Time, interval, tz string) ([]BucketSum, error)

	TopProvinces(ctx context.Context, limit int) ([]ProvinceCount, error)
	RecentDonations(ctx context.Context, limit int) ([]RecentDonationRow, error)
}

type dashboardRepository struct {
	db *gorm.DB
}

func NewDashboardRepository(db *gorm.DB) DashboardRepository {
	return &dashboardRepository{db: db}
}

// ---------- Row helpers ----------
type BucketSum struct {
	Bucket time.Time `gorm:"column:bucket"`
	Sum    int64     `gorm:"column:sum"`
}

type CurrencySum struct {
	Currency string `gorm:"column:currency"`
	Sum      int64  `gorm:"column:sum"`
}

type RecentDonationRow struct {
	ID          string `gorm:"column:id"`
	CreatedAt   int64  `gorm:"column:created_at"`
	AmountMinor int64  `gorm:"column:amount_minor"`
	Currency    string `gorm:"column:currency"`
	Status      string `gorm:"column:status"`
	FullName    string `gorm:"column:full_name"`
	Province    string `gorm:"column:province"`
}

// ---------- Helpers ----------

// dateTrunc buckets a column holding UNIX seconds, e.g.
// date_trunc('day', timezone('America/Santo_Domingo', to_timestamp(created_at))).
// Callers pass interval and tz as bind args, in that order.
func dateTrunc(unixColumn string) string {
	return "date_trunc(?, timezone(?, to_timestamp(" + unixColumn + ")))"
}

// ---------- Counts ----------
func (r *dashboardRepository) CountTotalRegistrations(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&dbm.Registration{}).Count(&n).Error
	return n, err
}

func (r *dashboardRepository) CountNewRegistrations(ctx context.Context, start, end time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&dbm.Registration{}).
		Where("created_at BETWEEN ? AND ?", start.Unix(), end.Unix()).
		Count(&n).Error
	return n, err
}

func (r *dashboardRepository) CountTotalAccounts(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&dbm.Account{}).Count(&n).Error
	return n, err
}

func (r *dashboardRepository) CountByLevel(ctx context.Context, level dbm.PassportLevel) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&dbm.Registration{}).
		Where("passport_level = ?", level).
		Count(&n).Error
	return n, err
}

func (r *dashboardRepository) CountStaircaseCompleted(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&dbm.Registration{}).
		Where("staircase_completed_at IS NOT NULL").
		Count(&n).Error
	return n, err
}

func (r *dashboardRepository) CountDonationsByStatus(ctx context.Context, status dbm.DonationStatus) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&dbm.Donation{}).
		Where("status = ?", status).
		Count(&n).Error
	return n, err
}

func (r *dashboardRepository) CountVotesByStatus(ctx context.Context, status dbm.VoteStatus) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&dbm.Registration{}).
		Where("vote_status = ?", status).
		Count(&n).Error
	return n, err
}

func (r *dashboardRepository) CountUnlockedProvinces(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&dbm.ProvinceCounter{}).
		Where("cidp_unlocked_at IS NOT NULL").
		Count(&n).Error
	return n, err
}

func (r *dashboardRepository) ApprovedDonationTotals(ctx context.Context, start, end time.Time) ([]CurrencySum, error) {
	var rows []CurrencySum
	err := r.db.WithContext(ctx).
		Model(&dbm.Donation{}).
		Select("currency, SUM(amount_minor) AS sum").
		Where("status = ?", dbm.DonationApproved).
		Where("reviewed_at BETWEEN ? AND ?", start.Unix(), end.Unix()).
		Group("currency").
		Find(&rows).Error
	return rows, err
}

// ---------- Series ----------
func (r *dashboardRepository) NewRegistrationsSeries(ctx context.Context, start, end time.Time, interval, tz string) ([]BucketSum, error) {
	var rows []BucketSum
	tx := r.db.WithContext(ctx).
		Table("registrations").
		Select(dateTrunc("created_at")+" AS bucket, COUNT(*) AS sum", interval, tz).
		Where("deleted_at IS NULL").
		Where("created_at BETWEEN ? AND ?", start.Unix(), end.Unix()).
		Group("bucket").
		Order("bucket ASC")
	err := tx.Find(&rows).Error
	return rows, err
}

func (r *dashboardRepository) ApprovedDonationsSeries(ctx context.Context, start, end time.Time, interval, tz string) ([]BucketSum, error) {
	var rows []BucketSum
	tx := r.db.WithContext(ctx).
		Table("donations").
		Select(dateTrunc("reviewed_at")+" AS bucket, COUNT(*) AS sum", interval, tz).
		Where("deleted_at IS NULL").
		Where("status = ?", dbm.DonationApproved).
		Where("reviewed_at BETWEEN ? AND ?", start.Unix(), end.Unix()).
		Group("bucket").
		Order("bucket ASC")
	err := tx.Find(&rows).Error
	return rows, err
}

func (r *dashboardRepository) TopProvinces(ctx context.Context, limit int) ([]ProvinceCount, error) {
	var rows []ProvinceCount
	err := r.db.WithContext(ctx).
		Model(&dbm.ProvinceCounter{}).
		Select("province, registrations AS count").
		Order("registrations DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *dashboardRepository) RecentDonations(ctx context.Context, limit int) ([]RecentDonationRow, error) {
	var rows []RecentDonationRow
	err := r.db.WithContext(ctx).
		Table("donations d").
		Select(`
			d.id,
			d.created_at,
			d.amount_minor,
			d.currency,
			d.status,
			r.full_name,
			r.province`).
		Joins("LEFT JOIN registrations r ON r.id = d.registration_id").
		Where("d.deleted_at IS NULL").
		Order("d.created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
