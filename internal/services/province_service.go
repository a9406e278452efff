package services

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"gladiadores/internal/models/db_models"
	resp "gladiadores/internal/models/response_models"
	"gladiadores/internal/repositories"
	"gladiadores/pkg/utils"
)

type ProvinceServiceInterface interface {
	ListCounters(ctx context.Context) ([]resp.ProvinceCounterResponse, error)
	GetCounter(ctx context.Context, name string) (*resp.ProvinceCounterResponse, error)
	IntegrityMap(ctx context.Context) (*resp.IntegrityMap, error)
	SetThreshold(ctx context.Context, name string, threshold int64) (*resp.ProvinceCounterResponse, error)
	// Reconcile recounts registrations per province and returns how many counters drifted.
	Reconcile(ctx context.Context) (int, error)
	Seed(ctx context.Context) error
}

type ProvinceService struct {
	provinceRepo repositories.ProvinceRepository
	hub          RealtimeHub
	rules        GamificationRules
	log          *zap.Logger
}

func NewProvinceService(
	provinceRepo repositories.ProvinceRepository,
	hub RealtimeHub,
	rules GamificationRules,
	log *zap.Logger,
) ProvinceServiceInterface {
	return &ProvinceService{
		provinceRepo: provinceRepo,
		hub:          hub,
		rules:        rules,
		log:          log,
	}
}

func toCounterView(c db_models.ProvinceCounter) resp.ProvinceCounterResponse {
	return resp.ProvinceCounterResponse{
		Province:       c.Province,
		Registrations:  c.Registrations,
		CIDPThreshold:  c.CIDPThreshold,
		CIDPProgress:   CIDPProgress(c.Registrations, c.CIDPThreshold),
		CIDPUnlocked:   c.CIDPUnlockedAt != nil,
		CIDPUnlockedAt: utils.FromUnixPtrDO(c.CIDPUnlockedAt),
	}
}

func (p *ProvinceService) ListCounters(ctx context.Context) ([]resp.ProvinceCounterResponse, error) {
	counters, err := p.provinceRepo.List(ctx)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	out := make([]resp.ProvinceCounterResponse, 0, len(counters))
	for _, c := range counters {
		out = append(out, toCounterView(c))
	}
	return out, nil
}

func (p *ProvinceService) find(ctx context.Context, name string) (*db_models.ProvinceCounter, error) {
	counter, err := p.provinceRepo.FindByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if counter == nil {
		return nil, utils.ErrProvinceNotFound
	}
	return counter, nil
}

func (p *ProvinceService) GetCounter(ctx context.Context, name string) (*resp.ProvinceCounterResponse, error) {
	counter, err := p.find(ctx, name)
	if err != nil {
		return nil, err
	}
	view := toCounterView(*counter)
	return &view, nil
}

func (p *ProvinceService) IntegrityMap(ctx context.Context) (*resp.IntegrityMap, error) {
	counters, err := p.ListCounters(ctx)
	if err != nil {
		return nil, err
	}
	out := &resp.IntegrityMap{Provinces: counters}
	for _, c := range counters {
		out.TotalRegistrations += c.Registrations
		if c.CIDPUnlocked {
			out.UnlockedProvinces++
		}
	}
	return out, nil
}

func (p *ProvinceService) SetThreshold(ctx context.Context, name string, threshold int64) (*resp.ProvinceCounterResponse, error) {
	counter, err := p.find(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := p.provinceRepo.SetThreshold(ctx, counter.Province, threshold); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrProvinceNotFound
		}
		return nil, utils.ErrDatabaseError
	}
	counter.CIDPThreshold = threshold
	p.log.Info("cidp threshold updated", zap.String("province", counter.Province), zap.Int64("threshold", threshold))

	if err := p.unlockIfReached(ctx, counter); err != nil {
		return nil, err
	}
	view := toCounterView(*counter)
	publishQuietly(ctx, p.hub, p.log, ChannelProvinces, EventProvinceUpdated, view)
	return &view, nil
}

// unlockIfReached stamps the unlock once; a lowered threshold never re-locks a province.
func (p *ProvinceService) unlockIfReached(ctx context.Context, counter *db_models.ProvinceCounter) error {
	if counter.CIDPUnlockedAt != nil || !CIDPReached(counter.Registrations, counter.CIDPThreshold) {
		return nil
	}
	now := utils.NowUnixSeconds()
	unlocked, err := p.provinceRepo.MarkUnlocked(ctx, counter.Province, now)
	if err != nil {
		return utils.ErrDatabaseError
	}
	if unlocked {
		counter.CIDPUnlockedAt = &now
		p.log.Info("cidp unlocked", zap.String("province", counter.Province))
		publishQuietly(ctx, p.hub, p.log, ChannelProvinces, EventCIDPUnlocked, toCounterView(*counter))
	}
	return nil
}

func (p *ProvinceService) Reconcile(ctx context.Context) (int, error) {
	corrected, err := p.provinceRepo.Recount(ctx, utils.NowUnixSeconds())
	if err != nil {
		return 0, utils.ErrDatabaseError
	}
	for _, c := range corrected {
		p.log.Warn("province counter drift corrected",
			zap.String("province", c.Province),
			zap.Int64("actual", c.Count))
	}

	counters, err := p.provinceRepo.List(ctx)
	if err != nil {
		return len(corrected), utils.ErrDatabaseError
	}
	for i := range counters {
		if err := p.unlockIfReached(ctx, &counters[i]); err != nil {
			return len(corrected), err
		}
	}

	p.log.Info("province reconcile finished", zap.Int("provinces", len(counters)), zap.Int("drifted", len(corrected)))
	return len(corrected), nil
}

func (p *ProvinceService) Seed(ctx context.Context) error {
	if err := p.provinceRepo.Seed(ctx, db_models.DominicanProvinces, p.rules.DefaultCIDPThreshold()); err != nil {
		return utils.ErrDatabaseError
	}
	return nil
}
