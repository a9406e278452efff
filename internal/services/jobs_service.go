package services

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type Scheduler struct {
	cron     *cron.Cron
	province ProvinceServiceInterface
	passport PassportServiceInterface
	log      *zap.Logger
}

func NewScheduler(province ProvinceServiceInterface, passport PassportServiceInterface, log *zap.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger)),
		),
		province: province,
		passport: passport,
		log:      log,
	}
}

// Register adds the nightly reconcile under spec (six-field cron expression).
func (s *Scheduler) Register(spec string) error {
	_, err := s.cron.AddFunc(spec, s.reconcile)
	return err
}

func (s *Scheduler) reconcile() {
	s.reconcileProvinces()
	s.reevaluatePassports()
}

func (s *Scheduler) reevaluatePassports() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	started := time.Now()
	changed, err := s.passport.ReevaluateAll(ctx)
	if err != nil {
		s.log.Error("passport reevaluation job failed", zap.Int("changed", changed), zap.Error(err))
		return
	}
	s.log.Info("passport reevaluation job done", zap.Int("changed", changed), zap.Duration("took", time.Since(started)))
}

func (s *Scheduler) reconcileProvinces() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	started := time.Now()
	drifted, err := s.province.Reconcile(ctx)
	if err != nil {
		s.log.Error("province reconcile job failed", zap.Error(err))
		return
	}
	s.log.Info("province reconcile job done", zap.Int("drifted", drifted), zap.Duration("took", time.Since(started)))
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop waits for running jobs until ctx expires.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
