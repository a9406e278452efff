package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"gladiadores/internal/models/db_models"
	resp "gladiadores/internal/models/response_models"
	"gladiadores/internal/repositories"
	"gladiadores/pkg/utils"
)

type PassportServiceInterface interface {
	// Reevaluate recomputes points and level from the stored progress and persists changes.
	Reevaluate(ctx context.Context, registrationID uuid.UUID) (*db_models.Registration, error)
	GetPassport(ctx context.Context, accountID uuid.UUID) (*resp.PassportResponse, error)
	// ReevaluateAll walks every registration and returns how many changed.
	ReevaluateAll(ctx context.Context) (int, error)
}

const reevaluateBatch = 500

type PassportService struct {
	registrationRepo repositories.RegistrationRepository
	donationRepo     repositories.DonationRepository
	rules            GamificationRules
	hub              RealtimeHub
	baseURL          string
	log              *zap.Logger
}

func NewPassportService(
	registrationRepo repositories.RegistrationRepository,
	donationRepo repositories.DonationRepository,
	rules GamificationRules,
	hub RealtimeHub,
	baseURL string,
	log *zap.Logger,
) PassportServiceInterface {
	return &PassportService{
		registrationRepo: registrationRepo,
		donationRepo:     donationRepo,
		rules:            rules,
		hub:              hub,
		baseURL:          baseURL,
		log:              log,
	}
}

func (p *PassportService) progress(ctx context.Context, reg *db_models.Registration) (Progress, error) {
	referrals, err := p.registrationRepo.CountReferrals(ctx, reg.ReferralCode)
	if err != nil {
		return Progress{}, utils.ErrDatabaseError
	}
	approved, err := p.donationRepo.CountApproved(ctx, reg.ID)
	if err != nil {
		return Progress{}, utils.ErrDatabaseError
	}

	steps := staircaseSteps(reg)
	completed := 0
	for _, s := range steps {
		if s.Completed {
			completed++
		}
	}
	return Progress{
		StepsCompleted:    completed,
		StaircaseComplete: reg.StaircaseCompletedAt != nil,
		Referrals:         referrals,
		ApprovedDonations: approved,
		VoteValidated:     reg.VoteStatus == db_models.VoteValidated,
		CurrentLevel:      reg.PassportLevel,
	}, nil
}

func (p *PassportService) Reevaluate(ctx context.Context, registrationID uuid.UUID) (*db_models.Registration, error) {
	reg, _, err := p.reevaluate(ctx, registrationID)
	return reg, err
}

func (p *PassportService) ReevaluateAll(ctx context.Context) (int, error) {
	changed := 0
	after := uuid.Nil
	for {
		ids, err := p.registrationRepo.ListIDsAfter(ctx, after, reevaluateBatch)
		if err != nil {
			return changed, utils.ErrDatabaseError
		}
		for _, id := range ids {
			_, updated, err := p.reevaluate(ctx, id)
			if errors.Is(err, utils.ErrRegistrationNotFound) {
				continue
			}
			if err != nil {
				return changed, err
			}
			if updated {
				changed++
			}
		}
		if len(ids) < reevaluateBatch {
			return changed, nil
		}
		after = ids[len(ids)-1]
	}
}

func (p *PassportService) reevaluate(ctx context.Context, registrationID uuid.UUID) (*db_models.Registration, bool, error) {
	reg, err := p.registrationRepo.FindById(ctx, registrationID)
	if err != nil {
		return nil, false, utils.ErrDatabaseError
	}
	if reg == nil {
		return nil, false, utils.ErrRegistrationNotFound
	}

	prog, err := p.progress(ctx, reg)
	if err != nil {
		return nil, false, err
	}
	points := p.rules.Points(prog)
	level := p.rules.Level(prog)
	if points == reg.Points && level == reg.PassportLevel {
		return reg, false, nil
	}

	previous := reg.PassportLevel
	if err := p.registrationRepo.UpdateColumns(ctx, reg.ID, map[string]interface{}{
		"points":         points,
		"passport_level": level,
	}); err != nil {
		return nil, false, utils.ErrDatabaseError
	}
	reg.Points = points
	reg.PassportLevel = level

	channel := AccountChannel(reg.AccountID)
	publishQuietly(ctx, p.hub, p.log, channel, EventPointsChanged, map[string]interface{}{"points": points})
	if level != previous {
		p.log.Info("passport level changed",
			zap.String("registration_id", reg.ID.String()),
			zap.String("from", string(previous)),
			zap.String("to", string(level)))
		publishQuietly(ctx, p.hub, p.log, channel, EventLevelChanged, map[string]string{
			"from": string(previous),
			"to":   string(level),
		})
	}
	return reg, true, nil
}

func (p *PassportService) GetPassport(ctx context.Context, accountID uuid.UUID) (*resp.PassportResponse, error) {
	reg, err := p.registrationRepo.FindByAccount(ctx, accountID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if reg == nil {
		return nil, utils.ErrRegistrationNotFound
	}

	prog, err := p.progress(ctx, reg)
	if err != nil {
		return nil, err
	}

	return &resp.PassportResponse{
		FullName:      reg.FullName,
		Province:      reg.Province,
		Level:         string(reg.PassportLevel),
		Points:        reg.Points,
		Referrals:     prog.Referrals,
		ReferralCode:  reg.ReferralCode,
		InviteURL:     inviteURL(p.baseURL, reg.ReferralCode),
		VoteValidated: prog.VoteValidated,
		Next:          p.rules.NextLevel(prog),
	}, nil
}
