package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"gladiadores/internal/models/db_models"
	"gladiadores/internal/models/request_models"
	resp "gladiadores/internal/models/response_models"
	"gladiadores/internal/repositories"
	"gladiadores/pkg/utils"
)

const (
	referralCodeAttempts = 5
	referralListLimit    = 100
	leaderboardSize      = 20
	maxLeaderboardSize   = 100
)

type RegistrationServiceInterface interface {
	Register(ctx context.Context, accountID uuid.UUID, req request_models.RegisterRequest) (*resp.RegistrationSafeResponse, error)
	GetSafe(ctx context.Context, accountID uuid.UUID) (*resp.RegistrationSafeResponse, error)
	LookupReferrer(ctx context.Context, code string) (*resp.ReferrerPreview, error)
	ReferralStats(ctx context.Context, accountID uuid.UUID) (*resp.ReferralStatsResponse, error)
	ReferralQR(ctx context.Context, accountID uuid.UUID, size int) ([]byte, error)
	Leaderboard(ctx context.Context, province string, limit int) ([]resp.LeaderboardEntry, error)
}

type RegistrationService struct {
	registrationRepo repositories.RegistrationRepository
	provinceRepo     repositories.ProvinceRepository
	passport         PassportServiceInterface
	mailService      IMailService
	hub              RealtimeHub
	rules            GamificationRules
	baseURL          string
	log              *zap.Logger

	newCode func() (string, error)
}

type RegistrationServiceDeps struct {
	RegistrationRepo repositories.RegistrationRepository
	ProvinceRepo     repositories.ProvinceRepository
	Passport         PassportServiceInterface
	MailService      IMailService
	Hub              RealtimeHub
	Rules            GamificationRules
	BaseURL          string
	Log              *zap.Logger
}

func NewRegistrationService(d RegistrationServiceDeps) RegistrationServiceInterface {
	return &RegistrationService{
		registrationRepo: d.RegistrationRepo,
		provinceRepo:     d.ProvinceRepo,
		passport:         d.Passport,
		mailService:      d.MailService,
		hub:              d.Hub,
		rules:            d.Rules,
		baseURL:          d.BaseURL,
		log:              d.Log,
		newCode:          utils.GenerateReferralCode,
	}
}

func inviteURL(baseURL, code string) string {
	return fmt.Sprintf("%s/?ref=%s", strings.TrimRight(baseURL, "/"), url.QueryEscape(code))
}

func firstName(fullName string) string {
	fields := strings.Fields(fullName)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func toSafeView(reg *db_models.Registration) *resp.RegistrationSafeResponse {
	out := &resp.RegistrationSafeResponse{
		ID:             reg.ID.String(),
		FullName:       reg.FullName,
		Cedula:         utils.MaskCedula(reg.Cedula),
		Phone:          utils.MaskPhone(reg.Phone),
		Email:          reg.Email,
		Province:       reg.Province,
		Municipality:   reg.Municipality,
		ReferralCode:   reg.ReferralCode,
		PassportLevel:  string(reg.PassportLevel),
		Points:         reg.Points,
		CedulaVerified: reg.CedulaVerified,
		Interests:      []string(reg.Interests),
		VoteStatus:     string(reg.VoteStatus),
		CompletedAt:    utils.FromUnixPtrDO(reg.StaircaseCompletedAt),
		CreatedAt:      utils.FromUnixSecondsDO(reg.CreatedAt),
	}
	if out.Interests == nil {
		out.Interests = []string{}
	}
	if reg.ReferredByCode != nil {
		out.ReferredBy = *reg.ReferredByCode
	}
	return out
}

func (r *RegistrationService) uniqueReferralCode(ctx context.Context) (string, error) {
	for i := 0; i < referralCodeAttempts; i++ {
		code, err := r.newCode()
		if err != nil {
			return "", err
		}
		taken, err := r.registrationRepo.ReferralCodeExists(ctx, code)
		if err != nil {
			return "", utils.ErrDatabaseError
		}
		if !taken {
			return code, nil
		}
	}
	return "", errors.New("could not allocate a unique referral code")
}

func (r *RegistrationService) Register(ctx context.Context, accountID uuid.UUID, req request_models.RegisterRequest) (*resp.RegistrationSafeResponse, error) {
	existing, err := r.registrationRepo.FindByAccount(ctx, accountID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if existing != nil {
		return nil, utils.ErrAlreadyRegistered
	}

	cedula := utils.NormalizeCedula(req.Cedula)
	if !utils.ValidateCedula(cedula) {
		return nil, utils.ErrInvalidCedula
	}
	phone, ok := utils.NormalizePhone(req.Phone)
	if !ok {
		return nil, utils.ErrInvalidPhone
	}

	taken, err := r.registrationRepo.FindByCedula(ctx, cedula)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if taken != nil {
		return nil, utils.ErrCedulaTaken
	}

	province, err := r.provinceRepo.FindByName(ctx, strings.TrimSpace(req.Province))
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if province == nil {
		return nil, utils.ErrInvalidProvince
	}

	var referrer *db_models.Registration
	if code := strings.ToUpper(strings.TrimSpace(req.ReferralCode)); code != "" {
		referrer, err = r.registrationRepo.FindByReferralCode(ctx, code)
		if err != nil {
			return nil, utils.ErrDatabaseError
		}
		if referrer == nil {
			return nil, utils.ErrReferralNotFound
		}
		if referrer.AccountID == accountID || referrer.Cedula == cedula {
			return nil, utils.ErrSelfReferral
		}
	}

	code, err := r.uniqueReferralCode(ctx)
	if err != nil {
		return nil, err
	}

	reg := &db_models.Registration{
		AccountID:     accountID,
		FullName:      strings.TrimSpace(req.FullName),
		Cedula:        cedula,
		Phone:         phone,
		Email:         normalizeEmail(req.Email),
		Province:      province.Province,
		Municipality:  strings.TrimSpace(req.Municipality),
		ReferralCode:  code,
		PassportLevel: db_models.PassportNone,
		Points:        r.rules.Points(Progress{}),
		VoteStatus:    db_models.VoteNone,
	}
	if referrer != nil {
		reg.ReferredByCode = &referrer.ReferralCode
	}

	counter, unlocked, err := r.registrationRepo.CreateWithCounter(ctx, reg, r.rules.DefaultCIDPThreshold(), utils.NowUnixSeconds())
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, utils.ErrCedulaTaken
		}
		return nil, utils.ErrDatabaseError
	}

	r.log.Info("registration created",
		zap.String("registration_id", reg.ID.String()),
		zap.String("province", reg.Province),
		zap.Bool("referred", referrer != nil))

	r.afterRegister(ctx, reg, referrer, counter, unlocked)
	return toSafeView(reg), nil
}

// afterRegister runs the side effects that must not undo a committed registration.
func (r *RegistrationService) afterRegister(ctx context.Context, reg, referrer *db_models.Registration, counter *db_models.ProvinceCounter, unlocked bool) {
	if referrer != nil {
		if _, err := r.passport.Reevaluate(ctx, referrer.ID); err != nil {
			r.log.Error("failed to re-evaluate referrer", zap.String("registration_id", referrer.ID.String()), zap.Error(err))
		}
		publishQuietly(ctx, r.hub, r.log, AccountChannel(referrer.AccountID), EventReferralJoined, map[string]string{
			"first_name": firstName(reg.FullName),
			"province":   reg.Province,
		})
	}

	if counter != nil {
		publishQuietly(ctx, r.hub, r.log, ChannelProvinces, EventProvinceUpdated, toCounterView(*counter))
		if unlocked {
			r.log.Info("cidp unlocked", zap.String("province", counter.Province))
			publishQuietly(ctx, r.hub, r.log, ChannelProvinces, EventCIDPUnlocked, toCounterView(*counter))
		}
	}

	if reg.Email != "" {
		if err := r.mailService.SendWelcome(reg.Email, firstName(reg.FullName), inviteURL(r.baseURL, reg.ReferralCode)); err != nil {
			r.log.Warn("failed to send welcome mail", zap.String("registration_id", reg.ID.String()), zap.Error(err))
		}
	}
}

func (r *RegistrationService) own(ctx context.Context, accountID uuid.UUID) (*db_models.Registration, error) {
	reg, err := r.registrationRepo.FindByAccount(ctx, accountID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if reg == nil {
		return nil, utils.ErrRegistrationNotFound
	}
	return reg, nil
}

func (r *RegistrationService) GetSafe(ctx context.Context, accountID uuid.UUID) (*resp.RegistrationSafeResponse, error) {
	reg, err := r.own(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return toSafeView(reg), nil
}

func (r *RegistrationService) LookupReferrer(ctx context.Context, code string) (*resp.ReferrerPreview, error) {
	reg, err := r.registrationRepo.FindByReferralCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if reg == nil {
		return nil, utils.ErrReferralNotFound
	}
	return &resp.ReferrerPreview{
		FirstName: firstName(reg.FullName),
		Province:  reg.Province,
		Code:      reg.ReferralCode,
	}, nil
}

func (r *RegistrationService) ReferralStats(ctx context.Context, accountID uuid.UUID) (*resp.ReferralStatsResponse, error) {
	reg, err := r.own(ctx, accountID)
	if err != nil {
		return nil, err
	}

	count, err := r.registrationRepo.CountReferrals(ctx, reg.ReferralCode)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	referred, err := r.registrationRepo.ListReferrals(ctx, reg.ReferralCode, referralListLimit)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}

	list := make([]resp.ReferredGladiador, 0, len(referred))
	for _, ref := range referred {
		list = append(list, resp.ReferredGladiador{
			FirstName:     firstName(ref.FullName),
			Province:      ref.Province,
			PassportLevel: string(ref.PassportLevel),
			JoinedAt:      utils.FromUnixSecondsDO(ref.CreatedAt),
		})
	}

	return &resp.ReferralStatsResponse{
		Code:      reg.ReferralCode,
		InviteURL: inviteURL(r.baseURL, reg.ReferralCode),
		Count:     count,
		Referrals: list,
	}, nil
}

func (r *RegistrationService) ReferralQR(ctx context.Context, accountID uuid.UUID, size int) ([]byte, error) {
	reg, err := r.own(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if size < 128 || size > 1024 {
		size = 256
	}
	return qrcode.Encode(inviteURL(r.baseURL, reg.ReferralCode), qrcode.Medium, size)
}

func (r *RegistrationService) Leaderboard(ctx context.Context, province string, limit int) ([]resp.LeaderboardEntry, error) {
	if limit < 1 || limit > maxLeaderboardSize {
		limit = leaderboardSize
	}
	regs, err := r.registrationRepo.Leaderboard(ctx, strings.TrimSpace(province), limit)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	out := make([]resp.LeaderboardEntry, 0, len(regs))
	for i, reg := range regs {
		out = append(out, resp.LeaderboardEntry{
			Rank:          i + 1,
			FirstName:     firstName(reg.FullName),
			Province:      reg.Province,
			PassportLevel: string(reg.PassportLevel),
			Points:        reg.Points,
		})
	}
	return out, nil
}
