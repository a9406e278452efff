package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"gladiadores/internal/models/db_models"
	"gladiadores/internal/models/request_models"
	resp "gladiadores/internal/models/response_models"
	"gladiadores/internal/repositories"
	"gladiadores/pkg/utils"
)

type CommunicationServiceInterface interface {
	Create(ctx context.Context, authorID uuid.UUID, req request_models.CreateCommunicationRequest) (*resp.CommunicationResponse, error)
	ListForMe(ctx context.Context, accountID uuid.UUID, page, pageSize int) ([]resp.CommunicationResponse, error)
	ListAll(ctx context.Context, page, pageSize int) ([]resp.CommunicationResponse, error)
	RecipientFor(ctx context.Context, accountID uuid.UUID) (Recipient, error)
}

// Recipient is what a communication audience is matched against. An account without a
// registration has neither province nor level and only receives audience "all".
type Recipient struct {
	Province string
	Level    db_models.PassportLevel
}

// Receives reports whether a communication addressed as c reaches r.
func (r Recipient) Receives(c resp.CommunicationResponse) bool {
	switch db_models.Audience(c.Audience) {
	case db_models.AudienceAll:
		return true
	case db_models.AudienceProvince:
		return r.Province != "" && strings.EqualFold(r.Province, c.Province)
	case db_models.AudienceLevel:
		return r.Level != "" && string(r.Level) == c.PassportLevel
	}
	return false
}

type CommunicationService struct {
	commRepo         repositories.CommunicationRepository
	registrationRepo repositories.RegistrationRepository
	provinceRepo     repositories.ProvinceRepository
	mailService      IMailService
	hub              RealtimeHub
	baseURL          string
	log              *zap.Logger

	// fanOut runs the email delivery; replaced in tests to run inline.
	fanOut func(func())
}

type CommunicationServiceDeps struct {
	CommRepo         repositories.CommunicationRepository
	RegistrationRepo repositories.RegistrationRepository
	ProvinceRepo     repositories.ProvinceRepository
	MailService      IMailService
	Hub              RealtimeHub
	BaseURL          string
	Log              *zap.Logger
}

func NewCommunicationService(d CommunicationServiceDeps) CommunicationServiceInterface {
	return &CommunicationService{
		commRepo:         d.CommRepo,
		registrationRepo: d.RegistrationRepo,
		provinceRepo:     d.ProvinceRepo,
		mailService:      d.MailService,
		hub:              d.Hub,
		baseURL:          d.BaseURL,
		log:              d.Log,
		fanOut:           func(f func()) { go f() },
	}
}

func toCommunicationView(c db_models.Communication) resp.CommunicationResponse {
	out := resp.CommunicationResponse{
		ID:         c.ID.String(),
		Title:      c.Title,
		Body:       c.Body,
		Audience:   string(c.Audience),
		EmailsSent: c.EmailsSent,
		CreatedAt:  utils.FromUnixSecondsDO(c.CreatedAt),
	}
	if c.Province != nil {
		out.Province = *c.Province
	}
	if c.PassportLevel != nil {
		out.PassportLevel = string(*c.PassportLevel)
	}
	return out
}

func (s *CommunicationService) Create(ctx context.Context, authorID uuid.UUID, req request_models.CreateCommunicationRequest) (*resp.CommunicationResponse, error) {
	comm := &db_models.Communication{
		Title:     strings.TrimSpace(req.Title),
		Body:      strings.TrimSpace(req.Body),
		Audience:  db_models.Audience(req.Audience),
		CreatedBy: authorID,
		SendEmail: req.SendEmail,
		Metadata:  datatypes.JSON([]byte("{}")),
	}

	switch comm.Audience {
	case db_models.AudienceAll:
	case db_models.AudienceProvince:
		if req.Province == nil {
			return nil, utils.ErrInvalidAudience
		}
		counter, err := s.provinceRepo.FindByName(ctx, strings.TrimSpace(*req.Province))
		if err != nil {
			return nil, utils.ErrDatabaseError
		}
		if counter == nil {
			return nil, utils.ErrInvalidProvince
		}
		comm.Province = &counter.Province
	case db_models.AudienceLevel:
		if req.PassportLevel == nil {
			return nil, utils.ErrInvalidAudience
		}
		level := db_models.PassportLevel(*req.PassportLevel)
		switch level {
		case db_models.PassportNone, db_models.PassportBronze, db_models.PassportGolden:
		default:
			return nil, utils.ErrInvalidAudience
		}
		comm.PassportLevel = &level
	default:
		return nil, utils.ErrInvalidAudience
	}

	if err := s.commRepo.Create(ctx, comm); err != nil {
		return nil, utils.ErrDatabaseError
	}

	view := toCommunicationView(*comm)
	s.log.Info("communication created",
		zap.String("communication_id", comm.ID.String()),
		zap.String("audience", string(comm.Audience)),
		zap.Bool("send_email", comm.SendEmail))
	publishQuietly(ctx, s.hub, s.log, ChannelCommunications, EventCommunicationCreated, view)

	if comm.SendEmail {
		bg := context.WithoutCancel(ctx)
		s.fanOut(func() { s.sendEmails(bg, *comm) })
	}
	return &view, nil
}

func (s *CommunicationService) sendEmails(ctx context.Context, comm db_models.Communication) {
	recipients, err := s.registrationRepo.ListAudience(ctx, comm.Province, comm.PassportLevel)
	if err != nil {
		s.log.Error("failed to load communication audience", zap.String("communication_id", comm.ID.String()), zap.Error(err))
		return
	}

	sent := 0
	for _, r := range recipients {
		if err := s.mailService.SendNotification(r.Email, comm.Title, comm.Body, "Abrir Gladiadores", s.baseURL); err != nil {
			s.log.Warn("communication mail failed", zap.String("account_id", r.AccountID.String()), zap.Error(err))
			continue
		}
		sent++
	}

	if err := s.commRepo.SetEmailsSent(ctx, comm.ID, sent); err != nil {
		s.log.Warn("failed to record emails sent", zap.String("communication_id", comm.ID.String()), zap.Error(err))
	}
	s.log.Info("communication emails delivered",
		zap.String("communication_id", comm.ID.String()),
		zap.Int("recipients", len(recipients)),
		zap.Int("sent", sent))
}

func (s *CommunicationService) ListForMe(ctx context.Context, accountID uuid.UUID, page, pageSize int) ([]resp.CommunicationResponse, error) {
	if err := utils.ValidatePage(page, pageSize); err != nil {
		return nil, err
	}
	me, err := s.RecipientFor(ctx, accountID)
	if err != nil {
		return nil, err
	}

	comms, err := s.commRepo.ListForAudience(ctx, me.Province, me.Level, page, pageSize)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	return toCommunicationViews(comms), nil
}

func (s *CommunicationService) RecipientFor(ctx context.Context, accountID uuid.UUID) (Recipient, error) {
	reg, err := s.registrationRepo.FindByAccount(ctx, accountID)
	if err != nil {
		return Recipient{}, utils.ErrDatabaseError
	}
	if reg == nil {
		return Recipient{}, nil
	}
	return Recipient{Province: reg.Province, Level: reg.PassportLevel}, nil
}

func (s *CommunicationService) ListAll(ctx context.Context, page, pageSize int) ([]resp.CommunicationResponse, error) {
	if err := utils.ValidatePage(page, pageSize); err != nil {
		return nil, err
	}
	comms, err := s.commRepo.ListAll(ctx, page, pageSize)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	return toCommunicationViews(comms), nil
}

func toCommunicationViews(comms []db_models.Communication) []resp.CommunicationResponse {
	out := make([]resp.CommunicationResponse, 0, len(comms))
	for _, c := range comms {
		out = append(out, toCommunicationView(c))
	}
	return out
}
