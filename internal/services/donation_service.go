package services

import (
	"context"
	"encoding/json"
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

type DonationServiceInterface interface {
	Submit(ctx context.Context, accountID uuid.UUID, req request_models.CreateDonationForm, evidence Upload) (*resp.DonationResponse, error)
	ListOwn(ctx context.Context, accountID uuid.UUID) ([]resp.DonationResponse, error)
	ListByStatus(ctx context.Context, status string, page, pageSize int) ([]resp.DonationResponse, error)
	Approve(ctx context.Context, reviewerID, donationID uuid.UUID) (*resp.DonationResponse, error)
	Reject(ctx context.Context, reviewerID, donationID uuid.UUID, reason string) (*resp.DonationResponse, error)
}

type DonationService struct {
	donationRepo     repositories.DonationRepository
	registrationRepo repositories.RegistrationRepository
	documents        DocumentServiceInterface
	passport         PassportServiceInterface
	tx               repositories.Transactor
	hub              RealtimeHub
	log              *zap.Logger
	now              func() int64
}

func NewDonationService(
	tx repositories.Transactor,
	donationRepo repositories.DonationRepository,
	registrationRepo repositories.RegistrationRepository,
	documents DocumentServiceInterface,
	passport PassportServiceInterface,
	hub RealtimeHub,
	log *zap.Logger,
) DonationServiceInterface {
	return &DonationService{
		donationRepo:     donationRepo,
		registrationRepo: registrationRepo,
		documents:        documents,
		passport:         passport,
		tx:               tx,
		hub:              hub,
		log:              log,
		now:              utils.NowUnixSeconds,
	}
}

func toDonationView(d db_models.Donation) resp.DonationResponse {
	out := resp.DonationResponse{
		ID:              d.ID.String(),
		RegistrationID:  d.RegistrationID.String(),
		AmountMinor:     d.AmountMinor,
		Currency:        d.Currency,
		Status:          string(d.Status),
		RejectionReason: d.RejectionReason,
		ReviewedAt:      utils.FromUnixPtrDO(d.ReviewedAt),
		CreatedAt:       utils.FromUnixSecondsDO(d.CreatedAt),
	}
	if d.Registration.ID != uuid.Nil {
		out.DonorName = d.Registration.FullName
	}
	return out
}

func (s *DonationService) Submit(ctx context.Context, accountID uuid.UUID, req request_models.CreateDonationForm, evidence Upload) (*resp.DonationResponse, error) {
	if req.AmountMinor <= 0 {
		return nil, utils.ErrInvalidAmount
	}
	reg, err := s.registrationRepo.FindByAccount(ctx, accountID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if reg == nil {
		return nil, utils.ErrRegistrationNotFound
	}

	key, err := s.documents.Store(ctx, accountID, DocDonation, evidence)
	if err != nil {
		return nil, err
	}

	meta, _ := json.Marshal(map[string]string{"note": strings.TrimSpace(req.Note)})
	donation := &db_models.Donation{
		RegistrationID: reg.ID,
		AmountMinor:    req.AmountMinor,
		Currency:       strings.ToUpper(req.Currency),
		EvidenceKey:    key,
		Status:         db_models.DonationPending,
		Metadata:       datatypes.JSON(meta),
	}
	if err := s.donationRepo.Create(ctx, donation); err != nil {
		_ = s.documents.Delete(ctx, key)
		return nil, utils.ErrDatabaseError
	}

	s.log.Info("donation submitted",
		zap.String("donation_id", donation.ID.String()),
		zap.Int64("amount_minor", donation.AmountMinor),
		zap.String("currency", donation.Currency))
	out := toDonationView(*donation)
	return &out, nil
}

func (s *DonationService) ListOwn(ctx context.Context, accountID uuid.UUID) ([]resp.DonationResponse, error) {
	reg, err := s.registrationRepo.FindByAccount(ctx, accountID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if reg == nil {
		return nil, utils.ErrRegistrationNotFound
	}
	donations, err := s.donationRepo.ListByRegistration(ctx, reg.ID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	out := make([]resp.DonationResponse, 0, len(donations))
	for _, d := range donations {
		out = append(out, toDonationView(d))
	}
	return out, nil
}

// ListByStatus is the admin review queue; evidence links are presigned per item.
func (s *DonationService) ListByStatus(ctx context.Context, status string, page, pageSize int) ([]resp.DonationResponse, error) {
	if err := utils.ValidatePage(page, pageSize); err != nil {
		return nil, err
	}
	st := db_models.DonationStatus(status)
	if st == "" {
		st = db_models.DonationPending
	}

	donations, err := s.donationRepo.ListByStatus(ctx, st, page, pageSize)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	out := make([]resp.DonationResponse, 0, len(donations))
	for _, d := range donations {
		view := toDonationView(d)
		if u, err := s.documents.PresignURL(ctx, d.EvidenceKey); err == nil {
			view.EvidenceURL = u
		}
		out = append(out, view)
	}
	return out, nil
}

func (s *DonationService) review(ctx context.Context, reviewerID, donationID uuid.UUID, to db_models.DonationStatus, reason string) (*db_models.Donation, error) {
	donation, err := s.donationRepo.FindById(ctx, donationID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if donation == nil {
		return nil, utils.ErrDonationNotFound
	}
	if donation.Status != db_models.DonationPending {
		return nil, utils.ErrDonationAlreadyReviewed
	}

	now := s.now()
	ok, err := s.donationRepo.Review(ctx, donationID, to, reviewerID, now, reason)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if !ok {
		return nil, utils.ErrDonationAlreadyReviewed
	}

	donation.Status = to
	donation.ReviewedBy = &reviewerID
	donation.ReviewedAt = &now
	donation.RejectionReason = reason

	s.log.Info("donation reviewed",
		zap.String("donation_id", donationID.String()),
		zap.String("status", string(to)),
		zap.String("reviewer", reviewerID.String()))
	publishQuietly(ctx, s.hub, s.log, AccountChannel(donation.Registration.AccountID), EventDonationReviewed, map[string]string{
		"donation_id": donationID.String(),
		"status":      string(to),
	})
	return donation, nil
}

// Approve commits the status change together with the donor's points and level.
func (s *DonationService) Approve(ctx context.Context, reviewerID, donationID uuid.UUID) (*resp.DonationResponse, error) {
	var donation *db_models.Donation
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		donation, err = s.review(ctx, reviewerID, donationID, db_models.DonationApproved, "")
		if err != nil {
			return err
		}
		_, err = s.passport.Reevaluate(ctx, donation.RegistrationID)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := toDonationView(*donation)
	return &out, nil
}

func (s *DonationService) Reject(ctx context.Context, reviewerID, donationID uuid.UUID, reason string) (*resp.DonationResponse, error) {
	donation, err := s.review(ctx, reviewerID, donationID, db_models.DonationRejected, strings.TrimSpace(reason))
	if err != nil {
		return nil, err
	}
	out := toDonationView(*donation)
	return &out, nil
}
