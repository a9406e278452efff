package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"gladiadores/internal/models/db_models"
	resp "gladiadores/internal/models/response_models"
	"gladiadores/internal/repositories"
	"gladiadores/pkg/utils"
)

type VoteServiceInterface interface {
	SubmitEvidence(ctx context.Context, accountID uuid.UUID, evidence Upload) (*resp.RegistrationSafeResponse, error)
	Review(ctx context.Context, reviewerID, registrationID uuid.UUID, approve bool, reason string) (*resp.RegistrationSafeResponse, error)
}

type VoteService struct {
	registrationRepo repositories.RegistrationRepository
	documents        DocumentServiceInterface
	passport         PassportServiceInterface
	tx               repositories.Transactor
	hub              RealtimeHub
	log              *zap.Logger
	now              func() int64
}

func NewVoteService(
	tx repositories.Transactor,
	registrationRepo repositories.RegistrationRepository,
	documents DocumentServiceInterface,
	passport PassportServiceInterface,
	hub RealtimeHub,
	log *zap.Logger,
) VoteServiceInterface {
	return &VoteService{
		registrationRepo: registrationRepo,
		documents:        documents,
		passport:         passport,
		tx:               tx,
		hub:              hub,
		log:              log,
		now:              utils.NowUnixSeconds,
	}
}

// SubmitEvidence accepts a new photo while nothing is pending or validated; a rejected vote may retry.
func (v *VoteService) SubmitEvidence(ctx context.Context, accountID uuid.UUID, evidence Upload) (*resp.RegistrationSafeResponse, error) {
	reg, err := v.registrationRepo.FindByAccount(ctx, accountID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if reg == nil {
		return nil, utils.ErrRegistrationNotFound
	}
	if reg.VoteStatus == db_models.VotePending || reg.VoteStatus == db_models.VoteValidated {
		return nil, utils.ErrVoteNotPending
	}

	key, err := v.documents.Store(ctx, accountID, DocVote, evidence)
	if err != nil {
		return nil, err
	}

	ok, err := v.registrationRepo.UpdateVoteStatus(ctx, reg.ID, reg.VoteStatus, map[string]interface{}{
		"vote_status":       db_models.VotePending,
		"vote_evidence_key": key,
	})
	if err != nil || !ok {
		_ = v.documents.Delete(ctx, key)
		if err != nil {
			return nil, utils.ErrDatabaseError
		}
		return nil, utils.ErrVoteNotPending
	}
	if reg.VoteEvidenceKey != nil {
		_ = v.documents.Delete(ctx, *reg.VoteEvidenceKey)
	}

	reg.VoteStatus = db_models.VotePending
	reg.VoteEvidenceKey = &key
	v.log.Info("vote evidence submitted", zap.String("registration_id", reg.ID.String()))
	return toSafeView(reg), nil
}

func (v *VoteService) Review(ctx context.Context, reviewerID, registrationID uuid.UUID, approve bool, reason string) (*resp.RegistrationSafeResponse, error) {
	reg, err := v.registrationRepo.FindById(ctx, registrationID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if reg == nil {
		return nil, utils.ErrRegistrationNotFound
	}
	if reg.VoteStatus != db_models.VotePending {
		return nil, utils.ErrVoteNotPending
	}

	fields := map[string]interface{}{"vote_status": db_models.VoteRejected}
	status := db_models.VoteRejected
	now := v.now()
	if approve {
		status = db_models.VoteValidated
		fields["vote_status"] = status
		fields["vote_validated_at"] = now
	}

	err = v.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		ok, err := v.registrationRepo.UpdateVoteStatus(ctx, reg.ID, db_models.VotePending, fields)
		if err != nil {
			return utils.ErrDatabaseError
		}
		if !ok {
			return utils.ErrVoteNotPending
		}
		reg.VoteStatus = status
		if approve {
			reg.VoteValidatedAt = &now
		}

		v.log.Info("vote reviewed",
			zap.String("registration_id", reg.ID.String()),
			zap.String("status", string(status)),
			zap.String("reviewer", reviewerID.String()))
		publishQuietly(ctx, v.hub, v.log, AccountChannel(reg.AccountID), EventVoteReviewed, map[string]string{
			"status": string(status),
			"reason": reason,
		})

		if !approve {
			return nil
		}
		updated, err := v.passport.Reevaluate(ctx, reg.ID)
		if err != nil {
			return err
		}
		reg = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toSafeView(reg), nil
}
