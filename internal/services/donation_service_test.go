package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gladiadores/internal/models/db_models"
	"gladiadores/internal/models/request_models"
	"gladiadores/pkg/utils"
)

type donationFixture struct {
	regs      *fakeRegistrationRepo
	donations *fakeDonationRepo
	docs      *fakeDocuments
	hub       *recordingHub
	tx        *snapshotTx
	passport  PassportServiceInterface
	svc       DonationServiceInterface
	votes     VoteServiceInterface
	account   uuid.UUID
}

func newDonationFixture(t *testing.T) *donationFixture {
	t.Helper()
	f := &donationFixture{
		regs:    newFakeRegistrationRepo(),
		docs:    newFakeDocuments(),
		hub:     &recordingHub{},
		account: uuid.New(),
	}
	f.donations = newFakeDonationRepo(f.regs)
	f.regs.add(&db_models.Registration{
		AccountID:    f.account,
		FullName:     "Rosa Díaz",
		Cedula:       "00113918205",
		ReferralCode: "ROSA0001",
		Province:     "La Vega",
		Points:       10,
	})

	log := zap.NewNop()
	f.tx = &snapshotTx{regs: f.regs, donations: f.donations}
	f.passport = NewPassportService(f.regs, f.donations, testRules(), f.hub, "https://gladiadores.do", log)
	f.svc = NewDonationService(f.tx, f.donations, f.regs, f.docs, f.passport, f.hub, log)
	f.votes = NewVoteService(f.tx, f.regs, f.docs, f.passport, f.hub, log)
	return f
}

func TestDonationApprovalGrantsGoldenPassport(t *testing.T) {
	ctx := context.Background()
	f := newDonationFixture(t)

	d, err := f.svc.Submit(ctx, f.account, request_models.CreateDonationForm{AmountMinor: 150000, Currency: "dop"}, upload("receipt"))
	require.NoError(t, err)
	assert.Equal(t, "pending", d.Status)
	assert.Equal(t, "DOP", d.Currency)

	pending, err := f.svc.ListByStatus(ctx, "pending", 1, 20)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Contains(t, pending[0].EvidenceURL, "https://storage.test/")

	reviewer := uuid.New()
	approved, err := f.svc.Approve(ctx, reviewer, uuid.MustParse(d.ID))
	require.NoError(t, err)
	assert.Equal(t, "approved", approved.Status)
	assert.Equal(t, "Rosa Díaz", approved.DonorName)

	reg, _ := f.regs.FindByAccount(ctx, f.account)
	assert.Equal(t, db_models.PassportGolden, reg.PassportLevel)
	assert.Equal(t, int64(110), reg.Points)
	assert.Contains(t, f.hub.types(), EventDonationReviewed)
	assert.Contains(t, f.hub.types(), EventLevelChanged)

	_, err = f.svc.Approve(ctx, reviewer, uuid.MustParse(d.ID))
	assert.ErrorIs(t, err, utils.ErrDonationAlreadyReviewed)
}

func TestDonationRejection(t *testing.T) {
	ctx := context.Background()
	f := newDonationFixture(t)

	d, err := f.svc.Submit(ctx, f.account, request_models.CreateDonationForm{AmountMinor: 5000, Currency: "USD"}, upload("receipt"))
	require.NoError(t, err)

	rejected, err := f.svc.Reject(ctx, uuid.New(), uuid.MustParse(d.ID), "  comprobante ilegible ")
	require.NoError(t, err)
	assert.Equal(t, "rejected", rejected.Status)
	assert.Equal(t, "comprobante ilegible", rejected.RejectionReason)

	reg, _ := f.regs.FindByAccount(ctx, f.account)
	assert.Equal(t, db_models.PassportNone, reg.PassportLevel)

	own, err := f.svc.ListOwn(ctx, f.account)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, "rejected", own[0].Status)
}

func TestDonationValidation(t *testing.T) {
	ctx := context.Background()
	f := newDonationFixture(t)

	_, err := f.svc.Submit(ctx, f.account, request_models.CreateDonationForm{AmountMinor: 0, Currency: "DOP"}, upload("x"))
	assert.ErrorIs(t, err, utils.ErrInvalidAmount)

	_, err = f.svc.Submit(ctx, uuid.New(), request_models.CreateDonationForm{AmountMinor: 100, Currency: "DOP"}, upload("x"))
	assert.ErrorIs(t, err, utils.ErrRegistrationNotFound)

	_, err = f.svc.Approve(ctx, uuid.New(), uuid.New())
	assert.ErrorIs(t, err, utils.ErrDonationNotFound)
}

func TestVoteEvidenceReview(t *testing.T) {
	ctx := context.Background()
	f := newDonationFixture(t)
	reg, _ := f.regs.FindByAccount(ctx, f.account)

	_, err := f.votes.Review(ctx, uuid.New(), reg.ID, true, "")
	assert.ErrorIs(t, err, utils.ErrVoteNotPending)

	out, err := f.votes.SubmitEvidence(ctx, f.account, upload("dedo"))
	require.NoError(t, err)
	assert.Equal(t, "pending", out.VoteStatus)

	_, err = f.votes.SubmitEvidence(ctx, f.account, upload("otra"))
	assert.ErrorIs(t, err, utils.ErrVoteNotPending)

	out, err = f.votes.Review(ctx, uuid.New(), reg.ID, false, "foto borrosa")
	require.NoError(t, err)
	assert.Equal(t, "rejected", out.VoteStatus)

	firstKey := *reg.VoteEvidenceKey
	_, err = f.votes.SubmitEvidence(ctx, f.account, upload("nueva"))
	require.NoError(t, err, "a rejected vote may resubmit")
	assert.Contains(t, f.docs.deleted, firstKey)

	out, err = f.votes.Review(ctx, uuid.New(), reg.ID, true, "")
	require.NoError(t, err)
	assert.Equal(t, "validated", out.VoteStatus)
	assert.Equal(t, int64(60), out.Points)
	assert.Contains(t, f.hub.types(), EventVoteReviewed)
}

// flakyPassport fails the first n reevaluations.
type flakyPassport struct {
	PassportServiceInterface
	failures int
}

func (p *flakyPassport) Reevaluate(ctx context.Context, id uuid.UUID) (*db_models.Registration, error) {
	if p.failures > 0 {
		p.failures--
		return nil, errors.New("transient db error")
	}
	return p.PassportServiceInterface.Reevaluate(ctx, id)
}

func TestDonationApprovalRollsBackWhenPassportUpdateFails(t *testing.T) {
	ctx := context.Background()
	f := newDonationFixture(t)
	passport := &flakyPassport{PassportServiceInterface: f.passport, failures: 1}
	svc := NewDonationService(f.tx, f.donations, f.regs, f.docs, passport, f.hub, zap.NewNop())

	d, err := svc.Submit(ctx, f.account, request_models.CreateDonationForm{AmountMinor: 250000, Currency: "DOP"}, upload("receipt"))
	require.NoError(t, err)
	id := uuid.MustParse(d.ID)

	_, err = svc.Approve(ctx, uuid.New(), id)
	require.Error(t, err)

	stored, err := f.donations.FindById(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, db_models.DonationPending, stored.Status, "approval must not outlive a failed passport update")

	approved, err := svc.Approve(ctx, uuid.New(), id)
	require.NoError(t, err, "the admin can retry")
	assert.Equal(t, "approved", approved.Status)

	reg, _ := f.regs.FindByAccount(ctx, f.account)
	assert.Equal(t, db_models.PassportGolden, reg.PassportLevel)
	assert.Equal(t, int64(110), reg.Points)
}

func TestVoteValidationRollsBackWhenPassportUpdateFails(t *testing.T) {
	ctx := context.Background()
	f := newDonationFixture(t)
	passport := &flakyPassport{PassportServiceInterface: f.passport, failures: 1}
	votes := NewVoteService(f.tx, f.regs, f.docs, passport, f.hub, zap.NewNop())
	reg, _ := f.regs.FindByAccount(ctx, f.account)

	_, err := votes.SubmitEvidence(ctx, f.account, upload("dedo"))
	require.NoError(t, err)

	_, err = votes.Review(ctx, uuid.New(), reg.ID, true, "")
	require.Error(t, err)
	reg, _ = f.regs.FindById(ctx, reg.ID)
	assert.Equal(t, db_models.VotePending, reg.VoteStatus)

	out, err := votes.Review(ctx, uuid.New(), reg.ID, true, "")
	require.NoError(t, err)
	assert.Equal(t, "validated", out.VoteStatus)
	assert.Equal(t, int64(60), out.Points)
}

func TestReevaluateAllRepairsStalePassports(t *testing.T) {
	ctx := context.Background()
	f := newDonationFixture(t)
	reg, _ := f.regs.FindByAccount(ctx, f.account)

	require.NoError(t, f.donations.Create(ctx, &db_models.Donation{
		RegistrationID: reg.ID,
		AmountMinor:    100000,
		Currency:       "DOP",
		Status:         db_models.DonationApproved,
	}))
	f.regs.add(&db_models.Registration{AccountID: uuid.New(), Cedula: "40200123459", ReferralCode: "OTRO0001", Province: "Azua", Points: 10})

	changed, err := f.passport.ReevaluateAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, changed)

	reg, _ = f.regs.FindByAccount(ctx, f.account)
	assert.Equal(t, db_models.PassportGolden, reg.PassportLevel)
	assert.Equal(t, int64(110), reg.Points)

	changed, err = f.passport.ReevaluateAll(ctx)
	require.NoError(t, err)
	assert.Zero(t, changed)
}
