package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gladiadores/internal/models/db_models"
	mem "gladiadores/pkg/memcache"
	"gladiadores/pkg/utils"
)

type fakePasskeys struct {
	reject bool
}

func (f *fakePasskeys) BeginRegistration(user webauthn.User, _ ...webauthn.RegistrationOption) (*protocol.CredentialCreation, *webauthn.SessionData, error) {
	return &protocol.CredentialCreation{}, &webauthn.SessionData{Challenge: "challenge", UserID: user.WebAuthnID()}, nil
}

func (f *fakePasskeys) CreateCredential(_ webauthn.User, session webauthn.SessionData, _ *protocol.ParsedCredentialCreationData) (*webauthn.Credential, error) {
	if f.reject || session.Challenge != "challenge" {
		return nil, errors.New("attestation rejected")
	}
	return &webauthn.Credential{ID: []byte("credential-1")}, nil
}

type fakeParser struct{}

func (fakeParser) ParseCredentialCreationResponseBytes(data []byte) (*protocol.ParsedCredentialCreationData, error) {
	if string(data) == "garbage" {
		return nil, errors.New("malformed")
	}
	return &protocol.ParsedCredentialCreationData{}, nil
}

type staircaseFixture struct {
	regs    *fakeRegistrationRepo
	docs    *fakeDocuments
	creds   *fakeCredentialRepo
	keys    *fakePasskeys
	svc     *StaircaseService
	account uuid.UUID
}

func newStaircaseFixture(t *testing.T) *staircaseFixture {
	t.Helper()
	f := &staircaseFixture{
		regs:    newFakeRegistrationRepo(),
		docs:    newFakeDocuments(),
		creds:   &fakeCredentialRepo{},
		keys:    &fakePasskeys{},
		account: uuid.New(),
	}
	f.regs.add(&db_models.Registration{
		AccountID:    f.account,
		FullName:     "Juan Pablo Duarte",
		Cedula:       "00113918205",
		ReferralCode: "JUAN0001",
		Province:     "Santiago",
		Points:       10,
	})

	log := zap.NewNop()
	passport := NewPassportService(f.regs, newFakeDonationRepo(f.regs), testRules(), nil, "https://gladiadores.do", log)
	svc := NewStaircaseService(StaircaseServiceDeps{
		RegistrationRepo: f.regs,
		CredentialRepo:   f.creds,
		Documents:        f.docs,
		Interests:        fakeInterests{},
		Passport:         passport,
		Sessions:         mem.NewLocalTokens(),
		Config:           StaircaseConfig{OCRMaxDistance: 2, SessionTTL: time.Minute},
		Log:              log,
	}).(*StaircaseService)
	svc.passkeys = f.keys
	svc.parser = fakeParser{}
	f.svc = svc
	return f
}

func upload(body string) Upload {
	return Upload{Filename: "cedula.jpg", Size: int64(len(body)), Body: strings.NewReader(body)}
}

func (f *staircaseFixture) reg(t *testing.T) *db_models.Registration {
	t.Helper()
	reg, err := f.regs.FindByAccount(context.Background(), f.account)
	require.NoError(t, err)
	require.NotNil(t, reg)
	return reg
}

func (f *staircaseFixture) passDocumentStep(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	_, err := f.svc.AcceptOath(ctx, f.account)
	require.NoError(t, err)
	_, err = f.svc.UploadDocument(ctx, f.account, "front", upload("front"))
	require.NoError(t, err)
	_, err = f.svc.VerifyCedula(ctx, f.account, "CEDULA DE IDENTIDAD 001-1391820-5")
	require.NoError(t, err)
}

func TestStaircaseFullClimb(t *testing.T) {
	ctx := context.Background()
	f := newStaircaseFixture(t)

	p, err := f.svc.Progress(ctx, f.account)
	require.NoError(t, err)
	assert.Equal(t, StepOath, p.CurrentStep)
	assert.Equal(t, 0, p.Percent)

	_, err = f.svc.UploadDocument(ctx, f.account, "front", upload("front"))
	assert.ErrorIs(t, err, utils.ErrStepOutOfOrder)

	p, err = f.svc.AcceptOath(ctx, f.account)
	require.NoError(t, err)
	assert.Equal(t, StepDocument, p.CurrentStep)
	assert.Equal(t, 25, p.Percent)

	_, err = f.svc.AcceptOath(ctx, f.account)
	assert.ErrorIs(t, err, utils.ErrStepAlreadyDone)

	_, err = f.svc.VerifyCedula(ctx, f.account, "001-1391820-5")
	assert.ErrorIs(t, err, utils.ErrDocumentMissing)

	_, err = f.svc.UploadDocument(ctx, f.account, "front", upload("front"))
	require.NoError(t, err)
	require.NotNil(t, f.reg(t).DocumentFrontKey)

	result, err := f.svc.VerifyCedula(ctx, f.account, "REPUBLICA DOMINICANA\nCEDULA 001-1391820-5\nJUAN PABLO")
	require.NoError(t, err)
	assert.Equal(t, utils.MatchExact, result.Match.Verdict)
	assert.Equal(t, StepBiometric, result.Progress.CurrentStep)
	assert.True(t, f.reg(t).CedulaVerified)

	_, err = f.svc.UploadDocument(ctx, f.account, "back", upload("back"))
	require.NoError(t, err, "the back can still be uploaded after verification")

	challenge, err := f.svc.BeginBiometric(ctx, f.account)
	require.NoError(t, err)
	require.NotEmpty(t, challenge.SessionID)

	p, err = f.svc.FinishBiometric(ctx, f.account, challenge.SessionID, []byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, StepInterests, p.CurrentStep)
	require.Len(t, f.creds.creds, 1)
	assert.Equal(t, f.account, f.creds.creds[0].AccountID)

	p, err = f.svc.SelectInterests(ctx, f.account, []string{"Salud", "educacion"})
	require.NoError(t, err)
	assert.True(t, p.Completed)
	assert.Equal(t, 100, p.Percent)

	reg := f.reg(t)
	require.NotNil(t, reg.StaircaseCompletedAt)
	assert.Equal(t, []string{"salud", "educacion"}, []string(reg.Interests))
	assert.Equal(t, int64(30), reg.Points)
	assert.Equal(t, db_models.PassportNone, reg.PassportLevel)
}

func TestVerifyCedulaVerdicts(t *testing.T) {
	ctx := context.Background()

	t.Run("fuzzy match within tolerance", func(t *testing.T) {
		f := newStaircaseFixture(t)
		_, err := f.svc.AcceptOath(ctx, f.account)
		require.NoError(t, err)
		_, err = f.svc.UploadDocument(ctx, f.account, "front", upload("front"))
		require.NoError(t, err)

		result, err := f.svc.VerifyCedula(ctx, f.account, "001-1391821-5")
		require.NoError(t, err)
		assert.Equal(t, utils.MatchFuzzy, result.Match.Verdict)
		assert.Equal(t, 1, result.Match.Distance)
	})

	t.Run("mismatch keeps the step open", func(t *testing.T) {
		f := newStaircaseFixture(t)
		_, err := f.svc.AcceptOath(ctx, f.account)
		require.NoError(t, err)
		_, err = f.svc.UploadDocument(ctx, f.account, "front", upload("front"))
		require.NoError(t, err)

		result, err := f.svc.VerifyCedula(ctx, f.account, "402-0012345-9")
		assert.ErrorIs(t, err, utils.ErrCedulaMismatch)
		require.NotNil(t, result)
		assert.Equal(t, utils.MatchMismatch, result.Match.Verdict)
		assert.Equal(t, StepDocument, result.Progress.CurrentStep)
		assert.False(t, f.reg(t).CedulaVerified)
	})

	t.Run("unreadable text", func(t *testing.T) {
		f := newStaircaseFixture(t)
		_, err := f.svc.AcceptOath(ctx, f.account)
		require.NoError(t, err)
		_, err = f.svc.UploadDocument(ctx, f.account, "front", upload("front"))
		require.NoError(t, err)

		result, err := f.svc.VerifyCedula(ctx, f.account, "REPUBLICA DOMINICANA")
		assert.ErrorIs(t, err, utils.ErrCedulaUnreadable)
		require.NotNil(t, result)
		assert.Equal(t, utils.MatchUnreadable, result.Match.Verdict)
	})
}

func TestUploadDocumentReplacesPreviousFront(t *testing.T) {
	ctx := context.Background()
	f := newStaircaseFixture(t)
	_, err := f.svc.AcceptOath(ctx, f.account)
	require.NoError(t, err)

	_, err = f.svc.UploadDocument(ctx, f.account, "front", upload("first"))
	require.NoError(t, err)
	first := *f.reg(t).DocumentFrontKey

	_, err = f.svc.UploadDocument(ctx, f.account, "front", upload("second"))
	require.NoError(t, err)

	assert.NotEqual(t, first, *f.reg(t).DocumentFrontKey)
	assert.Contains(t, f.docs.deleted, first)

	_, err = f.svc.UploadDocument(ctx, f.account, "side", upload("x"))
	assert.ErrorIs(t, err, utils.ErrInvalidUpload)
}

func TestBiometricSessions(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown session", func(t *testing.T) {
		f := newStaircaseFixture(t)
		f.passDocumentStep(t)

		_, err := f.svc.FinishBiometric(ctx, f.account, "missing", []byte(`{}`))
		assert.ErrorIs(t, err, utils.ErrBiometricSession)
	})

	t.Run("session is single use and bound to the account", func(t *testing.T) {
		f := newStaircaseFixture(t)
		f.passDocumentStep(t)

		challenge, err := f.svc.BeginBiometric(ctx, f.account)
		require.NoError(t, err)

		_, err = f.svc.FinishBiometric(ctx, uuid.New(), challenge.SessionID, []byte(`{}`))
		assert.ErrorIs(t, err, utils.ErrBiometricSession)

		_, err = f.svc.FinishBiometric(ctx, f.account, challenge.SessionID, []byte(`{}`))
		assert.ErrorIs(t, err, utils.ErrBiometricSession)
	})

	t.Run("malformed or rejected attestation", func(t *testing.T) {
		f := newStaircaseFixture(t)
		f.passDocumentStep(t)

		challenge, err := f.svc.BeginBiometric(ctx, f.account)
		require.NoError(t, err)
		_, err = f.svc.FinishBiometric(ctx, f.account, challenge.SessionID, []byte("garbage"))
		assert.ErrorIs(t, err, utils.ErrBiometricFailed)

		f.keys.reject = true
		challenge, err = f.svc.BeginBiometric(ctx, f.account)
		require.NoError(t, err)
		_, err = f.svc.FinishBiometric(ctx, f.account, challenge.SessionID, []byte(`{}`))
		assert.ErrorIs(t, err, utils.ErrBiometricFailed)
		assert.Nil(t, f.reg(t).BiometricVerifiedAt)
	})
}
