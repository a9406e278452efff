package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"gladiadores/internal/models/db_models"
	resp "gladiadores/internal/models/response_models"
	"gladiadores/internal/repositories"
	mem "gladiadores/pkg/memcache"
	"gladiadores/pkg/utils"
)

const (
	StepOath      = "oath"
	StepDocument  = "document"
	StepBiometric = "biometric"
	StepInterests = "interests"
)

var stepOrder = []string{StepOath, StepDocument, StepBiometric, StepInterests}

func staircaseSteps(reg *db_models.Registration) []resp.StaircaseStep {
	done := map[string]bool{
		StepOath:      reg.OathAcceptedAt != nil,
		StepDocument:  reg.DocumentFrontKey != nil && reg.CedulaVerified,
		StepBiometric: reg.BiometricVerifiedAt != nil,
		StepInterests: len(reg.Interests) > 0,
	}
	steps := make([]resp.StaircaseStep, 0, len(stepOrder))
	for _, name := range stepOrder {
		steps = append(steps, resp.StaircaseStep{Name: name, Completed: done[name]})
	}
	return steps
}

func progressOf(reg *db_models.Registration) resp.StaircaseProgress {
	steps := staircaseSteps(reg)
	out := resp.StaircaseProgress{Steps: steps}
	completed := 0
	for _, s := range steps {
		if s.Completed {
			completed++
		} else if out.CurrentStep == "" {
			out.CurrentStep = s.Name
		}
	}
	out.Percent = completed * 100 / len(steps)
	out.Completed = completed == len(steps)
	return out
}

// checkStep enforces the order of the staircase.
func checkStep(reg *db_models.Registration, step string) error {
	for _, s := range staircaseSteps(reg) {
		if s.Name == step {
			if s.Completed {
				return utils.ErrStepAlreadyDone
			}
			return nil
		}
		if !s.Completed {
			return utils.ErrStepOutOfOrder
		}
	}
	return fmt.Errorf("unknown staircase step %q", step)
}

// passkeyProvider is the part of *webauthn.WebAuthn used for the biometric step.
type passkeyProvider interface {
	BeginRegistration(user webauthn.User, opts ...webauthn.RegistrationOption) (*protocol.CredentialCreation, *webauthn.SessionData, error)
	CreateCredential(user webauthn.User, session webauthn.SessionData, response *protocol.ParsedCredentialCreationData) (*webauthn.Credential, error)
}

type passkeyParser interface {
	ParseCredentialCreationResponseBytes(data []byte) (*protocol.ParsedCredentialCreationData, error)
}

type defaultPasskeyParser struct{}

func (defaultPasskeyParser) ParseCredentialCreationResponseBytes(data []byte) (*protocol.ParsedCredentialCreationData, error) {
	return protocol.ParseCredentialCreationResponseBytes(data)
}

type passkeyUser struct {
	reg         *db_models.Registration
	credentials []webauthn.Credential
}

func (u *passkeyUser) WebAuthnID() []byte {
	return []byte(u.reg.AccountID.String())
}

func (u *passkeyUser) WebAuthnName() string {
	return u.reg.ReferralCode
}

func (u *passkeyUser) WebAuthnDisplayName() string {
	return u.reg.FullName
}

func (u *passkeyUser) WebAuthnCredentials() []webauthn.Credential {
	return u.credentials
}

type biometricSession struct {
	AccountID string               `json:"account_id"`
	Data      webauthn.SessionData `json:"data"`
}

type StaircaseServiceInterface interface {
	Progress(ctx context.Context, accountID uuid.UUID) (*resp.StaircaseProgress, error)
	AcceptOath(ctx context.Context, accountID uuid.UUID) (*resp.StaircaseProgress, error)
	UploadDocument(ctx context.Context, accountID uuid.UUID, side string, up Upload) (*resp.StaircaseProgress, error)
	VerifyCedula(ctx context.Context, accountID uuid.UUID, ocrText string) (*resp.CedulaVerification, error)
	BeginBiometric(ctx context.Context, accountID uuid.UUID) (*resp.BiometricChallenge, error)
	FinishBiometric(ctx context.Context, accountID uuid.UUID, sessionID string, credential []byte) (*resp.StaircaseProgress, error)
	SelectInterests(ctx context.Context, accountID uuid.UUID, slugs []string) (*resp.StaircaseProgress, error)
}

type StaircaseService struct {
	registrationRepo repositories.RegistrationRepository
	credentialRepo   repositories.WebAuthnCredentialRepository
	documents        DocumentServiceInterface
	interests        InterestServiceInterface
	passport         PassportServiceInterface
	passkeys         passkeyProvider
	parser           passkeyParser
	sessions         mem.TokenStore
	cfg              StaircaseConfig
	log              *zap.Logger
	now              func() int64
}

type StaircaseConfig struct {
	OCRMaxDistance int
	SessionTTL     time.Duration
}

type StaircaseServiceDeps struct {
	RegistrationRepo repositories.RegistrationRepository
	CredentialRepo   repositories.WebAuthnCredentialRepository
	Documents        DocumentServiceInterface
	Interests        InterestServiceInterface
	Passport         PassportServiceInterface
	WebAuthn         *webauthn.WebAuthn
	Sessions         mem.TokenStore
	Config           StaircaseConfig
	Log              *zap.Logger
}

func NewStaircaseService(d StaircaseServiceDeps) StaircaseServiceInterface {
	return &StaircaseService{
		registrationRepo: d.RegistrationRepo,
		credentialRepo:   d.CredentialRepo,
		documents:        d.Documents,
		interests:        d.Interests,
		passport:         d.Passport,
		passkeys:         d.WebAuthn,
		parser:           defaultPasskeyParser{},
		sessions:         d.Sessions,
		cfg:              d.Config,
		log:              d.Log,
		now:              utils.NowUnixSeconds,
	}
}

func (s *StaircaseService) own(ctx context.Context, accountID uuid.UUID) (*db_models.Registration, error) {
	reg, err := s.registrationRepo.FindByAccount(ctx, accountID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if reg == nil {
		return nil, utils.ErrRegistrationNotFound
	}
	return reg, nil
}

func (s *StaircaseService) update(ctx context.Context, reg *db_models.Registration, fields map[string]interface{}) error {
	if err := s.registrationRepo.UpdateColumns(ctx, reg.ID, fields); err != nil {
		return utils.ErrDatabaseError
	}
	return nil
}

// stepCompleted refreshes points and level after a step lands.
func (s *StaircaseService) stepCompleted(ctx context.Context, reg *db_models.Registration, step string) *resp.StaircaseProgress {
	s.log.Info("staircase step completed", zap.String("registration_id", reg.ID.String()), zap.String("step", step))
	if _, err := s.passport.Reevaluate(ctx, reg.ID); err != nil {
		s.log.Error("passport re-evaluation failed", zap.String("registration_id", reg.ID.String()), zap.Error(err))
	}
	p := progressOf(reg)
	return &p
}

func (s *StaircaseService) Progress(ctx context.Context, accountID uuid.UUID) (*resp.StaircaseProgress, error) {
	reg, err := s.own(ctx, accountID)
	if err != nil {
		return nil, err
	}
	p := progressOf(reg)
	return &p, nil
}

func (s *StaircaseService) AcceptOath(ctx context.Context, accountID uuid.UUID) (*resp.StaircaseProgress, error) {
	reg, err := s.own(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if err := checkStep(reg, StepOath); err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.update(ctx, reg, map[string]interface{}{"oath_accepted_at": now}); err != nil {
		return nil, err
	}
	reg.OathAcceptedAt = &now
	return s.stepCompleted(ctx, reg, StepOath), nil
}

func (s *StaircaseService) UploadDocument(ctx context.Context, accountID uuid.UUID, side string, up Upload) (*resp.StaircaseProgress, error) {
	var kind, column string
	switch side {
	case "front":
		kind, column = DocCedulaFront, "document_front_key"
	case "back":
		kind, column = DocCedulaBack, "document_back_key"
	default:
		return nil, utils.ErrInvalidUpload
	}

	reg, err := s.own(ctx, accountID)
	if err != nil {
		return nil, err
	}
	// The back may be replaced at any time after the oath; the front is frozen once verified.
	if err := checkStep(reg, StepDocument); err != nil && !(side == "back" && err == utils.ErrStepAlreadyDone) {
		return nil, err
	}

	key, err := s.documents.Store(ctx, accountID, kind, up)
	if err != nil {
		return nil, err
	}

	previous := reg.DocumentFrontKey
	if side == "back" {
		previous = reg.DocumentBackKey
	}
	if err := s.update(ctx, reg, map[string]interface{}{column: key}); err != nil {
		_ = s.documents.Delete(ctx, key)
		return nil, err
	}
	if previous != nil {
		_ = s.documents.Delete(ctx, *previous)
	}

	if side == "front" {
		reg.DocumentFrontKey = &key
	} else {
		reg.DocumentBackKey = &key
	}
	p := progressOf(reg)
	return &p, nil
}

func (s *StaircaseService) VerifyCedula(ctx context.Context, accountID uuid.UUID, ocrText string) (*resp.CedulaVerification, error) {
	reg, err := s.own(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if err := checkStep(reg, StepDocument); err != nil {
		return nil, err
	}
	if reg.DocumentFrontKey == nil {
		return nil, utils.ErrDocumentMissing
	}

	match := utils.MatchCedula(reg.Cedula, ocrText, s.cfg.OCRMaxDistance)
	distance := match.Distance
	fields := map[string]interface{}{"cedula_ocr_distance": distance}
	if match.Accepted() {
		fields["cedula_verified"] = true
	}
	if err := s.update(ctx, reg, fields); err != nil {
		return nil, err
	}
	reg.CedulaOCRDistance = &distance

	s.log.Info("cedula verification",
		zap.String("registration_id", reg.ID.String()),
		zap.String("verdict", string(match.Verdict)),
		zap.Int("distance", distance))

	switch match.Verdict {
	case utils.MatchUnreadable:
		return &resp.CedulaVerification{Match: match, Progress: progressOf(reg)}, utils.ErrCedulaUnreadable
	case utils.MatchMismatch:
		return &resp.CedulaVerification{Match: match, Progress: progressOf(reg)}, utils.ErrCedulaMismatch
	}

	reg.CedulaVerified = true
	return &resp.CedulaVerification{Match: match, Progress: *s.stepCompleted(ctx, reg, StepDocument)}, nil
}

func (s *StaircaseService) loadPasskeyUser(ctx context.Context, reg *db_models.Registration) (*passkeyUser, error) {
	records, err := s.credentialRepo.ListByAccount(ctx, reg.AccountID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	creds := make([]webauthn.Credential, 0, len(records))
	for _, r := range records {
		var c webauthn.Credential
		if err := json.Unmarshal([]byte(r.CredentialJSON), &c); err != nil {
			return nil, fmt.Errorf("decode credential %s: %w", r.CredentialID, err)
		}
		creds = append(creds, c)
	}
	return &passkeyUser{reg: reg, credentials: creds}, nil
}

func (s *StaircaseService) BeginBiometric(ctx context.Context, accountID uuid.UUID) (*resp.BiometricChallenge, error) {
	reg, err := s.own(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if err := checkStep(reg, StepBiometric); err != nil {
		return nil, err
	}

	user, err := s.loadPasskeyUser(ctx, reg)
	if err != nil {
		return nil, err
	}

	opts := []webauthn.RegistrationOption{
		webauthn.WithAuthenticatorSelection(protocol.AuthenticatorSelection{
			AuthenticatorAttachment: protocol.Platform,
			ResidentKey:             protocol.ResidentKeyRequirementPreferred,
			UserVerification:        protocol.VerificationRequired,
		}),
	}
	if len(user.credentials) > 0 {
		opts = append(opts, webauthn.WithExclusions(webauthn.Credentials(user.credentials).CredentialDescriptors()))
	}

	creation, session, err := s.passkeys.BeginRegistration(user, opts...)
	if err != nil {
		return nil, fmt.Errorf("begin biometric: %w", err)
	}

	sessionID, err := utils.GenerateSecureToken(16)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(biometricSession{AccountID: accountID.String(), Data: *session})
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Set(ctx, sessionID, string(payload), s.cfg.SessionTTL); err != nil {
		return nil, err
	}

	return &resp.BiometricChallenge{SessionID: sessionID, Options: creation}, nil
}

func (s *StaircaseService) FinishBiometric(ctx context.Context, accountID uuid.UUID, sessionID string, credential []byte) (*resp.StaircaseProgress, error) {
	raw, err := s.sessions.Consume(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, utils.ErrBiometricSession
	}
	var session biometricSession
	if err := json.Unmarshal([]byte(raw), &session); err != nil || session.AccountID != accountID.String() {
		return nil, utils.ErrBiometricSession
	}

	reg, err := s.own(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if err := checkStep(reg, StepBiometric); err != nil {
		return nil, err
	}

	parsed, err := s.parser.ParseCredentialCreationResponseBytes(credential)
	if err != nil {
		return nil, utils.ErrBiometricFailed
	}
	user, err := s.loadPasskeyUser(ctx, reg)
	if err != nil {
		return nil, err
	}
	cred, err := s.passkeys.CreateCredential(user, session.Data, parsed)
	if err != nil {
		s.log.Warn("biometric ceremony rejected", zap.String("registration_id", reg.ID.String()), zap.Error(err))
		return nil, utils.ErrBiometricFailed
	}

	credJSON, err := json.Marshal(cred)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if err := s.credentialRepo.Create(ctx, &db_models.WebAuthnCredential{
		AccountID:      accountID,
		CredentialID:   base64.RawURLEncoding.EncodeToString(cred.ID),
		CredentialJSON: string(credJSON),
		LastUsedAt:     &now,
	}); err != nil {
		return nil, utils.ErrDatabaseError
	}

	if err := s.update(ctx, reg, map[string]interface{}{"biometric_verified_at": now}); err != nil {
		return nil, err
	}
	reg.BiometricVerifiedAt = &now
	return s.stepCompleted(ctx, reg, StepBiometric), nil
}

func (s *StaircaseService) SelectInterests(ctx context.Context, accountID uuid.UUID, slugs []string) (*resp.StaircaseProgress, error) {
	reg, err := s.own(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if err := checkStep(reg, StepInterests); err != nil {
		return nil, err
	}

	clean, err := s.interests.ValidateSelection(ctx, slugs)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.update(ctx, reg, map[string]interface{}{
		"interests":              pq.StringArray(clean),
		"staircase_completed_at": now,
	}); err != nil {
		return nil, err
	}
	reg.Interests = clean
	reg.StaircaseCompletedAt = &now
	return s.stepCompleted(ctx, reg, StepInterests), nil
}
