package services

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"gladiadores/internal/models/db_models"
	"gladiadores/internal/models/request_models"
	resp "gladiadores/internal/models/response_models"
	"gladiadores/internal/repositories"
)

type fakeRegistrationRepo struct {
	mu       sync.Mutex
	regs     map[uuid.UUID]*db_models.Registration
	counters map[string]*db_models.ProvinceCounter
}

func newFakeRegistrationRepo() *fakeRegistrationRepo {
	return &fakeRegistrationRepo{
		regs:     map[uuid.UUID]*db_models.Registration{},
		counters: map[string]*db_models.ProvinceCounter{},
	}
}

func (f *fakeRegistrationRepo) add(reg *db_models.Registration) *db_models.Registration {
	f.mu.Lock()
	defer f.mu.Unlock()
	if reg.ID == uuid.Nil {
		reg.ID = uuid.New()
	}
	if reg.PassportLevel == "" {
		reg.PassportLevel = db_models.PassportNone
	}
	if reg.VoteStatus == "" {
		reg.VoteStatus = db_models.VoteNone
	}
	f.regs[reg.ID] = reg
	return reg
}

func (f *fakeRegistrationRepo) snapshot() map[uuid.UUID]db_models.Registration {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[uuid.UUID]db_models.Registration, len(f.regs))
	for id, r := range f.regs {
		out[id] = *r
	}
	return out
}

func (f *fakeRegistrationRepo) restore(snap map[uuid.UUID]db_models.Registration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.regs = make(map[uuid.UUID]*db_models.Registration, len(snap))
	for id, r := range snap {
		r := r
		f.regs[id] = &r
	}
}

func (f *fakeRegistrationRepo) CreateWithCounter(_ context.Context, reg *db_models.Registration, defaultThreshold, now int64) (*db_models.ProvinceCounter, bool, error) {
	f.mu.Lock()
	for _, r := range f.regs {
		if r.Cedula == reg.Cedula {
			f.mu.Unlock()
			return nil, false, gorm.ErrDuplicatedKey
		}
	}
	f.mu.Unlock()

	f.add(reg)

	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.counters[reg.Province]
	if !ok {
		c = &db_models.ProvinceCounter{Province: reg.Province, CIDPThreshold: defaultThreshold}
		f.counters[reg.Province] = c
	}
	c.Registrations++
	unlocked := false
	if c.CIDPUnlockedAt == nil && CIDPReached(c.Registrations, c.CIDPThreshold) {
		at := now
		c.CIDPUnlockedAt = &at
		unlocked = true
	}
	copied := *c
	return &copied, unlocked, nil
}

func (f *fakeRegistrationRepo) find(match func(*db_models.Registration) bool) *db_models.Registration {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.regs {
		if match(r) {
			return r
		}
	}
	return nil
}

func (f *fakeRegistrationRepo) FindById(_ context.Context, id uuid.UUID) (*db_models.Registration, error) {
	return f.find(func(r *db_models.Registration) bool { return r.ID == id }), nil
}

func (f *fakeRegistrationRepo) FindByAccount(_ context.Context, accountID uuid.UUID) (*db_models.Registration, error) {
	return f.find(func(r *db_models.Registration) bool { return r.AccountID == accountID }), nil
}

func (f *fakeRegistrationRepo) FindByCedula(_ context.Context, cedula string) (*db_models.Registration, error) {
	return f.find(func(r *db_models.Registration) bool { return r.Cedula == cedula }), nil
}

func (f *fakeRegistrationRepo) FindByReferralCode(_ context.Context, code string) (*db_models.Registration, error) {
	return f.find(func(r *db_models.Registration) bool { return r.ReferralCode == code }), nil
}

func (f *fakeRegistrationRepo) ReferralCodeExists(ctx context.Context, code string) (bool, error) {
	r, _ := f.FindByReferralCode(ctx, code)
	return r != nil, nil
}

func (f *fakeRegistrationRepo) referred(code string) []db_models.Registration {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []db_models.Registration
	for _, r := range f.regs {
		if r.ReferredByCode != nil && *r.ReferredByCode == code {
			out = append(out, *r)
		}
	}
	return out
}

func (f *fakeRegistrationRepo) CountReferrals(_ context.Context, code string) (int64, error) {
	return int64(len(f.referred(code))), nil
}

func (f *fakeRegistrationRepo) ListReferrals(_ context.Context, code string, limit int) ([]db_models.Registration, error) {
	out := f.referred(code)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeRegistrationRepo) UpdateColumns(_ context.Context, id uuid.UUID, fields map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.regs[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	return applyRegistrationFields(r, fields)
}

func (f *fakeRegistrationRepo) UpdateVoteStatus(_ context.Context, id uuid.UUID, from db_models.VoteStatus, fields map[string]interface{}) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.regs[id]
	if !ok || r.VoteStatus != from {
		return false, nil
	}
	return true, applyRegistrationFields(r, fields)
}

func applyRegistrationFields(r *db_models.Registration, fields map[string]interface{}) error {
	for k, v := range fields {
		switch k {
		case "points":
			r.Points = v.(int64)
		case "passport_level":
			r.PassportLevel = v.(db_models.PassportLevel)
		case "oath_accepted_at":
			t := v.(int64)
			r.OathAcceptedAt = &t
		case "document_front_key":
			s := v.(string)
			r.DocumentFrontKey = &s
		case "document_back_key":
			s := v.(string)
			r.DocumentBackKey = &s
		case "cedula_verified":
			r.CedulaVerified = v.(bool)
		case "cedula_ocr_distance":
			d := v.(int)
			r.CedulaOCRDistance = &d
		case "biometric_verified_at":
			t := v.(int64)
			r.BiometricVerifiedAt = &t
		case "interests":
			r.Interests = v.(pq.StringArray)
		case "staircase_completed_at":
			t := v.(int64)
			r.StaircaseCompletedAt = &t
		case "vote_status":
			r.VoteStatus = v.(db_models.VoteStatus)
		case "vote_evidence_key":
			s := v.(string)
			r.VoteEvidenceKey = &s
		case "vote_validated_at":
			t := v.(int64)
			r.VoteValidatedAt = &t
		default:
			return fmt.Errorf("fake: unknown column %q", k)
		}
	}
	return nil
}

func (f *fakeRegistrationRepo) Leaderboard(_ context.Context, province string, limit int) ([]db_models.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []db_models.Registration
	for _, r := range f.regs {
		if province == "" || r.Province == province {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Points > out[j].Points })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeRegistrationRepo) ListAudience(_ context.Context, province *string, level *db_models.PassportLevel) ([]repositories.AudienceRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []repositories.AudienceRow
	for _, r := range f.regs {
		if r.Email == "" {
			continue
		}
		if province != nil && r.Province != *province {
			continue
		}
		if level != nil && r.PassportLevel != *level {
			continue
		}
		out = append(out, repositories.AudienceRow{AccountID: r.AccountID, FullName: r.FullName, Email: r.Email})
	}
	return out, nil
}

func (f *fakeRegistrationRepo) ListIDsAfter(_ context.Context, after uuid.UUID, limit int) ([]uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]uuid.UUID, 0, len(f.regs))
	for id := range f.regs {
		if strings.Compare(id.String(), after.String()) > 0 {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

func (f *fakeRegistrationRepo) countByProvince() map[string]int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := map[string]int64{}
	for _, r := range f.regs {
		counts[r.Province]++
	}
	return counts
}

type fakeProvinceRepo struct {
	mu       sync.Mutex
	counters map[string]*db_models.ProvinceCounter
	// regs backs Recount; nil means no registrations.
	regs *fakeRegistrationRepo
}

func newFakeProvinceRepo(threshold int64, names ...string) *fakeProvinceRepo {
	f := &fakeProvinceRepo{counters: map[string]*db_models.ProvinceCounter{}}
	_ = f.Seed(context.Background(), names, threshold)
	return f
}

func (f *fakeProvinceRepo) Seed(_ context.Context, names []string, threshold int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range names {
		if _, ok := f.counters[n]; !ok {
			f.counters[n] = &db_models.ProvinceCounter{Province: n, CIDPThreshold: threshold}
		}
	}
	return nil
}

func (f *fakeProvinceRepo) List(_ context.Context) ([]db_models.ProvinceCounter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]db_models.ProvinceCounter, 0, len(f.counters))
	for _, c := range f.counters {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Registrations > out[j].Registrations })
	return out, nil
}

func (f *fakeProvinceRepo) FindByName(_ context.Context, name string) (*db_models.ProvinceCounter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for n, c := range f.counters {
		if strings.EqualFold(n, name) {
			copied := *c
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeProvinceRepo) SetThreshold(_ context.Context, name string, threshold int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.counters[name]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.CIDPThreshold = threshold
	return nil
}

func (f *fakeProvinceRepo) Recount(_ context.Context, _ int64) ([]repositories.ProvinceCount, error) {
	actual := map[string]int64{}
	if f.regs != nil {
		actual = f.regs.countByProvince()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []repositories.ProvinceCount
	for name, c := range f.counters {
		if c.Registrations != actual[name] {
			c.Registrations = actual[name]
			out = append(out, repositories.ProvinceCount{Province: name, Count: c.Registrations})
		}
	}
	return out, nil
}

// SetCount forces a counter value to simulate drift.
func (f *fakeProvinceRepo) SetCount(_ context.Context, name string, count int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.counters[name]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.Registrations = count
	return nil
}

func (f *fakeProvinceRepo) MarkUnlocked(_ context.Context, name string, at int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.counters[name]
	if !ok || c.CIDPUnlockedAt != nil || !CIDPReached(c.Registrations, c.CIDPThreshold) {
		return false, nil
	}
	c.CIDPUnlockedAt = &at
	return true, nil
}

type fakeDonationRepo struct {
	mu        sync.Mutex
	donations map[uuid.UUID]*db_models.Donation
	regs      *fakeRegistrationRepo
}

func newFakeDonationRepo(regs *fakeRegistrationRepo) *fakeDonationRepo {
	return &fakeDonationRepo{donations: map[uuid.UUID]*db_models.Donation{}, regs: regs}
}

func (f *fakeDonationRepo) Create(_ context.Context, d *db_models.Donation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	f.donations[d.ID] = d
	return nil
}

func (f *fakeDonationRepo) FindById(ctx context.Context, id uuid.UUID) (*db_models.Donation, error) {
	f.mu.Lock()
	d, ok := f.donations[id]
	f.mu.Unlock()
	if !ok {
		return nil, nil
	}
	copied := *d
	if reg, _ := f.regs.FindById(ctx, d.RegistrationID); reg != nil {
		copied.Registration = *reg
	}
	return &copied, nil
}

func (f *fakeDonationRepo) ListByRegistration(_ context.Context, registrationID uuid.UUID) ([]db_models.Donation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []db_models.Donation
	for _, d := range f.donations {
		if d.RegistrationID == registrationID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (f *fakeDonationRepo) ListByStatus(_ context.Context, status db_models.DonationStatus, _, _ int) ([]db_models.Donation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []db_models.Donation
	for _, d := range f.donations {
		if d.Status == status {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (f *fakeDonationRepo) CountApproved(_ context.Context, registrationID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, d := range f.donations {
		if d.RegistrationID == registrationID && d.Status == db_models.DonationApproved {
			n++
		}
	}
	return n, nil
}

func (f *fakeDonationRepo) Review(_ context.Context, id uuid.UUID, to db_models.DonationStatus, reviewer uuid.UUID, at int64, reason string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.donations[id]
	if !ok || d.Status != db_models.DonationPending {
		return false, nil
	}
	d.Status = to
	d.ReviewedBy = &reviewer
	d.ReviewedAt = &at
	d.RejectionReason = reason
	return true, nil
}

func (f *fakeDonationRepo) snapshot() map[uuid.UUID]db_models.Donation {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[uuid.UUID]db_models.Donation, len(f.donations))
	for id, d := range f.donations {
		out[id] = *d
	}
	return out
}

func (f *fakeDonationRepo) restore(snap map[uuid.UUID]db_models.Donation) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.donations = make(map[uuid.UUID]*db_models.Donation, len(snap))
	for id, d := range snap {
		d := d
		f.donations[id] = &d
	}
}

// snapshotTx restores the fake repositories when fn fails, like a rollback.
type snapshotTx struct {
	regs      *fakeRegistrationRepo
	donations *fakeDonationRepo
}

func (s *snapshotTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	regs := s.regs.snapshot()
	donations := s.donations.snapshot()
	if err := fn(ctx); err != nil {
		s.regs.restore(regs)
		s.donations.restore(donations)
		return err
	}
	return nil
}

// fakeDocuments records stored keys without touching object storage.
type fakeDocuments struct {
	mu      sync.Mutex
	stored  map[string][]byte
	deleted []string
}

func newFakeDocuments() *fakeDocuments {
	return &fakeDocuments{stored: map[string][]byte{}}
}

func (f *fakeDocuments) Store(_ context.Context, accountID uuid.UUID, kind string, up Upload) (string, error) {
	body, err := io.ReadAll(up.Body)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("%s/%s-%s.jpg", accountID, kind, uuid.NewString())
	f.mu.Lock()
	f.stored[key] = body
	f.mu.Unlock()
	return key, nil
}

func (f *fakeDocuments) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.stored, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeDocuments) PresignURL(_ context.Context, key string) (string, error) {
	return "https://storage.test/" + key, nil
}

func (f *fakeDocuments) GetOwnDocumentURLs(_ context.Context, _ uuid.UUID) (*resp.DocumentURLs, error) {
	return &resp.DocumentURLs{}, nil
}

type fakeInterests struct{}

func (fakeInterests) GetAllInterests(context.Context, int, int) ([]resp.InterestResponse, error) {
	return nil, nil
}

func (fakeInterests) CreateInterest(context.Context, request_models.CreateInterestRequest) (*resp.InterestResponse, error) {
	return nil, nil
}

func (fakeInterests) ValidateSelection(_ context.Context, slugs []string) ([]string, error) {
	return normalizeSlugs(slugs), nil
}

func (fakeInterests) Seed(context.Context) error { return nil }

func normalizeSlugs(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, strings.ToLower(strings.TrimSpace(s)))
	}
	return out
}

type fakeCredentialRepo struct {
	creds []db_models.WebAuthnCredential
}

func (f *fakeCredentialRepo) Create(_ context.Context, cred *db_models.WebAuthnCredential) error {
	f.creds = append(f.creds, *cred)
	return nil
}

func (f *fakeCredentialRepo) ListByAccount(_ context.Context, accountID uuid.UUID) ([]db_models.WebAuthnCredential, error) {
	var out []db_models.WebAuthnCredential
	for _, c := range f.creds {
		if c.AccountID == accountID {
			out = append(out, c)
		}
	}
	return out, nil
}

// recordingHub keeps every published event in memory.
type recordingHub struct {
	mu     sync.Mutex
	events []RealtimeEvent
}

func (h *recordingHub) Publish(_ context.Context, channel, eventType string, _ interface{}) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, RealtimeEvent{Type: eventType, Channel: channel})
	return nil
}

func (h *recordingHub) Subscribe(context.Context, ...string) (<-chan RealtimeEvent, func(), error) {
	ch := make(chan RealtimeEvent)
	return ch, func() {}, nil
}

func (h *recordingHub) types() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, 0, len(h.events))
	for _, e := range h.events {
		out = append(out, e.Type)
	}
	return out
}

// recordingMail captures outgoing mail instead of sending it.
type recordingMail struct {
	mu      sync.Mutex
	welcome []string
	notify  []string
	resets  map[string]string
}

func (m *recordingMail) SendNotification(to, _, _, _, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notify = append(m.notify, to)
	return nil
}

func (m *recordingMail) SendPasswordReset(to, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.resets == nil {
		m.resets = map[string]string{}
	}
	m.resets[to] = token
	return nil
}

func (m *recordingMail) SendWelcome(to, _, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.welcome = append(m.welcome, to)
	return nil
}
