package services_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v80"

	"github.com/Neuro316/Neuro-progeny-university/models"
	awspkg "github.com/Neuro316/Neuro-progeny-university/pkg/aws"
	"github.com/Neuro316/Neuro-progeny-university/repository"
	"github.com/Neuro316/Neuro-progeny-university/sender"
)

// --- Paywalls ---

type memPaywalls struct {
	byID map[uuid.UUID]*models.Paywall
}

func newMemPaywalls(ps ...*models.Paywall) *memPaywalls {
	m := &memPaywalls{byID: map[uuid.UUID]*models.Paywall{}}
	for _, p := range ps {
		m.byID[p.ID] = p
	}
	return m
}

func (m *memPaywalls) FindActiveByID(_ context.Context, id uuid.UUID) (*models.Paywall, error) {
	p, ok := m.byID[id]
	if !ok || !p.IsActive {
		return nil, repository.ErrNotFound
	}
	return p, nil
}

func (m *memPaywalls) FindActiveBySlug(_ context.Context, slug string) (*models.Paywall, error) {
	for _, p := range m.byID {
		if p.Slug == slug && p.IsActive {
			return p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memPaywalls) FindByID(_ context.Context, id uuid.UUID) (*models.Paywall, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memPaywalls) List(_ context.Context, _, _ int) ([]models.Paywall, int64, error) {
	var out []models.Paywall
	for _, p := range m.byID {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (m *memPaywalls) Create(_ context.Context, p *models.Paywall) error {
	for _, existing := range m.byID {
		if existing.Slug == p.Slug {
			return repository.ErrDuplicate
		}
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	m.byID[p.ID] = p
	return nil
}

func (m *memPaywalls) Update(_ context.Context, p *models.Paywall) error {
	if _, ok := m.byID[p.ID]; !ok {
		return repository.ErrNotFound
	}
	m.byID[p.ID] = p
	return nil
}

func (m *memPaywalls) Deactivate(_ context.Context, id uuid.UUID) error {
	p, ok := m.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.IsActive = false
	return nil
}

// --- Payments ---

type memPayments struct {
	mu        sync.Mutex
	bySession map[string]*models.Payment
	createErr error
}

func newMemPayments() *memPayments {
	return &memPayments{bySession: map[string]*models.Payment{}}
}

func (m *memPayments) FindBySessionID(_ context.Context, sid string) (*models.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.bySession[sid]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return p, nil
}

func (m *memPayments) Create(_ context.Context, p *models.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	if _, ok := m.bySession[p.StripeSessionID]; ok {
		return repository.ErrDuplicate
	}
	p.ID = uuid.New()
	m.bySession[p.StripeSessionID] = p
	return nil
}

func (m *memPayments) List(_ context.Context, _, _ int) ([]models.Payment, int64, error) {
	var out []models.Payment
	for _, p := range m.bySession {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (m *memPayments) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.bySession)
}

// --- Enrollments ---

type memberKey struct{ cohort, user uuid.UUID }

type memEnrollments struct {
	profiles     map[string]*models.Profile
	members      map[memberKey]models.CohortMember
	pending      []models.PendingEnrollment
	addMemberErr error
	profileErr   error
}

func newMemEnrollments(profiles ...*models.Profile) *memEnrollments {
	m := &memEnrollments{
		profiles: map[string]*models.Profile{},
		members:  map[memberKey]models.CohortMember{},
	}
	for _, p := range profiles {
		m.profiles[p.Email] = p
	}
	return m
}

func (m *memEnrollments) FindProfileByEmail(_ context.Context, email string) (*models.Profile, error) {
	if m.profileErr != nil {
		return nil, m.profileErr
	}
	p, ok := m.profiles[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return p, nil
}

func (m *memEnrollments) MemberExists(_ context.Context, cohortID, userID uuid.UUID) (bool, error) {
	_, ok := m.members[memberKey{cohortID, userID}]
	return ok, nil
}

func (m *memEnrollments) AddMember(_ context.Context, member *models.CohortMember) error {
	if m.addMemberErr != nil {
		return m.addMemberErr
	}
	k := memberKey{member.CohortID, member.UserID}
	if _, ok := m.members[k]; ok {
		return repository.ErrDuplicate
	}
	m.members[k] = *member
	return nil
}

func (m *memEnrollments) CreatePendingEnrollment(_ context.Context, p *models.PendingEnrollment) error {
	for _, existing := range m.pending {
		if existing.StripeSessionID == p.StripeSessionID {
			return repository.ErrDuplicate
		}
	}
	p.ID = uuid.New()
	m.pending = append(m.pending, *p)
	return nil
}

// --- Charges ---

type memCharges struct {
	charges []models.ScheduledCharge
}

func (m *memCharges) Create(_ context.Context, c *models.ScheduledCharge) error {
	c.ID = uuid.New()
	m.charges = append(m.charges, *c)
	return nil
}

// --- Email logs ---

type memEmailLogs struct {
	logs    []models.EmailLog
	saveErr error
}

func (m *memEmailLogs) Save(_ context.Context, l *models.EmailLog) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.logs = append(m.logs, *l)
	return nil
}

func (m *memEmailLogs) GetLogs(_ context.Context, f models.EmailLogFilter) ([]models.EmailLog, int64, error) {
	var out []models.EmailLog
	for _, l := range m.logs {
		if f.Status != "" && l.Status != f.Status {
			continue
		}
		out = append(out, l)
	}
	return out, int64(len(out)), nil
}

// --- Catalog ---

type memCatalog struct {
	courses map[uuid.UUID]*models.Course
	cohorts map[uuid.UUID]*models.Cohort
}

func (m *memCatalog) FindCourse(_ context.Context, id uuid.UUID) (*models.Course, error) {
	c, ok := m.courses[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return c, nil
}

func (m *memCatalog) FindCohort(_ context.Context, id uuid.UUID) (*models.Cohort, error) {
	c, ok := m.cohorts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return c, nil
}

// --- Mail transport and queues ---

type sentEmail struct {
	To, Subject, Body string
}

type fakeSender struct {
	sent []sentEmail
	err  error
}

func (f *fakeSender) SendEmail(_ context.Context, to, subject, body string) (sender.SendResult, error) {
	if f.err != nil {
		return sender.SendResult{}, f.err
	}
	f.sent = append(f.sent, sentEmail{to, subject, body})
	return sender.SendResult{MessageID: "msg"}, nil
}

type fakeQueue struct {
	bodies []string
	delays []time.Duration
}

func (f *fakeQueue) SendMessage(_ context.Context, body string, delay time.Duration) error {
	f.bodies = append(f.bodies, body)
	f.delays = append(f.delays, delay)
	return nil
}

type fakeSNS struct {
	messages      [][]byte
	notifications []awspkg.Notification
}

func (f *fakeSNS) Publish(_ context.Context, n awspkg.Notification) error {
	f.messages = append(f.messages, n.Body)
	f.notifications = append(f.notifications, n)
	return nil
}

// --- Gateway ---

type fakeGateway struct {
	params    *stripe.CheckoutSessionParams
	err       error
	secretSet bool
}

func (f *fakeGateway) CreateCheckoutSession(_ context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	f.params = params
	if f.err != nil {
		return nil, f.err
	}
	return &stripe.CheckoutSession{ID: "cs_test_123", URL: "https://checkout.stripe.com/c/pay/cs_test_123"}, nil
}

func (f *fakeGateway) ConstructEvent(_ []byte, _ string) (stripe.Event, error) {
	return stripe.Event{}, errors.New("not supported by fake")
}

func (f *fakeGateway) HasWebhookSecret() bool { return f.secretSet }
