package service

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/ignatzorin/mingree-backend/internal/domain/valueobject"
	"github.com/ignatzorin/mingree-backend/internal/models"
	"github.com/ignatzorin/mingree-backend/internal/repository"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testNow }

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

// recordingNotifier запоминает отправленные события.
type recordingNotifier struct {
	mu     sync.Mutex
	events []sentEvent
}

type sentEvent struct {
	UserID uuid.UUID
	Event  string
	Data   any
}

func (n *recordingNotifier) BroadcastToUser(userID uuid.UUID, event string, data any) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, sentEvent{UserID: userID, Event: event, Data: data})
	return nil
}

func (n *recordingNotifier) sent() []sentEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]sentEvent(nil), n.events...)
}

type mockUserReader struct {
	mock.Mock
}

func (m *mockUserReader) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type mockCampaignRepo struct {
	mock.Mock
}

func (m *mockCampaignRepo) Create(ctx context.Context, c *models.Campaign, funding valueobject.Breakdown) (*models.Transaction, error) {
	args := m.Called(ctx, c, funding)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *mockCampaignRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Campaign, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Campaign), args.Error(1)
}

func (m *mockCampaignRepo) ListFeed(ctx context.Context, userID uuid.UUID, f models.CampaignFilter) ([]models.Campaign, error) {
	args := m.Called(ctx, userID, f)
	return args.Get(0).([]models.Campaign), args.Error(1)
}

func (m *mockCampaignRepo) ListBySponsor(ctx context.Context, sponsorID uuid.UUID, limit, offset int) ([]models.Campaign, error) {
	args := m.Called(ctx, sponsorID, limit, offset)
	return args.Get(0).([]models.Campaign), args.Error(1)
}

func (m *mockCampaignRepo) ListPending(ctx context.Context, limit, offset int) ([]models.Campaign, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]models.Campaign), args.Error(1)
}

func (m *mockCampaignRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to string) (*models.Campaign, error) {
	args := m.Called(ctx, id, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Campaign), args.Error(1)
}

func (m *mockCampaignRepo) SetCover(ctx context.Context, id uuid.UUID, path string) error {
	return m.Called(ctx, id, path).Error(0)
}

func (m *mockCampaignRepo) Approve(ctx context.Context, id uuid.UUID) (*models.Campaign, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Campaign), args.Error(1)
}

func (m *mockCampaignRepo) Reject(ctx context.Context, id uuid.UUID) (*models.Campaign, *models.Transaction, error) {
	return m.campaignAndTx(m.Called(ctx, id))
}

func (m *mockCampaignRepo) Close(ctx context.Context, id uuid.UUID) (*models.Campaign, *models.Transaction, error) {
	return m.campaignAndTx(m.Called(ctx, id))
}

func (m *mockCampaignRepo) EscrowTotals(ctx context.Context, sponsorID *uuid.UUID) (*models.EscrowTotals, error) {
	args := m.Called(ctx, sponsorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EscrowTotals), args.Error(1)
}

func (m *mockCampaignRepo) campaignAndTx(args mock.Arguments) (*models.Campaign, *models.Transaction, error) {
	var (
		c  *models.Campaign
		tx *models.Transaction
	)
	if v := args.Get(0); v != nil {
		c = v.(*models.Campaign)
	}
	if v := args.Get(1); v != nil {
		tx = v.(*models.Transaction)
	}
	return c, tx, args.Error(2)
}

type mockImageStore struct {
	mock.Mock
}

func (m *mockImageStore) SaveImage(ctx context.Context, owner uuid.UUID, r io.Reader) (string, string, error) {
	args := m.Called(ctx, owner, r)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *mockImageStore) Delete(ctx context.Context, relativePath string) error {
	return m.Called(ctx, relativePath).Error(0)
}

type mockReservationRepo struct {
	mock.Mock
}

func (m *mockReservationRepo) Reserve(ctx context.Context, campaignID, userID uuid.UUID, now time.Time, ttl time.Duration, maxActive int) (*models.Reservation, error) {
	args := m.Called(ctx, campaignID, userID, now, ttl, maxActive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Reservation), args.Error(1)
}

func (m *mockReservationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Reservation), args.Error(1)
}

func (m *mockReservationRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Reservation, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]models.Reservation), args.Error(1)
}

func (m *mockReservationRepo) ListOverdue(ctx context.Context, now time.Time, after *models.OverdueCursor, limit int) ([]models.OverdueCursor, error) {
	args := m.Called(ctx, now, after, limit)
	return args.Get(0).([]models.OverdueCursor), args.Error(1)
}

func (m *mockReservationRepo) Expire(ctx context.Context, id uuid.UUID, now time.Time) (*models.Reservation, error) {
	args := m.Called(ctx, id, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Reservation), args.Error(1)
}

func (m *mockReservationRepo) Submit(ctx context.Context, sub *models.Submission, now time.Time) (*models.Reservation, error) {
	args := m.Called(ctx, sub, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Reservation), args.Error(1)
}

func (m *mockReservationRepo) GetSubmission(ctx context.Context, id uuid.UUID) (*models.Submission, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Submission), args.Error(1)
}

func (m *mockReservationRepo) GetSubmissionByReservation(ctx context.Context, reservationID uuid.UUID) (*models.Submission, error) {
	args := m.Called(ctx, reservationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Submission), args.Error(1)
}

func (m *mockReservationRepo) ListSubmissions(ctx context.Context, campaignID uuid.UUID, status string, limit, offset int) ([]models.SubmissionWithStatus, error) {
	args := m.Called(ctx, campaignID, status, limit, offset)
	return args.Get(0).([]models.SubmissionWithStatus), args.Error(1)
}

func (m *mockReservationRepo) Approve(ctx context.Context, submissionID uuid.UUID, note *string, tdsPercent decimal.Decimal, now time.Time) (*models.ReviewOutcome, error) {
	args := m.Called(ctx, submissionID, note, tdsPercent, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ReviewOutcome), args.Error(1)
}

func (m *mockReservationRepo) Reject(ctx context.Context, submissionID uuid.UUID, reason string, now time.Time) (*models.ReviewOutcome, error) {
	args := m.Called(ctx, submissionID, reason, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ReviewOutcome), args.Error(1)
}

type mockWalletRepo struct {
	mock.Mock
}

func (m *mockWalletRepo) Deposit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, reference, description string) (*models.Transaction, error) {
	args := m.Called(ctx, userID, amount, reference, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *mockWalletRepo) ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Transaction, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]models.Transaction), args.Error(1)
}

type mockWithdrawalRepo struct {
	mock.Mock
}

func (m *mockWithdrawalRepo) CreateBankAccount(ctx context.Context, acc *models.BankAccount) error {
	return m.Called(ctx, acc).Error(0)
}

func (m *mockWithdrawalRepo) ListBankAccounts(ctx context.Context, userID uuid.UUID) ([]models.BankAccount, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]models.BankAccount), args.Error(1)
}

func (m *mockWithdrawalRepo) Create(ctx context.Context, userID, bankAccountID uuid.UUID, amount decimal.Decimal) (*models.WithdrawalRequest, error) {
	args := m.Called(ctx, userID, bankAccountID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WithdrawalRequest), args.Error(1)
}

func (m *mockWithdrawalRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.WithdrawalRequest, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]models.WithdrawalRequest), args.Error(1)
}

func (m *mockWithdrawalRepo) ListPending(ctx context.Context, limit, offset int) ([]models.WithdrawalRequest, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]models.WithdrawalRequest), args.Error(1)
}

func (m *mockWithdrawalRepo) Approve(ctx context.Context, id uuid.UUID, utr string, now time.Time) (*models.WithdrawalRequest, error) {
	args := m.Called(ctx, id, utr, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WithdrawalRequest), args.Error(1)
}

func (m *mockWithdrawalRepo) Reject(ctx context.Context, id uuid.UUID, reason string, now time.Time) (*models.WithdrawalRequest, error) {
	args := m.Called(ctx, id, reason, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WithdrawalRequest), args.Error(1)
}

type mockPromoRepo struct {
	mock.Mock
}

func (m *mockPromoRepo) Create(ctx context.Context, p *models.PromoCode) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockPromoRepo) GetByCode(ctx context.Context, code string) (*models.PromoCode, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PromoCode), args.Error(1)
}

func (m *mockPromoRepo) List(ctx context.Context, limit, offset int) ([]models.PromoCode, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]models.PromoCode), args.Error(1)
}

func (m *mockPromoRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockPromoRepo) RedeemCredit(ctx context.Context, code string, userID uuid.UUID, now time.Time) (*models.PromoCode, *models.Transaction, error) {
	args := m.Called(ctx, code, userID, now)
	var (
		p  *models.PromoCode
		tx *models.Transaction
	)
	if v := args.Get(0); v != nil {
		p = v.(*models.PromoCode)
	}
	if v := args.Get(1); v != nil {
		tx = v.(*models.Transaction)
	}
	return p, tx, args.Error(2)
}

func (m *mockPromoRepo) RedeemTrial(ctx context.Context, code string, userID uuid.UUID, now time.Time) (*models.PromoCode, *models.User, error) {
	args := m.Called(ctx, code, userID, now)
	var (
		p *models.PromoCode
		u *models.User
	)
	if v := args.Get(0); v != nil {
		p = v.(*models.PromoCode)
	}
	if v := args.Get(1); v != nil {
		u = v.(*models.User)
	}
	return p, u, args.Error(2)
}

func (m *mockPromoRepo) PurchaseSubscription(ctx context.Context, in repository.PurchaseInput) (*models.User, *models.Transaction, error) {
	args := m.Called(ctx, in)
	var (
		u  *models.User
		tx *models.Transaction
	)
	if v := args.Get(0); v != nil {
		u = v.(*models.User)
	}
	if v := args.Get(1); v != nil {
		tx = v.(*models.Transaction)
	}
	return u, tx, args.Error(2)
}
