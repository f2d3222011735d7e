package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ignatzorin/mingree-backend/internal/models"
	"github.com/ignatzorin/mingree-backend/internal/pkg/apperror"
)

type mockSeedUsers struct {
	mock.Mock
}

func (m *mockSeedUsers) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	if args.Error(0) == nil {
		user.ID = uuid.New()
		user.IsActive = true
	}
	return args.Error(0)
}

func (m *mockSeedUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockSeedUsers) SubmitInstagram(ctx context.Context, userID uuid.UUID, handle string, followers int64) (*models.User, error) {
	args := m.Called(ctx, userID, handle, followers)
	return &models.User{ID: userID}, args.Error(0)
}

type stubSeedCampaigns struct {
	created  int
	approved []uuid.UUID
}

func (s *stubSeedCampaigns) Create(_ context.Context, sponsorID uuid.UUID, in CreateCampaignInput) (*CampaignResult, error) {
	s.created++
	return &CampaignResult{Campaign: &models.Campaign{ID: uuid.New(), SponsorID: sponsorID, Tier: in.Tier}}, nil
}

func (s *stubSeedCampaigns) Approve(_ context.Context, id uuid.UUID) (*models.Campaign, error) {
	s.approved = append(s.approved, id)
	return &models.Campaign{ID: id, IsApproved: true}, nil
}

type stubSeedWallet struct {
	deposits map[uuid.UUID]decimal.Decimal
}

func (s *stubSeedWallet) Deposit(_ context.Context, userID uuid.UUID, amount decimal.Decimal, _ string) (*models.Transaction, error) {
	s.deposits[userID] = amount
	return &models.Transaction{ID: uuid.New(), UserID: userID, Amount: amount}, nil
}

type stubSeedVerifier struct{}

func (stubSeedVerifier) VerifyInstagram(_ context.Context, userID uuid.UUID, _ bool, followers int64) (*models.User, error) {
	return &models.User{ID: userID, InstagramStatus: models.InstagramStatusVerified, Tier: int(followers%20) + 1}, nil
}

func TestSeedService_EnsureAdmin(t *testing.T) {
	users := new(mockSeedUsers)
	svc := NewSeedService(users, &stubSeedCampaigns{}, &stubSeedWallet{}, stubSeedVerifier{})
	ctx := context.Background()

	users.On("GetByEmail", ctx, "ops@mingree.dev").Return(nil, apperror.ErrUserNotFound).Once()
	users.On("Create", ctx, mock.MatchedBy(func(u *models.User) bool {
		return u.Role == models.RoleAdmin &&
			u.Email == "ops@mingree.dev" &&
			bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("Sup3rSecret")) == nil
	})).Return(nil).Once()

	admin, err := svc.EnsureAdmin(ctx, "  OPS@mingree.dev ", "Sup3rSecret")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.Role)

	// Повторный запуск не создаёт второго администратора.
	users.On("GetByEmail", ctx, "ops@mingree.dev").Return(admin, nil).Once()
	again, err := svc.EnsureAdmin(ctx, "ops@mingree.dev", "Sup3rSecret")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, again.ID)
	users.AssertNumberOfCalls(t, "Create", 1)
}

func TestSeedService_EnsureAdmin_Rejects(t *testing.T) {
	users := new(mockSeedUsers)
	svc := NewSeedService(users, &stubSeedCampaigns{}, &stubSeedWallet{}, stubSeedVerifier{})
	ctx := context.Background()

	users.On("GetByEmail", ctx, "creator@mingree.dev").Return(&models.User{Role: models.RoleCreator}, nil)
	_, err := svc.EnsureAdmin(ctx, "creator@mingree.dev", "Sup3rSecret")
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.ErrCodeConflict, appErr.Code)

	users.On("GetByEmail", ctx, "new@mingree.dev").Return(nil, apperror.ErrUserNotFound)
	_, err = svc.EnsureAdmin(ctx, "new@mingree.dev", "weak")
	assert.True(t, apperror.IsValidation(err))
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSeedService_SeedDemo(t *testing.T) {
	users := new(mockSeedUsers)
	campaigns := &stubSeedCampaigns{}
	wallet := &stubSeedWallet{deposits: map[uuid.UUID]decimal.Decimal{}}
	svc := NewSeedService(users, campaigns, wallet, stubSeedVerifier{})
	ctx := context.Background()

	users.On("Create", ctx, mock.Anything).Return(nil)
	users.On("SubmitInstagram", ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	result, err := svc.SeedDemo(ctx, 2, 3)
	require.NoError(t, err)

	assert.Len(t, result.Accounts, 5)
	assert.Equal(t, 4, result.CampaignsCreated)
	assert.Len(t, campaigns.approved, 4)
	assert.Len(t, wallet.deposits, 2)
	for _, amount := range wallet.deposits {
		assert.True(t, amount.Equal(decimal.NewFromInt(50_000)))
	}

	roles := map[string]int{}
	for _, acc := range result.Accounts {
		roles[acc.Role]++
		assert.Equal(t, SeedPassword, acc.Password)
		if acc.Role == models.RoleCreator {
			assert.GreaterOrEqual(t, acc.Tier, 1)
		}
	}
	assert.Equal(t, 2, roles[models.RoleSponsor])
	assert.Equal(t, 3, roles[models.RoleCreator])
	users.AssertNumberOfCalls(t, "SubmitInstagram", 3)
}
