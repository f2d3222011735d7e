package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/mingree-backend/internal/models"
	"github.com/ignatzorin/mingree-backend/internal/pkg/apperror"
)

func newWithdrawalServiceForTest() (*WithdrawalService, *mockWithdrawalRepo, *mockUserReader, *recordingNotifier) {
	repo := new(mockWithdrawalRepo)
	users := new(mockUserReader)
	notifier := &recordingNotifier{}
	svc := NewWithdrawalService(repo, users, notifier, dec("500"))
	svc.now = fixedNow
	return svc, repo, users, notifier
}

func TestWithdrawalService_AddBankAccount(t *testing.T) {
	svc, repo, _, _ := newWithdrawalServiceForTest()
	ctx := context.Background()
	userID := uuid.New()

	repo.On("CreateBankAccount", ctx, mock.MatchedBy(func(a *models.BankAccount) bool {
		return a.AccountNumber == "123456789012" && a.AccountLast4 == "9012" && a.IFSC == "HDFC0001234"
	})).Return(nil)

	acc, err := svc.AddBankAccount(ctx, userID, BankAccountInput{
		AccountHolder: "Maya Kapoor",
		AccountNumber: "1234 5678 9012",
		IFSC:          "hdfc0001234",
		BankName:      "HDFC Bank",
	})
	require.NoError(t, err)
	assert.Equal(t, "9012", acc.AccountLast4)

	_, err = svc.AddBankAccount(ctx, userID, BankAccountInput{
		AccountHolder: "Maya Kapoor",
		AccountNumber: "123456789012",
		IFSC:          "HDFC1001234",
		BankName:      "HDFC Bank",
	})
	assert.True(t, apperror.IsValidation(err))
}

func TestWithdrawalService_Request(t *testing.T) {
	svc, repo, users, _ := newWithdrawalServiceForTest()
	ctx := context.Background()
	userID, accID := uuid.New(), uuid.New()

	users.On("GetByID", ctx, userID).Return(&models.User{ID: userID, IsActive: true, Balance: dec("800")}, nil)

	_, err := svc.Request(ctx, userID, accID, dec("499.99"))
	assert.ErrorIs(t, err, apperror.ErrMinWithdrawal)

	_, err = svc.Request(ctx, userID, accID, dec("800.01"))
	assert.ErrorIs(t, err, apperror.ErrInsufficientBalance)

	expected := &models.WithdrawalRequest{ID: uuid.New(), Amount: dec("800"), Status: models.WithdrawalStatusPending}
	repo.On("Create", ctx, userID, accID, mock.Anything).Return(expected, nil).Once()

	w, err := svc.Request(ctx, userID, accID, dec("800"))
	require.NoError(t, err)
	assert.Equal(t, expected, w)
	repo.AssertNumberOfCalls(t, "Create", 1)
}

func TestWithdrawalService_ApproveAndReject(t *testing.T) {
	svc, repo, _, notifier := newWithdrawalServiceForTest()
	ctx := context.Background()
	userID := uuid.New()
	approvedID, rejectedID := uuid.New(), uuid.New()

	_, err := svc.Approve(ctx, approvedID, "")
	assert.True(t, apperror.IsValidation(err))

	repo.On("Approve", ctx, approvedID, "HDFCR52026031012", testNow).
		Return(&models.WithdrawalRequest{ID: approvedID, UserID: userID, Status: models.WithdrawalStatusProcessed}, nil)
	repo.On("Reject", ctx, rejectedID, "account name mismatch", testNow).
		Return(&models.WithdrawalRequest{ID: rejectedID, UserID: userID, Status: models.WithdrawalStatusRejected}, nil)

	w, err := svc.Approve(ctx, approvedID, " hdfcr52026031012 ")
	require.NoError(t, err)
	assert.Equal(t, models.WithdrawalStatusProcessed, w.Status)

	w, err = svc.Reject(ctx, rejectedID, "account name mismatch")
	require.NoError(t, err)
	assert.Equal(t, models.WithdrawalStatusRejected, w.Status)

	events := notifier.sent()
	require.Len(t, events, 2)
	assert.Equal(t, EventWithdrawalProcessed, events[0].Event)
	assert.Equal(t, EventWithdrawalRejected, events[1].Event)
}

func TestWithdrawalService_ApproveTwice(t *testing.T) {
	svc, repo, _, _ := newWithdrawalServiceForTest()
	ctx := context.Background()
	id := uuid.New()
	repo.On("Approve", ctx, id, "UTR000000000001", testNow).Return(nil, apperror.ErrWithdrawalProcessed)

	_, err := svc.Approve(ctx, id, "UTR000000000001")
	assert.ErrorIs(t, err, apperror.ErrWithdrawalProcessed)
}
