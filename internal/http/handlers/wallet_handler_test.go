package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ignatzorin/mingree-backend/internal/models"
	"github.com/ignatzorin/mingree-backend/internal/pkg/apperror"
	"github.com/ignatzorin/mingree-backend/internal/service"
)

type mockWalletUseCase struct {
	mock.Mock
}

func (m *mockWalletUseCase) ConfirmDeposit(ctx context.Context, userID uuid.UUID, receipt string) (*models.Transaction, error) {
	args := m.Called(ctx, userID, receipt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *mockWalletUseCase) Summary(ctx context.Context, actor service.Actor, sponsorID uuid.UUID) (*models.Wallet, error) {
	args := m.Called(ctx, actor, sponsorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Wallet), args.Error(1)
}

func (m *mockWalletUseCase) Transactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Transaction, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]models.Transaction), args.Error(1)
}

func TestWalletHandler_Deposit_Unauthorized(t *testing.T) {
	r := gin.New()
	handler := NewWalletHandler(new(mockWalletUseCase))
	r.POST("/wallet/deposit", handler.Deposit)

	w := doRequest(r, http.MethodPost, "/wallet/deposit", map[string]string{"receipt": "signed"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWalletHandler_Deposit(t *testing.T) {
	userID := uuid.New()
	wallet := new(mockWalletUseCase)
	handler := NewWalletHandler(wallet)
	r := gin.New()
	r.POST("/wallet/deposit", asUser(userID, models.RoleSponsor), handler.Deposit)

	wallet.On("ConfirmDeposit", mock.Anything, userID, "eyJ.signed.receipt").
		Return(&models.Transaction{ID: uuid.New(), UserID: userID}, nil)

	w := doRequest(r, http.MethodPost, "/wallet/deposit", `{"receipt":"eyJ.signed.receipt"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	wallet.AssertExpectations(t)
}

func TestWalletHandler_Deposit_MissingReceipt(t *testing.T) {
	wallet := new(mockWalletUseCase)
	r := gin.New()
	r.POST("/wallet/deposit", asUser(uuid.New(), models.RoleSponsor), NewWalletHandler(wallet).Deposit)

	// сумма и reference от клиента без подтверждения шлюза не принимаются
	w := doRequest(r, http.MethodPost, "/wallet/deposit", `{"amount":"1000000","reference":"made_up"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	wallet.AssertNotCalled(t, "ConfirmDeposit", mock.Anything, mock.Anything, mock.Anything)
}

func TestWalletHandler_Deposit_InvalidReceipt(t *testing.T) {
	userID := uuid.New()
	wallet := new(mockWalletUseCase)
	r := gin.New()
	r.POST("/wallet/deposit", asUser(userID, models.RoleSponsor), NewWalletHandler(wallet).Deposit)

	wallet.On("ConfirmDeposit", mock.Anything, userID, "forged").Return(nil, apperror.ErrInvalidReceipt)

	w := doRequest(r, http.MethodPost, "/wallet/deposit", `{"receipt":"forged"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWalletHandler_Summary(t *testing.T) {
	userID, otherID := uuid.New(), uuid.New()
	wallet := new(mockWalletUseCase)
	r := gin.New()
	r.GET("/sponsors/:id/wallet", asUser(userID, models.RoleSponsor), NewWalletHandler(wallet).Summary)

	actor := service.Actor{ID: userID, Role: models.RoleSponsor}
	wallet.On("Summary", mock.Anything, actor, userID).Return(&models.Wallet{}, nil)
	wallet.On("Summary", mock.Anything, actor, otherID).Return(nil, apperror.ErrForbidden)

	w := doRequest(r, http.MethodGet, "/sponsors/"+userID.String()+"/wallet", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(r, http.MethodGet, "/sponsors/"+otherID.String()+"/wallet", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, apperror.ErrForbidden.Message, decodeError(t, w))

	w = doRequest(r, http.MethodGet, "/sponsors/not-a-uuid/wallet", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
