package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/mingree-backend/internal/domain/valueobject"
	"github.com/ignatzorin/mingree-backend/internal/models"
	"github.com/ignatzorin/mingree-backend/internal/pkg/apperror"
	"github.com/ignatzorin/mingree-backend/internal/service"
)

type mockCampaignUseCase struct {
	mock.Mock
}

func (m *mockCampaignUseCase) Quote(payAmount decimal.Decimal, spots int) valueobject.Breakdown {
	return m.Called(payAmount, spots).Get(0).(valueobject.Breakdown)
}

func (m *mockCampaignUseCase) Create(ctx context.Context, sponsorID uuid.UUID, in service.CreateCampaignInput) (*service.CampaignResult, error) {
	args := m.Called(ctx, sponsorID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CampaignResult), args.Error(1)
}

func (m *mockCampaignUseCase) Get(ctx context.Context, actor service.Actor, id uuid.UUID) (*models.Campaign, error) {
	return m.campaign(m.Called(ctx, actor, id))
}

func (m *mockCampaignUseCase) Feed(ctx context.Context, userID uuid.UUID, category string, limit, offset int) ([]models.Campaign, error) {
	args := m.Called(ctx, userID, category, limit, offset)
	return args.Get(0).([]models.Campaign), args.Error(1)
}

func (m *mockCampaignUseCase) ListMine(ctx context.Context, sponsorID uuid.UUID, limit, offset int) ([]models.Campaign, error) {
	args := m.Called(ctx, sponsorID, limit, offset)
	return args.Get(0).([]models.Campaign), args.Error(1)
}

func (m *mockCampaignUseCase) Pause(ctx context.Context, actor service.Actor, id uuid.UUID) (*models.Campaign, error) {
	return m.campaign(m.Called(ctx, actor, id))
}

func (m *mockCampaignUseCase) Resume(ctx context.Context, actor service.Actor, id uuid.UUID) (*models.Campaign, error) {
	return m.campaign(m.Called(ctx, actor, id))
}

func (m *mockCampaignUseCase) Close(ctx context.Context, actor service.Actor, id uuid.UUID) (*service.CampaignResult, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CampaignResult), args.Error(1)
}

func (m *mockCampaignUseCase) UploadCover(ctx context.Context, actor service.Actor, id uuid.UUID, r io.Reader) (*models.Campaign, error) {
	return m.campaign(m.Called(ctx, actor, id, r))
}

func (m *mockCampaignUseCase) campaign(args mock.Arguments) (*models.Campaign, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Campaign), args.Error(1)
}

func TestCampaignHandler_Quote(t *testing.T) {
	campaigns := new(mockCampaignUseCase)
	r := gin.New()
	r.GET("/campaigns/quote", NewCampaignHandler(campaigns).Quote)

	campaigns.On("Quote", mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(decimal.NewFromInt(1000)) }), 5).
		Return(valueobject.Breakdown{
			Amount: decimal.NewFromInt(5500),
			Tax:    decimal.NewFromInt(500),
			Net:    decimal.NewFromInt(5000),
		})

	w := doRequest(r, http.MethodGet, "/campaigns/quote?pay_amount=1000&spots=5", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got valueobject.Breakdown
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.True(t, got.Amount.Equal(decimal.NewFromInt(5500)))

	for _, q := range []string{"pay_amount=abc&spots=5", "pay_amount=-1&spots=5", "pay_amount=100&spots=0", "pay_amount=100"} {
		w = doRequest(r, http.MethodGet, "/campaigns/quote?"+q, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
	}
}

func TestCampaignHandler_Create(t *testing.T) {
	sponsorID := uuid.New()
	campaigns := new(mockCampaignUseCase)
	r := gin.New()
	r.POST("/campaigns", asUser(sponsorID, models.RoleSponsor), NewCampaignHandler(campaigns).Create)

	campaigns.On("Create", mock.Anything, sponsorID, mock.MatchedBy(func(in service.CreateCampaignInput) bool {
		return in.Title == "Summer reels" && in.Tier == 3 && in.TotalSpots == 4 && in.PayAmount.Equal(decimal.NewFromInt(750))
	})).Return(&service.CampaignResult{Campaign: &models.Campaign{ID: uuid.New(), SponsorID: sponsorID}}, nil)

	w := doRequest(r, http.MethodPost, "/campaigns", map[string]interface{}{
		"title":         "Summer reels",
		"description":   "Show our summer collection in a reel",
		"category":      "fashion",
		"tier":          3,
		"pay_amount":    "750",
		"content_types": []string{"reel"},
		"total_spots":   4,
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	campaigns.AssertExpectations(t)
}

func TestCampaignHandler_Create_ServiceErrors(t *testing.T) {
	campaigns := new(mockCampaignUseCase)
	r := gin.New()
	r.POST("/campaigns", asUser(uuid.New(), models.RoleSponsor), NewCampaignHandler(campaigns).Create)

	campaigns.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(nil, apperror.ErrInsufficientBalance).Once()
	body := map[string]interface{}{
		"title": "Launch", "description": "Launch post for the app", "category": "tech",
		"tier": 1, "pay_amount": 100, "content_types": []string{"post"}, "total_spots": 1,
	}

	w := doRequest(r, http.MethodPost, "/campaigns", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperror.ErrInsufficientBalance.Message, decodeError(t, w))

	w = doRequest(r, http.MethodPost, "/campaigns", `{"title": 1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	campaigns.AssertNumberOfCalls(t, "Create", 1)
}

func TestCampaignHandler_Pause_NotFound(t *testing.T) {
	sponsorID, campaignID := uuid.New(), uuid.New()
	campaigns := new(mockCampaignUseCase)
	r := gin.New()
	r.POST("/campaigns/:id/pause", asUser(sponsorID, models.RoleSponsor), NewCampaignHandler(campaigns).Pause)

	campaigns.On("Pause", mock.Anything, service.Actor{ID: sponsorID, Role: models.RoleSponsor}, campaignID).
		Return(nil, apperror.ErrCampaignNotFound)

	w := doRequest(r, http.MethodPost, "/campaigns/"+campaignID.String()+"/pause", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCampaignHandler_Feed(t *testing.T) {
	creatorID := uuid.New()
	campaigns := new(mockCampaignUseCase)
	r := gin.New()
	r.GET("/campaigns", asUser(creatorID, models.RoleCreator), NewCampaignHandler(campaigns).Feed)

	campaigns.On("Feed", mock.Anything, creatorID, "food", 20, 0).Return([]models.Campaign(nil), nil)

	w := doRequest(r, http.MethodGet, "/campaigns?category=food", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"items":[]`)
}
