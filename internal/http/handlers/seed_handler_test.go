package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ignatzorin/mingree-backend/internal/service"
)

type mockSeedUseCase struct {
	mock.Mock
}

func (m *mockSeedUseCase) SeedDemo(ctx context.Context, sponsors, creators int) (*service.SeedResult, error) {
	args := m.Called(ctx, sponsors, creators)
	return args.Get(0).(*service.SeedResult), args.Error(1)
}

func TestSeedHandler_ClampsCounts(t *testing.T) {
	seed := new(mockSeedUseCase)
	r := gin.New()
	r.POST("/seed", NewSeedHandler(seed).Seed)

	seed.On("SeedDemo", mock.Anything, defaultSeedSponsors, defaultSeedCreators).Return(&service.SeedResult{}, nil).Once()
	seed.On("SeedDemo", mock.Anything, maxSeedSponsors, 7).Return(&service.SeedResult{}, nil).Once()

	w := doRequest(r, http.MethodPost, "/seed", nil)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(r, http.MethodPost, "/seed?sponsors=9999&creators=7", nil)
	assert.Equal(t, http.StatusCreated, w.Code)
	seed.AssertExpectations(t)
}
