package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/mingree-backend/internal/http/handlers/common"
	"github.com/ignatzorin/mingree-backend/internal/service"
)

const (
	defaultSeedSponsors = 3
	defaultSeedCreators = 10
	maxSeedSponsors     = 50
	maxSeedCreators     = 200
)

type SeedUseCase interface {
	SeedDemo(ctx context.Context, sponsors, creators int) (*service.SeedResult, error)
}

// SeedHandler наполняет базу демо данными. Подключается только в development.
type SeedHandler struct {
	seed SeedUseCase
}

func NewSeedHandler(seed SeedUseCase) *SeedHandler {
	return &SeedHandler{seed: seed}
}

// Seed обрабатывает POST /seed?sponsors=&creators=.
func (h *SeedHandler) Seed(c *gin.Context) {
	sponsors := clampSeed(common.ParseIntQuery(c, "sponsors", defaultSeedSponsors), defaultSeedSponsors, maxSeedSponsors)
	creators := clampSeed(common.ParseIntQuery(c, "creators", defaultSeedCreators), defaultSeedCreators, maxSeedCreators)

	result, err := h.seed.SeedDemo(c.Request.Context(), sponsors, creators)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

func clampSeed(v, def, max int) int {
	if v < 1 {
		return def
	}
	if v > max {
		return max
	}
	return v
}
