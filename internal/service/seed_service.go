package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/ignatzorin/mingree-backend/internal/logger"
	"github.com/ignatzorin/mingree-backend/internal/models"
	"github.com/ignatzorin/mingree-backend/internal/pkg/apperror"
	"github.com/ignatzorin/mingree-backend/internal/validation"
)

// SeedPassword - пароль всех демо аккаунтов.
const SeedPassword = "Mingree2026"

// SeedUserStore - операции над пользователями, нужные для наполнения базы.
type SeedUserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	SubmitInstagram(ctx context.Context, userID uuid.UUID, handle string, followers int64) (*models.User, error)
}

type seedCampaigns interface {
	Create(ctx context.Context, sponsorID uuid.UUID, in CreateCampaignInput) (*CampaignResult, error)
	Approve(ctx context.Context, id uuid.UUID) (*models.Campaign, error)
}

type seedWallet interface {
	Deposit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, reference string) (*models.Transaction, error)
}

type seedVerifier interface {
	VerifyInstagram(ctx context.Context, userID uuid.UUID, approve bool, followers int64) (*models.User, error)
}

// SeedAccount - созданный демо аккаунт.
type SeedAccount struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Tier     int    `json:"tier,omitempty"`
}

// SeedResult - итог наполнения.
type SeedResult struct {
	Accounts         []SeedAccount `json:"accounts"`
	CampaignsCreated int           `json:"campaigns_created"`
}

// SeedService создаёт администратора при старте и демо данные для разработки.
type SeedService struct {
	users     SeedUserStore
	campaigns seedCampaigns
	wallet    seedWallet
	verifier  seedVerifier
	rnd       *rand.Rand
}

// NewSeedService создаёт сервис наполнения.
func NewSeedService(users SeedUserStore, campaigns seedCampaigns, wallet seedWallet, verifier seedVerifier) *SeedService {
	return &SeedService{
		users:     users,
		campaigns: campaigns,
		wallet:    wallet,
		verifier:  verifier,
		rnd:       rand.New(rand.NewSource(rand.Int63())),
	}
}

// EnsureAdmin создаёт администратора, если аккаунта с таким email ещё нет.
// Существующий аккаунт с другой ролью считается конфликтом.
func (s *SeedService) EnsureAdmin(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}

	existing, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.Role != models.RoleAdmin {
			return nil, apperror.New(apperror.ErrCodeConflict, "email занят пользователем без роли администратора")
		}
		return existing, nil
	case !errors.Is(err, apperror.ErrUserNotFound):
		return nil, err
	}

	if err := validation.ValidatePassword(password); err != nil {
		return nil, err
	}

	admin, err := s.createUser(ctx, email, deriveUsername(email), password, models.RoleAdmin)
	if err != nil {
		return nil, err
	}

	logger.L().WithField("user_id", admin.ID).Info("seed service: администратор создан")
	return admin, nil
}

var (
	seedCategories = []string{"fashion", "beauty", "food", "travel", "fitness", "tech", "gaming"}
	seedFollowers  = []int64{800, 3_200, 8_000, 12_500, 27_000, 64_000, 120_000, 310_000}
	seedFirstNames = []string{"aarav", "diya", "kabir", "meera", "rohan", "sanya", "vivaan", "isha", "arjun", "tara"}
	seedBrands     = []string{"Lumen", "Chai Co", "Kora", "Urban Mitti", "Pixel Pals", "Neem Labs"}
)

// SeedDemo создаёт спонсоров с пополненным кошельком и одобренными кампаниями
// и креаторов с подтверждённым Instagram.
func (s *SeedService) SeedDemo(ctx context.Context, sponsors, creators int) (*SeedResult, error) {
	run := uuid.NewString()[:8]
	result := &SeedResult{}

	for i := 0; i < sponsors; i++ {
		brand := seedBrands[i%len(seedBrands)]
		username := fmt.Sprintf("sponsor_%s_%d", run, i+1)
		email := username + "@seed.mingree.dev"

		sponsor, err := s.createUser(ctx, email, username, SeedPassword, models.RoleSponsor)
		if err != nil {
			return nil, fmt.Errorf("seed service: sponsor %d: %w", i+1, err)
		}
		if _, err := s.wallet.Deposit(ctx, sponsor.ID, decimal.NewFromInt(50_000), "seed:"+run+":"+username); err != nil {
			return nil, fmt.Errorf("seed service: deposit %s: %w", username, err)
		}

		for j := 0; j < 2; j++ {
			category := seedCategories[s.rnd.Intn(len(seedCategories))]
			created, err := s.campaigns.Create(ctx, sponsor.ID, CreateCampaignInput{
				Title:        fmt.Sprintf("%s: %s collab #%d", brand, category, j+1),
				Description:  fmt.Sprintf("Покажите продукт %s в своём стиле и отметьте аккаунт бренда.", brand),
				Category:     category,
				Tier:         1 + s.rnd.Intn(6),
				PayAmount:    decimal.NewFromInt(int64(500 + 250*s.rnd.Intn(8))),
				ContentTypes: []string{models.ContentTypeReel, models.ContentTypePost},
				TotalSpots:   2 + s.rnd.Intn(4),
			})
			if err != nil {
				return nil, fmt.Errorf("seed service: campaign for %s: %w", username, err)
			}
			if _, err := s.campaigns.Approve(ctx, created.Campaign.ID); err != nil {
				return nil, fmt.Errorf("seed service: approve campaign: %w", err)
			}
			result.CampaignsCreated++
		}

		result.Accounts = append(result.Accounts, SeedAccount{
			Email:    email,
			Username: username,
			Password: SeedPassword,
			Role:     models.RoleSponsor,
		})
	}

	for i := 0; i < creators; i++ {
		name := seedFirstNames[i%len(seedFirstNames)]
		username := fmt.Sprintf("%s_%s_%d", name, run, i+1)
		email := username + "@seed.mingree.dev"

		creator, err := s.createUser(ctx, email, username, SeedPassword, models.RoleCreator)
		if err != nil {
			return nil, fmt.Errorf("seed service: creator %d: %w", i+1, err)
		}

		followers := seedFollowers[s.rnd.Intn(len(seedFollowers))]
		if _, err := s.users.SubmitInstagram(ctx, creator.ID, strings.ToLower(username), followers); err != nil {
			return nil, fmt.Errorf("seed service: instagram %s: %w", username, err)
		}
		verified, err := s.verifier.VerifyInstagram(ctx, creator.ID, true, followers)
		if err != nil {
			return nil, fmt.Errorf("seed service: verify %s: %w", username, err)
		}

		result.Accounts = append(result.Accounts, SeedAccount{
			Email:    email,
			Username: username,
			Password: SeedPassword,
			Role:     models.RoleCreator,
			Tier:     verified.Tier,
		})
	}

	logger.L().WithFields(map[string]interface{}{
		"sponsors":  sponsors,
		"creators":  creators,
		"campaigns": result.CampaignsCreated,
	}).Info("seed service: демо данные созданы")

	return result, nil
}

func (s *SeedService) createUser(ctx context.Context, email, username, password, role string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось захешировать пароль")
	}

	user := &models.User{
		Email:        email,
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		DisplayName:  username,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
