package valueobject

// Тиры от 1 до 20 по числу подписчиков.
const (
	MinTier = 1
	MaxTier = 20
)

// tierFloors - нижняя граница подписчиков для каждого тира, по возрастанию.
var tierFloors = [MaxTier]int64{
	0,
	1_000,
	2_500,
	5_000,
	7_500,
	10_000,
	15_000,
	20_000,
	30_000,
	40_000,
	50_000,
	75_000,
	100_000,
	150_000,
	200_000,
	300_000,
	500_000,
	750_000,
	1_000_000,
	2_000_000,
}

// TierFromFollowers возвращает тир для числа подписчиков.
func TierFromFollowers(followers int64) int {
	tier := MinTier
	for i, floor := range tierFloors {
		if followers < floor {
			break
		}
		tier = i + 1
	}
	return tier
}

// ValidTier проверяет диапазон тира.
func ValidTier(tier int) bool {
	return tier >= MinTier && tier <= MaxTier
}

// CanAccessTier: креатор видит и бронирует кампании своего тира и ниже.
func CanAccessTier(creatorTier, campaignTier int) bool {
	if !ValidTier(creatorTier) || !ValidTier(campaignTier) {
		return false
	}
	return campaignTier <= creatorTier
}

// TierBounds возвращает диапазон подписчиков тира. Для последнего тира hi = -1.
func TierBounds(tier int) (lo, hi int64, ok bool) {
	if !ValidTier(tier) {
		return 0, 0, false
	}
	lo = tierFloors[tier-1]
	if tier == MaxTier {
		return lo, -1, true
	}
	return lo, tierFloors[tier] - 1, true
}
