package validation

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ignatzorin/mingree-backend/internal/pkg/apperror"
)

// Константы валидации
const (
	MinUsernameLength      = 3
	MaxUsernameLength      = 30
	MinDisplayNameLength   = 2
	MaxDisplayNameLength   = 100
	MinCampaignTitleLength = 3
	MaxCampaignTitleLength = 200
	MinCampaignDescLength  = 10
	MaxCampaignDescLength  = 5000
	MaxCategoryLength      = 50
	MaxNotesLength         = 1000
	MaxReasonLength        = 500
	MaxContentLinks        = 5
	MaxLinkLength          = 500
	MaxInstagramHandleLen  = 30
	MaxAccountHolderLength = 100
	MinAccountNumberLength = 9
	MaxAccountNumberLength = 18
	MaxDepositReferenceLen = 100
	MinPromoCodeLength     = 4
	MaxPromoCodeLength     = 32
)

var (
	emailLocalRegex  = regexp.MustCompile(`^[a-z0-9._+-]+$`)
	emailDomainRegex = regexp.MustCompile(`^[a-z0-9.-]+\.[a-z]{2,}$`)
	usernameRegex    = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	displayNameRegex = regexp.MustCompile(`^[\p{L}0-9\s\-_.,!?()']+$`)
	instagramRegex   = regexp.MustCompile(`^[a-z0-9._]+$`)
	ifscRegex        = regexp.MustCompile(`^[A-Z]{4}0[A-Z0-9]{6}$`)
	accountNumRegex  = regexp.MustCompile(`^[0-9]+$`)
	utrRegex         = regexp.MustCompile(`^[A-Z0-9]{12,22}$`)
	promoCodeRegex   = regexp.MustCompile(`^[A-Z0-9_-]+$`)
	referenceRegex   = regexp.MustCompile(`^[A-Za-z0-9_.:-]+$`)
	instagramHosts   = map[string]struct{}{"instagram.com": {}, "www.instagram.com": {}}
)

func invalid(format string, args ...interface{}) error {
	if len(args) == 0 {
		return apperror.Validation(format)
	}
	return apperror.Validation(fmt.Sprintf(format, args...))
}

// ValidateLength проверяет длину строки.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return invalid("%s должен быть не менее %d символов", fieldName, min)
	}
	if max > 0 && length > max {
		return invalid("%s должен быть не более %d символов", fieldName, max)
	}
	return nil
}

// ValidateNonEmpty проверяет, что строка не пустая.
func ValidateNonEmpty(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return invalid("%s не может быть пустым", fieldName)
	}
	return nil
}

// ValidateEmail проверяет формат email.
func ValidateEmail(email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return invalid("email обязателен")
	}

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return invalid("некорректный формат email")
	}

	local, domain := parts[0], parts[1]
	if len(local) == 0 || len(local) > 64 || !emailLocalRegex.MatchString(local) {
		return invalid("локальная часть email некорректна")
	}
	if len(domain) > 255 || !emailDomainRegex.MatchString(domain) {
		return invalid("доменная часть email имеет некорректный формат")
	}

	return nil
}

// ValidateUsername проверяет имя пользователя.
func ValidateUsername(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return invalid("имя пользователя обязательно")
	}
	if err := ValidateLength("имя пользователя", username, MinUsernameLength, MaxUsernameLength); err != nil {
		return err
	}
	if !usernameRegex.MatchString(username) {
		return invalid("имя пользователя может содержать только буквы, цифры и подчеркивание")
	}
	if unicode.IsDigit(rune(username[0])) {
		return invalid("имя пользователя не может начинаться с цифры")
	}
	return nil
}

// ValidateDisplayName проверяет отображаемое имя.
func ValidateDisplayName(displayName string) error {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return invalid("отображаемое имя обязательно")
	}
	if err := ValidateLength("отображаемое имя", displayName, MinDisplayNameLength, MaxDisplayNameLength); err != nil {
		return err
	}
	if !displayNameRegex.MatchString(displayName) {
		return invalid("отображаемое имя содержит недопустимые символы")
	}
	return nil
}

// ValidateCampaignText проверяет заголовок, описание и категорию кампании.
func ValidateCampaignText(title, description, category string) error {
	if err := ValidateLength("заголовок кампании", strings.TrimSpace(title), MinCampaignTitleLength, MaxCampaignTitleLength); err != nil {
		return err
	}
	if err := ValidateLength("описание кампании", strings.TrimSpace(description), MinCampaignDescLength, MaxCampaignDescLength); err != nil {
		return err
	}
	return ValidateCategory(category)
}

// ValidateCategory проверяет название категории.
func ValidateCategory(category string) error {
	if err := ValidateNonEmpty("категория", category); err != nil {
		return err
	}
	return ValidateLength("категория", strings.TrimSpace(category), 1, MaxCategoryLength)
}

// NormalizeCategory приводит категорию к нижнему регистру без лишних пробелов.
func NormalizeCategory(category string) string {
	return strings.ToLower(strings.TrimSpace(category))
}

// NormalizeInstagramHandle убирает @ и приводит к нижнему регистру.
func NormalizeInstagramHandle(handle string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(handle), "@"))
}

// ValidateInstagramHandle проверяет имя аккаунта Instagram (без @).
func ValidateInstagramHandle(handle string) error {
	if len(handle) > MaxInstagramHandleLen {
		return invalid("имя Instagram аккаунта должно быть не длиннее %d символов", MaxInstagramHandleLen)
	}
	if !instagramRegex.MatchString(handle) || strings.HasPrefix(handle, ".") || strings.HasSuffix(handle, ".") {
		return invalid("некорректное имя Instagram аккаунта")
	}
	return nil
}

// ValidateContentLinks проверяет ссылки на публикации: от 1 до 5 https ссылок на instagram.com.
func ValidateContentLinks(links []string) error {
	if len(links) == 0 {
		return invalid("нужна хотя бы одна ссылка на публикацию")
	}
	if len(links) > MaxContentLinks {
		return invalid("не более %d ссылок на публикацию", MaxContentLinks)
	}

	seen := make(map[string]struct{}, len(links))
	for _, link := range links {
		link = strings.TrimSpace(link)
		if err := ValidateLength("ссылка", link, 1, MaxLinkLength); err != nil {
			return err
		}
		u, err := url.Parse(link)
		if err != nil || u.Scheme != "https" {
			return invalid("ссылка должна начинаться с https://")
		}
		if _, ok := instagramHosts[strings.ToLower(u.Host)]; !ok {
			return invalid("ссылка должна вести на instagram.com")
		}
		if strings.Trim(u.Path, "/") == "" {
			return invalid("ссылка должна вести на конкретную публикацию")
		}
		if _, dup := seen[link]; dup {
			return invalid("ссылка указана дважды")
		}
		seen[link] = struct{}{}
	}
	return nil
}

// ValidateIFSC проверяет банковский код IFSC.
func ValidateIFSC(ifsc string) error {
	if !ifscRegex.MatchString(ifsc) {
		return invalid("некорректный IFSC код")
	}
	return nil
}

// ValidateAccountNumber проверяет номер банковского счёта.
func ValidateAccountNumber(number string) error {
	if !accountNumRegex.MatchString(number) {
		return invalid("номер счёта должен состоять из цифр")
	}
	return ValidateLength("номер счёта", number, MinAccountNumberLength, MaxAccountNumberLength)
}

// ValidateUTR проверяет номер банковской операции.
func ValidateUTR(utr string) error {
	if !utrRegex.MatchString(utr) {
		return invalid("некорректный UTR")
	}
	return nil
}

// ValidatePromoCode проверяет формат промокода.
func ValidatePromoCode(code string) error {
	if err := ValidateLength("промокод", code, MinPromoCodeLength, MaxPromoCodeLength); err != nil {
		return err
	}
	if !promoCodeRegex.MatchString(strings.ToUpper(code)) {
		return invalid("промокод содержит недопустимые символы")
	}
	return nil
}

// ValidateDepositReference проверяет идентификатор платежа шлюза.
func ValidateDepositReference(ref string) error {
	if err := ValidateLength("идентификатор платежа", ref, 1, MaxDepositReferenceLen); err != nil {
		return err
	}
	if !referenceRegex.MatchString(ref) {
		return invalid("идентификатор платежа содержит недопустимые символы")
	}
	return nil
}
