package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrCodeNotFound          ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized      ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden         ErrorCode = "FORBIDDEN"
	ErrCodeBadRequest        ErrorCode = "BAD_REQUEST"
	ErrCodeConflict          ErrorCode = "CONFLICT"
	ErrCodeInternal          ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation        ErrorCode = "VALIDATION_ERROR"
	ErrCodeDatabaseError     ErrorCode = "DATABASE_ERROR"
	ErrCodeInsufficientFunds ErrorCode = "INSUFFICIENT_FUNDS"
)

type AppError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is сравнивает ошибки по коду и сообщению, чтобы errors.Is работал с обёрнутыми sentinel.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Cause:      err,
	}
}

// Validation - сокращение для ошибок валидации входных данных.
func Validation(message string) *AppError {
	return New(ErrCodeValidation, message)
}

func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeBadRequest, ErrCodeValidation, ErrCodeInsufficientFunds:
		return http.StatusBadRequest
	case ErrCodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// HTTPStatus возвращает HTTP статус и безопасное сообщение для клиента.
// Ошибки без AppError в цепочке считаются внутренними.
func HTTPStatus(err error) (int, string) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		if appErr.HTTPStatus >= http.StatusInternalServerError {
			return appErr.HTTPStatus, "внутренняя ошибка сервера"
		}
		return appErr.HTTPStatus, appErr.Message
	}
	return http.StatusInternalServerError, "внутренняя ошибка сервера"
}

func IsNotFound(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeNotFound
}

func IsForbidden(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeForbidden
}

func IsValidation(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeValidation
}

var (
	ErrUserNotFound        = New(ErrCodeNotFound, "пользователь не найден")
	ErrCampaignNotFound    = New(ErrCodeNotFound, "кампания не найдена")
	ErrReservationNotFound = New(ErrCodeNotFound, "бронь не найдена")
	ErrSubmissionNotFound  = New(ErrCodeNotFound, "публикация не найдена")
	ErrWithdrawalNotFound  = New(ErrCodeNotFound, "заявка на вывод не найдена")
	ErrBankAccountNotFound = New(ErrCodeNotFound, "банковский счёт не найден")
	ErrPromoCodeNotFound   = New(ErrCodeNotFound, "промокод не найден")
	ErrUnauthorized        = New(ErrCodeUnauthorized, "требуется авторизация")
	ErrForbidden           = New(ErrCodeForbidden, "недостаточно прав")
	ErrInvalidCredentials  = New(ErrCodeUnauthorized, "неверные учетные данные")
	ErrAccountDisabled     = New(ErrCodeForbidden, "аккаунт заблокирован")

	ErrInsufficientBalance  = New(ErrCodeInsufficientFunds, "недостаточно средств на балансе")
	ErrMinWithdrawal        = New(ErrCodeValidation, "сумма меньше минимальной для вывода")
	ErrInvalidReceipt       = New(ErrCodeValidation, "подтверждение платежа недействительно")
	ErrNoSpotsLeft          = New(ErrCodeConflict, "свободных мест в кампании не осталось")
	ErrAlreadyReserved      = New(ErrCodeConflict, "вы уже бронировали эту кампанию")
	ErrReservationLimit     = New(ErrCodeConflict, "достигнут лимит активных броней для вашего тарифа")
	ErrReservationExpired   = New(ErrCodeConflict, "срок брони истёк")
	ErrAlreadySubmitted     = New(ErrCodeConflict, "публикация по этой брони уже отправлена")
	ErrCampaignClosed       = New(ErrCodeConflict, "кампания не принимает заявки")
	ErrTierNotEligible      = New(ErrCodeForbidden, "кампания недоступна для вашего тира")
	ErrInstagramUnverified  = New(ErrCodeForbidden, "Instagram аккаунт не подтверждён")
	ErrPromoAlreadyUsed     = New(ErrCodeConflict, "промокод уже использован")
	ErrPromoNotRedeemable   = New(ErrCodeValidation, "промокод недействителен")
	ErrDuplicateReference   = New(ErrCodeConflict, "платёж с таким идентификатором уже зачислен")
	ErrDuplicateUTR         = New(ErrCodeConflict, "UTR уже использован")
	ErrAccountHasFunds      = New(ErrCodeConflict, "перед удалением выведите остаток и дождитесь обработки заявок")
	ErrAccountHasEscrow     = New(ErrCodeConflict, "перед удалением завершите кампании и брони, по которым ещё не закрыты расчёты")
	ErrEmailTaken           = New(ErrCodeConflict, "email уже зарегистрирован")
	ErrUsernameTaken        = New(ErrCodeConflict, "имя пользователя уже занято")
	ErrWithdrawalProcessed  = New(ErrCodeConflict, "заявка на вывод уже обработана")
	ErrCampaignNotModerated = New(ErrCodeConflict, "кампания уже прошла модерацию")
	ErrReservationChanged   = New(ErrCodeConflict, "статус брони уже изменился")
	ErrNotificationNotFound = New(ErrCodeNotFound, "уведомление не найдено")
	ErrAlreadySubscribed    = New(ErrCodeConflict, "подписка на эту категорию уже оформлена")
	ErrPromoCodeTaken       = New(ErrCodeConflict, "промокод с таким кодом уже существует")
	ErrInstagramTaken       = New(ErrCodeConflict, "этот Instagram аккаунт уже привязан")
)
