package validation

import "unicode"

// ValidatePassword проверяет пароль: не короче 8 символов, есть заглавная, строчная буква и цифра.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return invalid("пароль должен быть не менее 8 символов")
	}
	if len(password) > 72 {
		return invalid("пароль должен быть не длиннее 72 байт")
	}

	var hasUpper, hasLower, hasNumber bool
	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		}
	}

	if !hasUpper {
		return invalid("пароль должен содержать хотя бы одну заглавную букву")
	}
	if !hasLower {
		return invalid("пароль должен содержать хотя бы одну строчную букву")
	}
	if !hasNumber {
		return invalid("пароль должен содержать хотя бы одну цифру")
	}

	return nil
}
