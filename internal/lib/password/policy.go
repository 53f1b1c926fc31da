package password

import "errors"

const (
	minLength = 6
	maxLength = 16

	allowedSpecials = "@$!%*?&"
)

// ErrWeak возвращается для пароля, не прошедшего Validate.
var ErrWeak = errors.New("Password must be 6-16 characters, include at least 1 uppercase letter and 1 number.")

// Validate проверяет пароль: 6-16 символов из A-Za-z0-9@$!%*?&,
// хотя бы одна заглавная латинская буква и одна цифра.
func Validate(password string) error {
	if len(password) < minLength || len(password) > maxLength {
		return ErrWeak
	}

	var hasUpper, hasDigit bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= '0' && r <= '9':
			hasDigit = true
		case r >= 'a' && r <= 'z':
		case containsRune(allowedSpecials, r):
		default:
			return ErrWeak
		}
	}
	if !hasUpper || !hasDigit {
		return ErrWeak
	}
	return nil
}

func containsRune(s string, r rune) bool {
	for _, c := range s {
		if c == r {
			return true
		}
	}
	return false
}
