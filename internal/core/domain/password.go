package domain

import "unicode/utf8"

// CheckPassword enforces the accepted plaintext length: at least
// MinPasswordLength characters and at most MaxPasswordBytes bytes.
func CheckPassword(plaintext string) error {
	if utf8.RuneCountInString(plaintext) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(plaintext) > MaxPasswordBytes {
		return ErrPasswordTooLong
	}
	return nil
}
