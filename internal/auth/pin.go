package auth

import (
	"regexp"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 10

// LockoutThreshold is the failed-attempt count at which lockouts begin.
const LockoutThreshold = 4

var (
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9]{3,20}$`)
	pinPattern      = regexp.MustCompile(`^[0-9]{6}$`)
	slugPattern     = regexp.MustCompile(`^[A-Za-z0-9-]{1,50}$`)
)

// ValidUsername reports whether username is 3-20 alphanumeric characters.
func ValidUsername(username string) bool {
	return usernamePattern.MatchString(username)
}

// ValidPIN reports whether pin is exactly 6 ASCII digits.
func ValidPIN(pin string) bool {
	return pinPattern.MatchString(pin)
}

// ValidSlug reports whether slug is 1-50 alphanumeric or hyphen characters.
func ValidSlug(slug string) bool {
	return slugPattern.MatchString(slug)
}

// HashPIN returns the bcrypt digest of a PIN.
func HashPIN(pin string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(pin), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// CheckPIN compares a submitted PIN against a stored bcrypt digest.
// bcrypt's comparison is constant-time over the digest.
func CheckPIN(pin, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(pin)) == nil
}

// LockoutDuration returns how long an account stays locked after the given
// cumulative failed-attempt count. The schedule escalates monotonically:
// attempts 4-5 lock for 5 minutes, 6-7 for 15 minutes, 8 and above for an hour.
// Counts below the threshold never lock.
func LockoutDuration(failedAttempts int) time.Duration {
	switch {
	case failedAttempts < LockoutThreshold:
		return 0
	case failedAttempts >= 8:
		return 60 * time.Minute
	case failedAttempts >= 6:
		return 15 * time.Minute
	default:
		return 5 * time.Minute
	}
}
