package users

import (
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// hashCost is a var so tests can lower it.
var hashCost = bcrypt.DefaultCost

// HashPassword returns the bcrypt hash of plaintext.
func HashPassword(plaintext string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plaintext), hashCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckPassword reports whether plaintext matches hash.
func CheckPassword(hash, plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

var (
	dummyOnce sync.Once
	dummyHash string
)

// CheckDummyPassword spends the same time as CheckPassword against a real
// hash. Use it when there is no user to compare against.
func CheckDummyPassword(plaintext string) {
	dummyOnce.Do(func() {
		dummyHash, _ = HashPassword("vidkeeper-dummy-password")
	})
	_ = CheckPassword(dummyHash, plaintext)
}
