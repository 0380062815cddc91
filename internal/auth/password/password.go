// Package password wraps the adaptive hash used for stored credentials.
package password

import "golang.org/x/crypto/bcrypt"

// Hash returns the bcrypt digest of a plaintext password.
func Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify checks whether a plaintext password matches the stored digest.
func Verify(digest, plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
