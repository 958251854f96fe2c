package security

import "golang.org/x/crypto/bcrypt"

// Cost is pinned rather than left at the library default so stored hashes
// stay comparable across library upgrades.
const pinCost = 10

// HashPin hashes a plain text pin with bcrypt.
func HashPin(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), pinCost)

	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// helper that compares a bcrypt hash with a plaintext pin.

func CheckPin(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}
