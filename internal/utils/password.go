package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword derives the bcrypt hash stored on the user document. The cost
// comes from BCRYPT_COST; anything below bcrypt's minimum falls back to the
// library default so a misconfigured deployment can never weaken new hashes.
func HashPassword(plain string, cost int) (string, error) {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword reports whether plain matches the stored hash. The compare
// is constant time, and the single boolean collapses every failure mode so
// signin cannot reveal whether the email or the password was wrong.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
