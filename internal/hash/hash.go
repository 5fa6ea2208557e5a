package hash

import "golang.org/x/crypto/bcrypt"

// Hasher is the one-way credential hasher used for account passwords.
type Hasher interface {
	Hash(plain string) (string, error)
	Compare(hashed, plain string) bool
}

type bcryptHasher struct {
	cost int
}

func NewBcrypt() Hasher {
	return &bcryptHasher{cost: bcrypt.DefaultCost}
}

func (h *bcryptHasher) Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (h *bcryptHasher) Compare(hashed, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}
