package utils

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 10)
	return string(bytes), err
}

func ComparePasswords(hashedPassword string, plainPassword string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(plainPassword))
}

func GenerateSecureToken(length int) (string, error) {
	if length <= 0 {
		return "", errors.New("invalid token length")
	}

	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}

	return hex.EncodeToString(bytes), nil
}

// referralAlphabet drops 0/O and 1/I so codes survive being read aloud.
const referralAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const ReferralCodeLength = 8

func GenerateReferralCode() (string, error) {
	code := make([]byte, ReferralCodeLength)
	max := big.NewInt(int64(len(referralAlphabet)))
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		code[i] = referralAlphabet[n.Int64()]
	}
	return string(code), nil
}
