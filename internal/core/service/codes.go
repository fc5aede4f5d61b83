package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	codeLength = 6
	codeMin    = 100000
	codeSpan   = 900000 // codeMin..999999 inclusive
)

// CodeGenerator produces one-time numeric codes.
type CodeGenerator interface {
	Generate() (string, error)
}

// RandomCodeGenerator draws 6-digit codes in [100000, 999999] from crypto/rand.
type RandomCodeGenerator struct{}

func NewCodeGenerator() RandomCodeGenerator {
	return RandomCodeGenerator{}
}

func (RandomCodeGenerator) Generate() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeSpan))
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%d", n.Int64()+codeMin), nil
}
