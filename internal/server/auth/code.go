package auth

import "github.com/dmitrijs2005/verikeep/internal/common"

// CodeGenerator produces fixed-length verification codes.
type CodeGenerator interface {
	Generate() (string, error)
}

// DigitCodeGenerator draws codes of Length decimal digits from crypto/rand.
// Leading zeros are kept.
type DigitCodeGenerator struct {
	Length int
}

func NewDigitCodeGenerator(length int) *DigitCodeGenerator {
	return &DigitCodeGenerator{Length: length}
}

func (g *DigitCodeGenerator) Generate() (string, error) {
	return common.MakeRandDigits(g.Length)
}
