package roomcode

import (
	"strings"

	"github.com/google/uuid"
)

//go:generate mockgen -package=mocks -destination=mocks/mock_generator.go github.com/boardbank/boardbank/internal/common/roomcode Generator

// Length of a generated room code.
const Length = 6

// Generator produces room codes. Codes are short join tokens shown on a
// screen and typed by other players; they are cosmetic, not secrets.
type Generator interface {
	NewCode() string
}

// DefaultGenerator implements Generator using random UUIDs.
type DefaultGenerator struct{}

// New returns a UUID-backed Generator
func New() *DefaultGenerator {
	return &DefaultGenerator{}
}

// NewCode returns an uppercase code of Length hex characters.
func (g *DefaultGenerator) NewCode() string {
	id := uuid.New().String()
	return strings.ToUpper(id[:Length])
}
