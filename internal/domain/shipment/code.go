package shipment

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/lastmile/backend/internal/domain/shared"
)

const (
	codePrefix     = "SHP"
	codeSuffixLen  = 6
	codeMaxRetries = 5
)

// CodeExistsFunc reports whether a shipment code is already taken
type CodeExistsFunc func(ctx context.Context, code string) (bool, error)

// CodeGenerator produces unique shipment codes. Collisions retry with a
// fresh random suffix up to a bounded number of attempts.
type CodeGenerator struct {
	exists CodeExistsFunc
	now    func() time.Time
}

// NewCodeGenerator creates a generator backed by the given existence check
func NewCodeGenerator(exists CodeExistsFunc) *CodeGenerator {
	return &CodeGenerator{exists: exists, now: time.Now}
}

// Generate returns a fresh unique code of the form SHPyymmddNNNNNN
func (g *CodeGenerator) Generate(ctx context.Context) (string, error) {
	datePart := g.now().Format("060102")

	for attempt := 0; attempt < codeMaxRetries; attempt++ {
		suffix, err := randomCodeDigits(codeSuffixLen)
		if err != nil {
			return "", err
		}
		candidate := fmt.Sprintf("%s%s%s", codePrefix, datePart, suffix)

		taken, err := g.exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}

	return "", shared.NewDomainError("CODE_EXHAUSTED", "Could not generate a unique shipment code")
}

func randomCodeDigits(n int) (string, error) {
	buf := make([]byte, n)
	for i := range buf {
		d, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		buf[i] = byte('0' + d.Int64())
	}
	return string(buf), nil
}
