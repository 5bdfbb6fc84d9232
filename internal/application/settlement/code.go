package settlement

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/lastmile/backend/internal/domain/shared"
)

const codeMaxRetries = 5

// existsFunc reports whether a generated code is already taken
type existsFunc func(ctx context.Context, code string) (bool, error)

// generateCode returns a fresh unique code of the form <prefix>yymmddNNNNNN
func generateCode(ctx context.Context, prefix string, exists existsFunc) (string, error) {
	datePart := time.Now().Format("060102")

	for attempt := 0; attempt < codeMaxRetries; attempt++ {
		suffix, err := randomDigits(6)
		if err != nil {
			return "", err
		}
		candidate := fmt.Sprintf("%s%s%s", prefix, datePart, suffix)

		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}

	return "", shared.NewDomainError("CODE_EXHAUSTED", "Could not generate a unique code")
}

func randomDigits(n int) (string, error) {
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

// isNotFound reports whether the error is the repository not-found sentinel
func isNotFound(err error) bool {
	return errors.Is(err, shared.ErrNotFound)
}
