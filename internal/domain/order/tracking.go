package order

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/lastmile/backend/internal/domain/shared"
)

const (
	trackingPrefix     = "LM"
	trackingSuffixLen  = 6
	trackingMaxRetries = 5
	trackingAlphabet   = "0123456789"
)

// TrackingExistsFunc reports whether a tracking number is already taken
type TrackingExistsFunc func(ctx context.Context, number string) (bool, error)

// TrackingGenerator produces globally unique tracking numbers. Uniqueness is
// checked against the store; collisions retry with a fresh random suffix up
// to a bounded number of attempts.
type TrackingGenerator struct {
	exists TrackingExistsFunc
	now    func() time.Time
}

// NewTrackingGenerator creates a generator backed by the given existence check
func NewTrackingGenerator(exists TrackingExistsFunc) *TrackingGenerator {
	return &TrackingGenerator{exists: exists, now: time.Now}
}

// Generate returns a fresh unique tracking number of the form LMyymmddNNNNNN
func (g *TrackingGenerator) Generate(ctx context.Context) (string, error) {
	datePart := g.now().Format("060102")

	for attempt := 0; attempt < trackingMaxRetries; attempt++ {
		suffix, err := randomDigits(trackingSuffixLen)
		if err != nil {
			return "", err
		}
		candidate := fmt.Sprintf("%s%s%s", trackingPrefix, datePart, suffix)

		taken, err := g.exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}

	return "", shared.NewDomainError("TRACKING_EXHAUSTED", "Could not generate a unique tracking number")
}

func randomDigits(n int) (string, error) {
	buf := make([]byte, n)
	max := big.NewInt(int64(len(trackingAlphabet)))
	for i := range buf {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = trackingAlphabet[idx.Int64()]
	}
	return string(buf), nil
}
