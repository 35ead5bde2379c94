package domain

import (
	"crypto/md5"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// TrackingNumberLength is the number of hex characters kept from the digest.
const TrackingNumberLength = 8

var trackingNumberPattern = regexp.MustCompile(`^[0-9A-F]{8}$`)

// Generates tracking numbers from a random seed and a process-unique token.
//
// The seed and token are hashed together and the first eight hex characters of
// the digest are kept, uppercased. Numbers are not checked against existing
// records, so collisions are possible.
type TrackingNumberGenerator struct {
	rand io.Reader
}

func NewTrackingNumberGenerator() *TrackingNumberGenerator {
	return &TrackingNumberGenerator{rand: rand.Reader}
}

// NewTrackingNumberGeneratorFrom uses r as the seed source instead of crypto/rand.
func NewTrackingNumberGeneratorFrom(r io.Reader) *TrackingNumberGenerator {
	return &TrackingNumberGenerator{rand: r}
}

func (g *TrackingNumberGenerator) NewTrackingNumber() (string, error) {
	seed := make([]byte, 16)
	if _, err := io.ReadFull(g.rand, seed); err != nil {
		return "", fmt.Errorf("new tracking number: read seed: %w", err)
	}

	token, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("new tracking number: token: %w", err)
	}

	h := md5.New()
	h.Write(seed)
	h.Write(token[:])
	sum := hex.EncodeToString(h.Sum(nil))

	return strings.ToUpper(sum[:TrackingNumberLength]), nil
}

// ValidTrackingNumber reports whether s has the generated tracking number format.
func ValidTrackingNumber(s string) bool {
	return trackingNumberPattern.MatchString(s)
}
