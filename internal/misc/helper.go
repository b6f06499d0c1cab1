package misc

import (
	"crypto/rand"
	"fmt"
	"github.com/google/uuid"
	"math/big"
	"strings"
	"time"
)

const (
	BackupPrefix    = "bkp"
	SmokeTestPrefix = "smoke"
	RequestPrefix   = "req"

	correlationRandomLength = 8
)

// StrContains returns true if "str" is in "values"
// e.g "a" in "a,b,c" => true
func StrContains(str string, values []string) bool {
	for _, next := range values {
		if str == next {
			return true
		}
	}
	return false
}

const (
	charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

type (
	RandomIdGenerator interface {
		Generate(n int) (string, error)
	}
)

type randomIdGenerator struct {
}

func newRandomIdGenerator() RandomIdGenerator {
	return &randomIdGenerator{}
}

func (p randomIdGenerator) Generate(n int) (string, error) {
	result := make([]byte, n)
	charsetLength := byte(len(charset))

	for i := range result {
		randomByte, err := rand.Int(rand.Reader, big.NewInt(int64(charsetLength)))
		if err != nil {
			return "", err
		}
		result[i] = charset[randomByte.Int64()]
	}

	return string(result), nil
}

var (
	DefaultRandomIdGenerator = newRandomIdGenerator()
)

// NewCorrelationID returns prefix_timestamp_random, the timestamp being Unix
// milliseconds of now.
func NewCorrelationID(prefix string, now time.Time) string {
	random, err := DefaultRandomIdGenerator.Generate(correlationRandomLength)
	if err != nil {
		random = strings.ReplaceAll(uuid.NewString(), "-", "")[:correlationRandomLength]
	}
	return fmt.Sprintf("%s_%d_%s", prefix, now.UnixMilli(), random)
}
