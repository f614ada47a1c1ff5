package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/lvtodo/lvtodo-api/internal/constants"
)

// GenerateInviteCode generates a random 6-character uppercase
// alphanumeric invite code.
func GenerateInviteCode() (string, error) {
	code := make([]byte, constants.InviteCodeLength)
	max := big.NewInt(int64(len(constants.InviteCodeCharset)))

	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate random index: %w", err)
		}
		code[i] = constants.InviteCodeCharset[n.Int64()]
	}

	return string(code), nil
}
