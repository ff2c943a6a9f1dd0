package oauth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// Entropy sizes in bytes before hex encoding. Codes carry 384 bits and token
// values 512, well past the 128-bit floor for unguessable bearer artifacts.
const (
	codeSize         = 48
	tokenSize        = 64
	clientIDSize     = 32
	clientSecretSize = 64
)

// GenerateToken returns size random bytes hex-encoded.
func GenerateToken(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate random token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// GenerateClientCredentials mints a fresh client_id and client_secret pair.
func GenerateClientCredentials() (clientID, clientSecret string, err error) {
	if clientID, err = GenerateToken(clientIDSize); err != nil {
		return "", "", err
	}
	if clientSecret, err = GenerateToken(clientSecretSize); err != nil {
		return "", "", err
	}
	return clientID, clientSecret, nil
}
