// Package secret resolves the bearer token that guards the HTTP JSON-RPC
// endpoint. Tokens come from the environment, the OS keyring or a file in
// the config directory, in that order.
package secret

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/powersched/powersched/common"
	"github.com/powersched/powersched/pkg/logger"
	"github.com/zalando/go-keyring"
)

// ErrNotFound is returned by a Store that holds no token.
var ErrNotFound = errors.New("secret not found")

// Store is a place a token can be kept.
type Store interface {
	Get() (string, error)
	Set(token string) error
	Delete() error
}

// Keyring stores the token in the OS keyring.
type Keyring struct {
	Service string
	User    string
}

var (
	keyringSet    = keyring.Set
	keyringGet    = keyring.Get
	keyringDelete = keyring.Delete
	randRead      = rand.Read
)

func NewKeyring() *Keyring {
	return &Keyring{
		Service: common.AppName,
		User:    "rpc-secret",
	}
}

func (k *Keyring) Get() (string, error) {
	token, err := keyringGet(k.Service, k.User)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return token, nil
}

func (k *Keyring) Set(token string) error {
	return keyringSet(k.Service, k.User, token)
}

func (k *Keyring) Delete() error {
	err := keyringDelete(k.Service, k.User)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

// Generate returns a random 32-byte token, hex encoded.
func Generate() (string, error) {
	b := make([]byte, 32)
	if _, err := randRead(b); err != nil {
		return "", fmt.Errorf("generate secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Resolve returns the token to require on HTTP requests. The environment
// variable wins; otherwise the first store holding a token is used. When no
// store has one, a token is generated and saved to the first store that
// accepts it. Stores that fail are logged and skipped.
func Resolve(l logger.Logger, stores ...Store) (string, error) {
	if l == nil {
		l = logger.NewNopLogger()
	}
	if token := strings.TrimSpace(os.Getenv(common.RPCSecretEnv)); token != "" {
		return token, nil
	}
	for _, s := range stores {
		token, err := s.Get()
		if err == nil && token != "" {
			return token, nil
		}
		if err != nil && !errors.Is(err, ErrNotFound) {
			l.Warning("secret: read from %T: %v", s, err)
		}
	}

	token, err := Generate()
	if err != nil {
		return "", err
	}
	for _, s := range stores {
		if err := s.Set(token); err != nil {
			l.Warning("secret: save to %T: %v", s, err)
			continue
		}
		l.Info("secret: generated new rpc secret in %T", s)
		return token, nil
	}
	return "", fmt.Errorf("secret: no store accepted the generated token")
}
