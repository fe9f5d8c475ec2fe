package app

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/YassineIdiri/expense-tracker/pkg/jwtx"
)

// InitSigningKey loads the Ed25519 signing key from disk, generating and
// persisting a fresh one on first boot so access tokens survive restarts.
func InitSigningKey(path string, logger *slog.Logger) (*jwtx.Keypair, error) {
	path = filepath.Clean(path)

	if data, err := os.ReadFile(path); err == nil {
		kp, err := jwtx.LoadKeypair(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse signing key %s: %w", path, err)
		}
		logger.Info("signing key loaded", "path", path)
		return kp, nil
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read signing key %s: %w", path, err)
	}

	kp, err := jwtx.GenerateKeypair()
	if err != nil {
		return nil, fmt.Errorf("failed to generate signing key: %w", err)
	}

	pemKey, err := kp.MarshalPEM()
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, pemKey, 0600); err != nil {
		return nil, fmt.Errorf("failed to persist signing key %s: %w", path, err)
	}

	logger.Info("signing key generated", "path", path)
	return kp, nil
}
