package docstore

import (
	"context"
	"errors"
	"fmt"
	"os"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// ErrNoProject is returned when the configuration names no project.
var ErrNoProject = errors.New("docstore: project id is required")

// emulatorEnv is read by the Firestore SDK itself.
const emulatorEnv = "FIRESTORE_EMULATOR_HOST"

// Connect creates a Firestore client for the configured project.
// The connection is lazy; the first read or listen performs the handshake.
func Connect(ctx context.Context, cfg Config, log *zap.Logger) (*firestore.Client, error) {
	if cfg.ProjectID == "" {
		return nil, ErrNoProject
	}

	if cfg.EmulatorHost != "" {
		if err := os.Setenv(emulatorEnv, cfg.EmulatorHost); err != nil {
			return nil, fmt.Errorf("failed to set %s: %w", emulatorEnv, err)
		}
		log.Info("Using Firestore emulator", zap.String("host", cfg.EmulatorHost))
	}

	opts := ClientOptions(cfg)
	if len(opts) > 0 {
		log.Info("Using Firestore credentials file", zap.String("file", cfg.CredentialsFile))
	}

	client, err := firestore.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}

	log.Info("Firestore client initialized", zap.String("project", cfg.ProjectID))
	return client, nil
}

// ClientOptions returns the client options implied by the configuration.
// A credentials file that does not exist falls back to default credentials.
func ClientOptions(cfg Config) []option.ClientOption {
	if cfg.EmulatorHost != "" || cfg.CredentialsFile == "" {
		return nil
	}
	if _, err := os.Stat(cfg.CredentialsFile); err != nil {
		return nil
	}
	return []option.ClientOption{option.WithCredentialsFile(cfg.CredentialsFile)}
}
