package firebase

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"chat-notifier/internal/config"
)

// Clients bundles the Firebase-backed collaborators used by the service.
// They are constructed once at startup and passed explicitly to components.
type Clients struct {
	Firestore *firestore.Client
	Messaging *messaging.Client
	Auth      *auth.Client
}

// Connect initializes the Firebase app and its Firestore, Cloud Messaging
// and Auth clients.
func Connect(ctx context.Context, cfg config.Config) (*Clients, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	var appCfg *firebase.Config
	if cfg.ProjectID != "" {
		appCfg = &firebase.Config{ProjectID: cfg.ProjectID}
	}

	app, err := firebase.NewApp(ctx, appCfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}

	fs, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firestore client: %w", err)
	}

	msg, err := app.Messaging(ctx)
	if err != nil {
		_ = fs.Close()
		return nil, fmt.Errorf("init messaging client: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		_ = fs.Close()
		return nil, fmt.Errorf("init auth client: %w", err)
	}

	return &Clients{Firestore: fs, Messaging: msg, Auth: authClient}, nil
}

// Close releases the underlying client connections.
func (c *Clients) Close() error {
	if c.Firestore != nil {
		return c.Firestore.Close()
	}
	return nil
}

// AuthVerifier validates Firebase ID tokens.
type AuthVerifier struct {
	client *auth.Client
}

// NewAuthVerifier constructs the wrapper.
func NewAuthVerifier(client *auth.Client) *AuthVerifier {
	return &AuthVerifier{client: client}
}

// Verify checks the ID token and returns the authenticated user id.
func (v *AuthVerifier) Verify(ctx context.Context, idToken string) (string, error) {
	token, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return "", err
	}
	return token.UID, nil
}
