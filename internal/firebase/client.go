package firebase

import (
	"context"
	"fmt"
	"os"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// Config selects the credentials used to reach Firebase.
// ProjectID alone is enough when FIRESTORE_EMULATOR_HOST is set.
type Config struct {
	CredentialsPath string
	CredentialsJSON string
	ProjectID       string
}

// Client holds the Firebase clients
type Client struct {
	App       *firebase.App
	Auth      *auth.Client
	Firestore *firestore.Client
}

// NewClient initializes the Firebase app with its Auth and Firestore clients
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	var options []option.ClientOption

	switch {
	case cfg.CredentialsPath != "":
		// Local development, credentials file
		if _, err := os.Stat(cfg.CredentialsPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("credentials file does not exist: %s", cfg.CredentialsPath)
		}
		options = append(options, option.WithCredentialsFile(cfg.CredentialsPath))
	case cfg.CredentialsJSON != "":
		// Production, JSON from the environment
		options = append(options, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	case cfg.ProjectID != "" && os.Getenv("FIRESTORE_EMULATOR_HOST") != "":
		options = append(options, option.WithoutAuthentication())
	default:
		return nil, fmt.Errorf("missing FIREBASE_CREDENTIALS_PATH or FIREBASE_CREDENTIALS_JSON")
	}

	var appConfig *firebase.Config
	if cfg.ProjectID != "" {
		appConfig = &firebase.Config{ProjectID: cfg.ProjectID}
	}

	app, err := firebase.NewApp(ctx, appConfig, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase Auth: %w", err)
	}

	firestoreClient, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firestore: %w", err)
	}

	return &Client{
		App:       app,
		Auth:      authClient,
		Firestore: firestoreClient,
	}, nil
}

// Close closes the Firestore connection
func (c *Client) Close() error {
	if c.Firestore != nil {
		return c.Firestore.Close()
	}
	return nil
}

// Store returns a lending store backed by this client's Firestore database
func (c *Client) Store(options ...Option) *Store {
	return NewStore(c.Firestore, options...)
}

// GrantStaffRole marks the user as library staff by setting the role
// custom claim checked by the staff middleware
func (c *Client) GrantStaffRole(ctx context.Context, uid string) error {
	user, err := c.Auth.GetUser(ctx, uid)
	if err != nil {
		return fmt.Errorf("failed to load user %s: %w", uid, err)
	}

	claims := make(map[string]interface{}, len(user.CustomClaims)+1)
	for key, value := range user.CustomClaims {
		claims[key] = value
	}
	claims[StaffRoleClaim] = StaffRole

	if err := c.Auth.SetCustomUserClaims(ctx, uid, claims); err != nil {
		return fmt.Errorf("failed to set staff claim for %s: %w", uid, err)
	}
	return nil
}

// CreateStaffUser creates a Firebase Auth user and grants it the staff role
func (c *Client) CreateStaffUser(ctx context.Context, email, password, displayName string) (string, error) {
	params := (&auth.UserToCreate{}).
		Email(email).
		Password(password).
		DisplayName(displayName)

	user, err := c.Auth.CreateUser(ctx, params)
	if err != nil {
		return "", fmt.Errorf("failed to create user %s: %w", email, err)
	}

	if err := c.GrantStaffRole(ctx, user.UID); err != nil {
		return "", err
	}
	return user.UID, nil
}

const (
	// StaffRoleClaim is the custom claim carrying the user's role
	StaffRoleClaim = "role"
	// StaffRole is the role value allowed to manage the catalog
	StaffRole = "admin"
)
