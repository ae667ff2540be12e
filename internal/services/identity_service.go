package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rafaelalberola/lamiradacreativa/internal/config"
	"github.com/rafaelalberola/lamiradacreativa/internal/constants"
	"github.com/rafaelalberola/lamiradacreativa/internal/utils"
	"github.com/rafaelalberola/lamiradacreativa/internal/utils/auth0"
)

// UpsertResult reports whether the identity was created or already existed.
type UpsertResult struct {
	Created bool
	Exists  bool
	Email   string
	UserID  string
}

// UserStatus answers the login page's "may this email sign in?" question.
type UserStatus struct {
	Exists    bool
	Purchased bool
}

type IdentityService interface {
	Upsert(ctx context.Context, email, displayName, customerID string) (*UpsertResult, error)
	CheckUser(ctx context.Context, email string) (*UserStatus, error)
}

type identityService struct {
	cfg *config.Config
	now func() time.Time
}

func NewIdentityService(cfg *config.Config) IdentityService {
	return &identityService{cfg: cfg, now: time.Now}
}

func (s *identityService) session(ctx context.Context) (*auth0.Session, error) {
	if err := s.cfg.RequireIdentity(); err != nil {
		return nil, err
	}
	client, err := auth0.NewClient(s.cfg.Auth0Domain, s.cfg.Auth0ClientID, s.cfg.Auth0ClientSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrMissingConfig, err)
	}
	return client.NewSession(ctx), nil
}

// Upsert makes sure a passwordless identity for email exists and is
// entitled. Existing identities only get their app_metadata patched; their
// login method is left alone. Repeated calls converge on the same state.
func (s *identityService) Upsert(ctx context.Context, email, displayName, customerID string) (*UpsertResult, error) {
	sess, err := s.session(ctx)
	if err != nil {
		return nil, err
	}

	md := auth0.AppMetadata{
		Purchased:        true,
		StripeCustomerID: customerID,
		PurchaseDate:     s.now().UTC().Format(time.RFC3339),
	}

	existing, err := sess.UsersByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return s.patch(ctx, sess, existing[0], email, md)
	}

	created, err := sess.CreateUser(ctx, auth0.CreateUserRequest{
		Email:         email,
		Name:          displayNameOrLocalPart(displayName, email),
		Connection:    constants.Auth0PasswordlessConnection,
		EmailVerified: true,
		AppMetadata:   md,
	})
	var conflict *auth0.ConflictError
	if errors.As(err, &conflict) {
		// Lost a race with a concurrent delivery of the same purchase.
		utils.Logger.Infof("Identity for %s created concurrently, patching instead", utils.MaskEmail(email))
		existing, err = sess.UsersByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if len(existing) == 0 {
			return nil, fmt.Errorf("identity conflict for %s but lookup returned nothing", utils.MaskEmail(email))
		}
		return s.patch(ctx, sess, existing[0], email, md)
	}
	if err != nil {
		return nil, err
	}

	utils.Logger.Infof("Passwordless identity created for %s", utils.MaskEmail(email))
	return &UpsertResult{Created: true, Email: email, UserID: created.UserID}, nil
}

func (s *identityService) patch(ctx context.Context, sess *auth0.Session, u auth0.User, email string, md auth0.AppMetadata) (*UpsertResult, error) {
	if _, err := sess.UpdateAppMetadata(ctx, u.UserID, md); err != nil {
		return nil, err
	}
	utils.Logger.Infof("Existing identity %s marked as purchased", u.UserID)
	return &UpsertResult{Exists: true, Email: email, UserID: u.UserID}, nil
}

func (s *identityService) CheckUser(ctx context.Context, email string) (*UserStatus, error) {
	sess, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	users, err := sess.UsersByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return &UserStatus{}, nil
	}
	return &UserStatus{Exists: true, Purchased: users[0].HasPurchased()}, nil
}

func displayNameOrLocalPart(name, email string) string {
	if n := strings.TrimSpace(name); n != "" {
		return n
	}
	local, _, _ := strings.Cut(email, "@")
	return local
}
