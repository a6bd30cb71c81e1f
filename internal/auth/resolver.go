package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/anonto42/socialgraph/backend/internal/apperror"
	"github.com/anonto42/socialgraph/backend/internal/models"
	"github.com/anonto42/socialgraph/backend/internal/store"
	"github.com/sirupsen/logrus"
)

// CookieName is the httpOnly cookie carrying the session token.
const CookieName = "token"

const (
	ProviderLocal    = "local"
	ProviderFirebase = "firebase"
)

// Identity is the verified caller of a request.
type Identity struct {
	UID       string `json:"uid"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Username  string `json:"username"`
	UserImage string `json:"userImage"`
	Provider  string `json:"provider"`
}

// Author returns the snapshot copied onto content created by this identity.
func (i *Identity) Author() models.Author {
	return models.Author{
		UserID:    i.UID,
		Username:  i.Username,
		FirstName: i.FirstName,
		LastName:  i.LastName,
		UserImage: i.UserImage,
	}
}

// ProviderClient verifies identity provider tokens. *firebase auth.Client satisfies it.
type ProviderClient interface {
	VerifyIDToken(ctx context.Context, idToken string) (*firebaseauth.Token, error)
	GetUser(ctx context.Context, uid string) (*firebaseauth.UserRecord, error)
}

// Resolver maps request credentials to identities.
type Resolver struct {
	tokens   *TokenManager
	provider ProviderClient
	users    store.Reader
	log      logrus.FieldLogger
}

type ResolverOption func(*Resolver)

// WithProvider enables fallback verification of identity provider ID tokens.
func WithProvider(p ProviderClient) ResolverOption { return func(r *Resolver) { r.provider = p } }

// WithUserLookup enriches tokens that only carry a user id from the users collection.
func WithUserLookup(users store.Reader) ResolverOption { return func(r *Resolver) { r.users = users } }

func WithResolverLogger(log logrus.FieldLogger) ResolverOption {
	return func(r *Resolver) { r.log = log }
}

func NewResolver(tokens *TokenManager, opts ...ResolverOption) *Resolver {
	r := &Resolver{tokens: tokens, log: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve verifies credential and returns the caller's identity.
func (r *Resolver) Resolve(ctx context.Context, credential string) (*Identity, error) {
	if credential == "" {
		return nil, apperror.New(apperror.Unauthenticated, "Unauthorized: No token provided")
	}

	claims, err := r.tokens.Parse(credential)
	if err == nil {
		return r.fromClaims(ctx, claims), nil
	}
	if errors.Is(err, ErrTokenExpired) || r.provider == nil {
		return nil, apperror.Wrap(apperror.InvalidCredential, err, "Invalid or expired token")
	}

	token, perr := r.provider.VerifyIDToken(ctx, credential)
	if perr != nil {
		return nil, apperror.Wrap(apperror.InvalidCredential, perr, "Unauthorized: Invalid token")
	}
	return r.fromProvider(ctx, token), nil
}

func (r *Resolver) fromClaims(ctx context.Context, claims *models.JwtCustomClaims) *Identity {
	id := &Identity{
		UID:       claims.UserID,
		Email:     claims.Email,
		FirstName: claims.FirstName,
		LastName:  claims.LastName,
		Username:  claims.Username,
		UserImage: claims.UserImage,
		Provider:  ProviderLocal,
	}
	if id.Email != "" || r.users == nil {
		return id
	}

	user, err := store.Load[models.User](ctx, r.users, models.UsersCollection, id.UID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			r.log.WithError(err).WithField("user_id", id.UID).Warn("identity lookup failed")
		}
		return id
	}
	id.Email = user.Email
	id.FirstName = user.FirstName
	id.LastName = user.LastName
	id.Username = user.Username
	id.UserImage = user.UserImage
	return id
}

func (r *Resolver) fromProvider(ctx context.Context, token *firebaseauth.Token) *Identity {
	email, _ := token.Claims["email"].(string)
	name, _ := token.Claims["name"].(string)
	picture, _ := token.Claims["picture"].(string)

	if name == "" || picture == "" || email == "" {
		record, err := r.provider.GetUser(ctx, token.UID)
		if err != nil {
			r.log.WithError(err).WithField("uid", token.UID).Warn("identity provider lookup failed")
		} else if record != nil && record.UserInfo != nil {
			if name == "" {
				name = record.DisplayName
			}
			if picture == "" {
				picture = record.PhotoURL
			}
			if email == "" {
				email = record.Email
			}
		}
	}

	firstName, lastName := "User", ""
	if parts := strings.Fields(name); len(parts) > 0 {
		firstName = parts[0]
		if len(parts) > 1 {
			lastName = parts[1]
		}
	}
	username, _, _ := strings.Cut(email, "@")

	return &Identity{
		UID:       token.UID,
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
		Username:  username,
		UserImage: picture,
		Provider:  ProviderFirebase,
	}
}

// CredentialFromRequest returns the bearer token, falling back to the session cookie.
func CredentialFromRequest(req *http.Request) string {
	if header := req.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	if cookie, err := req.Cookie(CookieName); err == nil {
		return cookie.Value
	}
	return ""
}
