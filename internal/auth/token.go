package auth

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	kerrors "github.com/env-store/envcli/internal/errors"
	"github.com/env-store/envcli/internal/secrets"

	"github.com/ProtonMail/go-crypto/openpgp"
)

const challengePrefix = "envcli-auth:v1:"

// Token is a signed challenge.
type Token struct {
	Fingerprint string
	UserID      string
	IssuedAt    time.Time
	Challenge   []byte
	Signature   []byte
}

// String renders the bearer value sent in the Authorization header.
func (t *Token) String() string {
	return base64.RawURLEncoding.EncodeToString(t.Challenge) + "." + base64.RawURLEncoding.EncodeToString(t.Signature)
}

// Challenge builds the canonical bytes that get signed.
func Challenge(fingerprint, userID string, issuedAt time.Time) []byte {
	return []byte(challengePrefix + strings.ToUpper(fingerprint) + ":" + userID + ":" + strconv.FormatInt(issuedAt.Unix(), 10))
}

// KeyLoader supplies private keys by fingerprint. secrets.Vault satisfies it.
type KeyLoader interface {
	LoadPrivateKey(fingerprint string) (*openpgp.Entity, error)
}

// Issuer signs challenges with keys from the local keyring.
type Issuer struct {
	Keyring    secrets.Keyring
	Keys       KeyLoader
	Passphrase []byte

	// Policy defaults to secrets.SubstringPolicy.
	Policy secrets.MatchPolicy

	// Now defaults to time.Now.
	Now func() time.Time
}

// Issue resolves fingerprintFragment against the keyring and signs a fresh
// challenge for userID. An empty fragment selects the primary key. An empty
// userID falls back to the uuid recorded for the key when it was uploaded.
func (i Issuer) Issue(fingerprintFragment, userID string) (*Token, error) {
	resolver := secrets.Resolver{Keyring: i.Keyring, Policy: i.Policy}
	entry, err := resolver.Lookup(fingerprintFragment)
	if err != nil {
		return nil, err
	}

	if userID == "" {
		userID = entry.UUID
	}
	if userID == "" {
		return nil, fmt.Errorf("%w: %s", kerrors.ErrMissingIdentity, entry.Fingerprint)
	}

	key, err := i.Keys.LoadPrivateKey(entry.Fingerprint)
	if err != nil {
		return nil, err
	}

	now := time.Now
	if i.Now != nil {
		now = i.Now
	}
	issuedAt := now().Truncate(time.Second)
	fingerprint := secrets.Fingerprint(key)
	challenge := Challenge(fingerprint, userID, issuedAt)

	signature, err := secrets.Sign(challenge, key, i.Passphrase)
	if err != nil {
		return nil, err
	}

	return &Token{
		Fingerprint: fingerprint,
		UserID:      userID,
		IssuedAt:    issuedAt,
		Challenge:   challenge,
		Signature:   signature,
	}, nil
}

// Parse splits a bearer value into its parts without checking the signature.
func Parse(bearer string) (*Token, error) {
	encodedChallenge, encodedSignature, ok := strings.Cut(bearer, ".")
	if !ok {
		return nil, fmt.Errorf("%w: missing signature", kerrors.ErrInvalidToken)
	}

	challenge, err := base64.RawURLEncoding.DecodeString(encodedChallenge)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", kerrors.ErrInvalidToken, err)
	}
	signature, err := base64.RawURLEncoding.DecodeString(encodedSignature)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", kerrors.ErrInvalidToken, err)
	}

	rest, ok := strings.CutPrefix(string(challenge), challengePrefix)
	if !ok {
		return nil, fmt.Errorf("%w: unknown challenge format", kerrors.ErrInvalidToken)
	}
	fingerprint, rest, ok := strings.Cut(rest, ":")
	if !ok {
		return nil, fmt.Errorf("%w: malformed challenge", kerrors.ErrInvalidToken)
	}
	sep := strings.LastIndex(rest, ":")
	if sep < 0 {
		return nil, fmt.Errorf("%w: malformed challenge", kerrors.ErrInvalidToken)
	}
	unix, err := strconv.ParseInt(rest[sep+1:], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad timestamp: %w", kerrors.ErrInvalidToken, err)
	}

	return &Token{
		Fingerprint: fingerprint,
		UserID:      rest[:sep],
		IssuedAt:    time.Unix(unix, 0),
		Challenge:   challenge,
		Signature:   signature,
	}, nil
}

// Verify checks a bearer value against the public key it claims to be from.
// A zero maxAge disables the age check.
func Verify(bearer string, pub *openpgp.Entity, maxAge time.Duration) (*Token, error) {
	token, err := Parse(bearer)
	if err != nil {
		return nil, err
	}

	if !strings.EqualFold(token.Fingerprint, secrets.Fingerprint(pub)) {
		return nil, fmt.Errorf("%w: token is for %s", kerrors.ErrInvalidToken, token.Fingerprint)
	}
	if err := secrets.VerifySignature(token.Challenge, token.Signature, pub); err != nil {
		return nil, fmt.Errorf("%w: %w", kerrors.ErrInvalidToken, err)
	}
	if maxAge > 0 && time.Since(token.IssuedAt) > maxAge {
		return nil, fmt.Errorf("%w: issued at %s", kerrors.ErrInvalidToken, token.IssuedAt.Format(time.RFC3339))
	}

	return token, nil
}
