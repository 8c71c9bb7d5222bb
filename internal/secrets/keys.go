package secrets

import (
	"bytes"
	"crypto"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	kerrors "github.com/env-store/envcli/internal/errors"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/armor"
	"github.com/ProtonMail/go-crypto/openpgp/packet"
	"golang.org/x/crypto/sha3"
)

// DefaultKeyBits is the RSA modulus size for new identity keys.
const DefaultKeyBits = 4096

// GenerationOptions describes a new identity key.
type GenerationOptions struct {
	Name    string
	Email   string
	Comment string

	// RealUserID binds "Name (Comment) <Email>" into the key. When false the
	// user ID is HashedUserID(Name, Email, Salt) so the key does not reveal
	// who owns it.
	RealUserID bool
	Salt       string

	// Passphrase protects the private key. Empty leaves it unprotected.
	Passphrase []byte

	// Bits defaults to DefaultKeyBits.
	Bits int
}

// KeyPair is an identity key with its public and private halves.
type KeyPair struct {
	Entity      *openpgp.Entity
	Fingerprint string
}

// HashedUserID derives the privacy-preserving user ID for a key.
func HashedUserID(name, email, salt string) string {
	sum := sha3.Sum512([]byte(name + email + salt))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

// PublicKeyHash is the digest the server stores alongside an uploaded key.
func PublicKeyHash(armored string) string {
	sum := sha3.Sum512([]byte(armored))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

// Fingerprint returns the uppercase hex fingerprint of an entity's primary key.
func Fingerprint(entity *openpgp.Entity) string {
	return strings.ToUpper(hex.EncodeToString(entity.PrimaryKey.Fingerprint))
}

// KeyID formats an OpenPGP key ID the way fingerprints are written.
func KeyID(id uint64) string {
	return fmt.Sprintf("%016X", id)
}

// GenerateKeyPair creates a new RSA identity key whose primary key is used
// for signing and encryption.
func GenerateKeyPair(opts GenerationOptions) (*KeyPair, error) {
	if strings.TrimSpace(opts.Name) == "" || strings.TrimSpace(opts.Email) == "" {
		return nil, fmt.Errorf("name and email are required: %w", kerrors.ErrInvalidIdentity)
	}
	if strings.ContainsAny(opts.Name+opts.Comment+opts.Email, "()<>\x00") {
		return nil, fmt.Errorf("name, comment and email must not contain ()<>: %w", kerrors.ErrInvalidIdentity)
	}

	bits := opts.Bits
	if bits == 0 {
		bits = DefaultKeyBits
	}

	config := &packet.Config{
		Rand:          rand.Reader,
		Algorithm:     packet.PubKeyAlgoRSA,
		RSABits:       bits,
		DefaultHash:   crypto.SHA256,
		DefaultCipher: packet.CipherAES256,
	}

	name, comment, email := opts.Name, opts.Comment, opts.Email
	if !opts.RealUserID {
		name, comment, email = HashedUserID(opts.Name, opts.Email, opts.Salt), "", ""
	}

	entity, err := openpgp.NewEntity(name, comment, email, config)
	if err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}

	// Drop the encryption subkey and let the primary key encrypt, so that the
	// key ID written into sealed messages is a fragment of the fingerprint.
	entity.Subkeys = nil
	for _, ident := range entity.Identities {
		sig := ident.SelfSignature
		sig.FlagEncryptCommunications = true
		sig.FlagEncryptStorage = true
		if err := sig.SignUserId(ident.UserId.Id, entity.PrimaryKey, entity.PrivateKey, config); err != nil {
			return nil, fmt.Errorf("failed to self-sign identity: %w", err)
		}
	}

	if len(opts.Passphrase) > 0 {
		if err := entity.EncryptPrivateKeys(opts.Passphrase, config); err != nil {
			return nil, fmt.Errorf("failed to protect private key: %w", err)
		}
	}

	return &KeyPair{Entity: entity, Fingerprint: Fingerprint(entity)}, nil
}

// ArmoredPublicKey returns the armored public key block.
func (kp *KeyPair) ArmoredPublicKey() (string, error) {
	return ArmorPublicKey(kp.Entity)
}

// ArmoredPrivateKey returns the armored private key block. The private key
// stays encrypted if it was generated with a passphrase.
func (kp *KeyPair) ArmoredPrivateKey() (string, error) {
	var buf bytes.Buffer
	w, err := armor.Encode(&buf, openpgp.PrivateKeyType, nil)
	if err != nil {
		return "", err
	}
	if err := kp.Entity.SerializePrivateWithoutSigning(w, nil); err != nil {
		return "", fmt.Errorf("failed to serialize private key: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ArmorPublicKey serializes the public half of an entity.
func ArmorPublicKey(entity *openpgp.Entity) (string, error) {
	var buf bytes.Buffer
	w, err := armor.Encode(&buf, openpgp.PublicKeyType, nil)
	if err != nil {
		return "", err
	}
	if err := entity.Serialize(w); err != nil {
		return "", fmt.Errorf("failed to serialize public key: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ParseArmoredKey reads the first key from an armored public or private key
// block.
func ParseArmoredKey(armored string) (*openpgp.Entity, error) {
	entities, err := openpgp.ReadArmoredKeyRing(strings.NewReader(armored))
	if err != nil {
		return nil, fmt.Errorf("failed to parse key: %w", err)
	}
	if len(entities) == 0 {
		return nil, fmt.Errorf("failed to parse key: no key in block")
	}
	return entities[0], nil
}
