package secrets

import (
	"bytes"
	"crypto"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	kerrors "github.com/env-store/envcli/internal/errors"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/armor"
	pgperrors "github.com/ProtonMail/go-crypto/openpgp/errors"
	"github.com/ProtonMail/go-crypto/openpgp/packet"
)

const messageType = "PGP MESSAGE"

// newConfig returns the packet config for a single operation. Each call gets
// its own config so concurrent callers never share state beyond crypto/rand.
func newConfig() *packet.Config {
	return &packet.Config{
		Rand:          rand.Reader,
		DefaultHash:   crypto.SHA256,
		DefaultCipher: packet.CipherAES256,
	}
}

// EncryptMulti seals plaintext to every recipient in one armored message.
// The payload is encrypted once; only the session key is wrapped per
// recipient.
func EncryptMulti(plaintext []byte, recipients []*openpgp.Entity) (string, error) {
	if len(recipients) == 0 {
		return "", fmt.Errorf("%w: %w", kerrors.ErrSealing, kerrors.ErrNoRecipients)
	}

	now := time.Now()
	for i, r := range recipients {
		if r == nil || r.PrimaryKey == nil {
			return "", fmt.Errorf("%w: recipient %d is malformed", kerrors.ErrSealing, i)
		}
		if _, ok := r.EncryptionKey(now); !ok {
			return "", fmt.Errorf("%w: key %s cannot encrypt", kerrors.ErrSealing, Fingerprint(r))
		}
	}

	var buf bytes.Buffer
	aw, err := armor.Encode(&buf, messageType, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %w", kerrors.ErrSealing, err)
	}

	pw, err := openpgp.Encrypt(aw, recipients, nil, nil, newConfig())
	if err != nil {
		return "", fmt.Errorf("%w: %w", kerrors.ErrSealing, err)
	}
	if _, err := pw.Write(plaintext); err != nil {
		return "", fmt.Errorf("%w: %w", kerrors.ErrSealing, err)
	}
	if err := pw.Close(); err != nil {
		return "", fmt.Errorf("%w: %w", kerrors.ErrSealing, err)
	}
	if err := aw.Close(); err != nil {
		return "", fmt.Errorf("%w: %w", kerrors.ErrSealing, err)
	}

	return buf.String(), nil
}

// Decrypt opens a sealed message with key. A locked key is unlocked with
// passphrase on a private copy; key itself is never modified. The whole
// payload is read before returning so the integrity check always runs.
func Decrypt(blob string, key *openpgp.Entity, passphrase []byte) ([]byte, error) {
	body, err := dearmor(blob)
	if err != nil {
		return nil, err
	}

	ids, err := recipientIDs(body)
	if err != nil {
		return nil, err
	}
	if !addressedTo(ids, key) {
		return nil, fmt.Errorf("%w: %s", kerrors.ErrWrongKey, Fingerprint(key))
	}

	unlocked, err := Unlock(key, passphrase)
	if err != nil {
		return nil, err
	}

	md, err := openpgp.ReadMessage(bytes.NewReader(body), openpgp.EntityList{unlocked}, nil, newConfig())
	switch {
	case errors.Is(err, pgperrors.ErrKeyIncorrect):
		return nil, fmt.Errorf("%w: %s", kerrors.ErrWrongKey, Fingerprint(key))
	case errors.Is(err, io.EOF):
		return nil, kerrors.ErrEmptyMessage
	case err != nil:
		return nil, fmt.Errorf("%w: %w", kerrors.ErrCorruptMessage, err)
	}
	if !md.IsEncrypted {
		return nil, fmt.Errorf("%w: message is not encrypted", kerrors.ErrCorruptMessage)
	}

	plaintext, err := io.ReadAll(md.UnverifiedBody)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", kerrors.ErrCorruptMessage, err)
	}
	return plaintext, nil
}

// Unlock returns a copy of key whose private key is decrypted with
// passphrase. An unprotected key is returned as is.
func Unlock(key *openpgp.Entity, passphrase []byte) (*openpgp.Entity, error) {
	if key == nil {
		return nil, kerrors.ErrNoPrivateKey
	}
	if key.PrivateKey == nil {
		return nil, fmt.Errorf("%w: %s", kerrors.ErrNoPrivateKey, Fingerprint(key))
	}
	if !key.PrivateKey.Encrypted {
		return key, nil
	}

	priv := *key.PrivateKey
	if err := priv.Decrypt(passphrase); err != nil {
		return nil, fmt.Errorf("%w: %s", kerrors.ErrBadPassphrase, Fingerprint(key))
	}

	unlocked := *key
	unlocked.PrivateKey = &priv
	return &unlocked, nil
}

// Sign produces a detached binary signature over payload.
func Sign(payload []byte, key *openpgp.Entity, passphrase []byte) ([]byte, error) {
	unlocked, err := Unlock(key, passphrase)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", kerrors.ErrSigning, err)
	}

	var buf bytes.Buffer
	if err := openpgp.DetachSign(&buf, unlocked, bytes.NewReader(payload), newConfig()); err != nil {
		return nil, fmt.Errorf("%w: %w", kerrors.ErrSigning, err)
	}
	return buf.Bytes(), nil
}

// VerifySignature checks a detached signature made by pub.
func VerifySignature(payload, signature []byte, pub *openpgp.Entity) error {
	_, err := openpgp.CheckDetachedSignature(openpgp.EntityList{pub}, bytes.NewReader(payload), bytes.NewReader(signature), newConfig())
	if err != nil {
		return fmt.Errorf("signature does not verify: %w", err)
	}
	return nil
}

// Recipients lists the key IDs a sealed message is addressed to, as
// uppercase hex. Nothing is decrypted.
func Recipients(blob string) ([]string, error) {
	body, err := dearmor(blob)
	if err != nil {
		return nil, err
	}
	ids, err := recipientIDs(body)
	if err != nil {
		return nil, err
	}

	recipients := make([]string, 0, len(ids))
	for _, id := range ids {
		recipients = append(recipients, KeyID(id))
	}
	return recipients, nil
}

func dearmor(blob string) ([]byte, error) {
	block, err := armor.Decode(strings.NewReader(blob))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", kerrors.ErrCorruptMessage, err)
	}
	if block.Type != messageType {
		return nil, fmt.Errorf("%w: unexpected armor type %q", kerrors.ErrCorruptMessage, block.Type)
	}
	body, err := io.ReadAll(block.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", kerrors.ErrCorruptMessage, err)
	}
	return body, nil
}

// recipientIDs walks the session key packets in front of the encrypted data.
func recipientIDs(body []byte) ([]uint64, error) {
	var ids []uint64
	packets := packet.NewReader(bytes.NewReader(body))
	for {
		p, err := packets.Next()
		if err == io.EOF {
			return ids, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", kerrors.ErrCorruptMessage, err)
		}
		switch p := p.(type) {
		case *packet.EncryptedKey:
			ids = append(ids, p.KeyId)
		case *packet.SymmetricallyEncrypted, *packet.AEADEncrypted:
			return ids, nil
		}
	}
}

// addressedTo reports whether key holds one of ids. A zero ID hides the
// recipient, so it counts as a possible match.
func addressedTo(ids []uint64, key *openpgp.Entity) bool {
	if len(ids) == 0 {
		// Let ReadMessage decide between an empty and a corrupt message.
		return true
	}
	for _, id := range ids {
		if id == 0 || id == key.PrimaryKey.KeyId {
			return true
		}
		for _, sub := range key.Subkeys {
			if id == sub.PublicKey.KeyId {
				return true
			}
		}
	}
	return false
}
