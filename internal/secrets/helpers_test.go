package secrets

import (
	"fmt"
	"sync"
	"testing"

	"github.com/ProtonMail/go-crypto/openpgp"
)

// RSA key generation is slow, so the package shares three passphrase
// protected key pairs across tests.
var (
	testKeysOnce sync.Once
	testKeys     []*KeyPair
	testKeysErr  error
)

var testPassphrases = [][]byte{
	[]byte("first passphrase"),
	[]byte("second passphrase"),
	[]byte("third passphrase"),
}

func testKeyPairs(t *testing.T) []*KeyPair {
	t.Helper()
	testKeysOnce.Do(func() {
		for i, pass := range testPassphrases {
			kp, err := GenerateKeyPair(GenerationOptions{
				Name:       fmt.Sprintf("User %d", i),
				Email:      fmt.Sprintf("user%d@example.com", i),
				Salt:       "test-salt",
				Passphrase: pass,
				Bits:       2048,
			})
			if err != nil {
				testKeysErr = err
				return
			}
			testKeys = append(testKeys, kp)
		}
	})
	if testKeysErr != nil {
		t.Fatalf("Failed to generate test keys: %v", testKeysErr)
	}
	return testKeys
}

// publicKey round-trips a key pair through its armored public key, the way
// project members' keys arrive from the server.
func publicKey(t *testing.T, kp *KeyPair) *openpgp.Entity {
	t.Helper()
	armored, err := kp.ArmoredPublicKey()
	if err != nil {
		t.Fatalf("Failed to armor public key: %v", err)
	}
	entity, err := ParseArmoredKey(armored)
	if err != nil {
		t.Fatalf("Failed to parse public key: %v", err)
	}
	return entity
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) Warnf(msg string, args ...any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, fmt.Sprintf(msg, args...))
}

func (n *recordingNotifier) Messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.messages...)
}

// sealTo encrypts plaintext to the public halves of the given key pairs.
func sealTo(t *testing.T, plaintext []byte, recipients ...*KeyPair) string {
	t.Helper()
	var entities []*openpgp.Entity
	for _, kp := range recipients {
		entities = append(entities, publicKey(t, kp))
	}
	blob, err := EncryptMulti(plaintext, entities)
	if err != nil {
		t.Fatalf("Failed to encrypt: %v", err)
	}
	return blob
}
