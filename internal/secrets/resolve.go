package secrets

import (
	"fmt"
	"strings"

	"github.com/env-store/envcli/internal/configs"
	kerrors "github.com/env-store/envcli/internal/errors"
)

// Notifier receives the warning emitted when a key other than the primary
// one is picked. logger.Logger satisfies it.
type Notifier interface {
	Warnf(msg string, args ...any)
}

// MatchPolicy decides whether a keyring fingerprint answers to a recipient
// identifier taken from a message, or to a fragment typed by the user.
type MatchPolicy interface {
	Match(fingerprint, identifier string) bool
}

// SubstringPolicy matches when the fingerprint contains the identifier,
// ignoring case. It is the default: message recipients are key IDs, which are
// fragments of fingerprints.
type SubstringPolicy struct{}

func (SubstringPolicy) Match(fingerprint, identifier string) bool {
	if identifier == "" {
		return false
	}
	return strings.Contains(strings.ToLower(fingerprint), strings.ToLower(identifier))
}

// ExactPolicy only matches the full fingerprint or the key ID it ends with.
type ExactPolicy struct{}

func (ExactPolicy) Match(fingerprint, identifier string) bool {
	if strings.EqualFold(fingerprint, identifier) {
		return true
	}
	const keyIDLen = 16
	return len(fingerprint) > keyIDLen && strings.EqualFold(fingerprint[len(fingerprint)-keyIDLen:], identifier)
}

// Keyring is a read-only snapshot of the local identity config. It is copied
// out of the config so concurrent readers never need a lock.
type Keyring struct {
	Primary string
	Entries []configs.KeyEntry
}

// NewKeyring snapshots the keys and primary key of config.
func NewKeyring(config *configs.IdentityConfig) Keyring {
	entries := make([]configs.KeyEntry, len(config.Keys))
	copy(entries, config.Keys)
	return Keyring{Primary: config.PrimaryKey, Entries: entries}
}

// Resolver picks the local key to use for a message or a user-supplied
// fingerprint fragment.
type Resolver struct {
	Keyring Keyring

	// Policy defaults to SubstringPolicy.
	Policy MatchPolicy

	// Notifier may be nil, in which case the fallback choice is not reported.
	Notifier Notifier
}

func (r Resolver) policy() MatchPolicy {
	if r.Policy == nil {
		return SubstringPolicy{}
	}
	return r.Policy
}

// Resolve chooses the keyring entry that can open a message addressed to
// recipients. The primary key wins whenever it matches. Otherwise the first
// matching entry in keyring order is chosen and reported.
func (r Resolver) Resolve(recipients []string) (configs.KeyEntry, error) {
	policy := r.policy()

	var available []configs.KeyEntry
	for _, entry := range r.Keyring.Entries {
		for _, recipient := range recipients {
			if policy.Match(entry.Fingerprint, recipient) {
				available = append(available, entry)
				break
			}
		}
	}

	if len(available) == 0 {
		return configs.KeyEntry{}, fmt.Errorf("%w: recipients %s", kerrors.ErrNoUsableKey, strings.Join(recipients, ", "))
	}

	if r.Keyring.Primary != "" {
		for _, entry := range available {
			if strings.EqualFold(entry.Fingerprint, r.Keyring.Primary) {
				return entry, nil
			}
		}
	}

	chosen := available[0]
	if r.Notifier != nil {
		r.Notifier.Warnf("Using key: %s", chosen.Fingerprint)
	}
	return chosen, nil
}

// ResolveMessage reads the recipients of a sealed message and resolves them.
func (r Resolver) ResolveMessage(blob string) (configs.KeyEntry, error) {
	recipients, err := Recipients(blob)
	if err != nil {
		return configs.KeyEntry{}, err
	}
	return r.Resolve(recipients)
}

// Lookup finds the first keyring entry matching a fingerprint fragment. An
// empty fragment selects the primary key.
func (r Resolver) Lookup(fragment string) (configs.KeyEntry, error) {
	if fragment == "" {
		if r.Keyring.Primary == "" {
			return configs.KeyEntry{}, kerrors.ErrNoPrimaryKey
		}
		for _, entry := range r.Keyring.Entries {
			if strings.EqualFold(entry.Fingerprint, r.Keyring.Primary) {
				return entry, nil
			}
		}
		return configs.KeyEntry{Fingerprint: r.Keyring.Primary}, nil
	}

	policy := r.policy()
	for _, entry := range r.Keyring.Entries {
		if policy.Match(entry.Fingerprint, fragment) {
			return entry, nil
		}
	}
	return configs.KeyEntry{}, fmt.Errorf("%w: %s", kerrors.ErrKeyNotFound, fragment)
}
