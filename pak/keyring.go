package pak

import (
	"encoding/hex"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Keyring maps key names to hex-encoded AES keys.
type Keyring map[string]string

// LoadKeyring reads a YAML keyring file of the form:
//
//	default: "000102...1f"
//	event-s4: "aabbcc..."
func LoadKeyring(name string) (Keyring, error) {
	b, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}

	keyring := Keyring{}
	if err = yaml.Unmarshal(b, &keyring); err != nil {
		return nil, err
	}

	return keyring, nil
}

func (k Keyring) Lookup(name string) ([]byte, error) {
	enc, ok := k[name]
	if !ok {
		return nil, fmt.Errorf("no key named %s", name)
	}

	key, err := hex.DecodeString(enc)
	if err != nil {
		return nil, fmt.Errorf("key %s is not hex: %w", name, err)
	}

	switch len(key) {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("key %s has invalid length %d", name, len(key))
	}

	return key, nil
}
