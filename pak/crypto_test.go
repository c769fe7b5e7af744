package pak_test

import (
	"bytes"
	"testing"

	"github.com/kurahq/kura/pak"
)

func TestCBCRoundTrip(t *testing.T) {
	var (
		key       = bytes.Repeat([]byte{0x01}, 32)
		iv        = bytes.Repeat([]byte{0x02}, 16)
		plaintext = []byte("not a multiple of the block size")
	)

	// Exercise both aligned and unaligned plaintext lengths.
	for _, n := range []int{len(plaintext), len(plaintext) - 3} {
		encrypted, err := pak.EncryptCBC(key, iv, plaintext[:n])
		if err != nil {
			t.Fatal(err)
		}

		decrypted, err := pak.DecryptCBC(key, encrypted)
		if err != nil {
			t.Fatal(err)
		}

		if !bytes.Equal(decrypted, plaintext[:n]) {
			t.Errorf("expected %q, got %q", plaintext[:n], decrypted)
		}
	}
}

func TestDecryptCBCRejectsUnalignedCiphertext(t *testing.T) {
	key := bytes.Repeat([]byte{0x01}, 16)

	if _, err := pak.DecryptCBC(key, make([]byte, 33)); err == nil {
		t.Error("expected an error for unaligned ciphertext")
	}

	if _, err := pak.DecryptCBC(key, make([]byte, 16)); err == nil {
		t.Error("expected an error for ciphertext shorter than iv+block")
	}
}

func TestDecryptCBCRejectsBadKey(t *testing.T) {
	if _, err := pak.DecryptCBC([]byte("short"), make([]byte, 32)); err == nil {
		t.Error("expected an error for an invalid key length")
	}
}

func TestDecryptCBCRejectsBadPadding(t *testing.T) {
	var (
		key = bytes.Repeat([]byte{0x01}, 32)
		iv  = bytes.Repeat([]byte{0x02}, 16)
	)

	encrypted, err := pak.EncryptCBC(key, iv, []byte("some plaintext"))
	if err != nil {
		t.Fatal(err)
	}

	// Flipping bits in the IV flips the same bits in the first
	// plaintext block, which here carries the padding.
	encrypted[15] ^= 0xFF

	if _, err = pak.DecryptCBC(key, encrypted); err == nil {
		t.Error("expected an error for corrupted padding")
	}
}

func TestEncryptCBCRejectsBadIV(t *testing.T) {
	key := bytes.Repeat([]byte{0x01}, 32)

	if _, err := pak.EncryptCBC(key, []byte("short"), []byte("data")); err == nil {
		t.Error("expected an error for an invalid iv length")
	}
}
