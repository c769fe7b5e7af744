package pak

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
)

// DecryptCBC decrypts an AES-CBC encrypted archive. The IV is the
// first block of data; PKCS#7 padding is validated and stripped.
func DecryptCBC(key, data []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	if len(data) < 2*aes.BlockSize || len(data)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("ciphertext is not a positive multiple of the block size")
	}

	var (
		iv         = data[:aes.BlockSize]
		ciphertext = data[aes.BlockSize:]
		plaintext  = make([]byte, len(ciphertext))
	)

	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)

	return unpad(plaintext)
}

// EncryptCBC is the inverse of DecryptCBC given the same key and iv.
func EncryptCBC(key, iv, data []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	if len(iv) != aes.BlockSize {
		return nil, fmt.Errorf("iv is not one block")
	}

	var (
		padded     = pad(data)
		ciphertext = make([]byte, len(padded))
	)

	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	return append(append([]byte{}, iv...), ciphertext...), nil
}

func pad(data []byte) []byte {
	n := aes.BlockSize - len(data)%aes.BlockSize

	padded := make([]byte, len(data)+n)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(n)
	}

	return padded
}

func unpad(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty plaintext")
	}

	n := int(data[len(data)-1])
	if n == 0 || n > aes.BlockSize || n > len(data) {
		return nil, fmt.Errorf("invalid padding")
	}

	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, fmt.Errorf("invalid padding")
		}
	}

	return data[:len(data)-n], nil
}
