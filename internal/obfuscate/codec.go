// Package obfuscate turns JSON values into opaque strings and back with a
// static passphrase. The passphrase ships with every client, so this hides
// stored data from casual inspection only; it gives no confidentiality and
// no integrity.
//
// The output is the OpenSSL "Salted__" passphrase format (AES-256-CBC, key
// and IV from EVP_BytesToKey over MD5), the same format CryptoJS produces for
// AES.encrypt(text, passphrase), so values written by the browser client
// decode here and vice versa.
package obfuscate

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/md5"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

const (
	saltHeader = "Salted__"
	saltLen    = 8
	keyLen     = 32
)

var (
	ErrEmpty   = errors.New("obfuscate: empty input")
	ErrCorrupt = errors.New("obfuscate: corrupt or foreign ciphertext")
	ErrDecode  = errors.New("obfuscate: plaintext is not valid JSON")
)

// Codec encrypts and decrypts JSON values under one passphrase.
type Codec struct {
	passphrase []byte
	rand       io.Reader
}

func NewCodec(passphrase string) *Codec {
	return &Codec{passphrase: []byte(passphrase), rand: rand.Reader}
}

// Encrypt serializes v and encrypts it. On any failure it returns "" and the
// error; callers must not persist anything in that case.
func (c *Codec) Encrypt(v any) (string, error) {
	plain, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("obfuscate: encode: %w", err)
	}

	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(c.rand, salt); err != nil {
		return "", fmt.Errorf("obfuscate: salt: %w", err)
	}

	key, iv := deriveKeyIV(c.passphrase, salt)
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("obfuscate: cipher: %w", err)
	}

	padded := pad(plain, aes.BlockSize)
	out := make([]byte, len(saltHeader)+saltLen+len(padded))
	copy(out, saltHeader)
	copy(out[len(saltHeader):], salt)
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out[len(saltHeader)+saltLen:], padded)

	return base64.StdEncoding.EncodeToString(out), nil
}

// Decrypt reverses Encrypt into v. It never panics; every failure maps to
// ErrEmpty, ErrCorrupt or ErrDecode.
func (c *Codec) Decrypt(text string, v any) error {
	if text == "" {
		return ErrEmpty
	}

	raw, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return ErrCorrupt
	}
	if len(raw) < len(saltHeader)+saltLen+aes.BlockSize || !bytes.HasPrefix(raw, []byte(saltHeader)) {
		return ErrCorrupt
	}

	salt := raw[len(saltHeader) : len(saltHeader)+saltLen]
	body := raw[len(saltHeader)+saltLen:]
	if len(body)%aes.BlockSize != 0 {
		return ErrCorrupt
	}

	key, iv := deriveKeyIV(c.passphrase, salt)
	block, err := aes.NewCipher(key)
	if err != nil {
		return ErrCorrupt
	}

	plain := make([]byte, len(body))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, body)
	plain, ok := unpad(plain, aes.BlockSize)
	if !ok {
		return ErrCorrupt
	}

	if err := json.Unmarshal(plain, v); err != nil {
		return ErrDecode
	}
	return nil
}

// deriveKeyIV is OpenSSL's EVP_BytesToKey with MD5 and one iteration.
func deriveKeyIV(pass, salt []byte) (key, iv []byte) {
	var derived, prev []byte
	for len(derived) < keyLen+aes.BlockSize {
		h := md5.New()
		h.Write(prev)
		h.Write(pass)
		h.Write(salt)
		prev = h.Sum(nil)
		derived = append(derived, prev...)
	}
	return derived[:keyLen], derived[keyLen : keyLen+aes.BlockSize]
}

func pad(b []byte, size int) []byte {
	n := size - len(b)%size
	return append(append([]byte(nil), b...), bytes.Repeat([]byte{byte(n)}, n)...)
}

func unpad(b []byte, size int) ([]byte, bool) {
	if len(b) == 0 {
		return nil, false
	}
	n := int(b[len(b)-1])
	if n == 0 || n > size || n > len(b) {
		return nil, false
	}
	for _, p := range b[len(b)-n:] {
		if int(p) != n {
			return nil, false
		}
	}
	return b[:len(b)-n], true
}
