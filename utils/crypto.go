package utils

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/openpgp"
	"golang.org/x/crypto/openpgp/armor"
)

// ErrVaultLocked возвращается, если приватный ключ не настроен
var ErrVaultLocked = errors.New("приватный ключ не настроен")

// Vault шифрует чувствительные данные (PAN, CVV, пароли PayPal) с помощью PGP
// и считает HMAC для поиска дубликатов без расшифровки.
type Vault struct {
	public  openpgp.EntityList
	private openpgp.EntityList
	hmacKey []byte
}

// NewVault создает Vault из armored ключей. Приватный ключ может быть пустым:
// тогда Open всегда возвращает ErrVaultLocked.
func NewVault(publicKey, privateKey, hmacKey string) (*Vault, error) {
	v := &Vault{hmacKey: []byte(hmacKey)}

	if strings.TrimSpace(publicKey) == "" {
		return nil, errors.New("публичный PGP ключ не настроен")
	}
	pub, err := openpgp.ReadArmoredKeyRing(strings.NewReader(publicKey))
	if err != nil {
		return nil, fmt.Errorf("failed to read public key: %w", err)
	}
	v.public = pub

	if strings.TrimSpace(privateKey) != "" {
		priv, err := openpgp.ReadArmoredKeyRing(strings.NewReader(privateKey))
		if err != nil {
			return nil, fmt.Errorf("failed to read private key: %w", err)
		}
		v.private = priv
	}

	return v, nil
}

// Seal шифрует строку и возвращает armored PGP сообщение
func (v *Vault) Seal(data string) (string, error) {
	var buf bytes.Buffer
	armoredWriter, err := armor.Encode(&buf, "PGP MESSAGE", nil)
	if err != nil {
		return "", fmt.Errorf("failed to create armored writer: %w", err)
	}

	plaintext, err := openpgp.Encrypt(armoredWriter, v.public, nil, nil, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create encrypt writer: %w", err)
	}
	if _, err := plaintext.Write([]byte(data)); err != nil {
		return "", fmt.Errorf("failed to write data: %w", err)
	}
	if err := plaintext.Close(); err != nil {
		return "", fmt.Errorf("failed to close plaintext writer: %w", err)
	}
	if err := armoredWriter.Close(); err != nil {
		return "", fmt.Errorf("failed to close armored writer: %w", err)
	}

	return buf.String(), nil
}

// Open расшифровывает armored PGP сообщение
func (v *Vault) Open(encrypted string) (string, error) {
	if len(v.private) == 0 {
		return "", ErrVaultLocked
	}

	block, err := armor.Decode(strings.NewReader(encrypted))
	if err != nil {
		return "", fmt.Errorf("failed to decode encrypted data: %w", err)
	}

	md, err := openpgp.ReadMessage(block.Body, v.private, nil, nil)
	if err != nil {
		return "", fmt.Errorf("failed to read message: %w", err)
	}

	decrypted, err := io.ReadAll(md.UnverifiedBody)
	if err != nil {
		return "", fmt.Errorf("failed to read decrypted data: %w", err)
	}

	return string(decrypted), nil
}

// Fingerprint возвращает HMAC-SHA256 данных в hex
func (v *Vault) Fingerprint(data string) string {
	h := hmac.New(sha256.New, v.hmacKey)
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}

// ValidateLuhn проверяет номер карты по алгоритму Луна
func ValidateLuhn(number string) bool {
	if len(number) < 12 {
		return false
	}
	sum := 0
	double := false
	for i := len(number) - 1; i >= 0; i-- {
		c := number[i]
		if c < '0' || c > '9' {
			return false
		}
		digit := int(c - '0')
		if double {
			digit *= 2
			if digit > 9 {
				digit -= 9
			}
		}
		sum += digit
		double = !double
	}
	return sum%10 == 0
}

// NormalizePAN убирает пробелы и дефисы из номера карты
func NormalizePAN(pan string) string {
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' {
			return -1
		}
		return r
	}, pan)
}
