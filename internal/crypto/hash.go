package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// SecretSize - размер генерируемого HMAC секрета в байтах
const SecretSize = 32

// HashToken возвращает hex-encoded BLAKE2b-256 дайджест токена.
// Используется как ключ в session store, чтобы сырой токен не хранился.
func HashToken(token string) string {
	sum := blake2b.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Equal сравнивает две строки за постоянное время
func Equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// GenerateSecret генерирует криптографически случайный секрет для подписи токенов
// и возвращает его в base64url без паддинга
func GenerateSecret(size int) (string, error) {
	if size < SecretSize {
		return "", fmt.Errorf("secret size must be at least %d bytes, got %d", SecretSize, size)
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate secret: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}
