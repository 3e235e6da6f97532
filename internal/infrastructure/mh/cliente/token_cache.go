package cliente

import (
	"crypto/rand"
	"crypto/subtle"
	"sync"
	"time"

	"golang.org/x/crypto/blake2b"
)

// tokenCache tokens de MH por NIT con vencimiento. Cada token guarda la huella del password
// con que se obtuvo: otro password para el mismo NIT no reutiliza el token.
type tokenCache struct {
	mu     sync.RWMutex
	tokens map[string]tokenEntry
	clave  []byte
	now    func() time.Time
}

type tokenEntry struct {
	token  string
	huella [blake2b.Size256]byte
	expira time.Time
}

func newTokenCache(now func() time.Time) *tokenCache {
	clave := make([]byte, 32)
	if _, err := rand.Read(clave); err != nil {
		panic("cliente: generar clave de huellas: " + err.Error())
	}
	return &tokenCache{tokens: make(map[string]tokenEntry), clave: clave, now: now}
}

// huella BLAKE2b-256 con clave aleatoria del proceso; el password no queda en memoria.
func (c *tokenCache) huella(password string) [blake2b.Size256]byte {
	h, err := blake2b.New256(c.clave)
	if err != nil {
		panic("cliente: blake2b: " + err.Error())
	}
	h.Write([]byte(password))
	var out [blake2b.Size256]byte
	copy(out[:], h.Sum(nil))
	return out
}

// Get devuelve el token del NIT si sigue vigente y se obtuvo con el mismo password.
func (c *tokenCache) Get(nit, password string) (string, bool) {
	huella := c.huella(password)

	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.tokens[nit]
	if !ok || e.token == "" || !c.now().Before(e.expira) {
		return "", false
	}
	if subtle.ConstantTimeCompare(e.huella[:], huella[:]) != 1 {
		return "", false
	}
	return e.token, true
}

func (c *tokenCache) Set(nit, password, token string, ttl time.Duration) {
	huella := c.huella(password)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.tokens[nit] = tokenEntry{token: token, huella: huella, expira: c.now().Add(ttl)}
}

func (c *tokenCache) Clear(nit string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.tokens, nit)
}
