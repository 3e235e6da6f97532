package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	appdte "github.com/jhoicas/dte-api/internal/application/dte"
)

type candado struct {
	token string
	vence time.Time
}

// MemoryLocker candados en memoria para una sola instancia. Una entrada vencida se
// considera libre y se reemplaza en el siguiente Adquirir.
type MemoryLocker struct {
	mu       sync.Mutex
	candados map[string]candado
	now      func() time.Time
}

// NewMemoryLocker construye el locker.
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{candados: make(map[string]candado), now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (l *MemoryLocker) WithClock(now func() time.Time) *MemoryLocker {
	l.now = now
	return l
}

func (l *MemoryLocker) Adquirir(_ context.Context, clave string, ttl time.Duration) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ahora := l.now()
	if c, ok := l.candados[clave]; ok && ahora.Before(c.vence) {
		return "", false, nil
	}
	token := uuid.NewString()
	l.candados[clave] = candado{token: token, vence: ahora.Add(ttl)}
	return token, true, nil
}

// Liberar solo borra el candado si el token coincide: un candado vencido y tomado por
// otro no se libera.
func (l *MemoryLocker) Liberar(_ context.Context, clave, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if c, ok := l.candados[clave]; ok && c.token == token {
		delete(l.candados, clave)
	}
	return nil
}

// Renovar extiende un candado vigente del mismo dueño. Vencido o ajeno devuelve false.
func (l *MemoryLocker) Renovar(_ context.Context, clave, token string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	ahora := l.now()
	c, ok := l.candados[clave]
	if !ok || c.token != token || !ahora.Before(c.vence) {
		return false, nil
	}
	l.candados[clave] = candado{token: token, vence: ahora.Add(ttl)}
	return true, nil
}

// Size candados registrados (vigentes o vencidos).
func (l *MemoryLocker) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.candados)
}

var _ appdte.Locker = (*MemoryLocker)(nil)
