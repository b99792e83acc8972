package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Bag é o armazenamento chave/valor de uma visita.
// Pop remove só as chaves informadas; o resto da sessão fica intacto.
type Bag interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any) error
	Pop(ctx context.Context, keys ...string) error
}

// MemoryBag guarda a sessão em memória. Usado em testes e em modo dev.
type MemoryBag struct {
	mu   sync.Mutex
	data map[string][]byte
}

func NewMemoryBag() *MemoryBag {
	return &MemoryBag{data: map[string][]byte{}}
}

func (b *MemoryBag) Get(_ context.Context, key string, dst any) (bool, error) {
	b.mu.Lock()
	raw, ok := b.data[key]
	b.mu.Unlock()

	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("session: decode %s: %w", key, err)
	}
	return true, nil
}

func (b *MemoryBag) Set(_ context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("session: encode %s: %w", key, err)
	}

	b.mu.Lock()
	b.data[key] = raw
	b.mu.Unlock()
	return nil
}

func (b *MemoryBag) Pop(_ context.Context, keys ...string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, k := range keys {
		delete(b.data, k)
	}
	return nil
}

// Has é útil nos testes.
func (b *MemoryBag) Has(key string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	_, ok := b.data[key]
	return ok
}
