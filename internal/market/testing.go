package market

// SeedProceeds is a test helper that seeds a seller balance when using the
// in-memory store.
func SeedProceeds(s Store, seller string, amount int64) {
	if mem, ok := s.(*inMemoryStore); ok {
		mem.mu.Lock()
		defer mem.mu.Unlock()
		mem.proceeds[seller] = amount
	}
}
