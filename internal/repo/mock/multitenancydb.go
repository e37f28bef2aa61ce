package mock

import (
	"maps"
	"sync"
)

// InMemoryMultitenancyDB keeps one InMemoryDB per schema.
type InMemoryMultitenancyDB struct {
	databases map[string]*InMemoryDB
	mu        sync.Mutex
}

func NewInMemoryMultitenancyDB() *InMemoryMultitenancyDB {
	return &InMemoryMultitenancyDB{
		databases: make(map[string]*InMemoryDB),
	}
}

func (mt *InMemoryMultitenancyDB) GetDB(schema string) *InMemoryDB {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	if _, ok := mt.databases[schema]; !ok {
		mt.databases[schema] = NewInMemoryDB()
	}

	return mt.databases[schema]
}

func (mt *InMemoryMultitenancyDB) snapshot() map[string]*InMemoryDB {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	copied := make(map[string]*InMemoryDB, len(mt.databases))
	for name, db := range mt.databases {
		copied[name] = db.clone()
	}

	return copied
}

func (mt *InMemoryMultitenancyDB) restore(databases map[string]*InMemoryDB) {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	mt.databases = maps.Clone(databases)
}
