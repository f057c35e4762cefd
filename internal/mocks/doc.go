// Package mocks provides shared test doubles.
//
// MemoryStore is a transactional in-memory implementation of the store
// interfaces. It enforces the same uniqueness rules as the PostgreSQL schema
// and serializes transactions, so service and sweep tests can exercise
// conflict paths without a database:
//
//	ms := mocks.NewMemoryStore()
//	user := ms.AddUser("ada@example.com")
//	text := ms.AddText("Ozymandias", "Shelley")
//	svc, _ := recitation.NewService(ms, ms.Texts(), srsService, emitter, logger)
//
// The function-field mocks (MockJWTService, MockEventEmitter)
// follow the pattern of a struct with one Fn field per method and default
// return values used when the field is nil.
package mocks
