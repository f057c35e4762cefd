// Package testdb provides utilities for database integration tests.
//
// Tests run inside a transaction that is rolled back when the test function
// returns, so they can share one database without cleaning up after
// themselves:
//
//	func TestRecitationStore(t *testing.T) {
//	    db := testdb.GetTestDBWithT(t)
//	    testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//	        recitations := postgres.NewPostgresRecitationStore(tx, nil)
//	        // ...
//	    })
//	}
//
// The connection string is read from RECITE_TEST_DATABASE_URL, falling back to
// DATABASE_URL. When neither is set the test is skipped.
package testdb
