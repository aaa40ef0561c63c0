// Package shared holds helpers used across the dashboard packages.
//
// The testutil subpackage provides a capturing slog handler and builders
// for the historical and forecast fixture spreadsheets (xlsx and csv)
// used by the loader, service, transport and app tests:
//
//	func TestSomething(t *testing.T) {
//	    logger, logs := testutil.NewTestLogger(t)
//	    hist := testutil.WriteHistoricalXLSX(t, dir, testutil.SampleHistoricalRows())
//	    // ...
//	}
package shared
