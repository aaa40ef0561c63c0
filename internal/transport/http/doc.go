// Package http implements the HTTP handlers of the fruit demand dashboard.
// Handlers are thin: they parse and validate query parameters, call the
// dashboard service and render either JSON, the HTML page, or an RFC 7807
// problem.
//
// # Query parameters
//
// Selections are passed in the query string. Multi-valued parameters are
// repeated; years may also be comma-separated:
//
//	mode         historical (default) or forecast
//	year         selected years, ignored in forecast mode
//	fruit        fruits shown in the chart
//	table_fruit  fruits shown in the table
//
// # Responses
//
// JSON endpoints answer with a success envelope:
//
//	{"status": "success", "data": ...}
//
// An empty selection is not an error. The view reports it through its empty
// flags and prompts.
package http
