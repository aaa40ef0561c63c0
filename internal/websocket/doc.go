// Package websocket serves the dashboard session endpoint. A browser shell
// opens one connection, sends selections as JSON and receives a recomputed
// view (or an error) for each of them, in order.
//
// Client to server:
//
//	{"mode": "historical", "years": [2019], "fruits": ["Apple"], "table_fruits": ["Pear"]}
//
// Server to client:
//
//	{"type": "connect", ...}
//	{"type": "view", "data": DashboardView}
//	{"type": "error", "data": {"code": "...", "message": "..."}}
package websocket
