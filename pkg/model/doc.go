// Package model defines typed records for common RouterOS endpoints.
//
// # Record Mapping
//
// Device replies are flat key/value sentences. The structs here carry
// `ros` field tags naming the device's attribute keys, including the
// dotted bookkeeping keys (`.id`, `.dead`):
//
//	type InterfaceChange struct {
//	    ID string `ros:".id"`
//	}
//
// Decoding a reply into one of these types is performed by the client's
// record decoder; this package only declares the shapes and the custom
// value types device attributes need.
//
// # Value Types
//
// Two attribute syntaxes don't fit plain Go scalars and get dedicated
// types implementing encoding.TextUnmarshaler:
//
//   - MTU: the literal "auto" or an unsigned number.
//   - Duration: RouterOS duration syntax such as "2w3d7h16m40s".
package model
