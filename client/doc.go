// Package client implements the User side of every protocol: paired
// Request/HandleResponse functions mirroring the issuer's handle_*
// operations (§2, §6), plus a Session type supplementing the Tor
// Browser service wrapper's single-credential lifecycle management.
package client
