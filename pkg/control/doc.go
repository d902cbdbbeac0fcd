// Package control exposes the command surface as a local REST API.
//
// The API binds to loopback only and is the transport the desktop shell
// and CLI talk to. It never serves mapped files itself; that is the
// engine's job on its own port.
package control
