// Package version carries build identity constants.
package version

const (
	AppName    = "Goldy"
	AppVersion = "0.2.0"
)
