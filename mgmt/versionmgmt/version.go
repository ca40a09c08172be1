// Package versionmgmt exposes version information over the management server.
package versionmgmt

import (
	"github.com/flexsw/flexsw/core/version"
)

// VersionMgmt reports daemon version information.
type VersionMgmt struct{}

// Version returns version information.
func (VersionMgmt) Version(args struct{}, reply *version.Version) error {
	*reply = version.V
	return nil
}
