// Package lispconfigs resolves interpreter settings from command line flags
// and CUE config files, in that order of precedence.
package lispconfigs

import "github.com/reusee/dscope"

type Module struct {
	dscope.Module
}
