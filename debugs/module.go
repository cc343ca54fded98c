// Package debugs exposes interpreter state to an embedded Starlark
// session for inspection.
package debugs

import "github.com/reusee/dscope"

type Module struct {
	dscope.Module
}
