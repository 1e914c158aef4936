// compileinfoprint is imported for the side effect of printing the compileinfo
// to os.StdErr when a runpheno command starts.
package compileinfoprint

import "github.com/carbocation/runpheno/compileinfo"

func init() {
	compileinfo.PrintToStdErr()
}
