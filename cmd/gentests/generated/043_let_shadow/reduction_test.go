package gentests

import _ "embed"
import "testing"
import "github.com/vic/skjnet/cmd/gentests/helper"

//go:embed input.skj
var input string

//go:embed output.skj
var output string

func Test_043_let_shadow_Reduction(t *testing.T) {
	gentests.CheckReduction(t, "043_let_shadow", input, output)
}
