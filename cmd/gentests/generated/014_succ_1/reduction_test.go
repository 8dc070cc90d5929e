package gentests

import _ "embed"
import "testing"
import "github.com/vic/skjnet/cmd/gentests/helper"

//go:embed input.skj
var input string

//go:embed output.skj
var output string

func Test_014_succ_1_Reduction(t *testing.T) {
	gentests.CheckReduction(t, "014_succ_1", input, output)
}
