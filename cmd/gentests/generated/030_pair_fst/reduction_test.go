package gentests

import _ "embed"
import "testing"
import "github.com/vic/skjnet/cmd/gentests/helper"

//go:embed input.skj
var input string

//go:embed output.skj
var output string

func Test_030_pair_fst_Reduction(t *testing.T) {
	gentests.CheckReduction(t, "030_pair_fst", input, output)
}
