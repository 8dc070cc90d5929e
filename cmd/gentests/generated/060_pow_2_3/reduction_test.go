package gentests

import _ "embed"
import "testing"
import "github.com/vic/skjnet/cmd/gentests/helper"

//go:embed input.skj
var input string

//go:embed output.skj
var output string

func Test_060_pow_2_3_Reduction(t *testing.T) {
	gentests.CheckReduction(t, "060_pow_2_3", input, output)
}
