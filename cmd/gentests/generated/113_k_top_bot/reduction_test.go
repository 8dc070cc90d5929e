package gentests

import _ "embed"
import "testing"
import "github.com/vic/skjnet/cmd/gentests/helper"

//go:embed input.skj
var input string

//go:embed output.skj
var output string

func Test_113_k_top_bot_Reduction(t *testing.T) {
	gentests.CheckReduction(t, "113_k_top_bot", input, output)
}
