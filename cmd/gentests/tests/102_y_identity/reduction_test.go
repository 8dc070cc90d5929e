package gentests

import _ "embed"
import "testing"
import "github.com/vic/skjnet/cmd/gentests/helper"

//go:embed input.skj
var input string

func Test_102_y_identity_Divergence(t *testing.T) {
	gentests.CheckDivergence(t, "102_y_identity", input)
}
