package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vic/skjnet/pkg/codec"
)

func TestJSONValues(t *testing.T) {
	tests := []struct {
		ty   string
		json string
		want any
	}{
		{"unit", `{}`, struct{}{}},
		{"num", `3`, 3},
		{"byte", `255`, byte(255)},
		{"bytes", `"hi"`, []byte("hi")},
		{"(prod bool num)", `[true, 0]`, codec.Tuple{Fst: true, Snd: 0}},
		{"(sum bool num)", `{"right": 2}`, codec.Either{Right: true, Value: 2}},
		{"(maybe num)", `null`, codec.Option{}},
		{"(list (maybe bool))", `[false, null]`, []any{
			codec.Option{Some: true, Value: false},
			codec.Option{},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.ty, func(t *testing.T) {
			ty, err := codec.ParseType(tt.ty)
			require.NoError(t, err)
			var raw any
			require.NoError(t, json.Unmarshal([]byte(tt.json), &raw))

			v, err := fromJSON(ty, raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, v)

			_, err = codec.Encode(ty, v)
			require.NoError(t, err)

			out, err := json.Marshal(toJSON(ty, v))
			require.NoError(t, err)
			assert.JSONEq(t, tt.json, string(out))
		})
	}
}

func TestJSONMismatch(t *testing.T) {
	for _, tt := range []struct{ ty, json string }{
		{"num", `1.5`},
		{"byte", `256`},
		{"bytes", `[1]`},
		{"(prod bool num)", `[true]`},
		{"(sum bool num)", `{"middle": 1}`},
		{"(list num)", `{}`},
	} {
		ty, err := codec.ParseType(tt.ty)
		require.NoError(t, err)
		var raw any
		require.NoError(t, json.Unmarshal([]byte(tt.json), &raw))
		_, err = fromJSON(ty, raw)
		assert.Error(t, err, "%s %s", tt.ty, tt.json)
	}
}
