package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExternalIDUnmarshal(t *testing.T) {
	cases := map[string]ExternalID{
		`"INV-9"`: "INV-9",
		`12214`:   "12214",
		`null`:    "",
	}
	for in, want := range cases {
		var got ExternalID
		require.NoError(t, json.Unmarshal([]byte(in), &got), in)
		assert.Equal(t, want, got, in)
	}

	var bad ExternalID
	assert.Error(t, json.Unmarshal([]byte(`true`), &bad))
}
