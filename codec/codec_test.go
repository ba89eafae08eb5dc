package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type samplePayload struct {
	Name  string  `json:"name"`
	Count int32   `json:"count"`
	Ratio float64 `json:"ratio"`
}

func TestDefaultCodecRoundTrip(t *testing.T) {
	in := &samplePayload{Name: "room", Count: 4, Ratio: 0.5}
	data, err := Encode(in, nil)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	out := &samplePayload{}
	require.NoError(t, Decode(out, data))
	assert.Equal(t, in, out)
}

func TestDefaultCodecAppends(t *testing.T) {
	prefix := []byte("head:")
	data, err := Encode(&samplePayload{Name: "x"}, prefix)
	require.NoError(t, err)
	assert.Equal(t, "head:", string(data[:5]))
}

func TestDecodeGarbage(t *testing.T) {
	out := &samplePayload{}
	assert.Error(t, Decode(out, []byte("{not json")))
}
