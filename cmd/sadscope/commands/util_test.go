package commands

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toitware/ubjson"
)

func testWaveform() *Waveform {
	return &Waveform{
		Identity: "SD,SadOscilloscope,0,0.01-0.0-0.0",
		Preamble: "0,2,1000,1,1e-6,-3.e-03,0,1.0,0,0",
		Samples:  []int64{0, 1, 15},
	}
}

func Test_newEncoder_short(t *testing.T) {
	var out bytes.Buffer
	enc, err := newEncoder("short", &out)
	require.NoError(t, err)
	require.NoError(t, enc.Encode(testWaveform()))
	assert.Equal(t, "0\n1\n15\n", out.String())

	assert.Error(t, enc.Encode(Settings{}))
}

func Test_newEncoder_json(t *testing.T) {
	var out bytes.Buffer
	enc, err := newEncoder("JSON", &out)
	require.NoError(t, err)
	require.NoError(t, enc.Encode(testWaveform()))
	assert.Contains(t, out.String(), `"identity": "SD,SadOscilloscope,0,0.01-0.0-0.0"`)
	assert.Contains(t, out.String(), `"samples": [`)
}

func Test_newEncoder_yaml(t *testing.T) {
	var out bytes.Buffer
	enc, err := newEncoder("yaml", &out)
	require.NoError(t, err)
	require.NoError(t, enc.Encode(testWaveform()))
	assert.Contains(t, out.String(), "preamble: 0,2,1000,1,1e-6,-3.e-03,0,1.0,0,0\n")
	assert.Contains(t, out.String(), "- 15\n")
}

func Test_newEncoder_ubjson(t *testing.T) {
	var out bytes.Buffer
	enc, err := newEncoder("ubjson", &out)
	require.NoError(t, err)
	require.NoError(t, enc.Encode(testWaveform()))

	var decoded map[string]interface{}
	require.NoError(t, ubjson.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, "SD,SadOscilloscope,0,0.01-0.0-0.0", decoded["identity"])
	assert.Len(t, decoded["samples"], 3)
}

func Test_newEncoder_unknown(t *testing.T) {
	_, err := newEncoder("xml", &bytes.Buffer{})
	assert.ErrorContains(t, err, "'xml' was not recognized")
}
