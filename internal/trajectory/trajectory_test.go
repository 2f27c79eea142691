package trajectory

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/ljsim/internal/box"
	"github.com/san-kum/ljsim/internal/dynamo"
)

func TestWriteFrameLayout(t *testing.T) {
	b, err := box.New(10, 1, 2)
	require.NoError(t, err)
	b.Coordinates[0] = dynamo.Vec3{1, -2.5, 0.123456}
	b.Coordinates[1] = dynamo.Vec3{-4.99999, 0, 3}

	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteFrame(b))

	want := "2\n\n" +
		"Ar      1.00000     -2.50000      0.12346   \n" +
		"Ar     -4.99999      0.00000      3.00000   \n"
	assert.Equal(t, want, buf.String())
	assert.Equal(t, 1, w.Frames())
}

func TestWriterLabel(t *testing.T) {
	b, err := box.New(10, 1, 1)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, NewWriter(&buf, WithLabel("Kr")).WriteFrame(b))
	assert.True(t, strings.HasPrefix(strings.Split(buf.String(), "\n")[2], "Kr   "))

	buf.Reset()
	require.NoError(t, NewWriter(&buf, WithLabel("")).WriteFrame(b))
	assert.True(t, strings.HasPrefix(strings.Split(buf.String(), "\n")[2], "Ar   "))
}

func TestFramesRoundTrip(t *testing.T) {
	b, err := box.New(6, 1, 8)
	require.NoError(t, err)
	b.PlaceLattice()

	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteFrame(b))
	b.Coordinates[3] = dynamo.Vec3{0.5, 0.25, -0.125}
	require.NoError(t, w.WriteFrame(b))

	frames, err := ReadFrames(&buf)
	require.NoError(t, err)
	require.Len(t, frames, 2)
	for i, r := range frames[1] {
		for k := 0; k < 3; k++ {
			assert.InDelta(t, b.Coordinates[i][k], r[k], 5e-6)
		}
	}
	assert.NotEqual(t, frames[0][3], frames[1][3])
}

func TestReadFramesErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"bad header", "two\n\n"},
		{"truncated", "2\n\nAr 0 0 0\n"},
		{"short line", "1\n\nAr 0 0\n"},
		{"bad float", "1\n\nAr 0 x 0\n"},
		{"missing comment", "1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadFrames(strings.NewReader(tt.input))
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestReadConfiguration(t *testing.T) {
	input := `3

   2   1.0   2.0   3.0
   1  -1.5   0.0   0.5
   3   4.0  -4.0   0.0
`
	coords, err := ReadConfiguration(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, coords, 3)
	assert.Equal(t, dynamo.Vec3{-1.5, 0, 0.5}, coords[0])
	assert.Equal(t, dynamo.Vec3{1, 2, 3}, coords[1])
	assert.Equal(t, dynamo.Vec3{4, -4, 0}, coords[2])
}

func TestReadConfigurationErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"bad count", "x\n"},
		{"negative count", "-3\n"},
		{"index zero", "2\n0 1 1 1\n"},
		{"index past count", "2\n3 1 1 1\n"},
		{"no count", "1 0 0 0\n"},
		{"too few fields", "2\n1 0 0\n"},
		{"bad coordinate", "1\n1 0 nan? 0\n"},
		{"missing rows", "3\n1 0 0 0\n3 1 1 1\n"},
		{"huge count", "1000000000000\n1 0 0 0\n"},
		{"duplicate index", "2\n1 0 0 0\n1 1 1 1\n"},
		{"second count", "1\n1 0 0 0\n1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadConfiguration(strings.NewReader(tt.input))
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}
