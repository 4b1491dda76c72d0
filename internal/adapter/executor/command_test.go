package executor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandCommand(t *testing.T) {
	vars := commandVars{Src: "/tmp/a b/main.cpp", Bin: "/tmp/a b/main", Dir: "/tmp/a b"}

	argv, err := expandCommand("g++ -O2 -o {bin} {src}", vars)
	require.NoError(t, err)
	assert.Equal(t, []string{"g++", "-O2", "-o", "/tmp/a b/main", "/tmp/a b/main.cpp"}, argv)

	argv, err = expandCommand(`sh -c "echo {dir}"`, vars)
	require.NoError(t, err)
	assert.Equal(t, []string{"sh", "-c", "echo /tmp/a b"}, argv)

	_, err = expandCommand("   ", vars)
	assert.Error(t, err)
}

func TestShellQuote(t *testing.T) {
	assert.Equal(t, `'java' '-cp' '/workspace' 'it'\''s'`, shellQuote([]string{"java", "-cp", "/workspace", "it's"}))
}

func TestLimitedBuffer(t *testing.T) {
	b := newLimitedBuffer(5)
	n, err := b.Write([]byte("abc"))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.False(t, b.Overflowed())

	n, err = b.Write([]byte("defg"))
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, "abcde", b.String())
	assert.True(t, b.Overflowed())

	unlimited := newLimitedBuffer(0)
	_, _ = unlimited.Write([]byte("anything at all"))
	assert.False(t, unlimited.Overflowed())
}
