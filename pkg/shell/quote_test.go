package shell

import (
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuote(t *testing.T) {
	tests := []struct {
		name string
		arg  string
		want string
	}{
		{name: "safe word", arg: "id", want: "id"},
		{name: "safe path", arg: "/usr/local/bin/some-tool_v1.2", want: "/usr/local/bin/some-tool_v1.2"},
		{name: "empty string", arg: "", want: `""`},
		{name: "single quotes", arg: "echo 'hello world'", want: `echo\ \'hello\ world\'`},
		{name: "double quotes", arg: `echo "hello world"`, want: `echo\ \"hello\ world\"`},
		{name: "dollar sign", arg: "echo $HOSTNAME", want: `echo\ \$HOSTNAME`},
		{name: "equals sign", arg: "ConnectTimeout=3", want: `ConnectTimeout\=3`},
		{name: "newline", arg: "a\nb", want: "a\"\n\"b"},
		{name: "multibyte", arg: "café", want: "caf\\é"},
		{name: "invalid utf-8", arg: "a\xffb", want: "a\\\xffb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Quote(tt.arg))
		})
	}
}

func TestQuote_EmptyIsNotStable(t *testing.T) {
	once := Quote("")
	assert.Equal(t, `""`, once)
	assert.Equal(t, `\"\"`, Quote(once))
}

func TestQuote_RoundTrip(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	args := []string{
		"hello world",
		"it's",
		`say "hi"`,
		"$HOME; rm -rf /",
		"a|b&c>d<e",
		"`uname`",
		"tab\tseparated",
		"two\nlines",
		"back\\slash",
		"glob*?[x]",
		"~user",
		"#comment",
		"a\xffb",
		"caf\xc3",
		"",
	}

	for _, arg := range args {
		t.Run(arg, func(t *testing.T) {
			out, err := exec.Command("sh", "-c", "printf %s "+Quote(arg)).Output()
			require.NoError(t, err)
			assert.Equal(t, arg, string(out))
		})
	}
}

func TestJoin(t *testing.T) {
	assert.Equal(t, `test -e /tmp/a\ b`, Join("test", "-e", "/tmp/a b"))
	assert.Equal(t, "", Join())
}
