package shell

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const sshPrefix = `ssh -T -q -o PasswordAuthentication\=no -o StrictHostKeyChecking\=no -o ConnectTimeout\=3 `

func newTestRewriter() *Rewriter {
	return &Rewriter{
		Hostname:       "myhost",
		Login:          "alice",
		ConnectTimeout: DefaultConnectTimeout,
	}
}

func TestHostname(t *testing.T) {
	name, err := os.Hostname()
	if err != nil {
		t.Skip("hostname not available")
	}
	short, _, _ := strings.Cut(name, ".")
	assert.Equal(t, short, Hostname())
	assert.NotContains(t, Hostname(), ".")
}

func TestRewriter_IsLocal(t *testing.T) {
	r := newTestRewriter()

	assert.True(t, r.IsLocal(""))
	assert.True(t, r.IsLocal("localhost"))
	assert.True(t, r.IsLocal("myhost"))
	assert.False(t, r.IsLocal("other"))
	assert.False(t, r.IsLocal("myhost.example.com"))
}

func TestIsLocalhost(t *testing.T) {
	assert.True(t, IsLocalhost(""))
	assert.True(t, IsLocalhost("localhost"))
	if Hostname() != "" {
		assert.True(t, IsLocalhost(Hostname()))
	}
	assert.False(t, IsLocalhost("other"))
}

func TestRewriter_ChangeUser(t *testing.T) {
	r := newTestRewriter()

	tests := []struct {
		name string
		user string
		want string
	}{
		{name: "no user", user: "", want: "id"},
		{name: "login user", user: "alice", want: "id"},
		{name: "root", user: "root", want: "sudo -n id"},
		{name: "other user", user: "other", want: "sudo -inu other id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.ChangeUser("id", tt.user))
		})
	}
}

func TestChangeUser_CurrentLogin(t *testing.T) {
	assert.Equal(t, "id", ChangeUser("id", Login()))
	if Login() != Root {
		assert.Equal(t, "sudo -n id", ChangeUser("id", Root))
	}
}

func TestRewriter_ChangeHost(t *testing.T) {
	r := newTestRewriter()

	tests := []struct {
		name string
		host string
		want string
	}{
		{name: "no host", host: "", want: "hostname"},
		{name: "localhost", host: "localhost", want: "hostname"},
		{name: "this host", host: "myhost", want: "hostname"},
		{name: "other host", host: "other", want: sshPrefix + "other hostname"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.ChangeHost("hostname", tt.host))
		})
	}
}

func TestChangeHost_Self(t *testing.T) {
	assert.Equal(t, "uptime", ChangeHost("uptime", Hostname()))
	assert.Equal(t, sshPrefix+"otherhost uptime", ChangeHost("uptime", "otherhost"))
}

func TestRewriter_Rewrite(t *testing.T) {
	r := newTestRewriter()

	tests := []struct {
		name string
		user string
		host string
		want string
	}{
		{name: "no user no host", want: "hostname"},
		{name: "other user no host", user: "bozo", want: "sudo -inu bozo hostname"},
		{name: "no user other host", host: "other", want: sshPrefix + "other hostname"},
		{
			name: "other user other host",
			user: "bozo",
			host: "other",
			want: sshPrefix + `other sudo\ -inu\ bozo\ hostname`,
		},
		{
			name: "root on other host",
			user: "root",
			host: "other",
			want: sshPrefix + `other sudo\ -n\ hostname`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Rewrite("hostname", tt.user, tt.host))
		})
	}
}

func TestRewriter_ConnectTimeout(t *testing.T) {
	r := newTestRewriter()

	r.ConnectTimeout = 10 * time.Second
	assert.Contains(t, r.ChangeHost("true", "other"), `ConnectTimeout\=10 `)

	r.ConnectTimeout = 0
	assert.Contains(t, r.ChangeHost("true", "other"), `ConnectTimeout\=1 `)
}

func TestSCPArgs(t *testing.T) {
	assert.Equal(t,
		[]string{"scp", "-B", "-q", "-o", "StrictHostKeyChecking=no", "-o", "ConnectTimeout=3"},
		SCPArgs(DefaultConnectTimeout),
	)
}
