package rexec

// Params configures a single execution. The zero value runs the command
// locally as the current user without input.
type Params struct {
	// Host is the machine to run on. Empty, "localhost" and the local
	// short host name run the command locally.
	Host string
	// User is the user to run as. Empty and the current login do not
	// elevate, "root" elevates with "sudo -n" and any other user is
	// switched to with "sudo -inu".
	User string
	// Stdin is fed to the command as standard input when non-empty.
	Stdin string
	// Dir requests a directory instead of a file from WithTemporary.
	Dir bool

	// Message replaces the default message of errors returned by MustRun.
	Message string
	// Kind replaces the kind of errors returned by MustRun for commands
	// that exit non-zero. Connection errors keep their kind.
	Kind Kind

	// Permissions, Owner and Group are passed to install(1).
	Permissions string
	Owner       string
	Group       string
	// Suffix is the backup suffix used by Install and ReplaceDirectory.
	Suffix string
}

// Result is the outcome of one execution.
type Result struct {
	// Okay is true if and only if Status is zero.
	Okay   bool
	Status int
	Stdout string
	Stderr string
}

func newResult(status int, stdout, stderr string) *Result {
	return &Result{
		Okay:   status == 0,
		Status: status,
		Stdout: stdout,
		Stderr: stderr,
	}
}
