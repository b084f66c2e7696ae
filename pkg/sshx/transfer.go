package sshx

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/sftp"
)

// Upload copies the local file at src to dst on the remote host. An
// existing remote file is truncated. The permission bits of src are
// carried over.
func Upload(sc *sftp.Client, src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := sc.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC)
	if err != nil {
		return fmt.Errorf("open remote file %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("upload %s: %w", dst, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close remote file %s: %w", dst, err)
	}

	return sc.Chmod(dst, info.Mode().Perm())
}

// Download copies the remote file at src to the local path dst.
func Download(sc *sftp.Client, src, dst string) error {
	in, err := sc.Open(src)
	if err != nil {
		return fmt.Errorf("open remote file %s: %w", src, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("download %s: %w", src, err)
	}

	return out.Close()
}
