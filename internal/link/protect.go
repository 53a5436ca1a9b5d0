package link

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"

	"github.com/mribeirodantas/dvc/internal/dvcerr"
)

// Protect chmods p to 0o444 (spec §4.3 "Protection"). A read-only
// filesystem (EROFS) is silently tolerated as a no-op. A permission
// rejection (EACCES/EPERM) is tolerated iff the current mode already
// equals 0o444 — in a shared cache another user may already have
// protected the file — and is otherwise a fatal PermissionError.
func Protect(p string) error {
	if err := os.Chmod(p, ProtectedMode); err != nil {
		return classifyChmodErr(p, "protect", err)
	}
	return nil
}

func classifyChmodErr(p, op string, err error) error {
	if errors.Is(err, syscall.EROFS) {
		return nil
	}
	if errors.Is(err, syscall.EACCES) || errors.Is(err, syscall.EPERM) {
		info, statErr := os.Stat(p)
		if statErr == nil && info.Mode().Perm() == ProtectedMode {
			return nil
		}
		return &dvcerr.PermissionError{Path: p, Op: op, Err: err}
	}
	return dvcerr.Wrap(err, "%s %s", op, p)
}

// Unprotect makes p safely writable without disturbing other
// consumers of a shared cache. For a regular file, content is copied
// to a temporary sibling and renamed into place — a single atomic
// rename — so a concurrent reader with p already open never observes
// a partial file; an os.Rename over an existing name performs the
// "remove original, then place copy" spec §4.3 describes as one
// indivisible syscall. For a directory, Unprotect recurses into every
// contained regular file.
func Unprotect(p string, modes ModeMatrix) error {
	info, err := os.Lstat(p)
	if err != nil {
		return dvcerr.Wrap(err, "stat %s", p)
	}
	if info.IsDir() {
		return unprotectDir(p, modes)
	}
	return unprotectFile(p, modes)
}

func unprotectFile(p string, modes ModeMatrix) error {
	tmp := filepath.Join(filepath.Dir(p), "."+uuid.NewString())
	if err := copyFile(p, tmp, modes.File); err != nil {
		_ = os.Remove(tmp)
		return dvcerr.Wrap(err, "copy %s for unprotect", p)
	}
	if err := os.Rename(tmp, p); err != nil {
		_ = os.Remove(tmp)
		return dvcerr.Wrap(err, "rename unprotected copy over %s", p)
	}
	if err := os.Chmod(p, modes.File); err != nil {
		return classifyChmodErr(p, "unprotect", err)
	}
	return nil
}

func unprotectDir(dir string, modes ModeMatrix) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return dvcerr.Wrap(err, "read dir %s", dir)
	}
	for _, e := range entries {
		full := filepath.Join(dir, e.Name())
		if e.IsDir() {
			if err := unprotectDir(full, modes); err != nil {
				return err
			}
			continue
		}
		if e.Type()&os.ModeSymlink != 0 {
			continue
		}
		if err := unprotectFile(full, modes); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
