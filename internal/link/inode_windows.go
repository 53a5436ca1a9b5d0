//go:build windows

package link

// sameInode has no cheap portable check via os.FileInfo on Windows
// without opening both files through the Win32 file-index API (which
// the teacher gates behind its own lchmod/linkinfo_windows.go build
// files); a hardlink that os.Link reported success for is trusted.
func sameInode(a, b string) bool {
	return true
}
