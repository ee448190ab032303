package utils

import (
	"crypto/md5"
	"fmt"
	"io"
	"os"
	"time"
)

// FileHash returns the MD5 digest of a file's contents as a hex string.
func FileHash(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hash := md5.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}

	return fmt.Sprintf("%x", hash.Sum(nil)), nil
}

// CopyFile copies src to dst as a whole, overwriting dst if it exists,
// and returns the number of bytes written. The destination keeps the
// source's mode and modification time: mtime-based change detection
// relies on an up-to-date copy comparing equal on the next pass.
func CopyFile(src, dst string) (int64, error) {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return 0, err
	}

	if err := EnsureParent(dst); err != nil {
		return 0, err
	}

	srcFile, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer srcFile.Close()

	dstFile, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, srcInfo.Mode().Perm())
	if err != nil {
		return 0, err
	}

	written, err := io.Copy(dstFile, srcFile)
	if closeErr := dstFile.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return written, err
	}

	if err := os.Chmod(dst, srcInfo.Mode().Perm()); err != nil {
		return written, err
	}
	return written, os.Chtimes(dst, time.Now(), srcInfo.ModTime())
}
