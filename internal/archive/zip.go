// Package archive implements the streaming ZIP codec Syncx uses to pack a
// client directory for upload and to unpack a landed archive on the worker.
// Both directions move a fixed-size buffer rather than holding whole files
// resident, so large corpora stay bounded in memory.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// bufSize is the fixed streaming buffer used for both pack and unpack. 8 KiB
// balances syscall overhead against per-file memory footprint.
const bufSize = 8 * 1024

// Pack writes a DEFLATE-compressed ZIP containing each named file at its
// basename into w. Each file is copied with a fixed-size buffer so the
// archive's total size never dictates the process's resident memory.
func Pack(w io.Writer, filePaths []string) error {
	zw := zip.NewWriter(w)

	for _, path := range filePaths {
		if err := packOne(zw, path); err != nil {
			zw.Close()
			return err
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("archive: finalize zip: %w", err)
	}
	return nil
}

func packOne(zw *zip.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("archive: open %s: %w", path, err)
	}
	defer f.Close()

	entry, err := zw.Create(filepath.Base(path))
	if err != nil {
		return fmt.Errorf("archive: create entry %s: %w", path, err)
	}

	buf := make([]byte, bufSize)
	if _, err := io.CopyBuffer(entry, f, buf); err != nil {
		return fmt.Errorf("archive: write entry %s: %w", path, err)
	}
	return nil
}

// Unpack restores every member of a ZIP archive (read from r, sized size
// bytes) into dir, recreating each file under its basename. Entries are
// streamed through a fixed-size buffer rather than read fully into memory.
func Unpack(r io.ReaderAt, size int64, dir string) ([]string, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("archive: open zip: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("archive: create dest dir: %w", err)
	}

	names := make([]string, 0, len(zr.File))
	buf := make([]byte, bufSize)
	for _, zf := range zr.File {
		if zf.FileInfo().IsDir() {
			continue
		}
		if err := unpackOne(zf, dir, buf); err != nil {
			return nil, err
		}
		names = append(names, filepath.Base(zf.Name))
	}
	return names, nil
}

func unpackOne(zf *zip.File, dir string, buf []byte) error {
	rc, err := zf.Open()
	if err != nil {
		return fmt.Errorf("archive: open member %s: %w", zf.Name, err)
	}
	defer rc.Close()

	dest := filepath.Join(dir, filepath.Base(zf.Name))
	out, err := os.OpenFile(dest, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("archive: create member %s: %w", dest, err)
	}
	defer out.Close()

	if _, err := io.CopyBuffer(out, rc, buf); err != nil {
		return fmt.Errorf("archive: write member %s: %w", dest, err)
	}
	return nil
}

// UnpackFile is a convenience wrapper over Unpack for a zip already on disk.
func UnpackFile(zipPath, dir string) ([]string, error) {
	f, err := os.Open(zipPath)
	if err != nil {
		return nil, fmt.Errorf("archive: open %s: %w", zipPath, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("archive: stat %s: %w", zipPath, err)
	}
	return Unpack(f, info.Size(), dir)
}
