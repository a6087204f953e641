package plugin

import (
	"bufio"
	"os"
	"path/filepath"
)

// FS is the synchronous filesystem-helper surface of spec.md §4.4: a
// plugin's own I/O is never asynchronous, unlike HTTP fetch.
type FS struct{}

// Read returns a file's full contents.
func (FS) Read(path string) ([]byte, error) { return os.ReadFile(path) }

// Write overwrites (or creates) a file with data.
func (FS) Write(path string, data []byte) error { return os.WriteFile(path, data, 0644) }

// Stat reports a path's file info.
func (FS) Stat(path string) (os.FileInfo, error) { return os.Stat(path) }

// Dirname returns path's directory component.
func (FS) Dirname(path string) string { return filepath.Dir(path) }

// Basename returns path's file-name component.
func (FS) Basename(path string) string { return filepath.Base(path) }

// Lines iterates a text file line by line, without loading it whole.
func (FS) Lines(path string, fn func(line string) bool) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if !fn(scanner.Text()) {
			break
		}
	}
	return scanner.Err()
}
