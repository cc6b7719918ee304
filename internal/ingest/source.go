package ingest

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/yanun0323/errors"
)

// Stdin names the standard input as a source path.
const Stdin = "-"

const gzipSuffix = ".gz"

// Open returns the byte stream behind path. An empty path or "-" reads
// standard input, a ".gz" file is decompressed, and a directory yields its
// regular files concatenated in name order.
func Open(path string) (io.ReadCloser, error) {
	if path == "" || path == Stdin {
		return io.NopCloser(os.Stdin), nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrapf(err, "stat %s", path)
	}
	if info.IsDir() {
		files, err := collectFiles(path)
		if err != nil {
			return nil, err
		}
		return &multiFile{files: files}, nil
	}
	return openFile(path)
}

func openFile(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	if !strings.HasSuffix(strings.ToLower(path), gzipSuffix) {
		return f, nil
	}

	zr, err := gzip.NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, errors.Wrapf(err, "gzip %s", path)
	}
	return &gzipFile{Reader: zr, file: f}, nil
}

type gzipFile struct {
	*gzip.Reader
	file *os.File
}

func (g *gzipFile) Close() error {
	zerr := g.Reader.Close()
	if err := g.file.Close(); err != nil {
		return err
	}
	return zerr
}

// collectFiles lists the regular, non-hidden files of dir in name order.
func collectFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "read dir %s", dir)
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// multiFile reads several files back to back, opening each one lazily.
// A newline is inserted between files that do not end with one.
type multiFile struct {
	files   []string
	current io.ReadCloser
	last    byte
	pending bool
}

func (m *multiFile) Read(p []byte) (int, error) {
	for {
		if m.pending {
			if len(p) == 0 {
				return 0, nil
			}
			m.pending = false
			m.last = '\n'
			p[0] = '\n'
			return 1, nil
		}
		if m.current == nil {
			if len(m.files) == 0 {
				return 0, io.EOF
			}
			rc, err := openFile(m.files[0])
			if err != nil {
				return 0, err
			}
			m.files = m.files[1:]
			m.current = rc
		}

		n, err := m.current.Read(p)
		if n > 0 {
			m.last = p[n-1]
		}
		if err == io.EOF {
			cerr := m.current.Close()
			m.current = nil
			if cerr != nil {
				return n, cerr
			}
			if m.last != '\n' && m.last != 0 {
				m.pending = true
			}
			if n > 0 {
				return n, nil
			}
			continue
		}
		return n, err
	}
}

func (m *multiFile) Close() error {
	m.files = nil
	if m.current == nil {
		return nil
	}
	err := m.current.Close()
	m.current = nil
	return err
}
