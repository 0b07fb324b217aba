package scripts

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// IsScriptsAsset reports whether a release asset name looks like the
// example-scripts archive.
func IsScriptsAsset(name string) bool {
	if !strings.HasSuffix(name, ".tar.gz") && !strings.HasSuffix(name, ".tgz") {
		return false
	}
	lower := strings.ToLower(name)
	return strings.Contains(lower, "example") || strings.Contains(lower, "script")
}

// IsScriptMember reports whether an archive member should be extracted:
// a plain .py file that is not hidden.
func IsScriptMember(name string) bool {
	base := filepath.Base(name)
	return strings.HasSuffix(base, ".py") && !strings.HasPrefix(base, ".")
}

// ExtractScripts reads a gzipped tar stream and writes each Python
// script member flat into destDir. Returns the written paths in archive
// order.
func ExtractScripts(r io.Reader, destDir string) ([]string, error) {
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return nil, fmt.Errorf("creating scripts dir %s: %w", destDir, err)
	}

	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("reading gzip stream: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	var files []string
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading archive: %w", err)
		}
		if hdr.Typeflag != tar.TypeReg || !IsScriptMember(hdr.Name) {
			continue
		}

		dest := filepath.Join(destDir, filepath.Base(hdr.Name))
		f, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
		if err != nil {
			return nil, fmt.Errorf("creating %s: %w", dest, err)
		}
		if _, err := io.Copy(f, tr); err != nil {
			f.Close()
			return nil, fmt.Errorf("writing %s: %w", dest, err)
		}
		f.Close()
		files = append(files, dest)
	}
	return files, nil
}
