package config

import (
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl2/gohcl"
	"github.com/hashicorp/hcl2/hcl"
	"github.com/hashicorp/hcl2/hclpack"
	"golang.org/x/crypto/ssh/terminal"
)

type file struct {
	name  string
	bytes []byte
	body  *hclpack.Body
}

// A Loader loads the host configuration from an .hcl file on disk.
//
// The zero value is ready to load files.
type Loader struct {
	files map[string]*file
}

// Load reads and decodes the configuration file at path. Defaults are
// applied to omitted attributes.
func (l *Loader) Load(path string) (*Root, hcl.Diagnostics) {
	f, diags := l.loadFile(path)
	if diags.HasErrors() {
		return nil, diags
	}

	root := &Root{}
	if diags := gohcl.DecodeBody(f.body, nil, root); diags.HasErrors() {
		return nil, diags
	}
	root.applyDefaults()
	return root, nil
}

// WriteDiagnostics writes diagnostics as a human readable string to w. It
// should only be used for diagnostics that originate from files loaded by
// Loader.
//
// If a TTY is attached, the output will be colorized and wrap at the terminal
// width. Otherwise, wrap will occur at 78 characters and output won't contain
// ANSI escape characters.
func (l *Loader) WriteDiagnostics(w io.Writer, diags hcl.Diagnostics) {
	files := make(map[string]*hcl.File, len(l.files))
	for name, f := range l.files {
		files[name] = &hcl.File{Bytes: f.bytes, Body: f.body}
	}
	width, _, err := terminal.GetSize(0)
	if err != nil {
		width = 78
	}
	dw := hcl.NewDiagnosticTextWriter(w, files, uint(width), terminal.IsTerminal(0))
	if err := dw.WriteDiagnostics(diags); err != nil {
		fmt.Fprintln(w, err)
	}
}

// FindFile locates the configuration file by searching dir and its parent
// directories for a file named cloudleakage.hcl. The returned string is the
// absolute path to the file.
//
// An error is returned if the dir cannot be opened. An empty string is
// returned if no file was found.
func FindFile(dir string) (string, error) {
	if _, err := os.Stat(dir); err != nil {
		return "", err
	}
	name := filepath.Join(dir, DefaultFilename)
	stat, err := os.Stat(name)
	if err == nil && !stat.IsDir() {
		// Match
		abs, err := filepath.Abs(name)
		if err != nil {
			return "", err
		}
		return abs, nil
	}

	parent := filepath.Dir(dir)
	if parent == dir || parent[len(parent)-1] == filepath.Separator {
		return "", nil
	}

	return FindFile(parent)
}

func (l *Loader) loadFile(filename string) (*file, hcl.Diagnostics) {
	if l.files == nil {
		l.files = make(map[string]*file)
	}
	if f, ok := l.files[filename]; ok {
		return f, nil
	}

	src, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, diagErr(err)
	}

	// Add placeholder file, so diagnostics can match the source if packing the
	// file fails.
	l.files[filename] = &file{bytes: src}

	body, diags := hclpack.PackNativeFile(src, filename, hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return nil, diags
	}

	f := &file{
		name:  filename,
		bytes: src,
		body:  body,
	}
	l.files[filename] = f

	return f, nil
}

// diagErr converts a native error to diagnostics
func diagErr(err error) hcl.Diagnostics {
	return hcl.Diagnostics{{Severity: hcl.DiagError, Summary: err.Error()}}
}
