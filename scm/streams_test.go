/*
Copyright (C) 2026  LVM Contributors

	This program is free software: you can redistribute it and/or modify
	it under the terms of the GNU General Public License as published by
	the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.

	This program is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU General Public License for more details.

	You should have received a copy of the GNU General Public License
	along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/
package scm

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
)

const script = "(define (twice x) (* 2 x)) (twice 21)"

func writeCompressed(t *testing.T, filename string, compress func(io.Writer) (io.WriteCloser, error)) {
	t.Helper()
	f, err := os.Create(filename)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	w, err := compress(f)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := io.WriteString(w, script); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestReadScript(t *testing.T) {
	dir := t.TempDir()
	plain := filepath.Join(dir, "plain.scm")
	if err := os.WriteFile(plain, []byte(script), 0o644); err != nil {
		t.Fatal(err)
	}
	writeCompressed(t, filepath.Join(dir, "packed.scm.xz"), func(w io.Writer) (io.WriteCloser, error) {
		return xz.NewWriter(w)
	})
	writeCompressed(t, filepath.Join(dir, "packed.scm.lz4"), func(w io.Writer) (io.WriteCloser, error) {
		return lz4.NewWriter(w), nil
	})

	for _, name := range []string{"plain.scm", "packed.scm.xz", "packed.scm.lz4"} {
		content, err := ReadScript(filepath.Join(dir, name))
		if err != nil {
			t.Errorf("%s: %v", name, err)
			continue
		}
		if content != script {
			t.Errorf("%s: read %q", name, content)
			continue
		}
		in, _ := newInterpreter(t)
		if got := run(t, in, content); got != "42" {
			t.Errorf("%s evaluates to %s", name, got)
		}
	}

	if _, err := ReadScript(filepath.Join(dir, "missing.scm")); err == nil {
		t.Errorf("missing file read without error")
	}
	os.WriteFile(filepath.Join(dir, "broken.xz"), []byte("not xz"), 0o644)
	if _, err := ReadScript(filepath.Join(dir, "broken.xz")); err == nil {
		t.Errorf("broken xz file read without error")
	}
}
