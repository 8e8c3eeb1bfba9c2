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

import "io"
import "os"
import "fmt"
import "strings"
import "github.com/ulikunitz/xz"
import "github.com/pierrec/lz4/v4"

// OpenScript opens a source file. Files ending in .xz or .lz4 are
// decompressed on the fly.
func OpenScript(filename string) (io.ReadCloser, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	switch {
	case strings.HasSuffix(filename, ".xz"):
		r, err := xz.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("%s: %w", filename, err)
		}
		return readCloser{r, f}, nil
	case strings.HasSuffix(filename, ".lz4"):
		return readCloser{lz4.NewReader(f), f}, nil
	}
	return f, nil
}

// ReadScript returns the whole (decompressed) content of a source file.
func ReadScript(filename string) (string, error) {
	r, err := OpenScript(filename)
	if err != nil {
		return "", err
	}
	defer r.Close()
	b, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", filename, err)
	}
	return string(b), nil
}

type readCloser struct {
	io.Reader
	io.Closer
}
