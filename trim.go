/*
Copyright © 2020 the geodata authors.
This file is part of geodata.

geodata is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

geodata is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with geodata.  If not, see <http://www.gnu.org/licenses/>.
*/

package geodata

import (
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/ctessum/cdf"
)

// TrimVariables rewrites every locally present file of the dataset to
// contain only the variables in keep (matched case-insensitively; data
// variable names are lower-cased in the output) plus the coordinate
// variables their dimensions need. Each file is rewritten to a temporary
// file in the same directory and then atomically renamed over the
// original, so an interrupted trim never leaves a partially written file
// at the original path. The batch stops at the first failure, reporting
// which file failed.
//
// An empty keep list trims to the variant's declared variable list.
func (d *Dataset) TrimVariables(keep []string) error {
	if len(keep) == 0 {
		keep = d.Variant.Variables
	}
	keepSet := make(map[string]bool, len(keep))
	for _, v := range keep {
		keepSet[strings.ToLower(v)] = true
	}
	for _, a := range d.DownloadedFiles {
		if err := trimFile(a.Path, keepSet); err != nil {
			return fmt.Errorf("geodata: trimming %s: %v", a.Path, err)
		}
	}
	return nil
}

// isCoordinate reports whether v is a coordinate variable: a
// one-dimensional variable whose single dimension carries its own name.
func isCoordinate(h *cdf.Header, v string) bool {
	dims := h.Dimensions(v)
	return len(dims) == 1 && dims[0] == v
}

// trimFile rewrites one NetCDF file keeping only the allow-listed data
// variables and their coordinates. The original file is mutated solely by
// the final rename.
func trimFile(path string, keepSet map[string]bool) error {
	ff, err := os.Open(path)
	if err != nil {
		return err
	}
	defer ff.Close()
	fi, err := ff.Stat()
	if err != nil {
		return err
	}
	in, err := cdf.Open(ff)
	if err != nil {
		return err
	}
	h := in.Header
	nrec := int(h.NumRecs(fi.Size()))

	// Select the data variables to keep and note which dimensions they
	// use; coordinate variables follow their dimensions.
	var keptData []string
	usedDims := make(map[string]bool)
	for _, v := range h.Variables() {
		if isCoordinate(h, v) {
			continue
		}
		if !keepSet[strings.ToLower(v)] {
			continue
		}
		keptData = append(keptData, v)
		for _, dim := range h.Dimensions(v) {
			usedDims[dim] = true
		}
	}
	if len(keptData) == 0 {
		return fmt.Errorf("no requested variable present in file")
	}
	var keptCoords []string
	for _, v := range h.Variables() {
		if isCoordinate(h, v) && usedDims[v] {
			keptCoords = append(keptCoords, v)
		}
	}

	// Assemble the reduced header. Dimension names (and therefore
	// coordinate variable names) are preserved; only data variable
	// names are normalized to lower case.
	allDims := h.Dimensions("")
	allLens := h.Lengths("")
	var dims []string
	var lens []int
	for i, dim := range allDims {
		if usedDims[dim] {
			dims = append(dims, dim)
			lens = append(lens, allLens[i])
		}
	}
	outH := cdf.NewHeader(dims, lens)
	for _, v := range keptCoords {
		outH.AddVariable(v, h.Dimensions(v), h.ZeroValue(v, 1))
		for _, att := range h.Attributes(v) {
			outH.AddAttribute(v, att, h.GetAttribute(v, att))
		}
	}
	for _, v := range keptData {
		lv := strings.ToLower(v)
		outH.AddVariable(lv, h.Dimensions(v), h.ZeroValue(v, 1))
		for _, att := range h.Attributes(v) {
			outH.AddAttribute(lv, att, h.GetAttribute(v, att))
		}
	}
	for _, att := range h.Attributes("") {
		outH.AddAttribute("", att, h.GetAttribute("", att))
	}
	outH.Define()
	for _, err := range outH.Check() {
		return fmt.Errorf("reduced header: %v", err)
	}

	tmp, err := ioutil.TempFile(filepath.Dir(path), ".geodata-trim-")
	if err != nil {
		return err
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name()) // no-op after a successful rename
	}()
	out, err := cdf.Create(tmp, outH)
	if err != nil {
		return err
	}

	// Record variables are copied stripe by stripe; fixed variables in
	// one read. A successful write that reaches the variable's declared
	// extent reports io.EOF, which is not a failure here.
	copyVar := func(src, dst string) error {
		if h.IsRecordVariable(src) {
			begin := make([]int, len(h.Dimensions(src)))
			for rec := 0; rec < nrec; rec++ {
				begin[0] = rec
				r := in.Reader(src, begin, nil)
				buf := r.Zero(-1)
				if _, err := r.Read(buf); err != nil {
					return err
				}
				if _, err := out.Writer(dst, begin, nil).Write(buf); err != nil && err != io.EOF {
					return err
				}
			}
			return nil
		}
		r := in.Reader(src, nil, nil)
		buf := r.Zero(-1)
		if _, err := r.Read(buf); err != nil {
			return err
		}
		if _, err := out.Writer(dst, nil, nil).Write(buf); err != nil && err != io.EOF {
			return err
		}
		return nil
	}
	for _, v := range keptCoords {
		if err := copyVar(v, v); err != nil {
			return fmt.Errorf("copying %s: %v", v, err)
		}
	}
	for _, v := range keptData {
		if err := copyVar(v, strings.ToLower(v)); err != nil {
			return fmt.Errorf("copying %s: %v", v, err)
		}
	}
	if nrec > 0 {
		if err := cdf.UpdateNumRecs(tmp); err != nil {
			return err
		}
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	// The rename is the only mutation of the original path.
	return os.Rename(tmp.Name(), path)
}
