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

package download

import (
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/ctessum/cdf"
)

// combineFiles merges the variables of two NetCDF files sharing a grid
// into dest. Dimensions common to both files must agree in length; when
// both files define a variable of the same name, the first file wins.
// dest is written via a temporary file and renamed into place.
func combineFiles(dest string, srcs ...string) error {
	type source struct {
		f    *os.File
		cf   *cdf.File
		nrec int
	}
	sources := make([]*source, 0, len(srcs))
	defer func() {
		for _, s := range sources {
			s.f.Close()
		}
	}()
	for _, name := range srcs {
		f, err := os.Open(name)
		if err != nil {
			return err
		}
		fi, err := f.Stat()
		if err != nil {
			f.Close()
			return err
		}
		cf, err := cdf.Open(f)
		if err != nil {
			f.Close()
			return fmt.Errorf("download: combining %s: %v", name, err)
		}
		sources = append(sources, &source{f: f, cf: cf, nrec: int(cf.Header.NumRecs(fi.Size()))})
	}

	// Union of dimensions; lengths must agree.
	var dims []string
	var lens []int
	dimLen := make(map[string]int)
	for _, s := range sources {
		names := s.cf.Header.Dimensions("")
		lengths := s.cf.Header.Lengths("")
		for i, name := range names {
			if l, ok := dimLen[name]; ok {
				if l != lengths[i] {
					return fmt.Errorf("download: dimension %s differs between combined files: %d != %d", name, l, lengths[i])
				}
				continue
			}
			dimLen[name] = lengths[i]
			dims = append(dims, name)
			lens = append(lens, lengths[i])
		}
	}

	// Union of variables; first file wins on name conflicts.
	varFrom := make(map[string]*source)
	var varOrder []string
	for _, s := range sources {
		for _, v := range s.cf.Header.Variables() {
			if _, ok := varFrom[v]; ok {
				continue
			}
			varFrom[v] = s
			varOrder = append(varOrder, v)
		}
	}

	outH := cdf.NewHeader(dims, lens)
	for _, v := range varOrder {
		h := varFrom[v].cf.Header
		outH.AddVariable(v, h.Dimensions(v), h.ZeroValue(v, 1))
		for _, att := range h.Attributes(v) {
			outH.AddAttribute(v, att, h.GetAttribute(v, att))
		}
	}
	for _, att := range sources[0].cf.Header.Attributes("") {
		outH.AddAttribute("", att, sources[0].cf.Header.GetAttribute("", att))
	}
	outH.Define()
	for _, err := range outH.Check() {
		return fmt.Errorf("download: combined header: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(dest), os.ModePerm); err != nil {
		return err
	}
	tmp, err := ioutil.TempFile(filepath.Dir(dest), ".geodata-combine-")
	if err != nil {
		return err
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()
	out, err := cdf.Create(tmp, outH)
	if err != nil {
		return err
	}

	// Record variables are copied stripe by stripe; fixed variables in
	// one read. A write reaching the variable's declared extent reports
	// io.EOF, which is not a failure here.
	maxRec := 0
	for _, v := range varOrder {
		s := varFrom[v]
		h := s.cf.Header
		if h.IsRecordVariable(v) {
			if s.nrec > maxRec {
				maxRec = s.nrec
			}
			begin := make([]int, len(h.Dimensions(v)))
			for rec := 0; rec < s.nrec; rec++ {
				begin[0] = rec
				r := s.cf.Reader(v, begin, nil)
				buf := r.Zero(-1)
				if _, err := r.Read(buf); err != nil {
					return fmt.Errorf("download: combining variable %s: %v", v, err)
				}
				if _, err := out.Writer(v, begin, nil).Write(buf); err != nil && err != io.EOF {
					return fmt.Errorf("download: combining variable %s: %v", v, err)
				}
			}
			continue
		}
		r := s.cf.Reader(v, nil, nil)
		buf := r.Zero(-1)
		if _, err := r.Read(buf); err != nil {
			return fmt.Errorf("download: combining variable %s: %v", v, err)
		}
		if _, err := out.Writer(v, nil, nil).Write(buf); err != nil && err != io.EOF {
			return fmt.Errorf("download: combining variable %s: %v", v, err)
		}
	}
	if maxRec > 0 {
		if err := cdf.UpdateNumRecs(tmp); err != nil {
			return err
		}
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dest)
}
