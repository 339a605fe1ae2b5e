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
	"context"
	"io"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"testing"

	"github.com/ctessum/cdf"

	geodata "github.com/gschivley/geodata-1"
)

func TestURLFetcherSingle(t *testing.T) {
	const body = "merra2 bytes"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer srv.Close()

	dir, err := ioutil.TempDir("", "download")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	f := &URLFetcher{Client: srv.Client()}
	dest := filepath.Join(dir, "2020", "01", "flux.nc4")
	toDownload := []*geodata.Artifact{{
		Path: dest,
		Key:  geodata.TemporalKey{Year: 2020, Month: 1},
		URLs: []string{srv.URL + "/flux.nc4"},
	}}
	if err := f.Fetch(context.Background(), toDownload, geodata.GranularityMonthly, nil); err != nil {
		t.Fatal(err)
	}
	got, err := ioutil.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != body {
		t.Errorf("got %q, want %q", got, body)
	}
}

func TestURLFetcherBadURLCount(t *testing.T) {
	f := &URLFetcher{}
	err := f.Fetch(context.Background(), []*geodata.Artifact{{Path: "x"}},
		geodata.GranularityMonthly, nil)
	if err == nil {
		t.Error("expected error for an artifact without source URLs")
	}
}

// writeVarFile creates a NetCDF file with one record variable on a shared
// (time, lat) grid.
func writeVarFile(t *testing.T, path, name string, vals []float32) {
	t.Helper()
	h := cdf.NewHeader([]string{"time", "lat"}, []int{0, 2})
	h.AddVariable("lat", []string{"lat"}, []float32{0})
	h.AddVariable(name, []string{"time", "lat"}, []float32{0})
	h.AddAttribute(name, "units", "1")
	h.Define()
	for _, err := range h.Check() {
		t.Fatal(err)
	}
	ff, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer ff.Close()
	f, err := cdf.Create(ff, h)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.Writer("lat", nil, nil).Write([]float32{10, 20}); err != nil && err != io.EOF {
		t.Fatal(err)
	}
	for rec := 0; rec*2 < len(vals); rec++ {
		if _, err := f.Writer(name, []int{rec, 0}, nil).Write(vals[rec*2 : rec*2+2]); err != nil && err != io.EOF {
			t.Fatal(err)
		}
	}
	if err := cdf.UpdateNumRecs(ff); err != nil {
		t.Fatal(err)
	}
}

func TestCombineFiles(t *testing.T) {
	dir, err := ioutil.TempDir("", "download")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	a := filepath.Join(dir, "slv.nc4")
	b := filepath.Join(dir, "rad.nc4")
	writeVarFile(t, a, "t2m", []float32{1, 2, 3, 4})
	writeVarFile(t, b, "swgdn", []float32{5, 6, 7, 8})

	dest := filepath.Join(dir, "combined.nc4")
	if err := combineFiles(dest, a, b); err != nil {
		t.Fatal(err)
	}

	ff, err := os.Open(dest)
	if err != nil {
		t.Fatal(err)
	}
	defer ff.Close()
	fi, err := ff.Stat()
	if err != nil {
		t.Fatal(err)
	}
	f, err := cdf.Open(ff)
	if err != nil {
		t.Fatal(err)
	}

	vars := f.Header.Variables()
	sort.Strings(vars)
	if want := []string{"lat", "swgdn", "t2m"}; !reflect.DeepEqual(vars, want) {
		t.Fatalf("variables %v, want %v", vars, want)
	}
	if nrec := f.Header.NumRecs(fi.Size()); nrec != 2 {
		t.Fatalf("got %d records, want 2", nrec)
	}

	for name, want := range map[string][]float32{
		"t2m":   {1, 2, 3, 4},
		"swgdn": {5, 6, 7, 8},
	} {
		var got []float32
		for rec := 0; rec < 2; rec++ {
			r := f.Reader(name, []int{rec, 0}, nil)
			buf := r.Zero(-1)
			if _, err := r.Read(buf); err != nil {
				t.Fatal(err)
			}
			got = append(got, buf.([]float32)...)
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("%s data %v, want %v", name, got, want)
		}
	}
}

func TestCombineFilesDimensionMismatch(t *testing.T) {
	dir, err := ioutil.TempDir("", "download")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	a := filepath.Join(dir, "a.nc4")
	h := cdf.NewHeader([]string{"lat"}, []int{2})
	h.AddVariable("lat", []string{"lat"}, []float32{0})
	h.Define()
	ff, err := os.Create(a)
	if err != nil {
		t.Fatal(err)
	}
	f, err := cdf.Create(ff, h)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.Writer("lat", nil, nil).Write([]float32{1, 2}); err != nil && err != io.EOF {
		t.Fatal(err)
	}
	ff.Close()

	b := filepath.Join(dir, "b.nc4")
	h2 := cdf.NewHeader([]string{"lat"}, []int{3})
	h2.AddVariable("lat", []string{"lat"}, []float32{0})
	h2.Define()
	ff2, err := os.Create(b)
	if err != nil {
		t.Fatal(err)
	}
	f2, err := cdf.Create(ff2, h2)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f2.Writer("lat", nil, nil).Write([]float32{1, 2, 3}); err != nil && err != io.EOF {
		t.Fatal(err)
	}
	ff2.Close()

	if err := combineFiles(filepath.Join(dir, "out.nc4"), a, b); err == nil {
		t.Error("expected error for mismatched dimension lengths")
	}
}

func TestURLFetcherPair(t *testing.T) {
	dir, err := ioutil.TempDir("", "download")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	slv := filepath.Join(dir, "src_slv.nc4")
	rad := filepath.Join(dir, "src_rad.nc4")
	writeVarFile(t, slv, "t2m", []float32{1, 2})
	writeVarFile(t, rad, "swgdn", []float32{5, 6})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, filepath.Join(dir, "src_"+filepath.Base(r.URL.Path)))
	}))
	defer srv.Close()

	f := &URLFetcher{Client: srv.Client()}
	dest := filepath.Join(dir, "out", "2020", "slv_rad.nc4")
	toDownload := []*geodata.Artifact{{
		Path: dest,
		Key:  geodata.TemporalKey{Year: 2020, Month: 1},
		URLs: []string{srv.URL + "/slv.nc4", srv.URL + "/rad.nc4"},
	}}
	if err := f.Fetch(context.Background(), toDownload, geodata.GranularityMonthlyMultiple, nil); err != nil {
		t.Fatal(err)
	}

	ff, err := os.Open(dest)
	if err != nil {
		t.Fatal(err)
	}
	defer ff.Close()
	cf, err := cdf.Open(ff)
	if err != nil {
		t.Fatal(err)
	}
	vars := cf.Header.Variables()
	sort.Strings(vars)
	if want := []string{"lat", "swgdn", "t2m"}; !reflect.DeepEqual(vars, want) {
		t.Errorf("variables %v, want %v", vars, want)
	}
}

func TestWithDataset(t *testing.T) {
	dir, err := ioutil.TempDir("", "download")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "file.nc")
	writeVarFile(t, path, "t2m", []float32{1, 2})

	var saw []string
	err = WithDataset(path, func(f *cdf.File) error {
		saw = f.Header.Variables()
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	sort.Strings(saw)
	if want := []string{"lat", "t2m"}; !reflect.DeepEqual(saw, want) {
		t.Errorf("variables %v, want %v", saw, want)
	}

	if err := WithDataset(filepath.Join(dir, "missing.nc"), func(*cdf.File) error { return nil }); err == nil {
		t.Error("expected error for a missing file")
	}
}
