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

package geodatautil

import (
	"bytes"
	"io/ioutil"
	"os"
	"strings"
	"testing"

	"github.com/lnashier/viper"

	geodata "github.com/gschivley/geodata-1"
)

func TestVersionCmd(t *testing.T) {
	var out bytes.Buffer
	Root.SetOutput(&out)
	Root.SetArgs([]string{"version"})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	want := "geodata v" + geodata.Version
	if !strings.Contains(out.String(), want) {
		t.Errorf("output %q missing %q", out.String(), want)
	}
}

func TestRangeFrom(t *testing.T) {
	cfg := viper.New()

	if r, err := rangeFrom(cfg, "Years"); err != nil || r != nil {
		t.Errorf("unset key: got %v, %v", r, err)
	}

	cfg.Set("Years", []int{2019, 2020})
	r, err := rangeFrom(cfg, "Years")
	if err != nil {
		t.Fatal(err)
	}
	if *r != (geodata.Range{Start: 2019, Stop: 2020}) {
		t.Errorf("got %+v", r)
	}

	cfg.Set("Years", []int{2000, 2010, 5})
	r, err = rangeFrom(cfg, "Years")
	if err != nil {
		t.Fatal(err)
	}
	if *r != (geodata.Range{Start: 2000, Stop: 2010, Step: 5}) {
		t.Errorf("got %+v", r)
	}

	cfg.Set("Years", []int{2019})
	if _, err := rangeFrom(cfg, "Years"); err == nil {
		t.Error("expected error for a single-element range")
	}
}

func TestBoundsFrom(t *testing.T) {
	cfg := viper.New()

	b, err := boundsFrom(cfg)
	if err != nil || b != nil {
		t.Errorf("unset key: got %v, %v", b, err)
	}

	cfg.Set("Bounds", []interface{}{50.0, -10.0, 40.0, 5.0})
	b, err = boundsFrom(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(b) != 4 || b[0] != 50 || b[3] != 5 {
		t.Errorf("got %v", b)
	}

	// Command-line values arrive as strings.
	cfg.Set("Bounds", []string{"50", "-10", "40", "5"})
	b, err = boundsFrom(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(b) != 4 || b[1] != -10 {
		t.Errorf("got %v", b)
	}
}

func TestStorageConfig(t *testing.T) {
	cfg := viper.New()
	cfg.Set("DataDir.ERA5", "/data/era5")
	cfg.Set("DataDir.MERRA2", "/data/merra2")
	cfg.Set("DataDir.MODIS", "/data/modis")

	sc := StorageConfig(cfg)
	if sc.ERA5Dir != "/data/era5" || sc.MERRA2Dir != "/data/merra2" || sc.MODISDir != "/data/modis" {
		t.Errorf("got %+v", sc)
	}
}

func TestPlan(t *testing.T) {
	dir, err := ioutil.TempDir("", "geodatautil")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	cfg := viper.New()
	cfg.Set("Module", "merra2")
	cfg.Set("Config", "surface_flux_monthly")
	cfg.Set("Years", []int{2020, 2020})
	cfg.Set("Months", []int{1, 3})
	cfg.Set("DataDir.MERRA2", dir)

	d, err := Plan(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(d.TotalFiles) != 3 {
		t.Errorf("got %d files, want 3", len(d.TotalFiles))
	}
	if d.Prepared {
		t.Error("empty mirror should not be prepared")
	}
}

func TestPlanBadModule(t *testing.T) {
	cfg := viper.New()
	cfg.Set("Module", "noaa")
	cfg.Set("Config", "x")
	cfg.Set("Years", []int{2020, 2020})
	if _, err := Plan(cfg); err == nil {
		t.Error("expected error")
	}
}

func TestAcquirersWired(t *testing.T) {
	cfg := viper.New()
	cfg.Set("CDS.Key", "1234:secret")
	aq := Acquirers(cfg)
	if aq.FetchURLs == nil || aq.FetchAPI == nil || aq.FetchBand == nil {
		t.Error("every acquisition routine should be wired")
	}
}
