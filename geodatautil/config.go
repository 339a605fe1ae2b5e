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
	"fmt"
	"net/http"

	"github.com/lnashier/viper"
	"github.com/spf13/cast"

	geodata "github.com/gschivley/geodata-1"
	"github.com/gschivley/geodata-1/download"
)

// StorageConfig extracts the per-module data directory roots from cfg.
func StorageConfig(cfg *viper.Viper) *geodata.Config {
	return &geodata.Config{
		ERA5Dir:   cfg.GetString("DataDir.ERA5"),
		MERRA2Dir: cfg.GetString("DataDir.MERRA2"),
		MODISDir:  cfg.GetString("DataDir.MODIS"),
	}
}

// Plan builds the dataset described by cfg and scans the local mirror
// for its files.
func Plan(cfg *viper.Viper) (*geodata.Dataset, error) {
	years, err := rangeFrom(cfg, "Years")
	if err != nil {
		return nil, err
	}
	months, err := rangeFrom(cfg, "Months")
	if err != nil {
		return nil, err
	}
	bounds, err := boundsFrom(cfg)
	if err != nil {
		return nil, err
	}
	return geodata.NewDataset(StorageConfig(cfg), geodata.DatasetOptions{
		Module: cfg.GetString("Module"),
		Config: cfg.GetString("Config"),
		Years:  years,
		Months: months,
		Bounds: bounds,
	})
}

// Acquirers wires the download package's fetchers into the acquisition
// routines a dataset dispatches to.
func Acquirers(cfg *viper.Viper) geodata.Acquirers {
	client := http.DefaultClient
	urls := &download.URLFetcher{Client: client}
	cds := &download.CDSClient{
		URL:      cfg.GetString("CDS.URL"),
		Key:      cfg.GetString("CDS.Key"),
		Client:   client,
		CacheDir: cfg.GetString("Download.CacheDir"),
	}
	band := &download.LandCoverFetcher{
		BaseURL: cfg.GetString("LandCover.URL"),
		Client:  client,
	}
	return geodata.Acquirers{
		FetchURLs: urls.Fetch,
		FetchAPI:  cds.Fetch,
		FetchBand: band.Fetch,
	}
}

// rangeFrom reads a [start, stop] or [start, stop, step] integer range
// from the named configuration key. An unset key yields a nil range.
func rangeFrom(cfg *viper.Viper, key string) (*geodata.Range, error) {
	raw := cfg.Get(key)
	if raw == nil {
		return nil, nil
	}
	vals, err := cast.ToIntSliceE(raw)
	if err != nil {
		return nil, fmt.Errorf("geodata: configuration variable %s: %v", key, err)
	}
	switch len(vals) {
	case 0:
		return nil, nil
	case 2:
		return &geodata.Range{Start: vals[0], Stop: vals[1]}, nil
	case 3:
		return &geodata.Range{Start: vals[0], Stop: vals[1], Step: vals[2]}, nil
	default:
		return nil, fmt.Errorf("geodata: configuration variable %s must have 2 or 3 elements but has %d", key, len(vals))
	}
}

// boundsFrom reads the Bounds key as the four ordinates north, west,
// south, east. An unset key yields nil.
func boundsFrom(cfg *viper.Viper) ([]float64, error) {
	raw, err := cast.ToSliceE(cfg.Get("Bounds"))
	if err != nil {
		// Command-line flags arrive as a string slice rather than a
		// generic one.
		strs := cfg.GetStringSlice("Bounds")
		raw = make([]interface{}, len(strs))
		for i, s := range strs {
			raw[i] = s
		}
	}
	if len(raw) == 0 {
		return nil, nil
	}
	bounds := make([]float64, len(raw))
	for i, v := range raw {
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return nil, fmt.Errorf("geodata: configuration variable Bounds: %v", err)
		}
		bounds[i] = f
	}
	return bounds, nil
}
