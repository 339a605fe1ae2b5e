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
	"context"
	"fmt"
	"os"
)

// DatasetOptions describes one logical dataset request: which module and
// variant, which time range, and which spatial subset.
type DatasetOptions struct {
	// Module is the dataset module name ("era5", "merra2", "modis").
	Module string
	// Config is the name of the module's configuration variant.
	Config string
	// Years is the requested year range. Required.
	Years *Range
	// Months is the requested month range. When absent it defaults to
	// the full year unless the variant's granularity is yearly.
	Months *Range
	// Bounds holds the four ordinates North, West, South, East, or nil
	// for global scope. Required for yearly-static (land-cover)
	// variants; elsewhere its absence only triggers a warning.
	Bounds []float64
	// DataDir is rejected: the storage directory is configuration
	// driven. A non-empty value is ignored with a warning.
	DataDir string
}

// An Artifact is one expected file of a planned dataset: the variant it
// belongs to and its resolved local path. Missing artifacts additionally
// carry the information needed to acquire them: one or two rendered
// source URLs, or, for API- and band-driven variants, the bare temporal
// key together with the spatial bounds (and band identifier).
type Artifact struct {
	Config string
	Path   string
	Key    TemporalKey

	URLs   []string
	Bounds *Bounds
	Band   string
}

// A Dataset is the completeness plan for one dataset request. It is
// constructed once per request, eagerly scans the local mirror during
// construction, and afterward is mutated only by GetData (which
// re-partitions after an acquisition pass) and TrimVariables (which
// rewrites files on disk but not the partition).
//
// A Dataset is not safe for concurrent use, and two Datasets planning the
// same data directory can race on the same file during acquisition or
// trim — the directory tree is implicitly single-writer and no lock is
// taken.
type Dataset struct {
	module  *Module
	Variant *WeatherConfig

	DataDir string
	Years   Range
	Months  Range
	Bounds  *Bounds

	// Prepared is true iff no expected file is missing.
	Prepared bool
	// ToDownload lists the missing artifacts in enumeration order.
	ToDownload []*Artifact
	// DownloadedFiles lists the artifacts already present locally.
	DownloadedFiles []*Artifact
	// TotalFiles is the full expected artifact set:
	// DownloadedFiles ∪ ToDownload, with no overlap.
	TotalFiles []*Artifact
}

// NewDataset validates the request, resolves the storage directory and
// spatial bounds, enumerates the expected artifacts for the variant's
// file granularity, and partitions them by local presence. Configuration
// and template errors abort construction; no partially initialized
// Dataset is returned.
func NewDataset(cfg *Config, opts DatasetOptions) (*Dataset, error) {
	if opts.Module == "" {
		return nil, &ConfigurationError{Field: "module", Reason: "needs to be specified"}
	}
	module, ok := ModuleByName(opts.Module)
	if !ok {
		return nil, &ConfigurationError{Field: "module", Reason: fmt.Sprintf("unknown module %q", opts.Module)}
	}
	if opts.Config == "" {
		return nil, &ConfigurationError{Field: "config", Reason: "needs to be specified"}
	}
	variant, ok := module.Configs[opts.Config]
	if !ok {
		return nil, &ConfigurationError{Field: "config", Reason: fmt.Sprintf("module %q has no configuration %q", opts.Module, opts.Config)}
	}

	if opts.DataDir != "" {
		logger.Warnf("geodata: manual data directory %q not supported; the configuration-driven directory is used instead", opts.DataDir)
	}
	datadir := module.DataDir(cfg)
	if datadir == "" {
		return nil, &ConfigurationError{Field: "datadir", Reason: fmt.Sprintf("no data directory configured for module %q", opts.Module)}
	}

	if opts.Years == nil {
		return nil, &ConfigurationError{Field: "years", Reason: "needs to be specified"}
	}
	if opts.Years.Step < 0 {
		return nil, &ConfigurationError{Field: "years", Reason: fmt.Sprintf("step must not be negative, got %d", opts.Years.Step)}
	}
	months := Range{Start: 1, Stop: 12}
	if opts.Months != nil {
		if opts.Months.Step < 0 {
			return nil, &ConfigurationError{Field: "months", Reason: fmt.Sprintf("step must not be negative, got %d", opts.Months.Step)}
		}
		months = *opts.Months
	} else if variant.Granularity != GranularityYearlyStatic {
		logger.Info("geodata: no months specified, defaulting to 1-12")
	}

	var bounds *Bounds
	if opts.Bounds != nil {
		var err error
		if bounds, err = ParseBounds(opts.Bounds); err != nil {
			return nil, err
		}
	} else if variant.Granularity == GranularityYearlyStatic {
		return nil, &ConfigurationError{Field: "bounds", Reason: "land-cover downloads require North, West, South, East bounds"}
	} else {
		logger.Warn("geodata: bounds not used in preparing dataset, defaulting to global")
	}

	d := &Dataset{
		module:  module,
		Variant: variant,
		DataDir: datadir,
		Years:   *opts.Years,
		Months:  months,
		Bounds:  bounds,
	}

	mode := scanInitial
	if fi, err := os.Stat(datadir); err == nil && fi.IsDir() {
		logger.Infof("geodata: directory %s found, checking for completeness", datadir)
		mode = scanVerify
	} else {
		logger.Infof("geodata: directory %s not found", datadir)
	}
	if err := d.scan(mode); err != nil {
		return nil, err
	}
	if d.Prepared {
		logger.Info("geodata: directory complete")
	}
	return d, nil
}

// Acquirers collects the acquisition routines available to GetData, one
// per calling convention. The routines perform all network and local file
// I/O; the Dataset only hands them the missing artifacts in the shape
// they expect. Retrying failed acquisitions is the routine's concern.
type Acquirers struct {
	// FetchURLs retrieves artifacts whose source URLs were rendered
	// during planning (AcquireByURL modules).
	FetchURLs func(ctx context.Context, toDownload []*Artifact, granularity FileGranularity, downloaded []*Artifact) error
	// FetchAPI builds and submits API requests from the artifacts'
	// temporal keys (AcquireByAPI modules).
	FetchAPI func(ctx context.Context, toDownload []*Artifact, bounds *Bounds, variables []string, product string) error
	// FetchBand retrieves band artifacts by spatial query
	// (AcquireByBand modules).
	FetchBand func(ctx context.Context, toDownload []*Artifact) error
}

// GetData dispatches the missing artifacts to the acquisition routine
// matching the module's acquisition shape, then re-scans the filesystem
// to recompute the partition; Prepared becomes true only if the pass
// fetched everything missing. Errors from the routine are returned
// unwrapped so the caller can tell a fetching failure from a planning
// failure. Dispatching a shape for which no routine was supplied fails
// with *UnsupportedModuleError rather than silently succeeding.
func (d *Dataset) GetData(ctx context.Context, aq Acquirers) error {
	var err error
	switch d.module.Shape {
	case AcquireByURL:
		if aq.FetchURLs == nil {
			return &UnsupportedModuleError{Module: d.module.Name}
		}
		err = aq.FetchURLs(ctx, d.ToDownload, d.Variant.Granularity, d.DownloadedFiles)
	case AcquireByAPI:
		if aq.FetchAPI == nil {
			return &UnsupportedModuleError{Module: d.module.Name}
		}
		err = aq.FetchAPI(ctx, d.ToDownload, d.Bounds, d.Variant.Variables, d.Variant.Product)
	case AcquireByBand:
		if aq.FetchBand == nil {
			return &UnsupportedModuleError{Module: d.module.Name}
		}
		err = aq.FetchBand(ctx, d.ToDownload)
	default:
		return &UnsupportedModuleError{Module: d.module.Name}
	}
	if err != nil {
		return err
	}
	return d.Rescan()
}

// Rescan recomputes the present/missing partition from the current state
// of the filesystem. Scanning twice against an unchanged tree yields
// identical partitions.
func (d *Dataset) Rescan() error {
	return d.scan(scanVerify)
}

// Module returns the dataset's module descriptor.
func (d *Dataset) Module() *Module { return d.module }

// Projection returns the coordinate reference of the module's grid.
func (d *Dataset) Projection() string { return d.module.Projection }

func (d *Dataset) String() string {
	state := "Unprepared"
	if d.Prepared {
		state = "Prepared"
	}
	return fmt.Sprintf("<Dataset %s years=%d-%d months=%d-%d datadir=%s %s>",
		d.module.Name, d.Years.Start, d.Years.Stop, d.Months.Start, d.Months.Stop, d.DataDir, state)
}
