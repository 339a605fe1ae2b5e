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
	"os"
	"path/filepath"
)

// scanMode controls the diagnostics emitted while scanning. In verify
// mode every missing file is logged, because the directory was expected
// to be complete; in initial mode absence is expected and only the
// partition is computed. The mode never affects the returned partition.
type scanMode int

const (
	scanInitial scanMode = iota
	scanVerify
)

// artifactFor resolves the local path of the artifact addressed by key.
func (d *Dataset) artifactFor(key TemporalKey) (*Artifact, error) {
	rel, err := Render(d.Variant.FileTemplate, key, d.module.spinup(key.Year))
	if err != nil {
		return nil, err
	}
	return &Artifact{Config: d.Variant.Name, Path: filepath.Join(d.DataDir, rel), Key: key}, nil
}

// fillAcquisition attaches the acquisition shape appropriate to the
// variant's granularity to a missing artifact: the rendered source
// URL(s), or the bounds (and band) for API- and band-driven variants.
func (d *Dataset) fillAcquisition(a *Artifact) error {
	if d.Variant.Granularity == GranularityYearlyStatic {
		a.Bounds = d.Bounds
		a.Band = d.Variant.Band
		return nil
	}
	for _, tmpl := range d.Variant.URLTemplates {
		u, err := Render(tmpl, a.Key, d.module.spinup(a.Key.Year))
		if err != nil {
			return err
		}
		a.URLs = append(a.URLs, u)
	}
	if len(a.URLs) == 0 {
		// API-driven variant: the acquisition routine builds its own
		// request from the key and bounds.
		a.Bounds = d.Bounds
	}
	return nil
}

// scan enumerates the expected artifact set for the dataset's time range
// and partitions it by local presence. It touches no file contents and
// mutates nothing on disk. Two temporal keys rendering the same filename
// would silently break resumability, so path collisions fail the scan.
func (d *Dataset) scan(mode scanMode) error {
	keys := enumerateKeys(d.Variant.Granularity, d.Years, d.Months)

	var total, present, missing []*Artifact
	seen := make(map[string]TemporalKey, len(keys))
	for _, key := range keys {
		a, err := d.artifactFor(key)
		if err != nil {
			return err
		}
		if prev, ok := seen[a.Path]; ok {
			return &ConfigurationError{
				Field:  "fn",
				Reason: fmt.Sprintf("keys %v and %v both render file %s", prev, key, a.Path),
			}
		}
		seen[a.Path] = key
		total = append(total, a)

		if _, err := os.Stat(a.Path); err == nil {
			present = append(present, a)
			continue
		}
		if mode == scanVerify {
			logger.Infof("geodata: file %s not found", a.Path)
		}
		if err := d.fillAcquisition(a); err != nil {
			return err
		}
		missing = append(missing, a)
	}

	d.TotalFiles = total
	d.DownloadedFiles = present
	d.ToDownload = missing
	d.Prepared = len(missing) == 0
	if mode == scanVerify && len(missing) > 0 {
		logger.Infof("geodata: %d of %d files not completed", len(missing), len(total))
	}
	return nil
}
