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
	"fmt"
	"io/ioutil"
	"net/http"
	"os"
	"path/filepath"

	geodata "github.com/gschivley/geodata-1"
)

// URLFetcher downloads artifacts whose source URLs were rendered during
// planning. Its Fetch method satisfies geodata.Acquirers.FetchURLs.
// Artifacts with two source URLs (the *_multiple granularities) are
// downloaded separately and combined into the single target file.
type URLFetcher struct {
	// Client is used for HTTP sources. Earthdata-authenticated sources
	// need a client whose transport or jar carries the credentials.
	Client *http.Client
}

// Fetch downloads every missing artifact in order. downloaded is the
// already-present list, received for symmetry with the planner's dispatch
// contract; it is only reported, never re-fetched.
func (f *URLFetcher) Fetch(ctx context.Context, toDownload []*geodata.Artifact, granularity geodata.FileGranularity, downloaded []*geodata.Artifact) error {
	logger.Infof("download: %d files present, %d to fetch (%s)", len(downloaded), len(toDownload), granularity)
	for _, a := range toDownload {
		if err := f.fetchOne(ctx, a); err != nil {
			return err
		}
		logger.Infof("download: fetched %s", a.Path)
	}
	return nil
}

func (f *URLFetcher) fetchOne(ctx context.Context, a *geodata.Artifact) error {
	switch len(a.URLs) {
	case 1:
		return fetchToFile(ctx, f.Client, a.URLs[0], a.Path)
	case 2:
		return f.fetchPair(ctx, a)
	default:
		return fmt.Errorf("download: artifact %s carries %d source URLs", a.Path, len(a.URLs))
	}
}

// fetchPair downloads the artifact's two source files and merges their
// variables into the single target file.
func (f *URLFetcher) fetchPair(ctx context.Context, a *geodata.Artifact) error {
	if err := os.MkdirAll(filepath.Dir(a.Path), os.ModePerm); err != nil {
		return err
	}
	dir, err := ioutil.TempDir(filepath.Dir(a.Path), ".geodata-pair-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	parts := make([]string, len(a.URLs))
	for i, u := range a.URLs {
		parts[i] = filepath.Join(dir, fmt.Sprintf("part%d.nc4", i))
		if err := fetchToFile(ctx, f.Client, u, parts[i]); err != nil {
			return err
		}
	}
	return combineFiles(a.Path, parts[0], parts[1])
}
