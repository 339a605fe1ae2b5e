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
	"net/http"
	"net/url"

	geodata "github.com/gschivley/geodata-1"
)

// LandCoverFetcher retrieves yearly MODIS land-cover band subsets by
// spatial query. Its Fetch method satisfies geodata.Acquirers.FetchBand;
// the artifacts carry the bounds and band identifier resolved during
// planning.
type LandCoverFetcher struct {
	// BaseURL is the subsetting service endpoint.
	BaseURL string
	// Client is used for all HTTP traffic; Earthdata-authenticated
	// endpoints need a client carrying the credentials.
	Client *http.Client
}

// Fetch downloads one band subset per missing artifact.
func (f *LandCoverFetcher) Fetch(ctx context.Context, toDownload []*geodata.Artifact) error {
	if f.BaseURL == "" {
		return fmt.Errorf("download: land-cover retrieval needs a subsetting service URL")
	}
	for _, a := range toDownload {
		if a.Bounds == nil {
			return fmt.Errorf("download: land-cover artifact %s carries no bounds", a.Path)
		}
		q := url.Values{}
		q.Set("band", a.Band)
		q.Set("year", fmt.Sprintf("%d", a.Key.Year))
		// bbox is west,south,east,north per the subsetting convention.
		q.Set("bbox", fmt.Sprintf("%g,%g,%g,%g", a.Bounds.West, a.Bounds.South, a.Bounds.East, a.Bounds.North))
		q.Set("format", "netcdf")
		src := f.BaseURL + "?" + q.Encode()
		if err := fetchToFile(ctx, f.Client, src, a.Path); err != nil {
			return err
		}
		logger.Infof("download: fetched %s", a.Path)
	}
	return nil
}
