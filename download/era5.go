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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/ctessum/requestcache"

	geodata "github.com/gschivley/geodata-1"
)

// DefaultCDSURL is the endpoint of the Copernicus Climate Data Store API.
const DefaultCDSURL = "https://cds.climate.copernicus.eu/api/v2"

// CDSClient retrieves ERA5 artifacts from the Copernicus Climate Data
// Store. Its Fetch method satisfies geodata.Acquirers.FetchAPI: the
// planner hands over the bare (year, month) keys plus bounds, and the
// client builds the API request itself.
type CDSClient struct {
	// URL is the API endpoint; DefaultCDSURL when empty.
	URL string
	// Key is the CDS credential in the "uid:api-key" form used by the
	// ~/.cdsapirc file.
	Key string
	// Client is used for all HTTP traffic.
	Client *http.Client
	// CacheDir, when non-empty, persists completed retrieval results so
	// they are not resubmitted across runs.
	CacheDir string

	cacheOnce sync.Once
	cache     *requestcache.Cache
}

// MissingCredentialsError reports that no CDS credential was configured.
// ERA5 downloads need an account at
// https://cds.climate.copernicus.eu/api-how-to.
type MissingCredentialsError struct{}

func (e *MissingCredentialsError) Error() string {
	return "download: ERA5 retrieval needs a Climate Data Store credential (CDS.Key)"
}

// cdsJob is one month's retrieval: the request payload and where the
// resulting NetCDF file goes.
type cdsJob struct {
	Product string
	Payload map[string]interface{}
	Dest    string
}

// Fetch submits one CDS retrieval per missing artifact and downloads each
// result to the artifact's local path. Identical in-flight requests are
// deduplicated through a request cache, so replanning while a retrieval
// is running does not submit the month twice.
func (c *CDSClient) Fetch(ctx context.Context, toDownload []*geodata.Artifact, bounds *geodata.Bounds, variables []string, product string) error {
	if c.Key == "" {
		return &MissingCredentialsError{}
	}
	c.cacheOnce.Do(func() {
		if c.CacheDir == "" {
			c.cache = requestcache.NewCache(c.process, 1, requestcache.Deduplicate())
		} else {
			c.cache = requestcache.NewCache(c.process, 1, requestcache.Deduplicate(),
				requestcache.Disk(c.CacheDir, requestcache.MarshalGob, requestcache.UnmarshalGob))
		}
	})
	for _, a := range toDownload {
		job := &cdsJob{
			Product: product,
			Payload: cdsPayload(a.Key, bounds, variables),
			Dest:    a.Path,
		}
		req := c.cache.NewRequest(ctx, job, job.Dest)
		if _, err := req.Result(); err != nil {
			return err
		}
		logger.Infof("download: retrieved %s", a.Path)
	}
	return nil
}

// cdsPayload builds the request body for one month of ERA5 data: every
// day and every hour of the (year, month) key, subset to the given area
// when bounds are present.
func cdsPayload(key geodata.TemporalKey, bounds *geodata.Bounds, variables []string) map[string]interface{} {
	days := make([]string, 31)
	for i := range days {
		days[i] = fmt.Sprintf("%02d", i+1)
	}
	times := make([]string, 24)
	for i := range times {
		times[i] = fmt.Sprintf("%02d:00", i)
	}
	p := map[string]interface{}{
		"product_type": "reanalysis",
		"format":       "netcdf",
		"variable":     variables,
		"year":         fmt.Sprintf("%d", key.Year),
		"month":        fmt.Sprintf("%02d", key.Month),
		"day":          days,
		"time":         times,
	}
	if bounds != nil {
		a := bounds.Area()
		p["area"] = a[:] // North, West, South, East
	}
	return p
}

// process runs one retrieval: submit, poll until the store has produced
// the result, then download it. It is the request cache's processor
// function.
func (c *CDSClient) process(ctx context.Context, reqI interface{}) (interface{}, error) {
	job := reqI.(*cdsJob)

	state, err := c.submit(ctx, job)
	if err != nil {
		return nil, err
	}
	op := func() error {
		if state.State == "completed" {
			return nil
		}
		if state.State == "failed" {
			return backoff.Permanent(fmt.Errorf("download: CDS request for %s failed: %s", job.Dest, state.Error.Reason))
		}
		var err error
		state, err = c.task(ctx, state.RequestID)
		if err != nil {
			return err
		}
		if state.State != "completed" {
			return fmt.Errorf("download: CDS request for %s still %s", job.Dest, state.State)
		}
		return nil
	}
	// Queued CDS requests routinely take minutes; poll patiently.
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = 6 * time.Hour
	b.MaxInterval = 2 * time.Minute
	if err := backoff.Retry(op, backoff.WithContext(b, ctx)); err != nil {
		return nil, err
	}

	if err := fetchToFile(ctx, c.Client, state.Location, job.Dest); err != nil {
		return nil, err
	}
	return job.Dest, nil
}

// cdsState is the task description returned by the CDS API.
type cdsState struct {
	State     string `json:"state"`
	RequestID string `json:"request_id"`
	Location  string `json:"location"`
	Error     struct {
		Reason string `json:"reason"`
	} `json:"error"`
}

func (c *CDSClient) submit(ctx context.Context, job *cdsJob) (*cdsState, error) {
	body, err := json.Marshal(job.Payload)
	if err != nil {
		return nil, err
	}
	u := strings.TrimSuffix(c.url(), "/") + "/resources/" + job.Product
	req, err := http.NewRequest(http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req.WithContext(ctx))
}

func (c *CDSClient) task(ctx context.Context, id string) (*cdsState, error) {
	u := strings.TrimSuffix(c.url(), "/") + "/tasks/" + id
	req, err := http.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req.WithContext(ctx))
}

func (c *CDSClient) do(req *http.Request) (*cdsState, error) {
	if i := strings.IndexByte(c.Key, ':'); i >= 0 {
		req.SetBasicAuth(c.Key[:i], c.Key[i+1:])
	}
	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("download: CDS API: HTTP %d for %s", resp.StatusCode, req.URL)
	}
	state := new(cdsState)
	if err := json.NewDecoder(resp.Body).Decode(state); err != nil {
		return nil, err
	}
	return state, nil
}

func (c *CDSClient) url() string {
	if c.URL == "" {
		return DefaultCDSURL
	}
	return c.URL
}
