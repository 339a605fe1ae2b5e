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
	"os"

	"github.com/ctessum/cdf"
)

// WithDataset opens the NetCDF file at path, hands it to fn, and closes
// the underlying file on every return path, including when fn fails.
func WithDataset(path string, fn func(*cdf.File) error) error {
	ff, err := os.Open(path)
	if err != nil {
		return err
	}
	defer ff.Close()
	cf, err := cdf.Open(ff)
	if err != nil {
		return err
	}
	return fn(cf)
}
