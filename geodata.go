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

// Package geodata plans the acquisition and local caching of gridded
// climate and weather datasets (for example the ERA5 reanalysis or the
// MERRA-2 surface flux collections) for downstream geospatial analysis.
//
// The central type is Dataset, which, for a configured dataset variant and
// a requested time range, enumerates the file artifacts the local mirror is
// expected to contain, partitions them into present and missing, and hands
// the missing ones to an acquisition routine in the shape that routine
// expects. The local file tree is the only persisted completeness record;
// a Dataset recovers all of its state by re-scanning the filesystem.
package geodata

import "github.com/sirupsen/logrus"

// Version gives the version number of this version of geodata.
const Version = "0.3.0"

// logger receives the diagnostic messages emitted while planning and
// acquiring datasets. Callers may replace it before constructing a Dataset.
var logger = logrus.StandardLogger()

// SetLogger redirects this package's diagnostic output to l.
func SetLogger(l *logrus.Logger) { logger = l }
