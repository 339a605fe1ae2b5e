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

// Config holds the caller-owned storage configuration: the local mirror
// root for each dataset module. There is no process-wide configuration;
// every Dataset is constructed against an explicit Config.
type Config struct {
	// ERA5Dir is the local mirror root for the era5 module.
	ERA5Dir string
	// MERRA2Dir is the local mirror root for the merra2 module.
	MERRA2Dir string
	// MODISDir is the local mirror root for the modis module.
	MODISDir string
}

// AcquireShape tags the calling convention of a module's acquisition
// routine.
type AcquireShape int

const (
	// AcquireByURL hands the routine the missing artifacts with their
	// rendered source URLs, the file granularity, and the artifacts
	// already present (merra2 family).
	AcquireByURL AcquireShape = iota
	// AcquireByAPI hands the routine the missing artifacts with their
	// bare temporal keys plus the spatial bounds, variable list, and
	// product name; the routine builds its own API requests (era5
	// family).
	AcquireByAPI
	// AcquireByBand hands the routine the missing artifacts carrying
	// spatial bounds and a band identifier (land-cover family).
	AcquireByBand
)

// A WeatherConfig describes one named variant of a dataset module: its
// file granularity, the template its local filenames follow, the
// template(s) its source URLs follow (none for API-driven variants),
// and the payload fields passed through to the acquisition routine.
type WeatherConfig struct {
	Name        string
	Granularity FileGranularity

	// FileTemplate is the local filename template, relative to the
	// module's data directory.
	FileTemplate string
	// URLTemplates holds one source URL template, two for the
	// *_multiple granularities, or none when acquisition is API-driven.
	URLTemplates []string

	// Variables, Product and Band are passed opaquely to the
	// acquisition routine and to the trim step.
	Variables []string
	Product   string
	Band      string
}

// A Module describes one supported dataset family. Modules are registered
// in a static table; acquisition behavior is selected by the Shape tag
// rather than by inspecting the module name.
type Module struct {
	Name  string
	Shape AcquireShape

	// DataDir resolves the module's local mirror root from the
	// caller's storage configuration.
	DataDir func(*Config) string

	// SpinupYear derives the spinup code injected into every template
	// rendering as the {spinup} field. Nil when the module's templates
	// do not use one.
	SpinupYear func(year int) string

	// Projection names the coordinate reference of the module's grid.
	Projection string
	// LatSouthToNorth reports whether latitudes are stored ascending.
	// ERA5 stores them descending (north to south).
	LatSouthToNorth bool
	// Dx, Dy give the native grid resolution in degrees, used when
	// deriving grid coordinates and cells from the planned bounds.
	Dx, Dy float64

	Configs map[string]*WeatherConfig
}

// merra2Spinup returns the MERRA-2 data stream code for a year. The
// stream changed at the 1992, 2001 and 2011 reprocessing boundaries, and
// the code appears in every MERRA-2 filename.
func merra2Spinup(year int) string {
	switch {
	case year < 1992:
		return "100"
	case year < 2001:
		return "200"
	case year < 2011:
		return "300"
	default:
		return "400"
	}
}

var modules = map[string]*Module{
	"era5": {
		Name:       "era5",
		Shape:      AcquireByAPI,
		DataDir:    func(c *Config) string { return c.ERA5Dir },
		Projection: "latlong",
		Dx:         0.25,
		Dy:         0.25,
		Configs: map[string]*WeatherConfig{
			"era5_monthly": {
				Name:         "era5_monthly",
				Granularity:  GranularityMonthly,
				FileTemplate: "{year}/{month:0>2}/main.nc",
				Product:      "reanalysis-era5-single-levels",
				Variables: []string{
					"100m_u_component_of_wind",
					"100m_v_component_of_wind",
					"2m_temperature",
					"runoff",
					"soil_temperature_level_4",
					"surface_net_solar_radiation",
					"surface_pressure",
					"surface_solar_radiation_downwards",
					"toa_incident_solar_radiation",
					"total_sky_direct_solar_radiation_at_surface",
				},
			},
		},
	},
	"merra2": {
		Name:            "merra2",
		Shape:           AcquireByURL,
		DataDir:         func(c *Config) string { return c.MERRA2Dir },
		SpinupYear:      merra2Spinup,
		Projection:      "latlong",
		LatSouthToNorth: true,
		Dx:              0.625,
		Dy:              0.5,
		Configs: map[string]*WeatherConfig{
			"surface_flux_hourly": {
				Name:         "surface_flux_hourly",
				Granularity:  GranularityDaily,
				FileTemplate: "{year}/{month:0>2}/MERRA2_{spinup}.tavg1_2d_flx_Nx.{year}{month:0>2}{day:0>2}.nc4",
				URLTemplates: []string{
					"https://goldsmr4.gesdisc.eosdis.nasa.gov/data/MERRA2/M2T1NXFLX.5.12.4/{year}/{month:0>2}/MERRA2_{spinup}.tavg1_2d_flx_Nx.{year}{month:0>2}{day:0>2}.nc4",
				},
				Variables: []string{"ustar", "z0m", "disph", "rhoa", "ulml", "vlml", "tstar", "shland", "hflux", "eflux"},
			},
			"surface_flux_monthly": {
				Name:         "surface_flux_monthly",
				Granularity:  GranularityMonthly,
				FileTemplate: "{year}/MERRA2_{spinup}.tavgM_2d_flx_Nx.{year}{month:0>2}.nc4",
				URLTemplates: []string{
					"https://goldsmr4.gesdisc.eosdis.nasa.gov/data/MERRA2_MONTHLY/M2TMNXFLX.5.12.4/{year}/MERRA2_{spinup}.tavgM_2d_flx_Nx.{year}{month:0>2}.nc4",
				},
				Variables: []string{"ustar", "z0m", "disph", "rhoa", "ulml", "vlml", "tstar", "shland", "hflux", "eflux"},
			},
			"slv_radiation_hourly": {
				Name:         "slv_radiation_hourly",
				Granularity:  GranularityDailyMultiple,
				FileTemplate: "{year}/{month:0>2}/MERRA2_{spinup}.tavg1_2d_slv_rad_Nx.{year}{month:0>2}{day:0>2}.nc4",
				URLTemplates: []string{
					"https://goldsmr4.gesdisc.eosdis.nasa.gov/data/MERRA2/M2T1NXSLV.5.12.4/{year}/{month:0>2}/MERRA2_{spinup}.tavg1_2d_slv_Nx.{year}{month:0>2}{day:0>2}.nc4",
					"https://goldsmr4.gesdisc.eosdis.nasa.gov/data/MERRA2/M2T1NXRAD.5.12.4/{year}/{month:0>2}/MERRA2_{spinup}.tavg1_2d_rad_Nx.{year}{month:0>2}{day:0>2}.nc4",
				},
				Variables: []string{"albedo", "swgdn", "swtdn", "t2m", "ts"},
			},
			"slv_radiation_monthly": {
				Name:         "slv_radiation_monthly",
				Granularity:  GranularityMonthlyMultiple,
				FileTemplate: "{year}/MERRA2_{spinup}.tavgM_2d_slv_rad_Nx.{year}{month:0>2}.nc4",
				URLTemplates: []string{
					"https://goldsmr4.gesdisc.eosdis.nasa.gov/data/MERRA2_MONTHLY/M2TMNXSLV.5.12.4/{year}/MERRA2_{spinup}.tavgM_2d_slv_Nx.{year}{month:0>2}.nc4",
					"https://goldsmr4.gesdisc.eosdis.nasa.gov/data/MERRA2_MONTHLY/M2TMNXRAD.5.12.4/{year}/MERRA2_{spinup}.tavgM_2d_rad_Nx.{year}{month:0>2}.nc4",
				},
				Variables: []string{"albedo", "swgdn", "swtdn", "t2m", "ts"},
			},
		},
	},
	"modis": {
		Name:            "modis",
		Shape:           AcquireByBand,
		DataDir:         func(c *Config) string { return c.MODISDir },
		Projection:      "latlong",
		LatSouthToNorth: true,
		Dx:              0.05,
		Dy:              0.05,
		Configs: map[string]*WeatherConfig{
			"modis_land_cover": {
				Name:         "modis_land_cover",
				Granularity:  GranularityYearlyStatic,
				FileTemplate: "modis_land_cover_{year}.nc",
				Band:         "LC_Type1",
			},
		},
	},
}

// ModuleByName looks a module up in the static registry.
func ModuleByName(name string) (*Module, bool) {
	m, ok := modules[name]
	return m, ok
}

// RegisterModule makes an additional dataset module available to
// NewDataset. Registering a name twice panics; the registry is meant to be
// populated once, at startup.
func RegisterModule(m *Module) {
	if _, ok := modules[m.Name]; ok {
		panic("geodata: module " + m.Name + " already registered")
	}
	modules[m.Name] = m
}

// spinup returns the module's spinup code for year, or "" when the module
// does not use one.
func (m *Module) spinup(year int) string {
	if m.SpinupYear == nil {
		return ""
	}
	return m.SpinupYear(year)
}
