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

// Package geodatautil holds the configuration and command-line interface
// for the geodata dataset planner.
package geodatautil

import (
	"context"
	"fmt"

	"github.com/lnashier/viper"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	geodata "github.com/gschivley/geodata-1"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to geodata.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Module",
			usage: `
              Module is the dataset module to plan: era5, merra2 or modis.`,
			shorthand:  "m",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{planCmd.Flags(), getCmd.Flags(), trimCmd.Flags()},
		},
		{
			name: "Config",
			usage: `
              Config names the module's configuration variant, for example
              era5_monthly or surface_flux_hourly.`,
			shorthand:  "c",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{planCmd.Flags(), getCmd.Flags(), trimCmd.Flags()},
		},
		{
			name: "Years",
			usage: `
              Years is the requested year range as [start, stop] or
              [start, stop, step]. The stop year is included.`,
			defaultVal: []int{},
			flagsets:   []*pflag.FlagSet{planCmd.Flags(), getCmd.Flags(), trimCmd.Flags()},
		},
		{
			name: "Months",
			usage: `
              Months is the requested month range as [start, stop] or
              [start, stop, step]. When unset the full year 1-12 is planned.`,
			defaultVal: []int{},
			flagsets:   []*pflag.FlagSet{planCmd.Flags(), getCmd.Flags(), trimCmd.Flags()},
		},
		{
			name: "Bounds",
			usage: `
              Bounds subsets the request spatially as the four ordinates
              North, West, South, East. Mandatory for modis_land_cover;
              elsewhere an unset value means global scope.`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{planCmd.Flags(), getCmd.Flags(), trimCmd.Flags()},
		},
		{
			name: "DataDir.ERA5",
			usage: `
              DataDir.ERA5 is the local mirror root for the era5 module.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{planCmd.Flags(), getCmd.Flags(), trimCmd.Flags()},
		},
		{
			name: "DataDir.MERRA2",
			usage: `
              DataDir.MERRA2 is the local mirror root for the merra2 module.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{planCmd.Flags(), getCmd.Flags(), trimCmd.Flags()},
		},
		{
			name: "DataDir.MODIS",
			usage: `
              DataDir.MODIS is the local mirror root for the modis module.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{planCmd.Flags(), getCmd.Flags(), trimCmd.Flags()},
		},
		{
			name: "CDS.URL",
			usage: `
              CDS.URL is the Copernicus Climate Data Store API endpoint.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{getCmd.Flags()},
		},
		{
			name: "CDS.Key",
			usage: `
              CDS.Key is the Climate Data Store credential in the
              "uid:api-key" form of the ~/.cdsapirc file.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{getCmd.Flags()},
		},
		{
			name: "Download.CacheDir",
			usage: `
              Download.CacheDir is a directory where completed API
              retrievals are remembered across runs. Empty disables the
              cache.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{getCmd.Flags()},
		},
		{
			name: "LandCover.URL",
			usage: `
              LandCover.URL is the endpoint of the land-cover band
              subsetting service used by the modis module.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{getCmd.Flags()},
		},
		{
			name: "trim",
			usage: `
              trim runs the variable trim step on every file after a
              successful acquisition pass.`,
			shorthand:  "t",
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{getCmd.Flags()},
		},
		{
			name: "TrimVariables",
			usage: `
              TrimVariables lists the variables the trim step keeps. When
              unset, the variant's declared variable list is kept.`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{getCmd.Flags(), trimCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("GEODATA")

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case []string:
				if option.shorthand == "" {
					set.StringSlice(option.name, option.defaultVal.([]string), option.usage)
				} else {
					set.StringSliceP(option.name, option.shorthand, option.defaultVal.([]string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case []int:
				if option.shorthand == "" {
					set.IntSlice(option.name, option.defaultVal.([]int), option.usage)
				} else {
					set.IntSliceP(option.name, option.shorthand, option.defaultVal.([]int), option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(planCmd)
	Root.AddCommand(getCmd)
	Root.AddCommand(trimCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("geodata: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "geodata",
	Short: "A planner for mirroring gridded climate datasets.",
	Long: `geodata tracks which files of a gridded climate dataset (for example
the ERA5 reanalysis or the MERRA-2 surface flux collections) already exist
in a local mirror, fetches the missing ones, and optionally trims the
fetched files down to the variables of interest.

Configuration can be changed by using a configuration file (and providing
the path to the file using the --config flag), by using command-line
arguments, or by setting environment variables in the format 'GEODATA_var'
where 'var' is the name of the variable to be set.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of geodata.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("geodata v%s\n", geodata.Version)
	},
	DisableAutoGenTag: true,
}

// planCmd constructs the dataset plan and reports its completeness
// without fetching anything.
var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Plan a dataset without downloading",
	Long: `plan enumerates the files the configured dataset request expects,
checks which of them already exist in the local mirror, and prints the
resulting completeness summary along with every missing file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := Plan(Cfg)
		if err != nil {
			return err
		}
		cmd.Println(d.String())
		for _, a := range d.ToDownload {
			cmd.Printf("missing %s\n", a.Path)
		}
		cmd.Printf("%d of %d files present\n", len(d.DownloadedFiles), len(d.TotalFiles))
		return nil
	},
	DisableAutoGenTag: true,
}

// getCmd plans the dataset and fetches everything missing.
var getCmd = &cobra.Command{
	Use:   "get",
	Short: "Download the missing files of a dataset",
	Long: `get plans the configured dataset request and dispatches its missing
files to the module's acquisition routine. With --trim, every file is
reduced to the configured variable list after a fully successful pass.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := Plan(Cfg)
		if err != nil {
			return err
		}
		if err := d.GetData(context.Background(), Acquirers(Cfg)); err != nil {
			return err
		}
		if !d.Prepared {
			return fmt.Errorf("geodata: %d files still missing after acquisition", len(d.ToDownload))
		}
		if Cfg.GetBool("trim") {
			return d.TrimVariables(Cfg.GetStringSlice("TrimVariables"))
		}
		return nil
	},
	DisableAutoGenTag: true,
}

// trimCmd trims the locally present files of a dataset.
var trimCmd = &cobra.Command{
	Use:   "trim",
	Short: "Trim mirrored files to a variable allow-list",
	Long: `trim rewrites every locally present file of the configured dataset so
that it contains only the variables of interest, replacing each file
atomically.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := Plan(Cfg)
		if err != nil {
			return err
		}
		return d.TrimVariables(Cfg.GetStringSlice("TrimVariables"))
	},
	DisableAutoGenTag: true,
}
