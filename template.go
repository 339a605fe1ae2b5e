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
	"strconv"
	"strings"
)

// TemporalKey addresses one artifact within a dataset's time range.
// Month and Day are zero when the owning granularity does not use them.
type TemporalKey struct {
	Year  int
	Month int
	Day   int
}

// fields returns the named substitution fields available for this key.
// spinup, when non-empty, is the module's derived spinup code for the
// key's year.
func (k TemporalKey) fields(spinup string) map[string]string {
	f := map[string]string{"year": strconv.Itoa(k.Year)}
	if k.Month != 0 {
		f["month"] = strconv.Itoa(k.Month)
	}
	if k.Day != 0 {
		f["day"] = strconv.Itoa(k.Day)
	}
	if spinup != "" {
		f["spinup"] = spinup
	}
	return f
}

// Render substitutes the fields of key into the named placeholders of tmpl.
// Placeholders take the form {name} or {name:0>width}, where the latter
// zero-pads the value on the left to the requested width (the same syntax
// the dataset templates use upstream, e.g. "{year}/{month:0>2}/flux.nc").
// Render is pure: it is the single substitution point shared by local path
// and source URL resolution, so the two cannot drift apart for one key.
// A placeholder naming a field not present in the key fails with a
// *TemplateError rather than defaulting.
func Render(tmpl string, key TemporalKey, spinup string) (string, error) {
	fields := key.fields(spinup)
	var b strings.Builder
	s := tmpl
	for {
		i := strings.IndexByte(s, '{')
		if i < 0 {
			b.WriteString(s)
			return b.String(), nil
		}
		b.WriteString(s[:i])
		s = s[i+1:]
		j := strings.IndexByte(s, '}')
		if j < 0 {
			return "", &TemplateError{Template: tmpl, Field: "{" + s}
		}
		name, pad := s[:j], ""
		if k := strings.IndexByte(name, ':'); k >= 0 {
			name, pad = name[:k], name[k+1:]
		}
		val, ok := fields[name]
		if !ok {
			return "", &TemplateError{Template: tmpl, Field: name}
		}
		padded, err := applyPad(val, pad)
		if err != nil {
			return "", &TemplateError{Template: tmpl, Field: s[:j]}
		}
		b.WriteString(padded)
		s = s[j+1:]
	}
}

// applyPad applies a "0>width" format spec to val. An empty spec returns
// val unchanged.
func applyPad(val, spec string) (string, error) {
	if spec == "" {
		return val, nil
	}
	if !strings.HasPrefix(spec, "0>") {
		return "", strconv.ErrSyntax
	}
	width, err := strconv.Atoi(spec[2:])
	if err != nil {
		return "", err
	}
	for len(val) < width {
		val = "0" + val
	}
	return val, nil
}
