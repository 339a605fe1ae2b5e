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

import "fmt"

// ConfigurationError reports a dataset request that cannot be planned:
// a missing required field, a malformed bounds specification, or a variant
// that requires information the caller did not supply. It is fatal to
// Dataset construction; no partially initialized Dataset is returned.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("geodata: configuration field %q: %s", e.Field, e.Reason)
}

// TemplateError reports a filename or URL template that references a field
// not supplied by the temporal key feeding it. It indicates a mismatch
// between a dataset variant's templates and its declared file granularity.
type TemplateError struct {
	Template string
	Field    string
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("geodata: template %q references unavailable field %q", e.Template, e.Field)
}

// UnsupportedModuleError reports an acquisition dispatch for which no
// routine is available.
type UnsupportedModuleError struct {
	Module string
}

func (e *UnsupportedModuleError) Error() string {
	return fmt.Sprintf("geodata: no acquisition routine for module %q", e.Module)
}
