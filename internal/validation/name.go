// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package validation

import (
	"fmt"
	"regexp"
)

// names of definitions and states are identifiers that show up in traces and reports
var namePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_.\-]*$`)

// nameValidator checks that a definition or state name is printable in a trace line
type nameValidator struct {
	kind string
	name string
}

var _ Validator = (*nameValidator)(nil)

// NewNameValidator creates a validator for the name of the given kind, e.g. "state"
func NewNameValidator(kind, name string) Validator {
	return &nameValidator{kind: kind, name: name}
}

// Validate executes the validation
func (x *nameValidator) Validate() error {
	if x.name == "" {
		return fmt.Errorf("%s name is required", x.kind)
	}
	if !namePattern.MatchString(x.name) {
		return fmt.Errorf("invalid %s name (%s): must start with a letter and contain only [a-zA-Z0-9_.-]", x.kind, x.name)
	}
	return nil
}
