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

const maxNameLength = 255

// namePattern accepts qualified identifiers such as "Document", "content.Article" or "audit-trail".
var namePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_.\-]*$`)

// nameValidator validates type and property names.
type nameValidator struct {
	name      string
	customErr error
}

var _ Validator = (*nameValidator)(nil)

// NewNameValidator creates a validator for a type or property name.
//
// The name must:
//   - Be no more than 255 characters long.
//   - Start with a letter [a-zA-Z].
//   - Contain only alphanumeric characters, '_', '.' or '-' thereafter.
//
// Violations are reported wrapping customErr.
func NewNameValidator(name string, customErr error) Validator {
	return &nameValidator{name: name, customErr: customErr}
}

// Validate executes the validation
func (x *nameValidator) Validate() error {
	return New(FailFast()).
		AddValidator(ValidatorFunc(func() error {
			if x.name == "" || len(x.name) > maxNameLength {
				return fmt.Errorf("name=(%.32s) must be between 1 and %d characters: %w", x.name, maxNameLength, x.customErr)
			}
			return nil
		})).
		AddValidator(ValidatorFunc(func() error {
			if !namePattern.MatchString(x.name) {
				return fmt.Errorf("name=(%s) contains invalid characters: %w", x.name, x.customErr)
			}
			return nil
		})).
		Validate()
}
