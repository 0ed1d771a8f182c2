// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package registry

import "errors"

// Sentinel errors for the registry package.
var (
	// ErrInvalidSymbol is returned when a symbol fails validation.
	ErrInvalidSymbol = errors.New("invalid symbol")

	// ErrDuplicateSymbol is returned when a symbol ID is already registered.
	ErrDuplicateSymbol = errors.New("symbol already registered")

	// ErrSymbolNotFound is returned when a referenced symbol doesn't exist.
	ErrSymbolNotFound = errors.New("symbol not found")

	// ErrNilModel is returned when a nil architecture model is supplied.
	ErrNilModel = errors.New("architecture model must not be nil")
)
