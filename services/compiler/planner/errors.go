// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package planner

import "errors"

var (
	// ErrNoTasks indicates the model expanded to nothing: no units at all.
	// This is the pipeline's only terminal planning condition.
	ErrNoTasks = errors.New("planner: model produced no tasks")

	// ErrTaskNotFound indicates a generation order entry with no task
	// behind it. Pass A records it as that entry's failure.
	ErrTaskNotFound = errors.New("planner: task not found")
)
