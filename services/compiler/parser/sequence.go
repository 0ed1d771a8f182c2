// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package parser

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/AleutianAI/blueprint/services/compiler/model"
)

var (
	reSeqStep = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)\s*->>\s*([A-Za-z_][A-Za-z0-9_]*)\s*:\s*([A-Za-z_][A-Za-z0-9_]*)\s*(?:\(([^)]*)\))?\s*$`)
	reSeqRet  = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)\s*-->>\s*([A-Za-z_][A-Za-z0-9_]*)\s*:\s*(.+)$`)
)

// parseSequence consumes the interaction diagram. Each "A->>B: verb(args)"
// line becomes a SequenceStep; the following line is checked for a
// matching "B-->>A: Type" return arrow to populate the step's return type.
// Returns the ignored line count.
func (p *Parser) parseSequence(text string, m *model.ArchitectureModel) int {
	anomalies := 0
	lines := cleanLines(text)

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if line == "sequenceDiagram" || strings.HasPrefix(line, "participant ") {
			continue
		}

		match := reSeqStep.FindStringSubmatch(line)
		if match == nil {
			if reSeqRet.MatchString(line) {
				// Return arrow without a preceding call: nothing to attach
				// it to, skip silently.
				continue
			}
			anomalies++
			p.logger.Debug("ignoring unparseable sequence line", slog.String("line", line))
			continue
		}

		step := model.SequenceStep{
			From:       match[1],
			To:         match[2],
			Action:     match[3],
			Parameters: parseParams(match[4]),
		}

		// Peek at the next line for the paired return arrow B-->>A.
		if i+1 < len(lines) {
			if ret := reSeqRet.FindStringSubmatch(lines[i+1]); ret != nil &&
				ret[1] == step.To && ret[2] == step.From {
				step.ReturnType = normalizeGenerics(strings.TrimSpace(ret[3]))
				i++
			}
		}

		m.SequenceSteps = append(m.SequenceSteps, step)
	}

	return anomalies
}
