// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package generate

import "strings"

// Sanitize extracts source code from a collaborator response. The
// extraction is deterministic: given the same response text it always
// returns the same content.
//
// If the response contains fenced code blocks, the largest block wins and
// all surrounding prose is dropped. Without fences the whole response is
// kept, trimmed. A trailing newline is always present.
func Sanitize(response string) string {
	response = strings.ReplaceAll(response, "\r\n", "\n")

	blocks := fencedBlocks(response)
	var content string
	if len(blocks) > 0 {
		content = blocks[0]
		for _, b := range blocks[1:] {
			if len(b) > len(content) {
				content = b
			}
		}
	} else {
		content = response
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return ""
	}
	return content + "\n"
}

// fencedBlocks returns the contents of every ``` fenced block, language
// tags stripped. Unclosed trailing fences are treated as extending to the
// end of the response.
func fencedBlocks(s string) []string {
	var blocks []string
	lines := strings.Split(s, "\n")
	var current []string
	inBlock := false

	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			if inBlock {
				blocks = append(blocks, strings.Join(current, "\n"))
				current = nil
			}
			inBlock = !inBlock
			continue
		}
		if inBlock {
			current = append(current, line)
		}
	}
	if inBlock && len(current) > 0 {
		blocks = append(blocks, strings.Join(current, "\n"))
	}
	return blocks
}
