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
	"path"

	"github.com/AleutianAI/blueprint/services/compiler/model"
)

// Output root directories. The composer manages (clears and rebuilds)
// exactly these roots.
const (
	ServerRoot = "server/src"
	ClientRoot = "client/src"
	SharedRoot = "shared/src"
)

// FilePathFor returns the conventional destination path for a unit. The
// conventions mirror a TypeScript full-stack layout: backend layers under
// server/src, frontend layers under client/src, shared utilities under
// shared/src.
func FilePathFor(name string, kind model.UnitKind) string {
	switch kind {
	case model.KindDataEntity:
		return path.Join(ServerRoot, "models", name+".ts")
	case model.KindService:
		return path.Join(ServerRoot, "services", name+".ts")
	case model.KindController:
		return path.Join(ServerRoot, "controllers", name+".ts")
	case model.KindRepository:
		return path.Join(ServerRoot, "repositories", name+".ts")
	case model.KindMiddleware:
		return path.Join(ServerRoot, "middleware", name+".ts")
	case model.KindUIComponent:
		return path.Join(ClientRoot, "components", name+".tsx")
	case model.KindUIPage:
		return path.Join(ClientRoot, "pages", name+".tsx")
	case model.KindHook:
		return path.Join(ClientRoot, "hooks", name+".ts")
	case model.KindUtility:
		return path.Join(SharedRoot, "utils", name+".ts")
	default:
		return path.Join(SharedRoot, name+".ts")
	}
}
