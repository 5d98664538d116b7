package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rbright/koe/internal/config"
	"github.com/rbright/koe/internal/ipc"
)

// ResolveHandler answers IPC ping and resolve requests from a registry, so
// other local processes can resolve the published module.
func ResolveHandler(r *Registry) ipc.Handler {
	return ipc.HandlerFunc(func(_ context.Context, req ipc.Request) ipc.Response {
		switch req.Command {
		case ipc.CommandPing:
			return ipc.Response{OK: true, Message: "pong"}
		case ipc.CommandResolve:
			return resolve(r, req)
		default:
			return ipc.Response{OK: false, Error: fmt.Sprintf("unknown command %q", req.Command)}
		}
	})
}

func resolve(r *Registry, req ipc.Request) ipc.Response {
	module := strings.TrimSpace(req.Module)
	if module == "" {
		module = ModuleName
	}

	cfg, ok := r.Resolve(module)
	if !ok {
		return ipc.Response{OK: false, Error: fmt.Sprintf("module %q is not published", module)}
	}

	node, err := config.Section(cfg, req.Section)
	if err != nil {
		return ipc.Response{OK: false, Error: err.Error()}
	}
	payload, err := json.Marshal(node)
	if err != nil {
		return ipc.Response{OK: false, Error: fmt.Sprintf("encode config: %v", err)}
	}
	return ipc.Response{OK: true, Config: payload}
}
