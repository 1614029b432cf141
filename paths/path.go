package paths

import (
	"context"

	"github.com/pyama86/YASE/domain/entity"
)

// Path delivers one escalation event to its recipient.
type Path interface {
	Escalate(ctx context.Context, event *entity.EscalationEvent) error
}

// Registry holds the paths that are actually configured. Lookups for an
// unconfigured type report absence instead of returning a nil Path.
type Registry map[entity.PathType]Path

func (r Registry) Register(t entity.PathType, p Path) {
	if p == nil {
		return
	}
	r[t] = p
}

func (r Registry) Get(t entity.PathType) (Path, bool) {
	p, ok := r[t]
	if !ok || p == nil {
		return nil, false
	}
	return p, true
}
