package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kingrea/teamshuffle/internal/roster"
)

// DefaultTimeout bounds a single naming call.
const DefaultTimeout = 20 * time.Second

var errEmptyResponse = errors.New("identity: empty response")

type resilient struct {
	inner   Namer
	timeout time.Duration
	logger  *zap.Logger
}

// Resilient wraps inner so that Name never fails. Any error, panic, timeout or
// response without a single usable identity is replaced by Fallback. Partial
// responses are kept as-is, padded or trimmed to the team count. A nil inner
// always yields Fallback.
func Resilient(inner Namer, timeout time.Duration, logger *zap.Logger) Namer {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &resilient{inner: inner, timeout: timeout, logger: logger}
}

type nameResult struct {
	ids []*Identity
	err error
}

func (r *resilient) Name(ctx context.Context, teams []roster.Team) ([]*Identity, error) {
	if len(teams) == 0 {
		return nil, nil
	}
	if r.inner == nil {
		return Fallback(len(teams)), nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	done := make(chan nameResult, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				done <- nameResult{err: fmt.Errorf("identity: namer panicked: %v", rec)}
			}
		}()
		ids, err := r.inner.Name(ctx, roster.CloneTeams(teams))
		done <- nameResult{ids: ids, err: err}
	}()

	var res nameResult
	select {
	case res = <-done:
	case <-ctx.Done():
		res = nameResult{err: fmt.Errorf("identity: naming timed out: %w", ctx.Err())}
	}
	if res.err == nil {
		res.ids, res.err = normalize(res.ids, len(teams))
	}
	if res.err != nil {
		r.logger.Warn("team naming failed, using fallback identities",
			zap.Int("teams", len(teams)),
			zap.Error(res.err),
		)
		return Fallback(len(teams)), nil
	}
	return res.ids, nil
}

// normalize resizes ids to n, drops entries without a name and gives named
// entries without a slogan the fallback one. It fails when no usable entry
// remains.
func normalize(ids []*Identity, n int) ([]*Identity, error) {
	out := make([]*Identity, n)
	usable := 0
	for i := 0; i < n && i < len(ids); i++ {
		id := ids[i]
		if id == nil {
			continue
		}
		name := strings.TrimSpace(id.Name)
		if name == "" {
			continue
		}
		slogan := strings.TrimSpace(id.Slogan)
		if slogan == "" {
			slogan = FallbackSlogan
		}
		out[i] = &Identity{Name: name, Slogan: slogan}
		usable++
	}
	if usable == 0 {
		return nil, errEmptyResponse
	}
	return out, nil
}
