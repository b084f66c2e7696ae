package rexec

import (
	"context"
	"strings"
)

// identityCommand prints the login name. It is used instead of
// "who am i", which prints nothing without a terminal.
const identityCommand = "whoami"

// Probe reports whether host is reachable. The answer is cached: a host is
// only contacted if it is not cached yet or if force is set, in which case
// the cached entry is dropped first. Hosts that do not answer are not
// cached. Concurrent probes of the same host share one round trip.
func (e *Engine) Probe(ctx context.Context, host string, force bool) (bool, error) {
	if force {
		e.cache.Invalidate(host)
	}

	if _, ok := e.cache.Lookup(host); ok {
		return true, nil
	}

	// The shared round trip outlives callers that give up waiting for it.
	shared := context.WithoutCancel(ctx)
	done := e.probes.DoChan(host, func() (any, error) {
		// Run rather than MustRun, an unreachable host is an answer.
		result, err := e.Run(shared, identityCommand, Params{Host: host})
		if err != nil {
			return nil, err
		}

		if login := strings.TrimSpace(result.Stdout); login != "" {
			e.cache.Store(host, login)
			e.Logger.Debug().Str("host", host).Str("login", login).Msg("Host is reachable")
		} else {
			e.Logger.Debug().Str("host", host).Int("status", result.Status).Msg("Host is unreachable")
		}

		return nil, nil
	})

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case res := <-done:
		if res.Err != nil {
			return false, res.Err
		}
	}

	_, ok := e.cache.Lookup(host)
	return ok, nil
}
