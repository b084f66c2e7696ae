package ops

import (
	"context"
	"errors"

	"github.com/nicklasfrahm/shex/pkg/config"
	"github.com/nicklasfrahm/shex/pkg/rexec"
)

// HostStatus is the outcome of probing a host.
type HostStatus struct {
	Host      string
	Reachable bool
	// Login is the user name the host reported, empty if unreachable.
	Login string
}

// Probe checks one host after another and reports which of them are
// reachable, in the order of the hosts.
func Probe(ctx context.Context, hosts []string, force bool, options ...Option) ([]HostStatus, error) {
	if len(hosts) == 0 {
		return nil, errors.New("no hosts to probe")
	}

	statuses := make([]HostStatus, 0, len(hosts))

	err := withEngine(options, func(eng *rexec.Engine, _ *config.Config) error {
		for _, host := range hosts {
			ok, err := eng.Probe(ctx, host, force)
			if err != nil {
				return err
			}

			login, _ := eng.Cache().Lookup(host)
			statuses = append(statuses, HostStatus{Host: host, Reachable: ok, Login: login})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return statuses, nil
}
