// Package instance models the on-disk game instances (clients and servers)
// that runtimes and loaders are provisioned into.
package instance

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/provide-io/craftkit/pkg/config"
)

// Selection names an instance and says whether it is a server.
type Selection struct {
	Name   string
	Server bool
}

// Client selects a client instance.
func Client(name string) Selection { return Selection{Name: name} }

// Server selects a server instance.
func Server(name string) Selection { return Selection{Name: name, Server: true} }

func (s Selection) String() string {
	if s.Server {
		return "server:" + s.Name
	}
	return "instance:" + s.Name
}

// Validate rejects names that would resolve outside the instances directory.
func (s Selection) Validate() error {
	if s.Name == "" || s.Name == "." || s.Name == ".." ||
		strings.ContainsAny(s.Name, `/\`) {
		return fmt.Errorf("invalid instance name %q", s.Name)
	}
	return nil
}

// Dir is <launcher>/instances/<name> or <launcher>/servers/<name>.
func (s Selection) Dir(cfg *config.Config) string {
	if s.Server {
		return filepath.Join(cfg.ServersDir(), s.Name)
	}
	return filepath.Join(cfg.InstancesDir(), s.Name)
}

// ModsDir is where loader mods are dropped for this instance.
func (s Selection) ModsDir(cfg *config.Config) string {
	if s.Server {
		return filepath.Join(s.Dir(cfg), "mods")
	}
	return filepath.Join(s.Dir(cfg), ".minecraft", "mods")
}
