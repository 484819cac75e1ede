// Package network answers "is a usable network active right now".
package network

import (
	"log/slog"
	"net"
	"strings"
)

// Transport is the kind of link behind an interface
type Transport int

const (
	TransportOther Transport = iota
	TransportWiFi
	TransportCellular
	TransportEthernet
)

func (t Transport) String() string {
	switch t {
	case TransportWiFi:
		return "wifi"
	case TransportCellular:
		return "cellular"
	case TransportEthernet:
		return "ethernet"
	default:
		return "other"
	}
}

// Interface is the subset of net.Interface the checker looks at
type Interface struct {
	Name  string
	Flags net.Flags
	// HasAddr reports that at least one unicast address is assigned
	HasAddr bool
}

// InterfaceSource lists the host's interfaces
type InterfaceSource func() ([]Interface, error)

// Checker reports reachability from the host's active interfaces.
// It is a point-in-time query; no connection is attempted.
type Checker struct {
	source InterfaceSource
	logger *slog.Logger
}

// NewChecker creates a checker backed by net.Interfaces
func NewChecker(logger *slog.Logger) *Checker {
	return NewCheckerWithSource(SystemInterfaces, logger)
}

// NewCheckerWithSource creates a checker with a custom interface source
func NewCheckerWithSource(source InterfaceSource, logger *slog.Logger) *Checker {
	return &Checker{
		source: source,
		logger: logger.With("component", "reachability"),
	}
}

// Available reports whether an active WiFi, cellular or ethernet link exists.
// Errors listing interfaces count as unavailable.
func (c *Checker) Available() bool {
	ifaces, err := c.source()
	if err != nil {
		c.logger.Warn("failed to list network interfaces", "error", err)
		return false
	}

	for _, iface := range ifaces {
		if !active(iface) {
			continue
		}
		if t := Classify(iface.Name); t != TransportOther {
			c.logger.Debug("network available", "interface", iface.Name, "transport", t.String())
			return true
		}
	}
	return false
}

func active(iface Interface) bool {
	return iface.Flags&net.FlagUp != 0 &&
		iface.Flags&net.FlagLoopback == 0 &&
		iface.HasAddr
}

var prefixes = []struct {
	prefix    string
	transport Transport
}{
	{"wlan", TransportWiFi},
	{"wlp", TransportWiFi},
	{"wifi", TransportWiFi},
	{"wl", TransportWiFi},
	{"wwan", TransportCellular},
	{"rmnet", TransportCellular},
	{"ccmni", TransportCellular},
	{"pdp_ip", TransportCellular},
	{"ppp", TransportCellular},
	{"eth", TransportEthernet},
	{"enp", TransportEthernet},
	{"eno", TransportEthernet},
	{"ens", TransportEthernet},
	{"en", TransportEthernet},
	{"em", TransportEthernet},
}

// Classify maps an interface name to a transport by its conventional prefix
func Classify(name string) Transport {
	lower := strings.ToLower(name)
	for _, p := range prefixes {
		if strings.HasPrefix(lower, p.prefix) {
			return p.transport
		}
	}
	return TransportOther
}

// SystemInterfaces reads interfaces from the operating system
func SystemInterfaces() ([]Interface, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	out := make([]Interface, 0, len(ifaces))
	for _, iface := range ifaces {
		addrs, err := iface.Addrs()
		out = append(out, Interface{
			Name:    iface.Name,
			Flags:   iface.Flags,
			HasAddr: err == nil && len(addrs) > 0,
		})
	}
	return out, nil
}
