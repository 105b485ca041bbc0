// Package resolver turns the host portion of a peer address into the address
// the node dials. The default resolver treats every host as already resolved.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/miekg/dns"
)

// ErrNoRecord is returned when the name server has no address for the host.
var ErrNoRecord = errors.New("no address record for host")

// Resolver represents the behavior required to resolve a peer host.
type Resolver interface {
	Resolve(ctx context.Context, host string) (string, error)
}

// =============================================================================

// Passthrough returns every host unchanged.
type Passthrough struct{}

// Resolve implements the Resolver interface.
func (Passthrough) Resolve(ctx context.Context, host string) (string, error) {
	return host, nil
}

// =============================================================================

// DNS resolves host names to IPv4 addresses by asking a single name server
// for the A record of the host.
type DNS struct {
	server string
	client *dns.Client
}

// NewDNS constructs a resolver that queries the name server at the specified
// host:port address.
func NewDNS(server string, timeout time.Duration) *DNS {
	return &DNS{
		server: server,
		client: &dns.Client{
			Net:     "udp",
			Timeout: timeout,
		},
	}
}

// Resolve implements the Resolver interface. IP literals are returned as is.
func (d *DNS) Resolve(ctx context.Context, host string) (string, error) {
	if net.ParseIP(host) != nil {
		return host, nil
	}

	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(host), dns.TypeA)
	msg.RecursionDesired = true

	resp, _, err := d.client.ExchangeContext(ctx, msg, d.server)
	if err != nil {
		return "", fmt.Errorf("query %s: %w", host, err)
	}

	if resp.Rcode != dns.RcodeSuccess {
		return "", fmt.Errorf("query %s: %s: %w", host, dns.RcodeToString[resp.Rcode], ErrNoRecord)
	}

	for _, rr := range resp.Answer {
		if a, ok := rr.(*dns.A); ok {
			return a.A.String(), nil
		}
	}

	return "", fmt.Errorf("query %s: %w", host, ErrNoRecord)
}
