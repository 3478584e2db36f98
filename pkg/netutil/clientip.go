// Package netutil classifies client addresses for network risk analysis.
package netutil

import (
	"fmt"
	"net/netip"
	"strings"
)

// NormalizeIP strips a port and surrounding whitespace from a client address
// as reported by the connection layer.
// Handles IPv4 ("1.2.3.4:8080"), bracketed IPv6 ("[::1]:8080"),
// and bare IPv6 ("::1") without mangling.
func NormalizeIP(addr string) string {
	return strings.Trim(stripPort(strings.TrimSpace(addr)), "[]")
}

// stripPort removes the port portion from an address string.
func stripPort(addr string) string {
	idx := strings.LastIndex(addr, ":")
	if idx == -1 {
		return addr
	}

	// IPv6 with brackets: [::1]:port
	if strings.Contains(addr, "[") {
		if closeIdx := strings.LastIndex(addr, "]"); closeIdx != -1 && closeIdx < idx {
			return addr[:idx]
		}
		return addr
	}

	// Bare IPv6 (multiple colons, no brackets): return as-is
	if strings.Count(addr, ":") > 1 {
		return addr
	}

	// IPv4: 1.2.3.4:port
	return addr[:idx]
}

// Classifier decides whether an address belongs to a trusted network.
// Loopback and private (RFC 1918 / RFC 4193) ranges are always trusted;
// extra prefixes extend that set. A Classifier is immutable and safe for
// concurrent use.
type Classifier struct {
	extra []netip.Prefix
}

// NewClassifier parses CIDR strings into a Classifier.
func NewClassifier(cidrs ...string) (*Classifier, error) {
	c := &Classifier{}
	for _, cidr := range cidrs {
		cidr = strings.TrimSpace(cidr)
		if cidr == "" {
			continue
		}
		p, err := netip.ParsePrefix(cidr)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted network %q: %w", cidr, err)
		}
		c.extra = append(c.extra, p.Masked())
	}
	return c, nil
}

// IsTrusted reports whether addr is loopback, private or inside an extra
// trusted prefix. Unparseable addresses are never trusted.
func (c *Classifier) IsTrusted(addr string) bool {
	ip, ok := parse(addr)
	if !ok {
		return false
	}
	if IsLocal(ip) {
		return true
	}
	if c == nil {
		return false
	}
	for _, p := range c.extra {
		if p.Contains(ip) {
			return true
		}
	}
	return false
}

// IsLocalAddr reports whether addr is loopback or private.
func IsLocalAddr(addr string) bool {
	ip, ok := parse(addr)
	return ok && IsLocal(ip)
}

// IsLocal reports whether ip is loopback or private.
func IsLocal(ip netip.Addr) bool {
	return ip.IsLoopback() || ip.IsPrivate()
}

func parse(addr string) (netip.Addr, bool) {
	ip, err := netip.ParseAddr(NormalizeIP(addr))
	if err != nil {
		return netip.Addr{}, false
	}
	return ip.Unmap(), true
}
