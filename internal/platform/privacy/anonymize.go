// Package privacy masks client network addresses before they reach logs.
package privacy

import (
	"net"
	"net/netip"
)

const (
	ipv4Bits = 24
	ipv6Bits = 48
)

// AnonymizeIP keeps the /24 network of an IPv4 address or the /48 prefix of
// an IPv6 address: "192.168.1.47" becomes "192.168.1.0". Empty input yields
// "unknown" and unparseable input yields "invalid".
func AnonymizeIP(ip string) string {
	if ip == "" || ip == "unknown" {
		return "unknown"
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return "invalid"
	}
	addr = addr.Unmap()
	bits := ipv6Bits
	if addr.Is4() {
		bits = ipv4Bits
	}
	prefix, err := addr.WithZone("").Prefix(bits)
	if err != nil {
		return "invalid"
	}
	return prefix.Addr().String()
}

// AnonymizeRemoteAddr anonymizes the host of an http.Request RemoteAddr,
// which usually carries a port.
func AnonymizeRemoteAddr(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}
	return AnonymizeIP(host)
}
