package nets

import (
	"context"
	"net"
)

// IsLocalAddr reports whether addr resolves to loopback or private space.
// Unix sockets are local. Lookup failures count as remote.
type IsLocalAddr func(ctx context.Context, addr string) (bool, error)

func (Module) IsLocalAddr() IsLocalAddr {
	var resolver net.Resolver
	return func(ctx context.Context, addr string) (bool, error) {
		host, _, err := net.SplitHostPort(addr)
		if err != nil {
			host = addr
		}
		if host == "" || host[0] == '/' {
			return true, nil
		}

		if ip := net.ParseIP(host); ip != nil {
			return ip.IsLoopback() || ip.IsPrivate(), nil
		}

		addrs, err := resolver.LookupIPAddr(ctx, host)
		if err != nil {
			return false, nil
		}
		for _, a := range addrs {
			if a.IP.IsLoopback() || a.IP.IsPrivate() {
				return true, nil
			}
		}
		return false, nil
	}
}
