package nets

import (
	"context"
	"net"
	"net/url"
	"os"
	"sync"

	"github.com/reusee/taibox/configs"
	"github.com/reusee/taibox/logs"
	"github.com/reusee/taibox/modes"
	"github.com/reusee/taibox/vars"
	"golang.org/x/net/proxy"
)

// ProxyAddr is a socks5:// URL that remote database connections go through.
type ProxyAddr string

func (p ProxyAddr) ConfigExpr() string {
	return "ProxyAddr"
}

var _ configs.Configurable = ProxyAddr("")

func (Module) ProxyAddr(
	mode modes.Mode,
	loader configs.Loader,
	logger logs.Logger,
) (ret ProxyAddr) {
	defer func() {
		if ret != "" {
			logger.Info("database proxy", "addr", ret)
		}
	}()

	if mode.Local() {
		return ""
	}

	return vars.FirstNonZero(
		configs.First[ProxyAddr](loader, "warehouse_proxy"),
		ProxyAddr(os.Getenv("ALL_PROXY")),
		ProxyAddr(os.Getenv("all_proxy")),
		ProxyAddr(os.Getenv("SOCKS_PROXY")),
		ProxyAddr(os.Getenv("socks_proxy")),
	)
}

type GetProxyDialer func() (Dialer, error)

func (Module) GetProxyDialer(
	proxyAddr ProxyAddr,
) GetProxyDialer {
	return sync.OnceValues(func() (Dialer, error) {
		return ProxyDialer(proxyAddr)
	})
}

// ProxyDialer builds the dialer for addr, a direct dialer if addr is empty.
func ProxyDialer(addr ProxyAddr) (Dialer, error) {
	direct := &net.Dialer{}
	if addr == "" {
		return direct, nil
	}
	u, err := url.Parse(string(addr))
	if err != nil {
		return nil, err
	}
	if u.Scheme == "socks" {
		u.Scheme = "socks5"
	}
	d, err := proxy.FromURL(u, direct)
	if err != nil {
		return nil, err
	}
	ctxDialer, ok := d.(proxy.ContextDialer)
	if !ok {
		return DialerFunc(func(_ context.Context, network, addr string) (net.Conn, error) {
			return d.Dial(network, addr)
		}), nil
	}
	return ctxDialer, nil
}
