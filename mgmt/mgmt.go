// Package mgmt provides a JSON-RPC 2.0 management server: the runtime
// façade exposed to the control plane.
package mgmt

import (
	"fmt"
	"net"
	"net/rpc"
	"net/url"
	"os"
	"reflect"
	"strings"
	"sync"

	"github.com/powerman/rpc-codec/jsonrpc2"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/flexsw/flexsw/core/logging"
)

var logger = logging.New("mgmt")

// Server is the shared RPC server that management modules register on.
var Server = rpc.NewServer()

// Register adds a management module to the server.
// The RPC service name is the module's type name with the Mgmt suffix trimmed.
func Register(mg interface{}) error {
	typeName := reflect.TypeOf(mg).Name()
	name := strings.TrimSuffix(typeName, "Mgmt")
	return Server.RegisterName(name, mg)
}

var (
	mu        sync.Mutex
	listener  net.Listener
	isClosing bool
)

// Start begins serving management requests.
// The listen address comes from the MGMT environment variable, a unix: or
// tcp: URL; MGMT=0 disables the server.
func Start() error {
	mu.Lock()
	defer mu.Unlock()
	if listener != nil {
		return fmt.Errorf("already started")
	}

	mgmtEnv := os.Getenv("MGMT")
	if mgmtEnv == "0" {
		return nil
	}
	if mgmtEnv == "" {
		mgmtEnv = "unix:///var/run/flexsw-mgmt.sock"
	}

	u, e := url.Parse(mgmtEnv)
	if e != nil {
		return fmt.Errorf("MGMT environ parse error %w", e)
	}

	var addr string
	switch u.Scheme {
	case "unix":
		addr = u.Path
		os.Remove(addr)
	case "tcp", "tcp4", "tcp6":
		addr = u.Host
	default:
		return fmt.Errorf("unsupported MGMT scheme %s", u.Scheme)
	}

	listener, e = net.Listen(u.Scheme, addr)
	if e != nil {
		return fmt.Errorf("cannot listen on %s %s: %w", u.Scheme, addr, e)
	}

	isClosing = false
	logger.Info("management server listening", zap.String("addr", mgmtEnv))
	go serve(listener)
	return nil
}

func serve(l net.Listener) {
	for {
		conn, e := l.Accept()
		if e != nil {
			mu.Lock()
			closing := isClosing
			mu.Unlock()
			if closing {
				break
			}
			logger.Warn("accept failed", zap.Error(e))
			break
		}
		go Server.ServeCodec(jsonrpc2.NewServerCodec(conn, Server))
	}
	mu.Lock()
	listener = nil
	isClosing = false
	mu.Unlock()
}

// Stop shuts the management server down.
func Stop() error {
	mu.Lock()
	defer mu.Unlock()
	if listener == nil {
		return nil
	}
	isClosing = true
	return multierr.Append(nil, listener.Close())
}
