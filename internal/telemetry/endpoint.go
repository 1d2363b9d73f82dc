package telemetry

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Transport names an OTLP wire transport.
type Transport string

const (
	TransportGRPC Transport = "grpc"
	TransportHTTP Transport = "http/protobuf"
	// TransportAuto picks the transport from the endpoint port.
	TransportAuto Transport = "auto"
)

// GRPCPort is the IANA port for OTLP over gRPC.
const GRPCPort = 4317

// ErrNoEndpoint is returned by ParseEndpoint for an empty value.
var ErrNoEndpoint = errors.New("endpoint not set")

func (t Transport) valid() bool {
	switch t {
	case TransportGRPC, TransportHTTP, TransportAuto:
		return true
	}
	return false
}

// ParseEndpoint parses an OTLP endpoint URI. A value without a scheme, such
// as "collector:4317", is read as http://collector:4317.
func ParseEndpoint(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrNoEndpoint
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing endpoint: %w", err)
	}
	if u.Hostname() == "" {
		return nil, fmt.Errorf("endpoint %q has no host", raw)
	}
	if p := u.Port(); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n < 1 || n > 65535 {
			return nil, fmt.Errorf("endpoint %q has invalid port %q", raw, p)
		}
	}
	return u, nil
}

// Port returns the explicit port of u, or 0 when it has none.
func Port(u *url.URL) int {
	n, err := strconv.Atoi(u.Port())
	if err != nil {
		return 0
	}
	return n
}

// MetricsTransport selects gRPC when the endpoint port is exactly 4317 and
// HTTP for every other port, including no port at all.
func MetricsTransport(u *url.URL) Transport {
	if Port(u) == GRPCPort {
		return TransportGRPC
	}
	return TransportHTTP
}

// resolve turns TransportAuto into a concrete transport for u.
func (t Transport) resolve(u *url.URL) Transport {
	if t == TransportAuto || t == "" {
		return MetricsTransport(u)
	}
	return t
}

// insecure reports whether the exporter should skip TLS for u.
func insecure(u *url.URL) bool {
	return u.Scheme != "https"
}

// signalPath returns the HTTP path for a signal. Base endpoints get the
// signal suffix appended. Signal-specific endpoints are used as given, so one
// without a path posts to "/".
func signalPath(u *url.URL, suffix string, signalSpecific bool) string {
	path := strings.TrimSuffix(u.Path, "/")
	if signalSpecific {
		if path == "" {
			return "/"
		}
		return path
	}
	return path + suffix
}
