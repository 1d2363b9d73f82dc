package telemetry

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEndpoint(t *testing.T) {
	tests := []struct {
		raw      string
		wantHost string
		wantErr  bool
	}{
		{raw: "http://localhost:4317", wantHost: "localhost:4317"},
		{raw: "https://otel.example.com:4318/v1/metrics", wantHost: "otel.example.com:4318"},
		{raw: "collector:4317", wantHost: "collector:4317"},
		{raw: "  http://collector:4318  ", wantHost: "collector:4318"},
		{raw: "http://[::1]:4317", wantHost: "[::1]:4317"},
		{raw: "http://collector", wantHost: "collector"},
		{raw: "", wantErr: true},
		{raw: "http://", wantErr: true},
		{raw: "http://:4317", wantErr: true},
		{raw: "http://bad host:4317", wantErr: true},
		{raw: "http://collector:99999", wantErr: true},
		{raw: "http://collector:0", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			u, err := ParseEndpoint(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, u)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantHost, u.Host)
		})
	}
}

func TestParseEndpoint_Empty(t *testing.T) {
	_, err := ParseEndpoint("   ")
	assert.ErrorIs(t, err, ErrNoEndpoint)
}

func TestMetricsTransport(t *testing.T) {
	tests := []struct {
		raw  string
		want Transport
	}{
		{"http://localhost:4317", TransportGRPC},
		{"https://collector:4317/v1/metrics", TransportGRPC},
		{"collector:4317", TransportGRPC},
		{"http://localhost:4318", TransportHTTP},
		{"http://localhost:4318/v1/metrics", TransportHTTP},
		{"http://localhost:43170", TransportHTTP},
		{"http://localhost:14317", TransportHTTP},
		{"https://collector", TransportHTTP},
		{"http://localhost:80", TransportHTTP},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			u, err := ParseEndpoint(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, MetricsTransport(u))
		})
	}
}

func TestTransport_Resolve(t *testing.T) {
	grpcURL, err := ParseEndpoint("http://collector:4317")
	require.NoError(t, err)
	httpURL, err := ParseEndpoint("http://collector:4318")
	require.NoError(t, err)

	assert.Equal(t, TransportGRPC, TransportAuto.resolve(grpcURL))
	assert.Equal(t, TransportHTTP, TransportAuto.resolve(httpURL))
	assert.Equal(t, TransportHTTP, Transport("").resolve(httpURL))
	assert.Equal(t, TransportGRPC, TransportGRPC.resolve(httpURL), "explicit protocol ignores port")
	assert.Equal(t, TransportHTTP, TransportHTTP.resolve(grpcURL), "explicit protocol ignores port")
}

func TestSignalPath(t *testing.T) {
	tests := []struct {
		raw            string
		signalSpecific bool
		want           string
	}{
		{"http://collector:4318", false, "/v1/traces"},
		{"http://collector:4318/", false, "/v1/traces"},
		{"http://collector:4318/otlp", false, "/otlp/v1/traces"},
		{"http://collector:4318", true, "/"},
		{"http://collector:4318/", true, "/"},
		{"http://collector:4318/custom/metrics", true, "/custom/metrics"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/specific=%t", tt.raw, tt.signalSpecific), func(t *testing.T) {
			u, err := ParseEndpoint(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, signalPath(u, tracesPath, tt.signalSpecific))
		})
	}
}

func TestInsecure(t *testing.T) {
	plain, err := ParseEndpoint("http://collector:4317")
	require.NoError(t, err)
	tls, err := ParseEndpoint("https://collector:4317")
	require.NoError(t, err)

	assert.True(t, insecure(plain))
	assert.False(t, insecure(tls))
}
