package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"
)

var (
	ErrUnavailable = errors.New("gatt bridge unavailable")
	ErrNoName      = errors.New("device exposed no name")
)

// GATTResolver resolves advertised device names through a companion GATT
// bridge: a small daemon with radio access that performs the actual
// connect-and-read of the Device Name characteristic. The wire protocol is
// one JSON request and one JSON response per connection.
type GATTResolver struct {
	addr   string
	dialer net.Dialer
}

type resolveRequest struct {
	MAC    string `json:"mac"`
	Handle uint16 `json:"handle"`
}

type resolveResponse struct {
	Name  string `json:"name"`
	Error string `json:"error,omitempty"`
}

// deviceNameHandle is the GATT handle of the Device Name characteristic
// the bridge reads after connecting.
const deviceNameHandle = 0x0003

// NewGATTResolver creates a resolver talking to the bridge at addr.
func NewGATTResolver(addr string) *GATTResolver {
	return &GATTResolver{addr: addr}
}

// Resolve asks the bridge for the device name. The ctx deadline bounds the
// whole round trip; the caller treats any error as a soft failure.
func (r *GATTResolver) Resolve(ctx context.Context, mac string) (string, error) {
	conn, err := r.dialer.DialContext(ctx, "tcp", r.addr)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return "", err
		}
	} else {
		// Never let a resolve hang forever, deadline or not.
		if err := conn.SetDeadline(time.Now().Add(5 * time.Second)); err != nil {
			return "", err
		}
	}

	req := resolveRequest{MAC: mac, Handle: deviceNameHandle}
	if err := json.NewEncoder(conn).Encode(req); err != nil {
		return "", fmt.Errorf("write to gatt bridge: %w", err)
	}

	var resp resolveResponse
	if err := json.NewDecoder(conn).Decode(&resp); err != nil {
		return "", fmt.Errorf("read from gatt bridge: %w", err)
	}
	if resp.Error != "" {
		return "", fmt.Errorf("gatt bridge: %s", resp.Error)
	}
	if resp.Name == "" {
		return "", ErrNoName
	}
	return resp.Name, nil
}
