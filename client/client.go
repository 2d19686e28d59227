// Package client is a thin wrapper around session.Session giving the interactive
// CLI (and anything else embedding this module) a typed request/response API
// instead of raw packet construction.
package client

import (
	"context"
	"fmt"
	"net"
	"time"

	"LatticeDB/protocol"
	"LatticeDB/session"
	"LatticeDB/types"
)

// DefaultRequestTimeout bounds how long a single request waits for its response.
const DefaultRequestTimeout = 10 * time.Second

// Client is a connected, possibly-authenticated session to one server.
type Client struct {
	sess *session.Session
}

// Connect dials addr, starts polling, and authenticates with apiKey. It returns an
// error if the dial, the auth round trip, or authentication itself fails.
func Connect(addr, apiKey string) (*Client, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("client: dial %s: %w", addr, err)
	}

	sess := session.New(conn)
	sess.StartPolling()
	c := &Client{sess: sess}

	resp, err := c.request(&protocol.AuthRequest{APIKey: apiKey})
	if err != nil {
		sess.End(nil)
		return nil, err
	}
	ar, ok := resp.(*protocol.AuthResponse)
	if !ok {
		sess.End(nil)
		return nil, fmt.Errorf("client: unexpected response to AuthRequest: %T", resp)
	}
	if ar.Status != protocol.StatusSuccess {
		sess.End(nil)
		return nil, fmt.Errorf("client: authentication failed")
	}
	return c, nil
}

// Close ends the underlying session.
func (c *Client) Close() {
	c.sess.End(nil)
}

// Add inserts or overwrites key with a string value.
func (c *Client) Add(key, value string) error {
	resp, err := c.request(&protocol.DataAdditionRequest{Key: key, ValueKind: types.ValueString, ValueRaw: []byte(value)})
	if err != nil {
		return err
	}
	dr, ok := resp.(*protocol.DataAdditionResponse)
	if !ok {
		return fmt.Errorf("client: unexpected response to DataAdditionRequest: %T", resp)
	}
	if dr.Status != protocol.StatusSuccess {
		return errorCodeErr(dr.ErrorCode)
	}
	return nil
}

// Find looks up key and returns its current value. ok is false only when the key
// is absent; any other failure is returned as an error.
func (c *Client) Find(key string) (value types.Value, ok bool, err error) {
	resp, err := c.request(&protocol.DataRequest{Key: key})
	if err != nil {
		return types.Value{}, false, err
	}
	dr, isData := resp.(*protocol.DataResponse)
	if !isData {
		return types.Value{}, false, fmt.Errorf("client: unexpected response to DataRequest: %T", resp)
	}
	if dr.Status != protocol.StatusSuccess {
		if dr.ErrorCode == protocol.ErrorKeyNotFound {
			return types.Value{}, false, nil
		}
		return types.Value{}, false, errorCodeErr(dr.ErrorCode)
	}
	return types.Value{Kind: dr.ValueKind, Raw: dr.ValueRaw}, true, nil
}

// Remove deletes key. Removing an absent key is not an error.
func (c *Client) Remove(key string) error {
	resp, err := c.request(&protocol.DataRemovalRequest{Key: key})
	if err != nil {
		return err
	}
	dr, ok := resp.(*protocol.DataRemovalResponse)
	if !ok {
		return fmt.Errorf("client: unexpected response to DataRemovalRequest: %T", resp)
	}
	if dr.Status != protocol.StatusSuccess {
		return errorCodeErr(dr.ErrorCode)
	}
	return nil
}

func (c *Client) request(p protocol.Packet) (protocol.Packet, error) {
	future, err := c.sess.SendRequest(p)
	if err != nil {
		return nil, fmt.Errorf("client: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), DefaultRequestTimeout)
	defer cancel()
	resp, err := future.Wait(ctx)
	if err != nil {
		return nil, fmt.Errorf("client: %w", err)
	}
	return resp, nil
}

func errorCodeErr(code byte) error {
	switch code {
	case protocol.ErrorAuthRequired:
		return fmt.Errorf("client: not authenticated")
	case protocol.ErrorKeyNotFound:
		return fmt.Errorf("client: key not found")
	case protocol.ErrorUnexpectedError:
		return fmt.Errorf("client: server reported an unexpected error")
	default:
		return fmt.Errorf("client: server reported error code 0x%02x", code)
	}
}
