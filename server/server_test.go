package server

import (
	"context"
	"net"
	"testing"
	"time"

	"go.uber.org/zap"

	"LatticeDB/protocol"
	"LatticeDB/session"
	"LatticeDB/store"
)

func startTestServer(t *testing.T, apiKey string) (addr string, stop func()) {
	t.Helper()

	st, err := store.New(2, 3)
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}

	cfg := Config{APIKey: apiKey, A: 2, B: 3, Port: 0}
	srv := New(cfg, st, zap.NewNop())

	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("net.Listen: %v", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = srv.Serve(l)
	}()

	return l.Addr().String(), func() {
		_ = srv.Shutdown()
		<-done
		st.Close()
	}
}

func dialClient(t *testing.T, addr string) *session.Session {
	t.Helper()
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("net.Dial: %v", err)
	}
	sess := session.New(conn)
	sess.StartPolling()
	return sess
}

func mustRequest(t *testing.T, sess *session.Session, p protocol.Packet) protocol.Packet {
	t.Helper()
	future, err := sess.SendRequest(p)
	if err != nil {
		t.Fatalf("SendRequest: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	resp, err := future.Wait(ctx)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	return resp
}

func TestServerFullLifecycle(t *testing.T) {
	addr, stop := startTestServer(t, "s3cret")
	defer stop()

	client := dialClient(t, addr)
	defer client.End(nil)

	authResp := mustRequest(t, client, &protocol.AuthRequest{APIKey: "s3cret"})
	if ar, ok := authResp.(*protocol.AuthResponse); !ok || ar.Status != protocol.StatusSuccess {
		t.Fatalf("auth failed: %#v", authResp)
	}

	addResp := mustRequest(t, client, &protocol.DataAdditionRequest{Key: "hello", ValueKind: 0x01, ValueRaw: []byte("world")})
	if dr, ok := addResp.(*protocol.DataAdditionResponse); !ok || dr.Status != protocol.StatusSuccess {
		t.Fatalf("add failed: %#v", addResp)
	}

	findResp := mustRequest(t, client, &protocol.DataRequest{Key: "hello"})
	dr, ok := findResp.(*protocol.DataResponse)
	if !ok || dr.Status != protocol.StatusSuccess || string(dr.ValueRaw) != "world" {
		t.Fatalf("find failed: %#v", findResp)
	}

	removeResp := mustRequest(t, client, &protocol.DataRemovalRequest{Key: "hello"})
	if rr, ok := removeResp.(*protocol.DataRemovalResponse); !ok || rr.Status != protocol.StatusSuccess {
		t.Fatalf("remove failed: %#v", removeResp)
	}

	missResp := mustRequest(t, client, &protocol.DataRequest{Key: "hello"})
	mr, ok := missResp.(*protocol.DataResponse)
	if !ok || mr.Status != protocol.StatusFailure || mr.ErrorCode != protocol.ErrorKeyNotFound {
		t.Fatalf("expected key-not-found, got %#v", missResp)
	}
}

func TestServerRejectsWrongAPIKey(t *testing.T) {
	addr, stop := startTestServer(t, "s3cret")
	defer stop()

	client := dialClient(t, addr)
	defer client.End(nil)

	resp := mustRequest(t, client, &protocol.AuthRequest{APIKey: "wrong"})
	ar, ok := resp.(*protocol.AuthResponse)
	if !ok || ar.Status != protocol.StatusFailure || ar.ErrorCode != protocol.ErrorAuthRequired {
		t.Fatalf("expected auth failure, got %#v", resp)
	}
}

func TestServerRejectsDataRequestsBeforeAuth(t *testing.T) {
	addr, stop := startTestServer(t, "s3cret")
	defer stop()

	client := dialClient(t, addr)
	defer client.End(nil)

	findResp := mustRequest(t, client, &protocol.DataRequest{Key: "k"})
	dr, ok := findResp.(*protocol.DataResponse)
	if !ok || dr.Status != protocol.StatusFailure || dr.ErrorCode != protocol.ErrorAuthRequired {
		t.Fatalf("expected auth-required, got %#v", findResp)
	}

	addResp := mustRequest(t, client, &protocol.DataAdditionRequest{Key: "k", ValueKind: 0x01, ValueRaw: []byte("v")})
	dar, ok := addResp.(*protocol.DataAdditionResponse)
	if !ok || dar.Status != protocol.StatusFailure || dar.ErrorCode != protocol.ErrorAuthRequired {
		t.Fatalf("expected auth-required, got %#v", addResp)
	}

	removeResp := mustRequest(t, client, &protocol.DataRemovalRequest{Key: "k"})
	drr, ok := removeResp.(*protocol.DataRemovalResponse)
	if !ok || drr.Status != protocol.StatusFailure || drr.ErrorCode != protocol.ErrorAuthRequired {
		t.Fatalf("expected auth-required, got %#v", removeResp)
	}
}

func TestServerOverwriteThenFindReturnsLatest(t *testing.T) {
	addr, stop := startTestServer(t, "s3cret")
	defer stop()

	client := dialClient(t, addr)
	defer client.End(nil)

	mustRequest(t, client, &protocol.AuthRequest{APIKey: "s3cret"})
	mustRequest(t, client, &protocol.DataAdditionRequest{Key: "k", ValueKind: 0x01, ValueRaw: []byte("v1")})
	mustRequest(t, client, &protocol.DataAdditionRequest{Key: "k", ValueKind: 0x01, ValueRaw: []byte("v2")})

	findResp := mustRequest(t, client, &protocol.DataRequest{Key: "k"})
	dr, ok := findResp.(*protocol.DataResponse)
	if !ok || string(dr.ValueRaw) != "v2" {
		t.Fatalf("expected v2, got %#v", findResp)
	}
}
