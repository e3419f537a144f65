package mpcnet_test

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/mpcnet-protocol/mpcnet-go/pkg/cert"
	"github.com/mpcnet-protocol/mpcnet-go/pkg/config"
	"github.com/mpcnet-protocol/mpcnet-go/pkg/engine"
	"github.com/mpcnet-protocol/mpcnet-go/pkg/log"
	"github.com/mpcnet-protocol/mpcnet-go/pkg/transport"
)

// reservePorts picks n loopback addresses with free ports.
func reservePorts(t *testing.T, n int) []transport.Address {
	t.Helper()
	addrs := make([]transport.Address, n)
	listeners := make([]net.Listener, n)
	for i := range addrs {
		l, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatalf("reserve port: %v", err)
		}
		listeners[i] = l
		addrs[i] = transport.Address{
			Hostname: "127.0.0.1",
			Port:     uint16(l.Addr().(*net.TCPAddr).Port),
		}
	}
	for _, l := range listeners {
		l.Close()
	}
	return addrs
}

// buildEngines establishes every party's lanes from its config
// concurrently and wraps them in engines.
func buildEngines(t *testing.T, cfgs []*config.Config) []*engine.Engine {
	t.Helper()
	engines := make([]*engine.Engine, len(cfgs))
	errs := make([]error, len(cfgs))

	var wg sync.WaitGroup
	for p, cfg := range cfgs {
		wg.Add(1)
		go func(p int, cfg *config.Config) {
			defer wg.Done()
			nets, err := config.BuildNetworks(cfg)
			if err != nil {
				errs[p] = err
				return
			}
			engines[p] = engine.New(cfg.PartyID, 0, 0, nets)
		}(p, cfg)
	}
	wg.Wait()

	for p, err := range errs {
		if err != nil {
			t.Fatalf("party %d: %v", p, err)
		}
	}
	t.Cleanup(func() {
		for _, e := range engines {
			e.Close()
		}
	})
	return engines
}

// runEchoRound has every party send a tagged message to every peer and
// verify what it hears back, using one parallel network closure per
// peer direction.
func runEchoRound(t *testing.T, engines []*engine.Engine, round int) {
	parties := len(engines)
	var wg sync.WaitGroup
	for p := 0; p < parties; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			e := engines[p]
			peerA := (p + 1) % parties
			peerB := (p + 2) % parties

			send := func(peer int) func(transport.Network) error {
				return func(net transport.Network) error {
					return net.Send(peer, []byte(fmt.Sprintf("r%d from %d", round, p)))
				}
			}
			errA, errB := engine.Join2Net(e, send(peerA), send(peerB))
			if errA != nil || errB != nil {
				t.Errorf("party %d round %d send: %v, %v", p, round, errA, errB)
				return
			}

			recv := func(peer int) func(transport.Network) string {
				return func(net transport.Network) string {
					data, err := net.Recv(peer)
					if err != nil {
						t.Errorf("party %d round %d recv from %d: %v", p, round, peer, err)
						return ""
					}
					return string(data)
				}
			}
			gotA, gotB := engine.Join2Net(e, recv(peerA), recv(peerB))
			if want := fmt.Sprintf("r%d from %d", round, peerA); gotA != want {
				t.Errorf("party %d heard %q from %d, want %q", p, gotA, peerA, want)
			}
			if want := fmt.Sprintf("r%d from %d", round, peerB); gotB != want {
				t.Errorf("party %d heard %q from %d, want %q", p, gotB, peerB, want)
			}
		}(p)
	}
	wg.Wait()
}

func TestThreePartySessionOverTCP(t *testing.T) {
	const parties, lanes = 3, 4
	addrs := reservePorts(t, parties)

	cfgs := make([]*config.Config, parties)
	for p := range cfgs {
		data := fmt.Sprintf(`
party_id: %d
bind: %q
peers:
  - %q
  - %q
  - %q
lanes: %d
transport: tcp
`, p, addrs[p].String(), addrs[0].String(), addrs[1].String(), addrs[2].String(), lanes)
		cfg, err := config.Parse([]byte(data))
		if err != nil {
			t.Fatalf("parse config %d: %v", p, err)
		}
		cfgs[p] = cfg
	}

	engines := buildEngines(t, cfgs)
	for round := 0; round < 3; round++ {
		runEchoRound(t, engines, round)
	}
}

func TestThreePartySessionOverTLS(t *testing.T) {
	const parties, lanes = 3, 2
	addrs := reservePorts(t, parties)
	dir := t.TempDir()

	roster, err := cert.GenerateRoster(parties, time.Hour)
	if err != nil {
		t.Fatalf("generate roster: %v", err)
	}

	certPaths := make([]string, parties)
	keyPaths := make([]string, parties)
	for p, id := range roster {
		certPaths[p] = filepath.Join(dir, fmt.Sprintf("party%d.pem", p))
		if err := os.WriteFile(certPaths[p], cert.EncodeCertPEM(id.Certificate), 0o600); err != nil {
			t.Fatalf("write cert %d: %v", p, err)
		}
		keyPEM, err := cert.EncodeKeyPEM(id.PrivateKey)
		if err != nil {
			t.Fatalf("encode key %d: %v", p, err)
		}
		keyPaths[p] = filepath.Join(dir, fmt.Sprintf("party%d.key", p))
		if err := os.WriteFile(keyPaths[p], keyPEM, 0o600); err != nil {
			t.Fatalf("write key %d: %v", p, err)
		}
	}

	cfgs := make([]*config.Config, parties)
	for p := range cfgs {
		cfgs[p] = &config.Config{
			PartyID:      p,
			Bind:         addrs[p].String(),
			Peers:        addrs,
			Lanes:        lanes,
			Transport:    config.KindTLS,
			Certificates: certPaths,
			PrivateKey:   keyPaths[p],
		}
	}

	engines := buildEngines(t, cfgs)
	runEchoRound(t, engines, 0)
}

func TestManyConcurrentOperationsShareFewLanes(t *testing.T) {
	// Far more concurrent network operations than lanes: the rotation
	// must keep every operation moving and end with all lanes back.
	const parties, lanes, ops = 2, 3, 60

	chans := transport.NewChanNetworks(parties, lanes)
	engines := make([]*engine.Engine, parties)
	for p := range engines {
		nets := make([]transport.Network, lanes)
		for l, n := range chans[p] {
			nets[l] = n
		}
		engines[p] = engine.New(p, 4, 0, nets)
		defer engines[p].Close()
	}

	// Party 1 echoes everything it receives, one echo per expected
	// message, spread across its own lanes. The spawning itself blocks
	// once all lanes are in flight, so it runs on its own goroutine.
	var echoWG sync.WaitGroup
	echoWG.Add(ops)
	go func() {
		for i := 0; i < ops; i++ {
			h := engine.SpawnNet(engines[1], func(net transport.Network) error {
				data, err := net.Recv(0)
				if err != nil {
					return err
				}
				return net.Send(0, data)
			})
			go func() {
				defer echoWG.Done()
				if _, err := h.Join(); err != nil {
					t.Errorf("echo: %v", err)
				}
			}()
		}
	}()

	// Party 0 fires ops concurrent request/reply operations.
	handles := make([]*engine.Handle[string], ops)
	for i := range handles {
		payload := []byte{byte(i)}
		handles[i] = engine.SpawnNet(engines[0], func(net transport.Network) string {
			if err := net.Send(1, payload); err != nil {
				return "send: " + err.Error()
			}
			data, err := net.Recv(1)
			if err != nil {
				return "recv: " + err.Error()
			}
			return string(data)
		})
	}

	counts := make(map[string]int)
	for i, h := range handles {
		v, err := h.Join()
		if err != nil {
			t.Fatalf("operation %d: %v", i, err)
		}
		counts[v]++
	}
	echoWG.Wait()

	// Every payload came back exactly once. Replies may cross between
	// concurrent operations on the same lane pair, so only the multiset
	// of echoed payloads is deterministic.
	if len(counts) != ops {
		t.Errorf("distinct replies = %d, want %d", len(counts), ops)
	}
	for v, n := range counts {
		if n != 1 {
			t.Errorf("reply %q seen %d times", v, n)
		}
	}

	// All lanes are back in rotation on both sides.
	for p, e := range engines {
		done := make(chan struct{})
		go func(e *engine.Engine) {
			defer close(done)
			for i := 0; i < lanes; i++ {
				slot, lane := e.Lanes().Acquire()
				e.Lanes().Release(slot, lane)
			}
		}(e)
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatalf("party %d leaked a lane", p)
		}
	}
}

func TestLaneEventsCaptured(t *testing.T) {
	// A session with a file logger attached produces a readable
	// capture with acquire and release lane events.
	path := filepath.Join(t.TempDir(), "session.mplog")
	logger, err := log.NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger: %v", err)
	}

	nulls := transport.NewNullNetworks(2)
	nets := make([]transport.Network, len(nulls))
	for i := range nulls {
		nets[i] = nulls[i]
	}
	e := engine.New(0, 2, 0, nets)
	e.SetLogger(logger)

	r0, r1 := engine.Join2Net(e,
		func(transport.Network) int { return 1 },
		func(transport.Network) int { return 2 },
	)
	if r0+r1 != 3 {
		t.Fatalf("join = %d, %d", r0, r1)
	}
	e.Close()
	logger.Close()

	cat := log.CategoryLane
	reader, err := log.NewFilteredReader(path, log.Filter{Category: &cat})
	if err != nil {
		t.Fatalf("NewFilteredReader: %v", err)
	}
	defer reader.Close()

	opCounts := make(map[log.LaneOp]int)
	for {
		event, err := reader.Next()
		if err != nil {
			break
		}
		if event.Lane == nil {
			t.Fatal("lane event without payload")
		}
		opCounts[event.Lane.Op]++
	}
	if opCounts[log.LaneAcquire] != 2 || opCounts[log.LaneRelease] != 2 {
		t.Errorf("lane ops = %v, want 2 acquires and 2 releases", opCounts)
	}
}
