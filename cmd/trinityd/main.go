// Command trinityd runs a TrinityChain node: it opens the block store,
// brings up consensus state, and mines against its own mempool. It has no
// REST or wallet-facing surface; the only network-facing piece is a debug
// websocket that streams new tips for operators, mirroring the teacher's
// debug mux in spirit but not its route tree.
package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/trinitychain/trinitychain/foundation/blockchain/chain"
	"github.com/trinitychain/trinitychain/foundation/blockchain/miner"
	"github.com/trinitychain/trinitychain/foundation/blockchain/signature"
	"github.com/trinitychain/trinitychain/foundation/logger"
	"github.com/trinitychain/trinitychain/store"
)

var build = "develop"

func main() {
	log, err := logger.New("TRINITYD")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {

	// =========================================================================
	// Configuration

	cfg := struct {
		conf.Version
		Node struct {
			DBPath     string `conf:"default:zblock/trinity.db"`
			KeyPath    string `conf:"default:zblock/miner.ecdsa"`
			Params     string `conf:"default:main"`
			DebugHost  string `conf:"default:0.0.0.0:7180"`
			ShutdownTO time.Duration `conf:"default:10s"`
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "TrinityChain node",
		},
	}

	const prefix = "TRINITYD"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	log.Infow("starting service", "version", build)
	defer log.Infow("shutdown complete")

	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Infow("startup", "config", out)

	// =========================================================================
	// Consensus params and miner identity

	params, err := parseParams(cfg.Node.Params)
	if err != nil {
		return err
	}

	privateKey, err := crypto.LoadECDSA(cfg.Node.KeyPath)
	if err != nil {
		return fmt.Errorf("loading miner key from %s (use trinityctl generate to create one): %w", cfg.Node.KeyPath, err)
	}
	beneficiary := signature.AddressFromPublicKey(&privateKey.PublicKey)
	log.Infow("startup", "status", "miner identity loaded", "beneficiary", hex.EncodeToString(beneficiary[:]))

	// =========================================================================
	// Store and chain

	st, err := store.Open(cfg.Node.DBPath)
	if err != nil {
		return fmt.Errorf("opening store at %s: %w", cfg.Node.DBPath, err)
	}
	defer st.Close()

	ev := func(v string, args ...any) {
		log.Infow(fmt.Sprintf(v, args...))
	}

	c, err := chain.New(chain.Config{
		Params:    params,
		Store:     st,
		EvHandler: ev,
	})
	if err != nil {
		return fmt.Errorf("constructing chain: %w", err)
	}

	stats := c.Stats()
	log.Infow("startup", "status", "chain loaded", "tip_height", stats.TipHeight, "difficulty", stats.Difficulty, "utxos", stats.UTXOCount)

	// =========================================================================
	// Miner

	w := miner.New(c, params, beneficiary, ev)
	w.Start()
	defer w.Shutdown()

	// Re-trigger mining whenever the tip moves, so the worker starts a fresh
	// attempt on top of each new tip once its current one has finished. A
	// new tip does not interrupt an attempt already in flight, and mempool
	// submissions do not trigger mining.
	tips, release := c.Subscribe()
	defer release()
	go func() {
		for range tips {
			w.SignalStartMining()
		}
	}()

	// =========================================================================
	// Debug websocket: streams new tips to connected operators

	debugServer := &http.Server{
		Addr:    cfg.Node.DebugHost,
		Handler: newDebugMux(c, log),
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Infow("startup", "status", "debug endpoint started", "host", cfg.Node.DebugHost)
		serverErrors <- debugServer.ListenAndServe()
	}()

	// =========================================================================
	// Shutdown

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("debug server error: %w", err)
		}
		return nil

	case sig := <-shutdown:
		log.Infow("shutdown", "status", "shutdown started", "signal", sig)
		defer log.Infow("shutdown", "status", "shutdown complete", "signal", sig)

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Node.ShutdownTO)
		defer cancel()

		if err := debugServer.Shutdown(ctx); err != nil {
			debugServer.Close()
			return fmt.Errorf("could not stop debug endpoint gracefully: %w", err)
		}
	}

	return nil
}

func parseParams(name string) (chain.Params, error) {
	switch name {
	case "main":
		return chain.Main(), nil
	case "fast":
		return chain.Fast(), nil
	default:
		return chain.Params{}, fmt.Errorf("unknown params set %q (want main or fast)", name)
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// tipView is the JSON shape streamed to operators; chain.BlockHeader's byte
// arrays are hex-encoded rather than left as raw JSON number arrays.
type tipView struct {
	Height       uint64 `json:"height"`
	PreviousHash string `json:"previous_hash"`
	Timestamp    int64  `json:"timestamp"`
	Difficulty   uint64 `json:"difficulty"`
	Nonce        uint64 `json:"nonce"`
	MerkleRoot   string `json:"merkle_root"`
}

func newTipView(h chain.BlockHeader) tipView {
	return tipView{
		Height:       h.Height,
		PreviousHash: hex.EncodeToString(h.PreviousHash[:]),
		Timestamp:    h.Timestamp,
		Difficulty:   h.Difficulty,
		Nonce:        h.Nonce,
		MerkleRoot:   hex.EncodeToString(h.MerkleRoot[:]),
	}
}

func newDebugMux(c *chain.Chain, log *zap.SugaredLogger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/debug/stats", func(w http.ResponseWriter, r *http.Request) {
		stats := c.Stats()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(stats)
	})

	mux.HandleFunc("/debug/tip/stream", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Errorw("debug", "status", "websocket upgrade failed", "ERROR", err)
			return
		}
		defer conn.Close()

		tips, release := c.Subscribe()
		defer release()

		if err := conn.WriteJSON(newTipView(c.Tip())); err != nil {
			return
		}

		for h := range tips {
			if err := conn.WriteJSON(newTipView(h)); err != nil {
				return
			}
		}
	})

	return mux
}
