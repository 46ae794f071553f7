package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/xid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/sshape/sim"
	"github.com/inference-sim/sshape/sim/plot"
)

var servePort int // HTTP listen port

// serveCmd exposes recompute over HTTP for an external renderer
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve occupancy distributions and S-curve plots over HTTP",
	Run: func(cmd *cobra.Command, args []string) {
		v, err := newViper(cmd)
		if err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}
		port := v.GetInt("port")

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           newOccupancyServer(v.GetInt64("seed")).router(),
			ReadHeaderTimeout: 5 * time.Second,
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			logrus.Infof("Serving on %s", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logrus.Fatalf("Server failed: %v", err)
			}
		}()

		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logrus.Errorf("Shutdown: %v", err)
		}
		logrus.Info("Server stopped.")
	},
}

// occupancyServer owns one engine and serializes every recompute on it.
type occupancyServer struct {
	mu     sync.Mutex
	engine *sim.Engine
	shared sim.Source // stream for requests that carry no seed
}

func newOccupancyServer(seed int64) *occupancyServer {
	shared := sim.NewPartitionedRNG(sim.NewSimulationKey(seed)).ForSubsystem(sim.SubsystemServer)
	return &occupancyServer{
		engine: sim.NewEngine(shared),
		shared: shared,
	}
}

// recompute runs one recompute under the lock and returns a result that no
// longer aliases the engine's buffers. A request seed selects the same
// stream `run --seed` uses, so both surfaces agree for equal inputs.
func (s *occupancyServer) recompute(cfg sim.Config, seed *int64) sim.Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seed != nil {
		s.engine.SetSource(sim.NewPartitionedRNG(sim.NewSimulationKey(*seed)).ForSubsystem(sim.SubsystemPopulation))
	} else {
		s.engine.SetSource(s.shared)
	}
	res := s.engine.Recompute(cfg)
	res.Occupancy = res.Occupancy.Clone()
	return res
}

func (s *occupancyServer) router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/occupancy", s.handleOccupancy).Methods(http.MethodGet)
	r.HandleFunc("/occupancy.{format:png|svg}", s.handlePlot).Methods(http.MethodGet)
	return r
}

func (s *occupancyServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *occupancyServer) handleOccupancy(w http.ResponseWriter, r *http.Request) {
	cfg, seed, err := parseQueryConfig(r.URL.Query())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	runID := xid.New().String()
	start := time.Now()
	res := s.recompute(cfg, seed)
	logrus.Infof("[%s] recompute model=%s items=%d min_utilization=%.4f in %v",
		runID, cfg.Model(), cfg.ItemCount(), res.Occupancy.MinUtilization(), time.Since(start))

	writeJSON(w, http.StatusOK, newResultJSON(runID, res))
}

func (s *occupancyServer) handlePlot(w http.ResponseWriter, r *http.Request) {
	cfg, seed, err := parseQueryConfig(r.URL.Query())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	writePlot(w, s.recompute(cfg, seed), mux.Vars(r)["format"])
}

// writePlot renders res fully before sending any header, so a rendering
// failure becomes a 500 instead of a truncated image.
func writePlot(w http.ResponseWriter, res sim.Result, format string) {
	var buf bytes.Buffer
	if err := plot.Write(&buf, res.Occupancy, plot.Title(res), format); err != nil {
		logrus.Errorf("rendering %s plot: %v", format, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	if format == "svg" {
		w.Header().Set("Content-Type", "image/svg+xml")
	} else {
		w.Header().Set("Content-Type", "image/png")
	}
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		logrus.Errorf("writing %s plot: %v", format, err)
	}
}

// parseQueryConfig applies block_size, block_count, eviction_rate and
// write_rate from q on top of the defaults through the validating setters,
// then enforces the interactive range. seed is optional.
func parseQueryConfig(q url.Values) (sim.Config, *int64, error) {
	cfg := sim.DefaultConfig()

	intParams := []struct {
		name string
		set  func(int) error
	}{
		{"block_size", cfg.SetBlockSize},
		{"block_count", cfg.SetBlockCount},
	}
	for _, p := range intParams {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return sim.Config{}, nil, fmt.Errorf("%s: %w", p.name, err)
		}
		if err := p.set(n); err != nil {
			return sim.Config{}, nil, err
		}
	}

	floatParams := []struct {
		name string
		set  func(float64) error
	}{
		{"eviction_rate", cfg.SetEvictionRate},
		{"write_rate", cfg.SetWriteRate},
	}
	for _, p := range floatParams {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return sim.Config{}, nil, fmt.Errorf("%s: %w", p.name, err)
		}
		if err := p.set(f); err != nil {
			return sim.Config{}, nil, err
		}
	}

	if err := cfg.ValidateInteractive(); err != nil {
		return sim.Config{}, nil, err
	}

	var seed *int64
	if raw := q.Get("seed"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return sim.Config{}, nil, fmt.Errorf("seed: %w", err)
		}
		seed = &n
	}
	return cfg, seed, nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logrus.Errorf("encoding response: %v", err)
	}
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "HTTP listen port")
	serveCmd.Flags().Int64Var(&seed, "seed", 42, "Seed for requests that do not carry one")
}
