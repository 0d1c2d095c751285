package runtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/hemanyagillurkar28-lab/Krishi/internal/analytics"
	"github.com/hemanyagillurkar28-lab/Krishi/internal/bus"
	"github.com/hemanyagillurkar28-lab/Krishi/internal/capture"
	"github.com/hemanyagillurkar28-lab/Krishi/internal/config"
	"github.com/hemanyagillurkar28-lab/Krishi/internal/intent"
	"github.com/hemanyagillurkar28-lab/Krishi/internal/natsserver"
	"github.com/hemanyagillurkar28-lab/Krishi/internal/protocol"
	"github.com/hemanyagillurkar28-lab/Krishi/internal/recordstore"
	"github.com/hemanyagillurkar28-lab/Krishi/internal/session"
	"github.com/hemanyagillurkar28-lab/Krishi/internal/synth"
	"github.com/hemanyagillurkar28-lab/Krishi/internal/telemetry"
	"github.com/hemanyagillurkar28-lab/Krishi/internal/weather"
)

// Runtime wires the assistant together: telemetry, bus, record store,
// voice backends, the session manager and the HTTP surface.
type Runtime struct {
	cfg   config.Config
	log   *slog.Logger
	ready atomic.Bool
	wg    sync.WaitGroup

	telemetryClose func(context.Context) error
	natsServer     *natsserver.EmbeddedServer
	busClient      *bus.Client
	store          *recordstore.Store
	analytics      *analytics.Service
	weather        *weather.Client
	manager        *session.Manager
	utteranceSub   *nats.Subscription
	httpServer     *http.Server
	metricsServer  *http.Server
}

func New(cfg config.Config, log *slog.Logger) *Runtime {
	return &Runtime{cfg: cfg, log: log}
}

// Start brings every component up in dependency order, serves until ctx is
// cancelled, then shuts down in reverse.
func (r *Runtime) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	shutdownTelemetry, promHandler, err := telemetry.Setup(r.cfg, r.log)
	if err != nil {
		return fmt.Errorf("setup telemetry: %w", err)
	}
	r.telemetryClose = shutdownTelemetry

	ns, err := natsserver.Start(r.cfg.Bus, r.log)
	if err != nil {
		return fmt.Errorf("start embedded bus: %w", err)
	}
	r.natsServer = ns

	busClient, err := bus.Connect(ctx, r.cfg.Bus, r.log)
	if err != nil {
		r.teardown()
		return fmt.Errorf("connect bus: %w", err)
	}
	r.busClient = busClient

	store, err := recordstore.Open(ctx, r.cfg.RecordStore, r.log)
	if err != nil {
		r.teardown()
		return fmt.Errorf("open record store: %w", err)
	}
	r.store = store
	r.analytics = analytics.NewService(store, r.cfg.Assistant.FarmerID)

	if r.cfg.Weather.Enabled {
		r.weather = weather.NewClient(r.cfg.Weather, r.log)
	}

	engine, err := buildCaptureEngine(r.cfg.Capture)
	if err != nil {
		r.teardown()
		return fmt.Errorf("build capture engine: %w", err)
	}
	synthesizer, err := buildSynthesizer(r.cfg.Synth)
	if err != nil {
		r.teardown()
		return fmt.Errorf("build synthesizer: %w", err)
	}
	classifier, err := buildClassifier(r.cfg.Classifier)
	if err != nil {
		r.teardown()
		return fmt.Errorf("build classifier: %w", err)
	}

	r.manager = session.NewManager(r.cfg.Assistant, engine, classifier, synthesizer, store, r.analytics, busClient, r.log)
	if err := r.manager.Start(); err != nil {
		r.teardown()
		return err
	}

	sub, err := busClient.Conn().Subscribe(protocol.SubjectUtteranceText, r.handleUtterance)
	if err != nil {
		r.teardown()
		return fmt.Errorf("subscribe utterances: %w", err)
	}
	r.utteranceSub = sub

	addr := fmt.Sprintf("%s:%d", r.cfg.HTTP.Bind, r.cfg.HTTP.Port)
	r.httpServer = &http.Server{
		Addr:              addr,
		Handler:           r.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	r.serve(r.httpServer, "api")

	if r.cfg.Telemetry.PrometheusBind != "" {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promHandler)
		r.metricsServer = &http.Server{
			Addr:              r.cfg.Telemetry.PrometheusBind,
			Handler:           metricsMux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		r.serve(r.metricsServer, "metrics")
	}

	r.ready.Store(true)
	r.log.Info("runtime started",
		slog.String("addr", addr),
		slog.String("capture_mode", r.cfg.Capture.Mode),
		slog.String("classifier_mode", r.cfg.Classifier.Mode))

	<-ctx.Done()
	r.log.Info("runtime stopping")
	r.ready.Store(false)

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if r.httpServer != nil {
		if err := r.httpServer.Shutdown(shutdownCtx); err != nil {
			r.log.Error("http shutdown error", slog.String("error", err.Error()))
		}
	}
	if r.metricsServer != nil {
		if err := r.metricsServer.Shutdown(shutdownCtx); err != nil {
			r.log.Error("metrics shutdown error", slog.String("error", err.Error()))
		}
	}
	r.teardown()
	r.wg.Wait()

	if r.telemetryClose != nil {
		if err := r.telemetryClose(shutdownCtx); err != nil {
			r.log.Error("telemetry shutdown error", slog.String("error", err.Error()))
		}
	}
	return nil
}

func (r *Runtime) serve(srv *http.Server, name string) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			r.log.Error("http server failed", slog.String("server", name), slog.String("error", err.Error()))
		}
	}()
}

// teardown releases components in reverse start order. Safe to call with a
// partially started runtime.
func (r *Runtime) teardown() {
	if r.utteranceSub != nil {
		_ = r.utteranceSub.Drain()
		r.utteranceSub = nil
	}
	if r.manager != nil {
		r.manager.Close()
		r.manager = nil
	}
	if r.store != nil {
		if err := r.store.Close(); err != nil {
			r.log.Error("record store close error", slog.String("error", err.Error()))
		}
		r.store = nil
	}
	if r.busClient != nil {
		r.busClient.Close()
		r.busClient = nil
	}
	if r.natsServer != nil {
		r.natsServer.Shutdown()
		r.natsServer = nil
	}
}

// handleUtterance feeds bus-injected text into the session manager,
// replacing the microphone for headless deployments.
func (r *Runtime) handleUtterance(msg *nats.Msg) {
	var utt protocol.Utterance
	if err := json.Unmarshal(msg.Data, &utt); err != nil {
		r.log.Warn("discarding malformed utterance", slog.String("error", err.Error()))
		return
	}
	if utt.Text == "" {
		return
	}
	if _, err := r.manager.SubmitText(context.Background(), utt.Text, utt.Language); err != nil {
		r.log.Warn("utterance rejected", slog.String("error", err.Error()))
	}
}

func buildCaptureEngine(cfg config.CaptureConfig) (capture.Engine, error) {
	switch cfg.Mode {
	case "exec":
		return capture.NewExecEngine(cfg)
	case "mock", "":
		return capture.NewMockEngine(), nil
	default:
		return nil, fmt.Errorf("unknown capture mode %q", cfg.Mode)
	}
}

func buildSynthesizer(cfg config.SynthConfig) (synth.Synthesizer, error) {
	switch cfg.Mode {
	case "exec":
		return synth.NewExecSynth(cfg)
	case "mock", "":
		return synth.NewMockSynth(), nil
	default:
		return nil, fmt.Errorf("unknown synth mode %q", cfg.Mode)
	}
}

func buildClassifier(cfg config.ClassifierConfig) (intent.Classifier, error) {
	switch cfg.Mode {
	case "gemini":
		return intent.NewGeminiClassifier(cfg.Endpoint, cfg.APIKey, cfg.Model, cfg.Temperature, time.Duration(cfg.TimeoutMS)*time.Millisecond), nil
	case "exec":
		return intent.NewExecClassifier(cfg.Command)
	case "mock", "":
		return intent.NewMockClassifier(), nil
	default:
		return nil, fmt.Errorf("unknown classifier mode %q", cfg.Mode)
	}
}
