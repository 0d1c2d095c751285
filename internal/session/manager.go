package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/hemanyagillurkar28-lab/Krishi/internal/analytics"
	"github.com/hemanyagillurkar28-lab/Krishi/internal/capture"
	"github.com/hemanyagillurkar28-lab/Krishi/internal/config"
	"github.com/hemanyagillurkar28-lab/Krishi/internal/intent"
	"github.com/hemanyagillurkar28-lab/Krishi/internal/locale"
	"github.com/hemanyagillurkar28-lab/Krishi/internal/protocol"
	"github.com/hemanyagillurkar28-lab/Krishi/internal/recordstore"
	"github.com/hemanyagillurkar28-lab/Krishi/internal/synth"
)

// State is a voice session phase.
type State string

const (
	StateInitializing State = "INITIALIZING"
	StateIdle         State = "IDLE"
	StateListening    State = "LISTENING"
	StateProcessing   State = "PROCESSING"
	StateConfirmation State = "CONFIRMATION"
	StateSuccess      State = "SUCCESS"
	StateError        State = "ERROR"
)

var (
	// ErrNotReady is returned for session operations before Start succeeds.
	ErrNotReady = errors.New("session manager not ready")
	// ErrNoConfirmation is returned when accept/reject arrives outside the
	// confirmation phase.
	ErrNoConfirmation = errors.New("no confirmation pending")
	// ErrNoFailure is returned when retry arrives outside the error phase.
	ErrNoFailure = errors.New("no failed session to retry")
	// ErrFatal marks a bootstrap failure; the only recovery is a process
	// restart.
	ErrFatal = errors.New("session manager failed to bootstrap, restart required")
)

// Recorder is the slice of the record store the session core persists to.
type Recorder interface {
	RecordActivity(ctx context.Context, a recordstore.Activity) (int64, error)
	RecordTransaction(ctx context.Context, t recordstore.Transaction) (int64, error)
	AppendSessionEvent(ctx context.Context, evt recordstore.SessionEvent) error
}

// FinancialSource supplies the analytics snapshot for financial queries.
type FinancialSource interface {
	Summary(ctx context.Context) (analytics.Summary, error)
}

// Publisher broadcasts session telemetry on the bus. May be nil.
type Publisher interface {
	PublishJSON(subject string, v any) error
}

// session is the single mutable conversation record. The manager is its
// sole mutator; external readers only ever see Snapshot copies.
type session struct {
	id         string
	lang       locale.Language
	state      State
	transcript string
	parsed     *intent.ParsedIntent
	message    string
	errMsg     string
	financial  bool
	cancel     context.CancelFunc
	ctx        context.Context
}

// Snapshot is a read-only copy of the live session for presentation layers.
type Snapshot struct {
	ID           string              `json:"session_id,omitempty"`
	State        State               `json:"state"`
	Language     locale.Language     `json:"language"`
	Transcript   string              `json:"transcript,omitempty"`
	Intent       *intent.ParsedIntent `json:"intent,omitempty"`
	Message      string              `json:"message,omitempty"`
	ErrorMessage string              `json:"error_message,omitempty"`
}

// Manager drives one voice conversation at a time through capture,
// classification, confirmation and persistence. Starting a new capture
// while a prior session is live cancels and replaces it.
type Manager struct {
	cfg        config.AssistantConfig
	engine     capture.Engine
	classifier intent.Classifier
	synth      synth.Synthesizer
	store      Recorder
	analytics  FinancialSource
	pub        Publisher
	log        *slog.Logger

	clock func() time.Time
	wait  func(ctx context.Context, d time.Duration) bool

	mu      sync.Mutex
	sess    *session
	ready   bool
	bootErr error
	wg      sync.WaitGroup

	meter           metric.Meter
	sessionsStarted metric.Int64Counter
	sessionsSaved   metric.Int64Counter
	sessionsFailed  metric.Int64Counter
	classifySeconds metric.Float64Histogram
}

func NewManager(cfg config.AssistantConfig, engine capture.Engine, classifier intent.Classifier, synthesizer synth.Synthesizer, store Recorder, analytics FinancialSource, pub Publisher, log *slog.Logger) *Manager {
	m := &Manager{
		cfg:        cfg,
		engine:     engine,
		classifier: classifier,
		synth:      synthesizer,
		store:      store,
		analytics:  analytics,
		pub:        pub,
		log:        log.With(slog.String("component", "session")),
		clock:      time.Now,
		meter:      otel.Meter("github.com/hemanyagillurkar28-lab/Krishi/session"),
	}
	m.wait = func(ctx context.Context, d time.Duration) bool {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return false
		case <-t.C:
			return true
		}
	}
	if err := m.initMetrics(); err != nil {
		m.log.Warn("failed to initialize metrics", slog.String("error", err.Error()))
	}
	return m
}

func (m *Manager) initMetrics() error {
	var err error
	if m.sessionsStarted, err = m.meter.Int64Counter("krishi_sessions_started_total"); err != nil {
		return err
	}
	if m.sessionsSaved, err = m.meter.Int64Counter("krishi_sessions_saved_total"); err != nil {
		return err
	}
	if m.sessionsFailed, err = m.meter.Int64Counter("krishi_sessions_failed_total"); err != nil {
		return err
	}
	m.classifySeconds, err = m.meter.Float64Histogram("krishi_classify_duration_seconds")
	return err
}

// Start verifies the supporting engines are wired and moves the manager
// from its initializing phase to idle. A failure here is fatal: sessions
// cannot run and every later call reports ErrFatal.
func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var err error
	switch {
	case m.engine == nil:
		err = errors.New("no capture engine")
	case m.classifier == nil:
		err = errors.New("no intent classifier")
	case m.synth == nil:
		err = errors.New("no speech synthesizer")
	case m.store == nil:
		err = errors.New("no record store")
	case m.analytics == nil:
		err = errors.New("no analytics source")
	default:
		if _, err = locale.Parse(m.cfg.DefaultLanguage); err == nil {
			m.ready = true
			m.log.Info("session manager ready", slog.String("language", m.cfg.DefaultLanguage))
			return nil
		}
	}
	m.bootErr = fmt.Errorf("%w: %v", ErrFatal, err)
	m.log.Error("session manager bootstrap failed", slog.String("error", err.Error()))
	return m.bootErr
}

func (m *Manager) Healthy() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ready
}

// Close cancels the live session and waits for its worker to drain.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.sess != nil && m.sess.cancel != nil {
		m.sess.cancel()
	}
	m.ready = false
	m.mu.Unlock()
	if m.engine != nil {
		m.engine.Stop()
	}
	m.wg.Wait()
}

// Snapshot reports the live session, or the manager phase when none is.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sess != nil {
		return m.snapshotLocked()
	}
	lang := locale.Language(m.cfg.DefaultLanguage)
	switch {
	case m.bootErr != nil:
		return Snapshot{State: StateError, Language: lang, ErrorMessage: m.bootErr.Error()}
	case !m.ready:
		return Snapshot{State: StateInitializing, Language: lang}
	default:
		return Snapshot{State: StateIdle, Language: lang}
	}
}

func (m *Manager) snapshotLocked() Snapshot {
	snap := Snapshot{
		ID:           m.sess.id,
		State:        m.sess.state,
		Language:     m.sess.lang,
		Transcript:   m.sess.transcript,
		Message:      m.sess.message,
		ErrorMessage: m.sess.errMsg,
	}
	if m.sess.parsed != nil {
		cp := *m.sess.parsed
		snap.Intent = &cp
	}
	return snap
}

// StartCapture opens a new session and begins listening. A session already
// in flight is cancelled and replaced.
func (m *Manager) StartCapture(ctx context.Context, langTag string) (Snapshot, error) {
	sess, snap, err := m.beginSession(langTag)
	if err != nil {
		return snap, err
	}
	m.wg.Add(1)
	go m.runCapture(sess)
	return snap, nil
}

// SubmitText runs a session over an already-transcribed utterance, used by
// the bus injection path in place of a microphone capture.
func (m *Manager) SubmitText(ctx context.Context, text, langTag string) (Snapshot, error) {
	sess, snap, err := m.beginSession(langTag)
	if err != nil {
		return snap, err
	}
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.process(sess, capture.Result{Text: text})
	}()
	return snap, nil
}

func (m *Manager) beginSession(langTag string) (*session, Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.bootErr != nil {
		return nil, Snapshot{State: StateError}, m.bootErr
	}
	if !m.ready {
		return nil, Snapshot{State: StateInitializing}, ErrNotReady
	}

	lang := locale.Language(m.cfg.DefaultLanguage)
	if langTag != "" {
		parsed, err := locale.Parse(langTag)
		if err != nil {
			return nil, m.snapshotOrIdleLocked(), err
		}
		lang = parsed
	}

	if prior := m.sess; prior != nil && prior.cancel != nil {
		switch prior.state {
		case StateListening, StateProcessing, StateConfirmation:
			prior.cancel()
			m.engine.Stop()
			m.log.Info("replacing live session", slog.String("session_id", prior.id), slog.String("state", string(prior.state)))
		default:
			prior.cancel()
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	sess := &session{
		id:     uuid.NewString(),
		lang:   lang,
		state:  StateListening,
		cancel: cancel,
		ctx:    ctx,
	}
	m.sess = sess
	if m.sessionsStarted != nil {
		m.sessionsStarted.Add(ctx, 1)
	}
	m.emitLocked(sess, "capture requested")
	return sess, m.snapshotLocked(), nil
}

func (m *Manager) snapshotOrIdleLocked() Snapshot {
	if m.sess != nil {
		return m.snapshotLocked()
	}
	return Snapshot{State: StateIdle, Language: locale.Language(m.cfg.DefaultLanguage)}
}

// StopCapture aborts listening without tearing down the session manager.
func (m *Manager) StopCapture() {
	m.engine.Stop()
}

func (m *Manager) runCapture(sess *session) {
	defer m.wg.Done()

	attempt, err := m.startEngine(sess)
	if err != nil {
		m.fail(sess, locale.RetryPrompt(sess.lang), "capture start", err)
		return
	}

	select {
	case <-sess.ctx.Done():
		m.engine.Stop()
	case res, ok := <-attempt.Results():
		if !ok {
			err := <-attempt.Errs()
			if err == nil {
				err = errors.New("capture ended without transcript")
			}
			m.fail(sess, locale.RetryPrompt(sess.lang), "capture", err)
			return
		}
		m.process(sess, res)
	}
}

// startEngine masks the known already-capturing race: stop the stale
// capture, wait briefly and retry the start exactly once.
func (m *Manager) startEngine(sess *session) (*capture.Capture, error) {
	attempt, err := m.engine.Start(sess.ctx, sess.lang)
	if !errors.Is(err, capture.ErrAlreadyCapturing) {
		return attempt, err
	}
	m.log.Warn("capture already in progress, retrying once", slog.String("session_id", sess.id))
	m.engine.Stop()
	if !m.wait(sess.ctx, time.Duration(m.cfg.CaptureRetryWaitMS)*time.Millisecond) {
		return nil, sess.ctx.Err()
	}
	return m.engine.Start(sess.ctx, sess.lang)
}

func (m *Manager) process(sess *session, res capture.Result) {
	if !m.transition(sess, StateProcessing, func(s *session) {
		s.transcript = res.Text
	}) {
		return
	}
	m.publish(protocol.SubjectTranscriptFinal, protocol.Transcript{
		SessionID:  sess.id,
		Text:       res.Text,
		Language:   string(sess.lang),
		Confidence: res.Confidence,
		Timestamp:  m.clock().UTC(),
	})

	financial := intent.IsFinancialQuery(res.Text)

	began := m.clock()
	parsed, err := m.classifier.Classify(sess.ctx, res.Text, sess.lang)
	if m.classifySeconds != nil {
		m.classifySeconds.Record(sess.ctx, m.clock().Sub(began).Seconds())
	}
	if err != nil {
		m.fail(sess, locale.GenericFailure(sess.lang), "classify", err)
		return
	}

	var figures intent.FinancialFigures
	if parsed.Kind == intent.KindQuery && financial {
		summary, err := m.analytics.Summary(sess.ctx)
		if err != nil {
			m.fail(sess, locale.GenericFailure(sess.lang), "analytics snapshot", err)
			return
		}
		figures = intent.FinancialFigures{NetProfit: summary.NetProfit, PredictedProfit: summary.PredictedProfit}
	}
	message := intent.Compose(parsed, financial, sess.lang, figures)

	if !m.transition(sess, StateConfirmation, func(s *session) {
		s.parsed = &parsed
		s.financial = financial
		s.message = message
	}) {
		return
	}
	m.publish(protocol.SubjectIntentResult, protocol.IntentResult{
		SessionID:    sess.id,
		Kind:         string(parsed.Kind),
		Confidence:   parsed.Confidence,
		Confirmation: message,
		Financial:    financial,
	})
	m.speak(sess, message)
}

// Accept commits the pending intent. Queries are acknowledged and
// dismissed without persistence; everything else is persisted with
// defaults applied before the store is called.
func (m *Manager) Accept(ctx context.Context) (Snapshot, error) {
	m.mu.Lock()
	sess := m.sess
	if sess == nil || sess.state != StateConfirmation || sess.parsed == nil {
		snap := m.snapshotOrIdleLocked()
		m.mu.Unlock()
		return snap, ErrNoConfirmation
	}
	parsed := *sess.parsed

	if parsed.Kind == intent.KindQuery {
		m.resetLocked(sess, "query acknowledged")
		snap := m.snapshotLocked()
		m.mu.Unlock()
		return snap, nil
	}
	sess.state = StateProcessing
	m.emitLocked(sess, "persisting")
	m.mu.Unlock()

	if err := m.persist(ctx, sess, parsed); err != nil {
		m.fail(sess, locale.GenericFailure(sess.lang), "persist", err)
		return m.Snapshot(), nil
	}

	m.mu.Lock()
	if m.sess != sess {
		snap := m.snapshotOrIdleLocked()
		m.mu.Unlock()
		return snap, nil
	}
	sess.state = StateSuccess
	m.emitLocked(sess, "record saved")
	snap := m.snapshotLocked()
	m.mu.Unlock()

	if m.sessionsSaved != nil {
		m.sessionsSaved.Add(ctx, 1)
	}
	m.speak(sess, locale.Saved(sess.lang))

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		if !m.wait(sess.ctx, time.Duration(m.cfg.AckDelayMS)*time.Millisecond) {
			return
		}
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.sess == sess && sess.state == StateSuccess {
			m.resetLocked(sess, "acknowledged")
		}
	}()
	return snap, nil
}

// persist applies field defaults and writes the record. Soil tests and
// unclassified utterances are kept as activity entries so nothing the
// farmer confirmed is silently dropped.
func (m *Manager) persist(ctx context.Context, sess *session, parsed intent.ParsedIntent) error {
	today := m.clock().Format("2006-01-02")
	switch parsed.Kind {
	case intent.KindActivity:
		a := recordstore.Activity{FarmerID: m.cfg.FarmerID, Date: today, ActivityType: "General", Crop: "Unknown"}
		if d := parsed.Activity; d != nil {
			if d.ActivityType != "" {
				a.ActivityType = d.ActivityType
			}
			if d.Crop != "" {
				a.Crop = d.Crop
			}
			a.AreaAcres = d.AreaAcres
		}
		_, err := m.store.RecordActivity(ctx, a)
		return err
	case intent.KindTransaction:
		t := recordstore.Transaction{FarmerID: m.cfg.FarmerID, Date: today, Type: "EXPENSE", Category: "General"}
		if d := parsed.Transaction; d != nil {
			if d.Type != "" {
				t.Type = d.Type
			}
			if d.Category != "" {
				t.Category = d.Category
			}
			t.Amount = d.Amount
		}
		_, err := m.store.RecordTransaction(ctx, t)
		return err
	case intent.KindSoilTest:
		a := recordstore.Activity{FarmerID: m.cfg.FarmerID, Date: today, ActivityType: "Soil Test", Crop: "Unknown"}
		if d := parsed.SoilTest; d != nil && d.Crop != "" {
			a.Crop = d.Crop
		}
		_, err := m.store.RecordActivity(ctx, a)
		return err
	case intent.KindUnknown:
		a := recordstore.Activity{FarmerID: m.cfg.FarmerID, Date: today, ActivityType: "General", Crop: "Unknown", Notes: parsed.RawText}
		_, err := m.store.RecordActivity(ctx, a)
		return err
	case intent.KindQuery:
		return nil
	default:
		return fmt.Errorf("unhandled intent kind %q", parsed.Kind)
	}
}

// Reject dismisses the pending confirmation without any persistence.
func (m *Manager) Reject(ctx context.Context) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess := m.sess
	if sess == nil || sess.state != StateConfirmation {
		return m.snapshotOrIdleLocked(), ErrNoConfirmation
	}
	m.resetLocked(sess, "rejected")
	return m.snapshotLocked(), nil
}

// Retry clears a failed session back to idle. Bootstrap failures are not
// retryable in-process.
func (m *Manager) Retry(ctx context.Context) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.bootErr != nil {
		return Snapshot{State: StateError, ErrorMessage: m.bootErr.Error()}, m.bootErr
	}
	sess := m.sess
	if sess == nil || sess.state != StateError {
		return m.snapshotOrIdleLocked(), ErrNoFailure
	}
	m.resetLocked(sess, "retry")
	return m.snapshotLocked(), nil
}

// resetLocked returns the session to idle, clearing transcript, intent
// and error. The session record stays live so its timeline keeps the id.
func (m *Manager) resetLocked(sess *session, detail string) {
	sess.state = StateIdle
	sess.transcript = ""
	sess.parsed = nil
	sess.message = ""
	sess.errMsg = ""
	sess.financial = false
	m.emitLocked(sess, detail)
}

// transition advances the session if it is still the live one, running
// mutate under the lock. Returns false when the session was replaced.
func (m *Manager) transition(sess *session, to State, mutate func(*session)) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sess != sess || sess.ctx.Err() != nil {
		return false
	}
	if mutate != nil {
		mutate(sess)
	}
	sess.state = to
	m.emitLocked(sess, "")
	return true
}

func (m *Manager) fail(sess *session, userMsg, step string, err error) {
	m.log.Warn("session step failed", slog.String("session_id", sess.id), slog.String("step", step), slog.String("error", err.Error()))
	if m.sessionsFailed != nil {
		m.sessionsFailed.Add(context.Background(), 1)
	}
	m.transition(sess, StateError, func(s *session) {
		s.errMsg = userMsg
	})
}

func (m *Manager) speak(sess *session, text string) {
	if err := m.synth.Speak(sess.ctx, text, sess.lang); err != nil {
		m.log.Warn("speech synthesis failed", slog.String("session_id", sess.id), slog.String("error", err.Error()))
	}
	m.publish(protocol.SubjectSpeechSay, protocol.SpeakRequest{SessionID: sess.id, Text: text, Language: string(sess.lang)})
}

// emitLocked records the transition on the audit timeline and the bus.
func (m *Manager) emitLocked(sess *session, detail string) {
	m.log.Debug("session transition", slog.String("session_id", sess.id), slog.String("state", string(sess.state)), slog.String("detail", detail))
	if err := m.store.AppendSessionEvent(context.Background(), recordstore.SessionEvent{
		SessionID: sess.id,
		State:     string(sess.state),
		Detail:    detail,
	}); err != nil {
		m.log.Warn("failed to append session event", slog.String("error", err.Error()))
	}
	m.publish(protocol.SubjectSessionEvent, protocol.SessionEvent{
		SessionID: sess.id,
		State:     string(sess.state),
		Detail:    detail,
		Timestamp: m.clock().UTC(),
	})
}

func (m *Manager) publish(subject string, v any) {
	if m.pub == nil {
		return
	}
	if err := m.pub.PublishJSON(subject, v); err != nil {
		m.log.Warn("bus publish failed", slog.String("subject", subject), slog.String("error", err.Error()))
	}
}
