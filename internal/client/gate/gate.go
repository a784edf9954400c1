package gate

import (
	"context"
	"errors"
	"sync"

	"github.com/antonkosov/vaultgate/internal/client/client"
	"github.com/antonkosov/vaultgate/internal/client/models"
	"github.com/antonkosov/vaultgate/internal/client/session"
	"github.com/antonkosov/vaultgate/internal/client/webauthnx"
	"github.com/antonkosov/vaultgate/internal/common"
	"github.com/antonkosov/vaultgate/internal/cryptox"
	"github.com/antonkosov/vaultgate/internal/logging"
)

const failOpenWarning = "could not verify security settings; access granted without a challenge"

// Biometric is the platform-ceremony surface the gate needs for the silent
// auto-attempt. Satisfied by *webauthnx.Adapter.
type Biometric interface {
	Supported() bool
	BeginAuthentication(ctx context.Context, userID string) error
}

// Gate is the secondary-authentication state machine that stands between a
// signed-in user and the vault content. It fetches the user's security config,
// decides whether to challenge and with which method, runs the challenge and
// the forgot/reset flows, and re-locks when the app regains visibility.
//
// The gate fails open: when the config cannot be fetched the user is let
// through with a warning rather than locked out of their own data.
type Gate struct {
	client    client.Client
	session   session.Provider
	biometric Biometric
	log       logging.Logger

	mu         sync.Mutex
	phase      Phase
	method     models.Method
	step       Step
	busy       bool
	err        error
	warning    string
	candidate  []byte
	cfg        *models.SecurityConfig
	generation uint64

	listeners   map[int]func(State)
	nextID      int
	unsubscribe func()
}

// New builds an unmounted gate in the loading phase. biometric may be nil on
// platforms without an authenticator binding.
func New(c client.Client, sp session.Provider, bio Biometric, log logging.Logger) *Gate {
	return &Gate{
		client:    c,
		session:   sp,
		biometric: bio,
		log:       log,
		phase:     PhaseLoading,
		listeners: map[int]func(State){},
	}
}

// Mount subscribes to primary-session changes and runs the initial refresh.
// A sign-out unlocks the gate immediately: with no primary session there is
// nothing left to protect.
func (g *Gate) Mount(ctx context.Context) {
	g.mu.Lock()
	if g.unsubscribe == nil {
		g.unsubscribe = g.session.OnChange(func(u *session.User) {
			if u == nil {
				g.mu.Lock()
				g.generation++
				st := g.applyLocked(PhaseUnlocked, "", StepEnter, nil, "")
				g.mu.Unlock()
				g.notify(st)
			}
		})
	}
	g.mu.Unlock()

	g.Refresh(ctx)
}

// Close drops the session subscription.
func (g *Gate) Close() {
	g.mu.Lock()
	unsub := g.unsubscribe
	g.unsubscribe = nil
	g.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}

// OnChange registers a snapshot observer and returns its unsubscribe func.
// The observer is called outside the gate mutex.
func (g *Gate) OnChange(fn func(State)) func() {
	g.mu.Lock()
	id := g.nextID
	g.nextID++
	g.listeners[id] = fn
	g.mu.Unlock()

	return func() {
		g.mu.Lock()
		delete(g.listeners, id)
		g.mu.Unlock()
	}
}

// Current returns the present snapshot.
func (g *Gate) Current() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshotLocked()
}

// Candidate returns the in-progress challenge input. The UI binds its input
// control here so that a re-lock wipes what the user had typed.
func (g *Gate) Candidate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return string(g.candidate)
}

// SetCandidate replaces the in-progress challenge input.
func (g *Gate) SetCandidate(v string) {
	g.mu.Lock()
	common.WipeByteArray(g.candidate)
	g.candidate = []byte(v)
	g.mu.Unlock()
}

// Refresh fetches the security config and recomputes the gate position. A
// concurrent later refresh wins: responses carrying an older generation are
// discarded.
func (g *Gate) Refresh(ctx context.Context) {
	g.mu.Lock()
	g.generation++
	gen := g.generation
	g.mu.Unlock()

	g.resolve(ctx, gen)
}

// HandleVisibilityChange re-evaluates the gate when the app regains
// visibility. The config is fetched fresh every time so that a method enabled
// on another device locks this one too. An unlocked gate never re-locks off a
// stale response.
func (g *Gate) HandleVisibilityChange(ctx context.Context) {
	g.Refresh(ctx)
}

// resolve runs the fetch-and-decide sequence for one generation.
func (g *Gate) resolve(ctx context.Context, gen uint64) {
	user := g.session.CurrentUser()
	if user == nil {
		g.finish(gen, PhaseUnlocked, "", StepEnter, nil, "")
		return
	}

	cfg, err := g.client.FetchConfig(ctx, user.ID)
	if err != nil {
		if errors.Is(err, client.ErrNotFound) {
			g.finish(gen, PhaseUnlocked, "", StepEnter, nil, "")
			return
		}
		if g.log != nil {
			g.log.Warn(ctx, "security config fetch failed, failing open", "error", err)
		}
		g.finish(gen, PhaseUnlocked, "", StepEnter, nil, failOpenWarning)
		return
	}

	g.mu.Lock()
	if gen != g.generation {
		g.mu.Unlock()
		return
	}
	g.cfg = cfg
	g.mu.Unlock()

	if !cfg.AnyEnabled() {
		g.finish(gen, PhaseUnlocked, "", StepEnter, nil, "")
		return
	}

	if cfg.MethodEnabled(models.MethodBiometric) {
		g.attemptBiometric(ctx, gen, user.ID, cfg)
		return
	}

	g.finish(gen, PhaseLocked, cfg.ChallengeMethod(), StepEnter, nil, "")
}

// attemptBiometric runs the silent platform ceremony before showing any
// challenge. Per-error fallback: unsupported platform falls through to the
// next configured method or fails open; a cancel or server reject keeps the
// gate locked on biometric so the user can retry.
func (g *Gate) attemptBiometric(ctx context.Context, gen uint64, userID string, cfg *models.SecurityConfig) {
	var err error
	if g.biometric == nil {
		err = webauthnx.ErrUnsupported
	} else {
		err = g.biometric.BeginAuthentication(ctx, userID)
	}
	if err == nil {
		g.finish(gen, PhaseUnlocked, "", StepEnter, nil, "")
		return
	}

	fallback := cfg.ChallengeMethod()
	switch {
	case errors.Is(err, webauthnx.ErrUnsupported):
		if fallback == "" {
			if g.log != nil {
				g.log.Warn(ctx, "biometric unsupported and no fallback method, failing open")
			}
			g.finish(gen, PhaseUnlocked, "", StepEnter, nil, failOpenWarning)
			return
		}
		g.finish(gen, PhaseLocked, fallback, StepEnter, nil, "")
	case errors.Is(err, webauthnx.ErrUserCancelled), errors.Is(err, webauthnx.ErrServerRejected):
		if fallback != "" {
			g.finish(gen, PhaseLocked, fallback, StepEnter, nil, "")
			return
		}
		g.finish(gen, PhaseLocked, models.MethodBiometric, StepEnter, nil, "")
	default:
		if g.log != nil {
			g.log.Warn(ctx, "biometric attempt failed, failing open", "error", err)
		}
		g.finish(gen, PhaseUnlocked, "", StepEnter, nil, failOpenWarning)
	}
}

// RetryBiometric re-runs the silent ceremony while locked on biometric.
func (g *Gate) RetryBiometric(ctx context.Context) error {
	g.mu.Lock()
	if g.phase != PhaseLocked || g.method != models.MethodBiometric {
		g.mu.Unlock()
		return nil
	}
	if g.busy {
		g.mu.Unlock()
		return common.ErrBusy
	}
	g.busy = true
	g.generation++
	gen := g.generation
	cfg := g.cfg
	g.mu.Unlock()
	g.notify(g.Current())

	user := g.session.CurrentUser()
	if user == nil || cfg == nil {
		g.clearBusy()
		g.finish(gen, PhaseUnlocked, "", StepEnter, nil, "")
		return nil
	}

	g.attemptBiometric(ctx, gen, user.ID, cfg)
	g.clearBusy()
	g.notify(g.Current())
	return nil
}

// Submit verifies the buffered candidate against the active method. The buffer
// is wiped whether or not verification succeeds.
func (g *Gate) Submit(ctx context.Context) error {
	g.mu.Lock()
	if g.phase != PhaseLocked || g.step != StepEnter {
		g.mu.Unlock()
		return nil
	}
	if g.busy {
		g.mu.Unlock()
		return common.ErrBusy
	}
	g.busy = true
	method := g.method
	value := string(g.candidate)
	common.WipeByteArray(g.candidate)
	g.candidate = nil
	g.mu.Unlock()
	g.notify(g.Current())

	user := g.session.CurrentUser()
	if user == nil {
		g.clearBusy()
		g.setResult(PhaseUnlocked, StepEnter, nil)
		return nil
	}

	ok, err := g.client.VerifyCandidate(ctx, user.ID, method, value)
	g.clearBusy()
	switch {
	case err != nil:
		g.setResult(PhaseLocked, StepEnter, err)
		return err
	case !ok:
		g.setResult(PhaseLocked, StepEnter, common.ErrInvalidCredential)
		return common.ErrInvalidCredential
	default:
		g.setResult(PhaseUnlocked, StepEnter, nil)
		return nil
	}
}

// Forgot moves the locked gate to the recovery step.
func (g *Gate) Forgot() {
	g.transitionStep(StepForgot)
}

// Back returns from any recovery step to the challenge.
func (g *Gate) Back() {
	g.transitionStep(StepEnter)
}

func (g *Gate) transitionStep(step Step) {
	g.mu.Lock()
	if g.phase != PhaseLocked {
		g.mu.Unlock()
		return
	}
	st := g.applyLocked(PhaseLocked, g.method, step, nil, g.warning)
	g.mu.Unlock()
	g.notify(st)
}

// SendResetEmail asks the server to mail a one-time reset code and advances to
// the code entry step.
func (g *Gate) SendResetEmail(ctx context.Context) error {
	g.mu.Lock()
	if g.phase != PhaseLocked {
		g.mu.Unlock()
		return nil
	}
	if g.busy {
		g.mu.Unlock()
		return common.ErrBusy
	}
	g.busy = true
	method := g.method
	g.mu.Unlock()
	g.notify(g.Current())

	user := g.session.CurrentUser()
	if user == nil {
		g.clearBusy()
		return common.ErrNoPrimarySession
	}

	err := g.client.RequestMethodReset(ctx, user.ID, user.Email, method)
	g.clearBusy()
	if err != nil {
		g.setResult(PhaseLocked, StepForgot, err)
		return err
	}
	g.setResult(PhaseLocked, StepVerifyCode, nil)
	return nil
}

// AnswerSecurityQuestion verifies one configured answer and unlocks on match.
// Available only when the full question set exists.
func (g *Gate) AnswerSecurityQuestion(ctx context.Context, question, answer string) error {
	g.mu.Lock()
	if g.phase != PhaseLocked {
		g.mu.Unlock()
		return nil
	}
	if g.busy {
		g.mu.Unlock()
		return common.ErrBusy
	}
	if g.cfg == nil || !g.cfg.HasAllQuestions() {
		g.mu.Unlock()
		return common.ErrQuestionsNotSet
	}
	g.busy = true
	g.mu.Unlock()
	g.notify(g.Current())

	user := g.session.CurrentUser()
	if user == nil {
		g.clearBusy()
		return common.ErrNoPrimarySession
	}

	ok, err := g.client.VerifySecurityAnswer(ctx, user.ID, question, answer)
	g.clearBusy()
	switch {
	case err != nil:
		g.setResult(PhaseLocked, StepForgot, err)
		return err
	case !ok:
		g.setResult(PhaseLocked, StepForgot, common.ErrInvalidCredential)
		return common.ErrInvalidCredential
	default:
		g.setResult(PhaseUnlocked, StepEnter, nil)
		return nil
	}
}

// ResetWithToken exchanges the mailed code and a new secret for an unlock. The
// new secret is validated and hashed locally before it leaves the device; on
// ack the method is reset and the gate opens in one step.
func (g *Gate) ResetWithToken(ctx context.Context, token, newValue string) error {
	g.mu.Lock()
	if g.phase != PhaseLocked {
		g.mu.Unlock()
		return nil
	}
	if g.busy {
		g.mu.Unlock()
		return common.ErrBusy
	}
	method := g.method
	if method.SecretLen([]byte(newValue)) < method.MinSecretLen() {
		g.mu.Unlock()
		if method == models.MethodPattern {
			return common.ErrPatternTooShort
		}
		return common.ErrSecretTooShort
	}
	g.busy = true
	g.mu.Unlock()
	g.notify(g.Current())

	user := g.session.CurrentUser()
	if user == nil {
		g.clearBusy()
		return common.ErrNoPrimarySession
	}

	ok, err := g.client.ResetMethodWithToken(ctx, user.ID, token, method, cryptox.HashSecret([]byte(newValue)))
	g.clearBusy()
	switch {
	case err != nil:
		g.setResult(PhaseLocked, StepVerifyCode, err)
		return err
	case !ok:
		g.setResult(PhaseLocked, StepVerifyCode, common.ErrInvalidCredential)
		return common.ErrInvalidCredential
	default:
		g.setResult(PhaseUnlocked, StepEnter, nil)
		return nil
	}
}

// finish applies a resolve outcome for the given generation, discarding it if
// a newer refresh has started.
func (g *Gate) finish(gen uint64, phase Phase, method models.Method, step Step, err error, warning string) {
	g.mu.Lock()
	if gen != g.generation {
		g.mu.Unlock()
		return
	}
	st := g.applyLocked(phase, method, step, err, warning)
	g.mu.Unlock()
	g.notify(st)
}

// setResult applies an operation outcome without changing the method.
func (g *Gate) setResult(phase Phase, step Step, err error) {
	g.mu.Lock()
	st := g.applyLocked(phase, g.method, step, err, g.warning)
	g.mu.Unlock()
	g.notify(st)
}

// applyLocked mutates the gate under the held mutex and returns the snapshot
// to publish. Any entry into the locked phase wipes the candidate buffer.
func (g *Gate) applyLocked(phase Phase, method models.Method, step Step, err error, warning string) State {
	g.phase = phase
	g.method = method
	g.step = step
	g.err = err
	g.warning = warning
	common.WipeByteArray(g.candidate)
	g.candidate = nil
	if phase == PhaseUnlocked {
		g.method = ""
		g.step = StepEnter
	}
	return g.snapshotLocked()
}

func (g *Gate) clearBusy() {
	g.mu.Lock()
	g.busy = false
	g.mu.Unlock()
}

func (g *Gate) snapshotLocked() State {
	st := State{
		Phase:   g.phase,
		Method:  g.method,
		Step:    g.step,
		Busy:    g.busy,
		Err:     g.err,
		Warning: g.warning,
	}
	if g.cfg != nil {
		st.AnswersAvailable = g.cfg.HasAllQuestions()
		for _, q := range g.cfg.SecurityQuestions {
			st.Questions = append(st.Questions, q.Question)
		}
	}
	return st
}

func (g *Gate) notify(st State) {
	g.mu.Lock()
	fns := make([]func(State), 0, len(g.listeners))
	for _, fn := range g.listeners {
		fns = append(fns, fn)
	}
	g.mu.Unlock()

	for _, fn := range fns {
		fn(st)
	}
}
