package cli

import (
	"bufio"
	"context"
	"database/sql"
	"log/slog"
	"os"

	"github.com/antonkosov/vaultgate/internal/client/client"
	"github.com/antonkosov/vaultgate/internal/client/config"
	"github.com/antonkosov/vaultgate/internal/client/gate"
	"github.com/antonkosov/vaultgate/internal/client/services"
	"github.com/antonkosov/vaultgate/internal/client/session"
	"github.com/antonkosov/vaultgate/internal/client/webauthnx"
	"github.com/antonkosov/vaultgate/internal/cryptox"
	"github.com/antonkosov/vaultgate/internal/logging"

	_ "modernc.org/sqlite"
)

// App wires the vaultgate client together: session provider, REST client,
// security gate, method registry, and the item service with its local cache.
type App struct {
	config   *config.Config
	log      logging.Logger
	session  *session.JWTProvider
	client   client.Client
	gate     *gate.Gate
	security services.SecurityService
	items    services.ItemService
	db       *sql.DB
	reader   *bufio.Reader
}

// NewApp builds the application from configuration. The sqlite cache is
// opened and migrated up front so a broken local database fails fast.
func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	db, err := client.InitDatabase(ctx, c.DatabaseDSN)
	if err != nil {
		logger.Error(ctx, "initializing database", "error", err)
		return nil, err
	}

	sp := session.NewJWTProvider()
	api := client.NewHTTPClient(c.ServerBaseURL, c.RequestTimeout, sp.AccessToken, logger)

	// The terminal has no platform authenticator; the adapter reports
	// biometric as unsupported and the gate falls back accordingly.
	authn := webauthnx.NewAdapter(api, nil, logger)

	cipher := cryptox.NewFieldCipher(logger)

	g := gate.New(api, sp, authn, logger)

	return &App{
		config:   c,
		log:      logger,
		session:  sp,
		client:   api,
		gate:     g,
		security: services.NewSecurityService(api, authn, logger),
		items:    services.NewItemService(api, cipher, db, logger),
		db:       db,
		reader:   bufio.NewReader(os.Stdin),
	}, nil
}

// Run mounts the gate and blocks in the REPL until the user exits.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	a.gate.Mount(ctx)
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.status, scanner)
}

// Close releases the API connection, the gate subscription and the cache.
func (a *App) Close() {
	a.gate.Close()
	if err := a.client.Close(); err != nil {
		a.log.Warn(context.Background(), "closing api client", "error", err)
	}
	if err := a.db.Close(); err != nil {
		a.log.Warn(context.Background(), "closing database", "error", err)
	}
}

func (a *App) isLoggedIn() bool {
	return a.session.CurrentUser() != nil
}

func (a *App) isLocked() bool {
	return a.gate.Current().Locked()
}

// status renders the prompt segment: login state plus gate position.
func (a *App) status() string {
	user := a.session.CurrentUser()
	if user == nil {
		return "signed out"
	}
	st := a.gate.Current()
	if st.Locked() {
		return user.Email + " [locked:" + string(st.Method) + "/" + st.Step.String() + "]"
	}
	return user.Email
}

// userID returns the current user's id or "" when signed out.
func (a *App) userID() string {
	if u := a.session.CurrentUser(); u != nil {
		return u.ID
	}
	return ""
}
