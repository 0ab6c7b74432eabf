package commands

import (
	"go.uber.org/zap"

	"github.com/openbooks-dev/openbooks/internal/accounts"
	"github.com/openbooks-dev/openbooks/internal/closing"
	"github.com/openbooks-dev/openbooks/internal/config"
	"github.com/openbooks-dev/openbooks/internal/events"
	"github.com/openbooks-dev/openbooks/internal/importer"
	"github.com/openbooks-dev/openbooks/internal/journal"
	"github.com/openbooks-dev/openbooks/internal/ledger"
	"github.com/openbooks-dev/openbooks/internal/logging"
	"github.com/openbooks-dev/openbooks/internal/periods"
	"github.com/openbooks-dev/openbooks/internal/reports"
	"github.com/openbooks-dev/openbooks/internal/store"
)

// app wires config, store, bus, and services for one command invocation.
type app struct {
	cfg      *config.Config
	store    *store.Store
	log      *zap.Logger
	pub      events.Publisher
	accounts *accounts.Service
	journal  *journal.Service
	ledger   *ledger.Service
	periods  *periods.Service
	closing  *closing.Service
	reports  *reports.Service
	importer *importer.Service
}

func openApp(configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	log := logging.New(cfg.LogLevel)

	st, err := store.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	var pub events.Publisher = events.Nop{}
	natsPub, err := events.ConnectNATS(cfg.NATS.URL)
	if err != nil {
		// The bus is fire-and-forget; an unreachable broker must not keep
		// the books from balancing.
		log.Warn("message bus unavailable, events disabled", zap.Error(err))
	} else if natsPub != nil {
		pub = natsPub
	}

	journalSvc := journal.NewService(st, pub, log)
	closingSvc := closing.NewService(st, journalSvc)

	return &app{
		cfg:      cfg,
		store:    st,
		log:      log,
		pub:      pub,
		accounts: accounts.NewService(st, pub, log, cfg.Accounts.Inference),
		journal:  journalSvc,
		ledger:   ledger.NewService(st),
		periods:  periods.NewService(st, closingSvc, journalSvc, pub, log),
		closing:  closingSvc,
		reports:  reports.NewService(st),
		importer: importer.NewService(st, journalSvc, log),
	}, nil
}

func (a *app) Close() {
	a.pub.Close()
	if err := a.store.Close(); err != nil {
		a.log.Warn("closing store", zap.Error(err))
	}
	_ = a.log.Sync()
}

func (a *app) tenant() string {
	return a.cfg.Tenant
}
