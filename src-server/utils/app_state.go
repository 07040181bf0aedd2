package utils

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"bdayinvite/src-server/model"
	"bdayinvite/src-server/store"

	"github.com/bwmarrin/discordgo"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"
)

// Handles one Discord interaction. Only return errors when it's the
// backend's fault, nil if user's fault.
type InteractionHandler func(s *discordgo.Session, i *discordgo.InteractionCreate) error

type AppState struct {
	Config    *Config
	BunDB     *bun.DB
	Store     *store.Store
	DgSession *discordgo.Session
	When      *when.Parser

	// every handler reads the clock through this
	Now func() time.Time

	MetricChans        *Metric
	AppCloseSignalChan chan os.Signal

	startedAt time.Time

	// will be send to Discord
	appCmdInfo   map[string]*discordgo.ApplicationCommand
	appCmdInfoMu sync.RWMutex
	// handling commands, msg components and modals from Discord WSAPI
	appCmdHandler   map[string]InteractionHandler
	appCmdHandlerMu sync.RWMutex

	gracefulShutdownChans   []chan struct{}
	gracefulShutdownChansMu sync.Mutex
}

// NewAppState wires everything from the process env and exits on failure.
func NewAppState() *AppState {
	config := NewConfig()

	// database
	rawDB, err := sql.Open(sqliteshim.ShimName, config.GetDatabasePath()+"?mode=rwc")
	if err != nil {
		slog.Error("cannot open sqlite database", "error", err)
		os.Exit(1)
	}
	// one writer at a time, sqlite would answer SQLITE_BUSY otherwise
	rawDB.SetMaxOpenConns(1)

	bunDB := bun.NewDB(rawDB, sqlitedialect.New())
	bunDB.AddQueryHook(bundebug.NewQueryHook(
		bundebug.WithVerbose(true),
		bundebug.FromEnv("BUNDEBUG"),
	))
	if err := model.CreateSchema(context.Background(), bunDB); err != nil {
		slog.Error("can't create database schema", "error", err)
		os.Exit(1)
	}

	as := NewHeadlessAppState(config, bunDB)

	// discord
	as.DgSession, err = discordgo.New("Bot " + config.GetDiscordAppToken())
	if err != nil {
		slog.Error("can't create discord session", "error", err)
		os.Exit(1)
	}
	as.DgSession.Identify.Intents = discordgo.IntentsGuilds

	return as
}

// NewHeadlessAppState builds an AppState without a Discord session, enough
// to serve HTTP. The database schema must already exist.
func NewHeadlessAppState(config *Config, bunDB *bun.DB) *AppState {
	as := &AppState{
		Config:             config,
		BunDB:              bunDB,
		Now:                time.Now,
		MetricChans:        NewMetric(),
		AppCloseSignalChan: make(chan os.Signal, 1),
		startedAt:          time.Now(),
		appCmdInfo:         make(map[string]*discordgo.ApplicationCommand),
		appCmdHandler:      make(map[string]InteractionHandler),
	}

	// date parser
	as.When = when.New(nil)
	as.When.Add(en.All...)
	as.When.Add(common.All...)

	as.Store = store.New(bunDB)
	as.Store.OnRead = as.MetricChans.RecordDatabaseRead
	as.Store.OnWrite = as.MetricChans.RecordDatabaseWrite
	as.Store.OnOperation = as.MetricChans.RecordOperation

	return as
}

func (as *AppState) GetUptime() time.Duration {
	return time.Since(as.startedAt).Round(time.Second)
}

// #region - slash command info

func (as *AppState) AddAppCmdInfo(name string, info *discordgo.ApplicationCommand) {
	as.appCmdInfoMu.Lock()
	defer as.appCmdInfoMu.Unlock()
	as.appCmdInfo[name] = info
}

func (as *AppState) IterateAppCmdInfo(fn func(name string, info *discordgo.ApplicationCommand)) {
	as.appCmdInfoMu.RLock()
	defer as.appCmdInfoMu.RUnlock()
	for name, info := range as.appCmdInfo {
		fn(name, info)
	}
}

// NukeAppCmdInfo drops the command info once it has been sent to Discord.
func (as *AppState) NukeAppCmdInfo() {
	as.appCmdInfoMu.Lock()
	defer as.appCmdInfoMu.Unlock()
	as.appCmdInfo = make(map[string]*discordgo.ApplicationCommand)
}

// #endregion

// #region - interaction handlers

// AddAppCmdHandler registers a handler for a command name or a custom ID
// prefix. Custom IDs look like "prefix:payload".
func (as *AppState) AddAppCmdHandler(id string, handler InteractionHandler) {
	as.appCmdHandlerMu.Lock()
	defer as.appCmdHandlerMu.Unlock()
	as.appCmdHandler[id] = handler
}

// GetAppCmdHandler tries the exact id first, then the part before the
// first ':'.
func (as *AppState) GetAppCmdHandler(id string) (InteractionHandler, bool) {
	as.appCmdHandlerMu.RLock()
	defer as.appCmdHandlerMu.RUnlock()
	if handler, ok := as.appCmdHandler[id]; ok {
		return handler, true
	}
	if prefix, _, found := strings.Cut(id, ":"); found {
		handler, ok := as.appCmdHandler[prefix]
		return handler, ok
	}
	return nil, false
}

// #endregion

// #region - graceful shutdown

// CreateGracefulShutdownChan returns a channel closed by GracefulShutdown.
func (as *AppState) CreateGracefulShutdownChan() <-chan struct{} {
	as.gracefulShutdownChansMu.Lock()
	defer as.gracefulShutdownChansMu.Unlock()
	ch := make(chan struct{})
	as.gracefulShutdownChans = append(as.gracefulShutdownChans, ch)
	return ch
}

// GracefulShutdown signals every background goroutine to stop. Safe to call
// more than once.
func (as *AppState) GracefulShutdown() {
	as.gracefulShutdownChansMu.Lock()
	defer as.gracefulShutdownChansMu.Unlock()
	for _, ch := range as.gracefulShutdownChans {
		close(ch)
	}
	as.gracefulShutdownChans = nil
}

// #endregion
