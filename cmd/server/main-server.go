// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/agencyforge/pagebuilder/pkg/bconfig"
	"github.com/agencyforge/pagebuilder/pkg/bstore"
	"github.com/agencyforge/pagebuilder/pkg/builderbase"
	"github.com/agencyforge/pagebuilder/pkg/compfactory"
	"github.com/agencyforge/pagebuilder/pkg/docbus"
	"github.com/agencyforge/pagebuilder/pkg/publish"
	"github.com/agencyforge/pagebuilder/pkg/session"
	"github.com/agencyforge/pagebuilder/pkg/util/logutil"
	"github.com/agencyforge/pagebuilder/pkg/web"
)

// these are set at build time
var BuilderVersion = "0.0.0"
var BuildTime = "0"

const shutdownTimeout = 5 * time.Second

var shutdownOnce sync.Once

type serverState struct {
	httpServer *http.Server
	manager    *session.Manager
	store      *bstore.Store
	watcher    *bconfig.Watcher
	bus        *docbus.Bus
}

func doShutdown(state *serverState, reason string) {
	shutdownOnce.Do(func() {
		log.Printf("shutting down: %s\n", reason)
		ctx, cancelFn := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelFn()
		if state.httpServer != nil {
			if err := state.httpServer.Shutdown(ctx); err != nil {
				log.Printf("error shutting down http server: %v\n", err)
			}
		}
		if err := state.manager.SaveAll(ctx); err != nil {
			log.Printf("error saving open documents: %v\n", err)
		}
		if state.bus != nil {
			state.bus.Close()
		}
		state.manager.CloseAll()
		if state.watcher != nil {
			state.watcher.Close()
		}
		if err := state.store.Close(); err != nil {
			log.Printf("error closing store: %v\n", err)
		}
		log.Printf("shutdown complete\n")
	})
}

func installShutdownSignalHandlers(state *serverState) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		for sig := range sigCh {
			doShutdown(state, fmt.Sprintf("got signal %v", sig))
			break
		}
	}()
}

func grabAndRemoveEnvVars() error {
	err := builderbase.LoadDotEnv(os.Getenv(builderbase.DotEnvVarName), builderbase.DotEnvFileName)
	if err != nil {
		return err
	}
	return builderbase.CacheAndRemoveEnvVars()
}

func main() {
	logutil.LogPrefix("bldrsrv")
	builderbase.BuilderVersion = BuilderVersion
	builderbase.BuildTime = BuildTime

	err := grabAndRemoveEnvVars()
	if err != nil {
		log.Printf("[error] %v\n", err)
		return
	}
	err = builderbase.EnsureDataDir()
	if err != nil {
		log.Printf("error ensuring data dir: %v\n", err)
		return
	}
	dataLock, err := builderbase.AcquireDataLock()
	if err != nil {
		log.Printf("error acquiring data lock (another builder server is likely running): %v\n", err)
		return
	}
	defer func() {
		if err := dataLock.Close(); err != nil {
			log.Printf("error releasing data lock: %v\n", err)
		}
	}()
	err = builderbase.EnsureConfigDir()
	if err != nil {
		log.Printf("error ensuring config dir: %v\n", err)
		return
	}
	log.Printf("pagebuilder version: %s (%s)\n", BuilderVersion, BuildTime)
	log.Printf("data dir: %s\n", builderbase.GetDataDir())
	log.Printf("config dir: %s\n", builderbase.GetConfigDir())

	watcher, err := bconfig.MakeWatcher(builderbase.GetConfigDir())
	if err != nil {
		log.Printf("error creating config watcher: %v\n", err)
		return
	}
	settings := watcher.GetSettings()

	ctx, cancelFn := context.WithTimeout(context.Background(), 5*time.Second)
	store, err := bstore.MakeStore(ctx, settings.DBPath)
	cancelFn()
	if err != nil {
		log.Printf("error initializing bstore: %v\n", err)
		return
	}
	ctx, cancelFn = context.WithTimeout(context.Background(), 5*time.Second)
	publisher, err := publish.MakePublisher(ctx, settings)
	cancelFn()
	if err != nil {
		log.Printf("error creating publisher: %v\n", err)
		return
	}
	log.Printf("publishing with %q publisher\n", publisher.GetPublisherName())

	registry := compfactory.MakeDefaultRegistry()
	watcher.Subscribe(bconfig.RegistryUpdater(registry))
	watcher.Start()

	manager := session.MakeManager(compfactory.MakeFactory(registry), store)
	server := web.MakeServer(manager, store, publisher)
	state := &serverState{
		httpServer: server.MakeHttpServer(),
		manager:    manager,
		store:      store,
		watcher:    watcher,
		bus:        server.Bus,
	}
	installShutdownSignalHandlers(state)

	listener, err := web.MakeTCPListener(settings.WebListenAddr)
	if err != nil {
		log.Printf("error creating web listener: %v\n", err)
		doShutdown(state, "listener error")
		return
	}
	// use fmt instead of log here to make sure it goes directly to stderr
	fmt.Fprintf(os.Stderr, "BLDRSRV-ESTART web:%s version:%s buildtime:%s\n", listener.Addr(), BuilderVersion, BuildTime)
	server.RunWebServer(state.httpServer, listener) // blocking
	doShutdown(state, "web server exited")
}
