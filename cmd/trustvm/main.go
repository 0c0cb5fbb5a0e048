// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/leveldb"
	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ava-labs/avalanchego/utils/logging"
	log "github.com/inconshreveable/log15"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/keyspace-labs/trustvm/cmd/trustvm/version"
	"github.com/keyspace-labs/trustvm/vm"
)

func init() {
	log.Root().SetHandler(log.LvlFilterHandler(log.LvlInfo, log.StreamHandler(os.Stderr, log.LogfmtFormat())))
}

var rootCmd = &cobra.Command{
	Use:        "trustvm",
	Short:      "TrustVM agent",
	SuggestFor: []string{"trustvm"},
	RunE:       runFunc,
}

func init() {
	cobra.EnablePrefixMatching = true
}

func init() {
	rootCmd.AddCommand(
		version.NewCommand(),
	)

	rootCmd.PersistentFlags().String("http-addr", "", "HTTP listen address (overrides config)")
	rootCmd.PersistentFlags().String("db-dir", "", "directory for the persistent database (in-memory when empty)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().String("config", "", "config file path")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		panic(err)
	}
	viper.SetEnvPrefix("trustvm")
	viper.AutomaticEnv()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "trustvm failed %v\n", err)
		os.Exit(1)
	}
	os.Exit(0)
}

func runFunc(cmd *cobra.Command, args []string) error {
	lvl, err := log.LvlFromString(viper.GetString("log-level"))
	if err != nil {
		return err
	}
	log.Root().SetHandler(log.LvlFilterHandler(lvl, log.StreamHandler(os.Stderr, log.LogfmtFormat())))

	var cfg vm.Config
	cfg.SetDefaults()
	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			return err
		}
		if err := viper.Unmarshal(&cfg); err != nil {
			return err
		}
	}
	if addr := viper.GetString("http-addr"); addr != "" {
		cfg.HTTPAddr = addr
	}

	var db database.Database
	if dir := viper.GetString("db-dir"); dir != "" {
		db, err = leveldb.New(dir, nil, logging.NoLog{})
		if err != nil {
			return err
		}
		log.Info("opened database", "dir", dir)
	} else {
		log.Warn("no db-dir configured; state is in-memory and lost on exit")
		db = memdb.New()
	}

	machine := vm.New(db, cfg)
	defer machine.Close()

	handler, err := vm.NewPublicHandler(machine)
	if err != nil {
		return err
	}
	mux := http.NewServeMux()
	mux.Handle(vm.PublicEndpoint, handler)
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  cfg.RequestTimeout,
		WriteTimeout: cfg.RequestTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("serving public API", "addr", cfg.HTTPAddr, "endpoint", vm.PublicEndpoint)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		return srv.Shutdown(context.Background())
	})
	return g.Wait()
}
