// Command presence publishes a Rich Presence described by a YAML file and
// republishes it whenever the file changes.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/radovskyb/watcher"
	"github.com/rs/zerolog"
	"rsc.io/getopt"

	"github.com/EpicStep/discord-integration-go/internal/logging"
	"github.com/EpicStep/discord-integration-go/rpc"
)

const clientIDEnv = "DISCORD_CLIENT_ID"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "presence:", err)
		os.Exit(1)
	}
}

func run() error {
	envPtr := flag.String("env", ".env", "dotenv file to load")

	configPtr := flag.String("config", "presence.yaml", "presence config file")
	getopt.Alias("c", "config")

	pollPtr := flag.Duration("poll", time.Second, "config change poll interval")

	levelPtr := flag.String("log-level", zerolog.InfoLevel.String(), "log level")
	getopt.Alias("l", "log-level")

	logFilePtr := flag.String("log-file", "", "also log to this file")

	getopt.Parse()

	if err := godotenv.Load(*envPtr); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", *envPtr, err)
	}

	logger, closer, err := logging.New(os.Stderr, logging.Options{
		Level: *levelPtr,
		File:  *logFilePtr,
	})
	if err != nil {
		return err
	}

	defer closer.Close()

	cfg, err := LoadConfig(*configPtr)
	if err != nil {
		return err
	}

	if cfg.ClientID == 0 {
		cfg.ClientID, err = strconv.ParseInt(os.Getenv(clientIDEnv), 10, 64)
		if err != nil {
			return fmt.Errorf("client_id is not set in the config nor in $%s", clientIDEnv)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Discord shows whole seconds.
	started := time.Now().Truncate(time.Second)

	var client *rpc.Client

	client = rpc.New(rpc.Options{
		ClientID: cfg.ClientID,
		Backend:  cfg.BackendFactory(),
		Handler:  newHandler(ctx, logger, cfg, func() *rpc.Client { return client }),
		Logger:   logger,
	})

	rp, err := cfg.Presence.Build(started)
	if err != nil {
		return err
	}

	if err = client.Start(ctx, rp); err != nil {
		return err
	}

	logger.Info().
		Int64("client_id", cfg.ClientID).
		Str("backend", cfg.Backend).
		Msg("Presence published")

	w, err := watchConfig(*configPtr, *pollPtr, logger, func() {
		reload(ctx, logger, client, cfg, *configPtr, started)
	})
	if err != nil {
		_ = client.Close() //nolint:errcheck
		return err
	}

	defer w.Close()

	<-ctx.Done()

	logger.Info().Msg("Shutting down")

	return client.Close()
}

func newHandler(ctx context.Context, logger zerolog.Logger, cfg *Config, client func() *rpc.Client) rpc.Handler {
	reply, autoReply := cfg.JoinReply()

	return rpc.HandlerFuncs{
		Join: func(secret string) {
			logger.Info().Str("secret", secret).Msg("Joining game")
		},
		Spectate: func(secret string) {
			logger.Info().Str("secret", secret).Msg("Spectating game")
		},
		JoinRequest: func(request rpc.JoinRequest) {
			logger.Info().
				Int64("user_id", request.UserID).
				Str("username", request.Username).
				Str("avatar", request.AvatarURL).
				Msg("Join request received")

			if !autoReply {
				return
			}

			// Handlers run on the client loop, so the reply is sent from
			// another goroutine.
			go func() {
				if err := client().RespondToJoinRequest(ctx, request.UserID, reply); err != nil {
					logger.Warn().Err(err).Int64("user_id", request.UserID).Msg("Failed to answer join request")
				}
			}()
		},
		Invite: func(invite rpc.Invite) {
			logger.Info().
				Int64("user_id", invite.UserID).
				Str("username", invite.Username).
				Msg("Invite received")
		},
	}
}

func reload(ctx context.Context, logger zerolog.Logger, client *rpc.Client, current *Config, path string, started time.Time) {
	cfg, err := LoadConfig(path)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to reload config")
		return
	}

	if cfg.Backend != current.Backend || (cfg.ClientID != 0 && cfg.ClientID != current.ClientID) {
		logger.Warn().Msg("Backend and client id changes need a restart")
	}

	rp, err := cfg.Presence.Build(started)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to build presence")
		return
	}

	if err = client.Update(ctx, rp); err != nil {
		logger.Warn().Err(err).Msg("Failed to update presence")
		return
	}

	logger.Info().Msg("Presence reloaded")
}

func watchConfig(path string, interval time.Duration, logger zerolog.Logger, onChange func()) (*watcher.Watcher, error) {
	w := watcher.New()
	w.SetMaxEvents(1)
	w.FilterOps(watcher.Write, watcher.Create)

	if err := w.Add(path); err != nil {
		return nil, fmt.Errorf("failed to watch config: %w", err)
	}

	go func() {
		for {
			select {
			case <-w.Event:
				onChange()
			case err := <-w.Error:
				logger.Warn().Err(err).Msg("Config watcher failed")
			case <-w.Closed:
				return
			}
		}
	}()

	go func() {
		if err := w.Start(interval); err != nil {
			logger.Warn().Err(err).Msg("Config watcher stopped")
		}
	}()

	w.Wait()

	return w, nil
}
