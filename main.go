package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"suibot/internal/bot"
	"suibot/internal/config"
	"suibot/internal/logging"
	"suibot/internal/sui"
	"suibot/modules/balance"
	"suibot/modules/game"
)

// Bot parameters
var (
	EnvFile        = flag.String("env", ".env", "Path of the dotenv file to load before reading the environment")
	Mode           = flag.String("mode", "", "Command set to serve: balance, game or all. Overrides BOT_MODE")
	RemoveCommands = flag.String("rmcmd", "", "Remove all commands after shutting down (true/false). Overrides DISCORD_REMOVE_COMMANDS")
)

func main() {
	flag.Parse()

	if *Mode != "" {
		os.Setenv("BOT_MODE", *Mode)
	}
	if *RemoveCommands != "" {
		os.Setenv("DISCORD_REMOVE_COMMANDS", *RemoveCommands)
	}

	cfg, err := config.Load(*EnvFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger, closeLogger, err := logging.New(cfg.LogLevel, cfg.LogDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer closeLogger()

	if err := run(cfg, logger); err != nil {
		logger.Error("Bot stopped with error", zap.Error(err))
		closeLogger()
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	endpoint, err := cfg.Sui.Endpoint()
	if err != nil {
		return err
	}
	owner := cfg.Sui.Owner()

	logger.Info("Bot starting up...",
		zap.String("mode", cfg.Mode),
		zap.String("address", owner.String()),
		zap.String("rpc", endpoint),
		zap.Int("shards", cfg.Discord.ShardCount),
	)

	client := sui.NewClient(endpoint,
		sui.WithLogger(logger.With(zap.String("component", "sui"))),
		sui.WithPageLimit(cfg.Sui.PageLimit),
		sui.WithMaxAttempts(cfg.Sui.MaxAttempts),
	)

	var modules []bot.Module
	withBalance, withGame := cfg.Modules()
	if withBalance {
		modules = append(modules, balance.New(ctx, client, owner, cfg.Sui.RPCTimeout, logger))
	}
	if withGame {
		modules = append(modules, game.New(ctx, client, owner, cfg.Sui.RPCTimeout, logger))
	}

	b, err := bot.New(bot.Options{
		Token:          cfg.Discord.Token,
		GuildID:        cfg.Discord.GuildID,
		ShardCount:     cfg.Discord.ShardCount,
		RemoveCommands: cfg.Discord.RemoveCommands,
	}, logger, modules...)
	if err != nil {
		return err
	}

	defer func() {
		if err := b.Close(); err != nil {
			logger.Error("Failed to shut down cleanly", zap.Error(err))
		}
		logger.Info("Gracefully shutting down.")
	}()

	if err := b.Open(ctx); err != nil {
		return fmt.Errorf("cannot open the session: %w", err)
	}

	logger.Info("Bot is now running. Press CTRL-C to exit.")
	<-ctx.Done()
	return nil
}
