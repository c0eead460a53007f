package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Intents are the gateway intents every shard identifies with.
const Intents = discordgo.IntentsGuildMessages | discordgo.IntentsDirectMessages | discordgo.IntentsMessageContent

// identifyInterval spaces shard logins; Discord allows one identify per 5s by default.
const identifyInterval = 5 * time.Second

// Module is a set of commands and the handlers that serve them.
type Module interface {
	Name() string
	Commands() []*discordgo.ApplicationCommand
	Register(s *discordgo.Session)
}

type Options struct {
	Token   string
	GuildID string
	// ShardCount is the number of gateway sessions to open.
	ShardCount     int
	RemoveCommands bool
}

// Bot owns one discordgo session per shard.
type Bot struct {
	opts     Options
	logger   *zap.Logger
	modules  []Module
	sessions []*discordgo.Session

	registered []*discordgo.ApplicationCommand
	interval   time.Duration
}

// New creates the shard sessions and attaches every module's handlers to each.
// No connection is made until Open.
func New(opts Options, logger *zap.Logger, modules ...Module) (*Bot, error) {
	if opts.ShardCount < 1 {
		opts.ShardCount = 1
	}
	if _, err := Commands(modules...); err != nil {
		return nil, err
	}

	b := &Bot{
		opts:     opts,
		logger:   logger,
		modules:  modules,
		interval: identifyInterval,
	}

	for shard := 0; shard < opts.ShardCount; shard++ {
		s, err := discordgo.New("Bot " + opts.Token)
		if err != nil {
			return nil, fmt.Errorf("invalid bot parameters: %w", err)
		}
		s.ShardID = shard
		s.ShardCount = opts.ShardCount
		s.Identify.Intents = Intents
		if opts.ShardCount > 1 {
			s.Identify.Shard = &[2]int{shard, opts.ShardCount}
		}

		s.AddHandler(b.onReady)
		for _, m := range modules {
			m.Register(s)
		}
		b.sessions = append(b.sessions, s)
	}

	return b, nil
}

// Commands collects the application commands of all modules, rejecting duplicate names.
func Commands(modules ...Module) ([]*discordgo.ApplicationCommand, error) {
	seen := make(map[string]string)
	var cmds []*discordgo.ApplicationCommand
	for _, m := range modules {
		for _, cmd := range m.Commands() {
			if owner, ok := seen[cmd.Name]; ok {
				return nil, fmt.Errorf("command %q is defined by both %s and %s", cmd.Name, owner, m.Name())
			}
			seen[cmd.Name] = m.Name()
			cmds = append(cmds, cmd)
		}
	}
	return cmds, nil
}

func (b *Bot) Sessions() []*discordgo.Session {
	return b.sessions
}

// Open connects every shard, then registers the application commands once through shard 0.
func (b *Bot) Open(ctx context.Context) error {
	for i, s := range b.sessions {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(b.interval):
			}
		}
		if err := s.Open(); err != nil {
			return fmt.Errorf("cannot open shard %d: %w", s.ShardID, err)
		}
	}

	cmds, err := Commands(b.modules...)
	if err != nil {
		return err
	}

	s := b.sessions[0]
	b.logger.Info("Adding commands...", zap.Int("count", len(cmds)))
	for _, v := range cmds {
		cmd, err := s.ApplicationCommandCreate(s.State.User.ID, b.opts.GuildID, v)
		if err != nil {
			return fmt.Errorf("cannot create '%s' command: %w", v.Name, err)
		}
		b.registered = append(b.registered, cmd)
		b.logger.Info("Added command", zap.String("name", v.Name), zap.String("description", v.Description))
	}

	return nil
}

// Close removes the registered commands when configured to, then closes every shard.
func (b *Bot) Close() error {
	var errs []error

	if b.opts.RemoveCommands && len(b.registered) > 0 {
		b.logger.Info("Removing commands...")
		s := b.sessions[0]
		var g errgroup.Group
		for _, v := range b.registered {
			g.Go(func() error {
				if err := s.ApplicationCommandDelete(s.State.User.ID, b.opts.GuildID, v.ID); err != nil {
					return fmt.Errorf("cannot delete '%s' command: %w", v.Name, err)
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			errs = append(errs, err)
		}
		b.registered = nil
	}

	var g errgroup.Group
	for _, s := range b.sessions {
		g.Go(func() error {
			if err := s.Close(); err != nil {
				return fmt.Errorf("close shard %d: %w", s.ShardID, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.logger.Info("Logged in",
		zap.String("user", r.User.Username+"#"+r.User.Discriminator),
		zap.Int("shard", s.ShardID),
	)
}
