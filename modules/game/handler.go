package game

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"suibot/internal/bot"
	"suibot/internal/logging"
	"suibot/internal/sui"
	"suibot/internal/wallet"
)

// Module answers /hunt and /battle with the game state board.
type Module struct {
	ctx     context.Context
	lister  wallet.CoinLister
	owner   sui.Address
	timeout time.Duration
	logger  *zap.Logger
}

func New(ctx context.Context, lister wallet.CoinLister, owner sui.Address, timeout time.Duration, logger *zap.Logger) *Module {
	return &Module{
		ctx:     ctx,
		lister:  lister,
		owner:   owner,
		timeout: timeout,
		logger:  logger.With(zap.String("module", "game")),
	}
}

func (m *Module) Name() string {
	return "game"
}

func (m *Module) Commands() []*discordgo.ApplicationCommand {
	return GameCommand
}

func (m *Module) Register(s *discordgo.Session) {
	s.AddHandler(m.handleCommand)
}

func commandNames() []string {
	names := make([]string, 0, len(GameCommand))
	for _, c := range GameCommand {
		names = append(names, c.Name)
	}
	return names
}

func (m *Module) handleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !bot.IsCommand(i, commandNames()...) {
		return
	}

	name := i.ApplicationCommandData().Name
	fields := logging.CommandFields(name, i.GuildID, bot.InteractionUser(i))

	if err := bot.Acknowledge(s, i); err != nil {
		m.logger.Error("Failed to acknowledge interaction", append(fields, zap.Error(err))...)
		return
	}

	content, err := m.reply()
	if err != nil {
		m.logger.Error("Error building game state", append(fields, zap.Error(err))...)
		if err := bot.FollowupError(s, i, content); err != nil {
			m.logger.Error("Failed to send followup (error)", append(fields, zap.Error(err))...)
		}
		return
	}

	if err := bot.Followup(s, i, content); err != nil {
		m.logger.Error("Failed to send followup", append(fields, zap.Error(err))...)
		return
	}
	m.logger.Info("Answered game command", fields...)
}

// reply returns the board, or the user-facing error text together with the error.
func (m *Module) reply() (string, error) {
	ctx, cancel := context.WithTimeout(m.ctx, m.timeout)
	defer cancel()

	state, err := wallet.NewGameState(ctx, m.lister, m.owner)
	if err != nil {
		return fmt.Sprintf("❌ Error fetching balance: %v", err), err
	}
	return state.Board(), nil
}
