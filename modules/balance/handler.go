package balance

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

// Module answers "!balance" messages and the /balance command with the balance board.
type Module struct {
	ctx     context.Context
	lister  wallet.CoinLister
	owner   sui.Address
	timeout time.Duration
	logger  *zap.Logger
}

// New builds the module. ctx bounds every lookup, so cancelling it abandons in-flight requests.
func New(ctx context.Context, lister wallet.CoinLister, owner sui.Address, timeout time.Duration, logger *zap.Logger) *Module {
	return &Module{
		ctx:     ctx,
		lister:  lister,
		owner:   owner,
		timeout: timeout,
		logger:  logger.With(zap.String("module", "balance")),
	}
}

func (m *Module) Name() string {
	return "balance"
}

func (m *Module) Commands() []*discordgo.ApplicationCommand {
	return BalanceCommand
}

func (m *Module) Register(s *discordgo.Session) {
	s.AddHandler(m.handleMessage)
	s.AddHandler(m.handleCommand)
}

// handleMessage answers a message whose body is exactly MessageTrigger.
func (m *Module) handleMessage(s *discordgo.Session, msg *discordgo.MessageCreate) {
	if bot.IsOwnMessage(s, msg) || msg.Content != MessageTrigger {
		return
	}

	fields := logging.CommandFields(MessageTrigger, msg.GuildID, msg.Author)
	content, err := m.board()
	if err != nil {
		m.logger.Error("Error fetching balance", append(fields, zap.Error(err))...)
		content = errorReply(err)
	}

	if _, err := s.ChannelMessageSend(msg.ChannelID, content); err != nil {
		m.logger.Error("Error sending message", append(fields, zap.Error(err))...)
		return
	}
	m.logger.Info("Answered balance message", fields...)
}

// handleCommand processes the /balance command.
func (m *Module) handleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !bot.IsCommand(i, BalanceCommand[0].Name) {
		return
	}

	fields := logging.CommandFields(BalanceCommand[0].Name, i.GuildID, bot.InteractionUser(i))
	if err := bot.Acknowledge(s, i); err != nil {
		m.logger.Error("Failed to acknowledge interaction", append(fields, zap.Error(err))...)
		return
	}

	content, err := m.board()
	if err != nil {
		m.logger.Error("Error fetching balance", append(fields, zap.Error(err))...)
		if err := bot.FollowupError(s, i, errorReply(err)); err != nil {
			m.logger.Error("Failed to send followup (error)", append(fields, zap.Error(err))...)
		}
		return
	}

	if err := bot.Followup(s, i, content); err != nil {
		m.logger.Error("Failed to send followup", append(fields, zap.Error(err))...)
		return
	}
	m.logger.Info("Answered balance command", fields...)
}

func (m *Module) board() (string, error) {
	ctx, cancel := context.WithTimeout(m.ctx, m.timeout)
	defer cancel()

	coin, err := wallet.SelectCoin(ctx, m.lister, m.owner)
	if err != nil {
		return "", err
	}
	return wallet.RenderBoard(m.owner.String(), coin), nil
}

func errorReply(err error) string {
	return fmt.Sprintf("❌ Error fetching balance: %v", err)
}
