package balance

import "github.com/bwmarrin/discordgo"

// MessageTrigger is the plain-text command answered in any channel the bot can read.
const MessageTrigger = "!balance"

var BalanceCommand = []*discordgo.ApplicationCommand{
	{
		Name:        "balance",
		Description: "Show the SUI balance of the bot's configured address",
	},
}
