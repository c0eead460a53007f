package game

import "github.com/bwmarrin/discordgo"

var GameCommand = []*discordgo.ApplicationCommand{
	{
		Name:        "hunt",
		Description: "Go hunting and show your game state",
	},
	{
		Name:        "battle",
		Description: "Enter a battle and show your game state",
	},
}
