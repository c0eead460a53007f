// Package bottest records the REST calls a discordgo session makes so handlers
// can be tested without reaching Discord.
package bottest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"
)

// Request is one recorded REST call.
type Request struct {
	Method string
	Path   string
	Body   map[string]any
}

// Transport answers every request with a minimal message object and keeps a copy of it.
type Transport struct {
	mu       sync.Mutex
	requests []Request
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	rec := Request{Method: req.Method, Path: req.URL.Path}
	if req.Body != nil {
		raw, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		_ = req.Body.Close()
		if len(raw) > 0 {
			_ = json.Unmarshal(raw, &rec.Body)
		}
	}

	t.mu.Lock()
	t.requests = append(t.requests, rec)
	t.mu.Unlock()

	w := httptest.NewRecorder()
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.WriteString(`{"id":"m1","channel_id":"c1"}`)
	return w.Result(), nil
}

// Requests returns the calls recorded so far in order.
func (t *Transport) Requests() []Request {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Request(nil), t.requests...)
}

// Session returns a session logged in as botID whose REST calls go to a new Transport.
func Session(botID string) (*discordgo.Session, *Transport) {
	s, _ := discordgo.New("Bot token")
	tr := &Transport{}
	s.Client = &http.Client{Transport: tr}
	s.State.User = &discordgo.User{ID: botID}
	return s, tr
}

// Command builds a guild slash command interaction named name.
func Command(name string) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		ID:      "i1",
		AppID:   "app",
		Token:   "tok",
		GuildID: "g1",
		Type:    discordgo.InteractionApplicationCommand,
		Data:    discordgo.ApplicationCommandInteractionData{Name: name},
		Member:  &discordgo.Member{User: &discordgo.User{ID: "u1", Username: "user"}},
	}}
}

// Message builds a guild message in channel c1 from authorID.
func Message(authorID, content string) *discordgo.MessageCreate {
	return &discordgo.MessageCreate{Message: &discordgo.Message{
		ChannelID: "c1",
		GuildID:   "g1",
		Content:   content,
		Author:    &discordgo.User{ID: authorID, Username: "user"},
	}}
}

// IsCallback reports whether r acknowledges an interaction.
func (r Request) IsCallback() bool {
	return r.Method == http.MethodPost && strings.HasSuffix(r.Path, "/callback")
}

// IsFollowup reports whether r is a webhook followup for application appID.
func (r Request) IsFollowup(appID string) bool {
	return r.Method == http.MethodPost && strings.Contains(r.Path, "/webhooks/"+appID+"/")
}

// Ephemeral reports whether r asked for a message only the invoker sees.
func (r Request) Ephemeral() bool {
	flags, _ := r.Body["flags"].(float64)
	return discordgo.MessageFlags(flags)&discordgo.MessageFlagsEphemeral != 0
}
