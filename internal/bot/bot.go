package bot

import (
	"log"
	"regexp"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/snatchbot/snatch/internal/downloader"
)

var urlRe = regexp.MustCompile(`^https?://`)

type Config struct {
	Token     string
	PublicURL string
}

// Bot is the chat delivery adapter. It listens for messages on its
// long-lived gateway session and turns URL messages into inline video
// uploads, subject to the 50 MiB chat ceiling.
type Bot struct {
	session *discordgo.Session
	cfg     Config
	orc     *downloader.Orchestrator
}

func New(cfg Config, orc *downloader.Orchestrator) (*Bot, error) {
	s, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, err
	}

	b := &Bot{session: s, cfg: cfg, orc: orc}

	s.AddHandler(b.handleMessage)
	s.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent

	return b, nil
}

// Start opens the gateway session, which runs the receive loop for the
// life of the process.
func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return err
	}
	log.Printf("[Bot] logged in as %s", b.session.State.User.Username)
	return nil
}

// Stop closes the gateway session, ending the receive loop. In-flight
// downloads are abandoned; the orphan sweeper picks up their leftovers.
func (b *Bot) Stop() {
	b.session.Close()
}

func (b *Bot) handleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}

	content := strings.TrimSpace(m.Content)
	switch {
	case content == "!start":
		s.ChannelMessageSend(m.ChannelID, welcomeMessage(b.cfg.PublicURL))
	case MatchesURL(content):
		go b.processDownload(s, m, content)
	default:
		s.ChannelMessageSend(m.ChannelID, promptMessage())
	}
}

// MatchesURL reports whether a message should be routed to the download
// flow at all. Anything that doesn't match never reaches the
// orchestrator and never creates a file.
func MatchesURL(content string) bool {
	return urlRe.MatchString(content)
}
