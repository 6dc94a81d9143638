package bot

import (
	"context"
	"log"
	"os"

	"github.com/bwmarrin/discordgo"

	"github.com/snatchbot/snatch/internal/downloader"
	"github.com/snatchbot/snatch/internal/metrics"
	"github.com/snatchbot/snatch/internal/storage"
	"github.com/snatchbot/snatch/internal/util"
)

// messenger is the slice of the gateway session the download flow
// needs. *discordgo.Session satisfies it.
type messenger interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEdit(channelID, messageID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error
}

// processDownload runs the full chat-channel job: status message,
// orchestrator, inline upload. Whatever happens, the artifact does not
// survive this function.
func (b *Bot) processDownload(s messenger, m *discordgo.MessageCreate, url string) {
	if check := util.ValidateURL(url); !check.Valid {
		s.ChannelMessageSend(m.ChannelID, "❌ "+check.Error)
		return
	}

	status, err := s.ChannelMessageSend(m.ChannelID, "⏳ Downloading video...")
	if err != nil {
		log.Printf("[Bot] failed to post status message: %v", err)
		return
	}

	name := downloader.BotArtifactName(m.ChannelID, m.ID)
	res, fail := b.orc.Run(context.Background(), url, name, downloader.BotPolicy)
	if fail != nil {
		metrics.RecordJob(downloader.BotPolicy.Channel, fail.Kind.String())
		s.ChannelMessageEdit(m.ChannelID, status.ID, failureMessage(fail, b.cfg.PublicURL))
		return
	}
	metrics.RecordJob(downloader.BotPolicy.Channel, "success")

	// The chat channel never retains files.
	defer storage.DeleteNow(res.Path)

	s.ChannelMessageEdit(m.ChannelID, status.ID, "📤 Uploading video...")

	f, err := os.Open(res.Path)
	if err != nil {
		log.Printf("[Bot] cannot open artifact %s: %v", res.Path, err)
		s.ChannelMessageEdit(m.ChannelID, status.ID, "❌ Something went wrong sending the video.")
		return
	}
	defer f.Close()

	_, err = s.ChannelMessageSendComplex(m.ChannelID, &discordgo.MessageSend{
		Content: "✅ Done!",
		Files: []*discordgo.File{
			{Name: "video.mp4", ContentType: "video/mp4", Reader: f},
		},
		Reference: m.Reference(),
	})
	if err != nil {
		log.Printf("[Bot] upload failed: %v", err)
		s.ChannelMessageEdit(m.ChannelID, status.ID, "❌ Something went wrong sending the video.")
		return
	}

	s.ChannelMessageDelete(m.ChannelID, status.ID)
}
