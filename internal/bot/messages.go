package bot

import (
	"fmt"

	"github.com/snatchbot/snatch/internal/downloader"
)

func welcomeMessage(publicURL string) string {
	return fmt.Sprintf(
		"👋 Hi! Two ways to download a video:\n\n"+
			"🌐 **Web app** (recommended)\n"+
			"· up to 2 GB\n"+
			"· direct download to your device\n"+
			"· %s\n\n"+
			"💬 **Send a link in chat**\n"+
			"· up to 50 MB\n"+
			"· video is delivered right here\n\n"+
			"Paste a link to get started ⬇️",
		publicURL,
	)
}

func promptMessage() string {
	return "❌ Please send a video link, or use the web app."
}

func failureMessage(fail *downloader.Failure, publicURL string) string {
	switch fail.Kind {
	case downloader.KindNotFound:
		return "❌ Couldn't download the video. Check the link."
	case downloader.KindOversize:
		return fmt.Sprintf(
			"❌ Video is too large for chat (over 50 MB).\n\n"+
				"💡 Use the web app for big files: %s",
			publicURL,
		)
	case downloader.KindEngineError:
		return "❌ Download error. Possible causes:\n" +
			"· broken link\n" +
			"· video is unavailable\n" +
			"· site isn't supported"
	default:
		return fmt.Sprintf("❌ Something went wrong: %s", fail.Message)
	}
}
