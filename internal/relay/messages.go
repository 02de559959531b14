package relay

// BotUsername is the public handle appended to every delivered caption.
const BotUsername = "@quick_instagram_bot"

// CaptionTrail is the marker appended to captions; it always survives
// truncation.
const CaptionTrail = "\n\n\n" + BotUsername

// MaxCaptionLength is the Telegram media-caption limit, inclusive of the
// trail.
const MaxCaptionLength = 1024

// MaxGroupSize is the Telegram media-group limit per sendMediaGroup call.
const MaxGroupSize = 10

// User-visible message texts. These are the only strings that ever reach an
// end user; error detail stays in logs.
const (
	StartMessage = `Send an instagram link to download.

It can be a post link like this:
https://www.instagram.com/p/DFx_jLuACs3

Or it can be a reel link like this:
https://www.instagram.com/reel/C59DWpvOpgF`

	HelpMessage = `<b>Instagram Downloader -- Help</b>

This is a link-based Instagram downloader. Send an Instagram post link and the bot will fetch the media and return it here as downloadable files.

<b>How it works</b>
1. Copy the link to an Instagram post
2. Paste the link into chat with this bot
3. The bot downloads the media and sends it back as files

<b>Supported right now</b>
- Public Instagram posts
- Photo posts and carousel images

<b>Limits and expectations</b>
- Some posts may fail due to Instagram restrictions or rate limits
- If it fails, try again later or send a different link`

	PrivacyMessage = `<b>Privacy</b>

This bot does not collect, store, or share any personal user data.

Links you send are used only to fetch the requested media and are not saved after processing.`

	WorkingMessage = "Ok wait a few moments..."

	EndMessage = `Done! If you like the bot you can share it to show the love ☆`

	FailMessage = `Sorry, my process wasn't successful. But you can try again another time or with another link.`

	WrongPatternMessage = `Wrong pattern.
You should send an instagram post or reel link.`

	SpotifyMessage = "This bot only supports Instagram links. Please send an Instagram post link."

	JoinGateMessage = `<b>Join Gate Entry</b>

Please join the updates channel. After joining, tap Refresh to unlock the bot.`

	JoinRequiredMessage = "Please join the updates channel first, then tap Download again."

	StillNotJoinedMessage = "You still need to join the updates channel first."
)
