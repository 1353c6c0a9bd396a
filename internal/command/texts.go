package command

const welcomeTemplate = `🎉 Welcome to DailyEcho! 🎉

Hello, %s! We're thrilled to have you onboard. DailyEcho transforms your daily moments into captivating social media posts with a simple command. Whether you're sharing insights on LinkedIn, updates on Facebook, or tweets on Twitter, we've got you covered.

Here's what you can do:
- Log your thoughts: just type your daily events.
- Generate posts: use the /generate command to see magic in action.
- View your stats and history: check /stats and /history for your journey.
- Customize your experience: update your settings with /settings.

Type /help to get started and explore all available commands.

Let's create some engaging content together!`

const helpText = `Available Commands:
/start - Register and start using the bot
/generate - Generate social media posts from your logged events
/clear - Clear your logged events
/stats - View your usage statistics
/history - View your recent logged events
/settings - Update your post settings (e.g., tone, platforms)
/export - Export your logs as a CSV file
/info - Get information about the bot
/help - Show this help message`

const infoTemplate = `DailyEcho Bot %s
Crafting engaging social media posts from your daily logs.
For support or feedback, contact the developer.`

const (
	noteSavedText   = "Noted. Keep sending your thoughts. To generate posts, just enter the command: /generate"
	noEventsText    = "No events for the day."
	logsClearedText = "Your logs have been cleared."
	noHistoryText   = "You haven't logged any events yet."
	noExportText    = "You have no events to export."
	settingsUsage   = "Usage:\n/settings tone <value>\n/settings platforms <value>"
	settingsFields  = "You can only update 'tone' or 'platforms'."

	registerFailedText = "Facing difficulties while registering you."
	generateFailedText = "There was a problem with the generation service."
	clearFailedText    = "Sorry, I couldn't clear your logs. Please try again later."
	statsFailedText    = "Sorry, I couldn't retrieve your stats at the moment."
	historyFailedText  = "Sorry, I couldn't retrieve your history right now."
	settingsFailedText = "Sorry, I couldn't update your settings. Please try again later."
	exportFailedText   = "Sorry, I couldn't export your events at the moment."
	noteFailedText     = "Facing issues, please try again later."
)
