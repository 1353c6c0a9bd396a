package command

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/dailyecho/dailyecho/internal/composer"
	"github.com/dailyecho/dailyecho/internal/export"
	"github.com/dailyecho/dailyecho/internal/store"
)

func handleStart(ctx context.Context, sender Sender, _ string, deps Deps) Reply {
	_, err := deps.Store.UpsertUser(ctx, store.User{
		TgID:      sender.ID,
		FirstName: sender.FirstName,
		LastName:  sender.LastName,
		IsBot:     sender.IsBot,
		Username:  sender.Username,
	})
	if err != nil {
		log.Printf("[command] start for %s: %v", sender.ID, err)
		return Reply{Text: registerFailedText}
	}
	return Reply{Text: fmt.Sprintf(welcomeTemplate, sender.FirstName)}
}

func handleNote(ctx context.Context, sender Sender, text string, deps Deps) Reply {
	if _, err := deps.Store.AppendEvent(ctx, sender.ID, text); err != nil {
		log.Printf("[command] append note for %s: %v", sender.ID, err)
		return Reply{Text: noteFailedText}
	}
	return Reply{Text: noteSavedText}
}

func handleGenerate(ctx context.Context, sender Sender, _ string, deps Deps) Reply {
	events, err := deps.Store.EventsOnDay(ctx, sender.ID, deps.now(), deps.location())
	if err != nil {
		log.Printf("[command] fetch day events for %s: %v", sender.ID, err)
		return Reply{Text: generateFailedText}
	}
	if len(events) == 0 {
		return Reply{Text: noEventsText}
	}

	if deps.Notify != nil {
		deps.Notify(fmt.Sprintf("Hey %s, please wait while I curate your post ☺️", sender.FirstName))
	}

	settings := composer.Settings{}
	if user, err := deps.Store.GetUser(ctx, sender.ID); err == nil {
		settings.Tone = user.Tone
		settings.Platforms = user.Platforms
	} else if !errors.Is(err, store.ErrNotFound) {
		log.Printf("[command] load settings for %s: %v", sender.ID, err)
	}

	notes := make([]string, len(events))
	for i, ev := range events {
		notes[i] = ev.Text
	}

	digest, err := composer.Compose(ctx, deps.Generator, notes, settings)
	if err != nil {
		log.Printf("[command] compose digest for %s: %v", sender.ID, err)
		return Reply{Text: generateFailedText}
	}

	// Credit the post only once the service has actually produced one.
	if err := deps.Store.IncrementPostsGenerated(ctx, sender.ID); err != nil {
		log.Printf("[command] increment posts for %s: %v", sender.ID, err)
	}
	return Reply{Text: digest}
}

func handleClear(ctx context.Context, sender Sender, _ string, deps Deps) Reply {
	n, err := deps.Store.ClearEvents(ctx, sender.ID)
	if err != nil {
		log.Printf("[command] clear events for %s: %v", sender.ID, err)
		return Reply{Text: clearFailedText}
	}
	log.Printf("[command] cleared %d event(s) for %s", n, sender.ID)
	return Reply{Text: logsClearedText}
}

func handleStats(ctx context.Context, sender Sender, _ string, deps Deps) Reply {
	count, err := deps.Store.CountEvents(ctx, sender.ID)
	if err != nil {
		log.Printf("[command] count events for %s: %v", sender.ID, err)
		return Reply{Text: statsFailedText}
	}

	var posts int64
	user, err := deps.Store.GetUser(ctx, sender.ID)
	if err == nil {
		posts = user.PostsGenerated
	} else if !errors.Is(err, store.ErrNotFound) {
		log.Printf("[command] stats user lookup for %s: %v", sender.ID, err)
		return Reply{Text: statsFailedText}
	}

	return Reply{Text: fmt.Sprintf("You have logged %d event(s) and generated %d post(s).", count, posts)}
}

func handleHistory(ctx context.Context, sender Sender, _ string, deps Deps) Reply {
	events, err := deps.Store.RecentEvents(ctx, sender.ID, 5)
	if err != nil {
		log.Printf("[command] recent events for %s: %v", sender.ID, err)
		return Reply{Text: historyFailedText}
	}
	if len(events) == 0 {
		return Reply{Text: noHistoryText}
	}

	var sb strings.Builder
	sb.WriteString("Your recent events:")
	for i, ev := range events {
		sb.WriteString(fmt.Sprintf("\n%d. %s", i+1, ev.Text))
	}
	return Reply{Text: sb.String()}
}

func handleSettings(ctx context.Context, sender Sender, args string, deps Deps) Reply {
	fields := strings.Fields(args)
	if len(fields) < 2 {
		return Reply{Text: settingsUsage}
	}

	field := strings.ToLower(fields[0])
	if field != "tone" && field != "platforms" {
		return Reply{Text: settingsFields}
	}
	value := strings.Join(fields[1:], " ")

	if err := deps.Store.UpdateSetting(ctx, sender.ID, field, value); err != nil {
		log.Printf("[command] update %s for %s: %v", field, sender.ID, err)
		return Reply{Text: settingsFailedText}
	}
	return Reply{Text: fmt.Sprintf("Your %s has been updated to: %s", field, value)}
}

func handleExport(ctx context.Context, sender Sender, _ string, deps Deps) Reply {
	events, err := deps.Store.AllEvents(ctx, sender.ID)
	if err != nil {
		log.Printf("[command] export events for %s: %v", sender.ID, err)
		return Reply{Text: exportFailedText}
	}
	if len(events) == 0 {
		return Reply{Text: noExportText}
	}

	return Reply{Document: &Document{
		Name: export.Filename,
		Data: export.Encode(events),
	}}
}

func handleHelp(_ context.Context, _ Sender, _ string, _ Deps) Reply {
	return Reply{Text: helpText}
}

func handleInfo(_ context.Context, _ Sender, _ string, deps Deps) Reply {
	version := deps.Version
	if version == "" {
		version = "dev"
	}
	return Reply{Text: fmt.Sprintf(infoTemplate, version)}
}
