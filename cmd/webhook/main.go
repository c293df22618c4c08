// Command webhook posts a message through a Discord webhook.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"rsc.io/getopt"

	"github.com/EpicStep/discord-integration-go/internal/logging"
	"github.com/EpicStep/discord-integration-go/webhook"
)

const urlEnv = "DISCORD_WEBHOOK_URL"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "webhook:", err)
		os.Exit(1)
	}
}

func run() error {
	envPtr := flag.String("env", ".env", "dotenv file to load")

	urlPtr := flag.String("url", "", "webhook url, defaults to $"+urlEnv)
	getopt.Alias("u", "url")

	contentPtr := flag.String("content", "", "message content")
	getopt.Alias("c", "content")

	usernamePtr := flag.String("username", "", "override the webhook name")
	avatarPtr := flag.String("avatar", "", "override the webhook avatar url")

	titlePtr := flag.String("title", "", "embed title")
	getopt.Alias("t", "title")

	descriptionPtr := flag.String("description", "", "embed description")
	getopt.Alias("d", "description")

	colorPtr := flag.String("color", "", "embed colour as hex")
	footerPtr := flag.String("footer", "", "embed footer text")

	filesPtr := flag.String("files", "", "comma separated files to attach")
	getopt.Alias("f", "files")

	imagePtr := flag.String("image", "", "single png, jpg or gif to attach")
	altPtr := flag.String("alt", "", "alt text for attached files")
	spoilerPtr := flag.Bool("spoiler", false, "send attachments as spoilers")
	ttsPtr := flag.Bool("tts", false, "read the message aloud")
	timeoutPtr := flag.Duration("timeout", 30*time.Second, "request timeout")

	levelPtr := flag.String("log-level", zerolog.InfoLevel.String(), "log level")
	getopt.Alias("l", "log-level")

	logFilePtr := flag.String("log-file", "", "also log to this file")

	getopt.Parse()

	if err := godotenv.Load(*envPtr); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", *envPtr, err)
	}

	logger, closer, err := logging.New(os.Stderr, logging.Options{
		Level: *levelPtr,
		File:  *logFilePtr,
	})
	if err != nil {
		return err
	}

	defer closer.Close()

	webhookURL := *urlPtr
	if webhookURL == "" {
		webhookURL = os.Getenv(urlEnv)
	}

	msg := webhook.NewMessage(*contentPtr).SetTTS(*ttsPtr)

	embed, err := buildEmbed(*titlePtr, *descriptionPtr, *colorPtr, *footerPtr)
	if err != nil {
		return err
	}

	if embed != nil {
		msg.AddEmbeds(embed)
	}

	var profile *webhook.Profile
	if *usernamePtr != "" || *avatarPtr != "" {
		profile = webhook.NewProfile(*usernamePtr, *avatarPtr)
	}

	client, err := webhook.New(webhookURL, webhook.Options{
		Logger: logger,
	})
	if err != nil {
		return err
	}

	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeoutPtr)
	defer cancel()

	var id webhook.Snowflake

	switch {
	case *imagePtr != "":
		image, err := webhook.AttachmentFromFile(*imagePtr, *altPtr, *spoilerPtr)
		if err != nil {
			return err
		}

		id, err = client.ExecuteWithImage(ctx, msg, profile, image)
		if err != nil {
			return err
		}
	case *filesPtr != "":
		attachments, err := readAttachments(*filesPtr, *altPtr, *spoilerPtr)
		if err != nil {
			return err
		}

		id, err = client.ExecuteWithAttachments(ctx, msg, profile, attachments...)
		if err != nil {
			return err
		}
	default:
		id, err = client.Execute(ctx, msg, profile)
		if err != nil {
			return err
		}
	}

	logger.Info().Stringer("id", id).Msg("Message sent")

	return nil
}

func buildEmbed(title, description, color, footer string) (*webhook.Embed, error) {
	if title == "" && description == "" && footer == "" {
		return nil, nil
	}

	embed := webhook.NewEmbed().
		SetTitle(title).
		SetDescription(description).
		SetTimestamp(time.Now())

	if footer != "" {
		embed.SetFooter(webhook.NewEmbedFooter(footer, ""))
	}

	if color != "" {
		c, err := webhook.ColorFromHex(color)
		if err != nil {
			return nil, err
		}

		embed.SetColor(c)
	}

	return embed, nil
}

func readAttachments(files, altText string, spoiler bool) ([]*webhook.Attachment, error) {
	var attachments []*webhook.Attachment

	for _, path := range strings.Split(files, ",") {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}

		attachment, err := webhook.AttachmentFromFile(path, altText, spoiler)
		if err != nil {
			return nil, err
		}

		attachments = append(attachments, attachment)
	}

	return attachments, nil
}
