package cogs

import (
	"context"
	"strings"
	"time"

	"github.com/haytac/cogbot/internal/bot"
	"github.com/haytac/cogbot/internal/imgbb"
	"github.com/haytac/cogbot/pkg/interfaces"
)

const (
	serviceImgbb = "imgbb"
	tokenAPIKey  = "api_key"
)

// ImageUploader hosts an image and returns where it lives.
type ImageUploader interface {
	Upload(ctx context.Context, apiKey, image, name string) (*imgbb.UploadResult, error)
}

// ImgBB uploads images to imgbb.
type ImgBB struct {
	tokens   interfaces.TokenStore
	uploader ImageUploader
	now      func() time.Time
}

// NewImgBB creates the ImgBB cog.
func NewImgBB(tokens interfaces.TokenStore, uploader ImageUploader) *ImgBB {
	return &ImgBB{tokens: tokens, uploader: uploader, now: time.Now}
}

func (i *ImgBB) Name() string        { return "ImgBB" }
func (i *ImgBB) Description() string { return "Upload an image to ImgBB!" }

func (i *ImgBB) Commands() []*bot.Command {
	return []*bot.Command{
		{
			Name:        "imgbb",
			Description: "Base commands of ImgBB cog.",
			Subcommands: []*bot.Command{
				{
					Name:        "creds",
					Aliases:     []string{"setcreds"},
					Description: "Instructions to set ImgBB API Key.",
					Checks:      []bot.Check{bot.OwnerOnly},
					Run:         i.creds,
				},
				{
					Name:        "upload",
					Description: "Upload an image to imgbb!\nYou can provide an url/attachment.",
					Usage:       "[url_or_attachment] [name]",
					Run:         i.upload,
				},
			},
		},
	}
}

func (i *ImgBB) creds(c *bot.Context) error {
	p := c.Prefix
	_, err := c.SendEmbed(bot.NewEmbed().SetDescription(
		"1. Go to https://imgbb.com/ and login,\n" +
			"2. Go to https://api.imgbb.com/ and press \"Add API key\",\n" +
			"3. Copy the key and set it with `" + p + "setapi imgbb api_key <api_key>`,\n" +
			"4. You're all set! Get started with `" + p + "imgbb upload`."))
	return err
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "http://")
}

func (i *ImgBB) upload(c *bot.Context) error {
	ctx := c.Context()
	apiKey, err := i.tokens.Get(ctx, serviceImgbb, tokenAPIKey)
	if err != nil {
		return err
	}
	if apiKey == "" {
		_, err := c.Sendf("The ImgBB API key hasn't been set yet! Run `%simgbb creds` for instructions!", c.Prefix)
		return err
	}

	first, name := c.Arg(0), c.Arg(1)
	image := first
	if len(c.Message.Attachments) > 0 {
		image = c.Message.Attachments[0].URL
		if name == "" && first != "" && !isURL(first) {
			name = first
		}
	}
	if image == "" {
		return c.SendHelp()
	}

	res, err := i.uploader.Upload(ctx, apiKey, image, name)
	if err != nil {
		c.Logger.Warn().Err(err).Msg("imgbb upload failed")
		_, err := c.Send("There's an error with the API")
		return err
	}

	_, err = c.SendEmbed(bot.NewEmbed().
		SetTitle("Here's Your Link!").
		SetDescription(res.URL).
		SetImage(res.URL).
		SetTimestamp(i.now()))
	return err
}
