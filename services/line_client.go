// services/line_client.go
package services

import (
	"context"
	"fmt"
	"os"

	"github.com/line/line-bot-sdk-go/v7/linebot"
)

// LineClient pushes messages through the LINE Messaging API.
type LineClient struct {
	bot *linebot.Client
}

func NewLineClientFromEnv() (*LineClient, error) {
	bot, err := linebot.New(
		os.Getenv("LINE_CHANNEL_SECRET"),
		os.Getenv("LINE_CHANNEL_ACCESS_TOKEN"),
	)
	if err != nil {
		return nil, fmt.Errorf("line client: %w", err)
	}
	return &LineClient{bot: bot}, nil
}

func (c *LineClient) Push(ctx context.Context, to string, msg Message) error {
	var sending linebot.SendingMessage
	if msg.Title == "" {
		sending = linebot.NewTextMessage(msg.Text)
	} else {
		sending = linebot.NewFlexMessage(msg.AltText, buildBubble(msg))
	}

	if _, err := c.bot.PushMessage(to, sending).WithContext(ctx).Do(); err != nil {
		return err
	}
	return nil
}

// buildBubble renders the vendor-neutral Message as a flex bubble with a
// header, labeled body rows, an optional price line and an optional button.
func buildBubble(msg Message) *linebot.BubbleContainer {
	bubble := &linebot.BubbleContainer{
		Type: linebot.FlexContainerTypeBubble,
		Header: &linebot.BoxComponent{
			Type:   linebot.FlexComponentTypeBox,
			Layout: linebot.FlexBoxLayoutTypeVertical,
			Contents: []linebot.FlexComponent{
				&linebot.TextComponent{
					Type:   linebot.FlexComponentTypeText,
					Text:   msg.Title,
					Weight: linebot.FlexTextWeightTypeBold,
					Size:   linebot.FlexTextSizeTypeLg,
				},
			},
		},
		Body: &linebot.BoxComponent{
			Type:     linebot.FlexComponentTypeBox,
			Layout:   linebot.FlexBoxLayoutTypeVertical,
			Spacing:  linebot.FlexComponentSpacingTypeSm,
			Contents: bodyContents(msg),
		},
	}

	if msg.Action != nil {
		bubble.Footer = &linebot.BoxComponent{
			Type:   linebot.FlexComponentTypeBox,
			Layout: linebot.FlexBoxLayoutTypeVertical,
			Contents: []linebot.FlexComponent{
				&linebot.ButtonComponent{
					Type:   linebot.FlexComponentTypeButton,
					Style:  linebot.FlexButtonStyleTypePrimary,
					Action: linebot.NewURIAction(msg.Action.Label, msg.Action.URI),
				},
			},
		}
	}

	return bubble
}

func bodyContents(msg Message) []linebot.FlexComponent {
	contents := make([]linebot.FlexComponent, 0, len(msg.Rows)+1)
	for _, row := range msg.Rows {
		contents = append(contents, &linebot.BoxComponent{
			Type:   linebot.FlexComponentTypeBox,
			Layout: linebot.FlexBoxLayoutTypeHorizontal,
			Contents: []linebot.FlexComponent{
				&linebot.TextComponent{
					Type:  linebot.FlexComponentTypeText,
					Text:  row.Label,
					Size:  linebot.FlexTextSizeTypeSm,
					Color: "#8C8C8C",
					Flex:  linebot.IntPtr(2),
				},
				&linebot.TextComponent{
					Type: linebot.FlexComponentTypeText,
					Text: row.Value,
					Size: linebot.FlexTextSizeTypeSm,
					Wrap: true,
					Flex: linebot.IntPtr(3),
				},
			},
		})
	}
	if msg.Price != "" {
		contents = append(contents, &linebot.BoxComponent{
			Type:   linebot.FlexComponentTypeBox,
			Layout: linebot.FlexBoxLayoutTypeHorizontal,
			Margin: linebot.FlexComponentMarginTypeMd,
			Contents: []linebot.FlexComponent{
				&linebot.TextComponent{
					Type:   linebot.FlexComponentTypeText,
					Text:   "Total",
					Size:   linebot.FlexTextSizeTypeSm,
					Weight: linebot.FlexTextWeightTypeBold,
					Flex:   linebot.IntPtr(2),
				},
				&linebot.TextComponent{
					Type:   linebot.FlexComponentTypeText,
					Text:   msg.Price,
					Size:   linebot.FlexTextSizeTypeSm,
					Weight: linebot.FlexTextWeightTypeBold,
					Flex:   linebot.IntPtr(3),
				},
			},
		})
	}
	return contents
}
