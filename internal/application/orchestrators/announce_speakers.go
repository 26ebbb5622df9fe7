package orchestrators

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"pointsboard/internal/adapters/email"
	"pointsboard/internal/domain/member"
)

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set).
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// AnnounceSpeakersInput carries the speaker set to announce.
type AnnounceSpeakersInput struct {
	Date     string
	Speakers []member.Member
}

// AnnounceSpeakersDeps holds dependencies for the announcement.
type AnnounceSpeakersDeps struct {
	Sender email.Sender
	From   string
	To     []string
}

// ExecuteAnnounceSpeakers emails the day's speaker set to the configured
// recipients. Callers treat this as best-effort: a failed announcement
// never rolls back or blocks the committed selection.
// PRE: input.Speakers is non-empty
// POST: One email is queued with the rendered announcement
func ExecuteAnnounceSpeakers(ctx context.Context, input AnnounceSpeakersInput, deps AnnounceSpeakersDeps) error {
	if len(input.Speakers) == 0 {
		return errors.New("no speakers to announce")
	}
	if deps.Sender == nil || len(deps.To) == 0 {
		return nil
	}

	var md strings.Builder
	fmt.Fprintf(&md, "## Speakers of the Day for %s\n\n", input.Date)
	for _, s := range input.Speakers {
		fmt.Fprintf(&md, "- **%s**\n", s.Name)
	}
	md.WriteString("\nGive them the floor today!\n")

	var html bytes.Buffer
	if err := mdRenderer.Convert([]byte(md.String()), &html); err != nil {
		return fmt.Errorf("render announcement: %w", err)
	}

	_, err := deps.Sender.Send(ctx, email.SendRequest{
		To:      deps.To,
		From:    deps.From,
		Subject: "Speakers of the Day for " + input.Date,
		HTML:    html.String(),
	})
	return err
}
