// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package publish

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"text/template"
	"time"

	"github.com/pdiddy/paper-feed/internal/detect"
	"github.com/pdiddy/paper-feed/pkg/types"
)

// DefaultCommitMessage is used when no commit message template is set.
const DefaultCommitMessage = "Update papers page for {{.Date}}"

// Status is the outcome of a publish attempt.
type Status string

const (
	StatusPublished Status = "published"
	StatusNoChange  Status = "no-change"
)

// PublishResult reports what Publish did. Revision is the new head when a
// commit was pushed, and the unchanged head otherwise.
type PublishResult struct {
	Status   Status
	Revision Revision
}

// messageData is the data passed to the commit message template.
type messageData struct {
	Date string
}

// Publisher pushes rendered pages to a Log when they differ from the
// published page.
type Publisher struct {
	log     Log
	message *template.Template
	clock   func() time.Time
	logger  *slog.Logger
}

// NewPublisher returns a Publisher appending to log. messageTmpl is a
// text/template with a .Date field; empty uses DefaultCommitMessage. A nil
// clock uses time.Now and a nil logger uses slog.Default.
func NewPublisher(log Log, messageTmpl string, clock func() time.Time, logger *slog.Logger) (*Publisher, error) {
	if messageTmpl == "" {
		messageTmpl = DefaultCommitMessage
	}
	tmpl, err := template.New("commit").Option("missingkey=error").Parse(messageTmpl)
	if err != nil {
		return nil, fmt.Errorf("parsing commit message template: %w", err)
	}
	if clock == nil {
		clock = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{log: log, message: tmpl, clock: clock, logger: logger}, nil
}

// Publish reads the page at the current head and pushes page when the
// change detector reports a difference. A push rejected because the
// remote moved is retried once against the new head; a second rejection
// returns an error wrapping types.ErrPublishConflict.
func (p *Publisher) Publish(ctx context.Context, page types.RenderedPage) (PublishResult, error) {
	msg, err := p.commitMessage()
	if err != nil {
		return PublishResult{}, err
	}

	for attempt := 1; ; attempt++ {
		head, err := p.log.CurrentHead(ctx)
		if err != nil {
			return PublishResult{}, fmt.Errorf("reading current head: %w", err)
		}
		previous, err := p.log.Read(ctx, head)
		if err != nil {
			return PublishResult{}, fmt.Errorf("reading published page: %w", err)
		}

		if !detect.HasChanged(previous, page) {
			return PublishResult{Status: StatusNoChange, Revision: head}, nil
		}

		rev, err := p.log.Push(ctx, Change{Content: page.Content, Message: msg}, head)
		if err == nil {
			return PublishResult{Status: StatusPublished, Revision: rev}, nil
		}
		if errors.Is(err, ErrConflict) && attempt == 1 {
			p.logger.Warn("remote advanced during publish, retrying", "base", head.Short(), "error", err)
			continue
		}
		return PublishResult{}, err
	}
}

func (p *Publisher) commitMessage() (string, error) {
	var buf bytes.Buffer
	data := messageData{Date: p.clock().UTC().Format("2006-01-02")}
	if err := p.message.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering commit message: %w", err)
	}
	return buf.String(), nil
}
