package server

import (
	"time"

	"github.com/dmitrymomot/mailify/handler"
	"github.com/dmitrymomot/mailify/pkg/engine"
	"github.com/dmitrymomot/mailify/pkg/logger"
	"github.com/dmitrymomot/mailify/pkg/message"
)

// Attachment is a file sent along with a message. Content is base64 in JSON.
type Attachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type,omitempty"`
	Content     []byte `json:"content"`
}

// SendRequest is the body of POST /templates/{name}.
type SendRequest struct {
	Name        string         `path:"name" json:"-"`
	From        string         `json:"from,omitempty"`
	To          []string       `json:"to"`
	Cc          []string       `json:"cc,omitempty"`
	Bcc         []string       `json:"bcc,omitempty"`
	ReplyTo     []string       `json:"reply_to,omitempty"`
	Params      map[string]any `json:"params,omitempty"`
	Tag         string         `json:"tag,omitempty"`
	Attachments []Attachment   `json:"attachments,omitempty"`
}

func (r SendRequest) engineRequest() engine.Request {
	req := engine.Request{
		Template: r.Name,
		From:     r.From,
		To:       r.To,
		Cc:       r.Cc,
		Bcc:      r.Bcc,
		ReplyTo:  r.ReplyTo,
		Params:   r.Params,
		Tag:      r.Tag,
	}
	for _, a := range r.Attachments {
		req.Attachments = append(req.Attachments, message.Attachment{
			Filename:    a.Filename,
			ContentType: a.ContentType,
			Data:        a.Content,
		})
	}
	return req
}

// MetadataRequest identifies the template of GET /templates/{name}.
type MetadataRequest struct {
	Name string `path:"name"`
}

func (s *Server) send(ctx handler.Context, req SendRequest) handler.Response {
	start := time.Now()

	msg, err := s.renderer.Render(ctx, req.engineRequest())
	if err != nil {
		return handler.Error(err)
	}

	if err := s.sender.Send(ctx, msg); err != nil {
		return handler.Error(err)
	}

	s.log.InfoContext(ctx, "message sent",
		logger.RequestID(ctx.RequestID()),
		logger.Template(req.Name),
		logger.MessageID(msg.ID()),
		logger.Recipients(len(msg.Recipients())),
		logger.Duration(time.Since(start)),
		logger.Handler("send"),
		logger.Component("server"),
	)

	return handler.Empty()
}

func (s *Server) metadata(ctx handler.Context, req MetadataRequest) handler.Response {
	meta, err := s.renderer.Metadata(ctx, req.Name)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(meta)
}
