package main

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/bytedance/sonic"

	"github.com/dmitrymomot/proton"
	"github.com/dmitrymomot/proton/pkg/config"
)

type pagesHandler struct {
	cfg *config.Store
}

func newPagesHandler(cfg *config.Store) *pagesHandler {
	return &pagesHandler{cfg: cfg}
}

func (h *pagesHandler) Routes(r *proton.Router) {
	r.GET("/", h.home)
	r.Group("/api", func(r *proton.Router) {
		r.GET("/hello/{name}", h.hello)
		r.GET("/routes", h.routes(r))
	})
}

func (h *pagesHandler) home(_ *http.Request, res *proton.Response, _ proton.Params) (*proton.Response, error) {
	return res.HTML(http.StatusOK, "<h1>It works!</h1>"), nil
}

func (h *pagesHandler) hello(r *http.Request, res *proton.Response, p proton.Params) (*proton.Response, error) {
	name := p.Get("name")
	if len(name) > 64 {
		return nil, proton.ErrBadRequest("name is too long", proton.WithErrorCode("NAME_TOO_LONG"))
	}
	return res.JSON(http.StatusOK, map[string]string{
		"greeting": "Hello, " + name + "!",
		"app":      h.cfg.String("app.name"),
	})
}

func (h *pagesHandler) routes(r *proton.Router) proton.HandlerFunc {
	return func(_ *http.Request, res *proton.Response, _ proton.Params) (*proton.Response, error) {
		list := make([]string, 0)
		for _, route := range r.Routes() {
			list = append(list, route.Method+" "+route.Pattern)
		}
		return res.JSON(http.StatusOK, list)
	}
}

// consumeEvents logs every bridged event until ctx is cancelled.
func consumeEvents(ctx context.Context, sub message.Subscriber, log *slog.Logger) error {
	messages, err := sub.Subscribe(ctx, eventsTopic)
	if err != nil {
		return err
	}
	go func() {
		for msg := range messages {
			var env proton.EventEnvelope
			if err := sonic.ConfigStd.Unmarshal(msg.Payload, &env); err != nil {
				log.Warn("malformed event", slog.Any("error", err))
				msg.Nack()
				continue
			}
			log.Debug("event",
				slog.String("event", env.Event),
				slog.String("route", env.Route),
				slog.Int("status", env.Status),
				slog.String("request_id", env.RequestID),
			)
			msg.Ack()
		}
	}()
	return nil
}
