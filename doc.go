// Package proton is a micro web framework: a configuration store, a router
// and an event emitter composed by a single App that turns each request
// into exactly one response.
//
// # Quick Start
//
//	app := proton.New(proton.WithDebug(true))
//
//	app.GET("/", func(r *http.Request, res *proton.Response, _ proton.Params) (*proton.Response, error) {
//	    return res.HTML(http.StatusOK, "<h1>It works!</h1>"), nil
//	})
//
//	if err := app.Run(":8080"); err != nil {
//	    log.Fatal(err)
//	}
//
// # Handlers
//
// Handlers receive the request, the response of the current cycle and the
// path parameters. They return the response to send, or an error:
//
//	func (h *UserHandler) Routes(r *proton.Router) {
//	    r.GET("/users/{id}", h.show)
//	}
//
//	func (h *UserHandler) show(r *http.Request, res *proton.Response, p proton.Params) (*proton.Response, error) {
//	    user, err := h.repo.Get(r.Context(), proton.Param[int64](p, "id"))
//	    if err != nil {
//	        return nil, proton.ErrNotFound("user not found", proton.WithError(err))
//	    }
//	    return res.JSON(http.StatusOK, user)
//	}
//
// # Events
//
// Every request emits request.received, response.before,
// response.before.send and response.after. Listeners may inspect or mutate
// the active response; a listener error is treated like a handler error.
//
//	app.Subscribe(proton.EventResponseBefore, func(e *proton.Event) error {
//	    e.Response().SetHeader("X-Frame-Options", "DENY")
//	    return nil
//	})
//
// Custom events carry arbitrary arguments:
//
//	app.Subscribe("user.created", sendWelcomeMail)
//	_, err := app.Emit("user.created", user)
//
// # Errors
//
// Errors and panics raised while handling a request are turned into a
// response by the exception decorator. The default one renders
// {"error":{"message":"..."}} with the status of an [HTTPError], or 500.
// Replace it with [WithExceptionDecorator] or App.SetExceptionDecorator.
//
// # Configuration
//
// The App carries a [Config] store for settings and shared services:
//
//	cfg := proton.NewConfig()
//	_ = cfg.LoadFile("config.yaml")
//	_ = cfg.LoadEnv("PROTON_")
//	app := proton.New(proton.WithConfig(cfg))
//	app.Set("mailer", mailer)
//
// # Shutdown
//
// Run handles SIGINT/SIGTERM for graceful shutdown.
// Register cleanup functions with ShutdownHook:
//
//	err := app.Run(":8080",
//	    proton.ShutdownHook(func(ctx context.Context) error {
//	        return publisher.Close()
//	    }),
//	)
package proton
