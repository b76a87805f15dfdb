// Package event provides a synchronous, ordered publish/subscribe registry.
//
// An [Emitter] keeps, for every event name, the list of listeners in the order
// they subscribed. [Emitter.Emit] calls each listener exactly once, on the
// calling goroutine, in that order. A failing listener never stops the ones
// after it; all errors are joined and returned together.
//
// Listeners subscribed to [Wildcard] receive every event after the listeners
// registered for the specific name.
//
//	em := event.New[*Order]()
//	em.Subscribe("order.placed", func(o *Order) error {
//	    return mailer.SendReceipt(o)
//	})
//	em.SubscribeOnce("order.placed", warmupCache)
//
//	if err := em.Emit("order.placed", order); err != nil {
//	    log.Error("listener failed", "error", err)
//	}
//
// The emitter is payload-agnostic: the payload type parameter lets callers
// pass whatever context object their events carry.
package event
