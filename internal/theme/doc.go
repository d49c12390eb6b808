// Package theme resolves, persists, and watches a visitor's light/dark
// display preference.
//
// Resolution order on load:
//
//	persisted explicit choice > OS preference (client hint) > light
//
// Integration example:
//
//	signal := theme.NewSignal()
//	ctrl := theme.NewController(visitorID, store, signal, logger, metrics, recorder)
//	sub := ctrl.Watch()
//	defer sub.Release()
//
//	signal.Observe(r.Header.Get(theme.ClientHintHeader))
//	tokens := domain.Tokens(ctrl.Current(ctx))
package theme
