// Package reload keeps the resolved configuration current while siteplan
// runs in watch mode. A Watcher observes the configuration file (and the
// .env files beside it), debounces bursts of events, reloads through
// config.Load and publishes successful results through a Holder. A failed
// reload leaves the previous result in place.
//
// A Poller can drive the same Watcher on a fixed interval where the
// filesystem does not deliver events.
package reload
