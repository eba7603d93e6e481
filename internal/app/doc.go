// Package app is the composition root for cinefind.
//
// Run loads configuration and preferences, opens the dated log file, builds
// the TMDB client and the search counter backend, then starts the trending
// poller and hands the terminal to the UI.
//
//	Run()
//	  ├─> config.Load()        ~/.config/cinefind/config.toml + TMDB_API_TOKEN
//	  ├─> prefs.Load()         theme and trending panel visibility
//	  ├─> logging.Open()       ~/.local/share/cinefind/logs/cinefind-DATE.log
//	  ├─> tmdb.NewClient()     rate-limited catalog client
//	  ├─> counter.Open()       sqlite, http or none
//	  ├─> Poller.Start()       trending terms -> state.Store
//	  └─> ui.Run()             blocks until quit
//
// # Errors
//
// A bad config file, an unwritable log directory or a counter backend that
// cannot be opened stop startup. Once the UI runs, catalog failures are shown
// in the results area and counter failures only reach the log.
//
// # Trending poller
//
// The poller asks the counter for the most searched terms on a fixed cadence
// (trending_refresh_seconds, default 30s). Consecutive failures double the
// wait up to five minutes while the store keeps the last good list, which the
// UI marks stale.
package app
