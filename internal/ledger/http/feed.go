package http

import "net/http"

// FeedHandler upgrades to the live event feed.
//
//	@Summary		Live event feed
//	@Description	WebSocket stream of ledger events: block_appended, integrity_checked, key_rotated, key_retired,
//	@Description	totp_regenerated and periodic system_status. Messages are ledgersdk.FeedEvent JSON objects.
//	@Tags			Feed
//	@Success		101	{object}	ledgersdk.FeedEvent	"Switching Protocols"
//	@Router			/v1/feed [get]
func FeedHandler(hub http.Handler) http.Handler {
	return hub
}
