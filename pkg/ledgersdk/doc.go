/*
Package ledgersdk provides a client SDK for the Aegis audit ledger service.

# Overview

A Client talks to the ledger's REST API and live feed. Public operations
need nothing but a base URL; administrative operations (TOTP and key
management) send the configured admin token as a bearer credential.

	client := ledgersdk.NewClient("https://ledger.example.com")
	client.AdminToken = os.Getenv("AEGIS_ADMIN_TOKEN")

	// Append a record. A request id is generated when none is given, and
	// retries after transport failures reuse it so the record is appended
	// at most once.
	block, err := client.SubmitLog(ctx, ledgersdk.SubmitLogRequest{
		Payload: ledgersdk.EncodePayload([]byte("user=alice action=login")),
	})

	// Walk the chain and check every hash, link and signature.
	res, err := client.Verify(ctx)

	// Rotate the signing key.
	rot, err := client.RotateKey(ctx)

# Errors

Non-2xx replies are returned as *APIError carrying the HTTP status and the
machine readable error code:

	var apiErr *ledgersdk.APIError
	if errors.As(err, &apiErr) && apiErr.Code == ledgersdk.ErrorCodeAuthenticationFailed {
		// fetch a fresh TOTP code and retry
	}

# Live feed

Watch subscribes to the WebSocket feed and calls fn for every event until
the context is cancelled or fn returns an error:

	err := client.Watch(ctx, func(ev ledgersdk.FeedEvent) error {
		fmt.Println(ev.Type, string(ev.Data))
		return nil
	})
*/
package ledgersdk
