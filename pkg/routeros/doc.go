// Package routeros implements the client side of the RouterOS API
// protocol: a single TCP connection multiplexing one-shot requests,
// array requests and long-lived event streams, correlated by tags.
//
// # Connection Lifecycle
//
// Dial establishes the TCP connection; Login authenticates it and
// returns the Client carrying the data operations. The unauthenticated
// Conn deliberately exposes nothing but Login and Close:
//
//	conn, err := routeros.Dial(ctx, "192.168.88.1:8728")
//	if err != nil { ... }
//	client, err := conn.Login(ctx, "admin", password)
//	if err != nil { ... }
//	defer client.Close()
//
// Both RouterOS login variants are handled transparently: the
// credentialed login of current releases, and the legacy MD5
// challenge-response of pre-6.43 devices.
//
// # Operations
//
// Named operations cover the common endpoints:
//
//	res, err := client.SystemResources(ctx)
//	ifaces, err := client.Interfaces(ctx)
//	users, err := client.ActiveUsers(ctx)
//
// Arbitrary commands go through the generic calls, decoding into any
// struct with `ros` tags or into a plain Record:
//
//	rec, err := routeros.Call[routeros.Record](ctx, client, "/system/health/print")
//	rules, err := routeros.CallAll[routeros.Record](ctx, client, "/ip/firewall/filter/print")
//
// # Streams
//
// Listen-style commands return a Stream. Replies are delivered in
// device order and buffered without bound, so a slow consumer never
// stalls the connection's other exchanges. Cancel asks the device to
// stop; replies already in flight are still delivered, then Next
// returns exchange.ErrEndOfStream:
//
//	stream, err := client.ActiveUsers(ctx)
//	for {
//	    user, err := stream.Next(ctx)
//	    if errors.Is(err, exchange.ErrEndOfStream) {
//	        break
//	    }
//	    ...
//	}
//
// The engine imposes no timeouts of its own; bound any call with the
// context you pass in.
//
// # Tracing
//
// A log.Logger in the Config captures frames, decoded sentences and
// state changes for every connection. Pass a log.FileLogger to record
// a replayable trace.
package routeros
