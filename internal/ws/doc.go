// Package ws carries the session change feed over WebSocket.
//
// Frames are JSON objects (encoded with bytedance/sonic):
//
//	client -> server   {"type":"sub","session_id":"s1"}
//	                   {"type":"unsub","session_id":"s1"}
//	                   {"type":"ping"}
//	server -> client   {"type":"added","session_id":"s1"}
//	                   {"type":"removed","session_id":"s1"}
//	                   {"type":"pong"}
//	                   {"type":"error","message":"..."}
//
// Feed is the client side and implements the grain view's SessionFeed.
// Handler is the server side, relaying any Source (such as the in-memory
// store) to connected feeds.
//
// Example Usage:
//
//	feed := ws.NewFeed("ws://localhost:8000/feed", logger, metrics)
//	stop, err := feed.Subscribe(ctx, sessionID, onEvent)
//
//	router.GET("/feed", ws.NewHandler(store, logger).HandleConnection)
package ws
